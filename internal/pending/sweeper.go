package pending

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/sholatbot/core/logger"
	"github.com/m3rciful/sholatbot/core/metrics"
)

// RunSweeper calls s.Sweep every interval until ctx is done.
func RunSweeper(ctx context.Context, s Store, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			SweepOnce(ctx, s)
		}
	}
}

// SweepOnce runs a single sweep and records the result.
func SweepOnce(ctx context.Context, s Store) int {
	start := time.Now()
	n, err := s.Sweep(ctx)
	if err != nil {
		logger.Warn(ctx, "pending", "sweep",
			slog.String("status", "fail"),
			logger.ErrAttr(err),
		)
		return 0
	}
	if n > 0 {
		metrics.PendingSwept.Add(float64(n))
		logger.Info(ctx, "pending", "sweep",
			slog.String("status", "ok"),
			slog.Int("swept", n),
			slog.Duration("duration", logger.Took(start)),
		)
	}
	return n
}
