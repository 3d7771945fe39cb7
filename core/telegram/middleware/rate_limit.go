package middleware

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/sholatbot/core/config"
	"github.com/m3rciful/sholatbot/core/logger"
	"github.com/m3rciful/sholatbot/core/metrics"
	tghelpers "github.com/m3rciful/sholatbot/core/telegram/helpers"
)

const limiterIdleTTL = 10 * time.Minute

// RateLimitOptions configures behaviour of the rate limit middleware.
// Interval is the token refill period and Burst the bucket size per user.
type RateLimitOptions struct {
	Interval  time.Duration
	Burst     int
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

type userLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// limiterStore keeps one token bucket per user and forgets idle users.
type limiterStore struct {
	mu        sync.Mutex
	limiters  map[int64]*userLimiter
	every     rate.Limit
	burst     int
	lastPrune time.Time
}

func (s *limiterStore) allow(userID int64, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastPrune) > limiterIdleTTL {
		for id, ul := range s.limiters {
			if now.Sub(ul.lastSeen) > limiterIdleTTL {
				delete(s.limiters, id)
			}
		}
		s.lastPrune = now
	}

	ul, ok := s.limiters[userID]
	if !ok {
		ul = &userLimiter{lim: rate.NewLimiter(s.every, s.burst)}
		s.limiters[userID] = ul
	}
	ul.lastSeen = now
	return ul.lim.AllowN(now, 1)
}

// updateKind buckets an update the way rate_limit.exclude names it.
func updateKind(upd tele.Update) string {
	switch {
	case upd.Message == nil:
		return "other"
	case strings.HasPrefix(upd.Message.Text, "/"):
		return coreconfig.UpdateCommand
	}
	return coreconfig.UpdateText
}

// RateLimitMiddleware returns a middleware that throttles updates per user with a token bucket.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	store := &limiterStore{
		limiters: make(map[int64]*userLimiter),
		every:    rate.Every(opts.Interval),
		burst:    burst,
	}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			kind := updateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}

			if store.allow(user.ID, now()) {
				return next(c)
			}

			metrics.RateLimited.Inc()
			logger.Warn(tghelpers.BuildContext(c), "tg", "rate_limit",
				slog.String("status", "rate_limited"),
				slog.String("kind", kind),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}
