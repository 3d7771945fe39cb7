package telegram

import (
	"strings"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/sholatbot/core/config"
	"github.com/m3rciful/sholatbot/core/telegram/middleware"
)

// DefaultMiddlewares builds the shared middleware chain for bots.
// Order matters: recover wraps everything, the limiter drops floods before logging.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited func(tele.Context) error) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}

	if cfg != nil {
		if interval := cfg.RateLimit.Interval; interval > 0 {
			ex := make(map[string]struct{}, len(cfg.RateLimit.Exclude))
			for _, kind := range cfg.RateLimit.Exclude {
				ex[strings.ToLower(kind)] = struct{}{}
			}
			mws = append(mws, Middleware{
				Name: "rate_limit",
				Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
					Interval:  interval,
					Burst:     cfg.RateLimit.Burst,
					Exclude:   ex,
					OnLimited: onLimited,
				}),
			})
		}
	}

	return append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
}
