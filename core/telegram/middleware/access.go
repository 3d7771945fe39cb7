package middleware

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/sholatbot/core/logger"
	tghelpers "github.com/m3rciful/sholatbot/core/telegram/helpers"
)

// AdminOptions configures AdminOnlyMiddleware. A zero AdminID rejects everyone.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

func (o AdminOptions) allows(u *tele.User) bool {
	return o.AdminID != 0 && u != nil && u.ID == o.AdminID
}

// AdminOnlyMiddleware passes only updates sent by the configured admin.
// Rejected updates go to OnReject, or are dropped silently.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.allows(c.Sender()) {
				return next(c)
			}
			logger.Debug(tghelpers.BuildContext(c), "tg", "admin.reject",
				slog.String("status", "skip"),
				slog.Bool("admin_configured", opts.AdminID != 0),
			)
			if opts.OnReject == nil {
				return nil
			}
			return opts.OnReject(c)
		}
	}
}
