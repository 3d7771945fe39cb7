package middleware

import (
	"log/slog"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/sholatbot/core/logger"
	tghelpers "github.com/m3rciful/sholatbot/core/telegram/helpers"
)

// seenSet remembers update IDs for a short window. The logging middleware
// runs both globally and per route, and each update is logged once.
type seenSet struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[int]time.Time
}

var receivedUpdates = &seenSet{ttl: 10 * time.Second, seen: map[int]time.Time{}}

// firstSeen records id and reports whether it was new within the window.
func (s *seenSet) firstSeen(id int, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, at := range s.seen {
		if now.Sub(at) > s.ttl {
			delete(s.seen, k)
		}
	}
	if _, dup := s.seen[id]; dup {
		return false
	}
	s.seen[id] = now
	return true
}

// LoggerMiddleware stamps the update with a request ID and logging context and
// writes a sampled update.received debug line.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		now := time.Now()
		c.Set("update_start", now)
		ctx := tghelpers.NewContext(c)

		if logger.ShouldSampleDebug() && receivedUpdates.firstSeen(c.Update().ID, now) {
			logger.Debug(ctx, "tg", "update.received", receivedAttrs(c)...)
		}
		return next(c)
	}
}

func receivedAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{slog.String("status", "ok")}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if u := c.Sender(); u != nil {
		if u.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
		}
		if u.LanguageCode != "" {
			attrs = append(attrs, slog.String("lang", u.LanguageCode))
		}
	}
	if c.Message() != nil && c.Text() != "" {
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(c.Text(), 256)))
	}
	return attrs
}
