package router

import (
	"cmp"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/sholatbot/core/logger"
	"github.com/m3rciful/sholatbot/core/metrics"
	tghelpers "github.com/m3rciful/sholatbot/core/telegram/helpers"
	"github.com/m3rciful/sholatbot/core/telegram/middleware"
)

// summary is the single handler.handled record written per routed update.
// Empty status and outcome are derived from the handler error.
type summary struct {
	handler string
	start   time.Time
	status  string
	outcome string
}

func (s summary) run(c tele.Context, fn func() error) error {
	tghelpers.WithHandler(c, s.handler)
	err := fn()
	s.log(c, err)
	return err
}

func (s summary) log(c tele.Context, err error) {
	ctx := tghelpers.WithHandler(c, s.handler)
	status := cmp.Or(s.status, logger.Status(err))
	outcome := cmp.Or(s.outcome, logger.Status(err))
	took := logger.Took(s.start)

	metrics.HandlerTotal.WithLabelValues(s.handler, outcome).Inc()
	metrics.HandlerDuration.WithLabelValues(s.handler).Observe(took.Seconds())

	sent := middleware.CountersFrom(c)
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("outcome", outcome),
		slog.Int("messages", sent.Messages),
		slog.Bool("kb", sent.Keyboard),
		slog.Duration("duration", took),
	}
	if err != nil {
		attrs = append(attrs, logger.ErrAttr(err), slog.String("err_code", errorCode(err)))
	}
	logger.Info(ctx, "tg", "handler.handled", attrs...)
}

// handlerName turns "/Jadwal Kota" into "jadwal_kota".
func handlerName(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	if name == "" {
		return "unknown"
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// errorCode names an error for logs: an explicit Code() wins, then the
// innermost named type, then the outermost one.
func errorCode(err error) string {
	if err == nil {
		return ""
	}
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		if code := strings.TrimSpace(coded.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	root := err
	for next := errors.Unwrap(root); next != nil; next = errors.Unwrap(root) {
		root = next
	}
	for _, e := range []error{root, err} {
		if name := typeName(e); name != "" {
			return strings.ToUpper(name)
		}
	}
	return "UNKNOWN_ERROR"
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	switch n := t.Name(); n {
	case "errorString", "wrapError", "joinError":
		return ""
	default:
		return n
	}
}
