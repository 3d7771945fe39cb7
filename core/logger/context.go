package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

type ctxKey int

const (
	keyRID ctxKey = iota
	keyUpdate
	keyLogger
	keyHandler
	keyAttrs
)

// updateMeta identifies the Telegram update a context belongs to.
type updateMeta struct {
	updateID int
	userID   int64
	chatID   int64
}

func ensure(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func lookup[T any](ctx context.Context, key ctxKey) T {
	var zero T
	if ctx == nil {
		return zero
	}
	v, _ := ctx.Value(key).(T)
	return v
}

// WithLogger makes log the logger returned by FromContext.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	ctx = ensure(ctx)
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, keyLogger, log)
}

// FromContext returns the logger stored by WithLogger, else L.
func FromContext(ctx context.Context) *slog.Logger {
	if l := lookup[*slog.Logger](ctx, keyLogger); l != nil {
		return l
	}
	return L
}

func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ensure(ctx), keyRID, rid)
}

func RIDFrom(ctx context.Context) string { return lookup[string](ctx, keyRID) }

// WithUpdateMeta records the update, sender and chat ids for every record logged with ctx.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	return context.WithValue(ensure(ctx), keyUpdate, updateMeta{updateID: updateID, userID: userID, chatID: chatID})
}

func UpdateIDFrom(ctx context.Context) int { return lookup[updateMeta](ctx, keyUpdate).updateID }
func UserIDFrom(ctx context.Context) int64 { return lookup[updateMeta](ctx, keyUpdate).userID }
func ChatIDFrom(ctx context.Context) int64 { return lookup[updateMeta](ctx, keyUpdate).chatID }

// WithHandler tags ctx with the routed handler name.
func WithHandler(ctx context.Context, handler string) context.Context {
	ctx = ensure(ctx)
	if handler == "" {
		return ctx
	}
	return context.WithValue(ctx, keyHandler, handler)
}

func HandlerFrom(ctx context.Context) string { return lookup[string](ctx, keyHandler) }

// WithAttrs adds fields to every record logged with the returned context,
// for example the prayer intent of an ongoing lookup. Explicit record
// attributes of the same key win.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	ctx = ensure(ctx)
	if len(attrs) == 0 {
		return ctx
	}
	prev := lookup[[]slog.Attr](ctx, keyAttrs)
	merged := make([]slog.Attr, 0, len(prev)+len(attrs))
	merged = append(append(merged, prev...), attrs...)
	return context.WithValue(ctx, keyAttrs, merged)
}

func attrsFrom(ctx context.Context) []slog.Attr { return lookup[[]slog.Attr](ctx, keyAttrs) }

// Sanitize drops control and format runes other than tab and newline.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n', r == '\t':
			return r
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
			return -1
		}
		return r
	}, s)
}

// SanitizeLimit is Sanitize truncated to limit runes.
func SanitizeLimit(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(Sanitize(s))
	return string(r[:min(len(r), limit)])
}

// BuildRID formats the correlation id "updateID:chatID:userID".
func BuildRID(updateID int, chatID, userID int64) string {
	return fmt.Sprintf("%d:%d:%d", updateID, chatID, userID)
}

// CompactRID re-encodes each numeric part of a BuildRID value in base 36 and
// joins them with dots. Other input is returned unchanged.
func CompactRID(rid string) string {
	rid = strings.TrimSpace(rid)
	parts := strings.Split(rid, ":")
	if len(parts) != 3 {
		return rid
	}
	for i, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return rid
		}
		parts[i] = strconv.FormatInt(n, 36)
	}
	return strings.Join(parts, ".")
}
