package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// errLimit caps the rune length of error text written to a record.
const errLimit = 256

// Status maps an error onto the status field: ok, cancelled or fail.
func Status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "fail"
	}
}

// ErrAttr renders err as the "err" field, sanitized and truncated.
func ErrAttr(err error) slog.Attr {
	if err == nil {
		return slog.String("err", "")
	}
	return slog.String("err", SanitizeLimit(err.Error(), errLimit))
}

// Took returns the time since start rounded to milliseconds.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// RoundMS rounds d to whole milliseconds; negative values become zero.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// Preview joins at most limit values and appends "(+N more)" for the rest.
func Preview(values []string, limit int) string {
	limit = max(limit, 0)
	if len(values) <= limit {
		return strings.Join(values, ", ")
	}
	head := strings.Join(values[:limit], ", ")
	rest := fmt.Sprintf("(+%d more)", len(values)-limit)
	if head == "" {
		return rest
	}
	return head + " " + rest
}
