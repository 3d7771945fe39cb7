package logger

import (
	"slices"
	"strings"
)

// Level names as written in the "level" field.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Closed vocabularies for the status and outcome fields.
var (
	statusValues  = []string{"ok", "fail", "skip", "retry", "rate_limited", "cancelled"}
	outcomeValues = []string{"ok", "fail", "consumed", "fallthrough", "cancelled", "rate_limited"}
)

func normalizeLevel(level string) string {
	switch strings.ToLower(level) {
	case "":
		return LevelInfo
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return strings.ToUpper(level)
}

// normalizeStatus lowercases status; ok reports membership in statusValues.
func normalizeStatus(status string) (string, bool) {
	status = strings.ToLower(strings.TrimSpace(status))
	return status, slices.Contains(statusValues, status)
}

func normalizeOutcome(outcome string) (string, bool) {
	outcome = strings.ToLower(strings.TrimSpace(outcome))
	if !slices.Contains(outcomeValues, outcome) {
		return "", false
	}
	return outcome, true
}

// defaultKeyOrder places envelope and correlation keys first, then the
// handler summary, then domain fields, then errors.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "chat_type",
	"handler", "outcome", "duration_ms", "messages", "kb",
	"intent", "city", "city_id", "date", "candidates",
	"endpoint", "http_code", "backend", "swept", "count",
	"payload", "lang", "username",
	"mode", "listen", "public_url", "db", "host", "port",
	"err", "err_code", "cause", "attempts",
}
