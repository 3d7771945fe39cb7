package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	coreconfig "github.com/m3rciful/sholatbot/core/config"
)

func TestStatus(t *testing.T) {
	cases := map[string]error{
		"ok":        nil,
		"fail":      errors.New("boom"),
		"cancelled": fmt.Errorf("send: %w", context.Canceled),
	}
	for want, err := range cases {
		if got := Status(err); got != want {
			t.Fatalf("Status(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestErrAttrTruncates(t *testing.T) {
	a := ErrAttr(errors.New(strings.Repeat("x", 300) + "\x00"))
	if a.Key != "err" || len(a.Value.String()) != errLimit {
		t.Fatalf("ErrAttr = %s len %d", a.Key, len(a.Value.String()))
	}
}

func TestPreview(t *testing.T) {
	files := []string{"1_a.up.sql", "2_b.up.sql", "3_c.up.sql"}
	if got := Preview(files, 5); got != "1_a.up.sql, 2_b.up.sql, 3_c.up.sql" {
		t.Fatalf("Preview = %q", got)
	}
	if got := Preview(files, 1); got != "1_a.up.sql (+2 more)" {
		t.Fatalf("Preview = %q", got)
	}
	if got := Preview(files, 0); got != "(+3 more)" {
		t.Fatalf("Preview = %q", got)
	}
}

func TestSettingsFrom(t *testing.T) {
	s := settingsFrom(nil)
	if s.level != slog.LevelInfo || s.format != formatJSON || s.sampleD != 50 || s.file != "" {
		t.Fatalf("defaults = %+v", s)
	}

	var cfg coreconfig.Config
	cfg.Logging.Profile = "Dev"
	cfg.Logging.Level = "warning"
	cfg.Logging.KeysOrder = "event, ts ,"
	cfg.Logging.DebugSample = "2/5"
	cfg.Logging.Dir = "logs"
	cfg.Logging.BotFile = "bot.log"
	s = settingsFrom(&cfg)
	if s.level != slog.LevelWarn || s.format != formatKV || s.profile != "dev" {
		t.Fatalf("settings = %+v", s)
	}
	if strings.Join(s.keyOrder, ",") != "event,ts" {
		t.Fatalf("keyOrder = %v", s.keyOrder)
	}
	if s.sampleN != 2 || s.sampleD != 5 {
		t.Fatalf("sample = %d/%d", s.sampleN, s.sampleD)
	}
	if s.file != filepath.Join("logs", "bot.log") {
		t.Fatalf("file = %q", s.file)
	}

	cfg.Logging.Format = "json"
	if settingsFrom(&cfg).format != formatJSON {
		t.Fatal("explicit json format must win over dev profile")
	}
}

func TestWithAttrsAddsContextFields(t *testing.T) {
	ctx := WithAttrs(Background(), slog.String("intent", "maghrib"))
	ctx = WithAttrs(ctx, slog.String("city", "bogor"))

	line := captureLine(t, formatKV, func(log *slog.Logger) {
		LogEvent(ctx, log.With("component", "prayer"), slog.LevelInfo, "schedule.fetch",
			slog.String("status", "ok"),
			slog.String("city", "KOTA BOGOR"),
		)
	})
	if !strings.Contains(line, "intent=maghrib") {
		t.Fatalf("expected intent from context in %s", line)
	}
	if !strings.Contains(line, `city="KOTA BOGOR"`) || strings.Contains(line, "city=bogor") {
		t.Fatalf("record attribute must win over context attribute: %s", line)
	}
}
