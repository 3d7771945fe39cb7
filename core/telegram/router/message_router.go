package router

import (
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/sholatbot/core/telegram"
	"github.com/m3rciful/sholatbot/core/telegram/middleware"
)

var timeNow = time.Now

// Resolver consumes numeric replies that answer an earlier question.
// consumed reports whether the reply was meant for it; when false the
// text continues to the registry fallback.
type Resolver interface {
	Resolve(c tele.Context) (consumed bool, err error)
}

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// IsNumericReply reports whether text, ignoring surrounding whitespace, is a non-empty run of ASCII digits.
func IsNumericReply(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return false
		}
	}
	return true
}

// TextRoutes builds the handler for free text: unknown slash commands, numeric
// replies for the resolver, and the registry fallback for everything else.
func TextRoutes(resolver Resolver, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := timeNow()
		text := strings.TrimSpace(c.Text())
		skipped := func(name string) error {
			summary{handler: name, start: start, status: "skip", outcome: "ok"}.log(c, nil)
			return nil
		}

		// Admin commands are only reachable through CommandRoutes, which enforce access.
		if strings.HasPrefix(text, "/") {
			first, _, _ := strings.Cut(text, " ")
			if reg == nil {
				return skipped("unknown_command")
			}
			key, cmd, ok := reg.LookupCommand(first)
			if !ok || cmd.Handler == nil || cmd.AdminOnly {
				return skipped("unknown_command")
			}
			return summary{handler: handlerName(key), start: start}.run(c, func() error {
				return cmd.Handler(c)
			})
		}

		var outcome string
		if resolver != nil && IsNumericReply(text) {
			consumed, err := resolver.Resolve(c)
			switch {
			case err != nil:
				summary{handler: "city_choice", start: start, outcome: "fail"}.log(c, err)
				return err
			case consumed:
				summary{handler: "city_choice", start: start, outcome: "consumed"}.log(c, nil)
				return nil
			}
			outcome = "fallthrough"
		}

		next, name := opts.UnknownText, "unknown_text"
		if reg != nil && reg.TextFallback() != nil {
			next, name = reg.TextFallback(), "fallback"
		}
		if next == nil {
			return skipped(name)
		}
		return summary{handler: name, start: start, outcome: outcome}.run(c, func() error {
			return next(c)
		})
	}

	return []tg.Route{{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}}
}
