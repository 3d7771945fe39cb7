package helpers

import (
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"unicode/utf16"
	"unicode/utf8"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/sholatbot/core/logger"
	"github.com/m3rciful/sholatbot/core/telegram/sender"
)

// MaxMessageLen is the chunk size used by SendLong, in UTF-16 code units.
// Telegram caps messages at 4096 of those, so an emoji counts twice.
const MaxMessageLen = 4000

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("status", "retry"),
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				logger.ErrAttr(err),
			)
			return run()
		}
		return err
	}
	return nil
}

func sendFunc(c tele.Context, text string, opts *tele.SendOptions) func() error {
	return func() error {
		if opts != nil {
			return c.Send(text, opts)
		}
		return c.Send(text)
	}
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return sendAsync(c, "send.text", "sendMessage", sendFunc(c, text, sendOpts))
}

// SendMD sends a message with Markdown parse mode and optional reply markup.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return SendText(c, text, mdOptions(markup))
}

func mdOptions(markup []*tele.ReplyMarkup) *tele.SendOptions {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	return &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: rm}
}

// SendLong sends text split into chunks of at most MaxMessageLen as one ordered job.
// Reply markup, when given, is attached to the last chunk only.
func SendLong(c tele.Context, text string, opts ...*tele.SendOptions) error {
	chunks := SplitText(text, MaxMessageLen)
	if len(chunks) <= 1 {
		return SendText(c, text, opts...)
	}

	var base *tele.SendOptions
	if len(opts) > 0 && opts[0] != nil {
		base = opts[0]
	}
	steps := make([]func() error, len(chunks))
	for i, chunk := range chunks {
		var o *tele.SendOptions
		if base != nil {
			cp := *base
			if i < len(chunks)-1 {
				cp.ReplyMarkup = nil
			}
			o = &cp
		}
		steps[i] = sendFunc(c, chunk, o)
	}
	return sendAsync(c, "send.long", "sendMessage", sender.Sequence(steps...))
}

// SplitText cuts text into pieces of at most limit UTF-16 code units,
// preferring to break after the last newline inside each window.
// Concatenating the pieces yields text.
func SplitText(text string, limit int) []string {
	if limit <= 0 || UTF16Len(text) <= limit {
		return []string{text}
	}
	var out []string
	rest := text
	for UTF16Len(rest) > limit {
		cut := prefixLen(rest, limit)
		if nl := strings.LastIndexByte(rest[:cut], '\n'); nl > 0 {
			cut = nl + 1
		}
		out = append(out, rest[:cut])
		rest = rest[cut:]
	}
	if rest != "" {
		out = append(out, rest)
	}
	return out
}

// UTF16Len is the length of s as Telegram counts it.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += max(utf16.RuneLen(r), 1)
	}
	return n
}

// prefixLen returns the byte length of the longest prefix of s that fits in
// limit UTF-16 units, and at least one rune.
func prefixLen(s string, limit int) int {
	units := 0
	for i, r := range s {
		units += max(utf16.RuneLen(r), 1)
		if units > limit {
			if i == 0 {
				return utf8.RuneLen(r)
			}
			return i
		}
	}
	return len(s)
}
