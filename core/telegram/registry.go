package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/sholatbot/core/logger"
	"github.com/m3rciful/sholatbot/core/telegram/commands"
)

// ErrInvalidCommand is returned by RegisterCommand for unusable definitions.
var ErrInvalidCommand = errors.New("telegram: invalid command")

// Registry holds bot commands and the fallback for free text.
// It is populated once during wiring and read concurrently afterwards.
type Registry struct {
	commands     map[string]commands.Command
	aliases      map[string]string
	textFallback tele.HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]commands.Command),
		aliases:  make(map[string]string),
	}
}

func slashed(name string) string {
	if strings.HasPrefix(name, "/") {
		return name
	}
	return "/" + name
}

// RegisterCommand adds cmd under name, which must start with "/". Names and
// aliases share one namespace; a clash is rejected and the first wins.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	var err error
	switch {
	case cmd.Handler == nil || cmd.Description == "":
		err = fmt.Errorf("%w %q: handler and description are required", ErrInvalidCommand, name)
	case !strings.HasPrefix(name, "/") || len(name) < 2:
		err = fmt.Errorf("%w %q: name must start with /", ErrInvalidCommand, name)
	case r.taken(name):
		err = fmt.Errorf("%w %q: already registered", ErrInvalidCommand, name)
	}
	for _, alias := range cmd.Aliases {
		if err == nil && (r.taken(slashed(alias)) || slashed(alias) == name) {
			err = fmt.Errorf("%w %q: alias %q already registered", ErrInvalidCommand, name, alias)
		}
	}
	if err != nil {
		logger.Warn(context.Background(), "tg.wire", "register.command.skip",
			slog.String("status", "skip"),
			slog.String("name", name),
			logger.ErrAttr(err),
		)
		return err
	}

	r.commands[name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[slashed(alias)] = name
	}
	return nil
}

func (r *Registry) taken(name string) bool {
	_, cmd := r.commands[name]
	_, alias := r.aliases[name]
	return cmd || alias
}

// ListCommands returns commands sorted by name. visibleOnly drops hidden and
// admin-only ones, which is what the Telegram menu and /info show.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	list := make([]tele.Command, 0, len(r.commands))
	for name, meta := range r.commands {
		if visibleOnly && (meta.Hidden || meta.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: meta.Description})
	}
	slices.SortFunc(list, func(a, b tele.Command) int { return strings.Compare(a.Text, b.Text) })
	return list
}

// LookupCommand resolves a name or alias, with or without the slash and a
// trailing bot mention ("/start@sholatbot"), to its canonical key.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	name = strings.TrimSpace(name)
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	name = slashed(name)
	if key, ok := r.aliases[name]; ok {
		name = key
	}
	cmd, ok := r.commands[name]
	if !ok {
		return "", commands.Command{}, false
	}
	return name, cmd, true
}

// Commands exposes the registered commands keyed by name. Callers must not modify it.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

func (r *Registry) SetTextFallback(h tele.HandlerFunc) { r.textFallback = h }

func (r *Registry) TextFallback() tele.HandlerFunc { return r.textFallback }

// InitBotCommands publishes the visible commands as the bot menu. The Bot
// API wants names without the leading slash.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	list := reg.ListCommands(true)
	for i := range list {
		list[i].Text = strings.TrimPrefix(list[i].Text, "/")
	}
	err := bot.SetCommands(list)
	if err != nil {
		logger.Error(context.Background(), "tg.wire", "register.commands.set_failed",
			slog.String("status", "fail"),
			logger.ErrAttr(err),
		)
		return
	}
	logger.Info(context.Background(), "tg.wire", "register.commands.set",
		slog.String("status", "ok"),
		slog.Int("count", len(list)),
	)
}
