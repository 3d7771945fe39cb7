package handlers

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/sholatbot/core/buildinfo"
	"github.com/m3rciful/sholatbot/core/logger"
	"github.com/m3rciful/sholatbot/core/telegram/helpers"
)

const (
	textStart = "Halo! Selamat datang di bot telegram saya."
	textInfo  = "Informasi Bot"
	textEmpty = "Belum ada data."
)

// Start greets the user.
func (h *Handlers) Start(c tele.Context) error {
	return helpers.SendText(c, textStart)
}

// Info lists the visible commands and the running build.
func (h *Handlers) Info(c tele.Context) error {
	var b strings.Builder
	b.WriteString(textInfo)
	if h.reg != nil {
		b.WriteString("\n\nPerintah:\n")
		for _, cmd := range h.reg.ListCommands(true) {
			meta := h.reg.Commands()[cmd.Text]
			fmt.Fprintf(&b, "%s - %s\n", meta.Synopsis(cmd.Text), cmd.Description)
		}
	} else {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nVersi: %s", buildinfo.String())
	return helpers.SendText(c, b.String())
}

func (h *Handlers) Dzikir(c tele.Context) error {
	return h.sendRandom(c, "dzikir", h.deps.Library.RandomDzikir)
}

func (h *Handlers) Renungan(c tele.Context) error {
	return h.sendRandom(c, "renungan", h.deps.Library.RandomRenungan)
}

func (h *Handlers) sendRandom(c tele.Context, kind string, pick func() string) error {
	text := pick()
	if text == "" {
		logger.Warn(helpers.BuildContext(c), component, "content.empty",
			slog.String("status", "skip"),
			slog.String("kind", kind),
		)
		text = textEmpty
	}
	return helpers.SendText(c, text)
}

// Stats reports process health to the admin.
func (h *Handlers) Stats(c tele.Context) error {
	var sent, failed uint64
	queued := 0
	if d := h.deps.Dispatcher; d != nil {
		sent, failed, queued = d.DoneCount(), d.ErrorCount(), d.Queued()
	}
	text := fmt.Sprintf("Uptime: %s\nVersi: %s\nPesan terkirim: %d\nGagal kirim: %d\nAntrean: %d",
		buildinfo.Uptime().Truncate(time.Second), buildinfo.String(), sent, failed, queued)
	return helpers.SendText(c, text)
}

// Echo repeats free text back to the sender.
func (h *Handlers) Echo(c tele.Context) error {
	text := c.Text()
	logger.Info(helpers.BuildContext(c), component, "text.echo",
		slog.String("status", "ok"),
		slog.String("text", logger.SanitizeLimit(text, 256)),
	)
	return helpers.SendText(c, text)
}
