package handlers

import (
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/sholatbot/core/telegram/helpers"
	"github.com/m3rciful/sholatbot/core/telegram/keyboard"
	"github.com/m3rciful/sholatbot/internal/pending"
	"github.com/m3rciful/sholatbot/internal/prayer"
)

const (
	usageJadwal  = "Gunakan format: `/jadwalsholat [nama_kota]`"
	usageMaghrib = "Gunakan format: `/maghrib [nama_kota]`"

	choicesPerRow = 3
)

func (h *Handlers) lookup(intent pending.Intent, usage string) tele.HandlerFunc {
	return func(c tele.Context) error {
		city, date := h.splitCityArgs(c.Args())
		if city == "" {
			return helpers.SendMD(c, usage)
		}
		reply, err := h.deps.Prayer.Lookup(helpers.BuildContext(c), conversation(c), intent, city, date)
		if sendErr := sendPrayerReply(c, reply); err == nil {
			err = sendErr
		}
		return err
	}
}

// splitCityArgs joins the city words and peels off a trailing date, if any.
func (h *Handlers) splitCityArgs(args []string) (city, date string) {
	if n := len(args); n > 1 {
		if t, ok := helpers.ParseFlexibleDateIn(args[n-1], h.deps.Prayer.Location()); ok {
			return strings.Join(args[:n-1], " "), t.Format(prayer.DateLayout)
		}
	}
	return strings.TrimSpace(strings.Join(args, " ")), ""
}

// Resolve answers a numeric reply to an earlier city list.
func (h *Handlers) Resolve(c tele.Context) (bool, error) {
	reply, consumed, err := h.deps.Prayer.Choose(helpers.BuildContext(c), conversation(c), c.Text())
	if !consumed {
		return false, err
	}
	if sendErr := sendPrayerReply(c, reply); err == nil {
		err = sendErr
	}
	return true, err
}

func sendPrayerReply(c tele.Context, r prayer.Reply) error {
	if r.Text == "" {
		return nil
	}
	if len(r.Choices) > 0 {
		return helpers.SendLong(c, r.Text, &tele.SendOptions{
			ParseMode:   tele.ModeMarkdown,
			ReplyMarkup: keyboard.QuickReplies(r.Choices, choicesPerRow),
		})
	}
	var opts *tele.SendOptions
	if r.Markdown || r.Resolved {
		opts = &tele.SendOptions{}
		if r.Markdown {
			opts.ParseMode = tele.ModeMarkdown
		}
		if r.Resolved {
			opts.ReplyMarkup = keyboard.RemoveKeyboard()
		}
	}
	if opts == nil {
		return helpers.SendLong(c, r.Text)
	}
	return helpers.SendLong(c, r.Text, opts)
}
