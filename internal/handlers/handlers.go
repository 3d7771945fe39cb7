// Package handlers binds bot commands to the prayer, Quran and content services.
package handlers

import (
	"context"
	"errors"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/sholatbot/core/telegram"
	"github.com/m3rciful/sholatbot/core/telegram/commands"
	"github.com/m3rciful/sholatbot/core/telegram/helpers"
	"github.com/m3rciful/sholatbot/core/telegram/sender"
	"github.com/m3rciful/sholatbot/internal/content"
	"github.com/m3rciful/sholatbot/internal/myquran"
	"github.com/m3rciful/sholatbot/internal/pending"
	"github.com/m3rciful/sholatbot/internal/prayer"
)

const component = "handlers"

// QuranAPI is the part of the myQuran client used by content commands.
type QuranAPI interface {
	Husna(ctx context.Context, n int) (myquran.Husna, error)
	AllHusna(ctx context.Context) ([]myquran.Husna, error)
	Surahs(ctx context.Context) ([]myquran.Surah, error)
	Surah(ctx context.Context, n int) (myquran.Surah, error)
	Verse(ctx context.Context, surah, verse int) (myquran.Verse, error)
}

// Deps are the services the handlers call into.
type Deps struct {
	Prayer  *prayer.Service
	Quran   QuranAPI
	Library *content.Library
	// Dispatcher feeds /stats; nil reports zero counters.
	Dispatcher *sender.Dispatcher
}

// Handlers implements every bot command plus the numeric-reply resolver.
type Handlers struct {
	deps Deps
	reg  *tg.Registry
}

// New returns Handlers backed by deps.
func New(deps Deps) *Handlers {
	return &Handlers{deps: deps}
}

// Register adds all commands and the echo fallback to reg.
func (h *Handlers) Register(reg *tg.Registry) error {
	h.reg = reg
	defs := []struct {
		name string
		cmd  commands.Command
	}{
		{"/start", commands.Command{Handler: h.Start, Description: "Mulai bot"}},
		{"/info", commands.Command{Handler: h.Info, Description: "Informasi bot"}},
		{"/jadwalsholat", commands.Command{
			Handler:     h.lookup(pending.FullSchedule, usageJadwal),
			Description: "Jadwal sholat lengkap",
			Usage:       "[nama_kota] [tanggal]",
			Aliases:     []string{"jadwal"},
		}},
		{"/maghrib", commands.Command{
			Handler:     h.lookup(pending.MaghribOnly, usageMaghrib),
			Description: "Waktu Maghrib",
			Usage:       "[nama_kota] [tanggal]",
		}},
		{"/dzikir", commands.Command{Handler: h.Dzikir, Description: "Dzikir acak"}},
		{"/renungan", commands.Command{Handler: h.Renungan, Description: "Renungan acak"}},
		{"/husna", commands.Command{Handler: h.Husna, Description: "Asmaul Husna berdasarkan nomor", Usage: "[nomor]"}},
		{"/alhusna", commands.Command{Handler: h.AllHusna, Description: "Semua Asmaul Husna", Aliases: []string{"allhusna"}}},
		{"/listsurat", commands.Command{Handler: h.ListSurat, Description: "Daftar surat Al-Quran"}},
		{"/surah", commands.Command{Handler: h.Surah, Description: "Informasi surat", Usage: "[nomor]"}},
		{"/ayat", commands.Command{Handler: h.Ayat, Description: "Ayat Al-Quran", Usage: "[nomor_surat] [nomor_ayat]"}},
		{"/stats", commands.Command{Handler: h.Stats, Description: "Statistik bot", AdminOnly: true, Hidden: true}},
	}
	var errs []error
	for _, d := range defs {
		errs = append(errs, reg.RegisterCommand(d.name, d.cmd))
	}
	reg.SetTextFallback(h.Echo)
	return errors.Join(errs...)
}

func conversation(c tele.Context) pending.ConversationID {
	chatID, userID := helpers.IDs(c)
	return pending.ConversationID{ChatID: chatID, UserID: userID}
}
