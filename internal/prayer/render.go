package prayer

import (
	"fmt"
	"strings"

	"github.com/m3rciful/sholatbot/core/telegram/format"
	"github.com/m3rciful/sholatbot/internal/myquran"
	"github.com/m3rciful/sholatbot/internal/pending"
)

// Reply texts shown to users.
const (
	TextCityNotFound     = "Kota tidak ditemukan. Coba masukkan nama kota yang lebih spesifik."
	TextScheduleNotFound = "Jadwal sholat tidak ditemukan."
	TextScheduleFailed   = "Gagal mengambil data jadwal sholat."
	TextInvalidChoice    = "ID kota tidak valid. Silakan coba lagi."
	TextInternalError    = "Terjadi kesalahan. Silakan coba lagi nanti."

	missingTime    = "-"
	missingMaghrib = "Tidak ada data"
)

type scheduleLine struct {
	icon  string
	label string
	value func(*myquran.Schedule) *string
}

var scheduleLines = []scheduleLine{
	{"🕌", "Imsak", func(s *myquran.Schedule) *string { return s.Imsak }},
	{"🕌", "Subuh", func(s *myquran.Schedule) *string { return s.Subuh }},
	{"🌅", "Terbit", func(s *myquran.Schedule) *string { return s.Terbit }},
	{"🌞", "Dhuha", func(s *myquran.Schedule) *string { return s.Dhuha }},
	{"🕌", "Dzuhur", func(s *myquran.Schedule) *string { return s.Dzuhur }},
	{"🕌", "Ashar", func(s *myquran.Schedule) *string { return s.Ashar }},
	{"🌇", "Maghrib", func(s *myquran.Schedule) *string { return s.Maghrib }},
	{"🌙", "Isya", func(s *myquran.Schedule) *string { return s.Isya }},
}

// RenderSchedule formats s for intent as plain text.
func RenderSchedule(intent pending.Intent, s *myquran.Schedule) string {
	if intent == pending.MaghribOnly {
		return fmt.Sprintf("Waktu Maghrib di %s (%s) pada %s adalah %s",
			s.Location, s.Region, s.Date, format.ValueOr(s.Maghrib, missingMaghrib))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Jadwal Sholat di %s (%s) pada %s:\n\n", s.Location, s.Region, s.Date)
	for i, line := range scheduleLines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s: %s", line.icon, line.label, format.ValueOr(line.value(s), missingTime))
	}
	return b.String()
}

// RenderCandidates lists ambiguous search results in legacy Markdown.
func RenderCandidates(name string, candidates []pending.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ditemukan beberapa hasil untuk %s:\n\n", format.InlineCode(name))
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s (ID: %s)\n", i+1, format.EscapeV1(c.Label), format.EscapeV1(c.ID))
	}
	if len(candidates) > 0 {
		fmt.Fprintf(&b, "\nSilakan pilih kota dengan mengetik ID kota (misal: %s)", format.InlineCode(candidates[0].ID))
	}
	return b.String()
}
