package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/sholatbot/core/telegram/helpers"
	"github.com/m3rciful/sholatbot/internal/myquran"
)

const (
	usageHusna      = "Gunakan format: `/husna [nomor]` (contoh: `/husna 5`)"
	textHusnaRange  = "Nomor tidak valid. Masukkan angka antara 1 hingga 99."
	textHusnaNaN    = "Nomor tidak valid. Masukkan angka."
	textHusnaEmpty  = "Data Asmaul Husna tidak ditemukan."
	textHusnaFailed = "Terjadi kesalahan saat mengambil data Asmaul Husna."

	textSurahListFailed = "Gagal mendapatkan daftar surat."

	usageSurah     = "Gunakan format: `/surah [nomor]` (contoh: `/surah 1`)"
	textSurahNaN   = "Nomor surat harus berupa angka."
	textSurahRange = "Nomor surat tidak valid. Masukkan antara 1 hingga 114."
	textSurahEmpty = "Data surat tidak ditemukan."

	usageAyat     = "Gunakan format: `/ayat [nomor_surat] [nomor_ayat]` (contoh: `/ayat 1 1`)"
	textAyatNaN   = "Nomor surat dan ayat harus berupa angka."
	textAyatEmpty = "Data ayat tidak ditemukan."

	husnaCount = 99
	surahCount = 114
)

// upstreamErr keeps not-found quiet and surfaces real failures to the handler log.
func upstreamErr(err error) error {
	if err == nil || errors.Is(err, myquran.ErrNotFound) {
		return nil
	}
	return err
}

func formatHusna(n myquran.Husna) string {
	return fmt.Sprintf("Nomor: %s\nNama: %s (%s)\nLatin: %s", n.ID, n.Indo, n.Arab, n.Latin)
}

// Husna handles /husna <n>.
func (h *Handlers) Husna(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return helpers.SendMD(c, usageHusna)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return helpers.SendText(c, textHusnaNaN)
	}
	if n < 1 || n > husnaCount {
		return helpers.SendText(c, textHusnaRange)
	}
	name, err := h.deps.Quran.Husna(helpers.BuildContext(c), n)
	switch {
	case errors.Is(err, myquran.ErrNotFound):
		return helpers.SendText(c, textHusnaEmpty)
	case err != nil:
		return errors.Join(err, helpers.SendText(c, textHusnaFailed))
	}
	return helpers.SendText(c, formatHusna(name))
}

// AllHusna handles /alhusna.
func (h *Handlers) AllHusna(c tele.Context) error {
	names, err := h.deps.Quran.AllHusna(helpers.BuildContext(c))
	if err == nil && len(names) == 0 {
		err = myquran.ErrNotFound
	}
	switch {
	case errors.Is(err, myquran.ErrNotFound):
		return helpers.SendText(c, textHusnaEmpty)
	case err != nil:
		return errors.Join(err, helpers.SendText(c, textHusnaFailed))
	}
	entries := make([]string, 0, len(names))
	for _, n := range names {
		entries = append(entries, formatHusna(n)+"\n")
	}
	return helpers.SendLong(c, strings.Join(entries, "\n"))
}

// ListSurat handles /listsurat.
func (h *Handlers) ListSurat(c tele.Context) error {
	surahs, err := h.deps.Quran.Surahs(helpers.BuildContext(c))
	if err != nil || len(surahs) == 0 {
		return errors.Join(upstreamErr(err), helpers.SendText(c, textSurahListFailed))
	}
	var b strings.Builder
	b.WriteString("Daftar Surat Al-Quran (Nomor 1-114):\n\n")
	for i, s := range surahs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s.NameID)
	}
	return helpers.SendLong(c, b.String())
}

// Surah handles /surah <n>.
func (h *Handlers) Surah(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return helpers.SendMD(c, usageSurah)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return helpers.SendText(c, textSurahNaN)
	}
	if n < 1 || n > surahCount {
		return helpers.SendText(c, textSurahRange)
	}
	s, err := h.deps.Quran.Surah(helpers.BuildContext(c), n)
	if err != nil {
		return errors.Join(upstreamErr(err), helpers.SendText(c, textSurahEmpty))
	}
	text := fmt.Sprintf("Informasi Surat Al-Quran Nomor %d:\n\n"+
		"Nama Surat: %s (%s)\n"+
		"Nama Panjang: %s\n"+
		"Arti: %s\n"+
		"Jumlah Ayat: %s\n"+
		"Jenis Wahyu: %s\n"+
		"Tafsir: %s\n"+
		"Audio URL: %s",
		n, s.NameID, s.NameShort, s.NameLong, s.TranslationID, s.NumberOfVerses, s.RevelationID, s.Tafsir, s.AudioURL)
	return helpers.SendLong(c, text)
}

// Ayat handles /ayat <surah> <verse>. Ranges are left to the API.
func (h *Handlers) Ayat(c tele.Context) error {
	args := c.Args()
	if len(args) < 2 {
		return helpers.SendMD(c, usageAyat)
	}
	surah, err1 := strconv.Atoi(args[0])
	verse, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return helpers.SendText(c, textAyatNaN)
	}
	v, err := h.deps.Quran.Verse(helpers.BuildContext(c), surah, verse)
	if err != nil {
		return errors.Join(upstreamErr(err), helpers.SendText(c, textAyatEmpty))
	}
	text := fmt.Sprintf("Ayat %d dari Surat %d:\n\n"+
		"Ayat (Arab): %s\n"+
		"Ayat (Latin): %s\n"+
		"Terjemahan: %s\n"+
		"Audio URL: %s",
		verse, surah, v.Arab, v.Latin, v.Text, v.Audio)
	return helpers.SendLong(c, text)
}
