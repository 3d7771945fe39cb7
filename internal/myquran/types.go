package myquran

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// flexString accepts JSON strings, numbers and null; the API is inconsistent about ids and counts.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string { return string(f) }

// flexBool accepts true/false as JSON booleans or strings.
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*f = false
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*f = flexBool(v)
	return nil
}

type envelope struct {
	Status  *flexBool       `json:"status"`
	Message json.RawMessage `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) empty() bool {
	d := bytes.TrimSpace(e.Data)
	return len(d) == 0 || bytes.Equal(d, []byte("null")) || bytes.Equal(d, []byte("[]")) || bytes.Equal(d, []byte("{}"))
}

func (e envelope) failed() bool {
	return e.Status != nil && !bool(*e.Status)
}

// City is one entry of the city directory.
type City struct {
	ID    string
	Label string
}

type cityDTO struct {
	ID     flexString `json:"id"`
	Lokasi string     `json:"lokasi"`
}

// Schedule holds the prayer times of one city for one date. Times may be absent.
type Schedule struct {
	Location string
	Region   string
	Date     string
	Imsak    *string
	Subuh    *string
	Terbit   *string
	Dhuha    *string
	Dzuhur   *string
	Ashar    *string
	Maghrib  *string
	Isya     *string
}

type scheduleDTO struct {
	Lokasi string `json:"lokasi"`
	Daerah string `json:"daerah"`
	Jadwal struct {
		Tanggal string  `json:"tanggal"`
		Imsak   *string `json:"imsak"`
		Subuh   *string `json:"subuh"`
		Terbit  *string `json:"terbit"`
		Dhuha   *string `json:"dhuha"`
		Dzuhur  *string `json:"dzuhur"`
		Ashar   *string `json:"ashar"`
		Maghrib *string `json:"maghrib"`
		Isya    *string `json:"isya"`
	} `json:"jadwal"`
}

func (d scheduleDTO) toSchedule() *Schedule {
	j := d.Jadwal
	return &Schedule{
		Location: d.Lokasi,
		Region:   d.Daerah,
		Date:     j.Tanggal,
		Imsak:    j.Imsak,
		Subuh:    j.Subuh,
		Terbit:   j.Terbit,
		Dhuha:    j.Dhuha,
		Dzuhur:   j.Dzuhur,
		Ashar:    j.Ashar,
		Maghrib:  j.Maghrib,
		Isya:     j.Isya,
	}
}

// Husna is one of the 99 names of Allah.
type Husna struct {
	ID    string
	Arab  string
	Indo  string
	Latin string
}

type husnaDTO struct {
	ID    flexString `json:"id"`
	Arab  string     `json:"arab"`
	Indo  string     `json:"indo"`
	Latin string     `json:"latin"`
}

func (d husnaDTO) toHusna() Husna {
	return Husna{ID: d.ID.String(), Arab: d.Arab, Indo: d.Indo, Latin: d.Latin}
}

// Surah describes a chapter of the Quran.
type Surah struct {
	Number         string
	NameID         string
	NameShort      string
	NameLong       string
	TranslationID  string
	NumberOfVerses string
	RevelationID   string
	Tafsir         string
	AudioURL       string
}

type surahDTO struct {
	Number         flexString `json:"number"`
	NameID         string     `json:"name_id"`
	NameShort      string     `json:"name_short"`
	NameLong       string     `json:"name_long"`
	TranslationID  string     `json:"translation_id"`
	NumberOfVerses flexString `json:"number_of_verses"`
	RevelationID   string     `json:"revelation_id"`
	Tafsir         string     `json:"tafsir"`
	AudioURL       string     `json:"audio_url"`
}

func (d surahDTO) toSurah() Surah {
	return Surah{
		Number:         d.Number.String(),
		NameID:         d.NameID,
		NameShort:      d.NameShort,
		NameLong:       d.NameLong,
		TranslationID:  d.TranslationID,
		NumberOfVerses: d.NumberOfVerses.String(),
		RevelationID:   d.RevelationID,
		Tafsir:         d.Tafsir,
		AudioURL:       d.AudioURL,
	}
}

// Verse is a single ayah with transliteration and translation.
type Verse struct {
	Arab  string `json:"arab"`
	Latin string `json:"latin"`
	Text  string `json:"text"`
	Audio string `json:"audio"`
}
