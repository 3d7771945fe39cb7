// Package myquran is a client for the myQuran v2 API: prayer schedules,
// the city directory, Asmaul Husna and Quran lookups.
package myquran

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/sholatbot/core/logger"
	"github.com/m3rciful/sholatbot/core/metrics"
	"github.com/m3rciful/sholatbot/core/telegram/netutil"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.myquran.com/v2"

const maxBodyBytes = 8 << 20

// Client performs fail-fast GET requests; timeouts come from the injected http.Client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a Client. An empty baseURL selects DefaultBaseURL and a nil client http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// SearchCity looks cities up by free-text name. No match yields an empty slice.
func (c *Client) SearchCity(ctx context.Context, name string) ([]City, error) {
	var dtos []cityDTO
	err := c.get(ctx, "city_search", "/sholat/kota/cari/"+url.PathEscape(strings.TrimSpace(name)), &dtos)
	if errors.Is(err, ErrNotFound) {
		return []City{}, nil
	}
	if err != nil {
		return nil, err
	}
	cities := make([]City, 0, len(dtos))
	for _, d := range dtos {
		cities = append(cities, City{ID: d.ID.String(), Label: d.Lokasi})
	}
	return cities, nil
}

// Schedule fetches prayer times for cityID on date (YYYY-MM-DD).
func (c *Client) Schedule(ctx context.Context, cityID, date string) (*Schedule, error) {
	var dto scheduleDTO
	path := "/sholat/jadwal/" + url.PathEscape(cityID) + "/" + url.PathEscape(date)
	if err := c.get(ctx, "schedule", path, &dto); err != nil {
		return nil, err
	}
	return dto.toSchedule(), nil
}

// Husna returns the n-th name (1..99).
func (c *Client) Husna(ctx context.Context, n int) (Husna, error) {
	var dto husnaDTO
	if err := c.get(ctx, "husna", "/husna/"+strconv.Itoa(n), &dto); err != nil {
		return Husna{}, err
	}
	return dto.toHusna(), nil
}

// AllHusna returns all 99 names in order.
func (c *Client) AllHusna(ctx context.Context) ([]Husna, error) {
	var dtos []husnaDTO
	if err := c.get(ctx, "husna_all", "/husna/semua", &dtos); err != nil {
		return nil, err
	}
	out := make([]Husna, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toHusna())
	}
	return out, nil
}

// Surahs lists all 114 surahs.
func (c *Client) Surahs(ctx context.Context) ([]Surah, error) {
	var dtos []surahDTO
	if err := c.get(ctx, "surah_list", "/quran/surat/semua", &dtos); err != nil {
		return nil, err
	}
	out := make([]Surah, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toSurah())
	}
	return out, nil
}

// Surah returns details for surah n (1..114).
func (c *Client) Surah(ctx context.Context, n int) (Surah, error) {
	var dto surahDTO
	if err := c.get(ctx, "surah", "/quran/surat/"+strconv.Itoa(n), &dto); err != nil {
		return Surah{}, err
	}
	return dto.toSurah(), nil
}

// Verse returns one ayah. The API answers with a list; the first entry is used.
func (c *Client) Verse(ctx context.Context, surah, verse int) (Verse, error) {
	var list []Verse
	path := fmt.Sprintf("/quran/ayat/%d/%d", surah, verse)
	if err := c.get(ctx, "verse", path, &list); err != nil {
		return Verse{}, err
	}
	if len(list) == 0 {
		return Verse{}, ErrNotFound
	}
	return list[0], nil
}

// get performs the request and decodes the "data" member of the envelope into out.
func (c *Client) get(ctx context.Context, endpoint, path string, out any) (err error) {
	start := time.Now()
	status := 0
	defer func() {
		took := logger.Took(start)
		outcome := "ok"
		switch {
		case errors.Is(err, ErrNotFound):
			outcome = "not_found"
		case err != nil:
			outcome = string(netutil.Classify(err))
		}
		metrics.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
		metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(took.Seconds())

		attrs := []slog.Attr{
			slog.String("status", logger.Status(err)),
			slog.String("endpoint", endpoint),
			slog.Int("http_code", status),
			slog.Duration("duration", took),
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			logger.Warn(ctx, "myquran", "upstream.request", append(attrs, logger.ErrAttr(err))...)
			return
		}
		logger.Debug(ctx, "myquran", "upstream.request", attrs...)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &APIError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &APIError{Endpoint: endpoint, Status: status, Err: fmt.Errorf("read body: %w", err)}
	}
	if status < 200 || status > 299 {
		return &APIError{Endpoint: endpoint, Status: status, Err: fmt.Errorf("unexpected status")}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &APIError{Endpoint: endpoint, Status: status, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if env.failed() || env.empty() {
		return ErrNotFound
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &APIError{Endpoint: endpoint, Status: status, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}
