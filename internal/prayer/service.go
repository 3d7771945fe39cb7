// Package prayer answers prayer-time requests and walks users through
// choosing a city when a name matches several locations.
package prayer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/sholatbot/core/logger"
	"github.com/m3rciful/sholatbot/core/metrics"
	"github.com/m3rciful/sholatbot/internal/myquran"
	"github.com/m3rciful/sholatbot/internal/pending"
)

const (
	component = "prayer"

	// DateLayout is the reference date format accepted by the schedule endpoint.
	DateLayout = "2006-01-02"
	// DefaultTimezone decides what "today" means when no date is given.
	DefaultTimezone = "Asia/Jakarta"
)

// Directory is the subset of the myQuran client used for prayer times.
type Directory interface {
	SearchCity(ctx context.Context, name string) ([]myquran.City, error)
	Schedule(ctx context.Context, cityID, date string) (*myquran.Schedule, error)
}

// Reply is what the bot should send back.
type Reply struct {
	Text string
	// Markdown marks Text as legacy Markdown.
	Markdown bool
	// Choices are candidate IDs to offer as quick replies.
	Choices []string
	// Resolved is set when a pending choice was answered and any quick-reply
	// keyboard should be removed.
	Resolved bool
}

// Options configures a Service.
type Options struct {
	Location *time.Location
	Now      func() time.Time
}

// Service implements the lookup and city choice flows.
type Service struct {
	dir   Directory
	store pending.Store
	loc   *time.Location
	now   func() time.Time
}

// NewService wires dir and store. A nil Location falls back to Asia/Jakarta, then UTC.
func NewService(dir Directory, store pending.Store, opts Options) *Service {
	loc := opts.Location
	if loc == nil {
		var err error
		if loc, err = time.LoadLocation(DefaultTimezone); err != nil {
			loc = time.UTC
		}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{dir: dir, store: store, loc: loc, now: now}
}

// Location returns the timezone used for reference dates.
func (s *Service) Location() *time.Location { return s.loc }

// Today returns the current date in the service timezone.
func (s *Service) Today() string {
	return s.now().In(s.loc).Format(DateLayout)
}

// Lookup searches city and either answers directly or asks the user to choose.
// An empty date means today. The returned error is set only for state store
// failures; the reply is still meaningful in that case.
func (s *Service) Lookup(ctx context.Context, conv pending.ConversationID, intent pending.Intent, city, date string) (Reply, error) {
	city = strings.TrimSpace(city)
	if date == "" {
		date = s.Today()
	}
	ctx = logger.WithAttrs(ctx, slog.String("intent", string(intent)))
	cities, err := s.dir.SearchCity(ctx, city)
	if err != nil {
		logger.Warn(ctx, component, "city.search",
			slog.String("status", "fail"),
			logger.ErrAttr(err),
		)
		return Reply{Text: TextCityNotFound}, nil
	}
	switch len(cities) {
	case 0:
		logger.Info(ctx, component, "city.search",
			slog.String("status", "skip"),
			slog.Int("results", 0),
		)
		return Reply{Text: TextCityNotFound}, nil
	case 1:
		return Reply{Text: s.fetch(ctx, intent, cities[0].ID, date)}, nil
	}

	candidates := make([]pending.Candidate, 0, len(cities))
	choices := make([]string, 0, len(cities))
	for _, c := range cities {
		candidates = append(candidates, pending.Candidate{ID: c.ID, Label: c.Label})
		choices = append(choices, c.ID)
	}
	p := pending.Pending{Intent: intent, Candidates: candidates, Date: date, CreatedAt: s.now()}
	if err := s.store.Set(ctx, conv, p); err != nil {
		return Reply{Text: TextInternalError}, err
	}
	metrics.Disambiguations.WithLabelValues(string(intent), "started").Inc()
	logger.Info(ctx, component, "pending.stored",
		slog.String("status", "ok"),
		slog.Int("candidates", len(candidates)),
		slog.String("date", date),
	)
	return Reply{Text: RenderCandidates(city, candidates), Markdown: true, Choices: choices}, nil
}

// Choose resolves a numeric reply against pending choices. The bool result
// reports whether the text was consumed; it is false only when nothing is
// pending, so the caller can fall back to its default handling of the text.
func (s *Service) Choose(ctx context.Context, conv pending.ConversationID, text string) (Reply, bool, error) {
	id := strings.TrimSpace(text)
	live, err := pending.Live(ctx, s.store, conv)
	if err != nil {
		return Reply{Text: TextInternalError}, true, err
	}
	if len(live) == 0 {
		return Reply{}, false, nil
	}
	for _, p := range live {
		intent := p.Intent
		city, ok := p.Match(id)
		if !ok {
			continue
		}
		date := p.Date
		if date == "" {
			date = s.Today()
		}
		ctx := logger.WithAttrs(ctx, slog.String("intent", string(intent)))
		out := s.fetch(ctx, intent, city.ID, date)
		if err := s.store.Clear(ctx, conv, intent); err != nil {
			return Reply{Text: out, Resolved: true}, true, fmt.Errorf("clear %s: %w", intent, err)
		}
		metrics.Disambiguations.WithLabelValues(string(intent), "resolved").Inc()
		logger.Info(ctx, component, "pending.resolved",
			slog.String("status", "ok"),
			slog.String("city_id", city.ID),
		)
		return Reply{Text: out, Resolved: true}, true, nil
	}
	first := live[0].Intent
	metrics.Disambiguations.WithLabelValues(string(first), "invalid").Inc()
	logger.Info(ctx, component, "pending.invalid",
		slog.String("status", "skip"),
		slog.String("intent", string(first)),
		slog.String("city_id", logger.SanitizeLimit(id, 32)),
	)
	return Reply{Text: TextInvalidChoice}, true, nil
}

func (s *Service) fetch(ctx context.Context, intent pending.Intent, cityID, date string) string {
	sched, err := s.dir.Schedule(ctx, cityID, date)
	switch {
	case errors.Is(err, myquran.ErrNotFound):
		logger.Info(ctx, component, "schedule.fetch",
			slog.String("status", "skip"),
			slog.String("city_id", cityID),
			slog.String("date", date),
		)
		return TextScheduleNotFound
	case err != nil:
		logger.Warn(ctx, component, "schedule.fetch",
			slog.String("status", "fail"),
			slog.String("city_id", cityID),
			slog.String("date", date),
			logger.ErrAttr(err),
		)
		return TextScheduleFailed
	}
	return RenderSchedule(intent, sched)
}
