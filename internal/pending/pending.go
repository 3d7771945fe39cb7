// Package pending remembers, per conversation, which city candidates a user
// was offered and for which command, until a numeric reply picks one.
package pending

import (
	"context"
	"fmt"
	"time"
)

// Intent names the command that started a city choice.
type Intent string

const (
	// FullSchedule is the /jadwalsholat flow.
	FullSchedule Intent = "jadwal"
	// MaghribOnly is the /maghrib flow.
	MaghribOnly Intent = "maghrib"
)

// Priority lists intents in the order a numeric reply is matched against them.
var Priority = []Intent{MaghribOnly, FullSchedule}

// Valid reports whether i is a known intent.
func (i Intent) Valid() bool {
	return i == FullSchedule || i == MaghribOnly
}

// ConversationID scopes state to one user inside one chat.
type ConversationID struct {
	ChatID int64
	UserID int64
}

func (c ConversationID) String() string {
	return fmt.Sprintf("%d:%d", c.ChatID, c.UserID)
}

// Candidate is one city offered to the user.
type Candidate struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Pending is an unanswered city choice.
type Pending struct {
	Intent     Intent      `json:"intent"`
	Candidates []Candidate `json:"candidates"`
	// Date is the reference date of the original command, YYYY-MM-DD.
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// Match returns the candidate whose ID equals id exactly.
func (p Pending) Match(id string) (Candidate, bool) {
	for _, c := range p.Candidates {
		if c.ID == id {
			return c, true
		}
	}
	return Candidate{}, false
}

// Store keeps at most one Pending per conversation and intent.
// Implementations are safe for concurrent use and never return expired entries.
type Store interface {
	// Set stores p, replacing any entry with the same conversation and intent.
	Set(ctx context.Context, conv ConversationID, p Pending) error
	Get(ctx context.Context, conv ConversationID, intent Intent) (Pending, bool, error)
	// Clear removes only the entry for intent.
	Clear(ctx context.Context, conv ConversationID, intent Intent) error
	// Sweep drops expired entries and reports how many were removed.
	Sweep(ctx context.Context) (int, error)
	Close() error
}

// Live returns the live entries of conv in Priority order.
func Live(ctx context.Context, s Store, conv ConversationID) ([]Pending, error) {
	var out []Pending
	for _, intent := range Priority {
		p, ok, err := s.Get(ctx, conv, intent)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", intent, err)
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Options shared by all backends.
type Options struct {
	// TTL bounds how long a choice stays answerable; zero keeps entries until cleared.
	TTL time.Duration
	// Now overrides the clock.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) expired(created time.Time) bool {
	return o.TTL > 0 && !o.now().Before(created.Add(o.TTL))
}
