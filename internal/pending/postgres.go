package pending

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	upsertPendingSQL = `
INSERT INTO pending_disambiguations (chat_id, user_id, intent, candidates, reference_date, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (chat_id, user_id, intent) DO UPDATE
SET candidates = EXCLUDED.candidates,
    reference_date = EXCLUDED.reference_date,
    created_at = EXCLUDED.created_at,
    expires_at = EXCLUDED.expires_at`

	selectPendingSQL = `
SELECT intent, candidates, reference_date, created_at
FROM pending_disambiguations
WHERE chat_id = $1 AND user_id = $2 AND intent = $3
  AND (expires_at IS NULL OR expires_at > $4)`

	deletePendingSQL = `DELETE FROM pending_disambiguations WHERE chat_id = $1 AND user_id = $2 AND intent = $3`

	sweepPendingSQL = `DELETE FROM pending_disambiguations WHERE expires_at IS NOT NULL AND expires_at <= $1`
)

type pendingRow struct {
	Intent        string    `db:"intent"`
	Candidates    []byte    `db:"candidates"`
	ReferenceDate string    `db:"reference_date"`
	CreatedAt     time.Time `db:"created_at"`
}

// PostgresStore persists pending choices so they survive restarts.
// The pending_disambiguations table is created by migrations.
type PostgresStore struct {
	db   *sqlx.DB
	opts Options
}

// NewPostgresStore uses db without owning it.
func NewPostgresStore(db *sqlx.DB, opts Options) *PostgresStore {
	return &PostgresStore{db: db, opts: opts}
}

func (s *PostgresStore) Set(ctx context.Context, conv ConversationID, p Pending) error {
	if !p.Intent.Valid() {
		return fmt.Errorf("pending: invalid intent %q", p.Intent)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.opts.now()
	}
	candidates, err := json.Marshal(p.Candidates)
	if err != nil {
		return fmt.Errorf("pending: marshal candidates: %w", err)
	}
	var expires sql.NullTime
	if s.opts.TTL > 0 {
		expires = sql.NullTime{Time: p.CreatedAt.Add(s.opts.TTL), Valid: true}
	}
	_, err = s.db.ExecContext(ctx, upsertPendingSQL,
		conv.ChatID, conv.UserID, string(p.Intent), string(candidates), p.Date, p.CreatedAt, expires)
	if err != nil {
		return fmt.Errorf("pending: upsert: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, conv ConversationID, intent Intent) (Pending, bool, error) {
	var row pendingRow
	err := s.db.GetContext(ctx, &row, selectPendingSQL, conv.ChatID, conv.UserID, string(intent), s.opts.now())
	if errors.Is(err, sql.ErrNoRows) {
		return Pending{}, false, nil
	}
	if err != nil {
		return Pending{}, false, fmt.Errorf("pending: select: %w", err)
	}
	p := Pending{
		Intent:    Intent(row.Intent),
		Date:      row.ReferenceDate,
		CreatedAt: row.CreatedAt,
	}
	if err := json.Unmarshal(row.Candidates, &p.Candidates); err != nil {
		return Pending{}, false, fmt.Errorf("pending: decode candidates: %w", err)
	}
	return p, true, nil
}

func (s *PostgresStore) Clear(ctx context.Context, conv ConversationID, intent Intent) error {
	if _, err := s.db.ExecContext(ctx, deletePendingSQL, conv.ChatID, conv.UserID, string(intent)); err != nil {
		return fmt.Errorf("pending: delete: %w", err)
	}
	return nil
}

func (s *PostgresStore) Sweep(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, sweepPendingSQL, s.opts.now())
	if err != nil {
		return 0, fmt.Errorf("pending: sweep: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pending: sweep rows: %w", err)
	}
	return int(n), nil
}

// Close is a no-op; the connection pool belongs to the caller.
func (s *PostgresStore) Close() error { return nil }
