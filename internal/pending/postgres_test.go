package pending

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresStore(t *testing.T, opts Options) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(sqlx.NewDb(db, "postgres"), opts), mock
}

func TestPostgresStoreSetUpserts(t *testing.T) {
	now := time.Date(2026, 10, 18, 5, 0, 0, 0, time.UTC)
	s, mock := newPostgresStore(t, Options{TTL: 30 * time.Minute, Now: func() time.Time { return now }})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pending_disambiguations")).
		WithArgs(int64(10), int64(1), "jadwal",
			`[{"id":"1301","label":"KOTA JAKARTA"},{"id":"1302","label":"KAB. KEPULAUAN SERIBU"}]`,
			"2026-10-18", now, now.Add(30*time.Minute)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Set(context.Background(), ConversationID{ChatID: 10, UserID: 1},
		Pending{Intent: FullSchedule, Candidates: jakarta(), Date: "2026-10-18"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSetWithoutTTL(t *testing.T) {
	now := time.Date(2026, 10, 18, 5, 0, 0, 0, time.UTC)
	s, mock := newPostgresStore(t, Options{Now: func() time.Time { return now }})

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (chat_id, user_id, intent) DO UPDATE")).
		WithArgs(int64(10), int64(1), "maghrib", sqlmock.AnyArg(), "2026-10-18", now, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), ConversationID{ChatID: 10, UserID: 1},
		Pending{Intent: MaghribOnly, Candidates: jakarta(), Date: "2026-10-18"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGet(t *testing.T) {
	now := time.Date(2026, 10, 18, 5, 0, 0, 0, time.UTC)
	s, mock := newPostgresStore(t, Options{Now: func() time.Time { return now }})
	conv := ConversationID{ChatID: 10, UserID: 1}

	rows := sqlmock.NewRows([]string{"intent", "candidates", "reference_date", "created_at"}).
		AddRow("maghrib", []byte(`[{"id":"1301","label":"KOTA JAKARTA"}]`), "2026-10-18", now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM pending_disambiguations")).
		WithArgs(int64(10), int64(1), "maghrib", now).
		WillReturnRows(rows)

	p, ok, err := s.Get(context.Background(), conv, MaghribOnly)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, MaghribOnly, p.Intent)
	assert.Equal(t, []Candidate{{ID: "1301", Label: "KOTA JAKARTA"}}, p.Candidates)

	mock.ExpectQuery(regexp.QuoteMeta("FROM pending_disambiguations")).
		WithArgs(int64(10), int64(1), "jadwal", now).
		WillReturnError(sql.ErrNoRows)
	_, ok, err = s.Get(context.Background(), conv, FullSchedule)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectQuery(regexp.QuoteMeta("FROM pending_disambiguations")).
		WillReturnError(errors.New("connection reset"))
	_, _, err = s.Get(context.Background(), conv, FullSchedule)
	assert.ErrorContains(t, err, "pending: select")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreClearAndSweep(t *testing.T) {
	now := time.Date(2026, 10, 18, 5, 0, 0, 0, time.UTC)
	s, mock := newPostgresStore(t, Options{TTL: time.Minute, Now: func() time.Time { return now }})

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM pending_disambiguations WHERE chat_id = $1")).
		WithArgs(int64(10), int64(1), "jadwal").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.Clear(context.Background(), ConversationID{ChatID: 10, UserID: 1}, FullSchedule))

	mock.ExpectExec(regexp.QuoteMeta("WHERE expires_at IS NOT NULL AND expires_at <= $1")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))
	n, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.NoError(t, s.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
