package bootstrap

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/sholatbot/core/config"
	coredatabase "github.com/m3rciful/sholatbot/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunWithoutDatabase(t *testing.T) {
	connected := false
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			connected = true
			return nil, nil
		},
	})
	require.NoError(t, err)
	assert.Nil(t, res.DB)
	assert.False(t, connected)
	assert.NoError(t, res.Close())
}

func TestRunConnectsAndMigrates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	var migrated coredatabase.Config
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		Database:   &coredatabase.Config{Name: "sholat"},
		LoggerInit: noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			return sqlx.NewDb(db, "postgres"), nil
		},
		Migrate: func(cfg coredatabase.Config) error {
			migrated = cfg
			return nil
		},
	})
	require.NoError(t, err)
	require.NotNil(t, res.DB)
	assert.Equal(t, "sholat", migrated.Name)
	require.NoError(t, res.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunClosesDBWhenMigrationFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	_, err = Run(Options{
		Config:     &coreconfig.Config{},
		Database:   &coredatabase.Config{},
		LoggerInit: noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			return sqlx.NewDb(db, "postgres"), nil
		},
		Migrate: func(coredatabase.Config) error { return errors.New("dirty") },
	})
	require.ErrorContains(t, err, "migrations failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRejectsNilConfig(t *testing.T) {
	_, err := Run(Options{})
	assert.Error(t, err)
}
