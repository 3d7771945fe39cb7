// Package bootstrap brings up process infrastructure in order: logger first,
// then the optional Postgres connection and its migrations.
package bootstrap

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/sholatbot/core/config"
	coredatabase "github.com/m3rciful/sholatbot/core/database"
	"github.com/m3rciful/sholatbot/core/logger"
)

// Options selects what Run initializes. The function fields replace the real
// implementations in tests; nil means the package default.
type Options struct {
	Config *coreconfig.Config
	// Database is nil for bots that keep no relational state.
	Database *coredatabase.Config

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
}

func (o Options) withDefaults() Options {
	if o.LoggerInit == nil {
		o.LoggerInit = logger.InitLogger
	}
	if o.Connect == nil {
		o.Connect = coredatabase.Connect
	}
	if o.Migrate == nil {
		o.Migrate = coredatabase.RunMigrations
	}
	return o
}

// Result holds what Run acquired.
type Result struct {
	// DB is nil when no database was requested.
	DB *sqlx.DB
}

func (r *Result) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// Run initializes the logger and, when Database is set, connects and migrates.
// On error nothing is left open.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: nil config provided")
	}
	opts = opts.withDefaults()

	if err := opts.LoggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}
	if opts.Database == nil {
		return &Result{}, nil
	}

	db, err := opts.Connect(*opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	if err := opts.Migrate(*opts.Database); err != nil {
		return nil, errors.Join(fmt.Errorf("bootstrap: migrations failed: %w", err), db.Close())
	}
	return &Result{DB: db}, nil
}
