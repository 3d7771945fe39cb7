package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/sholatbot/core/logger"
)

const (
	defaultMigrationsDir = "migrations"
	migrateWait          = 30 * time.Second
)

// RunMigrations waits for Postgres and applies every pending up migration.
// A database left dirty by an earlier failed run is reported, not forced.
func RunMigrations(cfg Config) error {
	ctx := context.Background()
	if err := WaitForPostgres(cfg.URL(), migrateWait); err != nil {
		logger.Error(ctx, "db.migrate", "wait", slog.String("status", "fail"), logger.ErrAttr(err))
		return fmt.Errorf("database not ready: %w", err)
	}

	set, err := loadMigrationSet(cfg.MigrationsPath)
	if err != nil {
		return err
	}
	logger.Debug(ctx, "db.migrate", "resolve",
		slog.String("path", set.dir),
		slog.Int("count", len(set.files)),
		slog.String("files", logger.Preview(set.files, 6)),
	)

	m, err := migrate.New("file://"+filepath.ToSlash(set.dir), cfg.URL())
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close()

	from, dirty, err := currentVersion(m)
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("database is dirty at version %d; fix it and force the version manually", from)
	}

	start := time.Now()
	err = m.Up()
	took := logger.Took(start)
	if errors.Is(err, migrate.ErrNoChange) {
		err = nil
	}
	if err != nil {
		logger.Error(ctx, "db.migrate", "apply",
			slog.String("status", "fail"),
			slog.Uint64("from_ver", uint64(from)),
			logger.ErrAttr(err),
			slog.Duration("duration", took),
		)
		return fmt.Errorf("migration execution failed: %w", err)
	}

	to, _, err := currentVersion(m)
	if err != nil {
		return err
	}
	logger.Info(ctx, "db.migrate", "summary",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("count", set.between(from, to)),
		slog.Duration("duration", took),
	)
	return nil
}

// currentVersion treats a fresh database as version 0.
func currentVersion(m *migrate.Migrate) (uint, bool, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read migration version: %w", err)
	}
	return v, dirty, nil
}

// migrationSet is the sorted list of *.up.sql names in dir.
type migrationSet struct {
	dir   string
	files []string
}

func loadMigrationSet(path string) (migrationSet, error) {
	dir, err := resolveMigrationsDir(path)
	if err != nil {
		return migrationSet{}, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return migrationSet{}, fmt.Errorf("read migrations dir: %w", err)
	}
	set := migrationSet{dir: dir}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			set.files = append(set.files, e.Name())
		}
	}
	slices.Sort(set.files)
	return set, nil
}

// between counts migrations with from < version <= to.
func (s migrationSet) between(from, to uint) int {
	n := 0
	for _, name := range s.files {
		head, _, _ := strings.Cut(name, "_")
		v, err := strconv.ParseUint(head, 10, 64)
		if err == nil && v > uint64(from) && v <= uint64(to) {
			n++
		}
	}
	return n
}

func resolveMigrationsDir(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultMigrationsDir
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve migrations dir: %w", err)
	}
	return abs, nil
}
