package app

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/sholatbot/core/bootstrap"
	coreconfig "github.com/m3rciful/sholatbot/core/config"
	coredatabase "github.com/m3rciful/sholatbot/core/database"
	tg "github.com/m3rciful/sholatbot/core/telegram"
	"github.com/m3rciful/sholatbot/internal/pending"
)

func testConfig(t *testing.T, mutate func(*Config)) *Config {
	t.Helper()
	cfg := &Config{Config: validCore()}
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, Normalize(cfg))
	return cfg
}

func quietBootstrap() bootstrap.Options {
	return bootstrap.Options{LoggerInit: func(*coreconfig.Config) error { return nil }}
}

func TestNewMemoryBackend(t *testing.T) {
	cfg := testConfig(t, func(c *Config) { c.Metrics.Listen = "127.0.0.1:0" })
	a, err := New(cfg, Options{Bootstrap: quietBootstrap()})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })

	assert.IsType(t, &pending.MemoryStore{}, a.store)
	assert.Nil(t, a.boot.DB)

	for _, name := range []string{"/start", "/info", "/jadwalsholat", "/maghrib", "/dzikir", "/renungan", "/husna", "/alhusna", "/listsurat", "/surah", "/ayat", "/stats"} {
		_, _, ok := a.Registry().LookupCommand(name)
		assert.True(t, ok, name)
	}
	assert.NotNil(t, a.Registry().TextFallback())

	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)
	assert.Same(t, a.cfg.CoreConfig(), opts.Config)
	assert.Same(t, a.dispatcher, opts.Dispatcher)
	assert.Len(t, opts.Routes, len(a.Registry().Commands())+1)

	var names []string
	for _, mw := range opts.Middlewares {
		names = append(names, mw.Name)
	}
	assert.Equal(t, []string{"recover", "logger", "metrics"}, names)

	rt := tg.Runtime{Registry: a.Registry(), Dispatcher: a.dispatcher}
	require.NoError(t, opts.OnStart(context.Background(), rt))
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, opts.OnStop(stopCtx, rt))
	a.dispatcher.Close()
}

func TestNewRateLimitMiddleware(t *testing.T) {
	cfg := testConfig(t, func(c *Config) { c.RateLimit.Interval = 500 * time.Millisecond })
	a, err := New(cfg, Options{Bootstrap: quietBootstrap()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(); a.dispatcher.Close() })

	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)
	require.Len(t, opts.Middlewares, 4)
	assert.Equal(t, "rate_limit", opts.Middlewares[1].Name)
}

func TestNewRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, func(c *Config) {
		c.Pending.Backend = BackendRedis
		c.Pending.Redis.Addr = mr.Addr()
	})
	a, err := New(cfg, Options{Bootstrap: quietBootstrap()})
	require.NoError(t, err)
	t.Cleanup(func() { a.dispatcher.Close() })

	require.IsType(t, &pending.RedisStore{}, a.store)
	conv := pending.ConversationID{ChatID: 1, UserID: 2}
	require.NoError(t, a.store.Set(context.Background(), conv, pending.Pending{
		Intent:     pending.MaghribOnly,
		Candidates: []pending.Candidate{{ID: "1301", Label: "KOTA JAKARTA"}},
	}))
	assert.True(t, mr.Exists(pending.DefaultKeyPrefix+":1:2:maghrib"))
	assert.Equal(t, 30*time.Minute, mr.TTL(pending.DefaultKeyPrefix+":1:2:maghrib"))
	assert.NoError(t, a.Close())
}

func TestNewRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(t, func(c *Config) {
		c.Pending.Backend = BackendRedis
		c.Pending.Redis.Addr = addr
	})
	_, err := New(cfg, Options{
		Bootstrap: quietBootstrap(),
		NewRedis: func(rc RedisConfig) redis.UniversalClient {
			return redis.NewClient(&redis.Options{Addr: rc.Addr, MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
		},
	})
	assert.ErrorContains(t, err, "redis ping")
}

func TestNewPostgresBackend(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	var migrated bool
	cfg := testConfig(t, func(c *Config) {
		c.Pending.Backend = BackendPostgres
		c.Database = coredatabase.Config{Host: "localhost", Port: "5432", Name: "sholatbot"}
	})
	boot := quietBootstrap()
	boot.Connect = func(coredatabase.Config) (*sqlx.DB, error) { return sqlx.NewDb(db, "postgres"), nil }
	boot.Migrate = func(c coredatabase.Config) error {
		migrated = c.Name == "sholatbot"
		return nil
	}

	a, err := New(cfg, Options{Bootstrap: boot})
	require.NoError(t, err)
	t.Cleanup(func() { a.dispatcher.Close() })

	assert.True(t, migrated)
	assert.IsType(t, &pending.PostgresStore{}, a.store)
	require.NoError(t, a.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

type foreignCarrier struct{}

func (foreignCarrier) CoreConfig() *coreconfig.Config { return &coreconfig.Config{} }

func TestBootstrapRejectsForeignConfig(t *testing.T) {
	_, err := Bootstrap(foreignCarrier{})
	assert.Error(t, err)
}
