// Package app wires configuration, storage and handlers into a runnable bot.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/sholatbot/core/bootstrap"
	corecmd "github.com/m3rciful/sholatbot/core/cmd"
	coredatabase "github.com/m3rciful/sholatbot/core/database"
	"github.com/m3rciful/sholatbot/core/logger"
	"github.com/m3rciful/sholatbot/core/metrics"
	tg "github.com/m3rciful/sholatbot/core/telegram"
	"github.com/m3rciful/sholatbot/core/telegram/helpers"
	"github.com/m3rciful/sholatbot/core/telegram/router"
	"github.com/m3rciful/sholatbot/core/telegram/sender"
	"github.com/m3rciful/sholatbot/internal/content"
	"github.com/m3rciful/sholatbot/internal/handlers"
	"github.com/m3rciful/sholatbot/internal/myquran"
	"github.com/m3rciful/sholatbot/internal/pending"
	"github.com/m3rciful/sholatbot/internal/prayer"
)

const (
	textRateLimited = "Terlalu banyak permintaan. Coba lagi sebentar lagi."
	textAdminOnly   = "Perintah ini hanya untuk admin."
)

// App owns the long-lived components of the bot.
type App struct {
	cfg        *Config
	boot       *bootstrap.Result
	store      pending.Store
	registry   *tg.Registry
	dispatcher *sender.Dispatcher
	handlers   *handlers.Handlers

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Options let tests replace infrastructure constructors.
type Options struct {
	Bootstrap bootstrap.Options
	// NewRedis builds the client for the redis backend.
	NewRedis func(RedisConfig) redis.UniversalClient
}

// LoadCarrier adapts LoadConfig to the command runner.
func LoadCarrier(path string) (corecmd.ConfigCarrier, error) {
	return LoadConfig(path)
}

// Bootstrap adapts New to the command runner.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}
	return New(cfg, Options{})
}

// New initializes logging, storage and handlers.
func New(cfg *Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}

	bootOpts := opts.Bootstrap
	bootOpts.Config = cfg.CoreConfig()
	if cfg.Pending.Backend == BackendPostgres {
		db := cfg.Database
		bootOpts.Database = &db
		if bootOpts.Connect == nil && cfg.DatabaseWait > 0 {
			wait := cfg.DatabaseWait
			bootOpts.Connect = func(c coredatabase.Config) (*sqlx.DB, error) {
				if err := coredatabase.WaitForPostgres(c.DSN(), wait); err != nil {
					return nil, err
				}
				return coredatabase.Connect(c)
			}
		}
	}
	boot, err := bootstrap.Run(bootOpts)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, boot: boot}
	if a.store, err = a.openStore(opts); err != nil {
		_ = boot.Close()
		return nil, err
	}

	lib, err := loadLibrary(cfg.Content)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	client := myquran.New(cfg.MyQuran.BaseURL, tg.BuildHTTPClient(tg.HTTPClientOptions{
		Timeout: cfg.MyQuran.Timeout,
	}))
	svc := prayer.NewService(client, a.store, prayer.Options{Location: cfg.Location()})

	a.dispatcher = sender.NewDispatcher(sender.Options{})
	a.handlers = handlers.New(handlers.Deps{
		Prayer:     svc,
		Quran:      client,
		Library:    lib,
		Dispatcher: a.dispatcher,
	})
	a.registry = tg.NewRegistry()
	if err := a.handlers.Register(a.registry); err != nil {
		a.dispatcher.Close()
		_ = a.Close()
		return nil, fmt.Errorf("app: register commands: %w", err)
	}

	logger.Info(context.Background(), "app", "wire",
		slog.String("status", "ok"),
		slog.String("pending_backend", cfg.Pending.Backend),
		slog.Duration("pending_ttl", cfg.Pending.TTLOrDefault()),
		slog.String("timezone", cfg.Prayer.Timezone),
		slog.String("myquran", cfg.MyQuran.BaseURL),
	)
	return a, nil
}

func (a *App) openStore(opts Options) (pending.Store, error) {
	p := a.cfg.Pending
	storeOpts := pending.Options{TTL: p.TTLOrDefault()}
	switch p.Backend {
	case BackendRedis:
		newRedis := opts.NewRedis
		if newRedis == nil {
			newRedis = func(rc RedisConfig) redis.UniversalClient {
				return redis.NewClient(&redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
			}
		}
		store := pending.NewRedisStore(newRedis(p.Redis), p.KeyPrefix, storeOpts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("app: redis ping: %w", err)
		}
		return store, nil
	case BackendPostgres:
		if a.boot.DB == nil {
			return nil, fmt.Errorf("app: postgres backend without database")
		}
		return pending.NewPostgresStore(a.boot.DB, storeOpts), nil
	default:
		return pending.NewMemoryStore(storeOpts), nil
	}
}

func loadLibrary(cfg ContentConfig) (*content.Library, error) {
	if cfg.Path == "" {
		return content.Default()
	}
	return content.LoadFile(cfg.Path)
}

// Registry returns the command registry.
func (a *App) Registry() *tg.Registry { return a.registry }

// TelegramRunOptions describes routes, middleware and lifecycle hooks.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()
	onLimited := func(c tele.Context) error { return helpers.SendText(c, textRateLimited) }
	onReject := func(c tele.Context) error { return helpers.SendText(c, textAdminOnly) }

	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID:       core.Telegram.AdminID,
		OnAdminReject: onReject,
	})
	routes = append(routes, router.TextRoutes(a.handlers, a.registry, router.TextOptions{})...)

	return tg.RunOptions{
		Config:      core,
		Registry:    a.registry,
		Dispatcher:  a.dispatcher,
		Middlewares: tg.DefaultMiddlewares(core, onLimited),
		Routes:      routes,
		OnStart:     a.start,
		OnStop:      a.stop,
	}, nil
}

func (a *App) start(ctx context.Context, _ tg.Runtime) error {
	bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		pending.RunSweeper(bg, a.store, a.cfg.Pending.SweepInterval)
	}()

	if addr := a.cfg.Metrics.Listen; addr != "" {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := metrics.Serve(bg, addr); err != nil {
				logger.Error(bg, "metrics", "serve",
					slog.String("status", "fail"),
					logger.ErrAttr(err),
				)
			}
		}()
	}
	return nil
}

func (a *App) stop(ctx context.Context, _ tg.Runtime) error {
	if a.cancel != nil {
		a.cancel()
	}
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the state store and database.
func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.boot != nil {
		errs = append(errs, a.boot.Close())
	}
	return errors.Join(errs...)
}
