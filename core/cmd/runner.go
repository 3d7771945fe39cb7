// Package cmd is the process entry shared by bots: resolve the config path,
// load it, bootstrap the app and run it until SIGINT or SIGTERM.
package cmd

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m3rciful/sholatbot/core/buildinfo"
	coreconfig "github.com/m3rciful/sholatbot/core/config"
	"github.com/m3rciful/sholatbot/core/logger"
	coretelegram "github.com/m3rciful/sholatbot/core/telegram"
)

// ConfigCarrier is a bot config that embeds the core one.
type ConfigCarrier interface {
	CoreConfig() *coreconfig.Config
}

// TelegramApp produces the bot run options. If it also implements io.Closer
// it is closed once the bot has stopped.
type TelegramApp interface {
	TelegramRunOptions() (coretelegram.RunOptions, error)
}

// Options wires a bot binary. LoadConfig and Bootstrap are required; the
// rest default to the real logger, RunTelegram and SIGINT/SIGTERM.
type Options struct {
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (ConfigCarrier, error)
	Bootstrap  func(cfg ConfigCarrier) (TelegramApp, error)

	ShutdownLogger func() error
	RunTelegram    func(ctx context.Context, opts coretelegram.RunOptions) error
	Signals        []os.Signal
}

// ConfigPath returns $ConfigEnvVar (CONFIG_PATH by default) or DefaultConfigPath.
func (o Options) ConfigPath() (string, error) {
	env := cmp.Or(o.ConfigEnvVar, "CONFIG_PATH")
	if p := cmp.Or(os.Getenv(env), o.DefaultConfigPath); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("cmd: config path not provided via %s or DefaultConfigPath", env)
}

// Run executes the whole process lifecycle and returns the first fatal error.
func Run(opts Options) error {
	if opts.LoadConfig == nil || opts.Bootstrap == nil {
		return errors.New("cmd: LoadConfig and Bootstrap are required")
	}
	path, err := opts.ConfigPath()
	if err != nil {
		return err
	}

	log.Printf("loading config: %s (%s)", path, buildinfo.String())
	cfg, err := opts.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("cmd: failed to load config: %w", err)
	}
	if cfg.CoreConfig() == nil {
		return errors.New("cmd: loaded config is missing core configuration")
	}

	shutdownLogger := opts.ShutdownLogger
	if shutdownLogger == nil {
		shutdownLogger = logger.Shutdown
	}
	defer func() {
		if err := shutdownLogger(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	app, err := opts.Bootstrap(cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap failed: %w", err)
	}
	if c, ok := app.(io.Closer); ok {
		defer closeApp(c)
	}

	runOpts, err := app.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: telegram options build failed: %w", err)
	}
	withLifecycleLogs(&runOpts, time.Now())

	signals := opts.Signals
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)
	defer stop()

	run := opts.RunTelegram
	if run == nil {
		run = coretelegram.RunTelegram
	}
	return run(ctx, runOpts)
}

// withLifecycleLogs wraps the app hooks with the "ready" and "shutdown" records.
func withLifecycleLogs(opts *coretelegram.RunOptions, startedAt time.Time) {
	onStart, onStop := opts.OnStart, opts.OnStop
	opts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if onStart != nil {
			if err := onStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.Info(ctx, "app", "ready",
			slog.String("status", "ok"),
			slog.Int("commands", len(rt.Registry.Commands())),
			slog.Duration("startup_duration", time.Since(startedAt)),
		)
		return nil
	}
	opts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		logger.Info(ctx, "app", "shutdown", slog.Duration("uptime", buildinfo.Uptime()))
		if onStop == nil {
			return nil
		}
		return onStop(ctx, rt)
	}
}

func closeApp(c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Warn(context.Background(), "app", "close",
			slog.String("status", "fail"),
			logger.ErrAttr(err),
		)
	}
}
