package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/sholatbot/core/config"
	"github.com/m3rciful/sholatbot/core/logger"
	tghelpers "github.com/m3rciful/sholatbot/core/telegram/helpers"
	tgsender "github.com/m3rciful/sholatbot/core/telegram/sender"
)

// Middleware is a named global middleware installed with bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route binds Handler to Endpoint, which is passed to tele.Bot.Handle as is.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions describes one bot process for RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	// Dispatcher is used as is when set; otherwise one is built from DispatcherOptions.
	DispatcherOptions tgsender.Options
	Dispatcher        *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	DisableWebhookCleanup   bool
	DisableHelperDispatcher bool

	// OnStart runs after routes are installed and before polling starts.
	OnStart func(ctx context.Context, rt Runtime) error
	// OnStop runs after polling stopped, with a ten second deadline.
	OnStop func(ctx context.Context, rt Runtime) error
}

// Runtime is what lifecycle hooks get to see.
type Runtime struct {
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

const (
	stopTimeout          = 10 * time.Second
	deleteWebhookTimeout = 5 * time.Second
)

// RunTelegram builds the bot, serves updates until ctx is done and then
// runs OnStop and drains the send queue.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return errors.New("telegram: nil config provided")
	}
	cfg := opts.Config
	rt := Runtime{Registry: opts.Registry, Dispatcher: opts.Dispatcher}
	if rt.Registry == nil {
		rt.Registry = NewRegistry()
	}

	pollerOpts := PollerOptionsFrom(cfg)
	poller := BuildPoller(pollerOpts)
	client := BuildHTTPClient(TelegramClientOptions())

	start := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  poller,
		Client:  client,
		OnError: logHandlerError,
	})
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	took := logger.Took(start)

	if rt.Dispatcher == nil {
		rt.Dispatcher = tgsender.NewDispatcher(opts.DispatcherOptions)
	}
	if !opts.DisableHelperDispatcher {
		tghelpers.SetDispatcher(rt.Dispatcher)
	}
	release := func() {
		rt.Dispatcher.Close()
		if !opts.DisableHelperDispatcher {
			tghelpers.SetDispatcher(nil)
		}
	}

	if wh, ok := poller.(*tele.Webhook); ok {
		logger.Info(ctx, "tg", "mode",
			slog.String("mode", "webhook"),
			slog.String("listen", wh.Listen),
			slog.String("public_url", wh.Endpoint.PublicURL),
			slog.Duration("duration", took),
		)
	} else {
		logger.Info(ctx, "tg", "mode",
			slog.String("mode", "polling"),
			slog.Int("timeout_seconds", int(pollerOpts.LongPollTimeout()/time.Second)),
			slog.Duration("duration", took),
		)
		if !opts.DisableWebhookCleanup {
			logWebhookCleanup(ctx, deleteWebhook(ctx, client, cfg.Telegram.Token, false))
		}
	}

	install(bot, opts.Middlewares, opts.Routes)
	InitBotCommands(bot, rt.Registry)

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			release()
			return err
		}
	}

	runErr := serve(ctx, bot)

	var stopErr error
	if opts.OnStop != nil {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
		stopErr = opts.OnStop(stopCtx, rt)
		cancel()
	}
	release()

	if stopErr != nil {
		return stopErr
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func install(bot *tele.Bot, mws []Middleware, routes []Route) {
	for _, mw := range mws {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, r := range routes {
		if r.Endpoint != nil && r.Handler != nil {
			bot.Handle(r.Endpoint, r.Handler)
		}
	}
}

// serve blocks in bot.Start until ctx is cancelled or the poller exits.
func serve(ctx context.Context, bot *tele.Bot) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		bot.Start()
	}()
	select {
	case <-ctx.Done():
		bot.Stop()
		<-done
		return ctx.Err()
	case <-done:
		return nil
	}
}

func logHandlerError(err error, c tele.Context) {
	ctx := context.Background()
	if c != nil {
		ctx = tghelpers.BuildContext(c)
	}
	logger.Error(ctx, "tg", "handler.error",
		slog.String("status", logger.Status(err)),
		logger.ErrAttr(err),
	)
}

func logWebhookCleanup(ctx context.Context, err error) {
	if err != nil {
		logger.Warn(ctx, "tg", "delete_webhook",
			slog.String("status", "fail"),
			slog.String("mode", "polling"),
			logger.ErrAttr(err),
		)
		return
	}
	logger.Info(ctx, "tg", "delete_webhook",
		slog.String("status", "ok"),
		slog.String("mode", "polling"),
	)
}

// deleteWebhook drops a webhook left by a previous webhook-mode run, which
// would otherwise make getUpdates fail with 409.
func deleteWebhook(ctx context.Context, client *http.Client, token string, dropPending bool) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("empty token")
	}
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, deleteWebhookTimeout)
	defer cancel()

	form := url.Values{"drop_pending_updates": {strconv.FormatBool(dropPending)}}
	endpoint := "https://api.telegram.org/bot" + token + "/deleteWebhook"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		// The url.Error text embeds the request URL and with it the token.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("deleteWebhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deleteWebhook: %s", resp.Status)
	}
	return nil
}
