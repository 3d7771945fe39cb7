package telegram

import (
	"net"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/sholatbot/core/config"
)

const defaultLongPollTimeout = 10 * time.Second

// allowedUpdates limits delivery to what the routers handle.
var allowedUpdates = []string{"message"}

// WebhookOptions declares webhook listener settings.
type WebhookOptions struct {
	Listen string
	Port   int
	URL    string
	// Secret is checked against X-Telegram-Bot-Api-Secret-Token when set.
	Secret string
}

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	RunMode                string
	LongPollTimeoutSeconds int
	Webhook                WebhookOptions
}

// PollerOptionsFrom maps the core config onto poller options.
func PollerOptionsFrom(cfg *coreconfig.Config) PollerOptions {
	return PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
			Secret: cfg.Webhook.Secret,
		},
	}
}

func (o PollerOptions) LongPollTimeout() time.Duration {
	if o.LongPollTimeoutSeconds > 0 {
		return time.Duration(o.LongPollTimeoutSeconds) * time.Second
	}
	return defaultLongPollTimeout
}

// BuildPoller returns a webhook listener in webhook mode and a long poller otherwise.
func BuildPoller(opts PollerOptions) tele.Poller {
	if opts.RunMode != coreconfig.RunModeWebhook {
		return &tele.LongPoller{Timeout: opts.LongPollTimeout(), AllowedUpdates: allowedUpdates}
	}
	wh := opts.Webhook
	return &tele.Webhook{
		Listen:         net.JoinHostPort(wh.Listen, strconv.Itoa(wh.Port)),
		SecretToken:    wh.Secret,
		AllowedUpdates: allowedUpdates,
		Endpoint:       &tele.WebhookEndpoint{PublicURL: wh.URL},
	}
}
