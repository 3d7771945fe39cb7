// Package config holds the settings shared by every bot built on core: the
// Telegram connection, logging and flood control. Bots embed Config in their
// own struct and decode both from one YAML file plus environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Run modes for receiving updates.
const (
	RunModeWebhook  = "webhook"
	RunModeLongpoll = "longpoll"
)

// Update kinds accepted by rate_limit.exclude.
const (
	// UpdateCommand is a message starting with "/".
	UpdateCommand = "command"
	// UpdateText is any other message, including numeric city choices.
	UpdateText = "text"
)

type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds of 0 selects the poller default.
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
	// Secret, when set, must match the X-Telegram-Bot-Api-Secret-Token header.
	Secret string `yaml:"secret" envconfig:"WEBHOOK_SECRET"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
	// KeysOrder is a comma separated list that overrides the field order.
	KeysOrder string `yaml:"keys_order"`
	// DebugSample is "n/d" or "d"; per-update debug lines are sampled at that ratio.
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile "dev" or "debug" switches the default format to key=value.
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// RateLimitConfig is a per-user token bucket refilled once per Interval.
// A zero Interval disables limiting.
type RateLimitConfig struct {
	Interval time.Duration `yaml:"interval" envconfig:"RATE_LIMIT_INTERVAL"`
	Burst    int           `yaml:"burst" envconfig:"RATE_LIMIT_BURST"`
	Exclude  []string      `yaml:"exclude" envconfig:"RATE_LIMIT_EXCLUDE"`
}

type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Load decodes and normalizes a standalone core Config.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Decode reads YAML from path into dst and applies environment overrides.
// dst is usually a bot config struct with Config inlined.
func Decode(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := envconfig.Process("", dst); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	return nil
}

// Normalize validates cfg in place and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return errors.New("config: telegram.token is required")
	}
	if err := normalizeRunMode(cfg); err != nil {
		return err
	}
	return normalizeRateLimit(&cfg.RateLimit)
}

func normalizeRunMode(cfg *Config) error {
	mode := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	switch mode {
	case "", "polling", RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return errors.New("config: telegram.longpoll_timeout_seconds must be >= 0")
		}
		cfg.Telegram.RunMode = RunModeLongpoll
	case RunModeWebhook:
		var missing []string
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			missing = append(missing, "webhook.url")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			missing = append(missing, "webhook.listen")
		}
		if cfg.Webhook.Port <= 0 {
			missing = append(missing, "webhook.port")
		}
		if len(missing) > 0 {
			return fmt.Errorf("config: webhook mode requires %s", strings.Join(missing, ", "))
		}
		cfg.Telegram.RunMode = RunModeWebhook
	default:
		return fmt.Errorf("config: invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	return nil
}

func normalizeRateLimit(rl *RateLimitConfig) error {
	if rl.Interval < 0 {
		return errors.New("config: rate_limit.interval must be >= 0")
	}
	rl.Burst = max(rl.Burst, 1)

	kinds := []string{UpdateCommand, UpdateText}
	out := rl.Exclude[:0]
	for _, v := range rl.Exclude {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if !slices.Contains(kinds, key) {
			return fmt.Errorf("config: invalid rate_limit.exclude value %q; allowed: %s", v, strings.Join(kinds, ", "))
		}
		out = append(out, key)
	}
	rl.Exclude = out
	return nil
}
