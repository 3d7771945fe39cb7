package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	coreconfig "github.com/m3rciful/sholatbot/core/config"
	coredatabase "github.com/m3rciful/sholatbot/core/database"
	"github.com/m3rciful/sholatbot/internal/myquran"
	"github.com/m3rciful/sholatbot/internal/pending"
	"github.com/m3rciful/sholatbot/internal/prayer"
)

// Pending store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

const (
	defaultMyQuranTimeout = 10 * time.Second
	defaultPendingTTL     = 30 * time.Minute
	defaultSweepInterval  = time.Minute
)

// MyQuranConfig points at the content API.
type MyQuranConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"MYQURAN_BASE_URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"MYQURAN_TIMEOUT"`
}

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// PendingConfig selects where unanswered city choices live.
type PendingConfig struct {
	Backend string `yaml:"backend" envconfig:"PENDING_BACKEND"`
	// TTL of a city choice; unset means 30m, 0 keeps entries until answered or replaced.
	TTL           *time.Duration `yaml:"ttl" envconfig:"PENDING_TTL"`
	SweepInterval time.Duration  `yaml:"sweep_interval" envconfig:"PENDING_SWEEP_INTERVAL"`
	KeyPrefix     string         `yaml:"key_prefix" envconfig:"PENDING_KEY_PREFIX"`
	Redis         RedisConfig    `yaml:"redis"`
}

// TTLOrDefault returns the configured TTL, or the default before Normalize ran.
func (p PendingConfig) TTLOrDefault() time.Duration {
	if p.TTL == nil {
		return defaultPendingTTL
	}
	return *p.TTL
}

type PrayerConfig struct {
	Timezone string `yaml:"timezone" envconfig:"PRAYER_TIMEZONE"`
}

type ContentConfig struct {
	// Path to a YAML file overriding the bundled dzikir and renungan lists.
	Path string `yaml:"path" envconfig:"CONTENT_PATH"`
}

type MetricsConfig struct {
	// Listen enables the /metrics and /healthz server when set, e.g. ":9090".
	Listen string `yaml:"listen" envconfig:"METRICS_LISTEN"`
}

// Config is the full bot configuration: the reusable core plus bot sections.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	// DatabaseWait retries the first Postgres connection for this long.
	DatabaseWait time.Duration `yaml:"database_wait" envconfig:"DB_WAIT"`

	MyQuran MyQuranConfig `yaml:"myquran"`
	Pending PendingConfig `yaml:"pending"`
	Prayer  PrayerConfig  `yaml:"prayer"`
	Content ContentConfig `yaml:"content"`
	Metrics MetricsConfig `yaml:"metrics"`

	location *time.Location
}

// CoreConfig exposes the embedded core section.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Location is the resolved prayer timezone.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// LoadConfig reads .env (if present), the YAML file at path and environment overrides.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the bot sections and fills defaults.
func Normalize(cfg *Config) error {
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	cfg.MyQuran.BaseURL = strings.TrimSpace(cfg.MyQuran.BaseURL)
	if cfg.MyQuran.BaseURL == "" {
		cfg.MyQuran.BaseURL = myquran.DefaultBaseURL
	}
	if cfg.MyQuran.Timeout <= 0 {
		cfg.MyQuran.Timeout = defaultMyQuranTimeout
	}

	p := &cfg.Pending
	p.Backend = strings.ToLower(strings.TrimSpace(p.Backend))
	if p.Backend == "" {
		p.Backend = BackendMemory
	}
	switch p.Backend {
	case BackendMemory, BackendPostgres:
	case BackendRedis:
		if strings.TrimSpace(p.Redis.Addr) == "" {
			return fmt.Errorf("pending.redis.addr is required when pending.backend is 'redis'")
		}
	default:
		return fmt.Errorf("invalid pending.backend %q; allowed: memory, redis, postgres", p.Backend)
	}
	if p.TTL == nil {
		ttl := defaultPendingTTL
		p.TTL = &ttl
	}
	if *p.TTL < 0 {
		return fmt.Errorf("pending.ttl must be >= 0")
	}
	if p.SweepInterval <= 0 {
		p.SweepInterval = defaultSweepInterval
	}
	if strings.TrimSpace(p.KeyPrefix) == "" {
		p.KeyPrefix = pending.DefaultKeyPrefix
	}

	tz := strings.TrimSpace(cfg.Prayer.Timezone)
	if tz == "" {
		tz = prayer.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid prayer.timezone %q: %w", tz, err)
	}
	cfg.Prayer.Timezone = tz
	cfg.location = loc
	return nil
}
