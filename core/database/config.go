// Package database connects to Postgres through sqlx and applies the
// golang-migrate migrations that back the postgres pending store.
package database

import (
	"cmp"
	"net"
	"net/url"
	"strings"
)

type Config struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	// MigrationsPath holds the *.up.sql files; relative paths resolve against the working directory.
	MigrationsPath string `yaml:"migrations_path" envconfig:"DB_MIGRATIONS_PATH"`
}

func (c Config) sslMode() string { return cmp.Or(c.SSLMode, "disable") }
func (c Config) port() string    { return cmp.Or(c.Port, "5432") }

// DSN renders the key/value connection string understood by lib/pq. Values
// are quoted so passwords may contain spaces and quotes.
func (c Config) DSN() string {
	quote := func(v string) string {
		v = strings.ReplaceAll(v, `\`, `\\`)
		return "'" + strings.ReplaceAll(v, "'", `\'`) + "'"
	}
	pairs := [][2]string{
		{"user", c.User},
		{"password", c.Password},
		{"host", c.Host},
		{"port", c.port()},
		{"dbname", c.Name},
		{"sslmode", c.sslMode()},
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p[0]+"="+quote(p[1]))
	}
	return strings.Join(parts, " ")
}

// URL renders the postgres:// form required by golang-migrate.
func (c Config) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.port()),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.sslMode()}}.Encode(),
	}
	return u.String()
}
