// Package dsn finds the database connection string in an environment
// mapping. POSTGRES_URL wins over DATABASE_URL; without either, the URL is
// assembled from the DB_* parts when every part is present.
package dsn

import (
	"errors"
	"net"
	"net/url"

	"github.com/eugenenazirov/apibase/internal/endpoint"
)

// ErrNotConfigured is returned when no complete database setting is present.
var ErrNotConfigured = errors.New("database URL is not configured")

var urlKeys = []string{"POSTGRES_URL", "DATABASE_URL"}

var partKeys = []string{"DB_USER", "DB_PASSWORD", "DB_HOST", "DB_PORT", "DB_NAME"}

// Resolve returns the connection string and the variable it came from.
// Assembled URLs report "DB_*" as their source.
func Resolve(env endpoint.Env) (string, string, error) {
	for _, key := range urlKeys {
		if value, ok := env.Lookup(key); ok {
			return value, key, nil
		}
	}

	parts := make(map[string]string, len(partKeys))
	for _, key := range partKeys {
		value, ok := env.Lookup(key)
		if !ok {
			return "", "", ErrNotConfigured
		}
		parts[key] = value
	}

	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(parts["DB_USER"], parts["DB_PASSWORD"]),
		Host:   net.JoinHostPort(parts["DB_HOST"], parts["DB_PORT"]),
		Path:   "/" + parts["DB_NAME"],
	}
	return u.String(), "DB_*", nil
}

// Redact hides the password of a URL-shaped DSN. Values that do not parse
// as URLs are replaced entirely.
func Redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "xxxxx"
	}
	return u.Redacted()
}
