package config

import (
	"net/url"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// GetConnectionString returns the PostgreSQL connection string
func (c DatabaseConfig) GetConnectionString() string {
	return c.URL
}

// Redacted returns the connection string with the password masked, for logs
func (c DatabaseConfig) Redacted() string {
	parsed, err := url.Parse(c.URL)
	if err != nil || parsed.User == nil {
		return c.URL
	}
	return parsed.Redacted()
}
