package config

import (
	"fmt"
	"strings"
	"time"
)

// StoreBackend selects where visitor credentials are persisted.
type StoreBackend string

const (
	// StoreMemory keeps credentials in process memory (development only).
	StoreMemory StoreBackend = "memory"
	// StoreRedis keeps credentials in Redis.
	StoreRedis StoreBackend = "redis"
	// StorePostgres keeps credentials in the visitor_credentials table.
	StorePostgres StoreBackend = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreBackend.
func (s *StoreBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "redis", "postgres":
		*s = StoreBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid StoreBackend: %q (valid options: memory, redis, postgres)", v)
	}
}

// CredentialConfig groups credential storage and session policy settings.
type CredentialConfig struct {
	Store StoreBackend `env:"CREDENTIAL_STORE" envDefault:"redis"`

	// PurgeMalformed clears a stored credential that fails to decode.
	PurgeMalformed bool `env:"CREDENTIAL_PURGE_MALFORMED" envDefault:"true"`

	// AllowNonExpiring keeps credentials without an exp claim active.
	AllowNonExpiring bool `env:"CREDENTIAL_ALLOW_NON_EXPIRING" envDefault:"false"`

	// TTL bounds how long an idle credential is kept in Redis. Zero keeps it until cleared.
	TTL time.Duration `env:"CREDENTIAL_TTL" envDefault:"24h"`

	// RedisPrefix namespaces credential keys.
	RedisPrefix string `env:"CREDENTIAL_REDIS_PREFIX" envDefault:"musicclouds:visitor:"`

	// CookieName is the visitor cookie that keys the credential store.
	CookieName string `env:"VISITOR_COOKIE_NAME" envDefault:"mc_visitor"`

	// CookieSecure marks the visitor cookie Secure. Forced off in dev mode.
	CookieSecure bool `env:"VISITOR_COOKIE_SECURE" envDefault:"true"`
}

// Sanitize applies guardrails to credential configuration.
func (c *CredentialConfig) Sanitize() {
	if c.Store == "" {
		c.Store = StoreRedis
	}
	if c.TTL < 0 {
		c.TTL = 0
	}
	if strings.TrimSpace(c.CookieName) == "" {
		c.CookieName = "mc_visitor"
	}
	if strings.TrimSpace(c.RedisPrefix) == "" {
		c.RedisPrefix = "musicclouds:visitor:"
	}
}
