package config

import (
	"strings"
	"time"
)

// BackendConfig describes the remote user service.
type BackendConfig struct {
	// BaseURL is the API gateway root, e.g. http://localhost:8083.
	BaseURL string `env:"BACKEND_BASE_URL" envDefault:"http://localhost:8083"`

	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`

	// TokenPath is a JMESPath expression locating the bearer token in login responses.
	TokenPath string `env:"BACKEND_TOKEN_PATH" envDefault:"accessToken"`
}

// Sanitize applies guardrails to backend configuration.
func (c *BackendConfig) Sanitize() {
	c.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if strings.TrimSpace(c.TokenPath) == "" {
		c.TokenPath = "accessToken"
	}
}
