package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultBaseURL is the production Binance REST endpoint.
	DefaultBaseURL = "https://api.binance.com"
	// DefaultTimeout bounds every HTTP call.
	DefaultTimeout = 15 * time.Second
	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "bnmcp/1.0"

	EnvAPIKey    = "BINANCE_API_KEY"
	EnvAPISecret = "BINANCE_API_SECRET"
	EnvBaseURL   = "BINANCE_BASE_URL"
)

// Credentials holds API authentication credentials for an exchange.
type Credentials struct {
	// APIKey is the public API key identifier.
	APIKey string `json:"api_key"`
	// SecretKey is the private API key used for signing requests.
	SecretKey string `json:"secret_key"`
}

// Complete reports whether both the key and the secret are set.
func (c *Credentials) Complete() bool {
	return c != nil && c.APIKey != "" && c.SecretKey != ""
}

// Config contains the settings a client is built from.
type Config struct {
	BaseURL     string       `json:"base_url" validate:"required,url"`
	Credentials *Credentials `json:"-"`

	// Timeout is the maximum duration for HTTP requests.
	Timeout   time.Duration `json:"timeout" validate:"min=1ms"`
	UserAgent string        `json:"user_agent" validate:"required"`

	LogLevel string `json:"log_level" validate:"omitempty,oneof=trace debug info warn error disabled"`
}

// DefaultConfig returns a Config initialized with the production base URL,
// a 15s timeout and no credentials.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		LogLevel:  "info",
	}
}

// ConfigFromEnv returns DefaultConfig overlaid with the process defaults
// found through lookup, usually os.LookupEnv.
func ConfigFromEnv(lookup func(string) (string, bool)) *Config {
	c := DefaultConfig()
	creds := &Credentials{}
	if v, ok := lookup(EnvAPIKey); ok {
		creds.APIKey = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvAPISecret); ok {
		creds.SecretKey = strings.TrimSpace(v)
	}
	c.Credentials = creds
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.WithBaseURL(v)
	}
	return c
}

var validate = validator.New()

// Validate checks c against its struct tags. Failures carry ErrCodeInvalidConfig.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return WrapError(ErrorTypeUnknown, fmt.Errorf("invalid config: %w", err)).
			WithCode(ErrCodeInvalidConfig)
	}
	return nil
}

// Clone returns a deep copy so per-request overrides never touch the defaults.
func (c *Config) Clone() *Config {
	out := *c
	if c.Credentials != nil {
		creds := *c.Credentials
		out.Credentials = &creds
	}
	return &out
}

// WithCredentials sets the API credentials and returns the config for chaining.
func (c *Config) WithCredentials(creds *Credentials) *Config {
	c.Credentials = creds
	return c
}

// WithBaseURL sets the base URL, without any trailing slash.
func (c *Config) WithBaseURL(baseURL string) *Config {
	c.BaseURL = strings.TrimRight(baseURL, "/")
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithUserAgent sets the User-Agent header value.
func (c *Config) WithUserAgent(userAgent string) *Config {
	c.UserAgent = userAgent
	return c
}
