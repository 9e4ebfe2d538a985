package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, DefaultBaseURL, config.BaseURL)
	assert.Equal(t, 15*time.Second, config.Timeout)
	assert.Equal(t, DefaultUserAgent, config.UserAgent)
	assert.Nil(t, config.Credentials)
	assert.NoError(t, config.Validate())
}

func TestConfigFromEnv(t *testing.T) {
	env := map[string]string{
		EnvAPIKey:    " key ",
		EnvAPISecret: "secret",
		EnvBaseURL:   "https://testnet.binance.vision/",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	config := ConfigFromEnv(lookup)

	require.NotNil(t, config.Credentials)
	assert.Equal(t, "key", config.Credentials.APIKey)
	assert.Equal(t, "secret", config.Credentials.SecretKey)
	assert.Equal(t, "https://testnet.binance.vision", config.BaseURL)
}

func TestConfigFromEnv_Empty(t *testing.T) {
	config := ConfigFromEnv(func(string) (string, bool) { return "", false })

	require.NotNil(t, config.Credentials)
	assert.False(t, config.Credentials.Complete())
	assert.Equal(t, DefaultBaseURL, config.BaseURL)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty_base_url", mutate: func(c *Config) { c.BaseURL = "" }, wantErr: "BaseURL"},
		{name: "bad_base_url", mutate: func(c *Config) { c.BaseURL = "not a url" }, wantErr: "BaseURL"},
		{name: "zero_timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: "Timeout"},
		{name: "empty_user_agent", mutate: func(c *Config) { c.UserAgent = "" }, wantErr: "UserAgent"},
		{name: "bad_log_level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "LogLevel"},
		{name: "empty_log_level", mutate: func(c *Config) { c.LogLevel = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
			assert.True(t, IsErrorCode(err, ErrCodeInvalidConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	config := DefaultConfig().WithCredentials(&Credentials{APIKey: "k", SecretKey: "s"})

	clone := config.Clone()
	clone.Credentials.APIKey = "other"
	clone.WithBaseURL("http://localhost:8080")

	assert.Equal(t, "k", config.Credentials.APIKey)
	assert.Equal(t, DefaultBaseURL, config.BaseURL)
	assert.Equal(t, "http://localhost:8080", clone.BaseURL)
}

func TestConfig_Clone_NilCredentials(t *testing.T) {
	clone := DefaultConfig().Clone()
	assert.Nil(t, clone.Credentials)
}

func TestCredentials_Complete(t *testing.T) {
	var nilCreds *Credentials
	assert.False(t, nilCreds.Complete())
	assert.False(t, (&Credentials{APIKey: "k"}).Complete())
	assert.False(t, (&Credentials{SecretKey: "s"}).Complete())
	assert.True(t, (&Credentials{APIKey: "k", SecretKey: "s"}).Complete())
}

func TestConfig_Chaining(t *testing.T) {
	creds := &Credentials{APIKey: "test-key", SecretKey: "test-secret"}
	config := DefaultConfig()

	result := config.
		WithCredentials(creds).
		WithTimeout(30 * time.Second).
		WithUserAgent("test/1.0").
		WithBaseURL("https://example.com//")

	assert.Same(t, config, result)
	assert.Equal(t, creds, config.Credentials)
	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, "test/1.0", config.UserAgent)
	assert.Equal(t, "https://example.com", config.BaseURL)
}
