// Package keyring resolves the API key pair used for a single request.
package keyring

import (
	"fmt"

	"bnmcp/pkg/core"
)

// KeyRing holds the process-wide default key pair. It is read-only after
// construction and safe for concurrent use.
type KeyRing struct {
	defaults core.Credentials
}

// Override carries per-request credential values. Empty fields fall back to
// the ring's defaults.
type Override struct {
	APIKey    string
	APISecret string
}

func New(defaults *core.Credentials) *KeyRing {
	k := &KeyRing{}
	if defaults != nil {
		k.defaults = *defaults
	}
	return k
}

// Resolve returns a fresh key pair for one request.
func (k *KeyRing) Resolve(o Override) *core.Credentials {
	creds := k.defaults
	if o.APIKey != "" {
		creds.APIKey = o.APIKey
	}
	if o.APISecret != "" {
		creds.SecretKey = o.APISecret
	}
	return &creds
}

// Describe renders a key pair for logs without exposing either value.
func Describe(c *core.Credentials) string {
	if c == nil {
		return "Credentials{}"
	}
	secret := "unset"
	if c.SecretKey != "" {
		secret = "set"
	}
	return fmt.Sprintf("Credentials{Key:%s, Secret:%s}", maskKey(c.APIKey), secret)
}

func maskKey(key string) string {
	if key == "" {
		return "unset"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
