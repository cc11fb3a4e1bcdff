// credentials.go loads the RSpace endpoint and API key from the environment.
//
// Separated from config.go because credentials never touch the YAML files:
// they are read once at startup, validated without any network access, and
// handed to the RSpace client.

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Environment variables holding the RSpace credentials.
const (
	EnvURL    = "RSPACE_URL"
	EnvAPIKey = "RSPACE_API_KEY"
)

var (
	// ErrMissingCredential is returned when a required variable is absent or empty.
	ErrMissingCredential = errors.New("missing credential")
	// ErrInvalidCredential is returned when a credential is present but malformed.
	ErrInvalidCredential = errors.New("invalid credential")
)

// Credentials identify one RSpace server and the user acting on it.
type Credentials struct {
	URL    string
	APIKey string
}

// LoadCredentials reads RSPACE_URL and RSPACE_API_KEY via getenv.
// Both are required; the URL must be an absolute http(s) URL.
func LoadCredentials(getenv func(string) string) (Credentials, error) {
	rawURL := strings.TrimSpace(getenv(EnvURL))
	if rawURL == "" {
		return Credentials{}, fmt.Errorf("%w: %s is not set", ErrMissingCredential, EnvURL)
	}
	key := strings.TrimSpace(getenv(EnvAPIKey))
	if key == "" {
		return Credentials{}, fmt.Errorf("%w: %s is not set", ErrMissingCredential, EnvAPIKey)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %s: %w", ErrInvalidCredential, EnvURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Credentials{}, fmt.Errorf("%w: %s must be an absolute http(s) URL, got %q", ErrInvalidCredential, EnvURL, rawURL)
	}

	return Credentials{URL: strings.TrimSuffix(rawURL, "/"), APIKey: key}, nil
}

// String redacts the API key so credentials are safe to log.
func (c Credentials) String() string {
	return fmt.Sprintf("%s (key ...%s)", c.URL, tail(c.APIKey, 4))
}

func tail(s string, n int) string {
	if len(s) <= n {
		return strings.Repeat("*", len(s))
	}
	return s[len(s)-n:]
}
