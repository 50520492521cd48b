package copyleaks

import (
	"errors"
	"fmt"
)

var (
	// ErrTextTooShort is returned by Scan for text under MinTextLength
	// characters. No network call is made.
	ErrTextTooShort = errors.New("copyleaks: text too short to scan")

	// ErrMissingCredentials is returned when the login email or API key is
	// not configured.
	ErrMissingCredentials = errors.New("copyleaks: missing login credentials")
)

// ProviderError is a non-2xx answer from the provider.
type ProviderError struct {
	Op         string // "login", "submit", "export"
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("copyleaks %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("copyleaks %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Unauthorized reports whether the provider rejected the bearer token.
func (e *ProviderError) Unauthorized() bool { return e.StatusCode == 401 }
