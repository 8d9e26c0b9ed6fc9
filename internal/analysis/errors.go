package analysis

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse indicates the model reply did not contain a
// parseable JSON object.
var ErrMalformedResponse = errors.New("malformed model response")

// ProviderError indicates the provider call itself failed (network, auth,
// rate limit). Retryable is set for 429 and 5xx responses.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Retryable  bool
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error (status %d): %s", e.Provider, e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Retryable
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
