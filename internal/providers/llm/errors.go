package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrCredentialMissing is returned when no API key is stored for a provider
	ErrCredentialMissing = errors.New("provider credential missing")
	// ErrRequestFailed is returned for transport failures and non-2xx replies
	ErrRequestFailed = errors.New("provider request failed")
	// ErrUnknownProvider is returned for operators or families with no adapter
	ErrUnknownProvider = errors.New("unknown provider")
)

// RequestError carries the reply of a failed provider call
type RequestError struct {
	Provider   string
	StatusCode int
	Body       string
	// Cause is the transport error when no reply arrived
	Cause      error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Provider, e.Body)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Unwrap lets errors.Is match ErrRequestFailed and the transport cause
func (e *RequestError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrRequestFailed}
	}
	return []error{ErrRequestFailed, e.Cause}
}

// clientError reports whether err is a 4xx reply other than 429. Those
// reflect a bad request or key, not an unhealthy provider.
func clientError(err error) bool {
	var re *RequestError
	if !errors.As(err, &re) {
		return false
	}
	return re.StatusCode >= 400 && re.StatusCode < 500 && re.StatusCode != 429
}
