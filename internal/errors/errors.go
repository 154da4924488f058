package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds for common failure scenarios.
var (
	// ErrAuthRequired means no valid credential is available and the user
	// must be sent through the consent flow. It is an expected condition,
	// not a fault.
	ErrAuthRequired = errors.New("authorization required")

	// ErrExchangeFailed means the authorization server rejected a code
	// exchange or token refresh.
	ErrExchangeFailed = errors.New("authorization exchange failed")

	// ErrTransport means the upstream API could not be reached at all.
	ErrTransport = errors.New("upstream request failed")

	// ErrProtocol means the upstream API answered, but not with the shape
	// we expect (including plain-text bodies where JSON was due).
	ErrProtocol = errors.New("unexpected upstream response")

	// ErrMissingParameter means a required request parameter was absent.
	ErrMissingParameter = errors.New("missing required parameter")
)

// MissingParameter reports an absent request parameter by name.
func MissingParameter(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingParameter, name)
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	parts := make([]string, len(p.Errors))
	for i, err := range p.Errors {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}
