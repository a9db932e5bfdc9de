package source

import (
	"errors"
	"fmt"
	"net/http"

	"project-aggregator/core/resolve"
)

// ErrSource matches every *Error through errors.Is.
var ErrSource = errors.New("upstream source failure")

// Error reports a failed upstream request. StatusCode is 0 when no response
// was received.
type Error struct {
	Source     string
	Entity     string
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := e.Source
	if e.Entity != "" {
		msg += fmt.Sprintf(" %q", e.Entity)
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": %s returned status %d", e.URL, e.StatusCode)
	} else {
		msg += fmt.Sprintf(": request to %s failed", e.URL)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fatal reports failures that retrying another address cannot fix:
// authentication, rate limiting and transport errors.
func (e *Error) Fatal() bool {
	switch e.StatusCode {
	case 0, http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

// NotFound reports a 404 response.
func (e *Error) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Is matches ErrSource, and resolve.ErrMiss for non-fatal failures so that
// a fallback resolver moves on to its next candidate.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrSource:
		return true
	case resolve.ErrMiss:
		return !e.Fatal()
	default:
		return false
	}
}
