package entities

import (
	"errors"
	"fmt"
)

// Scoring pipeline errors
var (
	ErrNotFound                = errors.New("not found")
	ErrNoTranscript            = errors.New("interview has no transcript")
	ErrInterviewNotScorable    = errors.New("interview is not in a scorable state")
	ErrUpstreamUnavailable     = errors.New("scoring backend unavailable")
	ErrInvalidUpstreamResponse = errors.New("invalid scoring backend response")
	ErrAllUpstreamsFailed      = errors.New("all scoring backends failed")
	ErrOverrideProtected       = errors.New("score is protected by a human override")
	ErrIncomplete              = errors.New("interview has not been scored yet")
	ErrInvalidRubric           = errors.New("invalid rubric")
	ErrUnknownBackend          = errors.New("unknown scoring backend")
	ErrScoringInProgress       = errors.New("scoring run already in progress")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidOverride         = errors.New("invalid override")
)

// BackendError is returned by scoring clients. Kind is one of
// ErrUpstreamUnavailable or ErrInvalidUpstreamResponse.
type BackendError struct {
	Backend string
	Kind    error
	Status  int
	Err     error
}

func (e *BackendError) Error() string {
	msg := fmt.Sprintf("backend %s: %v", e.Backend, e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the taxonomy kind and the cause to errors.Is
func (e *BackendError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Unavailable builds a retryable backend error
func Unavailable(backend string, status int, err error) *BackendError {
	return &BackendError{Backend: backend, Kind: ErrUpstreamUnavailable, Status: status, Err: err}
}

// InvalidResponse builds a non-retryable backend error
func InvalidResponse(backend string, err error) *BackendError {
	return &BackendError{Backend: backend, Kind: ErrInvalidUpstreamResponse, Err: err}
}

// IsRetryable reports whether the orchestrator may retry after err
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) && !errors.Is(err, ErrInvalidUpstreamResponse)
}
