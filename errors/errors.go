package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
)

// AppError is the error type handlers turn into API responses
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the raw cause
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHENTICATED,
		Message:  "Authentication required",
	}
}

func ErrInvalidToken() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHENTICATED,
		Message:  "Invalid or expired authentication token",
	}
}

// ErrForbidden represents a forbidden error.
func ErrForbidden(message string) AppError {
	return AppError{
		HTTPCode: http.StatusForbidden,
		Code:     ErrorCode_FORBIDDEN,
		Message:  message,
	}
}

// Scoring Errors
func ErrNoTranscript(interviewID string) AppError {
	return AppError{
		HTTPCode: http.StatusUnprocessableEntity,
		Code:     ErrorCode_NO_TRANSCRIPT,
		Message:  "Interview has no transcript",
	}.WithDetail("interview_id", interviewID)
}

func ErrInterviewNotScorable() AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_INTERVIEW_NOT_SCORABLE,
		Message:  "Interview is not in a scorable state",
	}
}

func ErrUpstreamUnavailable() AppError {
	return AppError{
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_UPSTREAM_UNAVAILABLE,
		Message:  "Scoring backend temporarily unavailable",
	}
}

func ErrInvalidUpstreamResponse() AppError {
	return AppError{
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_INVALID_UPSTREAM_RESPONSE,
		Message:  "Scoring backend returned an invalid response",
	}
}

func ErrAllUpstreamsFailed() AppError {
	return AppError{
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_ALL_UPSTREAMS_FAILED,
		Message:  "All scoring backends failed",
	}
}

func ErrOverrideProtected() AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_OVERRIDE_PROTECTED,
		Message:  "Score is protected by a human override",
	}
}

func ErrReportIncomplete() AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_REPORT_INCOMPLETE,
		Message:  "Interview has not been scored yet",
	}
}

func ErrScoringInProgress() AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_SCORING_IN_PROGRESS,
		Message:  "A scoring run for this interview is already in progress",
	}
}

func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_STORAGE_FAILED,
		Message:  fmt.Sprintf("Storage operation failed: %s", operation),
	}
}

// HTTPStatusOK represents a successful HTTP response.
func HTTPStatusOK(message string) AppError {
	return AppError{
		HTTPCode: http.StatusOK,
		Code:     ErrorCode_HTTP_OK,
		Message:  message,
	}
}

// FromDomain maps pipeline errors onto API errors. Upstream failures never
// carry the raw cause so backend payloads do not reach clients.
func FromDomain(err error) AppError {
	var appErr AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case err == nil:
		return HTTPStatusOK("success")
	case stdErrors.Is(err, entities.ErrOverrideProtected):
		return ErrOverrideProtected()
	case stdErrors.Is(err, entities.ErrNoTranscript):
		return AppError{
			HTTPCode: http.StatusUnprocessableEntity,
			Code:     ErrorCode_NO_TRANSCRIPT,
			Message:  "Interview has no transcript",
		}
	case stdErrors.Is(err, entities.ErrInterviewNotScorable):
		e := ErrInterviewNotScorable()
		e.Raw = err
		return e
	case stdErrors.Is(err, entities.ErrIncomplete):
		return ErrReportIncomplete()
	case stdErrors.Is(err, entities.ErrAllUpstreamsFailed):
		return ErrAllUpstreamsFailed()
	case stdErrors.Is(err, entities.ErrInvalidUpstreamResponse):
		return ErrInvalidUpstreamResponse()
	case stdErrors.Is(err, entities.ErrUpstreamUnavailable):
		return ErrUpstreamUnavailable()
	case stdErrors.Is(err, entities.ErrInvalidRubric), stdErrors.Is(err, entities.ErrUnknownBackend),
		stdErrors.Is(err, entities.ErrInvalidOverride):
		e := ErrInvalidArgument("Invalid request")
		e.Raw = err
		return e
	case stdErrors.Is(err, entities.ErrScoringInProgress):
		return ErrScoringInProgress()
	case stdErrors.Is(err, entities.ErrNotFound):
		e := ErrNotFound("Resource")
		e.Raw = err
		return e
	case stdErrors.Is(err, entities.ErrForbidden):
		e := ErrForbidden("Insufficient permissions")
		e.Raw = err
		return e
	}
	return ErrInternal(err)
}
