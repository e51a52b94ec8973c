package errors

// ErrorCode is the stable code returned to API clients
type ErrorCode int32

const (
	ErrorCode_UNSPECIFIED ErrorCode = iota
	ErrorCode_HTTP_OK
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_UNAUTHENTICATED
	ErrorCode_FORBIDDEN
	ErrorCode_NO_TRANSCRIPT
	ErrorCode_INTERVIEW_NOT_SCORABLE
	ErrorCode_UPSTREAM_UNAVAILABLE
	ErrorCode_INVALID_UPSTREAM_RESPONSE
	ErrorCode_ALL_UPSTREAMS_FAILED
	ErrorCode_OVERRIDE_PROTECTED
	ErrorCode_REPORT_INCOMPLETE
	ErrorCode_SCORING_IN_PROGRESS
	ErrorCode_STORAGE_FAILED
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNSPECIFIED:               "UNSPECIFIED",
	ErrorCode_HTTP_OK:                   "HTTP_OK",
	ErrorCode_INTERNAL:                  "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:          "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                 "NOT_FOUND",
	ErrorCode_UNAUTHENTICATED:           "UNAUTHENTICATED",
	ErrorCode_FORBIDDEN:                 "FORBIDDEN",
	ErrorCode_NO_TRANSCRIPT:             "NO_TRANSCRIPT",
	ErrorCode_INTERVIEW_NOT_SCORABLE:    "INTERVIEW_NOT_SCORABLE",
	ErrorCode_UPSTREAM_UNAVAILABLE:      "UPSTREAM_UNAVAILABLE",
	ErrorCode_INVALID_UPSTREAM_RESPONSE: "INVALID_UPSTREAM_RESPONSE",
	ErrorCode_ALL_UPSTREAMS_FAILED:      "ALL_UPSTREAMS_FAILED",
	ErrorCode_OVERRIDE_PROTECTED:        "OVERRIDE_PROTECTED",
	ErrorCode_REPORT_INCOMPLETE:         "REPORT_INCOMPLETE",
	ErrorCode_SCORING_IN_PROGRESS:       "SCORING_IN_PROGRESS",
	ErrorCode_STORAGE_FAILED:            "STORAGE_FAILED",
}

// String returns the wire name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNSPECIFIED"
}

// MarshalText renders codes by name in JSON bodies
func (c ErrorCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
