package tigo

// ErrorCode defines error types for Tigo API operations
type ErrorCode string

const (
	// ErrCredentials represents missing or empty account credentials
	ErrCredentials ErrorCode = "MissingCredentials"
	// ErrLogin represents a rejected login attempt
	ErrLogin ErrorCode = "LoginFailed"
	// ErrAPI represents a non-OK answer from the API
	ErrAPI ErrorCode = "APIError"
	// ErrDecode represents an unparseable response body
	ErrDecode ErrorCode = "DecodeFailed"
	// ErrNoSystems represents an account without any systems
	ErrNoSystems ErrorCode = "NoSystemsFound"
	// ErrInvalidLevel represents an unsupported granularity token
	ErrInvalidLevel ErrorCode = "InvalidLevel"
	// ErrMalformedData represents a CSV payload without a usable table
	ErrMalformedData ErrorCode = "MalformedData"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}
