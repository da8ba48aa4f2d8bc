package goLogin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrEthical07/goLogin/validation"
)

var (
	// ErrUserNotFound is returned when no user record exists for the email.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserNotVerified is returned for accounts whose verified flag is false.
	ErrUserNotVerified = errors.New("user not verified")
	// ErrInvalidPassword is returned when the recomputed hash does not match the stored hash.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrSessionStoreFailed is returned when the issued token could not be written to the cache.
	ErrSessionStoreFailed = errors.New("session store failed")
	// ErrCacheUnavailable is returned when a cache connection cannot be opened or used.
	ErrCacheUnavailable = errors.New("session cache unavailable")
	// ErrTokenInvalid is returned when a session token fails verification.
	ErrTokenInvalid = errors.New("invalid session token")
	// ErrSessionNotFound is returned when strict validation finds no matching cache entry.
	ErrSessionNotFound = errors.New("session not found")
	// ErrEngineNotReady is returned by a zero or partially built Engine.
	ErrEngineNotReady = errors.New("engine not ready")
)

// Messages surfaced in the error envelope.
const (
	MessageUserNotFound    = "User Not Found"
	MessageUserNotVerified = "User Not Verified"
	MessageInvalidPassword = "Invalid Password"
	MessageSessionInvalid  = "Invalid Session"
	MessageInternal        = "An internal server error occurred"
)

// ErrorKind tags an Error with its transport class.
type ErrorKind int

const (
	// KindInternal is the default for unexpected collaborator faults.
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
)

// StatusCode maps the kind to its HTTP status code.
func (k ErrorKind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Envelope is the uniform wire shape of a failed invocation.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// Error is the single error type returned across the Engine boundary.
//
// Error() renders the JSON envelope so callers that only see the message still
// receive the structured payload. The wrapped cause is reachable through
// errors.Is / errors.As but never rendered.
type Error struct {
	Kind    ErrorKind
	Message string
	Details []validation.Violation
	cause   error
}

func newError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func internalError(cause error) *Error {
	return newError(KindInternal, MessageInternal, cause)
}

// StatusCode returns the HTTP status code of the error's kind.
func (e *Error) StatusCode() int {
	if e == nil {
		return http.StatusInternalServerError
	}
	return e.Kind.StatusCode()
}

// Envelope returns the three-field payload surfaced to callers.
func (e *Error) Envelope() Envelope {
	code := e.StatusCode()
	msg := MessageInternal
	if e != nil && e.Message != "" {
		msg = e.Message
	}
	return Envelope{
		StatusCode: code,
		Error:      http.StatusText(code),
		Message:    msg,
	}
}

func (e *Error) Error() string {
	data, err := json.Marshal(e.Envelope())
	if err != nil {
		return `{"statusCode":500,"error":"Internal Server Error","message":"` + MessageInternal + `"}`
	}
	return string(data)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// AsError extracts an *Error from err, mapping any other error to an internal
// error so every failure has an envelope.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var le *Error
	if errors.As(err, &le) {
		return le
	}
	return internalError(err)
}
