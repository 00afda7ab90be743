package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies every failure a weather lookup can end with.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindNetwork
	KindAuth
	KindNotFound
	KindRateLimit
	KindServiceUnavailable
	KindTimeout
	KindMalformedResponse
	// KindCanceled marks a request abandoned by its own caller, typically
	// because a newer search superseded it. It is never shown to a user.
	KindCanceled
)

var kindNames = map[ErrorKind]string{
	KindUnknown:            "unknown",
	KindValidation:         "validation",
	KindNetwork:            "network",
	KindAuth:               "auth",
	KindNotFound:           "not_found",
	KindRateLimit:          "rate_limit",
	KindServiceUnavailable: "service_unavailable",
	KindTimeout:            "timeout",
	KindMalformedResponse:  "malformed_response",
	KindCanceled:           "canceled",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// MarshalText renders the kind by name in JSON payloads
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// User-facing messages
const (
	MsgValidation         = "Please enter a city name."
	MsgNetwork            = "Connection error. Check your internet connection."
	MsgAuth               = "Invalid API key. Check your OpenWeatherMap credentials."
	MsgNotFound           = "City not found. Check the spelling."
	MsgRateLimit          = "Too many requests. Try again later."
	MsgServiceUnavailable = "Weather service temporarily unavailable."
	MsgTimeout            = "The weather service did not answer in time. Try again later."
	MsgMalformedResponse  = "The weather service sent an unexpected response."
	MsgCanceled           = "Request superseded by a newer search."
)

// Error is the single failure value a lookup resolves to.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int   // provider HTTP status, 0 when no response was received
	Err        error // underlying cause, never shown to users
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrValidation         = &Error{Kind: KindValidation, Message: MsgValidation}
	ErrNetwork            = &Error{Kind: KindNetwork, Message: MsgNetwork}
	ErrAuth               = &Error{Kind: KindAuth, Message: MsgAuth}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: MsgNotFound}
	ErrRateLimit          = &Error{Kind: KindRateLimit, Message: MsgRateLimit}
	ErrServiceUnavailable = &Error{Kind: KindServiceUnavailable, Message: MsgServiceUnavailable}
	ErrTimeout            = &Error{Kind: KindTimeout, Message: MsgTimeout}
	ErrMalformedResponse  = &Error{Kind: KindMalformedResponse, Message: MsgMalformedResponse}
	ErrCanceled           = &Error{Kind: KindCanceled, Message: MsgCanceled}
)

// NewError builds a classified error with the default message for kind.
func NewError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, Message: DefaultMessage(kind), Err: cause}
}

// NewValidationError reports bad user input with a specific message.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewStatusError classifies a non-200 provider response.
func NewStatusError(status int) *Error {
	e := &Error{StatusCode: status}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindAuth
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimit
	case status >= 500 && status <= 599:
		e.Kind = KindServiceUnavailable
	default:
		e.Kind = KindUnknown
		e.Message = fmt.Sprintf("Error %d: %s", status, http.StatusText(status))
		return e
	}
	e.Message = DefaultMessage(e.Kind)
	return e
}

// DefaultMessage returns the user-facing message for kind.
func DefaultMessage(kind ErrorKind) string {
	switch kind {
	case KindValidation:
		return MsgValidation
	case KindNetwork:
		return MsgNetwork
	case KindAuth:
		return MsgAuth
	case KindNotFound:
		return MsgNotFound
	case KindRateLimit:
		return MsgRateLimit
	case KindServiceUnavailable:
		return MsgServiceUnavailable
	case KindTimeout:
		return MsgTimeout
	case KindMalformedResponse:
		return MsgMalformedResponse
	case KindCanceled:
		return MsgCanceled
	default:
		return "Unknown error."
	}
}

// KindOf extracts the classification of err, KindUnknown for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the user-facing message carried by err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return DefaultMessage(KindUnknown)
}
