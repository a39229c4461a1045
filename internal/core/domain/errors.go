package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindTransport ErrorKind = iota + 1
	KindRejected
	KindValidation
	KindInvalidCredentials
	KindServiceError
	KindThrottled
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport_failure"
	case KindRejected:
		return "service_rejection"
	case KindValidation:
		return "validation_failure"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindServiceError:
		return "service_error"
	case KindThrottled:
		return "throttled"
	default:
		return "unknown"
	}
}

var (
	ErrTransportFailure   = errors.New("transport failure")
	ErrServiceRejection   = errors.New("service rejection")
	ErrValidationFailure  = errors.New("validation failure")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrServiceError       = errors.New("service error")
	ErrThrottled          = errors.New("throttled")
)

// Storage sentinels returned by the devserver repositories.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Error is the classified failure every client and container operation reports.
type Error struct {
	Kind    ErrorKind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}

	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransportFailure:
		return e.Kind == KindTransport
	case ErrServiceRejection:
		return e.Kind == KindRejected
	case ErrValidationFailure:
		return e.Kind == KindValidation
	case ErrInvalidCredentials:
		return e.Kind == KindInvalidCredentials
	case ErrServiceError:
		return e.Kind == KindServiceError
	case ErrThrottled:
		return e.Kind == KindThrottled
	}

	return false
}

func NewTransportError(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Message: err.Error(), Err: err}
}

func NewRejection(op string, status int, message string) *Error {
	return &Error{Kind: KindRejected, Op: op, Status: status, Message: message}
}

func NewValidationError(op string, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}

// MessageOf returns the user-facing message carried by err, or fallback when
// err carries none.
func MessageOf(err error, fallback string) string {
	if err == nil {
		return fallback
	}

	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}

	if e == nil && err.Error() != "" {
		return err.Error()
	}

	return fallback
}
