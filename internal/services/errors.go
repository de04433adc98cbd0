package services

import (
	"errors"
	"net/http"
)

type ErrorKind string

const (
	KindUnauthenticated      ErrorKind = "unauthenticated"
	KindSubscriptionInactive ErrorKind = "subscription_inactive"
	KindNotFound             ErrorKind = "not_found"
	KindLocked               ErrorKind = "locked"
	KindInvalidInput         ErrorKind = "invalid_input"
	KindUpstream             ErrorKind = "upstream_failure"
	KindUnsupported          ErrorKind = "unsupported"
)

// ServiceError is the only error type handlers expose to callers. Cause is
// kept for logging and never rendered.
type ServiceError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Cause   error
}

func (e ServiceError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e ServiceError) Unwrap() error {
	return e.Cause
}

func ErrUnauthenticated(msg string) error {
	return ServiceError{Kind: KindUnauthenticated, Status: http.StatusUnauthorized, Message: msg}
}

func ErrSubscriptionInactive(msg string) error {
	return ServiceError{Kind: KindSubscriptionInactive, Status: http.StatusForbidden, Message: msg}
}

func ErrNotFound(msg string) error {
	return ServiceError{Kind: KindNotFound, Status: http.StatusNotFound, Message: msg}
}

func ErrLocked(msg string) error {
	return ServiceError{Kind: KindLocked, Status: http.StatusForbidden, Message: msg}
}

func ErrInvalidInput(msg string) error {
	return ServiceError{Kind: KindInvalidInput, Status: http.StatusBadRequest, Message: msg}
}

func ErrUnsupported(msg string) error {
	return ServiceError{Kind: KindUnsupported, Status: http.StatusBadRequest, Message: msg}
}

func ErrUpstream(cause error, msg string) error {
	return ServiceError{Kind: KindUpstream, Status: http.StatusBadGateway, Message: msg, Cause: cause}
}

// KindOf returns the kind of a ServiceError anywhere in err's chain, or "".
func KindOf(err error) ErrorKind {
	var serr ServiceError
	if errors.As(err, &serr) {
		return serr.Kind
	}
	return ""
}
