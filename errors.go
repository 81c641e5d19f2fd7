package potdraw

import (
	"errors"
	"fmt"
)

var (
	// ErrDeadlock is returned by an attempt when a candidate pool runs dry
	// before its quota is met. It is an expected outcome; retry with fresh randomness.
	ErrDeadlock = errors.New("draw deadlocked")
	// ErrVerification means an attempt finished its loop with inconsistent counts.
	ErrVerification      = errors.New("draw verification failed")
	ErrAttemptsExhausted = errors.New("draw attempts exhausted")
)

type ErrorStatus string

const (
	ErrorStatusUnknown           ErrorStatus = "unknown"
	ErrorStatusNotFound          ErrorStatus = "not_found"
	ErrorStatusAlreadyExists     ErrorStatus = "already_exists"
	ErrorStatusInvalidRequest    ErrorStatus = "invalid_request"
	ErrorStatusAttemptsExhausted ErrorStatus = "attempts_exhausted"
)

type Error struct {
	Status ErrorStatus
	err    error
}

func NewError(status ErrorStatus, err error) *Error {
	return &Error{err: err, Status: status}
}

func (e *Error) Error() string {
	return fmt.Sprintf("potdraw error(status: %s): %v", e.Status, e.err)
}

func (e *Error) Unwrap() error {
	return e.err
}

func ErrorHasStatus(target error, status ErrorStatus) bool {
	var e *Error
	if errors.As(target, &e) {
		return e.Status == status
	}
	return false
}

func invalidRequest(format string, args ...any) *Error {
	return NewError(ErrorStatusInvalidRequest, fmt.Errorf(format, args...))
}
