// Package apperr defines the error kinds shared by the scheduling and
// tournament services and their HTTP mapping.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidArgument       Kind = "INVALID_ARGUMENT"
	KindInvalidOperation      Kind = "INVALID_OPERATION"
	KindNotFound              Kind = "NOT_FOUND"
	KindInternalInconsistency Kind = "INTERNAL_INCONSISTENCY"
)

// Error carries a Kind so callers can branch without string matching.
// Two errors match under errors.Is when their kinds are equal.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

var (
	ErrInvalidArgument       = &Error{Kind: KindInvalidArgument, Message: "invalid argument"}
	ErrInvalidOperation      = &Error{Kind: KindInvalidOperation, Message: "invalid operation"}
	ErrNotFound              = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInternalInconsistency = &Error{Kind: KindInternalInconsistency, Message: "internal inconsistency"}
)

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func InvalidArgument(format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func InvalidOperation(format string, args ...any) error {
	return &Error{Kind: KindInvalidOperation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Internal(format string, args ...any) error {
	return &Error{Kind: KindInternalInconsistency, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to a lower level error, keeping it reachable
// through errors.Is and errors.As.
func Wrap(kind Kind, cause error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf reports the kind of the first *Error in err's chain, or the
// empty kind when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf returns the client facing message of the first *Error in
// err's chain, without its cause.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
