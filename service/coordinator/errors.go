package coordinator

import (
	"errors"
	"fmt"

	"github.com/revuhq/revu/model/task"
)

// Kind classifies coordinator failures so that callers can map them onto
// specific user-facing messages. NotFound, InvalidTransition and MissingField
// are client-caused and fully recoverable; ConcurrentModification surfaces
// only after bounded transparent retries; PersistenceFailure is fatal for the
// call.
type Kind string

const (
	KindNotFound               Kind = "notFound"
	KindInvalidTransition      Kind = "invalidTransition"
	KindMissingField           Kind = "missingField"
	KindConcurrentModification Kind = "concurrentModification"
	KindPersistenceFailure     Kind = "persistenceFailure"
)

// Error carries the failure classification plus a message detailed enough for
// a user-facing explanation. Whatever the kind, nothing was persisted.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf returns the classification of err, or the empty Kind when err is not
// a coordinator error.
func KindOf(err error) Kind {
	var coordErr *Error
	if errors.As(err, &coordErr) {
		return coordErr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// NewNotFound creates a NotFound error for the given task id.
func NewNotFound(id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("task %v not found", id)}
}

// NewInvalidTransition creates an InvalidTransition error with the policy
// denial reason.
func NewInvalidTransition(from, to task.Status, reason string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot change status %v -> %v: %v", from, to, reason),
	}
}

// NewMissingField creates a MissingField error naming the field the matched
// edge requires.
func NewMissingField(field string, from, to task.Status) *Error {
	return &Error{
		Kind:    KindMissingField,
		Message: fmt.Sprintf("field %v is required to change status %v -> %v", field, from, to),
	}
}

// NewConcurrentModification creates a ConcurrentModification error after the
// retry budget is exhausted.
func NewConcurrentModification(id string, attempts int, cause error) *Error {
	return &Error{
		Kind:    KindConcurrentModification,
		Message: fmt.Sprintf("task %v was modified concurrently, gave up after %v attempts", id, attempts),
		cause:   cause,
	}
}

// NewPersistenceFailure wraps a store error; the caller is guaranteed that
// nothing changed.
func NewPersistenceFailure(cause error) *Error {
	return &Error{
		Kind:    KindPersistenceFailure,
		Message: fmt.Sprintf("persistence failure: %v", cause),
		cause:   cause,
	}
}
