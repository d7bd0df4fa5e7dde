// Package failure defines the business-rule error taxonomy shared by the
// domain packages. Every rejection produced by the core carries a Kind so the
// transport layer can map it without knowing individual sentinel errors.
package failure

import (
	"github.com/go-faster/errors"
)

// Kind classifies a deterministic business-rule failure.
type Kind string

const (
	// Validation means a required field is missing or malformed.
	Validation Kind = "ValidationError"
	// NotFound means a referenced entity does not exist.
	NotFound Kind = "NotFoundError"
	// State means the operation is not allowed in the current state.
	State Kind = "StateError"
	// Discount means a discount code is unknown or already used.
	Discount Kind = "DiscountError"
)

// Error is a business-rule failure with a kind and a client-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New returns an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Kinded is implemented by typed errors that carry their own kind.
type Kinded interface {
	error
	FailureKind() Kind
}

// FailureKind implements Kinded.
func (e *Error) FailureKind() Kind {
	return e.Kind
}

// KindOf walks the wrap chain of err and returns the first failure kind found.
// The second result is false when err is not a business-rule failure.
func KindOf(err error) (Kind, bool) {
	var k Kinded
	if errors.As(err, &k) {
		return k.FailureKind(), true
	}
	return "", false
}

// Is reports whether err is a business-rule failure of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
