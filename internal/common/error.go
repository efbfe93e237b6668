package common

import "errors"

// Kind classifies a submission failure.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindStaleVersion  Kind = "stale_version"
	KindBackend       Kind = "backend"
)

// Caller-visible messages that are fixed regardless of the underlying cause.
const (
	MessageSecretIncorrect = "The secret was incorrect."
	MessageVersionOutdated = "The version was outdated."
	MessageInternal        = "There was an internal error."
)

// Error is a tagged error: Kind drives the caller-visible disposition,
// Message is the text shown to the caller and Cause (backend only) is
// kept for operators.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Validation builds a validation error carrying a human-readable reason.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Authorization reports a secret mismatch on an existing identity.
func Authorization() *Error {
	return &Error{Kind: KindAuthorization, Message: MessageSecretIncorrect}
}

// StaleVersion reports a candidate version that is not newer than the stored one.
func StaleVersion() *Error {
	return &Error{Kind: KindStaleVersion, Message: MessageVersionOutdated}
}

// Backend wraps an infrastructure failure. The cause is never rendered.
func Backend(cause error) *Error {
	return &Error{Kind: KindBackend, Message: MessageInternal, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain. Errors that are
// not tagged are treated as backend failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindBackend
}
