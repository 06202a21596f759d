package domain

import "errors"

// Sentinel errors for the credential flows. Services return these; the
// transport layer maps them onto response codes.
var (
	// ErrUserNotFound means a required user id did not resolve to a record.
	// It is a caller error, never reported as a failed authentication.
	ErrUserNotFound = errors.New("user not found")

	// ErrAuthenticationFailed is the generic non-exceptional outcome for
	// credential failures. It carries no detail that would let a caller
	// distinguish a missing account from an ineligible or locked one.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrTokenExpiredOrInvalid rejects a reset token that does not match the
	// stored token or whose expiry has passed.
	ErrTokenExpiredOrInvalid = errors.New("reset token has expired or does not exist")

	// ErrPersistenceFailure wraps storage mutations that could not be
	// durably applied. A lost counter increment weakens the lockout
	// guarantee, so these are always surfaced.
	ErrPersistenceFailure = errors.New("persistence failure")
)
