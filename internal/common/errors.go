// Package common defines shared sentinel errors and the tagged submission
// error used across the registry. Callers should use errors.Is / errors.As
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrorUnauthorized is returned by a write whose secret did not match.
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrVersionConflict is returned by a conditional write whose version
	// predicate did not hold.
	ErrVersionConflict = errors.New("version conflict")
)
