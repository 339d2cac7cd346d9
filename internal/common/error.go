// Package common defines the sentinel errors shared by the eportfolio client
// layers. Callers match them with errors.Is.
package common

import "errors"

var (
	// Local document store.
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrMalformedLocalState = errors.New("malformed local state")

	// Remote CV record.
	ErrAuthMissing       = errors.New("authentication token is missing")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// Outbound payload rejected before it left the client.
	ErrValidation = errors.New("validation error")
)
