// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

var (
	// ErrSessionNotFound indicates that no session exists for the given key,
	// either because it never existed or because it expired out of the store.
	ErrSessionNotFound = errors.New("session not found")
)
