// Package domain defines domain-level errors for the users feature.
package domain

import "errors"

// Domain errors for identity operations.
// These represent business logic failures and are handled by upper layers.
var (
	// ErrEmailRequired indicates that user creation was attempted without an email.
	ErrEmailRequired = errors.New("the email address must be set")

	// ErrEmailAlreadyExists indicates that a user with the given email already exists.
	ErrEmailAlreadyExists = errors.New("user with this email already exists")

	// ErrUserNotFound indicates that no user was found with the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials indicates that the provided credentials are incorrect.
	// This is returned during login when email or password is invalid.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrSuperuserFlags indicates that superuser creation was attempted with
	// the staff or superuser flag explicitly disabled.
	ErrSuperuserFlags = errors.New("superuser must have is_staff=true and is_superuser=true")
)
