// Package entity defines the domain entities for the users feature.
package entity

import "time"

// User represents a registered account in the system. The email address is
// the identity key; there is no separate username.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey" json:"id"`

	// Email is the user's email address used for authentication.
	// It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`

	// FirstName and LastName are optional display names.
	FirstName string `gorm:"size:150" json:"first_name"`
	LastName  string `gorm:"size:150" json:"last_name"`

	// Password is the bcrypt hash of the user's password.
	// This must never store plaintext passwords.
	Password string `gorm:"size:255;not null" json:"-"`

	// IsStaff grants access to the admin surface.
	IsStaff bool `gorm:"not null;default:false" json:"is_staff"`

	// IsSuperuser grants all permissions.
	IsSuperuser bool `gorm:"not null;default:false" json:"is_superuser"`

	// IsActive marks whether the account may authenticate.
	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	// LastLogin records the most recent successful authentication.
	LastLogin *time.Time `json:"last_login"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// String returns the user's display representation, which is the email.
func (u *User) String() string {
	return u.Email
}
