package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). Used for login.
	Email string

	// DisplayName is the short name shown in group views.
	DisplayName string

	// FullName is the legal name used as the payee name in UPI links.
	// Falls back to DisplayName when empty.
	FullName string

	// UPIID is the user's virtual payment address (e.g. "name@bank").
	// Empty when the user has not set one up; UPI payments to them are then refused.
	UPIID string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// PayeeName is the name placed in UPI links.
func (u *User) PayeeName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.DisplayName
}
