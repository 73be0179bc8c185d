// Package auth handles account credentials and session tokens.
package auth

import (
	"context"

	"github.com/amrita-prog/Paynion-Project/internal/models"
)

// Authenticator registers accounts and checks their credentials.
// Passwords are the only credential today; the interface keeps the service layer
// independent of how a credential is verified.
type Authenticator interface {
	// Register creates an account. The email is normalized before it is stored.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the account for email if credential matches.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential reports whether credential is acceptable for a new account.
	ValidateCredential(credential string) error
}
