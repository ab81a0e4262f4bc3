// Package auth provides the security wiring around the REST surface:
// password-based credential checks and JWT session tokens.
package auth

import (
	"context"

	"github.com/lavanya/expenseshare/internal/models"
)

// Authenticator defines the interface for authentication implementations,
// keeping the resource layer independent of the credential mechanism.
type Authenticator interface {
	// Register creates a new user profile with the given credential.
	Register(ctx context.Context, name, email, credential string) (*models.UserProfile, error)

	// Authenticate verifies the credentials and returns the matching
	// profile on success.
	Authenticate(ctx context.Context, email, credential string) (*models.UserProfile, error)

	// ValidateCredential checks whether the credential meets the
	// implementation's requirements.
	ValidateCredential(credential string) error
}
