// Package auth issues and validates member tokens and manages local
// password accounts.
package auth

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// Password accounts are the only implementation today; tokens minted by an
// external identity provider only need to carry the member id in "sub".
type Authenticator interface {
	// Register creates a new member account with the given email and credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credentials and returns the member if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
