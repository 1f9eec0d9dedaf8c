package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCurrency is used when a user or group has no preference.
const DefaultCurrency = "USD"

// User represents a registered member account.
type User struct {
	// ID is the member identifier used across groups and expenses.
	ID string

	// Email is the user's email address (unique). Used for login.
	Email string

	// DisplayName is shown to other members.
	DisplayName string

	// PasswordHash is the bcrypt hash for local accounts. Empty for users
	// that only authenticate through an external identity provider.
	PasswordHash string

	Phone string

	// Currency is the preferred ISO currency code.
	Currency string

	CreatedAt int64
	UpdatedAt int64
}

// NewUser builds a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		Currency:     DefaultCurrency,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
