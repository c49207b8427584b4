package domain

import (
	"context"
	"errors"
	"time"
)

// Common errors
var (
	ErrUserNotFound = errors.New("user not found")
)

// User is a local account mirrored from the external identity provider
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	AuthProvider   string    `json:"auth_provider"`
	AuthProviderID string    `json:"auth_provider_id"`
	CreatedAt      time.Time `json:"created_at"`
	LastActive     time.Time `json:"last_active"`
}

// UserRepository defines the interface for user-related operations
type UserRepository interface {
	// UpsertByProvider inserts the user when no row exists for its provider id,
	// otherwise touches last_active. Returns the local user id.
	UpsertByProvider(ctx context.Context, user *User) (string, error)

	// GetByProviderID retrieves a user by their external provider id
	GetByProviderID(ctx context.Context, providerID string) (*User, error)
}
