package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/zizouhuweidi/slidequiz/internal/domain"
)

// AuthProviderClerk is the provider name stored on mirrored accounts
const AuthProviderClerk = "clerk"

// ProviderAccount is an account as described by the identity provider
type ProviderAccount struct {
	ProviderID string
	Email      string
	Username   string
}

// AccountService mirrors identity-provider accounts into the users table
type AccountService struct {
	users domain.UserRepository
}

// NewAccountService creates a new account service
func NewAccountService(users domain.UserRepository) *AccountService {
	return &AccountService{users: users}
}

// Sync creates the local user for a provider account or refreshes its
// last activity. It returns the local user id.
func (s *AccountService) Sync(ctx context.Context, account ProviderAccount) (string, error) {
	account.ProviderID = strings.TrimSpace(account.ProviderID)
	account.Email = strings.TrimSpace(account.Email)
	account.Username = strings.TrimSpace(account.Username)

	var issues issueCollector
	if account.ProviderID == "" {
		issues.add("id", "is required")
	}
	if account.Email == "" {
		issues.add("email", "is required")
	}
	if err := issues.result(); err != nil {
		return "", err
	}

	username := account.Username
	if username == "" {
		username, _, _ = strings.Cut(account.Email, "@")
	}

	user := &domain.User{
		Username:       username,
		Email:          account.Email,
		AuthProvider:   AuthProviderClerk,
		AuthProviderID: account.ProviderID,
	}
	id, err := s.users.UpsertByProvider(ctx, user)
	if err != nil {
		return "", fmt.Errorf("failed to sync account: %w", err)
	}
	return id, nil
}
