package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/zizouhuweidi/slidequiz/internal/domain"
)

// UpsertByProvider implements domain.UserRepository
func (s *Store) UpsertByProvider(ctx context.Context, user *domain.User) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.NewStorageError("upsert user", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	if existing, ok := s.users[user.AuthProviderID]; ok {
		existing.LastActive = now
		user.ID = existing.ID
		return existing.ID, nil
	}

	stored := *user
	stored.ID = uuid.NewString()
	stored.CreatedAt = now
	stored.LastActive = now
	s.users[stored.AuthProviderID] = &stored
	user.ID = stored.ID
	return stored.ID, nil
}

// GetByProviderID implements domain.UserRepository
func (s *Store) GetByProviderID(ctx context.Context, providerID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[providerID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}
