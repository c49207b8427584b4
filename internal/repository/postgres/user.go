package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zizouhuweidi/slidequiz/internal/domain"
)

// UserRepository implements domain.UserRepository
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// UpsertByProvider inserts a user or refreshes last_active for an existing provider id
func (r *UserRepository) UpsertByProvider(ctx context.Context, user *domain.User) (string, error) {
	query := `
		INSERT INTO users (
			id, username, email, auth_provider, auth_provider_id,
			created_at, last_active
		) VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (auth_provider_id)
		DO UPDATE SET last_active = EXCLUDED.last_active
		RETURNING id
	`

	var id string
	err := r.pool.QueryRow(ctx, query,
		uuid.NewString(),
		user.Username,
		user.Email,
		user.AuthProvider,
		user.AuthProviderID,
		time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return "", domain.NewStorageError("upsert user", err)
	}

	user.ID = id
	return id, nil
}

// GetByProviderID retrieves a user by their external provider id
func (r *UserRepository) GetByProviderID(ctx context.Context, providerID string) (*domain.User, error) {
	query := `
		SELECT id, username, email, auth_provider, auth_provider_id,
			created_at, last_active
		FROM users
		WHERE auth_provider_id = $1
	`

	user := &domain.User{}
	err := r.pool.QueryRow(ctx, query, providerID).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.AuthProvider,
		&user.AuthProviderID,
		&user.CreatedAt,
		&user.LastActive,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.NewStorageError("get user", err)
	}

	return user, nil
}
