package repository

import (
	"context"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/store"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	UserQueryRepository
	UserCommandRepository
}

// UserQueryRepository defines read-only operations for users.
type UserQueryRepository interface {
	// GetByID retrieves a user by ID, or nil when absent.
	GetByID(ctx context.Context, userID string) (*domain.User, error)

	// GetByEmail retrieves a user by normalized email, or nil when absent.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ListByEmail retrieves every user whose stored email equals email.
	ListByEmail(ctx context.Context, email string) ([]*domain.User, error)

	// List retrieves all users ordered by email.
	List(ctx context.Context) ([]*domain.User, error)
}

// UserCommandRepository defines write operations for users.
type UserCommandRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, user *domain.User) error

	// Replace overwrites an existing user.
	Replace(ctx context.Context, user *domain.User) error

	// Delete deletes a user by ID.
	Delete(ctx context.Context, userID string) error
}

type userRepository struct {
	docs *Repository[domain.User, *domain.User]
}

// NewUserRepository creates a user repository over the Users container.
func NewUserRepository(container store.Container) UserRepository {
	return &userRepository{docs: NewRepository[domain.User](container, domain.KindUser)}
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.docs.GetByID(ctx, domain.UserIdentity(userID))
}

// GetByEmail returns the first match; registration keeps emails unique.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := r.ListByEmail(ctx, email)
	if err != nil || len(users) == 0 {
		return nil, err
	}
	return users[0], nil
}

func (r *userRepository) ListByEmail(ctx context.Context, email string) ([]*domain.User, error) {
	return r.docs.Query(ctx,
		[]store.Filter{store.Eq("email", domain.NormalizeEmail(email))},
		store.Asc("registeredOn"))
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	return r.docs.GetAll(ctx, store.Asc("email"))
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.docs.Add(ctx, user)
}

func (r *userRepository) Replace(ctx context.Context, user *domain.User) error {
	return r.docs.Replace(ctx, user)
}

func (r *userRepository) Delete(ctx context.Context, userID string) error {
	return r.docs.Remove(ctx, domain.UserIdentity(userID))
}
