package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/repository"
)

// UserService defines the interface for user-related business logic.
type UserService interface {
	// Register creates a new account; the email must not be in use
	Register(ctx context.Context, req domain.RegisterUserRequest) (*domain.UserProfile, error)

	// Login verifies credentials, stamps lastLoginOn and issues tokens
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error)

	// GetByEmail gets a user by email
	GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error)

	// GetProfile gets a user's profile by ID
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)

	// List lists all users ordered by email
	List(ctx context.Context) ([]*domain.UserProfile, error)

	// UpdateSelf merges the changed fields into the caller's own user
	UpdateSelf(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.UserProfile, error)

	// DeleteSelf deletes the caller's own user
	DeleteSelf(ctx context.Context, userID string) error
}

// userService implements UserService interface.
type userService struct {
	userRepo    repository.UserRepository
	authService AuthService
	logger      *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, authService AuthService, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		userRepo:    userRepo,
		authService: authService,
		logger:      logger,
	}
}

// Register checks the email first and refuses with Conflict before inserting. Two
// concurrent registrations of the same email can both pass the check.
func (s *userService) Register(ctx context.Context, req domain.RegisterUserRequest) (*domain.UserProfile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(req.Email)
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewConflictError("EMAIL_EXISTS", "A user with this email already exists")
	}

	user := domain.NewUser(req.GivenName, req.FamilyName, email)
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.UserID)
	return user.Profile(), nil
}

// Login authenticates a user and returns JWT tokens.
func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, domain.NormalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || user.CheckPassword(req.Password) != nil {
		return nil, domain.NewAuthenticationError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	user.LastLoginOn = domain.NowPtr()
	if err := s.userRepo.Replace(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.authService.IssueTokens(user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.UserID)
	return &domain.LoginResult{Tokens: tokens, User: user.Profile()}, nil
}

// GetByEmail gets a user by normalized email.
func (s *userService) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	normalized := domain.NormalizeEmail(email)
	if normalized == "" {
		return nil, domain.NewValidationError("INVALID_EMAIL", "Email cannot be empty", map[string]interface{}{
			"field": "email",
		})
	}

	user, err := s.userRepo.GetByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFoundError("USER_NOT_FOUND", "User not found", map[string]interface{}{
			"email": normalized,
		})
	}
	return user.Profile(), nil
}

// GetProfile gets a user's profile by ID.
func (s *userService) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

// List lists all users.
func (s *userService) List(ctx context.Context) ([]*domain.UserProfile, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]*domain.UserProfile, len(users))
	for i, user := range users {
		profiles[i] = user.Profile()
	}
	return profiles, nil
}

// UpdateSelf merges the request into the stored user and replaces it.
func (s *userService) UpdateSelf(
	ctx context.Context,
	userID string,
	req domain.UpdateUserRequest,
) (*domain.UserProfile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := domain.NormalizeEmail(*req.Email)
		if email != user.Email {
			if err := s.ensureEmailAvailable(ctx, email, user.UserID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if req.GivenName != nil {
		user.GivenName = strings.TrimSpace(*req.GivenName)
	}
	if req.FamilyName != nil {
		user.FamilyName = strings.TrimSpace(*req.FamilyName)
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, err
		}
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Replace(ctx, user); err != nil {
		return nil, err
	}

	return user.Profile(), nil
}

// DeleteSelf deletes the caller's user document.
func (s *userService) DeleteSelf(ctx context.Context, userID string) error {
	if _, err := s.load(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "user deleted", "user_id", userID)
	return nil
}

func (s *userService) ensureEmailAvailable(ctx context.Context, email, selfID string) error {
	matches, err := s.userRepo.ListByEmail(ctx, email)
	if err != nil {
		return err
	}
	for _, other := range matches {
		if other.UserID != selfID {
			return domain.NewConflictError("EMAIL_EXISTS", "A user with this email already exists")
		}
	}
	return nil
}

func (s *userService) load(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.NewValidationError("INVALID_USER_ID", "User ID cannot be empty", map[string]interface{}{
			"field": "userId",
		})
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		id := domain.UserIdentity(userID)
		return nil, domain.NewNotFoundError("USER_NOT_FOUND", "User not found", map[string]interface{}{
			"id":           id.ID,
			"partitionKey": id.PartitionKey,
		})
	}
	return user, nil
}
