package domain

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// User is the persisted user document.
type User struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	GivenName    string     `json:"givenName"`
	FamilyName   string     `json:"familyName"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"passwordHash"`
	Type         Kind       `json:"type"`
	RegisteredOn Timestamp  `json:"registeredOn"`
	LastLoginOn  *Timestamp `json:"lastLoginOn"`
}

// NewUser creates a user document with a generated identity and normalized email.
func NewUser(givenName, familyName, email string) *User {
	id := NewID()
	return &User{
		ID:           id,
		UserID:       id,
		GivenName:    strings.TrimSpace(givenName),
		FamilyName:   strings.TrimSpace(familyName),
		Email:        NormalizeEmail(email),
		Type:         KindUser,
		RegisteredOn: Now(),
	}
}

// Identity returns the user's (id, partitionKey) pair.
func (u *User) Identity() Identity {
	return UserIdentity(u.UserID)
}

// SetPassword hashes and sets the user's password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return NewInternalError("PASSWORD_HASH_FAILED", "Failed to hash password", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies the provided password against the stored hash.
func (u *User) CheckPassword(password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	if err != nil {
		return NewAuthenticationError("INVALID_PASSWORD", "Password does not match")
	}
	return nil
}

// Profile returns the public view of the user.
func (u *User) Profile() *UserProfile {
	return &UserProfile{
		UserID:       u.UserID,
		GivenName:    u.GivenName,
		FamilyName:   u.FamilyName,
		Email:        u.Email,
		RegisteredOn: u.RegisteredOn,
		LastLoginOn:  u.LastLoginOn,
	}
}

// Validate validates the user document.
func (u *User) Validate() error {
	if u.UserID == "" || u.ID != u.UserID {
		return NewValidationError("INVALID_USER_ID", "User id and userId must be set and equal", map[string]interface{}{
			"field": "userId",
		})
	}

	if u.Email == "" {
		return NewValidationError("INVALID_EMAIL", "Email is required", map[string]interface{}{
			"field": "email",
		})
	}

	if u.GivenName == "" || u.FamilyName == "" {
		field := "givenName"
		if u.GivenName != "" {
			field = "familyName"
		}
		return NewValidationError("INVALID_NAME", "Given and family name are required", map[string]interface{}{
			"field": field,
		})
	}

	if u.Type != KindUser {
		return NewValidationError("INVALID_TYPE", "User document type must be User", map[string]interface{}{
			"field": "type",
			"value": u.Type,
		})
	}

	return nil
}

// UserProfile is the user representation returned to clients. It never carries the password hash.
type UserProfile struct {
	UserID       string     `json:"userId" yaml:"userId"`
	GivenName    string     `json:"givenName" yaml:"givenName"`
	FamilyName   string     `json:"familyName" yaml:"familyName"`
	Email        string     `json:"email" yaml:"email"`
	RegisteredOn Timestamp  `json:"registeredOn" yaml:"registeredOn"`
	LastLoginOn  *Timestamp `json:"lastLoginOn" yaml:"lastLoginOn"`
}

// NormalizeEmail returns the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUserRequest represents the data needed to register a new user.
type RegisterUserRequest struct {
	GivenName  string `json:"givenName" binding:"required,max=100"`
	FamilyName string `json:"familyName" binding:"required,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
}

// Validate validates the registration request.
func (r RegisterUserRequest) Validate() error {
	r.GivenName = strings.TrimSpace(r.GivenName)
	r.FamilyName = strings.TrimSpace(r.FamilyName)
	r.Email = NormalizeEmail(r.Email)
	return validateStruct(r)
}

// UpdateUserRequest represents the fields a user may change on their own profile.
type UpdateUserRequest struct {
	GivenName  *string `json:"givenName,omitempty" binding:"omitempty,min=1,max=100"`
	FamilyName *string `json:"familyName,omitempty" binding:"omitempty,min=1,max=100"`
	Email      *string `json:"email,omitempty" binding:"omitempty,email"`
	Password   *string `json:"password,omitempty" binding:"omitempty,min=8"`
}

// Validate validates the update request.
func (r UpdateUserRequest) Validate() error {
	r.GivenName = trimmedPtr(r.GivenName)
	r.FamilyName = trimmedPtr(r.FamilyName)
	if r.Email != nil {
		normalized := NormalizeEmail(*r.Email)
		r.Email = &normalized
	}
	return validateStruct(r)
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}

// LoginRequest represents login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Validate validates the login request.
func (r LoginRequest) Validate() error {
	r.Email = NormalizeEmail(r.Email)
	return validateStruct(r)
}

// TokenPair represents JWT tokens.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    Timestamp `json:"expires_at"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Tokens *TokenPair   `json:"tokens"`
	User   *UserProfile `json:"user"`
}
