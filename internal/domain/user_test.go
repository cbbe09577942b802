package domain_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ada@example.com", "ada@example.com"},
		{"  Ada@Example.COM ", "ada@example.com"},
		{"\tBOB@x.io\n", "bob@x.io"},
	}

	for _, tt := range tests {
		if got := domain.NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewUser(t *testing.T) {
	user := domain.NewUser(" Ada ", "Lovelace", " ADA@example.com")

	if user.ID == "" || user.ID != user.UserID {
		t.Fatalf("Expected matching id and userId, got %q and %q", user.ID, user.UserID)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("Expected normalized email, got %s", user.Email)
	}
	if user.GivenName != "Ada" {
		t.Errorf("Expected trimmed given name, got %q", user.GivenName)
	}
	if user.Type != domain.KindUser {
		t.Errorf("Expected type User, got %s", user.Type)
	}
	if user.LastLoginOn != nil {
		t.Error("Expected lastLoginOn to be unset before first login")
	}
	if user.Identity() != domain.UserIdentity(user.UserID) {
		t.Error("Unexpected user identity")
	}
}

func TestUserPassword(t *testing.T) {
	user := domain.NewUser("Ada", "Lovelace", "ada@example.com")

	if err := user.SetPassword("correct horse"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if user.PasswordHash == "" || user.PasswordHash == "correct horse" {
		t.Fatal("Expected password to be hashed")
	}
	if err := user.CheckPassword("correct horse"); err != nil {
		t.Errorf("Expected password to match: %v", err)
	}
	if err := user.CheckPassword("wrong"); !domain.IsErrorType(err, domain.AuthenticationError) {
		t.Errorf("Expected authentication error, got %v", err)
	}
}

func TestUserProfile_OmitsPasswordHash(t *testing.T) {
	user := domain.NewUser("Ada", "Lovelace", "ada@example.com")
	_ = user.SetPassword("correct horse")

	data, err := json.Marshal(user.Profile())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), "passwordHash") {
		t.Errorf("Profile must not expose the password hash: %s", data)
	}
}

func TestRegisterUserRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     domain.RegisterUserRequest
		wantErr bool
		field   string
	}{
		{"valid", domain.RegisterUserRequest{GivenName: "A", FamilyName: "B", Email: " A@B.io ", Password: "password1"}, false, ""},
		{"missing given name", domain.RegisterUserRequest{FamilyName: "B", Email: "a@b.io", Password: "password1"}, true, "givenName"},
		{"blank family name", domain.RegisterUserRequest{GivenName: "A", FamilyName: "  ", Email: "a@b.io", Password: "password1"}, true, "familyName"},
		{"bad email", domain.RegisterUserRequest{GivenName: "A", FamilyName: "B", Email: "nope", Password: "password1"}, true, "email"},
		{"short password", domain.RegisterUserRequest{GivenName: "A", FamilyName: "B", Email: "a@b.io", Password: "short"}, true, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			domainErr, ok := err.(*domain.Error)
			if !ok {
				t.Fatalf("Expected *domain.Error, got %T", err)
			}
			if domainErr.Type != domain.ValidationError {
				t.Errorf("Expected validation error, got %s", domainErr.Type)
			}
			if domainErr.Details["field"] != tt.field {
				t.Errorf("Expected field %s, got %v", tt.field, domainErr.Details["field"])
			}
		})
	}
}

func TestTimestamp_FixedWidthJSON(t *testing.T) {
	ts := domain.NewTimestamp(time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("X", 3600)))

	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"2024-03-01T09:00:00.000Z"` {
		t.Errorf("Unexpected timestamp encoding: %s", data)
	}

	var decoded domain.Timestamp
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !decoded.Equal(ts.Time) {
		t.Errorf("Expected %v, got %v", ts, decoded)
	}

	earlier := domain.NewTimestamp(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	later := domain.NewTimestamp(time.Date(2024, 3, 1, 9, 0, 0, 500_000_000, time.UTC))
	if !(earlier.String() < later.String()) {
		t.Errorf("Expected lexical order to follow time order: %s vs %s", earlier, later)
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.NewNotFoundError("X", "x", nil), 404},
		{domain.NewConflictError("X", "x"), 400},
		{domain.NewValidationError("X", "x", nil), 400},
		{domain.NewStoreUnavailableError("X", "x", nil), 503},
		{domain.NewAuthenticationError("X", "x"), 401},
		{domain.NewAuthorizationError("X", "x"), 403},
		{domain.NewInternalError("X", "x", nil), 500},
	}

	for _, tt := range tests {
		if got := domain.StatusCode(tt.err); got != tt.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestUser_ValidateRequiresNames(t *testing.T) {
	user := domain.NewUser("Ada", " ", "ada@example.com")

	err := user.Validate()
	domainErr, ok := err.(*domain.Error)
	if !ok {
		t.Fatalf("Expected *domain.Error, got %T", err)
	}
	if domainErr.Code != "INVALID_NAME" || domainErr.Details["field"] != "familyName" {
		t.Errorf("Unexpected error: %v %v", domainErr.Code, domainErr.Details)
	}

	user.FamilyName = "Lovelace"
	if err := user.Validate(); err != nil {
		t.Errorf("Expected a valid user, got %v", err)
	}
}

func TestUpdateUserRequest_ValidateRejectsBlankNames(t *testing.T) {
	blank := "  "
	err := domain.UpdateUserRequest{GivenName: &blank}.Validate()
	domainErr, ok := err.(*domain.Error)
	if !ok {
		t.Fatalf("Expected *domain.Error, got %T", err)
	}
	if domainErr.Details["field"] != "givenName" {
		t.Errorf("Expected field givenName, got %v", domainErr.Details["field"])
	}
}
