package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
)

func TestUserService_Register(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("normalizes email and hides the password hash", func(t *testing.T) {
		profile := f.register(t, "  Ada@Example.COM ")
		assert.Equal(t, "ada@example.com", profile.Email)
		assert.NotEmpty(t, profile.UserID)
		assert.Nil(t, profile.LastLoginOn)

		stored, err := f.users.GetByID(ctx, profile.UserID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.NotEqual(t, "password123", stored.PasswordHash)
		assert.NoError(t, stored.CheckPassword("password123"))
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		_, err := f.userSvc.Register(ctx, domain.RegisterUserRequest{
			GivenName:  "Other",
			FamilyName: "Person",
			Email:      "ADA@example.com",
			Password:   "password456",
		})
		require.Error(t, err)
		assert.True(t, domain.IsConflict(err))
		assert.Equal(t, 400, domain.StatusCode(err))

		users, err := f.users.ListByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Len(t, users, 1, "the refused registration stores nothing")
	})

	t.Run("blank given name", func(t *testing.T) {
		_, err := f.userSvc.Register(ctx, domain.RegisterUserRequest{
			GivenName:  "   ",
			FamilyName: "Hopper",
			Email:      "grace@example.com",
			Password:   "password456",
		})
		require.Error(t, err)
		assert.True(t, domain.IsErrorType(err, domain.ValidationError))

		users, err := f.users.ListByEmail(ctx, "grace@example.com")
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("invalid request", func(t *testing.T) {
		_, err := f.userSvc.Register(ctx, domain.RegisterUserRequest{Email: "not-an-email"})
		require.Error(t, err)
		assert.True(t, domain.IsErrorType(err, domain.ValidationError))
	})
}

func TestUserService_Login(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := f.register(t, "ada@example.com")

	t.Run("stamps lastLoginOn and issues tokens", func(t *testing.T) {
		result, err := f.userSvc.Login(ctx, domain.LoginRequest{Email: "ADA@example.com ", Password: "password123"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Tokens.AccessToken)
		assert.NotEmpty(t, result.Tokens.RefreshToken)
		require.NotNil(t, result.User.LastLoginOn)

		stored, err := f.users.GetByID(ctx, profile.UserID)
		require.NoError(t, err)
		require.NotNil(t, stored.LastLoginOn)
		assert.Equal(t, result.User.LastLoginOn.String(), stored.LastLoginOn.String())
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.userSvc.Login(ctx, domain.LoginRequest{Email: "ada@example.com", Password: "wrong-password"})
		assert.Equal(t, "INVALID_CREDENTIALS", errorCode(err))
	})

	t.Run("unknown email gives the same answer", func(t *testing.T) {
		_, err := f.userSvc.Login(ctx, domain.LoginRequest{Email: "nobody@example.com", Password: "password123"})
		assert.Equal(t, "INVALID_CREDENTIALS", errorCode(err))
		assert.Equal(t, 401, domain.StatusCode(err))
	})
}

func TestUserService_GetByEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := f.register(t, "ada@example.com")

	got, err := f.userSvc.GetByEmail(ctx, " ADA@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, profile.UserID, got.UserID)

	_, err = f.userSvc.GetByEmail(ctx, "missing@example.com")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, "missing@example.com", errorDetails(err)["email"])
}

func TestUserService_GetProfileNotFoundEchoesKey(t *testing.T) {
	f := newFixture(t)

	_, err := f.userSvc.GetProfile(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, "ghost", errorDetails(err)["id"])
	assert.Equal(t, "ghost", errorDetails(err)["partitionKey"])
}

func TestUserService_ListOrderedByEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "carol@example.com")
	f.register(t, "alice@example.com")
	f.register(t, "bob@example.com")

	users, err := f.userSvc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "alice@example.com", users[0].Email)
	assert.Equal(t, "bob@example.com", users[1].Email)
	assert.Equal(t, "carol@example.com", users[2].Email)
}

func TestUserService_UpdateSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.register(t, "ada@example.com")
	f.register(t, "grace@example.com")

	t.Run("merges changed fields", func(t *testing.T) {
		name := "Augusta"
		updated, err := f.userSvc.UpdateSelf(ctx, ada.UserID, domain.UpdateUserRequest{GivenName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Augusta", updated.GivenName)
		assert.Equal(t, "Lovelace", updated.FamilyName)
		assert.Equal(t, "ada@example.com", updated.Email)
	})

	t.Run("names are trimmed", func(t *testing.T) {
		name := "  Grace  "
		updated, err := f.userSvc.UpdateSelf(ctx, ada.UserID, domain.UpdateUserRequest{GivenName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Grace", updated.GivenName)

		stored, err := f.users.GetByID(ctx, ada.UserID)
		require.NoError(t, err)
		assert.Equal(t, "Grace", stored.GivenName)
	})

	t.Run("blank name is rejected and nothing is stored", func(t *testing.T) {
		blank := "   "
		_, err := f.userSvc.UpdateSelf(ctx, ada.UserID, domain.UpdateUserRequest{FamilyName: &blank})
		require.Error(t, err)
		assert.True(t, domain.IsErrorType(err, domain.ValidationError))

		stored, err := f.users.GetByID(ctx, ada.UserID)
		require.NoError(t, err)
		assert.Equal(t, "Lovelace", stored.FamilyName)
	})

	t.Run("keeping own email is allowed", func(t *testing.T) {
		email := "ADA@example.com"
		_, err := f.userSvc.UpdateSelf(ctx, ada.UserID, domain.UpdateUserRequest{Email: &email})
		assert.NoError(t, err)
	})

	t.Run("taking another user's email is a conflict", func(t *testing.T) {
		email := "grace@example.com"
		_, err := f.userSvc.UpdateSelf(ctx, ada.UserID, domain.UpdateUserRequest{Email: &email})
		require.Error(t, err)
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("password change takes effect", func(t *testing.T) {
		password := "new-password-1"
		_, err := f.userSvc.UpdateSelf(ctx, ada.UserID, domain.UpdateUserRequest{Password: &password})
		require.NoError(t, err)

		_, err = f.userSvc.Login(ctx, domain.LoginRequest{Email: "ada@example.com", Password: password})
		assert.NoError(t, err)
	})
}

func TestUserService_DeleteSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.register(t, "ada@example.com")

	require.NoError(t, f.userSvc.DeleteSelf(ctx, ada.UserID))

	_, err := f.userSvc.GetProfile(ctx, ada.UserID)
	assert.True(t, domain.IsNotFound(err))

	err = f.userSvc.DeleteSelf(ctx, ada.UserID)
	assert.True(t, domain.IsNotFound(err))
}
