package api_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/testutil"
)

func TestAuthHandler_Register(t *testing.T) {
	server := newTestServer(t)
	ada := server.signUp(t, "ada@example.com")

	server.RunTestCases([]testutil.TestCase{
		{
			Name:   "duplicate email is rejected",
			Method: http.MethodPost,
			URL:    "/api/auth/register",
			Body: map[string]string{
				"givenName": "Ada", "familyName": "Byron", "email": "ADA@example.com", "password": testPassword,
			},
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   "EMAIL_EXISTS",
		},
		{
			Name:   "short password",
			Method: http.MethodPost,
			URL:    "/api/auth/register",
			Body: map[string]string{
				"givenName": "Grace", "familyName": "Hopper", "email": "grace@example.com", "password": "short",
			},
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   "INVALID_REQUEST",
		},
		{
			Name:           "missing body",
			Method:         http.MethodPost,
			URL:            "/api/auth/register",
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   "EMPTY_BODY",
		},
	})

	recorder := server.GET("/api/users", ada.auth())
	server.AssertStatus(recorder, http.StatusOK)
	var data struct {
		Users []domain.UserProfile `json:"users"`
	}
	server.DecodeData(recorder, &data)
	require.Len(t, data.Users, 1, "only the first registration is stored")
	assert.Equal(t, "ada@example.com", data.Users[0].Email)
}

func TestAuthHandler_RegisterNeverReturnsPasswordHash(t *testing.T) {
	server := newTestServer(t)

	recorder := server.POST("/api/auth/register", map[string]string{
		"givenName": "Ada", "familyName": "Lovelace", "email": "ada@example.com", "password": testPassword,
	}, nil)
	server.AssertStatus(recorder, http.StatusCreated)
	assert.NotContains(t, recorder.Body.String(), "passwordHash")
	assert.NotContains(t, recorder.Body.String(), testPassword)
}

func TestAuthHandler_Login(t *testing.T) {
	server := newTestServer(t)
	server.signUp(t, "ada@example.com")

	server.RunTestCases([]testutil.TestCase{
		{
			Name:           "wrong password",
			Method:         http.MethodPost,
			URL:            "/api/auth/login",
			Body:           map[string]string{"email": "ada@example.com", "password": "not-the-password"},
			ExpectedStatus: http.StatusUnauthorized,
			ExpectedCode:   "INVALID_CREDENTIALS",
		},
		{
			Name:           "unknown email",
			Method:         http.MethodPost,
			URL:            "/api/auth/login",
			Body:           map[string]string{"email": "nobody@example.com", "password": testPassword},
			ExpectedStatus: http.StatusUnauthorized,
			ExpectedCode:   "INVALID_CREDENTIALS",
		},
	})

	recorder := server.POST("/api/auth/login", map[string]string{"email": "ada@example.com", "password": testPassword}, nil)
	server.AssertStatus(recorder, http.StatusOK)

	var result domain.LoginResult
	server.DecodeData(recorder, &result)
	require.NotNil(t, result.User.LastLoginOn, "login stamps lastLoginOn")

	cookies := recorder.Header().Values("Set-Cookie")
	assert.True(t, containsPrefix(cookies, "access_token="), "access cookie set: %v", cookies)
	assert.True(t, containsPrefix(cookies, "refresh_token="), "refresh cookie set: %v", cookies)
}

func TestAuthHandler_MeAndLogout(t *testing.T) {
	server := newTestServer(t)
	ada := server.signUp(t, "ada@example.com")

	recorder := server.GET("/api/auth/me", ada.auth())
	server.AssertStatus(recorder, http.StatusOK)

	var me struct {
		User domain.UserProfile `json:"user"`
	}
	server.DecodeData(recorder, &me)
	assert.Equal(t, ada.userID, me.User.UserID)

	server.AssertStatus(server.POST("/api/auth/logout", nil, ada.auth()), http.StatusOK)

	recorder = server.GET("/api/auth/me", ada.auth())
	server.AssertStatus(recorder, http.StatusUnauthorized)
}

func TestAuthHandler_Refresh(t *testing.T) {
	server := newTestServer(t)
	ada := server.signUp(t, "ada@example.com")

	recorder := server.POST("/api/auth/refresh", map[string]string{"refresh_token": ada.refreshToken}, nil)
	server.AssertStatus(recorder, http.StatusOK)

	var pair domain.TokenPair
	server.DecodeData(recorder, &pair)
	require.NotEmpty(t, pair.AccessToken)

	server.AssertStatus(server.GET("/api/auth/me", testutil.BearerHeader(pair.AccessToken)), http.StatusOK)

	recorder = server.POST("/api/auth/refresh", map[string]string{"refresh_token": ada.refreshToken}, nil)
	server.AssertStatus(recorder, http.StatusUnauthorized)

	recorder = server.POST("/api/auth/refresh", map[string]string{}, nil)
	server.AssertStatus(recorder, http.StatusBadRequest)
	assert.Equal(t, "MISSING_REFRESH_TOKEN", server.ErrorCode(recorder))

	recorder = server.POST("/api/auth/refresh", map[string]string{"refresh_token": ada.accessToken}, nil)
	server.AssertStatus(recorder, http.StatusUnauthorized)
}

func containsPrefix(values []string, prefix string) bool {
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}
	return false
}
