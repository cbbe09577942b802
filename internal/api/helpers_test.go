package api_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/simple-easy-issues/internal/config"
	"github.com/ericfisherdev/simple-easy-issues/internal/container"
	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/testutil"
)

const testPassword = "password123"

// testServer is the full router over an in-memory store.
type testServer struct {
	*testutil.HTTPTestHelper
	app *container.Application
}

func newTestServer(t *testing.T, env ...string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("ENVIRONMENT", "development")
	for i := 0; i+1 < len(env); i += 2 {
		t.Setenv(env[i], env[i+1])
	}

	cfg, err := config.Load("")
	require.NoError(t, err)

	app, err := container.New(context.Background(), cfg, container.Options{Version: "test", LogOutput: io.Discard})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	return &testServer{
		HTTPTestHelper: testutil.NewHTTPTestHelper(t, app.Router),
		app:            app,
	}
}

// session is a registered, logged-in user.
type session struct {
	userID       string
	email        string
	accessToken  string
	refreshToken string
}

func (s session) auth() map[string]string {
	return testutil.BearerHeader(s.accessToken)
}

func (s *testServer) signUp(t *testing.T, email string) session {
	t.Helper()

	recorder := s.POST("/api/auth/register", map[string]string{
		"givenName":  "Ada",
		"familyName": "Lovelace",
		"email":      email,
		"password":   testPassword,
	}, nil)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	recorder = s.POST("/api/auth/login", map[string]string{"email": email, "password": testPassword}, nil)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var result domain.LoginResult
	s.DecodeData(recorder, &result)
	return session{
		userID:       result.User.UserID,
		email:        result.User.Email,
		accessToken:  result.Tokens.AccessToken,
		refreshToken: result.Tokens.RefreshToken,
	}
}

func (s *testServer) createProject(t *testing.T, who session, title string) *domain.Project {
	t.Helper()

	recorder := s.POST("/api/projects", map[string]string{"title": title, "priority": "high"}, who.auth())
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var data struct {
		Project *domain.Project `json:"project"`
	}
	s.DecodeData(recorder, &data)
	return data.Project
}

func (s *testServer) createIssue(t *testing.T, who session, projectID, title string) *domain.Issue {
	t.Helper()

	recorder := s.POST(issuesURL(projectID), map[string]string{"title": title}, who.auth())
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var data struct {
		Issue *domain.Issue `json:"issue"`
	}
	s.DecodeData(recorder, &data)
	return data.Issue
}

func (s *testServer) addComment(t *testing.T, who session, projectID, issueID, text string) *domain.Comment {
	t.Helper()

	recorder := s.POST(commentsURL(projectID, issueID), map[string]string{"text": text}, who.auth())
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var data struct {
		Comment *domain.Comment `json:"comment"`
	}
	s.DecodeData(recorder, &data)
	return data.Comment
}

func projectURL(projectID string) string {
	return "/api/projects/" + projectID
}

func issuesURL(projectID string) string {
	return projectURL(projectID) + "/issues"
}

func issueURL(projectID, issueID string) string {
	return issuesURL(projectID) + "/" + issueID
}

func commentsURL(projectID, issueID string) string {
	return issueURL(projectID, issueID) + "/comments"
}

func commentURL(projectID, issueID, commentID string) string {
	return fmt.Sprintf("%s/%s", commentsURL(projectID, issueID), commentID)
}
