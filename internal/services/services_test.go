package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/logging"
	"github.com/ericfisherdev/simple-easy-issues/internal/repository"
	"github.com/ericfisherdev/simple-easy-issues/internal/store"
	"github.com/ericfisherdev/simple-easy-issues/internal/store/memory"
)

const testSecret = "test-secret-that-is-32-characters-long"

// testConfig satisfies config.SecurityConfig.
type testConfig struct {
	jwtSecret         string
	jwtExpiration     time.Duration
	refreshExpiration time.Duration
}

func (t *testConfig) GetJWTSecret() string { return t.jwtSecret }

func (t *testConfig) GetJWTExpiration() time.Duration { return t.jwtExpiration }

func (t *testConfig) GetRefreshTokenExpiration() time.Duration {
	if t.refreshExpiration == 0 {
		return time.Hour * 24 * 7
	}
	return t.refreshExpiration
}

// fixture wires every service over one in-memory database.
type fixture struct {
	db         *store.Database
	users      repository.UserRepository
	projects   repository.ProjectRepository
	issues     repository.IssueRepository
	comments   repository.CommentRepository
	revocation *MemoryTokenRevocationStore
	auth       *authService
	userSvc    UserService
	projectSvc ProjectService
	issueSvc   IssueService
	commentSvc CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := store.Connect(context.Background(), memory.NewProvider(), store.Options{Logger: logging.Discard()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := logging.Discard()
	f := &fixture{
		db:         db,
		users:      repository.NewUserRepository(db.Users()),
		projects:   repository.NewProjectRepository(db.Projects()),
		issues:     repository.NewIssueRepository(db.Issues()),
		comments:   repository.NewCommentRepository(db.Issues()),
		revocation: NewMemoryTokenRevocationStore(),
	}
	cfg := &testConfig{jwtSecret: testSecret, jwtExpiration: time.Hour}
	f.auth = NewAuthService(f.users, f.revocation, cfg, logger).(*authService)
	f.userSvc = NewUserService(f.users, f.auth, logger)
	f.projectSvc = NewProjectService(f.projects, logger)
	f.issueSvc = NewIssueService(f.issues, f.projects, logger)
	f.commentSvc = NewCommentService(f.comments, f.issues, logger)
	return f
}

func (f *fixture) register(t *testing.T, email string) *domain.UserProfile {
	t.Helper()
	profile, err := f.userSvc.Register(context.Background(), domain.RegisterUserRequest{
		GivenName:  "Ada",
		FamilyName: "Lovelace",
		Email:      email,
		Password:   "password123",
	})
	require.NoError(t, err)
	return profile
}

func (f *fixture) project(t *testing.T, title, userID string) *domain.Project {
	t.Helper()
	project, err := f.projectSvc.CreateProject(context.Background(), domain.CreateProjectRequest{Title: title}, userID)
	require.NoError(t, err)
	return project
}

func (f *fixture) issue(t *testing.T, projectID, title, userID string) *domain.Issue {
	t.Helper()
	issue, err := f.issueSvc.CreateIssue(context.Background(), projectID, domain.CreateIssueRequest{Title: title}, userID)
	require.NoError(t, err)
	return issue
}

// errorCode returns the code of a domain error, or "" for anything else.
func errorCode(err error) string {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

func errorDetails(err error) map[string]interface{} {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}
