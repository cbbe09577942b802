//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
)

// DefaultPassword is the password of every factory user.
const DefaultPassword = "password123"

// TestDataFactory creates test data through the service layer
type TestDataFactory struct {
	t        *testing.T
	services *ServiceSet
	seq      atomic.Int64
}

// NewTestDataFactory creates a new test data factory
func NewTestDataFactory(t *testing.T, services *ServiceSet) *TestDataFactory {
	return &TestDataFactory{t: t, services: services}
}

// CreateUser registers a user with a unique email
func (f *TestDataFactory) CreateUser(overrides ...func(*domain.RegisterUserRequest)) *domain.UserProfile {
	f.t.Helper()
	n := f.seq.Add(1)

	req := domain.RegisterUserRequest{
		GivenName:  "Test",
		FamilyName: fmt.Sprintf("User %d", n),
		Email:      fmt.Sprintf("user%d@example.com", n),
		Password:   DefaultPassword,
	}
	for _, override := range overrides {
		override(&req)
	}

	profile, err := f.services.User.Register(context.Background(), req)
	require.NoError(f.t, err, "create user")
	return profile
}

// CreateProject creates a project owned by userID
func (f *TestDataFactory) CreateProject(userID, title string) *domain.Project {
	f.t.Helper()

	project, err := f.services.Project.CreateProject(context.Background(), domain.CreateProjectRequest{
		Title:    title,
		Priority: "medium",
	}, userID)
	require.NoError(f.t, err, "create project")
	return project
}

// CreateIssue creates an issue in projectID
func (f *TestDataFactory) CreateIssue(projectID, userID, title string) *domain.Issue {
	f.t.Helper()

	issue, err := f.services.Issue.CreateIssue(context.Background(), projectID, domain.CreateIssueRequest{
		Title: title,
	}, userID)
	require.NoError(f.t, err, "create issue")
	return issue
}

// CreateComment adds a comment to an issue
func (f *TestDataFactory) CreateComment(issue *domain.Issue, userID, text string) *domain.Comment {
	f.t.Helper()

	comment, err := f.services.Comment.CreateComment(context.Background(), issue.ProjectID, issue.IssueID,
		domain.CreateCommentRequest{Text: text}, userID)
	require.NoError(f.t, err, "create comment")
	return comment
}
