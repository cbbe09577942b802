//go:build integration
// +build integration

package integration

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
)

func requireDomainError(t *testing.T, err error, errType domain.ErrorType, code string) *domain.Error {
	t.Helper()
	var domainErr *domain.Error
	require.True(t, errors.As(err, &domainErr), "expected domain error, got %v", err)
	assert.Equal(t, errType, domainErr.Type)
	assert.Equal(t, code, domainErr.Code)
	return domainErr
}

func TestPocketBase_UserLifecycle(t *testing.T) {
	suite := SetupDatabaseTest(t)
	ctx := suite.Context()

	user := suite.Factory.CreateUser(func(r *domain.RegisterUserRequest) {
		r.Email = "  Grace@Example.com "
	})
	assert.Equal(t, "grace@example.com", user.Email)

	_, err := suite.Services.User.Register(ctx, domain.RegisterUserRequest{
		GivenName: "Other", FamilyName: "Grace", Email: "grace@example.com", Password: DefaultPassword,
	})
	requireDomainError(t, err, domain.ConflictError, "EMAIL_EXISTS")

	users, err := suite.Services.User.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, user.UserID, users[0].UserID)

	result, err := suite.Services.User.Login(ctx, domain.LoginRequest{Email: "GRACE@example.com", Password: DefaultPassword})
	require.NoError(t, err)
	require.NotNil(t, result.User.LastLoginOn)

	validated, err := suite.Services.Auth.ValidateToken(ctx, result.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, validated.UserID)
}

func TestPocketBase_UsersOrderedByEmail(t *testing.T) {
	suite := SetupDatabaseTest(t)

	for _, email := range []string{"carol@example.com", "alice@example.com", "bob@example.com"} {
		email := email
		suite.Factory.CreateUser(func(r *domain.RegisterUserRequest) { r.Email = email })
	}

	users, err := suite.Services.User.List(suite.Context())
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com", "carol@example.com"},
		[]string{users[0].Email, users[1].Email, users[2].Email})
}

func TestPocketBase_IssuesAndCommentsSharePartition(t *testing.T) {
	suite := SetupDatabaseTest(t)
	ctx := suite.Context()

	user := suite.Factory.CreateUser()
	project := suite.Factory.CreateProject(user.UserID, "Apollo")

	first := suite.Factory.CreateIssue(project.ProjectID, user.UserID, "first")
	time.Sleep(2 * time.Millisecond)
	second := suite.Factory.CreateIssue(project.ProjectID, user.UserID, "second")

	c1 := suite.Factory.CreateComment(first, user.UserID, "one")
	time.Sleep(2 * time.Millisecond)
	c2 := suite.Factory.CreateComment(first, user.UserID, "two")
	assert.Equal(t, first.PartitionKey, c1.PartitionKey)

	issues, err := suite.Services.Issue.ListProjectIssues(ctx, project.ProjectID)
	require.NoError(t, err)
	require.Len(t, issues, 2, "comments are not listed as issues")
	assert.Equal(t, second.IssueID, issues[0].IssueID)

	comments, err := suite.Services.Comment.ListIssueComments(ctx, project.ProjectID, first.IssueID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, c1.ID, comments[0].ID)
	assert.Equal(t, c2.ID, comments[1].ID)

	all, err := suite.Services.Comment.ListAllComments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPocketBase_NotFoundEchoesKey(t *testing.T) {
	suite := SetupDatabaseTest(t)
	ctx := suite.Context()

	user := suite.Factory.CreateUser()
	apollo := suite.Factory.CreateProject(user.UserID, "Apollo")
	gemini := suite.Factory.CreateProject(user.UserID, "Gemini")
	issue := suite.Factory.CreateIssue(apollo.ProjectID, user.UserID, "Fuel leak")

	_, err := suite.Services.Issue.GetIssue(ctx, gemini.ProjectID, issue.IssueID)
	domainErr := requireDomainError(t, err, domain.NotFoundError, "ISSUE_NOT_FOUND")
	assert.Equal(t, domain.IssuePartitionKey(gemini.ProjectID, issue.IssueID), domainErr.Details["partitionKey"])

	err = suite.Services.Project.DeleteProject(ctx, "missing")
	requireDomainError(t, err, domain.NotFoundError, "PROJECT_NOT_FOUND")
}

func TestPocketBase_UpdateMergesAndStamps(t *testing.T) {
	suite := SetupDatabaseTest(t)
	ctx := suite.Context()

	owner := suite.Factory.CreateUser()
	editor := suite.Factory.CreateUser()
	project := suite.Factory.CreateProject(owner.UserID, "Apollo")

	description := "Moon"
	updated, err := suite.Services.Project.UpdateProject(ctx, project.ProjectID,
		domain.UpdateProjectRequest{Description: &description}, editor.UserID)
	require.NoError(t, err)

	stored, err := suite.Services.Project.GetProject(ctx, project.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, "Apollo", stored.Title)
	assert.Equal(t, "Moon", stored.Description)
	assert.Equal(t, owner.UserID, stored.CreatedBy)
	require.NotNil(t, stored.LastUpdatedBy)
	assert.Equal(t, editor.UserID, *stored.LastUpdatedBy)
	assert.Equal(t, updated.LastUpdatedOn.String(), stored.LastUpdatedOn.String())
}

func TestPocketBase_CommentDeleteIsAuthorOnly(t *testing.T) {
	suite := SetupDatabaseTest(t)
	ctx := suite.Context()

	author := suite.Factory.CreateUser()
	other := suite.Factory.CreateUser()
	project := suite.Factory.CreateProject(author.UserID, "Apollo")
	issue := suite.Factory.CreateIssue(project.ProjectID, author.UserID, "Fuel leak")
	comment := suite.Factory.CreateComment(issue, author.UserID, "mine")

	err := suite.Services.Comment.DeleteComment(ctx, project.ProjectID, issue.IssueID, comment.ID, other.UserID)
	requireDomainError(t, err, domain.AuthorizationError, "NOT_COMMENT_AUTHOR")

	require.NoError(t, suite.Services.Comment.DeleteComment(ctx, project.ProjectID, issue.IssueID, comment.ID, author.UserID))

	_, err = suite.Services.Issue.GetIssue(ctx, project.ProjectID, issue.IssueID)
	assert.NoError(t, err, "deleting a comment leaves its issue")
}
