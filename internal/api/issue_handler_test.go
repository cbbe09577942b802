package api_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/testutil"
)

func TestIssueHandler_CreateRequiresProject(t *testing.T) {
	server := newTestServer(t)
	ada := server.signUp(t, "ada@example.com")
	project := server.createProject(t, ada, "Apollo")

	issue := server.createIssue(t, ada, project.ProjectID, "Fuel leak")
	assert.Equal(t, project.ProjectID, issue.ProjectID)
	assert.Equal(t, domain.IssuePartitionKey(project.ProjectID, issue.IssueID), issue.PartitionKey)
	assert.Equal(t, domain.KindIssue, issue.Type)
	assert.Equal(t, ada.userID, issue.CreatedBy)

	server.RunTestCases([]testutil.TestCase{
		{
			Name:           "unknown project",
			Method:         http.MethodPost,
			URL:            issuesURL("no-such-project"),
			Body:           map[string]string{"title": "Orphan"},
			Headers:        ada.auth(),
			ExpectedStatus: http.StatusNotFound,
			ExpectedCode:   "PROJECT_NOT_FOUND",
		},
		{
			Name:           "missing title",
			Method:         http.MethodPost,
			URL:            issuesURL(project.ProjectID),
			Body:           map[string]string{"description": "no title"},
			Headers:        ada.auth(),
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   "INVALID_REQUEST",
		},
	})
}

func TestIssueHandler_ListNewestFirst(t *testing.T) {
	server := newTestServer(t)
	ada := server.signUp(t, "ada@example.com")
	apollo := server.createProject(t, ada, "Apollo")
	gemini := server.createProject(t, ada, "Gemini")

	first := server.createIssue(t, ada, apollo.ProjectID, "first")
	time.Sleep(2 * time.Millisecond)
	second := server.createIssue(t, ada, apollo.ProjectID, "second")
	time.Sleep(2 * time.Millisecond)
	other := server.createIssue(t, ada, gemini.ProjectID, "other")

	recorder := server.GET(issuesURL(apollo.ProjectID), ada.auth())
	server.AssertStatus(recorder, http.StatusOK)

	var scoped struct {
		Issues []domain.Issue `json:"issues"`
	}
	server.DecodeData(recorder, &scoped)
	require.Len(t, scoped.Issues, 2)
	assert.Equal(t, second.IssueID, scoped.Issues[0].IssueID)
	assert.Equal(t, first.IssueID, scoped.Issues[1].IssueID)

	recorder = server.GET("/api/issues", ada.auth())
	server.AssertStatus(recorder, http.StatusOK)

	var all struct {
		Issues []domain.Issue `json:"issues"`
	}
	server.DecodeData(recorder, &all)
	require.Len(t, all.Issues, 3)
	assert.Equal(t, other.IssueID, all.Issues[0].IssueID)

	recorder = server.GET(issuesURL("no-such-project"), ada.auth())
	server.AssertStatus(recorder, http.StatusOK)
	var empty struct {
		Issues []domain.Issue `json:"issues"`
	}
	server.DecodeData(recorder, &empty)
	assert.Empty(t, empty.Issues)
}

func TestIssueHandler_ListExcludesComments(t *testing.T) {
	server := newTestServer(t)
	ada := server.signUp(t, "ada@example.com")
	project := server.createProject(t, ada, "Apollo")
	issue := server.createIssue(t, ada, project.ProjectID, "Fuel leak")
	server.addComment(t, ada, project.ProjectID, issue.IssueID, "Seen it")

	recorder := server.GET("/api/issues", ada.auth())
	var all struct {
		Issues []domain.Issue `json:"issues"`
	}
	server.DecodeData(recorder, &all)
	require.Len(t, all.Issues, 1)
	assert.Equal(t, domain.KindIssue, all.Issues[0].Type)
}

func TestIssueHandler_GetUpdateDelete(t *testing.T) {
	server := newTestServer(t)
	ada := server.signUp(t, "ada@example.com")
	apollo := server.createProject(t, ada, "Apollo")
	gemini := server.createProject(t, ada, "Gemini")
	issue := server.createIssue(t, ada, apollo.ProjectID, "Fuel leak")

	server.AssertStatus(server.GET(issueURL(apollo.ProjectID, issue.IssueID), ada.auth()), http.StatusOK)

	recorder := server.GET(issueURL(gemini.ProjectID, issue.IssueID), ada.auth())
	server.AssertStatus(recorder, http.StatusNotFound)
	env := server.DecodeEnvelope(recorder)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ISSUE_NOT_FOUND", env.Error.Code)
	assert.Equal(t, domain.IssuePartitionKey(gemini.ProjectID, issue.IssueID), env.Error.Details["partitionKey"])

	recorder = server.PUT(issueURL(apollo.ProjectID, issue.IssueID), map[string]string{"priority": "critical"}, ada.auth())
	server.AssertStatus(recorder, http.StatusOK)
	var updated struct {
		Issue domain.Issue `json:"issue"`
	}
	server.DecodeData(recorder, &updated)
	assert.Equal(t, "Fuel leak", updated.Issue.Title)
	assert.Equal(t, "critical", updated.Issue.Priority)
	require.NotNil(t, updated.Issue.LastUpdatedBy)
	assert.Equal(t, ada.userID, *updated.Issue.LastUpdatedBy)

	server.AssertStatus(server.DELETE(issueURL(apollo.ProjectID, issue.IssueID), ada.auth()), http.StatusOK)
	recorder = server.DELETE(issueURL(apollo.ProjectID, issue.IssueID), ada.auth())
	server.AssertStatus(recorder, http.StatusNotFound)
	assert.Equal(t, "ISSUE_NOT_FOUND", server.ErrorCode(recorder))
}

func TestIssueHandler_DeletedProjectKeepsIssues(t *testing.T) {
	server := newTestServer(t)
	ada := server.signUp(t, "ada@example.com")
	project := server.createProject(t, ada, "Apollo")
	server.createIssue(t, ada, project.ProjectID, "Fuel leak")

	server.AssertStatus(server.DELETE(projectURL(project.ProjectID), ada.auth()), http.StatusOK)

	recorder := server.GET(issuesURL(project.ProjectID), ada.auth())
	var data struct {
		Issues []domain.Issue `json:"issues"`
	}
	server.DecodeData(recorder, &data)
	assert.Len(t, data.Issues, 1)

	recorder = server.POST(issuesURL(project.ProjectID), map[string]string{"title": "Late"}, ada.auth())
	server.AssertStatus(recorder, http.StatusNotFound)
}
