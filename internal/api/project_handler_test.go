package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/testutil"
)

func TestProjectHandler_CreateProject(t *testing.T) {
	server := newTestServer(t)
	ada := server.signUp(t, "ada@example.com")

	server.RunTestCases([]testutil.TestCase{
		{
			Name:   "successful project creation",
			Method: http.MethodPost,
			URL:    "/api/projects",
			Body: map[string]interface{}{
				"title":       "Test Project",
				"description": "A test project",
			},
			Headers:        ada.auth(),
			ExpectedStatus: http.StatusCreated,
		},
		{
			Name:           "invalid request body",
			Method:         http.MethodPost,
			URL:            "/api/projects",
			Body:           map[string]interface{}{"title": ""},
			Headers:        ada.auth(),
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   "INVALID_REQUEST",
		},
		{
			Name:           "missing request body",
			Method:         http.MethodPost,
			URL:            "/api/projects",
			Headers:        ada.auth(),
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   "EMPTY_BODY",
		},
		{
			Name:           "unauthenticated",
			Method:         http.MethodPost,
			URL:            "/api/projects",
			Body:           map[string]interface{}{"title": "Nope"},
			ExpectedStatus: http.StatusUnauthorized,
			ExpectedCode:   "MISSING_TOKEN",
		},
	})
}

func TestProjectHandler_CreateStampsAudit(t *testing.T) {
	server := newTestServer(t)
	ada := server.signUp(t, "ada@example.com")

	project := server.createProject(t, ada, "Apollo")
	assert.Equal(t, project.ID, project.ProjectID)
	assert.Equal(t, domain.KindProject, project.Type)
	assert.Equal(t, ada.userID, project.CreatedBy)
	assert.Nil(t, project.LastUpdatedOn)
}

func TestProjectHandler_ListOrderedByTitle(t *testing.T) {
	server := newTestServer(t)
	ada := server.signUp(t, "ada@example.com")
	server.createProject(t, ada, "Gemini")
	server.createProject(t, ada, "Apollo")
	server.createProject(t, ada, "Mercury")

	recorder := server.GET("/api/projects", ada.auth())
	server.AssertStatus(recorder, http.StatusOK)

	var data struct {
		Projects []domain.Project `json:"projects"`
		Meta     struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	server.DecodeData(recorder, &data)
	require.Len(t, data.Projects, 3)
	assert.Equal(t, 3, data.Meta.Total)
	assert.Equal(t, []string{"Apollo", "Gemini", "Mercury"},
		[]string{data.Projects[0].Title, data.Projects[1].Title, data.Projects[2].Title})
}

func TestProjectHandler_GetUpdateDelete(t *testing.T) {
	server := newTestServer(t)
	ada := server.signUp(t, "ada@example.com")
	grace := server.signUp(t, "grace@example.com")
	project := server.createProject(t, ada, "Apollo")

	recorder := server.GET(projectURL(project.ProjectID), ada.auth())
	server.AssertStatus(recorder, http.StatusOK)

	recorder = server.PUT(projectURL(project.ProjectID), map[string]string{"description": "Moon"}, grace.auth())
	server.AssertStatus(recorder, http.StatusOK)

	var updated struct {
		Project domain.Project `json:"project"`
	}
	server.DecodeData(recorder, &updated)
	assert.Equal(t, "Apollo", updated.Project.Title, "title merged from stored project")
	assert.Equal(t, "Moon", updated.Project.Description)
	assert.Equal(t, "high", updated.Project.Priority)
	require.NotNil(t, updated.Project.LastUpdatedBy)
	assert.Equal(t, grace.userID, *updated.Project.LastUpdatedBy)
	assert.NotNil(t, updated.Project.LastUpdatedOn)
	assert.Equal(t, ada.userID, updated.Project.CreatedBy)

	server.AssertStatus(server.DELETE(projectURL(project.ProjectID), ada.auth()), http.StatusOK)

	recorder = server.GET(projectURL(project.ProjectID), ada.auth())
	server.AssertStatus(recorder, http.StatusNotFound)
	env := server.DecodeEnvelope(recorder)
	require.NotNil(t, env.Error)
	assert.Equal(t, "PROJECT_NOT_FOUND", env.Error.Code)
	assert.Equal(t, project.ProjectID, env.Error.Details["id"])

	server.RunTestCases([]testutil.TestCase{
		{
			Name:           "update missing project",
			Method:         http.MethodPut,
			URL:            projectURL(project.ProjectID),
			Body:           map[string]string{"title": "Again"},
			Headers:        ada.auth(),
			ExpectedStatus: http.StatusNotFound,
			ExpectedCode:   "PROJECT_NOT_FOUND",
		},
		{
			Name:           "delete missing project",
			Method:         http.MethodDelete,
			URL:            projectURL(project.ProjectID),
			Headers:        ada.auth(),
			ExpectedStatus: http.StatusNotFound,
			ExpectedCode:   "PROJECT_NOT_FOUND",
		},
	})
}
