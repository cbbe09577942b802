package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
)

func TestProjectService_CreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.projectSvc.CreateProject(ctx, domain.CreateProjectRequest{
		Title:       "  Apollo ",
		Description: "Moon",
		Priority:    "High",
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Apollo", created.Title)
	assert.Equal(t, created.ID, created.ProjectID)
	assert.Equal(t, domain.KindProject, created.Type)
	assert.Equal(t, "user-1", created.CreatedBy)
	assert.Nil(t, created.LastUpdatedOn)

	got, err := f.projectSvc.GetProject(ctx, created.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, created.CreatedOn.String(), got.CreatedOn.String())
}

func TestProjectService_CreateRequiresTitle(t *testing.T) {
	f := newFixture(t)

	_, err := f.projectSvc.CreateProject(context.Background(), domain.CreateProjectRequest{}, "user-1")
	require.Error(t, err)
	assert.True(t, domain.IsErrorType(err, domain.ValidationError))
}

func TestProjectService_GetMissingEchoesKey(t *testing.T) {
	f := newFixture(t)

	_, err := f.projectSvc.GetProject(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, "PROJECT_NOT_FOUND", errorCode(err))
	assert.Equal(t, "nope", errorDetails(err)["id"])
	assert.Equal(t, "nope", errorDetails(err)["partitionKey"])
}

func TestProjectService_ListOrderedByTitle(t *testing.T) {
	f := newFixture(t)
	f.project(t, "Gemini", "u")
	f.project(t, "Apollo", "u")
	f.project(t, "Mercury", "u")

	projects, err := f.projectSvc.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, []string{"Apollo", "Gemini", "Mercury"},
		[]string{projects[0].Title, projects[1].Title, projects[2].Title})
}

func TestProjectService_UpdateMergesAndStamps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	project, err := f.projectSvc.CreateProject(ctx, domain.CreateProjectRequest{
		Title:       "Apollo",
		Description: "Moon",
		Priority:    "High",
	}, "creator")
	require.NoError(t, err)

	priority := "Low"
	updated, err := f.projectSvc.UpdateProject(ctx, project.ProjectID, domain.UpdateProjectRequest{
		Priority: &priority,
	}, "editor")
	require.NoError(t, err)
	assert.Equal(t, "Apollo", updated.Title)
	assert.Equal(t, "Moon", updated.Description)
	assert.Equal(t, "Low", updated.Priority)
	assert.Equal(t, "creator", updated.CreatedBy)
	require.NotNil(t, updated.LastUpdatedOn)
	require.NotNil(t, updated.LastUpdatedBy)
	assert.Equal(t, "editor", *updated.LastUpdatedBy)

	stored, err := f.projectSvc.GetProject(ctx, project.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, "Low", stored.Priority)
	assert.Equal(t, "editor", *stored.LastUpdatedBy)
}

func TestProjectService_UpdateMissing(t *testing.T) {
	f := newFixture(t)
	title := "x"

	_, err := f.projectSvc.UpdateProject(context.Background(), "nope", domain.UpdateProjectRequest{Title: &title}, "u")
	assert.True(t, domain.IsNotFound(err))
}

func TestProjectService_DeleteLeavesIssues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	project := f.project(t, "Apollo", "u")
	issue := f.issue(t, project.ProjectID, "Launch", "u")

	require.NoError(t, f.projectSvc.DeleteProject(ctx, project.ProjectID))

	_, err := f.projectSvc.GetProject(ctx, project.ProjectID)
	assert.True(t, domain.IsNotFound(err))

	orphan, err := f.issueSvc.GetIssue(ctx, project.ProjectID, issue.IssueID)
	require.NoError(t, err)
	assert.Equal(t, issue.IssueID, orphan.IssueID)

	err = f.projectSvc.DeleteProject(ctx, project.ProjectID)
	assert.True(t, domain.IsNotFound(err))
}
