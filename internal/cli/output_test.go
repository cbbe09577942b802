package cli

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
)

func sampleProjects() []domain.Project {
	created := domain.NewTimestamp(time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC))
	return []domain.Project{
		{ID: "p1", ProjectID: "p1", Title: "Apollo", Priority: "high", CreatedOn: created, CreatedBy: "u1"},
		{ID: "p2", ProjectID: "p2", Title: "Gemini", Description: "Two, with \"quotes\"", CreatedOn: created, CreatedBy: "u1"},
	}
}

func TestRenderProjects_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderProjects(&buf, sampleProjects(), "p2", "table"))

	output := buf.String()
	assert.Contains(t, output, "Apollo")
	assert.Contains(t, output, "2025-09-01")
	assert.Contains(t, output, "*")
}

func TestRenderProjects_CSVQuotesFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderProjects(&buf, sampleProjects(), "", "csv"))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "ID", records[0][0])
	assert.Equal(t, "Two, with \"quotes\"", records[2][2])
	assert.Equal(t, "2025-09-01T12:00:00.000Z", records[1][4])
}

func TestRenderProjects_YAMLUsesAPIFieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderProjects(&buf, sampleProjects(), "", "yaml"))

	assert.Contains(t, buf.String(), "projectId: p1")
	assert.Contains(t, buf.String(), "2025-09-01T12:00:00.000Z")
}

func TestRenderIssueDetails_TableWithoutComments(t *testing.T) {
	updatedBy := "u2"
	issue := &domain.Issue{
		ID: "i1", IssueID: "i1", ProjectID: "p1", Title: "Fuel leak", Priority: "critical",
		CreatedOn: domain.Now(), CreatedBy: "u1", LastUpdatedOn: domain.NowPtr(), LastUpdatedBy: &updatedBy,
	}

	var buf bytes.Buffer
	require.NoError(t, RenderIssueDetails(&buf, issue, nil, "table"))

	output := buf.String()
	assert.Contains(t, output, "Issue: Fuel leak")
	assert.Contains(t, output, "by u2")
	assert.NotContains(t, output, "Comments:")
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "Not set", maskToken(""))
	assert.Equal(t, "*****", maskToken("short"))
	assert.Equal(t, "abcd**********wxyz", maskToken("abcd1234567890wxyz"))
}
