package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatYML  = "yml"
	formatCSV  = "csv"

	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// RenderProjects renders a list of projects in the specified format
func RenderProjects(w io.Writer, projects []domain.Project, defaultProjectID, format string) error {
	switch strings.ToLower(format) {
	case formatJSON:
		return renderJSON(w, projects)
	case formatYAML, formatYML:
		return renderYAML(w, projects)
	case formatCSV:
		return renderProjectsCSV(w, projects)
	default:
		return renderProjectsTable(w, projects, defaultProjectID)
	}
}

// RenderProjectDetails renders one project, with its issues when issues is not nil.
func RenderProjectDetails(w io.Writer, project *domain.Project, issues []domain.Issue, format string) error {
	switch strings.ToLower(format) {
	case formatJSON, formatYAML, formatYML:
		result := map[string]interface{}{"project": project}
		if issues != nil {
			result["issues"] = issues
		}
		if strings.ToLower(format) == formatJSON {
			return renderJSON(w, result)
		}
		return renderYAML(w, result)
	default:
		fmt.Fprintf(w, "Project: %s\n", project.Title)
		fmt.Fprintf(w, "ID: %s\n", project.ProjectID)
		fmt.Fprintf(w, "Description: %s\n", project.Description)
		if project.Priority != "" {
			fmt.Fprintf(w, "Priority: %s\n", project.Priority)
		}
		writeAudit(w, project.CreatedOn, project.CreatedBy, project.LastUpdatedOn, project.LastUpdatedBy)

		if issues != nil {
			fmt.Fprintf(w, "\nIssues:\n")
			if len(issues) == 0 {
				fmt.Fprintf(w, "No issues found\n")
				return nil
			}
			return renderIssuesTable(w, issues)
		}
		return nil
	}
}

// RenderIssues renders a list of issues in the specified format
func RenderIssues(w io.Writer, issues []domain.Issue, format string) error {
	switch strings.ToLower(format) {
	case formatJSON:
		return renderJSON(w, issues)
	case formatYAML, formatYML:
		return renderYAML(w, issues)
	case formatCSV:
		return renderIssuesCSV(w, issues)
	default:
		return renderIssuesTable(w, issues)
	}
}

// RenderIssueDetails renders one issue, with its comments when comments is not nil.
func RenderIssueDetails(w io.Writer, issue *domain.Issue, comments []domain.Comment, format string) error {
	switch strings.ToLower(format) {
	case formatJSON, formatYAML, formatYML:
		result := map[string]interface{}{"issue": issue}
		if comments != nil {
			result["comments"] = comments
		}
		if strings.ToLower(format) == formatJSON {
			return renderJSON(w, result)
		}
		return renderYAML(w, result)
	default:
		fmt.Fprintf(w, "Issue: %s\n", issue.Title)
		fmt.Fprintf(w, "ID: %s\n", issue.IssueID)
		fmt.Fprintf(w, "Project: %s\n", issue.ProjectID)
		fmt.Fprintf(w, "Priority: %s\n", issue.Priority)
		fmt.Fprintf(w, "Description: %s\n", issue.Description)
		writeAudit(w, issue.CreatedOn, issue.CreatedBy, issue.LastUpdatedOn, issue.LastUpdatedBy)

		if comments != nil {
			fmt.Fprintf(w, "\nComments:\n")
			if len(comments) == 0 {
				fmt.Fprintf(w, "No comments\n")
				return nil
			}
			return renderCommentsTable(w, comments)
		}
		return nil
	}
}

// RenderComments renders a list of comments in the specified format
func RenderComments(w io.Writer, comments []domain.Comment, format string) error {
	switch strings.ToLower(format) {
	case formatJSON:
		return renderJSON(w, comments)
	case formatYAML, formatYML:
		return renderYAML(w, comments)
	case formatCSV:
		return renderCommentsCSV(w, comments)
	default:
		return renderCommentsTable(w, comments)
	}
}

// RenderUserProfile renders the signed-in user's profile
func RenderUserProfile(w io.Writer, profile *domain.UserProfile, format string) error {
	switch strings.ToLower(format) {
	case formatJSON:
		return renderJSON(w, profile)
	case formatYAML, formatYML:
		return renderYAML(w, profile)
	default:
		fmt.Fprintf(w, "User: %s %s\n", profile.GivenName, profile.FamilyName)
		fmt.Fprintf(w, "ID: %s\n", profile.UserID)
		fmt.Fprintf(w, "Email: %s\n", profile.Email)
		fmt.Fprintf(w, "Registered: %s\n", profile.RegisteredOn.Format(dateTimeLayout))
		if profile.LastLoginOn != nil {
			fmt.Fprintf(w, "Last login: %s\n", profile.LastLoginOn.Format(dateTimeLayout))
		}
		return nil
	}
}

func writeAudit(w io.Writer, createdOn domain.Timestamp, createdBy string, updatedOn *domain.Timestamp, updatedBy *string) {
	if !createdOn.IsZero() {
		fmt.Fprintf(w, "Created: %s by %s\n", createdOn.Format(dateTimeLayout), createdBy)
	}
	if updatedOn != nil && updatedBy != nil {
		fmt.Fprintf(w, "Updated: %s by %s\n", updatedOn.Format(dateTimeLayout), *updatedBy)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func formatDate(ts domain.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(dateLayout)
}

// Table rendering functions
func renderProjectsTable(w io.Writer, projects []domain.Project, defaultProjectID string) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Title", "Priority", "Description", "Created", "Default"})

	for _, project := range projects {
		isDefault := ""
		if project.ProjectID == defaultProjectID {
			isDefault = "*"
		}

		t.AppendRow(table.Row{
			project.ProjectID,
			project.Title,
			project.Priority,
			truncate(project.Description, 50),
			formatDate(project.CreatedOn),
			isDefault,
		})
	}

	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

func renderIssuesTable(w io.Writer, issues []domain.Issue) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Project", "Title", "Priority", "Created By", "Created"})

	for _, issue := range issues {
		t.AppendRow(table.Row{
			issue.IssueID,
			issue.ProjectID,
			truncate(issue.Title, 40),
			issue.Priority,
			issue.CreatedBy,
			formatDate(issue.CreatedOn),
		})
	}

	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

func renderCommentsTable(w io.Writer, comments []domain.Comment) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Author", "Created", "Text"})

	for _, comment := range comments {
		t.AppendRow(table.Row{
			comment.ID,
			comment.CreatedBy,
			comment.CreatedOn.Format(dateTimeLayout),
			truncate(comment.Text, 60),
		})
	}

	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

func renderJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// renderYAML goes through JSON first so field names and timestamps match the API.
func renderYAML(w io.Writer, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	data, err := yaml.Marshal(generic)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// CSV rendering functions
func renderProjectsCSV(w io.Writer, projects []domain.Project) error {
	writer := csv.NewWriter(w)

	_ = writer.Write([]string{"ID", "Title", "Description", "Priority", "CreatedOn", "CreatedBy"})
	for _, project := range projects {
		_ = writer.Write([]string{
			project.ProjectID,
			project.Title,
			project.Description,
			project.Priority,
			project.CreatedOn.String(),
			project.CreatedBy,
		})
	}

	writer.Flush()
	return writer.Error()
}

func renderIssuesCSV(w io.Writer, issues []domain.Issue) error {
	writer := csv.NewWriter(w)

	_ = writer.Write([]string{"ID", "ProjectID", "Title", "Description", "Priority", "CreatedOn", "CreatedBy"})
	for _, issue := range issues {
		_ = writer.Write([]string{
			issue.IssueID,
			issue.ProjectID,
			issue.Title,
			issue.Description,
			issue.Priority,
			issue.CreatedOn.String(),
			issue.CreatedBy,
		})
	}

	writer.Flush()
	return writer.Error()
}

func renderCommentsCSV(w io.Writer, comments []domain.Comment) error {
	writer := csv.NewWriter(w)

	_ = writer.Write([]string{"ID", "ProjectID", "IssueID", "Text", "CreatedOn", "CreatedBy"})
	for _, comment := range comments {
		_ = writer.Write([]string{
			comment.ID,
			comment.ProjectID,
			comment.IssueID,
			comment.Text,
			comment.CreatedOn.String(),
			comment.CreatedBy,
		})
	}

	writer.Flush()
	return writer.Error()
}

// Success prints a success message with a checkmark
func Success(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "✓ "+format+"\n", args...)
}

// Warning prints a warning message
func Warning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "⚠ "+format+"\n", args...)
}
