package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
)

func init() {
	rootCmd.AddCommand(issueCmd)
	issueCmd.AddCommand(issueListCmd)
	issueCmd.AddCommand(issueCreateCmd)
	issueCmd.AddCommand(issueShowCmd)
	issueCmd.AddCommand(issueUpdateCmd)
	issueCmd.AddCommand(issueDeleteCmd)

	for _, cmd := range []*cobra.Command{issueListCmd, issueCreateCmd, issueShowCmd, issueUpdateCmd, issueDeleteCmd} {
		cmd.Flags().String("project", "", "Project ID (overrides default)")
	}

	issueListCmd.Flags().BoolP("all", "a", false, "List issues of every project")

	issueCreateCmd.Flags().StringP("description", "d", "", "Issue description")
	issueCreateCmd.Flags().StringP("priority", "p", "", "Issue priority")

	issueShowCmd.Flags().BoolP("comments", "c", false, "Include the issue's comments")

	issueUpdateCmd.Flags().StringP("title", "t", "", "New title")
	issueUpdateCmd.Flags().StringP("description", "d", "", "New description")
	issueUpdateCmd.Flags().StringP("priority", "p", "", "New priority")
}

var issueCmd = &cobra.Command{
	Use:     "issue",
	Short:   "Issue management commands",
	Long:    `Manage issues within projects.`,
	Aliases: []string{"i"},
}

var issueListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List issues",
	Long:    `List the issues of the current or specified project, newest first.`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, client, err := currentClient()
		if err != nil {
			return err
		}

		projectID := ""
		if all, _ := cmd.Flags().GetBool("all"); !all {
			projectID, err = resolveProject(cmd, profile)
			if err != nil {
				return err
			}
		}

		issues, err := client.GetIssues(cmd.Context(), projectID)
		if err != nil {
			return fmt.Errorf("failed to get issues: %w", err)
		}

		if len(issues) == 0 && format() == "table" {
			fmt.Fprintln(out(cmd), "No issues found")
			return nil
		}

		return RenderIssues(out(cmd), issues, format())
	},
}

var issueCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new issue",
	Long:  `Create a new issue with the specified title in the current or specified project.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, client, err := currentClient()
		if err != nil {
			return err
		}

		projectID, err := resolveProject(cmd, profile)
		if err != nil {
			return err
		}

		description, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetString("priority")

		issue, err := client.CreateIssue(cmd.Context(), projectID, &domain.CreateIssueRequest{
			Title:       args[0],
			Description: description,
			Priority:    priority,
		})
		if err != nil {
			return fmt.Errorf("failed to create issue: %w", err)
		}

		w := out(cmd)
		Success(w, "Issue '%s' created successfully", issue.Title)
		fmt.Fprintf(w, "  ID: %s\n", issue.IssueID)
		if issue.Priority != "" {
			fmt.Fprintf(w, "  Priority: %s\n", issue.Priority)
		}
		return nil
	},
}

var issueShowCmd = &cobra.Command{
	Use:   "show [issue-id]",
	Short: "Show issue details",
	Long:  `Show detailed information about an issue.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, client, err := currentClient()
		if err != nil {
			return err
		}

		projectID, err := resolveProject(cmd, profile)
		if err != nil {
			return err
		}

		issue, err := client.GetIssue(cmd.Context(), projectID, args[0])
		if err != nil {
			return fmt.Errorf("failed to get issue: %w", err)
		}

		var comments []domain.Comment
		if include, _ := cmd.Flags().GetBool("comments"); include {
			comments, err = client.GetComments(cmd.Context(), projectID, issue.IssueID)
			if err != nil {
				return fmt.Errorf("failed to get comments: %w", err)
			}
			if comments == nil {
				comments = []domain.Comment{}
			}
		}

		return RenderIssueDetails(out(cmd), issue, comments, format())
	},
}

var issueUpdateCmd = &cobra.Command{
	Use:   "update [issue-id]",
	Short: "Update an issue",
	Long:  `Update the title, description or priority of an issue. Unset flags keep their stored value.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, client, err := currentClient()
		if err != nil {
			return err
		}

		projectID, err := resolveProject(cmd, profile)
		if err != nil {
			return err
		}

		req := &domain.UpdateIssueRequest{
			Title:       changedString(cmd, "title"),
			Description: changedString(cmd, "description"),
			Priority:    changedString(cmd, "priority"),
		}
		if req.Title == nil && req.Description == nil && req.Priority == nil {
			return fmt.Errorf("nothing to update; pass --title, --description or --priority")
		}

		issue, err := client.UpdateIssue(cmd.Context(), projectID, args[0], req)
		if err != nil {
			return fmt.Errorf("failed to update issue: %w", err)
		}

		Success(out(cmd), "Issue '%s' updated", issue.Title)
		return nil
	},
}

var issueDeleteCmd = &cobra.Command{
	Use:     "delete [issue-id]",
	Short:   "Delete an issue",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, client, err := currentClient()
		if err != nil {
			return err
		}

		projectID, err := resolveProject(cmd, profile)
		if err != nil {
			return err
		}

		if err := client.DeleteIssue(cmd.Context(), projectID, args[0]); err != nil {
			return fmt.Errorf("failed to delete issue: %w", err)
		}

		Success(out(cmd), "Issue '%s' deleted", args[0])
		return nil
	},
}
