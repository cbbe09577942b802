package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
)

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	projectCmd.AddCommand(projectSelectCmd)

	// Project create flags
	projectCreateCmd.Flags().StringP("description", "d", "", "Project description")
	projectCreateCmd.Flags().StringP("priority", "p", "", "Project priority")
	projectCreateCmd.Flags().BoolP("select", "s", false, "Select as default project after creation")

	// Project update flags
	projectUpdateCmd.Flags().StringP("title", "t", "", "New title")
	projectUpdateCmd.Flags().StringP("description", "d", "", "New description")
	projectUpdateCmd.Flags().StringP("priority", "p", "", "New priority")

	// Project show flags
	projectShowCmd.Flags().BoolP("issues", "i", false, "Include the project's issues")
}

var projectCmd = &cobra.Command{
	Use:     "project",
	Short:   "Project management commands",
	Long:    `Manage projects in Simple Easy Issues.`,
	Aliases: []string{"proj", "p"},
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all projects",
	Long:    `List all projects, ordered by title.`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, client, err := currentClient()
		if err != nil {
			return err
		}

		projects, err := client.GetProjects(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get projects: %w", err)
		}

		if len(projects) == 0 && format() == "table" {
			fmt.Fprintln(out(cmd), "No projects found")
			return nil
		}

		return RenderProjects(out(cmd), projects, profile.ProjectID, format())
	},
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new project",
	Long:  `Create a new project with the specified title.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, client, err := currentClient()
		if err != nil {
			return err
		}

		description, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetString("priority")
		selectProject, _ := cmd.Flags().GetBool("select")

		project, err := client.CreateProject(cmd.Context(), &domain.CreateProjectRequest{
			Title:       args[0],
			Description: description,
			Priority:    priority,
		})
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		w := out(cmd)
		Success(w, "Project '%s' created successfully", project.Title)
		fmt.Fprintf(w, "  ID: %s\n", project.ProjectID)

		if selectProject {
			profile.ProjectID = project.ProjectID
			if err := AddProfile(*profile); err != nil {
				Warning(w, "Failed to set as default project: %v", err)
			} else {
				Success(w, "Project selected as default")
			}
		}

		return nil
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show [project-id]",
	Short: "Show project details",
	Long:  `Show detailed information about a project, by default the selected one.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, client, err := currentClient()
		if err != nil {
			return err
		}

		projectID := profile.ProjectID
		if len(args) > 0 {
			projectID = args[0]
		}
		if projectID == "" {
			return fmt.Errorf("no project specified and no default project set")
		}

		project, err := client.GetProject(cmd.Context(), projectID)
		if err != nil {
			return fmt.Errorf("failed to get project: %w", err)
		}

		var issues []domain.Issue
		if includeIssues, _ := cmd.Flags().GetBool("issues"); includeIssues {
			issues, err = client.GetIssues(cmd.Context(), projectID)
			if err != nil {
				return fmt.Errorf("failed to get issues: %w", err)
			}
			if issues == nil {
				issues = []domain.Issue{}
			}
		}

		return RenderProjectDetails(out(cmd), project, issues, format())
	},
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update [project-id]",
	Short: "Update a project",
	Long:  `Update the title, description or priority of a project. Unset flags keep their stored value.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := currentClient()
		if err != nil {
			return err
		}

		req := &domain.UpdateProjectRequest{
			Title:       changedString(cmd, "title"),
			Description: changedString(cmd, "description"),
			Priority:    changedString(cmd, "priority"),
		}
		if req.Title == nil && req.Description == nil && req.Priority == nil {
			return fmt.Errorf("nothing to update; pass --title, --description or --priority")
		}

		project, err := client.UpdateProject(cmd.Context(), args[0], req)
		if err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}

		Success(out(cmd), "Project '%s' updated", project.Title)
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:     "delete [project-id]",
	Short:   "Delete a project",
	Long:    `Delete a project. Its issues are not removed.`,
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, client, err := currentClient()
		if err != nil {
			return err
		}

		if err := client.DeleteProject(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}

		w := out(cmd)
		Success(w, "Project '%s' deleted", args[0])

		if profile.ProjectID == args[0] {
			profile.ProjectID = ""
			if err := AddProfile(*profile); err != nil {
				Warning(w, "Failed to clear default project: %v", err)
			}
		}
		return nil
	},
}

var projectSelectCmd = &cobra.Command{
	Use:     "select [project-id]",
	Short:   "Select a project as default",
	Long:    `Set the specified project as default for issue and comment operations.`,
	Aliases: []string{"switch", "use"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, client, err := currentClient()
		if err != nil {
			return err
		}

		// Verify project exists
		project, err := client.GetProject(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get project: %w", err)
		}

		profile.ProjectID = project.ProjectID
		if err := AddProfile(*profile); err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}

		Success(out(cmd), "Project '%s' selected as default", project.Title)
		return nil
	},
}

// changedString returns the flag value only when the user set it.
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	value, _ := cmd.Flags().GetString(name)
	return &value
}
