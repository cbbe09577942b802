package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(commentCmd)
	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentDeleteCmd)

	for _, cmd := range []*cobra.Command{commentListCmd, commentAddCmd, commentDeleteCmd} {
		cmd.Flags().String("project", "", "Project ID (overrides default)")
	}
}

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Issue comment commands",
	Long:  `Read and write the comments on an issue.`,
}

var commentListCmd = &cobra.Command{
	Use:     "list [issue-id]",
	Short:   "List the comments of an issue",
	Long:    `List the comments of an issue, oldest first.`,
	Aliases: []string{"ls"},
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

		comments, err := client.GetComments(cmd.Context(), projectID, args[0])
		if err != nil {
			return fmt.Errorf("failed to get comments: %w", err)
		}

		if len(comments) == 0 && format() == "table" {
			fmt.Fprintln(out(cmd), "No comments")
			return nil
		}

		return RenderComments(out(cmd), comments, format())
	},
}

var commentAddCmd = &cobra.Command{
	Use:   "add [issue-id] [text...]",
	Short: "Comment on an issue",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, client, err := currentClient()
		if err != nil {
			return err
		}

		projectID, err := resolveProject(cmd, profile)
		if err != nil {
			return err
		}

		comment, err := client.AddComment(cmd.Context(), projectID, args[0], strings.Join(args[1:], " "))
		if err != nil {
			return fmt.Errorf("failed to add comment: %w", err)
		}

		Success(out(cmd), "Comment added")
		fmt.Fprintf(out(cmd), "  ID: %s\n", comment.ID)
		return nil
	},
}

var commentDeleteCmd = &cobra.Command{
	Use:     "delete [issue-id] [comment-id]",
	Short:   "Delete one of your comments",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, client, err := currentClient()
		if err != nil {
			return err
		}

		projectID, err := resolveProject(cmd, profile)
		if err != nil {
			return err
		}

		if err := client.DeleteComment(cmd.Context(), projectID, args[0], args[1]); err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}

		Success(out(cmd), "Comment '%s' deleted", args[1])
		return nil
	},
}
