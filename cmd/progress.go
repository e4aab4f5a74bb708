package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/nibble/internal/llm"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show learner progress and recent activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		e, err := setup(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.close()

		ctx, user := cmd.Context(), userFlag(cmd)
		sum, err := e.progress.Summary(ctx, user)
		if err != nil {
			return err
		}
		acts, err := e.progress.RecentActivities(ctx, user, limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, map[string]any{"summary": sum, "activities": acts})
		}

		fmt.Fprintf(out, "%s: %d of %d lessons (%d%%)\n", user, sum.Completed, sum.Total, sum.Percent)
		if sum.NextLesson != nil {
			fmt.Fprintf(out, "Up next: %s. %s\n", sum.NextLesson.ID, sum.NextLesson.Title)
		}
		if len(acts) == 0 {
			return nil
		}
		fmt.Fprintln(out)
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "WHEN\tKIND\tTITLE\tDETAIL")
		for _, a := range acts {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				a.Timestamp.Local().Format("2006-01-02 15:04"), a.Kind, truncate(a.Title, 28), a.Subtitle)
		}
		return tw.Flush()
	},
}

var progressCompleteCmd = &cobra.Command{
	Use:   "complete <lesson-id>",
	Short: "Mark a lesson complete",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.close()

		ctx := llm.WithUser(cmd.Context(), userFlag(cmd))
		p, err := e.progress.MarkLessonComplete(ctx, userFlag(cmd), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d lessons complete.\n", p.LessonsCompleted, p.TotalLessons)
		return nil
	},
}

var progressNameCmd = &cobra.Command{
	Use:   "name <display-name>",
	Short: "Set the learner's display name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.close()

		p, err := e.progress.SetName(cmd.Context(), userFlag(cmd), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Hello, %s!\n", p.Name)
		return nil
	},
}

func init() {
	progressCmd.Flags().IntP("limit", "n", 10, "Number of activities to show")
	progressCmd.Flags().Bool("json", false, "Print as JSON")

	progressCmd.AddCommand(progressCompleteCmd)
	progressCmd.AddCommand(progressNameCmd)
}
