package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete a learner's cached lessons and progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		cacheOnly, _ := cmd.Flags().GetBool("cache-only")
		user := userFlag(cmd)
		if !yes {
			return fmt.Errorf("this deletes all data for %q; re-run with --yes to confirm", user)
		}

		e, err := setup(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.close()

		ctx := cmd.Context()
		n, err := e.cache.DeleteAll(ctx, user)
		if err != nil {
			return fmt.Errorf("clear lesson cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached lessons.\n", n)

		if cacheOnly {
			return nil
		}
		if err := e.store.ProgressRepo().DeleteUser(ctx, user); err != nil {
			return fmt.Errorf("delete progress: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed progress for %s.\n", user)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
	resetCmd.Flags().Bool("cache-only", false, "Only clear cached lessons, keep progress")
}
