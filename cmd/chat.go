package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/nibble/internal/llm"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Talk to the nutrition tutor",
	Long: `Opens the tutor chat. With a message argument, asks a single question and
prints the reply instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runTUI(cmd, true)
		}

		e, err := setup(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.close()

		ctx := llm.WithUser(cmd.Context(), userFlag(cmd))
		reply, err := e.tutor.Reply(ctx, nil, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
		return nil
	},
}
