package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nibble",
	Short: "Bite-sized nutrition lessons with an AI tutor",
	Long: `Nibble serves short nutrition lessons generated by an LLM, caches them per
learner, quizzes the learner and keeps track of progress. Every lesson has an
offline copy, so Nibble keeps working when no model is reachable.

Run without a subcommand to open the terminal app.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, false)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides NIBBLE_DB)")
	pf.String("config", "", "Path to a YAML config file (default ./nibble.yaml if present)")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.StringP("user", "u", defaultUser(), "Learner id for local commands")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(lessonCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
