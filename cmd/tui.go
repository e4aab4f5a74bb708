package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/nibble/internal/app"
	"github.com/abhisek/nibble/internal/screens"
)

// runTUI opens the store, builds services, and launches the terminal app.
func runTUI(cmd *cobra.Command, chatOnly bool) error {
	e, err := setup(cmd, envOptions{quiet: true})
	if err != nil {
		return err
	}
	defer e.close()

	return app.Run(app.Options{
		Services: screens.Services{
			UserID:   userFlag(cmd),
			Lessons:  e.lessons,
			Progress: e.progress,
			Tutor:    e.tutor,
		},
		ChatOnly: chatOnly,
	})
}
