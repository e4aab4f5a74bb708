package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/nibble/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := setup(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.close()

		if port, _ := cmd.Flags().GetString("port"); port != "" {
			e.cfg.Server.Port = port
		}

		health := []api.Pinger{e.store}
		if e.redis != nil {
			health = append(health, e.redis)
		}
		srv := api.New(api.Deps{
			Lessons:  e.lessons,
			Progress: e.progress,
			Tutor:    e.tutor,
			Health:   health,
			Log:      e.log,
		}, e.cfg.Server, e.cfg.Auth.JWTSecret)

		if e.cfg.Auth.JWTSecret == "" {
			e.log.Warn("auth.jwt_secret is empty, user routes are unauthenticated")
		}
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("port", "", "Listen port (overrides server.port)")
}
