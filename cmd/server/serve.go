package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the desktop API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.loadConfig()
			if port != "" {
				cfg.Server.Port = port
			}

			// Handle graceful shutdown
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := server.NewServer(ctx, cfg)
			if err != nil {
				return err
			}
			defer srv.Close()

			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Server port (overrides PORT)")
	return cmd
}
