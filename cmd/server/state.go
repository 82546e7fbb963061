package main

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/session"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/storage"
)

func newStateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the saved desktop as YAML",
		Long: `Print the desktop saved in the database as YAML.

When nothing has been saved yet, or the saved data is unreadable, the
default desktop (a single Home workspace) is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.loadConfig()
			ctx := cmd.Context()

			kv, err := storage.Open(ctx, cfg.Storage.Path)
			if err != nil {
				return err
			}
			defer kv.Close()

			bridge := session.NewBridge(kv, session.WithCompression(cfg.Storage.Compress))
			state, outcome, err := bridge.Load(ctx)
			if err != nil {
				return err
			}
			if outcome.Corrupt != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", outcome.Corrupt)
			}

			out, err := yaml.Marshal(state)
			if err != nil {
				return fmt.Errorf("failed to encode state: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
