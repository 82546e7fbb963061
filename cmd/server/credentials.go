package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/server"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/storage"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/providers/llm"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/providers/settings"
)

func newCredentialsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage provider API keys",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Import provider keys from a TOML file",
		Long: `Import provider keys from a TOML file with an [apiKeys] table:

  [apiKeys]
  anthropic = "sk-ant-..."
  openai = "sk-..."

Keys are sealed when SETTINGS_PASSPHRASE is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.loadConfig()
			ctx := cmd.Context()
			logger := server.NewLogger(cfg.Logging)
			defer logger.Sync()

			kv, err := storage.Open(ctx, cfg.Storage.Path)
			if err != nil {
				return err
			}
			defer kv.Close()

			store, err := settings.Open(ctx, kv, cfg.Settings.Passphrase, logger.Component("settings"))
			if err != nil {
				return err
			}
			n, err := store.ImportFile(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d key(s)\n", n)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show which providers have a key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.loadConfig()
			ctx := cmd.Context()

			kv, err := storage.Open(ctx, cfg.Storage.Path)
			if err != nil {
				return err
			}
			defer kv.Close()

			store, err := settings.Open(ctx, kv, cfg.Settings.Passphrase, nil)
			if err != nil {
				return err
			}
			masked := store.Masked()
			have := store.Providers()
			for _, provider := range llm.Families() {
				if have[provider] {
					fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", provider, masked[provider])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%-10s -\n", provider)
				}
			}
			return nil
		},
	})

	return cmd
}
