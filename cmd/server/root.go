package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apihttp "github.com/GriffinCanCode/AgentDesk/backend/internal/api/http"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/config"
)

type rootOptions struct {
	dbPath string
	dev    bool
}

// newRootCmd builds the command tree. serve runs when no subcommand is given.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "agentdesk",
		Short: "Multi-workspace chat desktop backend",
		Long: `AgentDesk serves a desktop of chat windows grouped into workspaces.

Windows can be dragged, resized and stacked; every change is written to a
local store so the desktop comes back as it was after a restart. Each chat
window talks to a hosted LLM provider chosen per window.

Quick Start:
  agentdesk serve                        # Serve the API on :8000
  agentdesk state                        # Print the saved desktop
  agentdesk credentials import keys.toml # Load provider keys`,
		Version:       apihttp.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to the desktop database (overrides DESKTOP_DB_PATH)")
	root.PersistentFlags().BoolVar(&opts.dev, "dev", false, "Development mode (colored logs, debug level)")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	serve := newServeCmd(opts)
	root.AddCommand(serve, newStateCmd(opts), newCredentialsCmd(opts))
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

// loadConfig reads the environment and applies persistent flag overrides
func (o *rootOptions) loadConfig() *config.Config {
	cfg := config.LoadOrDefault()
	if o.dbPath != "" {
		cfg.Storage.Path = o.dbPath
	}
	if o.dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	return cfg
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
