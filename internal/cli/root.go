// Package cli implements the splitsync command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mmynk/splitsync/internal/config"
	"github.com/mmynk/splitsync/pkg/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	EnvFile    string
	Verbose    bool

	// Config is loaded before any subcommand runs.
	Config config.Config
}

// NewRootCommand creates the root command for the splitsync CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "splitsync",
		Short: "splitsync - shared expense ledger client",
		Long: `splitsync keeps a local view of a shared expense ledger in sync with
the ledger service and records new expenses and people against it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath, opts.EnvFile)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			opts.Config = cfg

			level := cfg.LogLevel
			if opts.Verbose {
				level = "debug"
			}
			logging.SetupWithLevel(level)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file (default $SPLITSYNC_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "path to a .env file; ignored when missing")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewAddPersonCommand(opts))
	cmd.AddCommand(NewAddExpenseCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}
