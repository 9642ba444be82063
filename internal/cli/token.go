package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitsync/internal/auth"
	"github.com/mmynk/splitsync/internal/service"
)

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		viewer  string
		canEdit bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a view API token",
		Long: `Issue a bearer token for the view API served by "splitsync serve".
Requires VIEW_API_SECRET (or view_secret in the config file).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rootOpts.Config.ViewSecret == "" {
				return WrapExitError(ExitCommandError, "cannot issue token", errors.New("view secret is not configured"))
			}
			token, err := auth.NewJWTManager(rootOpts.Config.ViewSecret, service.TokenTTL).Generate(viewer, canEdit)
			if err != nil {
				return WrapExitError(ExitFailure, "cannot issue token", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&viewer, "viewer", "dashboard", "name recorded in the token")
	cmd.Flags().BoolVar(&canEdit, "edit", false, "allow the token to add expenses and people")

	return cmd
}
