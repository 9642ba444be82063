package cli

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitsync/internal/controller"
	"github.com/mmynk/splitsync/internal/service"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	Server string
	Token  string
	Format string // "text" | "json"
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Refresh once and print the dashboard",
		Long: `Fetch expenses, people, balances and settlements and print the dashboard.

By default the ledger service is contacted directly. With --server the
snapshot is read from a running "splitsync serve" instead.

Example:
  splitsync status
  splitsync status --server http://localhost:8090 --token $TOKEN`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Server, "server", "", "base URL of a running splitsync serve")
	cmd.Flags().StringVar(&opts.Token, "token", "", "view token for --server")
	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	return cmd
}

func runStatus(cmd *cobra.Command, opts *StatusOptions) error {
	if opts.Format != "text" && opts.Format != "json" {
		return WrapExitError(ExitCommandError, "invalid format", fmt.Errorf("%q: must be text or json", opts.Format))
	}

	var view *service.SnapshotResponse
	if opts.Server != "" {
		client := service.NewDashboardClient(http.DefaultClient, opts.Server, opts.Token)
		resp, err := client.Refresh(cmd.Context())
		if err != nil {
			return WrapExitError(ExitFailure, "refresh failed", err)
		}
		view = resp
	} else {
		ctl := controller.New(opts.Config, nil)
		snap, err := ctl.Refresh.RefreshAll(cmd.Context())
		if err != nil {
			return WrapExitError(ExitFailure, "refresh failed", err)
		}
		view = &service.SnapshotResponse{Snapshot: snap, Summary: ctl.Summarize(snap)}
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	return RenderDashboard(out, view.Snapshot, view.Summary.ShareName, opts.Config.Currency)
}
