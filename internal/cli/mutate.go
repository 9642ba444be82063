package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitsync/internal/commands"
	"github.com/mmynk/splitsync/internal/controller"
)

// NewAddPersonCommand creates the add-person command.
func NewAddPersonCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add-person <name>",
		Short: "Register a participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			ctl := controller.New(rootOpts.Config, nil)
			res, err := ctl.Commands.AddPerson(cmd.Context(), name)
			if err != nil {
				return mutationError("failed to add person", err)
			}
			out := cmd.OutOrStdout()
			if res.Skipped {
				fmt.Fprintln(out, "Nothing added: name is blank")
				return nil
			}
			warnStale(res)
			fmt.Fprintf(out, "Added %s (%d people)\n", name, len(res.Snapshot.People))
			return nil
		},
	}
}

// AddExpenseOptions holds flags for the add-expense command.
type AddExpenseOptions struct {
	*RootOptions
	Title        string
	Amount       string
	PaidBy       int64
	Participants string
}

// NewAddExpenseCommand creates the add-expense command.
func NewAddExpenseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddExpenseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add-expense",
		Short: "Record an expense",
		Long: `Record an expense against the ledger.

The payer defaults to the first person and the participants default to
everyone. An empty title is recorded as "New Expense".

Example:
  splitsync add-expense --title Dinner --amount 90
  splitsync add-expense --amount 20 --paid-by 2 --participants 2,3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddExpense(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "expense title")
	cmd.Flags().StringVar(&opts.Amount, "amount", "", "amount paid (required)")
	cmd.Flags().Int64Var(&opts.PaidBy, "paid-by", 0, "payer id (default: first person)")
	cmd.Flags().StringVar(&opts.Participants, "participants", "", "comma-separated participant ids (default: everyone)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runAddExpense(cmd *cobra.Command, opts *AddExpenseOptions) error {
	ctx := cmd.Context()
	ctl := controller.New(opts.Config, nil)

	// Defaults are resolved against a fresh snapshot.
	if err := ctl.Start(ctx); err != nil {
		return WrapExitError(ExitFailure, "refresh failed", err)
	}

	ctl.Commands.SetTitle(opts.Title)
	ctl.Commands.SetAmount(opts.Amount)
	if cmd.Flags().Changed("paid-by") {
		ctl.Commands.SetPaidBy(opts.PaidBy)
	}
	ctl.Commands.SetParticipants(opts.Participants)

	res, err := ctl.Commands.AddExpense(ctx)
	if err != nil {
		return mutationError("failed to add expense", err)
	}
	warnStale(res)

	summary := ctl.Summarize(res.Snapshot)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Recorded expense (%d total)\n", len(res.Snapshot.Expenses))
	fmt.Fprintf(out, "Total expenses: %s\n", FormatMoney(summary.Total, opts.Config.Currency))
	return nil
}

func mutationError(message string, err error) error {
	var invalid *commands.ValidationError
	if errors.As(err, &invalid) {
		return WrapExitError(ExitCommandError, message, err)
	}
	return WrapExitError(ExitFailure, message, err)
}

func warnStale(res commands.Result) {
	if res.RefreshErr != nil {
		slog.Warn("Change saved but refresh failed; output may be stale", "error", res.RefreshErr)
	}
}
