package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/splitsync/internal/commands"
	"github.com/mmynk/splitsync/internal/ledger"
	"github.com/mmynk/splitsync/internal/refresh"
)

// toConnectError maps controller errors onto Connect codes.
func toConnectError(err error) error {
	var (
		invalid  *commands.ValidationError
		rejected *ledger.ValidationError
		stale    *refresh.RefreshError
	)
	switch {
	case errors.As(err, &invalid):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.As(err, &rejected):
		// Keep the server's message as-is for display.
		return connect.NewError(connect.CodeFailedPrecondition, errors.New(rejected.Message))
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.As(err, &stale), errors.Is(err, ledger.ErrTransport), errors.Is(err, ledger.ErrProtocol):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
