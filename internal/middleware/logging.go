package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// SnapshotVersioner is implemented by responses that carry a snapshot.
type SnapshotVersioner interface {
	SnapshotVersion() uint64
}

// MutationOutcomer is implemented by responses to mutation commands.
type MutationOutcomer interface {
	MutationOutcome() string
}

// LoggingInterceptor returns a Connect interceptor that logs every view API
// call with its procedure, viewer and duration. Successful calls also log the
// snapshot version they served and, for commands, the mutation outcome.
// Streams are logged once when they end, with the number of snapshots sent.
func LoggingInterceptor() connect.Interceptor {
	return loggingInterceptor{}
}

type loggingInterceptor struct{}

func (loggingInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		start := time.Now()
		attrs := []any{
			"procedure", req.Spec().Procedure,
			"viewer", GetViewer(ctx), // empty when auth is disabled
		}

		resp, err := next(ctx, req)

		attrs = append(attrs, "duration_ms", time.Since(start).Milliseconds())
		if err != nil {
			logCallError(attrs, err)
			return resp, err
		}
		if resp != nil {
			attrs = append(attrs, responseAttrs(resp.Any())...)
		}
		slog.Info("RPC ok", attrs...)
		return resp, nil
	}
}

func (loggingInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (loggingInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		start := time.Now()
		counted := &countingConn{StreamingHandlerConn: conn}

		err := next(ctx, counted)

		attrs := []any{
			"procedure", conn.Spec().Procedure,
			"viewer", GetViewer(ctx),
			"duration_ms", time.Since(start).Milliseconds(),
			"sent", counted.sent,
			"last_version", counted.version,
		}
		// A watcher going away is the normal end of a stream.
		if err != nil && !errors.Is(err, context.Canceled) && connect.CodeOf(err) != connect.CodeCanceled {
			logCallError(attrs, err)
			return err
		}
		slog.Info("Stream closed", attrs...)
		return err
	}
}

func logCallError(attrs []any, err error) {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		slog.Warn("RPC error", append(attrs, "code", connectErr.Code(), "error", connectErr.Message())...)
		return
	}
	slog.Error("RPC error", append(attrs, "error", err)...)
}

func responseAttrs(msg any) []any {
	var attrs []any
	if v, ok := msg.(SnapshotVersioner); ok {
		attrs = append(attrs, "snapshot_version", v.SnapshotVersion())
	}
	if m, ok := msg.(MutationOutcomer); ok {
		attrs = append(attrs, "outcome", m.MutationOutcome())
	}
	return attrs
}

// countingConn records what a server stream sent.
type countingConn struct {
	connect.StreamingHandlerConn
	sent    int
	version uint64
}

func (c *countingConn) Send(msg any) error {
	if err := c.StreamingHandlerConn.Send(msg); err != nil {
		return err
	}
	c.sent++
	if v, ok := msg.(SnapshotVersioner); ok {
		c.version = v.SnapshotVersion()
	}
	return nil
}
