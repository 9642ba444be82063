package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitsync/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ViewerKey is the context key for the authenticated viewer name.
const ViewerKey contextKey = "viewer"

var errReadOnly = errors.New("token does not allow changes")

// GetViewer extracts the viewer name from the context.
// Returns empty string if not found.
func GetViewer(ctx context.Context) string {
	viewer, _ := ctx.Value(ViewerKey).(string)
	return viewer
}

// RequireAuth returns an interceptor that validates bearer tokens on every
// unary and streaming call. Procedures listed in editProcedures additionally
// require a token with edit rights.
func RequireAuth(jwtManager *auth.JWTManager, editProcedures ...string) connect.Interceptor {
	edits := make(map[string]bool, len(editProcedures))
	for _, p := range editProcedures {
		edits[p] = true
	}
	return &authInterceptor{jwtManager: jwtManager, edits: edits}
}

type authInterceptor struct {
	jwtManager *auth.JWTManager
	edits      map[string]bool
}

func (i *authInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		ctx, err := i.authorize(ctx, req.Spec().Procedure, req.Header())
		if err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

func (i *authInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (i *authInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		ctx, err := i.authorize(ctx, conn.Spec().Procedure, conn.RequestHeader())
		if err != nil {
			return err
		}
		return next(ctx, conn)
	}
}

// authorize validates the Authorization header and adds the viewer to ctx.
func (i *authInterceptor) authorize(ctx context.Context, procedure string, header http.Header) (context.Context, error) {
	authHeader := header.Get("Authorization")
	if authHeader == "" {
		return ctx, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	// Parse Bearer token
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ctx, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
	}

	claims, err := i.jwtManager.Validate(parts[1])
	if err != nil {
		return ctx, connect.NewError(connect.CodeUnauthenticated, err)
	}
	if i.edits[procedure] && !claims.CanEdit {
		return ctx, connect.NewError(connect.CodePermissionDenied, errReadOnly)
	}

	return context.WithValue(ctx, ViewerKey, claims.Viewer), nil
}
