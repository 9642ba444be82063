package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation id to the ledger service.
const RequestIDHeader = "X-Request-ID"

// LoggingTransport is an http.RoundTripper that tags every outbound request
// with a request id and logs its method, path, status and duration.
type LoggingTransport struct {
	base http.RoundTripper
}

// NewLoggingTransport wraps base. A nil base uses http.DefaultTransport.
func NewLoggingTransport(base http.RoundTripper) *LoggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &LoggingTransport{base: base}
}

// RoundTrip implements http.RoundTripper.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
		// RoundTrippers must not modify the caller's request
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, requestID)
	}

	resp, err := t.base.RoundTrip(req)

	duration := time.Since(start).Milliseconds()
	if err != nil {
		slog.Warn("Ledger request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"request_id", requestID,
			"error", err,
			"duration_ms", duration,
		)
		return nil, err
	}

	slog.Debug("Ledger request completed",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration_ms", duration,
	)
	return resp, nil
}
