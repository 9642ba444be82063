// Package ledger provides a typed HTTP+JSON client for the remote ledger service.
//
// Each method issues exactly one request and reports failure through the
// package's error types. The client never retries; callers decide policy.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsync/internal/middleware"
	"github.com/mmynk/splitsync/internal/models"
)

// Resource paths relative to the base URL.
const (
	PathExpenses    = "/expenses"
	PathPeople      = "/people"
	PathBalances    = "/balances"
	PathSettlements = "/settle"
)

// maxErrorBody bounds how much of a failed response is read into an error.
const maxErrorBody = 64 << 10

// ExpenseRequest is the payload for recording an expense.
type ExpenseRequest struct {
	Title    string
	Amount   decimal.Decimal
	PaidByID int64
	// ParticipantIDs is the comma-joined id list, sent as-is.
	ParticipantIDs string
}

// expenseBody is the wire form of ExpenseRequest. The amount is sent as a
// JSON number rather than decimal's default quoted string.
type expenseBody struct {
	Title          string      `json:"title"`
	Amount         json.Number `json:"amount"`
	PaidByID       int64       `json:"paidById"`
	ParticipantIDs string      `json:"participantIds"`
}

type personBody struct {
	Name string `json:"name"`
}

// Client talks to the ledger service at a fixed base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a Client for baseURL, e.g. "http://localhost:8085/expensebackend/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: middleware.NewLoggingTransport(nil),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchExpenses returns every expense in service order.
func (c *Client) FetchExpenses(ctx context.Context) ([]models.Expense, error) {
	var out []models.Expense
	if err := c.getJSON(ctx, "fetch expenses", PathExpenses, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Expense{}
	}
	return out, nil
}

// FetchPeople returns every person in service order.
func (c *Client) FetchPeople(ctx context.Context) ([]models.Person, error) {
	var out []models.Person
	if err := c.getJSON(ctx, "fetch people", PathPeople, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Person{}
	}
	return out, nil
}

// FetchBalances returns the net balance per display name.
func (c *Client) FetchBalances(ctx context.Context) (models.BalanceMap, error) {
	var out models.BalanceMap
	if err := c.getJSON(ctx, "fetch balances", PathBalances, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = models.BalanceMap{}
	}
	return out, nil
}

// FetchSettlements returns the suggested settlement plan in service order.
func (c *Client) FetchSettlements(ctx context.Context) ([]models.Settlement, error) {
	var out []models.Settlement
	if err := c.getJSON(ctx, "fetch settlements", PathSettlements, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Settlement{}
	}
	return out, nil
}

// CreateExpense records a new expense.
func (c *Client) CreateExpense(ctx context.Context, req ExpenseRequest) error {
	body := expenseBody{
		Title:          req.Title,
		Amount:         json.Number(req.Amount.String()),
		PaidByID:       req.PaidByID,
		ParticipantIDs: req.ParticipantIDs,
	}
	return c.postJSON(ctx, "create expense", PathExpenses, body, "Failed to add expense")
}

// CreatePerson registers a new participant.
func (c *Client) CreatePerson(ctx context.Context, name string) error {
	return c.postJSON(ctx, "create person", PathPeople, personBody{Name: name}, "Failed to add person")
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return &ProtocolError{Op: op, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// An empty body is treated like JSON null.
		if errors.Is(err, io.EOF) {
			return nil
		}
		if ctx.Err() != nil {
			return &TransportError{Op: op, Err: err}
		}
		return &ProtocolError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, body any, fallback string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if success(resp.StatusCode) {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}

	text, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	msg := string(text)
	if msg == "" {
		msg = fallback
	}
	return &ValidationError{Op: op, StatusCode: resp.StatusCode, Message: msg}
}

func success(status int) bool {
	return status >= 200 && status < 300
}
