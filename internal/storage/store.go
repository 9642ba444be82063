// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsync/internal/models"
)

// ErrUnknownPerson is returned when an expense references a person id the
// store does not know.
var ErrUnknownPerson = errors.New("unknown person")

// NewExpense is the input for recording an expense.
type NewExpense struct {
	Title          string
	Amount         decimal.Decimal
	PaidByID       int64
	ParticipantIDs []int64
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends without changing the
// HTTP layer.
type Store interface {
	// CreatePerson persists a new person and returns it with its assigned ID.
	CreatePerson(ctx context.Context, name string) (models.Person, error)

	// ListPeople returns every person in creation order.
	ListPeople(ctx context.Context) ([]models.Person, error)

	// CreateExpense persists an expense. Payer and participants must exist.
	CreateExpense(ctx context.Context, e NewExpense) (models.Expense, error)

	// ListExpenses returns every expense in creation order, with payer and
	// participant ids populated.
	ListExpenses(ctx context.Context) ([]models.Expense, error)

	// Close releases any resources held by the store.
	Close() error
}
