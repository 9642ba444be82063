package models

import "github.com/shopspring/decimal"

// unknownPayer is displayed when an expense arrives without a payer object.
const unknownPayer = "Unknown"

// Expense is a payment recorded in the ledger.
type Expense struct {
	// ID is the server-assigned identity.
	ID int64 `json:"id"`

	// Title is the human-readable description (e.g., "Dinner").
	Title string `json:"title"`

	// Amount is the non-negative total paid.
	Amount decimal.Decimal `json:"amount"`

	// PaidBy is the person who paid, as a nested object.
	// It may be nil if the service omitted it.
	PaidBy *Person `json:"paidBy,omitempty"`

	// ParticipantIDs are the ids of the people sharing this expense.
	ParticipantIDs IDList `json:"participantIds,omitempty"`
}

// PayerName returns the payer's display name, or "Unknown" when absent.
func (e Expense) PayerName() string {
	if e.PaidBy == nil || e.PaidBy.Name == "" {
		return unknownPayer
	}
	return e.PaidBy.Name
}
