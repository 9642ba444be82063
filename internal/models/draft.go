package models

// DraftExpense is the in-progress form for a new expense.
// Amount stays a raw string until it is validated at submit time.
type DraftExpense struct {
	// Title is optional; an empty title is replaced by a placeholder on submit.
	Title string `json:"title"`

	// Amount is the raw user input awaiting numeric validation.
	Amount string `json:"amount"`

	// PaidByID is the selected payer, or nil to default to the first person.
	PaidByID *int64 `json:"paidById,omitempty"`

	// Participants is a comma-separated id list. Empty means everyone.
	Participants string `json:"participants"`
}

// IsEmpty reports whether no field has been set.
func (d DraftExpense) IsEmpty() bool {
	return d.Title == "" && d.Amount == "" && d.PaidByID == nil && d.Participants == ""
}
