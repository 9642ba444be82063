package models

// Person is a participant registered with the ledger service.
// Persons are created server-side and immutable once fetched.
type Person struct {
	// ID is the server-assigned identity. Expenses reference people by ID.
	ID int64 `json:"id"`

	// Name is the display name. Balances are keyed by this value.
	Name string `json:"name"`
}
