package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the last-known-consistent view of the ledger.
//
// The four resource fields are always replaced together; a Snapshot value is
// never partially updated. Callers must treat the slices and map as read-only.
type Snapshot struct {
	Expenses    []Expense    `json:"expenses"`
	People      []Person     `json:"people"`
	Balances    BalanceMap   `json:"balances"`
	Settlements []Settlement `json:"settlements"`

	// Version increments on every replacement. Zero means never refreshed.
	Version uint64 `json:"version"`

	// RefreshedAt is when the snapshot was fetched. Zero if never refreshed.
	RefreshedAt time.Time `json:"refreshedAt"`
}

// EmptySnapshot returns the snapshot held at process start.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Expenses:    []Expense{},
		People:      []Person{},
		Balances:    BalanceMap{},
		Settlements: []Settlement{},
	}
}

// Total returns the sum of all expense amounts.
func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.Expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// ShareOf returns the balance of the named person, or zero when absent.
func (s Snapshot) ShareOf(name string) decimal.Decimal {
	return s.Balances.Get(name)
}

// RecentFirst returns the expenses newest first, assuming the service lists
// them in creation order. The snapshot itself is not modified.
func (s Snapshot) RecentFirst() []Expense {
	out := make([]Expense, len(s.Expenses))
	for i, e := range s.Expenses {
		out[len(s.Expenses)-1-i] = e
	}
	return out
}

// PersonIDs returns every person id in service order.
func (s Snapshot) PersonIDs() []int64 {
	ids := make([]int64, len(s.People))
	for i, p := range s.People {
		ids[i] = p.ID
	}
	return ids
}

// FirstPerson returns the first person in service order.
func (s Snapshot) FirstPerson() (Person, bool) {
	if len(s.People) == 0 {
		return Person{}, false
	}
	return s.People[0], true
}

// Refreshed reports whether the snapshot came from at least one refresh.
func (s Snapshot) Refreshed() bool {
	return s.Version > 0
}
