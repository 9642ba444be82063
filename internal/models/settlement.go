package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Settlement is one suggested transfer in the service's settlement plan.
// Plans are ordered; the order returned by the service is the display order.
type Settlement struct {
	// From is the display name of the person paying.
	From string `json:"from"`

	// To is the display name of the person being paid.
	To string `json:"to"`

	// Amount is the positive transfer amount.
	Amount decimal.Decimal `json:"amount"`
}

// BalanceMap maps a display name to a signed net balance.
// Positive means the person is owed money, negative means they owe.
type BalanceMap map[string]decimal.Decimal

// Get returns the balance for name, or zero if name is absent.
func (b BalanceMap) Get(name string) decimal.Decimal {
	if v, ok := b[name]; ok {
		return v
	}
	return decimal.Zero
}

// Names returns the display names in lexical order.
func (b BalanceMap) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
