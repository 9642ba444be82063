package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Transfer is one payment that reduces outstanding balances.
type Transfer struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

type party struct {
	name   string
	amount decimal.Decimal // always positive
}

// SuggestSettlements returns a short list of transfers that clears balances.
//
// Creditors (positive balance) and debtors (negative balance) are each
// sorted largest first, ties broken by name, and matched greedily. The
// output order is the order transfers were produced.
func SuggestSettlements(balances map[string]decimal.Decimal) []Transfer {
	var creditors, debtors []party
	for name, bal := range balances {
		switch {
		case bal.IsPositive():
			creditors = append(creditors, party{name: name, amount: bal})
		case bal.IsNegative():
			debtors = append(debtors, party{name: name, amount: bal.Neg()})
		}
	}
	sortParties(creditors)
	sortParties(debtors)

	transfers := []Transfer{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		if amount.IsPositive() {
			transfers = append(transfers, Transfer{
				From:   debtors[i].name,
				To:     creditors[j].name,
				Amount: amount,
			})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		// Move to next debtor/creditor if fully settled
		if !debtors[i].amount.IsPositive() {
			i++
		}
		if !creditors[j].amount.IsPositive() {
			j++
		}
	}
	return transfers
}

func sortParties(ps []party) {
	sort.Slice(ps, func(a, b int) bool {
		if c := ps[a].amount.Cmp(ps[b].amount); c != 0 {
			return c > 0
		}
		return ps[a].name < ps[b].name
	})
}
