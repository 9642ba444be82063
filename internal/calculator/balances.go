package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// centPlaces is the precision shares are rounded to.
const centPlaces = 2

// Member is a participant known to the ledger.
type Member struct {
	ID   int64
	Name string
}

// ExpenseForBalance represents an expense with the minimal information needed for balance calculations.
type ExpenseForBalance struct {
	Amount         decimal.Decimal
	PayerID        int64
	ParticipantIDs []int64
}

// CalculateBalances computes the net balance of every member, keyed by name.
//
// Algorithm:
// - For each expense: payer contributed +amount, each participant owes an equal share
// - Shares are rounded to cents; the rounding remainder is assigned to the first participant
// - net_balance = total_paid - total_owed (positive = owed money)
//
// Every member appears in the result, including those with a zero balance.
func CalculateBalances(members []Member, expenses []ExpenseForBalance) (map[string]decimal.Decimal, error) {
	names := make(map[int64]string, len(members))
	balances := make(map[string]decimal.Decimal, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
		balances[m.Name] = decimal.Zero
	}

	for i, e := range expenses {
		payer, ok := names[e.PayerID]
		if !ok {
			return nil, fmt.Errorf("expense %d: unknown payer %d", i, e.PayerID)
		}
		if len(e.ParticipantIDs) == 0 {
			return nil, fmt.Errorf("expense %d: must have at least one participant", i)
		}

		shares := SplitEqually(e.Amount, len(e.ParticipantIDs))
		for j, id := range e.ParticipantIDs {
			name, ok := names[id]
			if !ok {
				return nil, fmt.Errorf("expense %d: unknown participant %d", i, id)
			}
			balances[name] = balances[name].Sub(shares[j])
		}
		balances[payer] = balances[payer].Add(e.Amount)
	}

	return balances, nil
}

// SplitEqually divides amount into n cent-rounded shares that sum to amount.
// The first share absorbs the rounding remainder.
func SplitEqually(amount decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	share := amount.DivRound(decimal.NewFromInt(int64(n)), centPlaces)
	shares := make([]decimal.Decimal, n)
	for i := range shares {
		shares[i] = share
	}
	remainder := amount.Sub(share.Mul(decimal.NewFromInt(int64(n))))
	shares[0] = shares[0].Add(remainder)
	return shares
}
