// Package models defines the client-side view of the shared-expense ledger.
//
// # Resources
//
// The remote ledger service owns four read resources:
//   - Expense: a recorded payment, with its payer and participant ids
//   - Person: a participant, identified by a server-assigned integer id
//   - BalanceMap: net amount per display name (positive = owed to that person)
//   - Settlement: one suggested transfer of the service's settlement plan
//
// The client never computes balances or settlements; it only consumes them.
//
// # Local State
//
// Snapshot bundles the four resources as one consistent unit. It is replaced
// wholesale after every successful refresh and never patched in place.
//
// DraftExpense holds the in-progress form for a new expense. It is mutated
// field by field and reset only after a successful submit.
package models
