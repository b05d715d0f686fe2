// Package calculator computes the per-account balance deltas of a
// transaction. It is pure math over resolved member lists; persistence and
// limit policy live in the ledger package.
package calculator

import (
	"fmt"

	"github.com/strichliste-rs/strichliste-rs-sub000/internal/money"
)

// Participant is one account's resolved state going into a computation.
type Participant struct {
	AccountID int64
	Balance   money.Value
}

// AccountDelta is the change a transaction applies to one account.
type AccountDelta struct {
	AccountID int64
	Before    money.Value
	Delta     money.Value
}

// After returns the balance the account would hold once the delta is
// applied.
func (d AccountDelta) After() money.Value { return d.Before + d.Delta }

// Deltas computes the per-account balance changes required to move amount
// from the sender side to the receiver side.
//
// Each sender's base share is floor(amount/len(senders)), applied negative;
// the remaining cents are taken one at a time from the senders in list
// order until the sender side sums to exactly -amount. The receiver side
// works the same way with positive shares. The caller supplies member
// lists in a fixed order (groups store members sorted by account id), so
// the remainder assignment is deterministic: re-running on the same inputs
// yields the same per-account deltas.
//
// An account appearing on both sides accumulates both contributions.
// The returned map always sums to zero.
func Deltas(senders, receivers []Participant, amount money.Value) (map[int64]AccountDelta, error) {
	if amount < 0 {
		return nil, fmt.Errorf("amount must be non-negative, got %s", amount)
	}
	if len(senders) == 0 {
		return nil, fmt.Errorf("sender side must not be empty")
	}
	if len(receivers) == 0 {
		return nil, fmt.Errorf("receiver side must not be empty")
	}

	deltas := make(map[int64]AccountDelta, len(senders)+len(receivers))
	distribute(deltas, senders, amount, -1)
	distribute(deltas, receivers, amount, +1)
	return deltas, nil
}

// Reverse computes the delta map that undoes a prior movement: the original
// senders get their shares back, the original receivers give theirs up.
func Reverse(senders, receivers []Participant, amount money.Value) (map[int64]AccountDelta, error) {
	return Deltas(receivers, senders, amount)
}

func distribute(deltas map[int64]AccountDelta, side []Participant, amount, sign money.Value) {
	n := money.Value(len(side))
	share := amount / n
	remaining := amount - share*n

	for i, p := range side {
		d := share
		if money.Value(i) < remaining {
			d++
		}
		entry, ok := deltas[p.AccountID]
		if !ok {
			entry = AccountDelta{AccountID: p.AccountID, Before: p.Balance}
		}
		entry.Delta += sign * d
		deltas[p.AccountID] = entry
	}
}
