package models

import "github.com/strichliste-rs/strichliste-rs-sub000/internal/money"

// Reserved ids of the two system accounts, created once at first startup
// and never deleted.
const (
	// ReservoirAccountID is the infinite-money top-up reservoir; the
	// counterparty of every deposit and withdrawal.
	ReservoirAccountID int64 = 1

	// RegisterAccountID is the purchase register; the sink side of every
	// article purchase.
	RegisterAccountID int64 = 2
)

// Account represents a member's running balance record.
type Account struct {
	// ID is the unique identifier for the account.
	ID int64

	// Name is the display name of the member.
	Name string

	// Balance is the signed amount in minor units. It is the authoritative
	// source of truth and is only changed by the transaction engine.
	Balance money.Value

	// CardID is an optional physical card identifier used for barcode
	// login at the terminal. Empty when no card is assigned.
	CardID string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// IsSystem reports whether the account is one of the two reserved system
// accounts, which are exempt from balance-limit checks.
func (a *Account) IsSystem() bool {
	return a.ID == ReservoirAccountID || a.ID == RegisterAccountID
}
