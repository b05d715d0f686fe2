package models

import "github.com/strichliste-rs/strichliste-rs-sub000/internal/money"

// Article is a purchasable item. Prices live in a separate timestamped
// relation so the price in force at purchase time can be reconstructed.
type Article struct {
	// ID is the unique identifier for the article.
	ID int64

	// Name is the display name, e.g. "Club-Mate".
	Name string

	// Barcode is an optional scanner code. Empty when none is assigned.
	Barcode string

	// Price is the currently effective price, resolved at read time.
	Price money.Value

	// CreatedAt is the Unix timestamp when the article was created.
	CreatedAt int64
}

// ArticlePrice is one entry of an article's price history. The price in
// force at time T is the one with the latest EffectiveSince <= T.
type ArticlePrice struct {
	ArticleID      int64
	Price          money.Value
	EffectiveSince int64
}
