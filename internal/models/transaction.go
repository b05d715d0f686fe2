package models

import "github.com/strichliste-rs/strichliste-rs-sub000/internal/money"

// TransactionKind is the closed set of transaction tags.
type TransactionKind string

const (
	KindDeposit         TransactionKind = "deposit"
	KindWithdraw        TransactionKind = "withdraw"
	KindBought          TransactionKind = "bought"
	KindSent            TransactionKind = "sent"
	KindReceived        TransactionKind = "received"
	KindSentAndReceived TransactionKind = "sent_and_received"
)

// TransactionType tags a transaction with its kind and, for kinds that
// carry a payload, a reference: the article id for KindBought, the
// counterpart group id for the sent/received kinds. Persistence stores the
// kind and a nullable ref column and reconstructs the type on read.
type TransactionType struct {
	Kind TransactionKind
	Ref  int64
}

// HasRef reports whether the kind carries a payload reference.
func (t TransactionType) HasRef() bool {
	return t.Kind == KindBought || t.Kind == KindSent ||
		t.Kind == KindReceived || t.Kind == KindSentAndReceived
}

// Deposit tags a top-up from the reservoir.
func Deposit() TransactionType { return TransactionType{Kind: KindDeposit} }

// Withdraw tags a payout to the reservoir.
func Withdraw() TransactionType { return TransactionType{Kind: KindWithdraw} }

// Bought tags an article purchase.
func Bought(articleID int64) TransactionType {
	return TransactionType{Kind: KindBought, Ref: articleID}
}

// Sent tags a transfer from the initiating side to the given group.
func Sent(targetGroupID int64) TransactionType {
	return TransactionType{Kind: KindSent, Ref: targetGroupID}
}

// Received tags money received from the given group, e.g. the primary
// payer's side of a cost split.
func Received(sourceGroupID int64) TransactionType {
	return TransactionType{Kind: KindReceived, Ref: sourceGroupID}
}

// SentAndReceived tags a movement where sender and receiver are the same
// group.
func SentAndReceived(groupID int64) TransactionType {
	return TransactionType{Kind: KindSentAndReceived, Ref: groupID}
}

// Transaction is one money movement between two groups. Once created it is
// immutable except for the Undone flag.
type Transaction struct {
	// ID is the unique identifier for the transaction.
	ID int64

	// SenderGroupID is the group whose members lose the amount.
	SenderGroupID int64

	// ReceiverGroupID is the group whose members gain the amount.
	ReceiverGroupID int64

	// Type is the tag describing what the movement was.
	Type TransactionType

	// Amount is the non-negative magnitude in minor units; direction is
	// encoded by which side is sender vs. receiver.
	Amount money.Value

	// Description is optional free text shown in history listings.
	Description string

	// CreatedAt is the Unix timestamp when the transaction was created.
	CreatedAt int64

	// Undone marks a reversed transaction. The reversal applies a second,
	// inverted delta set; the row itself is never deleted.
	Undone bool
}
