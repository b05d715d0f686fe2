// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/strichliste-rs/strichliste-rs-sub000/internal/models"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/money"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the persistence interface for the ledger. The abstraction
// allows swapping storage backends without changing the engine.
//
// All engine mutations run through InTx; implementations must guarantee
// that everything inside the callback commits or rolls back as one unit.
type Store interface {
	// CreateAccount inserts a new account with a zero balance and returns
	// it with the assigned id.
	CreateAccount(ctx context.Context, name, cardID string) (*models.Account, error)

	// SeedAccount idempotently inserts an account with a fixed id; used for
	// the reserved system accounts at first startup.
	SeedAccount(ctx context.Context, id int64, name string) error

	// GetAccount retrieves an account by id. Returns ErrNotFound when absent.
	GetAccount(ctx context.Context, id int64) (*models.Account, error)

	// GetAccountByCard retrieves an account by its card identifier.
	GetAccountByCard(ctx context.Context, cardID string) (*models.Account, error)

	// ListAccounts returns all non-system accounts ordered by name.
	ListAccounts(ctx context.Context) ([]models.Account, error)

	// UpdateAccountBalance overwrites the stored balance of one account.
	UpdateAccountBalance(ctx context.Context, id int64, balance money.Value) error

	// UpdateAccount overwrites name and card id of one account.
	UpdateAccount(ctx context.Context, id int64, name, cardID string) error

	// CreateGroup inserts a group containing exactly the given member ids.
	CreateGroup(ctx context.Context, memberIDs []int64) (*models.Group, error)

	// GetGroup retrieves a group and its materialized member-id set,
	// sorted ascending.
	GetGroup(ctx context.Context, id int64) (*models.Group, error)

	// FindGroupByMembers looks up a group whose member set is exactly
	// memberIDs, order-independent. Returns (nil, nil) when no such group
	// exists.
	FindGroupByMembers(ctx context.Context, memberIDs []int64) (*models.Group, error)

	// PersonalGroupID returns the id of the unique group whose only member
	// is the given account. Returns ErrNotFound when absent; callers treat
	// that as a data-integrity failure, not a normal miss.
	PersonalGroupID(ctx context.Context, accountID int64) (int64, error)

	// InsertTransaction persists a transaction record, populating ID and
	// CreatedAt.
	InsertTransaction(ctx context.Context, tx *models.Transaction) error

	// GetTransaction retrieves a transaction by id.
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)

	// MarkTransactionUndone sets the undone flag on a transaction.
	MarkTransactionUndone(ctx context.Context, id int64) error

	// TransactionsByAccount returns one window of the transactions touching
	// any group the account belongs to, newest first, plus the total count.
	TransactionsByAccount(ctx context.Context, accountID int64, offset, limit int) ([]models.Transaction, int, error)

	// CreateArticle inserts an article together with its first price entry.
	CreateArticle(ctx context.Context, name, barcode string, price money.Value, since int64) (*models.Article, error)

	// GetArticle retrieves an article with its currently effective price.
	GetArticle(ctx context.Context, id int64) (*models.Article, error)

	// ListArticles returns all articles with their currently effective
	// prices, ordered by name.
	ListArticles(ctx context.Context) ([]models.Article, error)

	// AddArticlePrice appends a price entry effective from the given time.
	AddArticlePrice(ctx context.Context, articleID int64, price money.Value, since int64) error

	// ArticlePriceAt returns the price in force at time at: the entry with
	// the latest effective_since not after at.
	ArticlePriceAt(ctx context.Context, articleID int64, at int64) (money.Value, error)

	// InTx runs fn inside one atomic unit of work. The Store passed to fn
	// operates on the transaction; any error rolls everything back. Nested
	// calls join the ambient transaction.
	InTx(ctx context.Context, fn func(Store) error) error

	// Close releases any resources held by the store.
	Close() error
}
