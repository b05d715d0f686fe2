// Package ledger implements the transaction engine: the only code path
// that changes stored balances. Every mutation resolves its operand
// groups, computes per-account deltas, enforces the balance-limit policy
// and persists the result inside one atomic store transaction.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/strichliste-rs/strichliste-rs-sub000/internal/calculator"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/metrics"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/models"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/money"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/pagination"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/storage"
)

const defaultPageSize = 25

// Engine orchestrates all ledger operations over a Store.
type Engine struct {
	store  storage.Store
	limits Limits
}

// New creates an Engine with the given storage backend and balance limits.
func New(store storage.Store, limits Limits) *Engine {
	return &Engine{store: store, limits: limits}
}

// Seed ensures the two system accounts and their personal groups exist.
// Idempotent; called once at startup.
func (e *Engine) Seed(ctx context.Context) error {
	return e.store.InTx(ctx, func(st storage.Store) error {
		for id, name := range map[int64]string{
			models.ReservoirAccountID: "Reservoir",
			models.RegisterAccountID:  "Register",
		} {
			if err := st.SeedAccount(ctx, id, name); err != nil {
				return fmt.Errorf("store: %w", err)
			}
			if _, err := ensurePersonalGroup(ctx, st, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateAccount registers a member: the account and its personal group are
// created together.
func (e *Engine) CreateAccount(ctx context.Context, name, cardID string) (*models.Account, error) {
	if name == "" {
		return nil, validationf("account name must not be empty")
	}

	var account *models.Account
	err := e.store.InTx(ctx, func(st storage.Store) error {
		var err error
		account, err = st.CreateAccount(ctx, name, cardID)
		if err != nil {
			return fmt.Errorf("store: %w", err)
		}
		_, err = ensurePersonalGroup(ctx, st, account.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.Info("account created", "account_id", account.ID, "name", account.Name)
	return account, nil
}

// Create runs the full engine pipeline for an arbitrary group-to-group
// movement. The derived operations below are the usual entry points.
func (e *Engine) Create(ctx context.Context, senderGroupID, receiverGroupID int64, ttype models.TransactionType, description string, amount money.Value) (*models.Transaction, error) {
	var tr *models.Transaction
	err := e.store.InTx(ctx, func(st storage.Store) error {
		var err error
		tr, err = e.create(ctx, st, senderGroupID, receiverGroupID, ttype, description, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.TransactionsTotal.WithLabelValues(string(tr.Type.Kind)).Inc()
	return tr, nil
}

// create is the transaction pipeline, run inside an ambient store
// transaction: resolve groups, compute deltas, check limits, persist the
// record, apply every delta, re-read the row.
func (e *Engine) create(ctx context.Context, st storage.Store, senderGroupID, receiverGroupID int64, ttype models.TransactionType, description string, amount money.Value) (*models.Transaction, error) {
	if amount < 0 {
		return nil, validationf("amount must not be negative")
	}

	_, senders, err := memberAccounts(ctx, st, senderGroupID)
	if err != nil {
		return nil, err
	}
	_, receivers, err := memberAccounts(ctx, st, receiverGroupID)
	if err != nil {
		return nil, err
	}

	deltas, err := calculator.Deltas(participants(senders), participants(receivers), amount)
	if err != nil {
		return nil, validationf("%v", err)
	}

	if err := e.limits.check(deltas, accountsByID(senders, receivers)); err != nil {
		return nil, err
	}

	// A movement within one group is both sent and received from every
	// member's point of view; collapse the tag accordingly.
	if senderGroupID == receiverGroupID &&
		(ttype.Kind == models.KindSent || ttype.Kind == models.KindReceived) {
		ttype = models.SentAndReceived(senderGroupID)
	}

	tr := &models.Transaction{
		SenderGroupID:   senderGroupID,
		ReceiverGroupID: receiverGroupID,
		Type:            ttype,
		Amount:          amount,
		Description:     description,
	}
	if err := st.InsertTransaction(ctx, tr); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	if err := applyDeltas(ctx, st, deltas); err != nil {
		return nil, err
	}

	created, err := st.GetTransaction(ctx, tr.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, integrityf("created transaction %d cannot be re-read", tr.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return created, nil
}

// applyDeltas writes every post-delta balance, in account-id order.
func applyDeltas(ctx context.Context, st storage.Store, deltas map[int64]calculator.AccountDelta) error {
	ids := make([]int64, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if err := st.UpdateAccountBalance(ctx, id, deltas[id].After()); err != nil {
			return fmt.Errorf("store: %w", err)
		}
	}
	return nil
}

// Deposit tops up an account from the reservoir.
func (e *Engine) Deposit(ctx context.Context, accountID int64, amount money.Value, description string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, validationf("deposit amount must be positive")
	}

	var tr *models.Transaction
	err := e.store.InTx(ctx, func(st storage.Store) error {
		if _, err := e.requireAccount(ctx, st, accountID); err != nil {
			return err
		}
		reservoir, err := personalGroupID(ctx, st, models.ReservoirAccountID)
		if err != nil {
			return err
		}
		personal, err := personalGroupID(ctx, st, accountID)
		if err != nil {
			return err
		}
		tr, err = e.create(ctx, st, reservoir, personal, models.Deposit(), description, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.TransactionsTotal.WithLabelValues(string(models.KindDeposit)).Inc()
	return tr, nil
}

// Withdraw pays out from an account to the reservoir.
func (e *Engine) Withdraw(ctx context.Context, accountID int64, amount money.Value, description string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, validationf("withdraw amount must be positive")
	}

	var tr *models.Transaction
	err := e.store.InTx(ctx, func(st storage.Store) error {
		if _, err := e.requireAccount(ctx, st, accountID); err != nil {
			return err
		}
		reservoir, err := personalGroupID(ctx, st, models.ReservoirAccountID)
		if err != nil {
			return err
		}
		personal, err := personalGroupID(ctx, st, accountID)
		if err != nil {
			return err
		}
		tr, err = e.create(ctx, st, personal, reservoir, models.Withdraw(), description, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.TransactionsTotal.WithLabelValues(string(models.KindWithdraw)).Inc()
	return tr, nil
}

// Buy charges an account the article price in force at purchase time and
// credits the register.
func (e *Engine) Buy(ctx context.Context, accountID, articleID int64) (*models.Transaction, error) {
	var tr *models.Transaction
	err := e.store.InTx(ctx, func(st storage.Store) error {
		if _, err := e.requireAccount(ctx, st, accountID); err != nil {
			return err
		}
		article, err := st.GetArticle(ctx, articleID)
		if errors.Is(err, storage.ErrNotFound) {
			return &NotFoundError{Kind: "article", ID: articleID}
		}
		if err != nil {
			return fmt.Errorf("store: %w", err)
		}

		price, err := st.ArticlePriceAt(ctx, articleID, time.Now().Unix())
		if errors.Is(err, storage.ErrNotFound) {
			return integrityf("article %d has no effective price", articleID)
		}
		if err != nil {
			return fmt.Errorf("store: %w", err)
		}

		personal, err := personalGroupID(ctx, st, accountID)
		if err != nil {
			return err
		}
		register, err := personalGroupID(ctx, st, models.RegisterAccountID)
		if err != nil {
			return err
		}
		tr, err = e.create(ctx, st, personal, register, models.Bought(articleID), article.Name, price)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.TransactionsTotal.WithLabelValues(string(models.KindBought)).Inc()
	return tr, nil
}

// Send transfers between two accounts' personal groups.
func (e *Engine) Send(ctx context.Context, fromID, toID int64, amount money.Value, description string) (*models.Transaction, error) {
	if fromID == toID {
		return nil, validationf("sender and receiver must differ")
	}
	if amount <= 0 {
		return nil, validationf("transfer amount must be positive")
	}

	var tr *models.Transaction
	err := e.store.InTx(ctx, func(st storage.Store) error {
		if _, err := e.requireAccount(ctx, st, fromID); err != nil {
			return err
		}
		if _, err := e.requireAccount(ctx, st, toID); err != nil {
			return err
		}
		fromGroup, err := personalGroupID(ctx, st, fromID)
		if err != nil {
			return err
		}
		toGroup, err := personalGroupID(ctx, st, toID)
		if err != nil {
			return err
		}
		tr, err = e.create(ctx, st, fromGroup, toGroup, models.Sent(toGroup), description, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.TransactionsTotal.WithLabelValues(string(models.KindSent)).Inc()
	return tr, nil
}

// Split settles a shared cost: the primary account paid total up front, the
// secondary accounts each owe their share. The primary's own share is
// subtracted before the transaction is created, since the primary already
// covered it directly; only the others' shares flow through the ledger.
// The sender is the lazily created/reused group of the secondary accounts,
// the receiver is the primary's personal group.
func (e *Engine) Split(ctx context.Context, primaryID int64, secondaryIDs []int64, total money.Value, description string) (*models.Transaction, error) {
	if total <= 0 {
		return nil, validationf("split total must be positive")
	}

	secondaries := make([]int64, 0, len(secondaryIDs))
	for _, id := range secondaryIDs {
		if id != primaryID {
			secondaries = append(secondaries, id)
		}
	}
	secondaries = dedupeSorted(secondaries)
	if len(secondaries) == 0 {
		return nil, validationf("split needs at least one participant besides the payer")
	}

	participantCount := money.Value(len(secondaries) + 1)
	primaryShare := total / participantCount
	amount := total - primaryShare

	var tr *models.Transaction
	err := e.store.InTx(ctx, func(st storage.Store) error {
		if _, err := e.requireAccount(ctx, st, primaryID); err != nil {
			return err
		}
		for _, id := range secondaries {
			if _, err := e.requireAccount(ctx, st, id); err != nil {
				return err
			}
		}

		group, err := groupForMembers(ctx, st, secondaries)
		if err != nil {
			return err
		}
		primaryGroup, err := personalGroupID(ctx, st, primaryID)
		if err != nil {
			return err
		}
		tr, err = e.create(ctx, st, group.ID, primaryGroup, models.Received(group.ID), description, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.TransactionsTotal.WithLabelValues(string(models.KindReceived)).Inc()
	return tr, nil
}

// Undo reverses a transaction: the original delta map is recomputed with
// sender and receiver roles swapped and applied, and the row is flagged
// undone. The reversal bypasses the limit policy since it restores a
// previously accepted state. A transaction can only be undone once.
func (e *Engine) Undo(ctx context.Context, transactionID int64) (*models.Transaction, error) {
	var tr *models.Transaction
	err := e.store.InTx(ctx, func(st storage.Store) error {
		original, err := st.GetTransaction(ctx, transactionID)
		if errors.Is(err, storage.ErrNotFound) {
			return &NotFoundError{Kind: "transaction", ID: transactionID}
		}
		if err != nil {
			return fmt.Errorf("store: %w", err)
		}
		if original.Undone {
			return validationf("transaction %d is already undone", transactionID)
		}

		_, senders, err := memberAccounts(ctx, st, original.SenderGroupID)
		if err != nil {
			return err
		}
		_, receivers, err := memberAccounts(ctx, st, original.ReceiverGroupID)
		if err != nil {
			return err
		}

		deltas, err := calculator.Reverse(participants(senders), participants(receivers), original.Amount)
		if err != nil {
			return integrityf("cannot reverse transaction %d: %v", transactionID, err)
		}
		if err := applyDeltas(ctx, st, deltas); err != nil {
			return err
		}
		if err := st.MarkTransactionUndone(ctx, transactionID); err != nil {
			return fmt.Errorf("store: %w", err)
		}

		tr, err = st.GetTransaction(ctx, transactionID)
		if err != nil {
			return fmt.Errorf("store: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.UndosTotal.Inc()
	slog.Info("transaction undone", "transaction_id", transactionID)
	return tr, nil
}

// HistoryEntry is one transaction in an account's history together with
// the viewer's own share of it, re-derived read-only from the delta
// computation.
type HistoryEntry struct {
	Transaction models.Transaction
	Share       money.Value
}

// History returns one page of the transactions touching the account,
// newest first.
func (e *Engine) History(ctx context.Context, accountID int64, req pagination.Request) (pagination.Page[HistoryEntry], error) {
	var page pagination.Page[HistoryEntry]
	if req.Limit <= 0 {
		req.Limit = defaultPageSize
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	if _, err := e.Account(ctx, accountID); err != nil {
		return page, err
	}

	items, total, err := e.store.TransactionsByAccount(ctx, accountID, req.Offset, req.Limit)
	if err != nil {
		return page, fmt.Errorf("store: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(items))
	for _, tr := range items {
		share, err := e.shareOf(ctx, &tr, accountID)
		if err != nil {
			return page, err
		}
		entries = append(entries, HistoryEntry{Transaction: tr, Share: share})
	}
	return pagination.PageOf(entries, req.Offset, total), nil
}

// shareOf re-derives the delta a transaction applied to one account.
func (e *Engine) shareOf(ctx context.Context, tr *models.Transaction, accountID int64) (money.Value, error) {
	_, senders, err := memberAccounts(ctx, e.store, tr.SenderGroupID)
	if err != nil {
		return 0, err
	}
	_, receivers, err := memberAccounts(ctx, e.store, tr.ReceiverGroupID)
	if err != nil {
		return 0, err
	}
	deltas, err := calculator.Deltas(participants(senders), participants(receivers), tr.Amount)
	if err != nil {
		return 0, integrityf("cannot derive share of transaction %d: %v", tr.ID, err)
	}
	return deltas[accountID].Delta, nil
}

// Account returns one non-derived account record.
func (e *Engine) Account(ctx context.Context, accountID int64) (*models.Account, error) {
	return e.requireAccount(ctx, e.store, accountID)
}

// AccountByCard resolves an account from a scanned card identifier.
func (e *Engine) AccountByCard(ctx context.Context, cardID string) (*models.Account, error) {
	if cardID == "" {
		return nil, validationf("card id must not be empty")
	}
	account, err := e.store.GetAccountByCard(ctx, cardID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &NotFoundError{Kind: "account"}
	}
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return account, nil
}

// Accounts lists all member accounts; the system accounts are excluded.
func (e *Engine) Accounts(ctx context.Context) ([]models.Account, error) {
	accounts, err := e.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return accounts, nil
}

// RegisterCard assigns a card identifier to an account. An empty code
// issues a fresh random one.
func (e *Engine) RegisterCard(ctx context.Context, accountID int64, code string) (*models.Account, error) {
	if code == "" {
		code = uuid.New().String()
	}

	var account *models.Account
	err := e.store.InTx(ctx, func(st storage.Store) error {
		var err error
		account, err = e.requireAccount(ctx, st, accountID)
		if err != nil {
			return err
		}
		if err := st.UpdateAccount(ctx, accountID, account.Name, code); err != nil {
			return fmt.Errorf("store: %w", err)
		}
		account.CardID = code
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// RenameAccount changes an account's display name.
func (e *Engine) RenameAccount(ctx context.Context, accountID int64, name string) (*models.Account, error) {
	if name == "" {
		return nil, validationf("account name must not be empty")
	}

	var account *models.Account
	err := e.store.InTx(ctx, func(st storage.Store) error {
		var err error
		account, err = e.requireAccount(ctx, st, accountID)
		if err != nil {
			return err
		}
		if err := st.UpdateAccount(ctx, accountID, name, account.CardID); err != nil {
			return fmt.Errorf("store: %w", err)
		}
		account.Name = name
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GroupMembers returns the full account records of a group's members.
func (e *Engine) GroupMembers(ctx context.Context, groupID int64) ([]*models.Account, error) {
	_, accounts, err := memberAccounts(ctx, e.store, groupID)
	return accounts, err
}

// CreateArticle adds a purchasable article with its initial price,
// effective immediately.
func (e *Engine) CreateArticle(ctx context.Context, name, barcode string, price money.Value) (*models.Article, error) {
	if name == "" {
		return nil, validationf("article name must not be empty")
	}
	if price <= 0 {
		return nil, validationf("article price must be positive")
	}
	article, err := e.store.CreateArticle(ctx, name, barcode, price, time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	slog.Info("article created", "article_id", article.ID, "name", article.Name)
	return article, nil
}

// SetArticlePrice records a new price effective immediately. Past
// purchases keep the price that was in force when they happened.
func (e *Engine) SetArticlePrice(ctx context.Context, articleID int64, price money.Value) error {
	if price <= 0 {
		return validationf("article price must be positive")
	}
	return e.store.InTx(ctx, func(st storage.Store) error {
		if _, err := st.GetArticle(ctx, articleID); errors.Is(err, storage.ErrNotFound) {
			return &NotFoundError{Kind: "article", ID: articleID}
		} else if err != nil {
			return fmt.Errorf("store: %w", err)
		}
		if err := st.AddArticlePrice(ctx, articleID, price, time.Now().Unix()); err != nil {
			return fmt.Errorf("store: %w", err)
		}
		return nil
	})
}

// Articles lists the article catalog with currently effective prices.
func (e *Engine) Articles(ctx context.Context) ([]models.Article, error) {
	articles, err := e.store.ListArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return articles, nil
}

func (e *Engine) requireAccount(ctx context.Context, st storage.Store, accountID int64) (*models.Account, error) {
	account, err := st.GetAccount(ctx, accountID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &NotFoundError{Kind: "account", ID: accountID}
	}
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return account, nil
}

func participants(accounts []*models.Account) []calculator.Participant {
	ps := make([]calculator.Participant, len(accounts))
	for i, a := range accounts {
		ps[i] = calculator.Participant{AccountID: a.ID, Balance: a.Balance}
	}
	return ps
}

func accountsByID(sides ...[]*models.Account) map[int64]*models.Account {
	out := make(map[int64]*models.Account)
	for _, side := range sides {
		for _, a := range side {
			out[a.ID] = a
		}
	}
	return out
}
