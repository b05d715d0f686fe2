package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/strichliste-rs/strichliste-rs-sub000/internal/models"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/money"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/storage"
)

// CreateAccount inserts a new account with a zero balance.
func (s *SQLiteStore) CreateAccount(ctx context.Context, name, cardID string) (*models.Account, error) {
	now := time.Now().Unix()

	var card any
	if cardID != "" {
		card = cardID
	}

	res, err := s.q.ExecContext(ctx,
		"INSERT INTO accounts (name, balance, card_id, created_at) VALUES (?, 0, ?, ?)",
		name, card, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted account id: %w", err)
	}

	return &models.Account{ID: id, Name: name, CardID: cardID, CreatedAt: now}, nil
}

// SeedAccount idempotently inserts an account with a fixed id.
func (s *SQLiteStore) SeedAccount(ctx context.Context, id int64, name string) error {
	_, err := s.q.ExecContext(ctx,
		"INSERT OR IGNORE INTO accounts (id, name, balance, created_at) VALUES (?, ?, 0, ?)",
		id, name, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to seed account %d: %w", id, err)
	}
	return nil
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	var card sql.NullString
	err := row.Scan(&account.ID, &account.Name, &account.Balance, &card, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	if card.Valid {
		account.CardID = card.String
	}
	return account, nil
}

// GetAccount retrieves an account by id.
func (s *SQLiteStore) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	return scanAccount(s.q.QueryRowContext(ctx,
		"SELECT id, name, balance, card_id, created_at FROM accounts WHERE id = ?", id,
	))
}

// GetAccountByCard retrieves an account by its card identifier.
func (s *SQLiteStore) GetAccountByCard(ctx context.Context, cardID string) (*models.Account, error) {
	return scanAccount(s.q.QueryRowContext(ctx,
		"SELECT id, name, balance, card_id, created_at FROM accounts WHERE card_id = ?", cardID,
	))
}

// ListAccounts returns all non-system accounts ordered by name.
func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT id, name, balance, card_id, created_at FROM accounts WHERE id NOT IN (?, ?) ORDER BY name",
		models.ReservoirAccountID, models.RegisterAccountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		var card sql.NullString
		if err := rows.Scan(&account.ID, &account.Name, &account.Balance, &card, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		if card.Valid {
			account.CardID = card.String
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccountBalance overwrites the stored balance of one account.
func (s *SQLiteStore) UpdateAccountBalance(ctx context.Context, id int64, balance money.Value) error {
	res, err := s.q.ExecContext(ctx, "UPDATE accounts SET balance = ? WHERE id = ?", balance, id)
	if err != nil {
		return fmt.Errorf("failed to update balance of account %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpdateAccount overwrites name and card id of one account.
func (s *SQLiteStore) UpdateAccount(ctx context.Context, id int64, name, cardID string) error {
	var card any
	if cardID != "" {
		card = cardID
	}
	res, err := s.q.ExecContext(ctx, "UPDATE accounts SET name = ?, card_id = ? WHERE id = ?", name, card, id)
	if err != nil {
		return fmt.Errorf("failed to update account %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
