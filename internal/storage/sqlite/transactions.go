package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/strichliste-rs/strichliste-rs-sub000/internal/models"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/storage"
)

// InsertTransaction persists a transaction record, populating ID and
// CreatedAt.
func (s *SQLiteStore) InsertTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.CreatedAt == 0 {
		tx.CreatedAt = time.Now().Unix()
	}

	var ref any
	if tx.Type.HasRef() {
		ref = tx.Type.Ref
	}

	res, err := s.q.ExecContext(ctx,
		`INSERT INTO transactions (sender_group_id, receiver_group_id, kind, ref, amount, description, created_at, undone)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		tx.SenderGroupID, tx.ReceiverGroupID, string(tx.Type.Kind), ref,
		tx.Amount, tx.Description, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted transaction id: %w", err)
	}
	tx.ID = id
	return nil
}

func scanTransaction(scan func(dest ...any) error) (*models.Transaction, error) {
	tx := &models.Transaction{}
	var kind string
	var ref sql.NullInt64
	var undone int
	err := scan(&tx.ID, &tx.SenderGroupID, &tx.ReceiverGroupID, &kind, &ref,
		&tx.Amount, &tx.Description, &tx.CreatedAt, &undone)
	if err != nil {
		return nil, err
	}
	tx.Type = models.TransactionType{Kind: models.TransactionKind(kind)}
	if ref.Valid {
		tx.Type.Ref = ref.Int64
	}
	tx.Undone = undone != 0
	return tx, nil
}

const transactionColumns = "id, sender_group_id, receiver_group_id, kind, ref, amount, description, created_at, undone"

// GetTransaction retrieves a transaction by id.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id,
	)
	tx, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// MarkTransactionUndone sets the undone flag on a transaction.
func (s *SQLiteStore) MarkTransactionUndone(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, "UPDATE transactions SET undone = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark transaction %d undone: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// TransactionsByAccount returns one window of the transactions touching any
// group the account belongs to, newest first, plus the total count.
func (s *SQLiteStore) TransactionsByAccount(ctx context.Context, accountID int64, offset, limit int) ([]models.Transaction, int, error) {
	const membership = `
		EXISTS (
			SELECT 1 FROM group_members gm
			WHERE gm.account_id = ?
			  AND gm.group_id IN (t.sender_group_id, t.receiver_group_id)
		)`

	var total int
	err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions t WHERE "+membership, accountID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	rows, err := s.q.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions t WHERE "+membership+
			" ORDER BY t.created_at DESC, t.id DESC LIMIT ? OFFSET ?",
		accountID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, total, nil
}
