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

// CreateGroup inserts a group containing exactly the given member ids.
func (s *SQLiteStore) CreateGroup(ctx context.Context, memberIDs []int64) (*models.Group, error) {
	if len(memberIDs) == 0 {
		return nil, fmt.Errorf("group must have at least one member")
	}

	now := time.Now().Unix()
	res, err := s.q.ExecContext(ctx, "INSERT INTO groups (created_at) VALUES (?)", now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert group: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted group id: %w", err)
	}

	for _, accountID := range memberIDs {
		_, err := s.q.ExecContext(ctx,
			"INSERT INTO group_members (group_id, account_id) VALUES (?, ?)",
			id, accountID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	return s.GetGroup(ctx, id)
}

// GetGroup retrieves a group and its member ids, sorted ascending.
func (s *SQLiteStore) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	group := &models.Group{}
	err := s.q.QueryRowContext(ctx, "SELECT id, created_at FROM groups WHERE id = ?", id).
		Scan(&group.ID, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	rows, err := s.q.QueryContext(ctx,
		"SELECT account_id FROM group_members WHERE group_id = ? ORDER BY account_id", id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var accountID int64
		if err := rows.Scan(&accountID); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		group.Members = append(group.Members, accountID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return group, nil
}

// FindGroupByMembers looks up a group whose member set is exactly
// memberIDs: same cardinality, no extraneous or missing members.
func (s *SQLiteStore) FindGroupByMembers(ctx context.Context, memberIDs []int64) (*models.Group, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT group_id FROM group_members
		GROUP BY group_id
		HAVING COUNT(*) = ?
		   AND SUM(CASE WHEN account_id IN (?` + repeatPlaceholder(len(memberIDs)-1) + `) THEN 1 ELSE 0 END) = ?
		ORDER BY group_id
		LIMIT 1`

	args := make([]any, 0, len(memberIDs)+2)
	args = append(args, len(memberIDs))
	for _, id := range memberIDs {
		args = append(args, id)
	}
	args = append(args, len(memberIDs))

	var groupID int64
	err := s.q.QueryRowContext(ctx, query, args...).Scan(&groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find group by members: %w", err)
	}
	return s.GetGroup(ctx, groupID)
}

// PersonalGroupID returns the id of the unique size-1 group containing the
// given account.
func (s *SQLiteStore) PersonalGroupID(ctx context.Context, accountID int64) (int64, error) {
	query := `
		SELECT gm.group_id
		FROM group_members gm
		JOIN (
			SELECT group_id, COUNT(*) AS member_count
			FROM group_members
			GROUP BY group_id
		) sizes ON sizes.group_id = gm.group_id
		WHERE gm.account_id = ? AND sizes.member_count = 1
		ORDER BY gm.group_id
		LIMIT 1`

	var groupID int64
	err := s.q.QueryRowContext(ctx, query, accountID).Scan(&groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, storage.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find personal group of account %d: %w", accountID, err)
	}
	return groupID, nil
}
