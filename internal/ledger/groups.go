package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/strichliste-rs/strichliste-rs-sub000/internal/models"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/storage"
)

// personalGroupID resolves the singleton group of an account. A missing
// personal group is a data-integrity failure, not a normal miss: every
// account gets one at creation time.
func personalGroupID(ctx context.Context, st storage.Store, accountID int64) (int64, error) {
	id, err := st.PersonalGroupID(ctx, accountID)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, integrityf("account %d has no personal group", accountID)
	}
	if err != nil {
		return 0, fmt.Errorf("store: %w", err)
	}
	return id, nil
}

// ensurePersonalGroup creates the singleton group for an account unless it
// already exists, and returns its id.
func ensurePersonalGroup(ctx context.Context, st storage.Store, accountID int64) (int64, error) {
	id, err := st.PersonalGroupID(ctx, accountID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return 0, fmt.Errorf("store: %w", err)
	}
	group, err := st.CreateGroup(ctx, []int64{accountID})
	if err != nil {
		return 0, fmt.Errorf("store: %w", err)
	}
	return group.ID, nil
}

// groupForMembers finds the group whose member set is exactly ids, creating
// it on first use so repeated splits among the same people reuse it.
func groupForMembers(ctx context.Context, st storage.Store, ids []int64) (*models.Group, error) {
	ids = dedupeSorted(ids)
	if len(ids) == 0 {
		return nil, validationf("group must have at least one member")
	}

	group, err := st.FindGroupByMembers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if group != nil {
		return group, nil
	}

	group, err = st.CreateGroup(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return group, nil
}

// memberAccounts loads a group and the full account records of its members
// in member order.
func memberAccounts(ctx context.Context, st storage.Store, groupID int64) (*models.Group, []*models.Account, error) {
	group, err := st.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, &NotFoundError{Kind: "group", ID: groupID}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("store: %w", err)
	}

	accounts := make([]*models.Account, 0, len(group.Members))
	for _, accountID := range group.Members {
		account, err := st.GetAccount(ctx, accountID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, integrityf("group %d references missing account %d", groupID, accountID)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("store: %w", err)
		}
		accounts = append(accounts, account)
	}
	return group, accounts, nil
}

func dedupeSorted(ids []int64) []int64 {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := sorted[:0]
	for i, id := range sorted {
		if i == 0 || id != sorted[i-1] {
			out = append(out, id)
		}
	}
	return out
}
