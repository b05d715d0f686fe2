package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/strichliste-rs/strichliste-rs-sub000/internal/models"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAccounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, "alice", "card-1")
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	if account.ID == 0 {
		t.Error("expected an assigned id")
	}
	if account.Balance != 0 {
		t.Errorf("balance = %d, want 0", account.Balance)
	}

	t.Run("get by id", func(t *testing.T) {
		got, err := store.GetAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("failed to get account: %v", err)
		}
		if got.Name != "alice" || got.CardID != "card-1" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("get by card", func(t *testing.T) {
		got, err := store.GetAccountByCard(ctx, "card-1")
		if err != nil {
			t.Fatalf("failed to get account by card: %v", err)
		}
		if got.ID != account.ID {
			t.Errorf("id = %d, want %d", got.ID, account.ID)
		}
		if _, err := store.GetAccountByCard(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		if _, err := store.GetAccount(ctx, 9999); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
		if err := store.UpdateAccountBalance(ctx, 9999, 100); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("update", func(t *testing.T) {
		if err := store.UpdateAccountBalance(ctx, account.ID, -250); err != nil {
			t.Fatalf("failed to update balance: %v", err)
		}
		if err := store.UpdateAccount(ctx, account.ID, "alice b", "card-2"); err != nil {
			t.Fatalf("failed to update account: %v", err)
		}
		got, err := store.GetAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("failed to get account: %v", err)
		}
		if got.Balance != -250 || got.Name != "alice b" || got.CardID != "card-2" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("listing excludes seeded system accounts", func(t *testing.T) {
		if err := store.SeedAccount(ctx, models.ReservoirAccountID, "Reservoir"); err != nil {
			t.Fatalf("failed to seed: %v", err)
		}
		// Seeding twice is a no-op.
		if err := store.SeedAccount(ctx, models.ReservoirAccountID, "Other"); err != nil {
			t.Fatalf("failed to reseed: %v", err)
		}
		seeded, err := store.GetAccount(ctx, models.ReservoirAccountID)
		if err != nil {
			t.Fatalf("failed to get seeded account: %v", err)
		}
		if seeded.Name != "Reservoir" {
			t.Errorf("reseed overwrote name: %q", seeded.Name)
		}

		accounts, err := store.ListAccounts(ctx)
		if err != nil {
			t.Fatalf("failed to list accounts: %v", err)
		}
		for _, a := range accounts {
			if a.IsSystem() {
				t.Errorf("system account %d in listing", a.ID)
			}
		}
		if len(accounts) != 1 {
			t.Errorf("listed %d accounts, want 1", len(accounts))
		}
	})
}

func TestGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var ids []int64
	for _, name := range []string{"alice", "bob", "carol"} {
		a, err := store.CreateAccount(ctx, name, "")
		if err != nil {
			t.Fatalf("failed to create account: %v", err)
		}
		ids = append(ids, a.ID)
	}

	pair, err := store.CreateGroup(ctx, []int64{ids[0], ids[1]})
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}
	if len(pair.Members) != 2 {
		t.Fatalf("members = %v, want 2 entries", pair.Members)
	}

	t.Run("find by exact member set", func(t *testing.T) {
		// Order-independent lookup.
		found, err := store.FindGroupByMembers(ctx, []int64{ids[1], ids[0]})
		if err != nil {
			t.Fatalf("failed to find group: %v", err)
		}
		if found == nil || found.ID != pair.ID {
			t.Errorf("found %+v, want group %d", found, pair.ID)
		}

		// A subset or superset is not a match.
		if found, _ := store.FindGroupByMembers(ctx, []int64{ids[0]}); found != nil {
			t.Errorf("subset matched group %d", found.ID)
		}
		if found, _ := store.FindGroupByMembers(ctx, ids); found != nil {
			t.Errorf("superset matched group %d", found.ID)
		}
	})

	t.Run("personal group", func(t *testing.T) {
		if _, err := store.PersonalGroupID(ctx, ids[0]); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("got %v, want ErrNotFound before creation", err)
		}
		personal, err := store.CreateGroup(ctx, []int64{ids[0]})
		if err != nil {
			t.Fatalf("failed to create personal group: %v", err)
		}
		got, err := store.PersonalGroupID(ctx, ids[0])
		if err != nil {
			t.Fatalf("failed to resolve personal group: %v", err)
		}
		if got != personal.ID {
			t.Errorf("personal group = %d, want %d", got, personal.ID)
		}
	})

	t.Run("member referencing missing account fails", func(t *testing.T) {
		if _, err := store.CreateGroup(ctx, []int64{9999}); err == nil {
			t.Error("expected a foreign key failure")
		}
	})
}

func TestTransactions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice, err := store.CreateAccount(ctx, "alice", "")
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	bob, err := store.CreateAccount(ctx, "bob", "")
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	aliceGroup, err := store.CreateGroup(ctx, []int64{alice.ID})
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}
	bobGroup, err := store.CreateGroup(ctx, []int64{bob.ID})
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	tr := &models.Transaction{
		SenderGroupID:   aliceGroup.ID,
		ReceiverGroupID: bobGroup.ID,
		Type:            models.Sent(bobGroup.ID),
		Amount:          1250,
		Description:     "lunch",
	}
	if err := store.InsertTransaction(ctx, tr); err != nil {
		t.Fatalf("failed to insert transaction: %v", err)
	}
	if tr.ID == 0 || tr.CreatedAt == 0 {
		t.Errorf("insert did not populate id/created_at: %+v", tr)
	}

	t.Run("round trip keeps the type tag", func(t *testing.T) {
		got, err := store.GetTransaction(ctx, tr.ID)
		if err != nil {
			t.Fatalf("failed to get transaction: %v", err)
		}
		if got.Type.Kind != models.KindSent || got.Type.Ref != bobGroup.ID {
			t.Errorf("type = %+v", got.Type)
		}
		if got.Amount != 1250 || got.Description != "lunch" || got.Undone {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("mark undone", func(t *testing.T) {
		if err := store.MarkTransactionUndone(ctx, tr.ID); err != nil {
			t.Fatalf("failed to mark undone: %v", err)
		}
		got, err := store.GetTransaction(ctx, tr.ID)
		if err != nil {
			t.Fatalf("failed to get transaction: %v", err)
		}
		if !got.Undone {
			t.Error("undone flag not persisted")
		}
		if err := store.MarkTransactionUndone(ctx, 9999); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("windowed listing by account", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			extra := &models.Transaction{
				SenderGroupID:   bobGroup.ID,
				ReceiverGroupID: aliceGroup.ID,
				Type:            models.Deposit(),
				Amount:          100,
				Description:     fmt.Sprintf("tx %d", i),
			}
			if err := store.InsertTransaction(ctx, extra); err != nil {
				t.Fatalf("failed to insert transaction: %v", err)
			}
		}

		items, total, err := store.TransactionsByAccount(ctx, alice.ID, 0, 3)
		if err != nil {
			t.Fatalf("failed to list transactions: %v", err)
		}
		if total != 5 {
			t.Errorf("total = %d, want 5", total)
		}
		if len(items) != 3 {
			t.Fatalf("window = %d items, want 3", len(items))
		}
		// Newest first.
		if items[0].Description != "tx 3" {
			t.Errorf("first item = %q, want latest", items[0].Description)
		}

		rest, _, err := store.TransactionsByAccount(ctx, alice.ID, 3, 3)
		if err != nil {
			t.Fatalf("failed to list transactions: %v", err)
		}
		if len(rest) != 2 {
			t.Errorf("second window = %d items, want 2", len(rest))
		}
	})
}

func TestArticles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	article, err := store.CreateArticle(ctx, "Club-Mate", "4029764001807", 150, 1000)
	if err != nil {
		t.Fatalf("failed to create article: %v", err)
	}
	if article.Price != 150 {
		t.Errorf("price = %d, want 150", article.Price)
	}

	if err := store.AddArticlePrice(ctx, article.ID, 200, 2000); err != nil {
		t.Fatalf("failed to add price: %v", err)
	}

	t.Run("price at a point in time", func(t *testing.T) {
		cases := []struct {
			at   int64
			want int64
		}{
			{at: 1000, want: 150},
			{at: 1999, want: 150},
			{at: 2000, want: 200},
			{at: 5000, want: 200},
		}
		for _, tc := range cases {
			got, err := store.ArticlePriceAt(ctx, article.ID, tc.at)
			if err != nil {
				t.Fatalf("ArticlePriceAt(%d) failed: %v", tc.at, err)
			}
			if int64(got) != tc.want {
				t.Errorf("ArticlePriceAt(%d) = %d, want %d", tc.at, got, tc.want)
			}
		}
		if _, err := store.ArticlePriceAt(ctx, article.ID, 500); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("before first price: got %v, want ErrNotFound", err)
		}
	})

	t.Run("listing carries the current price", func(t *testing.T) {
		articles, err := store.ListArticles(ctx)
		if err != nil {
			t.Fatalf("failed to list articles: %v", err)
		}
		if len(articles) != 1 {
			t.Fatalf("listed %d articles, want 1", len(articles))
		}
		if articles[0].Price != 200 {
			t.Errorf("listed price = %d, want 200", articles[0].Price)
		}
	})
}

func TestInTx(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice, err := store.CreateAccount(ctx, "alice", "")
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}

	t.Run("rolls back on error", func(t *testing.T) {
		sentinel := errors.New("boom")
		err := store.InTx(ctx, func(st storage.Store) error {
			if err := st.UpdateAccountBalance(ctx, alice.ID, 999); err != nil {
				return err
			}
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("got %v, want sentinel error", err)
		}
		got, err := store.GetAccount(ctx, alice.ID)
		if err != nil {
			t.Fatalf("failed to get account: %v", err)
		}
		if got.Balance != 0 {
			t.Errorf("balance = %d after rollback, want 0", got.Balance)
		}
	})

	t.Run("commits on success and joins nested calls", func(t *testing.T) {
		err := store.InTx(ctx, func(st storage.Store) error {
			return st.InTx(ctx, func(inner storage.Store) error {
				return inner.UpdateAccountBalance(ctx, alice.ID, 500)
			})
		})
		if err != nil {
			t.Fatalf("transaction failed: %v", err)
		}
		got, err := store.GetAccount(ctx, alice.ID)
		if err != nil {
			t.Fatalf("failed to get account: %v", err)
		}
		if got.Balance != 500 {
			t.Errorf("balance = %d, want 500", got.Balance)
		}
	})
}
