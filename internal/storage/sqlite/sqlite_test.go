package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestGroup(t *testing.T, store *SQLiteStore, owner string, members ...string) *models.Group {
	t.Helper()
	group := &models.Group{Name: "Flat 3B", OwnerID: owner, Members: members}
	require.NoError(t, store.CreateGroup(context.Background(), group))
	return group
}

func splitExpense(groupID string) *models.Expense {
	return &models.Expense{
		GroupID:     groupID,
		Description: "Dinner",
		Amount:      90,
		Category:    models.CategoryFood,
		Date:        time.Date(2025, 3, 14, 19, 30, 0, 0, time.UTC),
		Kind:        models.KindSplit,
		PayerID:     "alice",
		CreatorID:   "alice",
		Allocations: []models.Allocation{
			{MemberID: "bob", OwedAmount: 30},
			{MemberID: "charlie", OwedAmount: 30},
		},
	}
}

func TestGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup adds owner and defaults", func(t *testing.T) {
		group := createTestGroup(t, store, "alice", "bob", "charlie")

		assert.NotEmpty(t, group.ID)
		assert.Equal(t, []string{"alice", "bob", "charlie"}, group.Members)
		assert.Equal(t, models.GroupOther, group.Type)
		assert.Equal(t, models.DefaultCurrency, group.Currency)

		got, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, group.Name, got.Name)
		assert.Equal(t, []string{"alice", "bob", "charlie"}, got.Members)
		assert.True(t, got.IsOwner("alice"))
	})

	t.Run("ListGroupsByMember only returns groups of the member", func(t *testing.T) {
		s := newTestStore(t)
		createTestGroup(t, s, "alice", "bob")
		createTestGroup(t, s, "bob", "diana")
		createTestGroup(t, s, "erin")

		groups, err := s.ListGroupsByMember(ctx, "bob")
		require.NoError(t, err)
		assert.Len(t, groups, 2)
		for _, g := range groups {
			assert.True(t, g.IsMember("bob"))
		}

		none, err := s.ListGroupsByMember(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("GetGroup missing", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("UpdateGroup keeps owner and members", func(t *testing.T) {
		group := createTestGroup(t, store, "alice", "bob")
		group.Name = "Flat 4C"
		group.Description = "top floor"
		group.Type = models.GroupRoommates
		group.Currency = "EUR"
		group.OwnerID = "bob"
		group.Members = []string{"bob"}
		require.NoError(t, store.UpdateGroup(ctx, group))

		got, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, "Flat 4C", got.Name)
		assert.Equal(t, "top floor", got.Description)
		assert.Equal(t, models.GroupRoommates, got.Type)
		assert.Equal(t, "EUR", got.Currency)
		assert.Equal(t, "alice", got.OwnerID)
		assert.Equal(t, []string{"alice", "bob"}, got.Members)

		assert.ErrorIs(t, store.UpdateGroup(ctx, &models.Group{ID: "missing"}), storage.ErrNotFound)
	})

	t.Run("DeleteGroup cascades to expenses", func(t *testing.T) {
		group := createTestGroup(t, store, "alice", "bob", "charlie")
		expense := splitExpense(group.ID)
		require.NoError(t, store.CreateExpense(ctx, expense))

		require.NoError(t, store.DeleteGroup(ctx, group.ID))

		_, err := store.GetExpense(ctx, expense.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteGroup(ctx, group.ID), storage.ErrNotFound)
	})
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := createTestGroup(t, store, "alice", "bob", "charlie")

	t.Run("CreateExpense round trip", func(t *testing.T) {
		expense := splitExpense(group.ID)
		require.NoError(t, store.CreateExpense(ctx, expense))
		assert.NotEmpty(t, expense.ID)
		assert.False(t, expense.CreatedAt.IsZero())

		got, err := store.GetExpense(ctx, expense.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dinner", got.Description)
		assert.Equal(t, 90.0, got.Amount)
		assert.Equal(t, models.KindSplit, got.Kind)
		assert.True(t, expense.Date.Equal(got.Date))
		assert.Equal(t, []string{"bob", "charlie"}, got.ParticipantIDs())
		for _, a := range got.Allocations {
			assert.Equal(t, 30.0, a.OwedAmount)
			assert.False(t, a.Settled)
			assert.Nil(t, a.SettledAt)
		}
	})

	t.Run("personal expense has no allocations", func(t *testing.T) {
		expense := &models.Expense{
			GroupID:     group.ID,
			Description: "Coffee",
			Amount:      4.5,
			Kind:        models.KindPersonal,
			PayerID:     "bob",
			CreatorID:   "bob",
		}
		require.NoError(t, store.CreateExpense(ctx, expense))

		got, err := store.GetExpense(ctx, expense.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CategoryOther, got.Category)
		assert.NotNil(t, got.Allocations)
		assert.Empty(t, got.Allocations)
	})

	t.Run("ListExpensesByGroup newest first with allocations", func(t *testing.T) {
		s := newTestStore(t)
		g := createTestGroup(t, s, "alice", "bob", "charlie")

		older := splitExpense(g.ID)
		older.Date = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		newer := splitExpense(g.ID)
		newer.Description = "Groceries"
		newer.Date = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, s.CreateExpense(ctx, older))
		require.NoError(t, s.CreateExpense(ctx, newer))

		expenses, err := s.ListExpensesByGroup(ctx, g.ID)
		require.NoError(t, err)
		require.Len(t, expenses, 2)
		assert.Equal(t, "Groceries", expenses[0].Description)
		assert.Equal(t, "Dinner", expenses[1].Description)
		assert.Len(t, expenses[0].Allocations, 2)
		assert.Len(t, expenses[1].Allocations, 2)
	})

	t.Run("UpdateExpense keeps allocations", func(t *testing.T) {
		expense := splitExpense(group.ID)
		require.NoError(t, store.CreateExpense(ctx, expense))

		expense.Amount = 120
		expense.Description = "Dinner and drinks"
		require.NoError(t, store.UpdateExpense(ctx, expense))

		got, err := store.GetExpense(ctx, expense.ID)
		require.NoError(t, err)
		assert.Equal(t, 120.0, got.Amount)
		assert.Equal(t, "Dinner and drinks", got.Description)
		assert.Equal(t, 30.0, got.Allocations[0].OwedAmount)
	})

	t.Run("ReplaceAllocations", func(t *testing.T) {
		expense := splitExpense(group.ID)
		require.NoError(t, store.CreateExpense(ctx, expense))

		settledAt := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
		replacement := []models.Allocation{
			{MemberID: "charlie", OwedAmount: 45, Settled: true, SettledAt: &settledAt},
		}
		require.NoError(t, store.ReplaceAllocations(ctx, expense.ID, replacement))

		got, err := store.GetExpense(ctx, expense.ID)
		require.NoError(t, err)
		require.Len(t, got.Allocations, 1)
		assert.Equal(t, "charlie", got.Allocations[0].MemberID)
		assert.True(t, got.Allocations[0].Settled)
		require.NotNil(t, got.Allocations[0].SettledAt)
		assert.True(t, settledAt.Equal(*got.Allocations[0].SettledAt))

		err = store.ReplaceAllocations(ctx, "missing", replacement)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("UpdateExpense cannot change the payer", func(t *testing.T) {
		expense := splitExpense(group.ID)
		require.NoError(t, store.CreateExpense(ctx, expense))

		expense.PayerID = "bob"
		require.NoError(t, store.UpdateExpense(ctx, expense))

		got, err := store.GetExpense(ctx, expense.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.PayerID)
	})

	t.Run("ReplaceAllocations keeps settlements made after the load", func(t *testing.T) {
		expense := splitExpense(group.ID)
		require.NoError(t, store.CreateExpense(ctx, expense))

		stale, err := store.GetExpense(ctx, expense.ID)
		require.NoError(t, err)

		settledAt := time.Date(2025, 3, 16, 8, 0, 0, 0, time.UTC)
		changed, err := store.SettleAllocation(ctx, expense.ID, "bob", settledAt)
		require.NoError(t, err)
		require.True(t, changed)

		stale.Amount = 120
		require.NoError(t, ledger.Recompute(stale, nil, group.Members))
		require.False(t, stale.Allocation("bob").Settled)
		require.NoError(t, store.ReplaceAllocations(ctx, expense.ID, stale.Allocations))

		got, err := store.GetExpense(ctx, expense.ID)
		require.NoError(t, err)
		bob := got.Allocation("bob")
		require.NotNil(t, bob)
		assert.Equal(t, 40.0, bob.OwedAmount)
		assert.True(t, bob.Settled)
		require.NotNil(t, bob.SettledAt)
		assert.True(t, settledAt.Equal(*bob.SettledAt))
		assert.False(t, got.Allocation("charlie").Settled)
		// The caller's slice is left as it was.
		assert.False(t, stale.Allocation("bob").Settled)
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		expense := splitExpense(group.ID)
		require.NoError(t, store.CreateExpense(ctx, expense))
		require.NoError(t, store.DeleteExpense(ctx, expense.ID))

		_, err := store.GetExpense(ctx, expense.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteExpense(ctx, expense.ID), storage.ErrNotFound)
	})
}

func TestSettleAllocation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := createTestGroup(t, store, "alice", "bob", "charlie")

	t.Run("settles once and keeps the first timestamp", func(t *testing.T) {
		expense := splitExpense(group.ID)
		require.NoError(t, store.CreateExpense(ctx, expense))

		first := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
		changed, err := store.SettleAllocation(ctx, expense.ID, "bob", first)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = store.SettleAllocation(ctx, expense.ID, "bob", first.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, changed)

		got, err := store.GetExpense(ctx, expense.ID)
		require.NoError(t, err)
		bob := got.Allocation("bob")
		require.NotNil(t, bob)
		assert.True(t, bob.Settled)
		require.NotNil(t, bob.SettledAt)
		assert.True(t, first.Equal(*bob.SettledAt))
		assert.False(t, got.Allocation("charlie").Settled)
	})

	t.Run("unknown allocation", func(t *testing.T) {
		expense := splitExpense(group.ID)
		require.NoError(t, store.CreateExpense(ctx, expense))

		_, err := store.SettleAllocation(ctx, expense.ID, "diana", time.Now())
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("concurrent settle has exactly one winner", func(t *testing.T) {
		expense := splitExpense(group.ID)
		require.NoError(t, store.CreateExpense(ctx, expense))

		const callers = 8
		var wg sync.WaitGroup
		var mu sync.Mutex
		wins := 0
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				changed, err := store.SettleAllocation(ctx, expense.ID, "charlie", time.Now())
				assert.NoError(t, err)
				if changed {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("alice@example.com", "Alice", "hash")
	require.NoError(t, store.CreateUser(ctx, user))

	t.Run("lookup by email and id", func(t *testing.T) {
		byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)

		byID, err := store.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", byID.DisplayName)
		assert.Equal(t, models.DefaultCurrency, byID.Currency)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := store.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = store.GetUserByID(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := store.CreateUser(ctx, models.NewUser("alice@example.com", "Other Alice", "hash"))
		assert.Error(t, err)
	})

	t.Run("GetUsersByIDs skips unknown ids", func(t *testing.T) {
		bob := models.NewUser("bob@example.com", "Bob", "hash")
		require.NoError(t, store.CreateUser(ctx, bob))

		users, err := store.GetUsersByIDs(ctx, []string{user.ID, bob.ID, "ghost"})
		require.NoError(t, err)
		assert.Len(t, users, 2)
		assert.Equal(t, "Bob", users[bob.ID].DisplayName)

		empty, err := store.GetUsersByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("UpdateUser", func(t *testing.T) {
		user.DisplayName = "Alice B."
		user.Phone = "+15550100"
		user.Currency = "EUR"
		require.NoError(t, store.UpdateUser(ctx, user))

		got, err := store.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice B.", got.DisplayName)
		assert.Equal(t, "+15550100", got.Phone)
		assert.Equal(t, "EUR", got.Currency)

		assert.ErrorIs(t, store.UpdateUser(ctx, &models.User{ID: "missing"}), storage.ErrNotFound)
	})
}

func TestIncomes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	salary := &models.Income{
		UserID:    "alice",
		Source:    "Acme Corp",
		Amount:    5000,
		Category:  models.IncomeSalary,
		Frequency: models.FrequencyMonthly,
		Tags:      []string{"main", "w2"},
	}
	require.NoError(t, store.CreateIncome(ctx, salary))

	t.Run("create and get", func(t *testing.T) {
		assert.NotEmpty(t, salary.ID)
		assert.True(t, salary.Active)

		got, err := store.GetIncome(ctx, salary.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme Corp", got.Source)
		assert.Equal(t, models.FrequencyMonthly, got.Frequency)
		assert.Equal(t, []string{"main", "w2"}, got.Tags)
		assert.Nil(t, got.EndDate)
	})

	t.Run("update", func(t *testing.T) {
		end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		salary.Amount = 5500
		salary.EndDate = &end
		require.NoError(t, store.UpdateIncome(ctx, salary))

		got, err := store.GetIncome(ctx, salary.ID)
		require.NoError(t, err)
		assert.Equal(t, 5500.0, got.Amount)
		require.NotNil(t, got.EndDate)
		assert.True(t, end.Equal(*got.EndDate))
	})

	t.Run("deactivated incomes drop out of the list", func(t *testing.T) {
		gig := &models.Income{
			UserID:    "alice",
			Source:    "Weekend gigs",
			Amount:    200,
			Category:  models.IncomeFreelance,
			Frequency: models.FrequencyWeekly,
		}
		require.NoError(t, store.CreateIncome(ctx, gig))

		list, err := store.ListIncomesByUser(ctx, "alice")
		require.NoError(t, err)
		assert.Len(t, list, 2)

		require.NoError(t, store.DeactivateIncome(ctx, gig.ID))

		list, err = store.ListIncomesByUser(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, salary.ID, list[0].ID)

		got, err := store.GetIncome(ctx, gig.ID)
		require.NoError(t, err)
		assert.False(t, got.Active)
	})

	t.Run("missing income", func(t *testing.T) {
		_, err := store.GetIncome(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeactivateIncome(ctx, "missing"), storage.ErrNotFound)
	})
}
