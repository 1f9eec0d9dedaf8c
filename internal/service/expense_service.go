package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/cache"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const (
	recentExpensesLimit = 10
	dashboardFanOut     = 4
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store     storage.Store
	stats     cache.StatsCache
	publisher events.Publisher
	now       func() time.Time
}

var _ api.ExpenseServiceHandler = (*ExpenseService)(nil)

// NewExpenseService creates an ExpenseService. A nil cache or publisher
// disables that feature.
func NewExpenseService(store storage.Store, stats cache.StatsCache, publisher events.Publisher) *ExpenseService {
	if stats == nil {
		stats = cache.NopStatsCache{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ExpenseService{
		store:     store,
		stats:     stats,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// loadExpense fetches an expense and its group, checking that memberID
// belongs to the group.
func (s *ExpenseService) loadExpense(ctx context.Context, expenseID, memberID string) (*models.Expense, *models.Group, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, nil, err
	}
	group, err := loadGroupForMember(ctx, s.store, expense.GroupID, memberID)
	if err != nil {
		return nil, nil, err
	}
	return expense, group, nil
}

// canModify reports whether memberID may edit, delete or recompute expense.
func canModify(expense *models.Expense, group *models.Group, memberID string) bool {
	return expense.CreatorID == memberID || group.IsOwner(memberID)
}

// afterWrite drops cached stats for the group and publishes event. Neither
// step can fail the request.
func (s *ExpenseService) afterWrite(ctx context.Context, event events.Event) {
	if err := s.stats.Invalidate(ctx, event.GroupID); err != nil {
		slog.Warn("Failed to invalidate stats cache", "group_id", event.GroupID, "error", err)
	}
	event.OccurredAt = s.now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish ledger event",
			"type", event.Type,
			"expense_id", event.ExpenseID,
			"error", err,
		)
	}
}

// CreateExpense records an expense and computes its allocations.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("CreateExpense request received",
		"group_id", msg.GroupID,
		"kind", msg.Kind,
		"amount", msg.Amount,
		"participants_count", len(msg.Participants),
	)

	if err := validateRequest(msg); err != nil {
		return nil, err
	}

	group, err := loadGroupForMember(ctx, s.store, msg.GroupID, memberID)
	if err != nil {
		slog.Warn("CreateExpense rejected", "group_id", msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	kind := models.ExpenseKind(msg.Kind)
	if kind == "" {
		kind = models.KindPersonal
	}
	payerID := msg.PayerID
	if payerID == "" {
		payerID = memberID
	}
	if !group.IsMember(payerID) {
		err := fmt.Errorf("%w: payer %q is not a group member", ledger.ErrInvalidParticipant, payerID)
		return nil, toConnectError(err)
	}

	allocations, err := ledger.ComputeAllocations(kind, msg.Amount, payerID, msg.Participants, group.Members)
	if err != nil {
		slog.Warn("CreateExpense allocation failed", "group_id", msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	date := s.now()
	if msg.Date != nil {
		date = msg.Date.UTC().Truncate(time.Second)
	}
	category := models.Category(msg.Category)
	if category == "" {
		category = models.CategoryOther
	}

	expense := &models.Expense{
		GroupID:     group.ID,
		Description: msg.Description,
		Amount:      msg.Amount,
		Category:    category,
		Date:        date,
		Kind:        kind,
		PayerID:     payerID,
		CreatorID:   memberID,
		Notes:       msg.Notes,
		Receipt:     msg.Receipt,
		Allocations: allocations,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "error", err)
		return nil, toConnectError(err)
	}

	metrics.ExpensesCreated.WithLabelValues(string(kind)).Inc()
	s.afterWrite(ctx, events.Event{
		Type:      events.ExpenseCreated,
		GroupID:   expense.GroupID,
		ExpenseID: expense.ID,
		ActorID:   memberID,
		Amount:    expense.Amount,
	})

	slog.Info("Expense created", "expense_id", expense.ID, "kind", kind, "allocations", len(allocations))
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: expense}), nil
}

// GetExpense retrieves one expense with its allocations.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, _, err := s.loadExpense(ctx, req.Msg.ExpenseID, memberID)
	if err != nil {
		slog.Warn("GetExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetExpenseResponse{Expense: expense}), nil
}

// filterExpenses keeps the expenses matching kind and category in place.
// An empty filter matches everything.
func filterExpenses(expenses []models.Expense, kind, category string) []models.Expense {
	filtered := expenses[:0]
	for _, e := range expenses {
		if kind != "" && string(e.Kind) != kind {
			continue
		}
		if category != "" && string(e.Category) != category {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

// ListExpenses lists a group's expenses, most recent first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	if _, err := loadGroupForMember(ctx, s.store, req.Msg.GroupID, memberID); err != nil {
		return nil, toConnectError(err)
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	filtered := filterExpenses(expenses, req.Msg.Kind, req.Msg.Category)

	slog.Info("ListExpenses successful", "group_id", req.Msg.GroupID, "count", len(filtered))
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: filtered}), nil
}

// UpdateExpense edits an expense's descriptive fields. Allocations are left
// as they are even when the amount changes.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("UpdateExpense request received", "expense_id", msg.ExpenseID)

	if err := validateRequest(msg); err != nil {
		return nil, err
	}

	expense, group, err := s.loadExpense(ctx, msg.ExpenseID, memberID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !canModify(expense, group, memberID) {
		return nil, toConnectError(fmt.Errorf("update expense %s: %w", expense.ID, ErrNotPermitted))
	}

	if msg.Description != nil {
		expense.Description = *msg.Description
	}
	if msg.Amount != nil {
		expense.Amount = *msg.Amount
	}
	if msg.Category != nil {
		expense.Category = models.Category(*msg.Category)
	}
	if msg.Date != nil {
		expense.Date = msg.Date.UTC().Truncate(time.Second)
	}
	if msg.Notes != nil {
		expense.Notes = *msg.Notes
	}
	if msg.Receipt != nil {
		expense.Receipt = *msg.Receipt
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.afterWrite(ctx, events.Event{
		Type:      events.ExpenseUpdated,
		GroupID:   expense.GroupID,
		ExpenseID: expense.ID,
		ActorID:   memberID,
		Amount:    expense.Amount,
	})

	slog.Info("Expense updated", "expense_id", expense.ID)
	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: expense}), nil
}

// DeleteExpense removes an expense and its allocations.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, group, err := s.loadExpense(ctx, req.Msg.ExpenseID, memberID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !canModify(expense, group, memberID) {
		return nil, toConnectError(fmt.Errorf("delete expense %s: %w", expense.ID, ErrNotPermitted))
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.afterWrite(ctx, events.Event{
		Type:      events.ExpenseDeleted,
		GroupID:   expense.GroupID,
		ExpenseID: expense.ID,
		ActorID:   memberID,
	})

	slog.Info("Expense deleted", "expense_id", expense.ID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// SettleExpense marks an allocation as paid back. Members settle their own
// allocation; the payer may settle anyone's.
func (s *ExpenseService) SettleExpense(ctx context.Context, req *connect.Request[api.SettleExpenseRequest]) (*connect.Response[api.SettleExpenseResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, _, err := s.loadExpense(ctx, req.Msg.ExpenseID, memberID)
	if err != nil {
		return nil, toConnectError(err)
	}

	target := req.Msg.MemberID
	if target == "" {
		target = memberID
	}
	if target != memberID && expense.PayerID != memberID {
		err := fmt.Errorf("settle %s for %s: only the payer may settle for another member: %w", expense.ID, target, ErrNotPermitted)
		return nil, toConnectError(err)
	}
	slog.Info("SettleExpense request received", "expense_id", expense.ID, "member_id", target)

	// Validate against the loaded copy; the store decides the real transition.
	now := s.now()
	if _, err := ledger.Settle(expense, target, now); err != nil {
		return nil, toConnectError(err)
	}

	changed, err := s.store.SettleAllocation(ctx, expense.ID, target, now)
	if err != nil {
		slog.Error("SettleExpense failed", "expense_id", expense.ID, "member_id", target, "error", err)
		return nil, toConnectError(err)
	}

	if changed {
		metrics.AllocationsSettled.Inc()
		s.afterWrite(ctx, events.Event{
			Type:      events.AllocationSettled,
			GroupID:   expense.GroupID,
			ExpenseID: expense.ID,
			ActorID:   memberID,
			MemberID:  target,
			Amount:    expense.Allocation(target).OwedAmount,
		})
	}

	settled, err := s.store.GetExpense(ctx, expense.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("SettleExpense successful", "expense_id", expense.ID, "member_id", target, "changed", changed)
	return connect.NewResponse(&api.SettleExpenseResponse{Expense: settled, Changed: changed}), nil
}

// RecomputeAllocations rebuilds an expense's allocations from its current
// amount, optionally with a new participant list.
func (s *ExpenseService) RecomputeAllocations(ctx context.Context, req *connect.Request[api.RecomputeAllocationsRequest]) (*connect.Response[api.RecomputeAllocationsResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, group, err := s.loadExpense(ctx, req.Msg.ExpenseID, memberID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !canModify(expense, group, memberID) {
		return nil, toConnectError(fmt.Errorf("recompute expense %s: %w", expense.ID, ErrNotPermitted))
	}

	if err := ledger.Recompute(expense, req.Msg.Participants, group.Members); err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.ReplaceAllocations(ctx, expense.ID, expense.Allocations); err != nil {
		slog.Error("RecomputeAllocations failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.afterWrite(ctx, events.Event{
		Type:      events.AllocationsRecomputed,
		GroupID:   expense.GroupID,
		ExpenseID: expense.ID,
		ActorID:   memberID,
		Amount:    expense.Amount,
	})

	updated, err := s.store.GetExpense(ctx, expense.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Allocations recomputed", "expense_id", expense.ID, "allocations", len(updated.Allocations))
	return connect.NewResponse(&api.RecomputeAllocationsResponse{Expense: updated}), nil
}

// groupStats returns memberID's stats for a group, served from the cache when possible.
func (s *ExpenseService) groupStats(ctx context.Context, groupID, memberID string) (ledger.Stats, error) {
	cached, ok, err := s.stats.GetStats(ctx, groupID, memberID)
	if err != nil {
		slog.Warn("Stats cache lookup failed", "group_id", groupID, "error", err)
	}
	if ok {
		return *cached, nil
	}

	// Taken before loading so a write that lands meanwhile makes SetStats a no-op.
	gen, genErr := s.stats.Generation(ctx, groupID)
	if genErr != nil {
		slog.Warn("Stats cache generation lookup failed", "group_id", groupID, "error", genErr)
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return ledger.Stats{}, err
	}
	stats := ledger.Summarize(expenses, memberID)

	if genErr == nil {
		if _, err := s.stats.SetStats(ctx, groupID, memberID, gen, stats); err != nil {
			slog.Warn("Failed to cache stats", "group_id", groupID, "error", err)
		}
	}
	return stats, nil
}

// GetGroupStats returns totals by category and kind plus the caller's balance.
func (s *ExpenseService) GetGroupStats(ctx context.Context, req *connect.Request[api.GetGroupStatsRequest]) (*connect.Response[api.GetGroupStatsResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	if _, err := loadGroupForMember(ctx, s.store, req.Msg.GroupID, memberID); err != nil {
		return nil, toConnectError(err)
	}

	stats, err := s.groupStats(ctx, req.Msg.GroupID, memberID)
	if err != nil {
		slog.Error("GetGroupStats failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetGroupStatsResponse{Stats: stats}), nil
}

// GetGroupBalances returns every member's net position and a simplified
// list of who should pay whom.
func (s *ExpenseService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	slog.Info("GetGroupBalances request received", "group_id", groupID)

	if _, err := loadGroupForMember(ctx, s.store, groupID, memberID); err != nil {
		return nil, toConnectError(err)
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		slog.Error("GetGroupBalances failed - could not list expenses", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	balances, debts := ledger.GroupBalances(expenses)

	slog.Info("GetGroupBalances successful",
		"group_id", groupID,
		"expenses_count", len(expenses),
		"members_count", len(balances),
		"debts_count", len(debts),
	)
	return connect.NewResponse(&api.GetGroupBalancesResponse{Balances: balances, Debts: debts}), nil
}

// loadMemberExpenses lists memberID's groups and loads each group's
// expenses concurrently. perGroup[i] belongs to groups[i].
func (s *ExpenseService) loadMemberExpenses(ctx context.Context, memberID string) (groups []*models.Group, perGroup [][]models.Expense, err error) {
	groups, err = s.store.ListGroupsByMember(ctx, memberID)
	if err != nil {
		return nil, nil, fmt.Errorf("list groups of %s: %w", memberID, err)
	}

	perGroup = make([][]models.Expense, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dashboardFanOut)
	for i, group := range groups {
		g.Go(func() error {
			expenses, err := s.store.ListExpensesByGroup(gctx, group.ID)
			if err != nil {
				return fmt.Errorf("load expenses of group %s: %w", group.ID, err)
			}
			perGroup[i] = expenses
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return groups, perGroup, nil
}

// sortByDateDesc orders expenses most recent first, keeping ties in place.
func sortByDateDesc(expenses []models.Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date)
	})
}

// GetDashboard summarizes every group the caller belongs to. Groups are
// loaded concurrently.
func (s *ExpenseService) GetDashboard(ctx context.Context, req *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}

	groups, perGroup, err := s.loadMemberExpenses(ctx, memberID)
	if err != nil {
		slog.Error("GetDashboard failed", "member_id", memberID, "error", err)
		return nil, toConnectError(err)
	}

	summaries := make([]api.GroupSummary, len(groups))
	var all []models.Expense
	for i, group := range groups {
		summaries[i] = api.GroupSummary{
			GroupID:   group.ID,
			GroupName: group.Name,
			Stats:     ledger.Summarize(perGroup[i], memberID),
		}
		all = append(all, perGroup[i]...)
	}

	recent := make([]models.Expense, len(all))
	copy(recent, all)
	sortByDateDesc(recent)
	if len(recent) > recentExpensesLimit {
		recent = recent[:recentExpensesLimit]
	}

	slog.Info("GetDashboard successful", "member_id", memberID, "groups", len(groups), "expenses", len(all))
	return connect.NewResponse(&api.GetDashboardResponse{
		Groups:         summaries,
		Totals:         ledger.Summarize(all, memberID),
		RecentExpenses: recent,
	}), nil
}

// ListMemberExpenses lists every expense in the groups the caller belongs
// to, most recent first.
func (s *ExpenseService) ListMemberExpenses(ctx context.Context, req *connect.Request[api.ListMemberExpensesRequest]) (*connect.Response[api.ListMemberExpensesResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	groups, perGroup, err := s.loadMemberExpenses(ctx, memberID)
	if err != nil {
		slog.Error("ListMemberExpenses failed", "member_id", memberID, "error", err)
		return nil, toConnectError(err)
	}

	expenses := []models.Expense{}
	for _, group := range perGroup {
		expenses = append(expenses, filterExpenses(group, req.Msg.Kind, req.Msg.Category)...)
	}
	sortByDateDesc(expenses)

	slog.Info("ListMemberExpenses successful", "member_id", memberID, "groups", len(groups), "count", len(expenses))
	return connect.NewResponse(&api.ListMemberExpensesResponse{
		Expenses:    expenses,
		TotalGroups: len(groups),
	}), nil
}
