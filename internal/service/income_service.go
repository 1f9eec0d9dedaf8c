package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// IncomeService implements the Connect IncomeService. Incomes are private
// to the member who recorded them.
type IncomeService struct {
	store storage.IncomeStore
}

var _ api.IncomeServiceHandler = (*IncomeService)(nil)

// NewIncomeService creates a new IncomeService.
func NewIncomeService(store storage.IncomeStore) *IncomeService {
	return &IncomeService{store: store}
}

func checkIncomeDates(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("end_date %s is before start_date %s",
			end.Format(time.DateOnly), start.Format(time.DateOnly)))
	}
	return nil
}

func truncateDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC().Truncate(time.Second)
	return &v
}

// loadOwnIncome fetches an active income owned by memberID. Other members'
// incomes and deactivated ones look missing.
func (s *IncomeService) loadOwnIncome(ctx context.Context, incomeID, memberID string) (*models.Income, error) {
	income, err := s.store.GetIncome(ctx, incomeID)
	if err != nil {
		return nil, err
	}
	if income.UserID != memberID {
		return nil, fmt.Errorf("income %s: %w", incomeID, ErrNotPermitted)
	}
	if !income.Active {
		return nil, fmt.Errorf("income %s is inactive: %w", incomeID, storage.ErrNotFound)
	}
	return income, nil
}

// CreateIncome records an income source for the caller.
func (s *IncomeService) CreateIncome(ctx context.Context, req *connect.Request[api.CreateIncomeRequest]) (*connect.Response[api.CreateIncomeResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("CreateIncome request received", "source", msg.Source, "frequency", msg.Frequency)

	if err := validateRequest(msg); err != nil {
		return nil, err
	}

	income := &models.Income{
		UserID:      memberID,
		Source:      msg.Source,
		Amount:      msg.Amount,
		Category:    models.IncomeCategory(msg.Category),
		Frequency:   models.IncomeFrequency(msg.Frequency),
		EndDate:     truncateDate(msg.EndDate),
		Description: msg.Description,
		Tags:        msg.Tags,
	}
	if start := truncateDate(msg.StartDate); start != nil {
		income.StartDate = *start
	} else {
		income.StartDate = time.Now().UTC().Truncate(time.Second)
	}
	if err := checkIncomeDates(income.StartDate, income.EndDate); err != nil {
		return nil, err
	}

	if err := s.store.CreateIncome(ctx, income); err != nil {
		slog.Error("CreateIncome failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Income created", "income_id", income.ID)
	return connect.NewResponse(&api.CreateIncomeResponse{Income: income}), nil
}

// GetIncome returns one of the caller's active incomes.
func (s *IncomeService) GetIncome(ctx context.Context, req *connect.Request[api.GetIncomeRequest]) (*connect.Response[api.GetIncomeResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	income, err := s.loadOwnIncome(ctx, req.Msg.IncomeID, memberID)
	if err != nil {
		slog.Warn("GetIncome failed", "income_id", req.Msg.IncomeID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetIncomeResponse{Income: income}), nil
}

// ListIncomes lists the caller's active incomes, newest first.
func (s *IncomeService) ListIncomes(ctx context.Context, req *connect.Request[api.ListIncomesRequest]) (*connect.Response[api.ListIncomesResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}

	incomes, err := s.store.ListIncomesByUser(ctx, memberID)
	if err != nil {
		slog.Error("ListIncomes failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListIncomesResponse{Incomes: incomes}), nil
}

// UpdateIncome edits the fields that are set on the request.
func (s *IncomeService) UpdateIncome(ctx context.Context, req *connect.Request[api.UpdateIncomeRequest]) (*connect.Response[api.UpdateIncomeResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	if err := validateRequest(msg); err != nil {
		return nil, err
	}

	income, err := s.loadOwnIncome(ctx, msg.IncomeID, memberID)
	if err != nil {
		return nil, toConnectError(err)
	}

	if msg.Source != nil {
		income.Source = *msg.Source
	}
	if msg.Amount != nil {
		income.Amount = *msg.Amount
	}
	if msg.Category != nil {
		income.Category = models.IncomeCategory(*msg.Category)
	}
	if msg.Frequency != nil {
		income.Frequency = models.IncomeFrequency(*msg.Frequency)
	}
	if msg.StartDate != nil {
		income.StartDate = *truncateDate(msg.StartDate)
	}
	if msg.EndDate != nil {
		income.EndDate = truncateDate(msg.EndDate)
	}
	if msg.Description != nil {
		income.Description = *msg.Description
	}
	if msg.Tags != nil {
		income.Tags = msg.Tags
	}
	if err := checkIncomeDates(income.StartDate, income.EndDate); err != nil {
		return nil, err
	}

	if err := s.store.UpdateIncome(ctx, income); err != nil {
		slog.Error("UpdateIncome failed", "income_id", income.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Income updated", "income_id", income.ID)
	return connect.NewResponse(&api.UpdateIncomeResponse{Income: income}), nil
}

// DeleteIncome deactivates an income; it stops counting toward summaries.
func (s *IncomeService) DeleteIncome(ctx context.Context, req *connect.Request[api.DeleteIncomeRequest]) (*connect.Response[api.DeleteIncomeResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	income, err := s.loadOwnIncome(ctx, req.Msg.IncomeID, memberID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.DeactivateIncome(ctx, income.ID); err != nil {
		slog.Error("DeleteIncome failed", "income_id", income.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Income deactivated", "income_id", income.ID)
	return connect.NewResponse(&api.DeleteIncomeResponse{}), nil
}

// GetIncomeSummary normalizes the caller's active incomes to monthly and yearly figures.
func (s *IncomeService) GetIncomeSummary(ctx context.Context, req *connect.Request[api.GetIncomeSummaryRequest]) (*connect.Response[api.GetIncomeSummaryResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}

	incomes, err := s.store.ListIncomesByUser(ctx, memberID)
	if err != nil {
		slog.Error("GetIncomeSummary failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetIncomeSummaryResponse{Summary: ledger.SummarizeIncome(incomes)}), nil
}
