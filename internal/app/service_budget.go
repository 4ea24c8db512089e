/**
 * @description
 * Budget bookkeeping operations: one budget per owner with running
 * expense/income totals and an append-only entry history.
 */

package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/blockbudget/ledger-service/internal/domain"
	"github.com/blockbudget/ledger-service/internal/store"
)

// CreateBudget creates the owner's budget. Each owner keeps a single budget.
func (s *Service) CreateBudget(ctx context.Context, ownerID uuid.UUID, name string, timeframeDays int) (*domain.Budget, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrInvalidOwner
	}
	if timeframeDays <= 0 {
		return nil, domain.ErrInvalidDuration
	}

	release, err := s.locks.acquire(ownerID)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := s.repo.FindBudgetByOwner(ctx, ownerID); err == nil {
		return nil, domain.ErrBudgetExists
	} else if err != store.ErrBudgetNotFound {
		return nil, fmt.Errorf("failed to check existing budget: %w", err)
	}

	budget := &domain.Budget{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Name:          name,
		TimeframeDays: timeframeDays,
		CreatedAt:     s.clock(),
	}
	if err := s.repo.SaveBudget(ctx, budget); err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}
	return budget, nil
}

// RecordBudgetEntry appends an expense or income line and updates the
// budget's running totals.
func (s *Service) RecordBudgetEntry(ctx context.Context, ownerID uuid.UUID, kind domain.BudgetEntryKind, description, category string, amount int64) (*domain.BudgetEntry, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	release, err := s.locks.acquire(ownerID)
	if err != nil {
		return nil, err
	}
	defer release()

	budget, err := s.repo.FindBudgetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	entry := &domain.BudgetEntry{
		ID:          uuid.New(),
		BudgetID:    budget.ID,
		Kind:        kind,
		Description: description,
		Category:    category,
		Amount:      amount,
		RecordedAt:  s.clock(),
	}
	switch kind {
	case domain.BudgetExpense:
		budget.TotalExpenses += amount
	case domain.BudgetIncome:
		budget.TotalIncome += amount
	default:
		return nil, fmt.Errorf("unknown budget entry kind %q", kind)
	}

	// Persist the totals before the entry: a failed totals save must not
	// leave an entry behind that the totals never counted.
	if err := s.repo.SaveBudget(ctx, budget); err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}
	if err := s.repo.AddBudgetEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record budget entry: %w", err)
	}
	return entry, nil
}

// BudgetSummary reports the owner's budget totals and net position.
func (s *Service) BudgetSummary(ctx context.Context, ownerID uuid.UUID) (*domain.BudgetSummary, error) {
	budget, err := s.repo.FindBudgetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &domain.BudgetSummary{
		BudgetID:      budget.ID,
		Name:          budget.Name,
		TotalExpenses: budget.TotalExpenses,
		TotalIncome:   budget.TotalIncome,
		Net:           budget.TotalIncome - budget.TotalExpenses,
	}, nil
}

// ListBudgetEntries returns the owner's budget history.
func (s *Service) ListBudgetEntries(ctx context.Context, ownerID uuid.UUID) ([]domain.BudgetEntry, error) {
	budget, err := s.repo.FindBudgetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBudgetEntries(ctx, budget.ID)
}
