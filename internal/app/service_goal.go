/**
 * @description
 * Goal operations of the ledger service: creation, milestones, contributions,
 * penalty-adjusted withdrawals, completion checks, modification, and owner
 * emergency actions. Each mutating operation serializes on the goal's entity
 * lock and persists the aggregate whole.
 */

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blockbudget/ledger-service/internal/domain"
	"github.com/blockbudget/ledger-service/internal/ledger"
)

// CreateGoal creates a savings goal owned by the caller.
func (s *Service) CreateGoal(ctx context.Context, p ledger.CreateGoalParams) (*domain.Goal, error) {
	goal, events, err := ledger.CreateGoal(p, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to save goal: %w", err)
	}
	s.publish(ctx, events)
	return goal, nil
}

// GetGoal fetches one goal.
func (s *Service) GetGoal(ctx context.Context, goalID uuid.UUID) (*domain.Goal, error) {
	return s.repo.FindGoalByID(ctx, goalID)
}

// ListGoals returns the caller's goals.
func (s *Service) ListGoals(ctx context.Context, ownerID uuid.UUID) ([]domain.Goal, error) {
	return s.repo.ListGoalsByOwner(ctx, ownerID)
}

// withGoal runs fn against the goal under its entity lock and persists the
// result when fn succeeds.
func (s *Service) withGoal(ctx context.Context, goalID uuid.UUID, fn func(*domain.Goal, time.Time) ([]domain.Event, error)) (*domain.Goal, error) {
	release, err := s.locks.acquire(goalID)
	if err != nil {
		return nil, err
	}
	defer release()

	goal, err := s.repo.FindGoalByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	events, err := fn(goal, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to save goal: %w", err)
	}
	s.publish(ctx, events)
	return goal, nil
}

// DefineMilestone appends a milestone to the caller's goal.
func (s *Service) DefineMilestone(ctx context.Context, goalID, caller uuid.UUID, description string, targetAmount int64, deadline time.Time, rewardAmount int64) (*domain.Goal, error) {
	return s.withGoal(ctx, goalID, func(goal *domain.Goal, now time.Time) ([]domain.Event, error) {
		return nil, ledger.DefineMilestone(goal, caller, description, targetAmount, deadline, rewardAmount)
	})
}

// CheckMilestoneProgress marks the milestone completed once covered.
func (s *Service) CheckMilestoneProgress(ctx context.Context, goalID uuid.UUID, index int) (bool, error) {
	var achieved bool
	_, err := s.withGoal(ctx, goalID, func(goal *domain.Goal, now time.Time) ([]domain.Event, error) {
		done, events, err := ledger.CheckMilestoneProgress(goal, index, now)
		achieved = done
		return events, err
	})
	return achieved, err
}

// ContributeToGoal adds a contribution to the goal.
func (s *Service) ContributeToGoal(ctx context.Context, goalID, contributor uuid.UUID, amount int64) (*domain.Goal, error) {
	return s.withGoal(ctx, goalID, func(goal *domain.Goal, now time.Time) ([]domain.Event, error) {
		return ledger.ContributeToGoal(goal, contributor, amount, now)
	})
}

// WithdrawFromGoal withdraws from the goal, reporting net payout and penalty.
func (s *Service) WithdrawFromGoal(ctx context.Context, goalID, caller uuid.UUID, amount int64, isEmergency bool) (*domain.GoalWithdrawal, error) {
	var result *domain.GoalWithdrawal
	_, err := s.withGoal(ctx, goalID, func(goal *domain.Goal, now time.Time) ([]domain.Event, error) {
		res, events, err := ledger.WithdrawFromGoal(goal, caller, amount, isEmergency, now)
		result = res
		return events, err
	})
	return result, err
}

// VerifyGoalCompletion transitions the goal to Completed when the target is
// reached. Idempotent.
func (s *Service) VerifyGoalCompletion(ctx context.Context, goalID uuid.UUID) (bool, error) {
	var completed bool
	_, err := s.withGoal(ctx, goalID, func(goal *domain.Goal, now time.Time) ([]domain.Event, error) {
		done, events, err := ledger.VerifyGoalCompletion(goal, now)
		completed = done
		return events, err
	})
	return completed, err
}

// ModifyGoal updates target and/or deadline; zero values leave fields as-is.
func (s *Service) ModifyGoal(ctx context.Context, goalID, caller uuid.UUID, newTarget int64, newDeadline time.Time) (*domain.Goal, error) {
	return s.withGoal(ctx, goalID, func(goal *domain.Goal, now time.Time) ([]domain.Event, error) {
		return ledger.ModifyGoal(goal, caller, newTarget, newDeadline, now)
	})
}

// EmergencyGoalAction freezes or cancels the goal, reporting the amount to
// return to the owner on cancellation.
func (s *Service) EmergencyGoalAction(ctx context.Context, goalID, caller uuid.UUID, action domain.EmergencyAction, reason string) (int64, error) {
	var refund int64
	_, err := s.withGoal(ctx, goalID, func(goal *domain.Goal, now time.Time) ([]domain.Event, error) {
		amount, events, err := ledger.EmergencyGoalAction(goal, caller, action, reason, now)
		refund = amount
		return events, err
	})
	return refund, err
}

// ResumeGoal re-activates a paused goal.
func (s *Service) ResumeGoal(ctx context.Context, goalID, caller uuid.UUID) (*domain.Goal, error) {
	return s.withGoal(ctx, goalID, func(goal *domain.Goal, now time.Time) ([]domain.Event, error) {
		return ledger.ResumeGoal(goal, caller, now)
	})
}
