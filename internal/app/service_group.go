/**
 * @description
 * Contribution group operations: lifecycle, membership, pooled contributions,
 * late fee assessment, distributions, multi-approver proposals, and
 * dissolution with pro-rata refunds.
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

// CreateGroup creates a contribution group with the caller as first admin.
func (s *Service) CreateGroup(ctx context.Context, p ledger.CreateGroupParams) (*domain.Group, error) {
	group, events, err := ledger.CreateGroup(p, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to save group: %w", err)
	}
	s.publish(ctx, events)
	return group, nil
}

// GetGroup fetches one group.
func (s *Service) GetGroup(ctx context.Context, groupID uuid.UUID) (*domain.Group, error) {
	return s.repo.FindGroupByID(ctx, groupID)
}

// withGroup runs fn against the group under its entity lock and persists the
// result when fn succeeds.
func (s *Service) withGroup(ctx context.Context, groupID uuid.UUID, fn func(*domain.Group, time.Time) ([]domain.Event, error)) (*domain.Group, error) {
	release, err := s.locks.acquire(groupID)
	if err != nil {
		return nil, err
	}
	defer release()

	group, err := s.repo.FindGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	events, err := fn(group, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to save group: %w", err)
	}
	s.publish(ctx, events)
	return group, nil
}

// JoinGroup adds the caller to the group, reactivating a prior membership.
func (s *Service) JoinGroup(ctx context.Context, groupID, userID uuid.UUID) (*domain.Group, error) {
	return s.withGroup(ctx, groupID, func(g *domain.Group, now time.Time) ([]domain.Event, error) {
		return ledger.JoinGroup(g, userID, now)
	})
}

// LeaveGroup removes the caller from the group and computes their refund.
func (s *Service) LeaveGroup(ctx context.Context, groupID, userID uuid.UUID) (*domain.GroupLeaveResult, error) {
	var result *domain.GroupLeaveResult
	_, err := s.withGroup(ctx, groupID, func(g *domain.Group, now time.Time) ([]domain.Event, error) {
		res, events, err := ledger.LeaveGroup(g, userID, now)
		result = res
		return events, err
	})
	return result, err
}

// MakeGroupContribution records a contribution into the group pool.
func (s *Service) MakeGroupContribution(ctx context.Context, groupID, userID uuid.UUID, amount int64) (*domain.Group, error) {
	return s.withGroup(ctx, groupID, func(g *domain.Group, now time.Time) ([]domain.Event, error) {
		return ledger.MakeContribution(g, userID, amount, now)
	})
}

// HandleLateFees assesses the late fee owed by an overdue member.
func (s *Service) HandleLateFees(ctx context.Context, groupID, userID uuid.UUID) (int64, error) {
	var fee int64
	_, err := s.withGroup(ctx, groupID, func(g *domain.Group, now time.Time) ([]domain.Event, error) {
		charged, events, err := ledger.HandleLateFees(g, userID, now)
		fee = charged
		return events, err
	})
	return fee, err
}

// Distribute pays out from the group pool to the selected member.
func (s *Service) Distribute(ctx context.Context, groupID, caller uuid.UUID, amount int64, recipient uuid.UUID) (*domain.GroupMember, error) {
	var paid *domain.GroupMember
	_, err := s.withGroup(ctx, groupID, func(g *domain.Group, now time.Time) ([]domain.Event, error) {
		member, events, err := ledger.Distribute(g, caller, amount, recipient, now)
		paid = member
		return events, err
	})
	return paid, err
}

// ProposeTransaction opens a spend proposal with the proposer's approval
// counted; executes immediately when quorum is one.
func (s *Service) ProposeTransaction(ctx context.Context, groupID, proposer uuid.UUID, description string, value int64) (*domain.GroupProposal, error) {
	var proposal *domain.GroupProposal
	_, err := s.withGroup(ctx, groupID, func(g *domain.Group, now time.Time) ([]domain.Event, error) {
		p, events, err := ledger.ProposeTransaction(g, proposer, description, value, now)
		proposal = p
		return events, err
	})
	return proposal, err
}

// ApproveTransaction records an approval, executing the proposal at quorum.
func (s *Service) ApproveTransaction(ctx context.Context, groupID, approver, proposalID uuid.UUID) (*domain.GroupProposal, error) {
	var proposal *domain.GroupProposal
	_, err := s.withGroup(ctx, groupID, func(g *domain.Group, now time.Time) ([]domain.Event, error) {
		p, events, err := ledger.ApproveTransaction(g, approver, proposalID, now)
		proposal = p
		return events, err
	})
	return proposal, err
}

// SetMemberRole toggles a member's admin and approver flags.
func (s *Service) SetMemberRole(ctx context.Context, groupID, caller, userID uuid.UUID, isAdmin, isApprover bool) (*domain.Group, error) {
	return s.withGroup(ctx, groupID, func(g *domain.Group, now time.Time) ([]domain.Event, error) {
		return ledger.SetMemberRole(g, caller, userID, isAdmin, isApprover, now)
	})
}

// DissolveGroup terminates the group and reports per-member refunds.
func (s *Service) DissolveGroup(ctx context.Context, groupID, caller uuid.UUID) (map[uuid.UUID]int64, error) {
	var refunds map[uuid.UUID]int64
	_, err := s.withGroup(ctx, groupID, func(g *domain.Group, now time.Time) ([]domain.Event, error) {
		r, events, err := ledger.DissolveGroup(g, caller, now)
		refunds = r
		return events, err
	})
	return refunds, err
}
