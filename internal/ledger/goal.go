/**
 * @description
 * Accounting core for savings goals with milestones: contribution and
 * withdrawal bookkeeping, penalty-adjusted early withdrawal, idempotent
 * milestone and completion checks, and owner emergency actions.
 */

package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/blockbudget/ledger-service/internal/domain"
	"github.com/blockbudget/ledger-service/internal/fixedpoint"
)

// flatDefaultPenaltyBps is the pinned rate of the flat-default penalty
// policy, applied regardless of the goal's configured rate.
const flatDefaultPenaltyBps = 500

// CreateGoalParams carries the inputs for creating a goal.
type CreateGoalParams struct {
	OwnerID         uuid.UUID
	Name            string
	Type            domain.GoalType
	TargetAmount    int64
	Deadline        time.Time
	MinContribution int64
	PenaltyRateBps  int64
	PenaltyPolicy   domain.PenaltyPolicy
	IsFlexible      bool
	AutoContribute  bool
}

// CreateGoal builds a new goal in the Active state.
func CreateGoal(p CreateGoalParams, now time.Time) (*domain.Goal, []domain.Event, error) {
	if p.OwnerID == uuid.Nil {
		return nil, nil, domain.ErrInvalidOwner
	}
	if p.TargetAmount <= 0 {
		return nil, nil, domain.ErrInvalidTargetAmount
	}
	if !p.Deadline.After(now) {
		return nil, nil, domain.ErrInvalidDeadline
	}
	policy := p.PenaltyPolicy
	if policy == "" {
		policy = domain.PenaltyConfigured
	}

	goal := &domain.Goal{
		ID:              uuid.New(),
		OwnerID:         p.OwnerID,
		Name:            p.Name,
		Type:            p.Type,
		Status:          domain.GoalActive,
		TargetAmount:    p.TargetAmount,
		Deadline:        p.Deadline,
		CreatedAt:       now,
		MinContribution: p.MinContribution,
		PenaltyRateBps:  p.PenaltyRateBps,
		PenaltyPolicy:   policy,
		IsFlexible:      p.IsFlexible,
		AutoContribute:  p.AutoContribute,
	}
	events := []domain.Event{{
		Type:       domain.EventGoalCreated,
		EntityID:   goal.ID,
		Actor:      p.OwnerID,
		Amount:     p.TargetAmount,
		OccurredAt: now,
	}}
	return goal, events, nil
}

// DefineMilestone appends a milestone to the goal. Only the owner may add
// milestones, only while the goal is active, and a milestone may not outlive
// the goal's own deadline.
func DefineMilestone(goal *domain.Goal, caller uuid.UUID, description string, targetAmount int64, deadline time.Time, rewardAmount int64) error {
	if caller != goal.OwnerID {
		return domain.ErrNotGoalOwner
	}
	if goal.Status != domain.GoalActive {
		return domain.ErrGoalNotActive
	}
	if targetAmount <= 0 {
		return domain.ErrInvalidTargetAmount
	}
	if deadline.After(goal.Deadline) {
		return domain.ErrInvalidMilestone
	}
	goal.Milestones = append(goal.Milestones, domain.Milestone{
		Description:  description,
		TargetAmount: targetAmount,
		Deadline:     deadline,
		RewardAmount: rewardAmount,
	})
	return nil
}

// CheckMilestoneProgress marks the milestone completed once the goal's
// current amount covers its target. The transition is one-shot: repeated
// calls after completion return false and emit nothing.
func CheckMilestoneProgress(goal *domain.Goal, index int, now time.Time) (bool, []domain.Event, error) {
	if index < 0 || index >= len(goal.Milestones) {
		return false, nil, domain.ErrMilestoneNotFound
	}
	m := &goal.Milestones[index]
	if m.Completed || goal.CurrentAmount < m.TargetAmount {
		return false, nil, nil
	}
	m.Completed = true
	at := now
	m.CompletedAt = &at
	events := []domain.Event{{
		Type:       domain.EventMilestoneAchieved,
		EntityID:   goal.ID,
		Actor:      goal.OwnerID,
		Amount:     m.TargetAmount,
		Detail:     m.Description,
		OccurredAt: now,
	}}
	return true, events, nil
}

// ContributeToGoal increases the goal's current amount. Minimum-contribution
// enforcement and auto-contribute scheduling are caller policy.
func ContributeToGoal(goal *domain.Goal, contributor uuid.UUID, amount int64, now time.Time) ([]domain.Event, error) {
	if goal.Status != domain.GoalActive {
		return nil, domain.ErrGoalNotActive
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	current, err := fixedpoint.CheckedAdd(goal.CurrentAmount, amount)
	if err != nil {
		return nil, err
	}
	goal.CurrentAmount = current
	return []domain.Event{{
		Type:       domain.EventContributionMade,
		EntityID:   goal.ID,
		Actor:      contributor,
		Amount:     amount,
		OccurredAt: now,
	}}, nil
}

// goalPenaltyBps resolves the effective penalty rate under the goal's policy.
func goalPenaltyBps(goal *domain.Goal) int64 {
	if goal.PenaltyPolicy == domain.PenaltyFlatDefault {
		return flatDefaultPenaltyBps
	}
	return goal.PenaltyRateBps
}

// WithdrawFromGoal takes amount out of the goal. A penalty applies only when
// the goal is still active and the withdrawal is not an emergency; the
// current amount is reduced by the full amount while only the net is paid
// out.
func WithdrawFromGoal(goal *domain.Goal, caller uuid.UUID, amount int64, isEmergency bool, now time.Time) (*domain.GoalWithdrawal, []domain.Event, error) {
	if caller != goal.OwnerID {
		return nil, nil, domain.ErrNotGoalOwner
	}
	if goal.Status != domain.GoalActive && goal.Status != domain.GoalCompleted {
		return nil, nil, domain.ErrGoalLocked
	}
	if amount <= 0 {
		return nil, nil, domain.ErrWithdrawalTooLow
	}
	if amount > goal.CurrentAmount {
		return nil, nil, domain.ErrInsufficientBalance
	}

	var penalty int64
	if goal.Status == domain.GoalActive && !isEmergency {
		var err error
		penalty, err = fixedpoint.ApplyBps(amount, goalPenaltyBps(goal))
		if err != nil {
			return nil, nil, err
		}
		if penalty > amount {
			return nil, nil, domain.ErrPenaltyExceedsAmount
		}
	}
	net := amount - penalty
	goal.CurrentAmount -= amount

	events := []domain.Event{{
		Type:       domain.EventWithdrawalProcessed,
		EntityID:   goal.ID,
		Actor:      caller,
		Amount:     net,
		Penalty:    penalty,
		OccurredAt: now,
	}}
	return &domain.GoalWithdrawal{NetAmount: net, Penalty: penalty}, events, nil
}

// VerifyGoalCompletion transitions an active goal to Completed once its
// current amount reaches the target. Idempotent: the event fires on the
// transition only.
func VerifyGoalCompletion(goal *domain.Goal, now time.Time) (bool, []domain.Event, error) {
	if goal.Status != domain.GoalActive {
		return goal.Status == domain.GoalCompleted, nil, nil
	}
	if goal.CurrentAmount < goal.TargetAmount {
		return false, nil, nil
	}
	goal.Status = domain.GoalCompleted
	events := []domain.Event{{
		Type:       domain.EventGoalCompleted,
		EntityID:   goal.ID,
		Actor:      goal.OwnerID,
		Amount:     goal.CurrentAmount,
		OccurredAt: now,
	}}
	return true, events, nil
}

// ModifyGoal updates the target amount and/or deadline. Zero values mean
// "no change"; a new deadline must be in the future.
func ModifyGoal(goal *domain.Goal, caller uuid.UUID, newTarget int64, newDeadline time.Time, now time.Time) ([]domain.Event, error) {
	if caller != goal.OwnerID {
		return nil, domain.ErrNotGoalOwner
	}
	if goal.Status != domain.GoalActive {
		return nil, domain.ErrGoalNotActive
	}
	if newTarget < 0 {
		return nil, domain.ErrInvalidTargetAmount
	}
	if !newDeadline.IsZero() && !newDeadline.After(now) {
		return nil, domain.ErrInvalidDeadline
	}

	if newTarget > 0 {
		goal.TargetAmount = newTarget
	}
	if !newDeadline.IsZero() {
		goal.Deadline = newDeadline
	}
	return []domain.Event{{
		Type:       domain.EventRulesModified,
		EntityID:   goal.ID,
		Actor:      caller,
		Amount:     goal.TargetAmount,
		OccurredAt: now,
	}}, nil
}

// EmergencyGoalAction freezes or cancels a goal. Cancel is terminal and
// zeroes the current amount; the remainder is reported to the caller as the
// amount to return to the owner.
func EmergencyGoalAction(goal *domain.Goal, caller uuid.UUID, action domain.EmergencyAction, reason string, now time.Time) (int64, []domain.Event, error) {
	if caller != goal.OwnerID {
		return 0, nil, domain.ErrNotGoalOwner
	}
	if goal.Status == domain.GoalCompleted || goal.Status == domain.GoalCancelled {
		return 0, nil, domain.ErrGoalLocked
	}

	var refund int64
	switch action {
	case domain.EmergencyFreeze:
		goal.Status = domain.GoalPaused
	case domain.EmergencyCancel:
		refund = goal.CurrentAmount
		goal.CurrentAmount = 0
		goal.Status = domain.GoalCancelled
	default:
		return 0, nil, domain.ErrInvalidAmount
	}

	events := []domain.Event{{
		Type:       domain.EventEmergencyActionTriggered,
		EntityID:   goal.ID,
		Actor:      caller,
		Amount:     refund,
		Detail:     reason,
		OccurredAt: now,
	}}
	return refund, events, nil
}

// ResumeGoal re-activates a paused goal. Paused is the only state Active can
// be re-entered from.
func ResumeGoal(goal *domain.Goal, caller uuid.UUID, now time.Time) ([]domain.Event, error) {
	if caller != goal.OwnerID {
		return nil, domain.ErrNotGoalOwner
	}
	if goal.Status != domain.GoalPaused {
		return nil, domain.ErrGoalLocked
	}
	goal.Status = domain.GoalActive
	return []domain.Event{{
		Type:       domain.EventRulesModified,
		EntityID:   goal.ID,
		Actor:      caller,
		Detail:     "resumed",
		OccurredAt: now,
	}}, nil
}
