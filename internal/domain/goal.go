/**
 * @description
 * Domain model for savings goals with milestones. A goal tracks contributions
 * toward a target amount; milestones are sub-targets with optional rewards
 * that complete idempotently once the goal's current amount covers them.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// GoalType categorizes who saves toward the goal.
type GoalType string

const (
	GoalPersonal  GoalType = "personal"
	GoalGroup     GoalType = "group"
	GoalChallenge GoalType = "challenge"
)

// GoalStatus is the goal lifecycle state. Transitions are one-directional
// except Active<->Paused; Completed and Cancelled are terminal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalPaused    GoalStatus = "paused"
	GoalCompleted GoalStatus = "completed"
	GoalCancelled GoalStatus = "cancelled"
)

// PenaltyPolicy selects how the early-withdrawal penalty rate is derived.
// The flat-default policy pins 500 bps regardless of the configured rate.
type PenaltyPolicy string

const (
	PenaltyConfigured  PenaltyPolicy = "configured"
	PenaltyFlatDefault PenaltyPolicy = "flat_default"
)

// EmergencyAction is an owner-initiated goal state override.
type EmergencyAction string

const (
	EmergencyFreeze EmergencyAction = "freeze"
	EmergencyCancel EmergencyAction = "cancel"
)

// Milestone is a sub-target within a goal. Completion is a one-shot
// transition; repeated progress checks after completion are no-ops.
type Milestone struct {
	Description  string     `json:"description"`
	TargetAmount int64      `json:"target_amount"`
	Deadline     time.Time  `json:"deadline"`
	RewardAmount int64      `json:"reward_amount"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Goal is one savings goal owned by a single user.
type Goal struct {
	ID              uuid.UUID     `json:"id"`
	OwnerID         uuid.UUID     `json:"owner_id"`
	Name            string        `json:"name"`
	Type            GoalType      `json:"type"`
	Status          GoalStatus    `json:"status"`
	TargetAmount    int64         `json:"target_amount"`
	CurrentAmount   int64         `json:"current_amount"`
	Deadline        time.Time     `json:"deadline"`
	CreatedAt       time.Time     `json:"created_at"`
	MinContribution int64         `json:"min_contribution"`
	PenaltyRateBps  int64         `json:"penalty_rate_bps"`
	PenaltyPolicy   PenaltyPolicy `json:"penalty_policy"`
	IsFlexible      bool          `json:"is_flexible"`
	AutoContribute  bool          `json:"auto_contribute"`
	Milestones      []Milestone   `json:"milestones,omitempty"`
}

// GoalWithdrawal reports the net payout and forfeited penalty of a goal
// withdrawal.
type GoalWithdrawal struct {
	NetAmount int64 `json:"net_amount"`
	Penalty   int64 `json:"penalty"`
}
