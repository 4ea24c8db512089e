/**
 * @description
 * Domain model for pooled contribution groups: membership records, rotating
 * distributions, late fees, and multisig proposals gating group spending.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// DistributionMethod selects how the next distribution recipient is chosen.
type DistributionMethod string

const (
	DistributeRoundRobin     DistributionMethod = "round_robin"
	DistributeNeedsBased     DistributionMethod = "needs_based"
	DistributeMilestoneBased DistributionMethod = "milestone_based"
)

// GroupStatus is the group lifecycle state. Dissolved is terminal.
type GroupStatus string

const (
	GroupActive    GroupStatus = "active"
	GroupPaused    GroupStatus = "paused"
	GroupDissolved GroupStatus = "dissolved"
)

// GroupMember is one member's record inside a group. DistributionsReceived
// tracks the lifetime amount paid out to the member, which both the leave
// refund and round-robin selection are computed from.
type GroupMember struct {
	UserID                uuid.UUID  `json:"user_id"`
	Active                bool       `json:"active"`
	IsAdmin               bool       `json:"is_admin"`
	IsApprover            bool       `json:"is_approver"`
	JoinedAt              time.Time  `json:"joined_at"`
	TotalContributed      int64      `json:"total_contributed"`
	LastContributionAt    *time.Time `json:"last_contribution_at,omitempty"`
	DistributionsReceived int64      `json:"distributions_received"`
}

// GroupProposal is a multisig spending proposal. The proposer's approval is
// recorded at creation; the proposal executes exactly when the approval count
// reaches the group's quorum, and never again.
type GroupProposal struct {
	ID          uuid.UUID          `json:"id"`
	ProposerID  uuid.UUID          `json:"proposer_id"`
	Description string             `json:"description"`
	Value       int64              `json:"value"`
	Approvals   map[uuid.UUID]bool `json:"approvals"`
	Executed    bool               `json:"executed"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ApprovalCount returns the number of distinct recorded approvals.
func (p *GroupProposal) ApprovalCount() int {
	return len(p.Approvals)
}

// Group is one pooled contribution group. Members are kept in join order;
// round-robin tie-breaks resolve to the first encountered member.
type Group struct {
	ID                    uuid.UUID          `json:"id"`
	OwnerID               uuid.UUID          `json:"owner_id"`
	Name                  string             `json:"name"`
	Status                GroupStatus        `json:"status"`
	CreatedAt             time.Time          `json:"created_at"`
	MinContribution       int64              `json:"min_contribution"`
	TotalBalance          int64              `json:"total_balance"`
	MemberCount           int                `json:"member_count"`
	DistributionFrequency time.Duration      `json:"distribution_frequency"`
	LateFeeRateBps        int64              `json:"late_fee_rate_bps"`
	MinApprovalsRequired  int                `json:"min_approvals_required"`
	DistributionMethod    DistributionMethod `json:"distribution_method"`
	Members               []GroupMember      `json:"members"`
	Proposals             []GroupProposal    `json:"proposals,omitempty"`
}

// Member returns the member record for userID, or nil.
func (g *Group) Member(userID uuid.UUID) *GroupMember {
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			return &g.Members[i]
		}
	}
	return nil
}

// Proposal returns the proposal with the given id, or nil.
func (g *Group) Proposal(id uuid.UUID) *GroupProposal {
	for i := range g.Proposals {
		if g.Proposals[i].ID == id {
			return &g.Proposals[i]
		}
	}
	return nil
}

// GroupLeaveResult reports the refund owed to a departing member and the
// early-exit penalty that reduced it.
type GroupLeaveResult struct {
	Refund  int64 `json:"refund"`
	Penalty int64 `json:"penalty"`
}
