/**
 * @description
 * Accounting core for pooled contribution groups: membership lifecycle with
 * leave refunds, contribution and late-fee bookkeeping, round-robin
 * distribution, and multisig proposals with one-shot quorum execution.
 */

package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/blockbudget/ledger-service/internal/domain"
	"github.com/blockbudget/ledger-service/internal/fixedpoint"
)

// CreateGroupParams carries the inputs for creating a contribution group.
type CreateGroupParams struct {
	OwnerID               uuid.UUID
	Name                  string
	MinContribution       int64
	DistributionFrequency time.Duration
	LateFeeRateBps        int64
	MinApprovalsRequired  int
	DistributionMethod    domain.DistributionMethod
}

// CreateGroup builds a new group with the owner as its first admin and
// approver member.
func CreateGroup(p CreateGroupParams, now time.Time) (*domain.Group, []domain.Event, error) {
	if p.OwnerID == uuid.Nil {
		return nil, nil, domain.ErrInvalidOwner
	}
	if p.MinContribution <= 0 {
		return nil, nil, domain.ErrInvalidAmount
	}
	if p.DistributionFrequency <= 0 {
		return nil, nil, domain.ErrInvalidDuration
	}
	if p.MinApprovalsRequired < 1 {
		return nil, nil, domain.ErrInvalidAmount
	}
	method := p.DistributionMethod
	if method == "" {
		method = domain.DistributeRoundRobin
	}

	g := &domain.Group{
		ID:                    uuid.New(),
		OwnerID:               p.OwnerID,
		Name:                  p.Name,
		Status:                domain.GroupActive,
		CreatedAt:             now,
		MinContribution:       p.MinContribution,
		DistributionFrequency: p.DistributionFrequency,
		LateFeeRateBps:        p.LateFeeRateBps,
		MinApprovalsRequired:  p.MinApprovalsRequired,
		DistributionMethod:    method,
		Members: []domain.GroupMember{{
			UserID:     p.OwnerID,
			Active:     true,
			IsAdmin:    true,
			IsApprover: true,
			JoinedAt:   now,
		}},
		MemberCount: 1,
	}
	events := []domain.Event{{
		Type:       domain.EventGroupCreated,
		EntityID:   g.ID,
		Actor:      p.OwnerID,
		OccurredAt: now,
	}}
	return g, events, nil
}

// JoinGroup adds a new active member. Former members who left may rejoin;
// their record reactivates with a fresh join date.
func JoinGroup(g *domain.Group, userID uuid.UUID, now time.Time) ([]domain.Event, error) {
	if g.Status != domain.GroupActive {
		return nil, domain.ErrGroupNotActive
	}
	if m := g.Member(userID); m != nil {
		if m.Active {
			return nil, domain.ErrMemberExists
		}
		m.Active = true
		m.JoinedAt = now
	} else {
		g.Members = append(g.Members, domain.GroupMember{
			UserID:   userID,
			Active:   true,
			JoinedAt: now,
		})
	}
	g.MemberCount++

	return []domain.Event{{
		Type:       domain.EventMembershipChanged,
		EntityID:   g.ID,
		Actor:      userID,
		Detail:     "joined",
		OccurredAt: now,
	}}, nil
}

// LeaveRefund computes a departing member's refund: the full contribution if
// the group is dissolved; otherwise contributed minus distributions received
// (floored at zero), reduced by the early-exit penalty when leaving before
// one full distribution cycle has elapsed since joining. The refund is capped
// at the group's total balance.
func LeaveRefund(g *domain.Group, m *domain.GroupMember, now time.Time) (refund, penalty int64, err error) {
	if g.Status == domain.GroupDissolved {
		refund = m.TotalContributed
	} else {
		refund = m.TotalContributed - m.DistributionsReceived
		if refund < 0 {
			refund = 0
		}
		if now.Sub(m.JoinedAt) < g.DistributionFrequency {
			penalty, err = fixedpoint.ApplyBps(refund, g.LateFeeRateBps)
			if err != nil {
				return 0, 0, err
			}
			refund -= penalty
		}
	}
	if refund > g.TotalBalance {
		refund = g.TotalBalance
	}
	return refund, penalty, nil
}

// LeaveGroup deactivates a member and computes their refund, deducting it
// from the pool balance.
func LeaveGroup(g *domain.Group, userID uuid.UUID, now time.Time) (*domain.GroupLeaveResult, []domain.Event, error) {
	m := g.Member(userID)
	if m == nil || !m.Active {
		return nil, nil, domain.ErrMemberNotActive
	}

	refund, penalty, err := LeaveRefund(g, m, now)
	if err != nil {
		return nil, nil, err
	}

	m.Active = false
	g.MemberCount--
	g.TotalBalance -= refund

	// The refund settles the member's stake. Reset their counters so a
	// rejoin starts from zero instead of claiming the same stake again.
	m.TotalContributed = 0
	m.DistributionsReceived = 0

	events := []domain.Event{{
		Type:       domain.EventMembershipChanged,
		EntityID:   g.ID,
		Actor:      userID,
		Amount:     refund,
		Penalty:    penalty,
		Detail:     "left",
		OccurredAt: now,
	}}
	return &domain.GroupLeaveResult{Refund: refund, Penalty: penalty}, events, nil
}

// MakeContribution records a member's contribution into the pool.
func MakeContribution(g *domain.Group, userID uuid.UUID, amount int64, now time.Time) ([]domain.Event, error) {
	if g.Status != domain.GroupActive {
		return nil, domain.ErrGroupNotActive
	}
	m := g.Member(userID)
	if m == nil || !m.Active {
		return nil, domain.ErrMemberNotActive
	}
	if amount < g.MinContribution {
		return nil, domain.ErrBelowMinContribution
	}

	contributed, err := fixedpoint.CheckedAdd(m.TotalContributed, amount)
	if err != nil {
		return nil, err
	}
	balance, err := fixedpoint.CheckedAdd(g.TotalBalance, amount)
	if err != nil {
		return nil, err
	}

	m.TotalContributed = contributed
	at := now
	m.LastContributionAt = &at
	g.TotalBalance = balance

	return []domain.Event{{
		Type:       domain.EventContributionMade,
		EntityID:   g.ID,
		Actor:      userID,
		Amount:     amount,
		OccurredAt: now,
	}}, nil
}

// HandleLateFees deducts a late penalty from a member whose last contribution
// is older than one distribution cycle. The fee comes off the member's
// contributed record, floored at zero.
func HandleLateFees(g *domain.Group, userID uuid.UUID, now time.Time) (int64, []domain.Event, error) {
	if g.Status != domain.GroupActive {
		return 0, nil, domain.ErrGroupNotActive
	}
	m := g.Member(userID)
	if m == nil || !m.Active {
		return 0, nil, domain.ErrMemberNotActive
	}

	reference := m.JoinedAt
	if m.LastContributionAt != nil {
		reference = *m.LastContributionAt
	}
	if now.Sub(reference) <= g.DistributionFrequency {
		return 0, nil, nil
	}

	fee, err := fixedpoint.ApplyBps(g.MinContribution, g.LateFeeRateBps)
	if err != nil {
		return 0, nil, err
	}
	if fee > m.TotalContributed {
		fee = m.TotalContributed
	}
	m.TotalContributed -= fee

	var events []domain.Event
	if fee > 0 {
		events = append(events, domain.Event{
			Type:       domain.EventRulesModified,
			EntityID:   g.ID,
			Actor:      userID,
			Penalty:    fee,
			Detail:     "late fee",
			OccurredAt: now,
		})
	}
	return fee, events, nil
}

// NextRoundRobinRecipient selects the active member with the fewest lifetime
// distributions received, ties resolved to the first member encountered in
// join order.
func NextRoundRobinRecipient(g *domain.Group) *domain.GroupMember {
	var pick *domain.GroupMember
	for i := range g.Members {
		m := &g.Members[i]
		if !m.Active {
			continue
		}
		if pick == nil || m.DistributionsReceived < pick.DistributionsReceived {
			pick = m
		}
	}
	return pick
}

// Distribute pays amount from the pool to the next recipient under the
// group's distribution method. Needs-based and milestone-based triggering is
// caller policy; when those methods are configured the caller names the
// recipient explicitly.
func Distribute(g *domain.Group, caller uuid.UUID, amount int64, recipient uuid.UUID, now time.Time) (*domain.GroupMember, []domain.Event, error) {
	if g.Status != domain.GroupActive {
		return nil, nil, domain.ErrGroupNotActive
	}
	admin := g.Member(caller)
	if admin == nil || !admin.Active || !admin.IsAdmin {
		return nil, nil, domain.ErrUnauthorized
	}
	if amount <= 0 {
		return nil, nil, domain.ErrInvalidAmount
	}
	if amount > g.TotalBalance {
		return nil, nil, domain.ErrInsufficientBalance
	}

	var target *domain.GroupMember
	if g.DistributionMethod == domain.DistributeRoundRobin {
		target = NextRoundRobinRecipient(g)
	} else {
		target = g.Member(recipient)
	}
	if target == nil || !target.Active {
		return nil, nil, domain.ErrMemberNotActive
	}

	received, err := fixedpoint.CheckedAdd(target.DistributionsReceived, amount)
	if err != nil {
		return nil, nil, err
	}
	target.DistributionsReceived = received
	g.TotalBalance -= amount

	events := []domain.Event{{
		Type:       domain.EventDistributionProcessed,
		EntityID:   g.ID,
		Actor:      target.UserID,
		Amount:     amount,
		OccurredAt: now,
	}}
	return target, events, nil
}

// ProposeTransaction creates a multisig proposal, auto-approved by its
// proposer. Only approver members may propose.
func ProposeTransaction(g *domain.Group, proposer uuid.UUID, description string, value int64, now time.Time) (*domain.GroupProposal, []domain.Event, error) {
	if g.Status != domain.GroupActive {
		return nil, nil, domain.ErrGroupNotActive
	}
	m := g.Member(proposer)
	if m == nil || !m.Active || !m.IsApprover {
		return nil, nil, domain.ErrNotApprover
	}
	if value <= 0 {
		return nil, nil, domain.ErrInvalidAmount
	}

	p := domain.GroupProposal{
		ID:          uuid.New(),
		ProposerID:  proposer,
		Description: description,
		Value:       value,
		Approvals:   map[uuid.UUID]bool{proposer: true},
		CreatedAt:   now,
	}
	g.Proposals = append(g.Proposals, p)
	stored := &g.Proposals[len(g.Proposals)-1]

	events := []domain.Event{{
		Type:       domain.EventMultisigProposalCreated,
		EntityID:   g.ID,
		Actor:      proposer,
		Amount:     value,
		Detail:     description,
		OccurredAt: now,
	}}
	// Quorum of one executes on creation.
	if stored.ApprovalCount() >= g.MinApprovalsRequired {
		stored.Executed = true
		events = append(events, executedEvent(g, stored, now))
	}
	return stored, events, nil
}

// ApproveTransaction records one approver's approval. Double approvals and
// approvals of executed proposals are rejected; the proposal executes exactly
// when the approval count reaches the group's quorum.
func ApproveTransaction(g *domain.Group, approver uuid.UUID, proposalID uuid.UUID, now time.Time) (*domain.GroupProposal, []domain.Event, error) {
	if g.Status != domain.GroupActive {
		return nil, nil, domain.ErrGroupNotActive
	}
	m := g.Member(approver)
	if m == nil || !m.Active || !m.IsApprover {
		return nil, nil, domain.ErrNotApprover
	}
	p := g.Proposal(proposalID)
	if p == nil {
		return nil, nil, domain.ErrProposalNotFound
	}
	if p.Executed {
		return nil, nil, domain.ErrProposalExecuted
	}
	if p.Approvals[approver] {
		return nil, nil, domain.ErrAlreadyApproved
	}

	p.Approvals[approver] = true
	events := []domain.Event{{
		Type:       domain.EventMultisigApprovalChanged,
		EntityID:   g.ID,
		Actor:      approver,
		Amount:     p.Value,
		OccurredAt: now,
	}}
	if p.ApprovalCount() >= g.MinApprovalsRequired {
		p.Executed = true
		events = append(events, executedEvent(g, p, now))
	}
	return p, events, nil
}

func executedEvent(g *domain.Group, p *domain.GroupProposal, now time.Time) domain.Event {
	return domain.Event{
		Type:       domain.EventDistributionProcessed,
		EntityID:   g.ID,
		Actor:      p.ProposerID,
		Amount:     p.Value,
		Detail:     "proposal executed",
		OccurredAt: now,
	}
}

// SetMemberRole grants or revokes admin/approver flags. Admin-only.
func SetMemberRole(g *domain.Group, caller, userID uuid.UUID, isAdmin, isApprover bool, now time.Time) ([]domain.Event, error) {
	admin := g.Member(caller)
	if admin == nil || !admin.Active || !admin.IsAdmin {
		return nil, domain.ErrUnauthorized
	}
	m := g.Member(userID)
	if m == nil || !m.Active {
		return nil, domain.ErrMemberNotActive
	}
	m.IsAdmin = isAdmin
	m.IsApprover = isApprover
	return []domain.Event{{
		Type:       domain.EventRulesModified,
		EntityID:   g.ID,
		Actor:      userID,
		Detail:     "role changed",
		OccurredAt: now,
	}}, nil
}

// DissolveGroup terminates the group. Owner-only; each member's full
// contribution becomes refundable and further operations halt. Returns the
// per-member refunds the caller must pay out, capped in aggregate at the pool
// balance.
func DissolveGroup(g *domain.Group, caller uuid.UUID, now time.Time) (map[uuid.UUID]int64, []domain.Event, error) {
	if caller != g.OwnerID {
		return nil, nil, domain.ErrUnauthorized
	}
	if g.Status == domain.GroupDissolved {
		return nil, nil, domain.ErrGroupNotActive
	}

	g.Status = domain.GroupDissolved
	refunds := make(map[uuid.UUID]int64)
	remaining := g.TotalBalance
	for i := range g.Members {
		m := &g.Members[i]
		if !m.Active {
			continue
		}
		refund := m.TotalContributed
		if refund > remaining {
			refund = remaining
		}
		remaining -= refund
		if refund > 0 {
			refunds[m.UserID] = refund
		}
	}
	g.TotalBalance = remaining

	events := []domain.Event{{
		Type:       domain.EventEmergencyActionTriggered,
		EntityID:   g.ID,
		Actor:      caller,
		Detail:     "dissolved",
		OccurredAt: now,
	}}
	return refunds, events, nil
}
