package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/blockbudget/ledger-service/internal/domain"
)

func newTestGroup(t *testing.T, owner uuid.UUID, minContribution int64, lateFeeBps int64, quorum int) *domain.Group {
	t.Helper()
	g, _, err := CreateGroup(CreateGroupParams{
		OwnerID:               owner,
		Name:                  "rotating pool",
		MinContribution:       minContribution,
		DistributionFrequency: 30 * 24 * time.Hour,
		LateFeeRateBps:        lateFeeBps,
		MinApprovalsRequired:  quorum,
		DistributionMethod:    domain.DistributeRoundRobin,
	}, testEpoch)
	if err != nil {
		t.Fatalf("CreateGroup returned error: %v", err)
	}
	return g
}

func joinMember(t *testing.T, g *domain.Group, at time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	if _, err := JoinGroup(g, id, at); err != nil {
		t.Fatalf("JoinGroup returned error: %v", err)
	}
	return id
}

func TestCreateGroupOwnerIsFirstApprover(t *testing.T) {
	owner := uuid.New()
	g := newTestGroup(t, owner, 10, 0, 2)

	m := g.Member(owner)
	if m == nil || !m.Active || !m.IsAdmin || !m.IsApprover {
		t.Fatalf("expected owner as active admin approver, got %+v", m)
	}
	if g.MemberCount != 1 {
		t.Fatalf("expected member count 1, got %d", g.MemberCount)
	}
}

func TestMemberCountTracksActiveMembers(t *testing.T) {
	owner := uuid.New()
	g := newTestGroup(t, owner, 10, 0, 1)
	alice := joinMember(t, g, testEpoch)
	joinMember(t, g, testEpoch)

	if g.MemberCount != 3 {
		t.Fatalf("expected 3 members, got %d", g.MemberCount)
	}

	if _, _, err := LeaveGroup(g, alice, testEpoch.Add(time.Hour)); err != nil {
		t.Fatalf("LeaveGroup returned error: %v", err)
	}
	if g.MemberCount != 2 {
		t.Fatalf("expected 2 members after leave, got %d", g.MemberCount)
	}

	var active int
	for _, m := range g.Members {
		if m.Active {
			active++
		}
	}
	if active != g.MemberCount {
		t.Fatalf("member count %d does not match active members %d", g.MemberCount, active)
	}
}

// Leaving before one full distribution cycle costs the early-exit penalty:
// contributed 100, lateFeeRate 10%, nothing received -> refund 90.
func TestLeaveRefundEarlyExitPenalty(t *testing.T) {
	owner := uuid.New()
	g := newTestGroup(t, owner, 10, 1000, 1)
	alice := joinMember(t, g, testEpoch)
	if _, err := MakeContribution(g, alice, 100, testEpoch); err != nil {
		t.Fatalf("MakeContribution returned error: %v", err)
	}

	res, _, err := LeaveGroup(g, alice, testEpoch.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("LeaveGroup returned error: %v", err)
	}
	if res.Refund != 90 || res.Penalty != 10 {
		t.Fatalf("expected refund=90 penalty=10, got refund=%d penalty=%d", res.Refund, res.Penalty)
	}
	if g.TotalBalance != 10 {
		t.Fatalf("expected pool balance 10 after refund, got %d", g.TotalBalance)
	}
}

func TestLeaveRefundAfterFullCycleNoPenalty(t *testing.T) {
	owner := uuid.New()
	g := newTestGroup(t, owner, 10, 1000, 1)
	alice := joinMember(t, g, testEpoch)
	if _, err := MakeContribution(g, alice, 100, testEpoch); err != nil {
		t.Fatalf("MakeContribution returned error: %v", err)
	}

	res, _, err := LeaveGroup(g, alice, testEpoch.Add(31*24*time.Hour))
	if err != nil {
		t.Fatalf("LeaveGroup returned error: %v", err)
	}
	if res.Refund != 100 || res.Penalty != 0 {
		t.Fatalf("expected penalty-free refund 100, got refund=%d penalty=%d", res.Refund, res.Penalty)
	}
}

func TestRejoinAfterLeaveStartsWithZeroStake(t *testing.T) {
	owner := uuid.New()
	g := newTestGroup(t, owner, 10, 1000, 1)
	alice := joinMember(t, g, testEpoch)
	bob := joinMember(t, g, testEpoch)
	if _, err := MakeContribution(g, alice, 100, testEpoch); err != nil {
		t.Fatalf("MakeContribution returned error: %v", err)
	}
	if _, err := MakeContribution(g, bob, 100, testEpoch); err != nil {
		t.Fatalf("MakeContribution returned error: %v", err)
	}

	res, _, err := LeaveGroup(g, alice, testEpoch.Add(31*24*time.Hour))
	if err != nil {
		t.Fatalf("LeaveGroup returned error: %v", err)
	}
	if res.Refund != 100 {
		t.Fatalf("expected first refund 100, got %d", res.Refund)
	}

	if _, err := JoinGroup(g, alice, testEpoch.Add(32*24*time.Hour)); err != nil {
		t.Fatalf("JoinGroup returned error: %v", err)
	}
	if m := g.Member(alice); m.TotalContributed != 0 || m.DistributionsReceived != 0 {
		t.Fatalf("expected zeroed stake after rejoin, got contributed=%d received=%d",
			m.TotalContributed, m.DistributionsReceived)
	}

	res, _, err = LeaveGroup(g, alice, testEpoch.Add(63*24*time.Hour))
	if err != nil {
		t.Fatalf("LeaveGroup returned error: %v", err)
	}
	if res.Refund != 0 {
		t.Fatalf("expected no refund for a settled stake, got %d", res.Refund)
	}
	if g.TotalBalance != 100 {
		t.Fatalf("expected bob's 100 still pooled, got %d", g.TotalBalance)
	}
}

func TestLeaveRefundCappedAtPoolBalance(t *testing.T) {
	owner := uuid.New()
	g := newTestGroup(t, owner, 10, 0, 1)
	alice := joinMember(t, g, testEpoch)
	if _, err := MakeContribution(g, alice, 100, testEpoch); err != nil {
		t.Fatalf("MakeContribution returned error: %v", err)
	}
	// A distribution drains the pool below alice's stake.
	if _, _, err := Distribute(g, owner, 70, uuid.Nil, testEpoch); err != nil {
		t.Fatalf("Distribute returned error: %v", err)
	}

	res, _, err := LeaveGroup(g, alice, testEpoch.Add(31*24*time.Hour))
	if err != nil {
		t.Fatalf("LeaveGroup returned error: %v", err)
	}
	if res.Refund != 30 {
		t.Fatalf("expected refund capped at pool balance 30, got %d", res.Refund)
	}
	if g.TotalBalance != 0 {
		t.Fatalf("expected empty pool, got %d", g.TotalBalance)
	}
}

func TestMakeContributionGuards(t *testing.T) {
	owner := uuid.New()
	g := newTestGroup(t, owner, 50, 0, 1)

	if _, err := MakeContribution(g, owner, 49, testEpoch); !errors.Is(err, domain.ErrBelowMinContribution) {
		t.Fatalf("expected ErrBelowMinContribution, got %v", err)
	}
	if _, err := MakeContribution(g, uuid.New(), 100, testEpoch); !errors.Is(err, domain.ErrMemberNotActive) {
		t.Fatalf("expected ErrMemberNotActive, got %v", err)
	}

	g.Status = domain.GroupPaused
	if _, err := MakeContribution(g, owner, 100, testEpoch); !errors.Is(err, domain.ErrGroupNotActive) {
		t.Fatalf("expected ErrGroupNotActive, got %v", err)
	}
}

func TestHandleLateFees(t *testing.T) {
	owner := uuid.New()
	g := newTestGroup(t, owner, 100, 1000, 1) // fee = 100 x 10% = 10
	alice := joinMember(t, g, testEpoch)
	if _, err := MakeContribution(g, alice, 200, testEpoch); err != nil {
		t.Fatalf("MakeContribution returned error: %v", err)
	}

	// Within the cycle: nothing due.
	fee, events, err := HandleLateFees(g, alice, testEpoch.Add(10*24*time.Hour))
	if err != nil || fee != 0 || len(events) != 0 {
		t.Fatalf("expected no fee inside cycle, got fee=%d err=%v", fee, err)
	}

	fee, events, err = HandleLateFees(g, alice, testEpoch.Add(31*24*time.Hour))
	if err != nil {
		t.Fatalf("HandleLateFees returned error: %v", err)
	}
	if fee != 10 {
		t.Fatalf("expected fee 10, got %d", fee)
	}
	if g.Member(alice).TotalContributed != 190 {
		t.Fatalf("expected contributed 190 after fee, got %d", g.Member(alice).TotalContributed)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
}

func TestRoundRobinSelectsLeastReceivedFirstEncountered(t *testing.T) {
	owner := uuid.New()
	g := newTestGroup(t, owner, 10, 0, 1)
	alice := joinMember(t, g, testEpoch)
	bob := joinMember(t, g, testEpoch)
	if _, err := MakeContribution(g, owner, 300, testEpoch); err != nil {
		t.Fatalf("MakeContribution returned error: %v", err)
	}

	// All at zero received: first encountered (the owner) wins the tie.
	first, _, err := Distribute(g, owner, 100, uuid.Nil, testEpoch)
	if err != nil {
		t.Fatalf("Distribute returned error: %v", err)
	}
	if first.UserID != owner {
		t.Fatalf("expected owner picked on tie, got %s", first.UserID)
	}

	// Owner now has 100; alice (joined before bob) is the next zero.
	second, _, err := Distribute(g, owner, 100, uuid.Nil, testEpoch)
	if err != nil {
		t.Fatalf("Distribute returned error: %v", err)
	}
	if second.UserID != alice {
		t.Fatalf("expected alice next, got %s", second.UserID)
	}

	third, _, err := Distribute(g, owner, 100, uuid.Nil, testEpoch)
	if err != nil {
		t.Fatalf("Distribute returned error: %v", err)
	}
	if third.UserID != bob {
		t.Fatalf("expected bob last, got %s", third.UserID)
	}
	if g.TotalBalance != 0 {
		t.Fatalf("expected drained pool, got %d", g.TotalBalance)
	}
}

func TestDistributeGuards(t *testing.T) {
	owner := uuid.New()
	g := newTestGroup(t, owner, 10, 0, 1)
	alice := joinMember(t, g, testEpoch)

	if _, _, err := Distribute(g, alice, 10, uuid.Nil, testEpoch); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-admin, got %v", err)
	}
	if _, _, err := Distribute(g, owner, 10, uuid.Nil, testEpoch); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance on empty pool, got %v", err)
	}
}

// Quorum two: the proposer's auto-approval counts as one; the second distinct
// approval executes the proposal on that exact call.
func TestMultisigQuorumExecution(t *testing.T) {
	owner := uuid.New()
	g := newTestGroup(t, owner, 10, 0, 2)
	alice := joinMember(t, g, testEpoch)
	if _, err := SetMemberRole(g, owner, alice, false, true, testEpoch); err != nil {
		t.Fatalf("SetMemberRole returned error: %v", err)
	}

	p, events, err := ProposeTransaction(g, owner, "pay vendor", 500, testEpoch)
	if err != nil {
		t.Fatalf("ProposeTransaction returned error: %v", err)
	}
	if p.ApprovalCount() != 1 || p.Executed {
		t.Fatalf("expected one approval and not executed, got count=%d executed=%v", p.ApprovalCount(), p.Executed)
	}
	if len(events) != 1 || events[0].Type != domain.EventMultisigProposalCreated {
		t.Fatalf("expected only the creation event, got %v", events)
	}

	if _, _, err := ApproveTransaction(g, owner, p.ID, testEpoch); !errors.Is(err, domain.ErrAlreadyApproved) {
		t.Fatalf("expected ErrAlreadyApproved for proposer, got %v", err)
	}

	p, events, err = ApproveTransaction(g, alice, p.ID, testEpoch)
	if err != nil {
		t.Fatalf("ApproveTransaction returned error: %v", err)
	}
	if !p.Executed {
		t.Fatal("expected execution exactly at quorum")
	}
	if len(events) != 2 || events[1].Type != domain.EventDistributionProcessed {
		t.Fatalf("expected approval + execution events, got %v", events)
	}

	// One-shot: nothing re-enters an executed proposal.
	if _, _, err := ApproveTransaction(g, owner, p.ID, testEpoch); !errors.Is(err, domain.ErrProposalExecuted) {
		t.Fatalf("expected ErrProposalExecuted, got %v", err)
	}
}

func TestProposeQuorumOfOneExecutesImmediately(t *testing.T) {
	owner := uuid.New()
	g := newTestGroup(t, owner, 10, 0, 1)

	p, events, err := ProposeTransaction(g, owner, "solo", 100, testEpoch)
	if err != nil {
		t.Fatalf("ProposeTransaction returned error: %v", err)
	}
	if !p.Executed {
		t.Fatal("expected immediate execution at quorum one")
	}
	if len(events) != 2 {
		t.Fatalf("expected creation + execution events, got %d", len(events))
	}
}

func TestProposeRequiresApproverRole(t *testing.T) {
	owner := uuid.New()
	g := newTestGroup(t, owner, 10, 0, 1)
	alice := joinMember(t, g, testEpoch)

	if _, _, err := ProposeTransaction(g, alice, "nope", 100, testEpoch); !errors.Is(err, domain.ErrNotApprover) {
		t.Fatalf("expected ErrNotApprover, got %v", err)
	}
	if _, _, err := ApproveTransaction(g, alice, uuid.New(), testEpoch); !errors.Is(err, domain.ErrNotApprover) {
		t.Fatalf("expected ErrNotApprover, got %v", err)
	}
}

func TestDissolveGroupRefundsMembers(t *testing.T) {
	owner := uuid.New()
	g := newTestGroup(t, owner, 10, 1000, 1)
	alice := joinMember(t, g, testEpoch)
	bob := joinMember(t, g, testEpoch)
	if _, err := MakeContribution(g, alice, 100, testEpoch); err != nil {
		t.Fatalf("MakeContribution returned error: %v", err)
	}
	if _, err := MakeContribution(g, bob, 200, testEpoch); err != nil {
		t.Fatalf("MakeContribution returned error: %v", err)
	}

	refunds, _, err := DissolveGroup(g, owner, testEpoch.Add(time.Hour))
	if err != nil {
		t.Fatalf("DissolveGroup returned error: %v", err)
	}
	if refunds[alice] != 100 || refunds[bob] != 200 {
		t.Fatalf("expected full refunds, got %v", refunds)
	}
	if g.Status != domain.GroupDissolved {
		t.Fatalf("expected Dissolved, got %s", g.Status)
	}

	// Dissolution halts further operations.
	if _, err := MakeContribution(g, alice, 100, testEpoch.Add(2*time.Hour)); !errors.Is(err, domain.ErrGroupNotActive) {
		t.Fatalf("expected ErrGroupNotActive, got %v", err)
	}
	if _, _, err := DissolveGroup(g, owner, testEpoch.Add(2*time.Hour)); !errors.Is(err, domain.ErrGroupNotActive) {
		t.Fatalf("expected ErrGroupNotActive on double dissolve, got %v", err)
	}
}
