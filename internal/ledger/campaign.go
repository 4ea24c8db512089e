/**
 * @description
 * Accounting core for crowdfunding campaigns: escrowed per-contributor
 * balances, optional whitelisting for private campaigns, and the two
 * settlement paths: full-pot payout to the owner when the target is met,
 * self-service refunds when it is not.
 */

package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/blockbudget/ledger-service/internal/domain"
	"github.com/blockbudget/ledger-service/internal/fixedpoint"
)

// CreateCampaignParams carries the inputs for creating a campaign.
type CreateCampaignParams struct {
	OwnerID      uuid.UUID
	Name         string
	Description  string
	TargetAmount int64
	DurationDays int
	Private      bool
}

// CreateCampaign builds a new active campaign. The target must sit inside the
// policy's bounds and the duration inside (0, MaxDurationDays].
func CreateCampaign(p CreateCampaignParams, policy domain.CampaignPolicy, now time.Time) (*domain.Campaign, []domain.Event, error) {
	if p.OwnerID == uuid.Nil {
		return nil, nil, domain.ErrInvalidOwner
	}
	if p.TargetAmount < policy.MinTargetAmount || p.TargetAmount > policy.MaxTargetAmount {
		return nil, nil, domain.ErrInvalidAmount
	}
	if p.DurationDays <= 0 || p.DurationDays > policy.MaxDurationDays {
		return nil, nil, domain.ErrInvalidDuration
	}

	c := &domain.Campaign{
		ID:            uuid.New(),
		OwnerID:       p.OwnerID,
		Name:          p.Name,
		Description:   p.Description,
		TargetAmount:  p.TargetAmount,
		Deadline:      now.Add(time.Duration(p.DurationDays) * 24 * time.Hour),
		CreatedAt:     now,
		Active:        true,
		Private:       p.Private,
		Contributions: make(map[uuid.UUID]int64),
	}
	if p.Private {
		c.Whitelist = make(map[uuid.UUID]bool)
	}
	events := []domain.Event{{
		Type:       domain.EventCampaignCreated,
		EntityID:   c.ID,
		Actor:      p.OwnerID,
		Amount:     p.TargetAmount,
		OccurredAt: now,
	}}
	return c, events, nil
}

// WhitelistAddresses adds contributors to a private campaign's allow-list.
// Nil entries are skipped; the batch is capped by policy.
func WhitelistAddresses(c *domain.Campaign, caller uuid.UUID, addresses []uuid.UUID, policy domain.CampaignPolicy, now time.Time) ([]domain.Event, error) {
	if caller != c.OwnerID {
		return nil, domain.ErrUnauthorized
	}
	if !c.Active {
		return nil, domain.ErrCampaignNotActive
	}
	if !c.Private {
		return nil, domain.ErrUnauthorized
	}
	if len(addresses) > policy.WhitelistBatchCap {
		return nil, domain.ErrBatchTooLarge
	}

	// Snapshots decoded from storage may carry a nil map for an empty
	// whitelist.
	if c.Whitelist == nil {
		c.Whitelist = make(map[uuid.UUID]bool)
	}

	var events []domain.Event
	for _, addr := range addresses {
		if addr == uuid.Nil || c.Whitelist[addr] {
			continue
		}
		c.Whitelist[addr] = true
		events = append(events, domain.Event{
			Type:       domain.EventAddressWhitelisted,
			EntityID:   c.ID,
			Actor:      addr,
			OccurredAt: now,
		})
	}
	return events, nil
}

// ContributeToCampaign escrows a contribution. The first nonzero contribution
// from an identity increments the contributor count.
func ContributeToCampaign(c *domain.Campaign, contributor uuid.UUID, amount int64, now time.Time) ([]domain.Event, error) {
	if !c.Active {
		return nil, domain.ErrCampaignNotActive
	}
	if !now.Before(c.Deadline) {
		return nil, domain.ErrCampaignEnded
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if c.Private && !c.Whitelist[contributor] {
		return nil, domain.ErrNotWhitelisted
	}

	newEntry, err := fixedpoint.CheckedAdd(c.Contributions[contributor], amount)
	if err != nil {
		return nil, err
	}
	newTotal, err := fixedpoint.CheckedAdd(c.TotalContributed, amount)
	if err != nil {
		return nil, err
	}

	if c.Contributions[contributor] == 0 {
		c.ContributorCount++
	}
	c.Contributions[contributor] = newEntry
	c.TotalContributed = newTotal

	return []domain.Event{{
		Type:       domain.EventContributionMade,
		EntityID:   c.ID,
		Actor:      contributor,
		Amount:     amount,
		OccurredAt: now,
	}}, nil
}

// WithdrawContribution is the self-service refund path for a failed
// campaign: allowed only once the campaign is inactive or past its deadline,
// and only while the total raised is below target. Returns the amount to
// return to the contributor.
func WithdrawContribution(c *domain.Campaign, contributor uuid.UUID, now time.Time) (int64, []domain.Event, error) {
	if c.Active && now.Before(c.Deadline) {
		return 0, nil, domain.ErrDeadlineNotReached
	}
	if c.TargetMet() {
		return 0, nil, domain.ErrCampaignEnded
	}
	refund := c.Contributions[contributor]
	if refund == 0 {
		return 0, nil, domain.ErrNoContribution
	}

	delete(c.Contributions, contributor)
	c.TotalContributed -= refund
	c.ContributorCount--

	events := []domain.Event{{
		Type:       domain.EventContributionRefunded,
		EntityID:   c.ID,
		Actor:      contributor,
		Amount:     refund,
		OccurredAt: now,
	}}
	return refund, events, nil
}

// WithdrawCampaignFunds is the target-met settlement: the full pot is paid to
// the owner and the campaign deactivates. Usable before the deadline, unlike
// EndCampaign.
func WithdrawCampaignFunds(c *domain.Campaign, caller uuid.UUID, now time.Time) (int64, []domain.Event, error) {
	if caller != c.OwnerID {
		return 0, nil, domain.ErrUnauthorized
	}
	if !c.Active {
		return 0, nil, domain.ErrCampaignNotActive
	}
	if !c.TargetMet() {
		return 0, nil, domain.ErrTargetNotMet
	}

	payout := c.TotalContributed
	c.TotalContributed = 0
	c.ContributorCount = 0
	c.Contributions = make(map[uuid.UUID]int64)
	c.Active = false

	events := []domain.Event{{
		Type:       domain.EventFundsWithdrawn,
		EntityID:   c.ID,
		Actor:      caller,
		Amount:     payout,
		OccurredAt: now,
	}}
	return payout, events, nil
}

// EndCampaign is the deadline-gated settlement. Called before the deadline it
// fails with ErrDeadlineNotReached regardless of the target (early target-met
// settlement must go through WithdrawCampaignFunds). After the deadline it
// pays the pot to the owner when the target was met, or deactivates with no
// payout when it was not, leaving contributions claimable via
// WithdrawContribution.
func EndCampaign(c *domain.Campaign, caller uuid.UUID, now time.Time) (int64, []domain.Event, error) {
	if caller != c.OwnerID {
		return 0, nil, domain.ErrUnauthorized
	}
	if !c.Active {
		return 0, nil, domain.ErrCampaignNotActive
	}
	if now.Before(c.Deadline) {
		return 0, nil, domain.ErrDeadlineNotReached
	}

	if c.TargetMet() {
		return WithdrawCampaignFunds(c, caller, now)
	}
	c.Active = false
	return 0, nil, nil
}

// RefundContribution is the owner-forced refund of one contributor,
// independent of target outcome, while the campaign is still active. Returns
// the amount to return to the contributor.
func RefundContribution(c *domain.Campaign, caller, contributor uuid.UUID, now time.Time) (int64, []domain.Event, error) {
	if caller != c.OwnerID {
		return 0, nil, domain.ErrUnauthorized
	}
	if !c.Active {
		return 0, nil, domain.ErrCampaignNotActive
	}
	refund := c.Contributions[contributor]
	if refund == 0 {
		return 0, nil, domain.ErrNoContribution
	}

	delete(c.Contributions, contributor)
	c.TotalContributed -= refund
	c.ContributorCount--

	events := []domain.Event{{
		Type:       domain.EventContributionRefunded,
		EntityID:   c.ID,
		Actor:      contributor,
		Amount:     refund,
		OccurredAt: now,
	}}
	return refund, events, nil
}
