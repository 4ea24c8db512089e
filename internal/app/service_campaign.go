/**
 * @description
 * Crowdfunding campaign operations: creation under the configured policy,
 * whitelist management for private campaigns, contributions, voluntary and
 * forced refunds, and settlement after the deadline.
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

// CreateCampaign creates a campaign validated against the service's policy.
func (s *Service) CreateCampaign(ctx context.Context, p ledger.CreateCampaignParams) (*domain.Campaign, error) {
	campaign, events, err := ledger.CreateCampaign(p, s.campaignPolicy, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveCampaign(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}
	s.publish(ctx, events)
	return campaign, nil
}

// GetCampaign fetches one campaign.
func (s *Service) GetCampaign(ctx context.Context, campaignID uuid.UUID) (*domain.Campaign, error) {
	return s.repo.FindCampaignByID(ctx, campaignID)
}

// ListCampaigns returns campaigns created by the given owner.
func (s *Service) ListCampaigns(ctx context.Context, ownerID uuid.UUID) ([]domain.Campaign, error) {
	return s.repo.ListCampaignsByOwner(ctx, ownerID)
}

// withCampaign runs fn against the campaign under its entity lock and
// persists the result when fn succeeds.
func (s *Service) withCampaign(ctx context.Context, campaignID uuid.UUID, fn func(*domain.Campaign, time.Time) ([]domain.Event, error)) (*domain.Campaign, error) {
	release, err := s.locks.acquire(campaignID)
	if err != nil {
		return nil, err
	}
	defer release()

	campaign, err := s.repo.FindCampaignByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	events, err := fn(campaign, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveCampaign(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}
	s.publish(ctx, events)
	return campaign, nil
}

// WhitelistAddresses adds contributors to a private campaign's whitelist.
func (s *Service) WhitelistAddresses(ctx context.Context, campaignID, caller uuid.UUID, addresses []uuid.UUID) (*domain.Campaign, error) {
	return s.withCampaign(ctx, campaignID, func(c *domain.Campaign, now time.Time) ([]domain.Event, error) {
		return ledger.WhitelistAddresses(c, caller, addresses, s.campaignPolicy, now)
	})
}

// ContributeToCampaign records a contribution to an active campaign.
func (s *Service) ContributeToCampaign(ctx context.Context, campaignID, contributor uuid.UUID, amount int64) (*domain.Campaign, error) {
	return s.withCampaign(ctx, campaignID, func(c *domain.Campaign, now time.Time) ([]domain.Event, error) {
		return ledger.ContributeToCampaign(c, contributor, amount, now)
	})
}

// WithdrawContribution returns the contributor's stake from a failed campaign.
func (s *Service) WithdrawContribution(ctx context.Context, campaignID, contributor uuid.UUID) (int64, error) {
	var refunded int64
	_, err := s.withCampaign(ctx, campaignID, func(c *domain.Campaign, now time.Time) ([]domain.Event, error) {
		amount, events, err := ledger.WithdrawContribution(c, contributor, now)
		refunded = amount
		return events, err
	})
	return refunded, err
}

// WithdrawCampaignFunds pays the raised pot to the campaign owner once the
// target is met.
func (s *Service) WithdrawCampaignFunds(ctx context.Context, campaignID, caller uuid.UUID) (int64, error) {
	var payout int64
	_, err := s.withCampaign(ctx, campaignID, func(c *domain.Campaign, now time.Time) ([]domain.Event, error) {
		amount, events, err := ledger.WithdrawCampaignFunds(c, caller, now)
		payout = amount
		return events, err
	})
	return payout, err
}

// EndCampaign settles the campaign after its deadline.
func (s *Service) EndCampaign(ctx context.Context, campaignID, caller uuid.UUID) (int64, error) {
	var payout int64
	_, err := s.withCampaign(ctx, campaignID, func(c *domain.Campaign, now time.Time) ([]domain.Event, error) {
		amount, events, err := ledger.EndCampaign(c, caller, now)
		payout = amount
		return events, err
	})
	return payout, err
}

// RefundContribution lets the campaign owner push a refund to one contributor.
func (s *Service) RefundContribution(ctx context.Context, campaignID, caller, contributor uuid.UUID) (int64, error) {
	var refunded int64
	_, err := s.withCampaign(ctx, campaignID, func(c *domain.Campaign, now time.Time) ([]domain.Event, error) {
		amount, events, err := ledger.RefundContribution(c, caller, contributor, now)
		refunded = amount
		return events, err
	})
	return refunded, err
}
