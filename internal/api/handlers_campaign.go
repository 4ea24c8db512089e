/**
 * @description
 * HTTP handlers for crowdfunding campaign endpoints: creation, whitelist
 * management, contributions, refunds, and settlement.
 */

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/blockbudget/ledger-service/internal/ledger"
)

// CreateCampaignHandler creates a campaign owned by the caller.
func (h *LedgerHandlers) CreateCampaignHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		TargetAmount int64  `json:"target_amount"`
		DurationDays int    `json:"duration_days"`
		Private      bool   `json:"private"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	campaign, err := h.service.CreateCampaign(r.Context(), ledger.CreateCampaignParams{
		OwnerID:      callerID,
		Name:         req.Name,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		DurationDays: req.DurationDays,
		Private:      req.Private,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, campaign)
}

// GetCampaignHandler returns one campaign.
func (h *LedgerHandlers) GetCampaignHandler(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := h.pathID(w, chi.URLParam(r, "campaignID"))
	if !ok {
		return
	}
	campaign, err := h.service.GetCampaign(r.Context(), campaignID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, campaign)
}

// ListCampaignsHandler returns campaigns created by the caller.
func (h *LedgerHandlers) ListCampaignsHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	campaigns, err := h.service.ListCampaigns(r.Context(), callerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, campaigns)
}

// WhitelistAddressesHandler adds contributors to a private campaign's
// whitelist.
func (h *LedgerHandlers) WhitelistAddressesHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	campaignID, ok := h.pathID(w, chi.URLParam(r, "campaignID"))
	if !ok {
		return
	}
	var req struct {
		Addresses []uuid.UUID `json:"addresses"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	campaign, err := h.service.WhitelistAddresses(r.Context(), campaignID, callerID, req.Addresses)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, campaign)
}

// ContributeToCampaignHandler records a contribution to a campaign.
func (h *LedgerHandlers) ContributeToCampaignHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	if !h.allowContribution(w, r, "campaign_contribution", callerID) {
		return
	}
	campaignID, ok := h.pathID(w, chi.URLParam(r, "campaignID"))
	if !ok {
		return
	}
	var req struct {
		Amount int64 `json:"amount"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	campaign, err := h.service.ContributeToCampaign(r.Context(), campaignID, callerID, req.Amount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, campaign)
}

// WithdrawContributionHandler returns the caller's stake from a failed
// campaign.
func (h *LedgerHandlers) WithdrawContributionHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	campaignID, ok := h.pathID(w, chi.URLParam(r, "campaignID"))
	if !ok {
		return
	}
	refunded, err := h.service.WithdrawContribution(r.Context(), campaignID, callerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"refunded": refunded})
}

// WithdrawCampaignFundsHandler pays the raised pot to the owner once the
// target is met.
func (h *LedgerHandlers) WithdrawCampaignFundsHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	campaignID, ok := h.pathID(w, chi.URLParam(r, "campaignID"))
	if !ok {
		return
	}
	payout, err := h.service.WithdrawCampaignFunds(r.Context(), campaignID, callerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"payout": payout})
}

// EndCampaignHandler settles the campaign after its deadline.
func (h *LedgerHandlers) EndCampaignHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	campaignID, ok := h.pathID(w, chi.URLParam(r, "campaignID"))
	if !ok {
		return
	}
	payout, err := h.service.EndCampaign(r.Context(), campaignID, callerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"payout": payout})
}

// RefundContributionHandler lets the campaign owner push a refund to one
// contributor.
func (h *LedgerHandlers) RefundContributionHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	campaignID, ok := h.pathID(w, chi.URLParam(r, "campaignID"))
	if !ok {
		return
	}
	contributorID, ok := h.pathID(w, chi.URLParam(r, "contributorID"))
	if !ok {
		return
	}
	refunded, err := h.service.RefundContribution(r.Context(), campaignID, callerID, contributorID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"refunded": refunded})
}
