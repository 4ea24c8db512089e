/**
 * @description
 * HTTP handlers for contribution group endpoints: lifecycle, membership,
 * pooled contributions, late fees, distributions, multi-approver proposals,
 * and dissolution.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/blockbudget/ledger-service/internal/domain"
	"github.com/blockbudget/ledger-service/internal/ledger"
)

// CreateGroupHandler creates a group with the caller as first admin.
func (h *LedgerHandlers) CreateGroupHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req struct {
		Name                      string `json:"name"`
		MinContribution           int64  `json:"min_contribution"`
		DistributionFrequencyDays int64  `json:"distribution_frequency_days"`
		LateFeeRateBps            int64  `json:"late_fee_rate_bps"`
		MinApprovalsRequired      int    `json:"min_approvals_required"`
		DistributionMethod        string `json:"distribution_method"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	group, err := h.service.CreateGroup(r.Context(), ledger.CreateGroupParams{
		OwnerID:               callerID,
		Name:                  req.Name,
		MinContribution:       req.MinContribution,
		DistributionFrequency: time.Duration(req.DistributionFrequencyDays) * 24 * time.Hour,
		LateFeeRateBps:        req.LateFeeRateBps,
		MinApprovalsRequired:  req.MinApprovalsRequired,
		DistributionMethod:    domain.DistributionMethod(req.DistributionMethod),
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, group)
}

// GetGroupHandler returns one group.
func (h *LedgerHandlers) GetGroupHandler(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.pathID(w, chi.URLParam(r, "groupID"))
	if !ok {
		return
	}
	group, err := h.service.GetGroup(r.Context(), groupID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, group)
}

// JoinGroupHandler adds the caller to a group.
func (h *LedgerHandlers) JoinGroupHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	groupID, ok := h.pathID(w, chi.URLParam(r, "groupID"))
	if !ok {
		return
	}
	group, err := h.service.JoinGroup(r.Context(), groupID, callerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, group)
}

// LeaveGroupHandler removes the caller from a group and reports the refund.
func (h *LedgerHandlers) LeaveGroupHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	groupID, ok := h.pathID(w, chi.URLParam(r, "groupID"))
	if !ok {
		return
	}
	result, err := h.service.LeaveGroup(r.Context(), groupID, callerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// GroupContributionHandler records a contribution into the group pool.
func (h *LedgerHandlers) GroupContributionHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	if !h.allowContribution(w, r, "group_contribution", callerID) {
		return
	}
	groupID, ok := h.pathID(w, chi.URLParam(r, "groupID"))
	if !ok {
		return
	}
	var req struct {
		Amount int64 `json:"amount"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	group, err := h.service.MakeGroupContribution(r.Context(), groupID, callerID, req.Amount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, group)
}

// HandleLateFeesHandler assesses the late fee owed by an overdue member.
func (h *LedgerHandlers) HandleLateFeesHandler(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.pathID(w, chi.URLParam(r, "groupID"))
	if !ok {
		return
	}
	memberID, ok := h.pathID(w, chi.URLParam(r, "memberID"))
	if !ok {
		return
	}
	fee, err := h.service.HandleLateFees(r.Context(), groupID, memberID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"late_fee": fee})
}

// DistributeHandler pays out from the group pool.
func (h *LedgerHandlers) DistributeHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	groupID, ok := h.pathID(w, chi.URLParam(r, "groupID"))
	if !ok {
		return
	}
	var req struct {
		Amount    int64     `json:"amount"`
		Recipient uuid.UUID `json:"recipient"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	member, err := h.service.Distribute(r.Context(), groupID, callerID, req.Amount, req.Recipient)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, member)
}

// ProposeTransactionHandler opens a spend proposal.
func (h *LedgerHandlers) ProposeTransactionHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	groupID, ok := h.pathID(w, chi.URLParam(r, "groupID"))
	if !ok {
		return
	}
	var req struct {
		Description string `json:"description"`
		Value       int64  `json:"value"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	proposal, err := h.service.ProposeTransaction(r.Context(), groupID, callerID, req.Description, req.Value)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, proposal)
}

// ApproveTransactionHandler records an approval on a proposal.
func (h *LedgerHandlers) ApproveTransactionHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	groupID, ok := h.pathID(w, chi.URLParam(r, "groupID"))
	if !ok {
		return
	}
	proposalID, ok := h.pathID(w, chi.URLParam(r, "proposalID"))
	if !ok {
		return
	}
	proposal, err := h.service.ApproveTransaction(r.Context(), groupID, callerID, proposalID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, proposal)
}

// SetMemberRoleHandler toggles a member's admin and approver flags.
func (h *LedgerHandlers) SetMemberRoleHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	groupID, ok := h.pathID(w, chi.URLParam(r, "groupID"))
	if !ok {
		return
	}
	memberID, ok := h.pathID(w, chi.URLParam(r, "memberID"))
	if !ok {
		return
	}
	var req struct {
		IsAdmin    bool `json:"is_admin"`
		IsApprover bool `json:"is_approver"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	group, err := h.service.SetMemberRole(r.Context(), groupID, callerID, memberID, req.IsAdmin, req.IsApprover)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, group)
}

// DissolveGroupHandler terminates the group and reports per-member refunds.
func (h *LedgerHandlers) DissolveGroupHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	groupID, ok := h.pathID(w, chi.URLParam(r, "groupID"))
	if !ok {
		return
	}
	refunds, err := h.service.DissolveGroup(r.Context(), groupID, callerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"refunds": refunds})
}
