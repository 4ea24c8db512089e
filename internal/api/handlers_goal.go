/**
 * @description
 * HTTP handlers for savings goal endpoints: creation, milestones,
 * contributions, withdrawals, completion checks, modification, and the
 * owner's emergency actions.
 */

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/blockbudget/ledger-service/internal/domain"
	"github.com/blockbudget/ledger-service/internal/ledger"
)

// CreateGoalHandler creates a goal owned by the caller.
func (h *LedgerHandlers) CreateGoalHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req struct {
		Name            string    `json:"name"`
		Type            string    `json:"type"`
		TargetAmount    int64     `json:"target_amount"`
		Deadline        time.Time `json:"deadline"`
		MinContribution int64     `json:"min_contribution"`
		PenaltyRateBps  int64     `json:"penalty_rate_bps"`
		PenaltyPolicy   string    `json:"penalty_policy"`
		IsFlexible      bool      `json:"is_flexible"`
		AutoContribute  bool      `json:"auto_contribute"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	goal, err := h.service.CreateGoal(r.Context(), ledger.CreateGoalParams{
		OwnerID:         callerID,
		Name:            req.Name,
		Type:            domain.GoalType(req.Type),
		TargetAmount:    req.TargetAmount,
		Deadline:        req.Deadline,
		MinContribution: req.MinContribution,
		PenaltyRateBps:  req.PenaltyRateBps,
		PenaltyPolicy:   domain.PenaltyPolicy(req.PenaltyPolicy),
		IsFlexible:      req.IsFlexible,
		AutoContribute:  req.AutoContribute,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, goal)
}

// GetGoalHandler returns one goal.
func (h *LedgerHandlers) GetGoalHandler(w http.ResponseWriter, r *http.Request) {
	goalID, ok := h.pathID(w, chi.URLParam(r, "goalID"))
	if !ok {
		return
	}
	goal, err := h.service.GetGoal(r.Context(), goalID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, goal)
}

// ListGoalsHandler returns the caller's goals.
func (h *LedgerHandlers) ListGoalsHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	goals, err := h.service.ListGoals(r.Context(), callerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, goals)
}

// DefineMilestoneHandler appends a milestone to the caller's goal.
func (h *LedgerHandlers) DefineMilestoneHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	goalID, ok := h.pathID(w, chi.URLParam(r, "goalID"))
	if !ok {
		return
	}
	var req struct {
		Description  string    `json:"description"`
		TargetAmount int64     `json:"target_amount"`
		Deadline     time.Time `json:"deadline"`
		RewardAmount int64     `json:"reward_amount"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	goal, err := h.service.DefineMilestone(r.Context(), goalID, callerID, req.Description, req.TargetAmount, req.Deadline, req.RewardAmount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, goal)
}

// CheckMilestoneHandler marks a milestone completed once its target is covered.
func (h *LedgerHandlers) CheckMilestoneHandler(w http.ResponseWriter, r *http.Request) {
	goalID, ok := h.pathID(w, chi.URLParam(r, "goalID"))
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid milestone index")
		return
	}
	achieved, err := h.service.CheckMilestoneProgress(r.Context(), goalID, index)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"achieved": achieved})
}

// ContributeToGoalHandler adds a contribution to a goal.
func (h *LedgerHandlers) ContributeToGoalHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	if !h.allowContribution(w, r, "goal_contribution", callerID) {
		return
	}
	goalID, ok := h.pathID(w, chi.URLParam(r, "goalID"))
	if !ok {
		return
	}
	var req struct {
		Amount int64 `json:"amount"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	goal, err := h.service.ContributeToGoal(r.Context(), goalID, callerID, req.Amount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, goal)
}

// WithdrawFromGoalHandler withdraws from a goal with any applicable penalty.
func (h *LedgerHandlers) WithdrawFromGoalHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	goalID, ok := h.pathID(w, chi.URLParam(r, "goalID"))
	if !ok {
		return
	}
	var req struct {
		Amount      int64 `json:"amount"`
		IsEmergency bool  `json:"is_emergency"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.WithdrawFromGoal(r.Context(), goalID, callerID, req.Amount, req.IsEmergency)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// VerifyGoalCompletionHandler transitions the goal to completed when its
// target is reached.
func (h *LedgerHandlers) VerifyGoalCompletionHandler(w http.ResponseWriter, r *http.Request) {
	goalID, ok := h.pathID(w, chi.URLParam(r, "goalID"))
	if !ok {
		return
	}
	completed, err := h.service.VerifyGoalCompletion(r.Context(), goalID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"completed": completed})
}

// ModifyGoalHandler updates the goal's target and/or deadline.
func (h *LedgerHandlers) ModifyGoalHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	goalID, ok := h.pathID(w, chi.URLParam(r, "goalID"))
	if !ok {
		return
	}
	var req struct {
		NewTarget   int64     `json:"new_target"`
		NewDeadline time.Time `json:"new_deadline"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	goal, err := h.service.ModifyGoal(r.Context(), goalID, callerID, req.NewTarget, req.NewDeadline)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, goal)
}

// EmergencyGoalActionHandler freezes or cancels a goal.
func (h *LedgerHandlers) EmergencyGoalActionHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	goalID, ok := h.pathID(w, chi.URLParam(r, "goalID"))
	if !ok {
		return
	}
	var req struct {
		Action string `json:"action"`
		Reason string `json:"reason"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	refund, err := h.service.EmergencyGoalAction(r.Context(), goalID, callerID, domain.EmergencyAction(req.Action), req.Reason)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"refund": refund})
}

// ResumeGoalHandler re-activates a paused goal.
func (h *LedgerHandlers) ResumeGoalHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	goalID, ok := h.pathID(w, chi.URLParam(r, "goalID"))
	if !ok {
		return
	}
	goal, err := h.service.ResumeGoal(r.Context(), goalID, callerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, goal)
}
