/**
 * @description
 * This file contains the HTTP handlers for the ledger service's API endpoints.
 * Handlers are responsible for parsing incoming requests, calling the
 * appropriate methods on the application service, and writing the HTTP
 * response. They act as the bridge between the web layer and the business
 * logic layer.
 *
 * Error responses are derived from the domain's sentinel errors: validation
 * failures map to 400, missing entities to 404, authorization failures to
 * 403, lifecycle conflicts to 409, and arithmetic violations to 422.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/blockbudget/ledger-service/internal/app"
	"github.com/blockbudget/ledger-service/internal/domain"
	"github.com/blockbudget/ledger-service/internal/store"
)

// LedgerHandlers holds the application service that handlers will use.
type LedgerHandlers struct {
	service     *app.Service
	rateLimiter *app.RedisContributionRateLimiter

	// Contribution rate limit, shared by campaign/goal/group money-in
	// endpoints. Zero limit disables limiting.
	contributionLimit  int
	contributionWindow time.Duration
}

// NewLedgerHandlers creates a new instance of LedgerHandlers.
func NewLedgerHandlers(service *app.Service, limiter *app.RedisContributionRateLimiter, contributionLimit int, contributionWindow time.Duration) *LedgerHandlers {
	return &LedgerHandlers{
		service:            service,
		rateLimiter:        limiter,
		contributionLimit:  contributionLimit,
		contributionWindow: contributionWindow,
	}
}

// caller resolves the authenticated user or writes a 401.
func (h *LedgerHandlers) caller(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	callerID, ok := GetCallerID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return callerID, true
}

// allowContribution consumes one rate-limit token for the caller on the
// given scope, writing a 429 when the caller is over the limit. Limiter
// failures fail open: a Redis outage must not block money movement.
func (h *LedgerHandlers) allowContribution(w http.ResponseWriter, r *http.Request, scope string, caller uuid.UUID) bool {
	if h.rateLimiter == nil || h.contributionLimit <= 0 {
		return true
	}
	count, retryAfter, err := h.rateLimiter.ConsumeRateLimit(r.Context(), scope, caller.String(), h.contributionLimit, h.contributionWindow)
	if err != nil {
		log.Printf("level=warn component=api msg=\"rate limiter unavailable\" scope=%s err=%v", scope, err)
		return true
	}
	if count > h.contributionLimit {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		h.writeError(w, http.StatusTooManyRequests, "Too many contributions. Please slow down.")
		return false
	}
	return true
}

// decode parses the request body into dst, writing a 400 on malformed JSON.
func (h *LedgerHandlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// pathID parses a UUID path parameter, writing a 400 when malformed.
func (h *LedgerHandlers) pathID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid id in path")
		return uuid.Nil, false
	}
	return id, true
}

// writeJSON is a helper for writing JSON responses.
func (h *LedgerHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *LedgerHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError classifies a service error into an HTTP response.
func (h *LedgerHandlers) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidOwner),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrInvalidDeadline),
		errors.Is(err, domain.ErrInvalidTargetAmount),
		errors.Is(err, domain.ErrInvalidMilestone),
		errors.Is(err, domain.ErrWithdrawalTooLow),
		errors.Is(err, domain.ErrBatchTooLarge),
		errors.Is(err, domain.ErrBelowMinContribution):
		h.writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrAccountNotFound),
		errors.Is(err, store.ErrGoalNotFound),
		errors.Is(err, store.ErrCampaignNotFound),
		errors.Is(err, store.ErrGroupNotFound),
		errors.Is(err, store.ErrBudgetNotFound),
		errors.Is(err, domain.ErrProposalNotFound),
		errors.Is(err, domain.ErrMilestoneNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, domain.ErrNotGoalOwner),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrNotWhitelisted),
		errors.Is(err, domain.ErrNotApprover):
		h.writeError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, store.ErrUsernameTaken),
		errors.Is(err, domain.ErrAccountExists),
		errors.Is(err, domain.ErrBudgetExists),
		errors.Is(err, domain.ErrAccountNotActive),
		errors.Is(err, domain.ErrCampaignNotActive),
		errors.Is(err, domain.ErrCampaignEnded),
		errors.Is(err, domain.ErrDeadlineNotReached),
		errors.Is(err, domain.ErrTargetNotMet),
		errors.Is(err, domain.ErrGoalNotActive),
		errors.Is(err, domain.ErrGoalLocked),
		errors.Is(err, domain.ErrGroupNotActive),
		errors.Is(err, domain.ErrMemberNotActive),
		errors.Is(err, domain.ErrMemberExists),
		errors.Is(err, domain.ErrProposalExecuted),
		errors.Is(err, domain.ErrAlreadyApproved),
		errors.Is(err, domain.ErrReentrantCall):
		h.writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, domain.ErrOverflow),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrPenaltyExceedsAmount),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrNoContribution),
		errors.Is(err, domain.ErrTimePeriodTooLong):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())

	default:
		log.Printf("level=error component=api msg=\"unhandled service error\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// RegisterUserHandler creates a user record.
func (h *LedgerHandlers) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Username == "" {
		h.writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	user, err := h.service.RegisterUser(r.Context(), req.Username, req.DisplayName)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, user)
}

// GetMeHandler returns the authenticated user's record.
func (h *LedgerHandlers) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	user, err := h.service.GetUser(r.Context(), callerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

// CreateBudgetHandler creates the caller's budget.
func (h *LedgerHandlers) CreateBudgetHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req struct {
		Name          string `json:"name"`
		TimeframeDays int    `json:"timeframe_days"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	budget, err := h.service.CreateBudget(r.Context(), callerID, req.Name, req.TimeframeDays)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, budget)
}

// RecordBudgetEntryHandler appends an expense or income line.
func (h *LedgerHandlers) RecordBudgetEntryHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req struct {
		Kind        string `json:"kind"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Amount      int64  `json:"amount"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	entry, err := h.service.RecordBudgetEntry(r.Context(), callerID, domain.BudgetEntryKind(req.Kind), req.Description, req.Category, req.Amount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, entry)
}

// BudgetSummaryHandler returns the caller's budget totals.
func (h *LedgerHandlers) BudgetSummaryHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	summary, err := h.service.BudgetSummary(r.Context(), callerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// ListBudgetEntriesHandler returns the caller's budget history.
func (h *LedgerHandlers) ListBudgetEntriesHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	entries, err := h.service.ListBudgetEntries(r.Context(), callerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}
