/**
 * @description
 * HTTP handlers for savings account endpoints: opening the caller's account,
 * reading it, depositing, accruing interest, and withdrawing.
 */

package api

import (
	"net/http"
	"time"

	"github.com/blockbudget/ledger-service/internal/domain"
)

// OpenAccountHandler opens the caller's savings account.
func (h *LedgerHandlers) OpenAccountHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req struct {
		AccountType    string `json:"account_type"`
		InterestType   string `json:"interest_type"`
		LockDays       int64  `json:"lock_days"`
		InitialDeposit int64  `json:"initial_deposit"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	acct, err := h.service.OpenAccount(
		r.Context(),
		callerID,
		domain.AccountType(req.AccountType),
		domain.InterestType(req.InterestType),
		time.Duration(req.LockDays)*24*time.Hour,
		req.InitialDeposit,
	)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, acct)
}

// GetAccountHandler returns the caller's active account.
func (h *LedgerHandlers) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	acct, err := h.service.GetAccount(r.Context(), callerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, acct)
}

// DepositHandler adds funds to the caller's account.
func (h *LedgerHandlers) DepositHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount int64 `json:"amount"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	acct, err := h.service.Deposit(r.Context(), callerID, req.Amount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, acct)
}

// AccrueInterestHandler applies interest for the elapsed period.
func (h *LedgerHandlers) AccrueInterestHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	credited, err := h.service.AccrueInterest(r.Context(), callerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"interest_credited": credited})
}

// WithdrawHandler withdraws from the caller's account, reporting the net
// payout and any early-withdrawal penalty.
func (h *LedgerHandlers) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount int64 `json:"amount"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.WithdrawFromAccount(r.Context(), callerID, req.Amount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}
