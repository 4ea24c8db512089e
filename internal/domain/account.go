/**
 * @description
 * Domain model for time-locked, interest-bearing savings accounts. Amounts are
 * stored as int64 in the smallest currency unit to avoid floating-point
 * inaccuracies with financial data; rates are integer basis points
 * (10000 = 100%).
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountType determines the rate bonus and the penalty treatment of a
// savings account.
type AccountType string

const (
	AccountFixedTerm    AccountType = "fixed_term"
	AccountFlexibleTerm AccountType = "flexible_term"
	AccountLadderTerm   AccountType = "ladder_term"
)

// InterestType selects the accrual formula.
type InterestType string

const (
	InterestFixed    InterestType = "fixed"
	InterestVariable InterestType = "variable"
	InterestCompound InterestType = "compound"
)

// AccountEntryKind tags one row of an account's movement history.
type AccountEntryKind string

const (
	EntryDeposit    AccountEntryKind = "deposit"
	EntryWithdrawal AccountEntryKind = "withdrawal"
	EntryInterest   AccountEntryKind = "interest"
)

// AccountEntry is a single recorded movement on a savings account.
// Withdrawal entries record the net payout, not the gross amount.
type AccountEntry struct {
	Kind   AccountEntryKind `json:"kind"`
	Amount int64            `json:"amount"`
	At     time.Time        `json:"at"`
}

// InterestAccount is one time-locked savings account. At most one active
// account exists per owner. The interest rate is fixed at creation from the
// account type and lock duration and never changes afterwards.
type InterestAccount struct {
	ID               uuid.UUID      `json:"id"`
	OwnerID          uuid.UUID      `json:"owner_id"`
	Type             AccountType    `json:"type"`
	InterestType     InterestType   `json:"interest_type"`
	Balance          int64          `json:"balance"`
	AccruedInterest  int64          `json:"accrued_interest"`
	LifetimeInterest int64          `json:"lifetime_interest"`
	RateBps          int64          `json:"rate_bps"`
	CreatedAt        time.Time      `json:"created_at"`
	LockEnd          time.Time      `json:"lock_end"`
	LastAccrualAt    time.Time      `json:"last_accrual_at"`
	Active           bool           `json:"active"`
	History          []AccountEntry `json:"history,omitempty"`
}

// AccountWithdrawal reports the outcome of a withdrawal: the net amount the
// caller should pay out and the penalty that was forfeited. The core computes
// amounts; actually moving value is the caller's responsibility.
type AccountWithdrawal struct {
	NetAmount int64 `json:"net_amount"`
	Penalty   int64 `json:"penalty"`
}
