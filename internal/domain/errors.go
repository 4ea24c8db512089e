/**
 * @description
 * This file defines the error taxonomy shared by the ledger core and the
 * service layer. Every failure is a sentinel value so that callers (and the
 * API layer) can classify it with errors.Is and map it to a response without
 * string matching.
 *
 * The groups mirror the causes: bad input, wrong lifecycle state, missing
 * authority, arithmetic that would break an invariant, and an entity that is
 * already mid-mutation. All of them are returned before any state is touched,
 * so a failed operation never leaves a partial update behind.
 */

package domain

import "errors"

// Validation errors: the caller supplied out-of-range or zero input.
var (
	ErrInvalidOwner         = errors.New("invalid owner")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidDuration      = errors.New("invalid duration")
	ErrInvalidDeadline      = errors.New("invalid deadline")
	ErrInvalidTargetAmount  = errors.New("invalid target amount")
	ErrInvalidMilestone     = errors.New("milestone deadline exceeds goal deadline")
	ErrWithdrawalTooLow     = errors.New("withdrawal amount too low")
	ErrBatchTooLarge        = errors.New("whitelist batch too large")
	ErrBelowMinContribution = errors.New("amount below minimum contribution")
)

// State errors: the entity is not in the lifecycle state the operation needs.
var (
	ErrAccountNotActive   = errors.New("account not active")
	ErrAccountExists      = errors.New("owner already has an active account")
	ErrBudgetExists       = errors.New("owner already has a budget")
	ErrCampaignNotActive  = errors.New("campaign not active")
	ErrCampaignEnded      = errors.New("campaign deadline has passed")
	ErrDeadlineNotReached = errors.New("campaign deadline not reached")
	ErrTargetNotMet       = errors.New("campaign target not met")
	ErrGoalNotActive      = errors.New("goal not active")
	ErrGoalLocked         = errors.New("goal is locked")
	ErrGroupNotActive     = errors.New("group not active")
	ErrMemberNotActive    = errors.New("member not active")
	ErrMemberExists       = errors.New("already a member")
	ErrProposalExecuted   = errors.New("proposal already executed")
	ErrProposalNotFound   = errors.New("proposal not found")
	ErrMilestoneNotFound  = errors.New("milestone not found")
)

// Authorization errors: the caller lacks the required role or membership.
var (
	ErrNotGoalOwner    = errors.New("caller is not the goal owner")
	ErrUnauthorized    = errors.New("caller is not authorized")
	ErrNotWhitelisted  = errors.New("caller is not whitelisted")
	ErrNotApprover     = errors.New("caller is not an approver")
	ErrAlreadyApproved = errors.New("caller already approved this proposal")
)

// Arithmetic errors: the computed quantity would violate an invariant.
var (
	ErrOverflow             = errors.New("arithmetic overflow")
	ErrAmountTooLarge       = errors.New("amount too large")
	ErrPenaltyExceedsAmount = errors.New("penalty exceeds withdrawal amount")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrNoContribution       = errors.New("no contribution to refund")
	ErrTimePeriodTooLong    = errors.New("accrual period exceeds sanity bound")
)

// Concurrency errors: the entity is already mid-mutation.
var ErrReentrantCall = errors.New("entity is already mid-mutation")
