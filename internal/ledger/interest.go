/**
 * @description
 * Accounting core for time-locked savings accounts: rate derivation at open,
 * simple and compound interest accrual, and early-withdrawal penalties.
 *
 * All operations take the current time as a parameter (the core never reads
 * the clock), validate before touching any field, and return the domain
 * events they produced. A failed operation leaves the account untouched.
 */

package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/blockbudget/ledger-service/internal/domain"
	"github.com/blockbudget/ledger-service/internal/fixedpoint"
)

const (
	// SecondsPerYear is the fixed year length all rate math uses.
	SecondsPerYear = 365 * 24 * 3600

	baseRateBps             = 500
	durationBonusPerYearBps = 100
	fixedTermBonusBps       = 200
	ladderTermBonusBps      = 300

	maxLockYears    = 10
	maxAccrualYears = 100

	earlyPenaltyPerYearBps = 1000
)

// OpenAccountParams carries the inputs for opening a savings account.
type OpenAccountParams struct {
	OwnerID        uuid.UUID
	Type           domain.AccountType
	InterestType   domain.InterestType
	LockDuration   time.Duration
	InitialDeposit int64
}

// AccountRateBps derives the interest rate fixed at account creation:
// a 500 bps base, plus 100 bps per complete year of lock duration, plus the
// account-type bonus.
func AccountRateBps(accountType domain.AccountType, lockDuration time.Duration) int64 {
	rate := int64(baseRateBps)
	rate += int64(lockDuration/time.Second) / SecondsPerYear * durationBonusPerYearBps
	switch accountType {
	case domain.AccountFixedTerm:
		rate += fixedTermBonusBps
	case domain.AccountLadderTerm:
		rate += ladderTermBonusBps
	}
	return rate
}

// OpenAccount creates a new savings account with a non-zero initial deposit.
// The one-active-account-per-owner rule is enforced by the caller, which owns
// the account index.
func OpenAccount(p OpenAccountParams, now time.Time) (*domain.InterestAccount, []domain.Event, error) {
	if p.OwnerID == uuid.Nil {
		return nil, nil, domain.ErrInvalidOwner
	}
	if p.InitialDeposit <= 0 {
		return nil, nil, domain.ErrInvalidAmount
	}
	if p.LockDuration <= 0 || p.LockDuration > maxLockYears*SecondsPerYear*time.Second {
		return nil, nil, domain.ErrInvalidDuration
	}

	acct := &domain.InterestAccount{
		ID:            uuid.New(),
		OwnerID:       p.OwnerID,
		Type:          p.Type,
		InterestType:  p.InterestType,
		Balance:       p.InitialDeposit,
		RateBps:       AccountRateBps(p.Type, p.LockDuration),
		CreatedAt:     now,
		LockEnd:       now.Add(p.LockDuration),
		LastAccrualAt: now,
		Active:        true,
		History: []domain.AccountEntry{
			{Kind: domain.EntryDeposit, Amount: p.InitialDeposit, At: now},
		},
	}

	events := []domain.Event{{
		Type:       domain.EventAccountCreated,
		EntityID:   acct.ID,
		Actor:      p.OwnerID,
		Amount:     p.InitialDeposit,
		OccurredAt: now,
	}}
	return acct, events, nil
}

// Deposit adds amount to the account balance.
func Deposit(acct *domain.InterestAccount, amount int64, now time.Time) ([]domain.Event, error) {
	if !acct.Active {
		return nil, domain.ErrAccountNotActive
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	newBalance, err := fixedpoint.CheckedAdd(acct.Balance, amount)
	if err != nil {
		return nil, err
	}

	acct.Balance = newBalance
	acct.History = append(acct.History, domain.AccountEntry{
		Kind: domain.EntryDeposit, Amount: amount, At: now,
	})
	return []domain.Event{{
		Type:       domain.EventDepositReceived,
		EntityID:   acct.ID,
		Actor:      acct.OwnerID,
		Amount:     amount,
		OccurredAt: now,
	}}, nil
}

// AccrueInterest computes interest for the time elapsed since the last
// accrual and adds it to the accrued-interest bucket. Zero elapsed time is a
// no-op, so two accruals can never apply to the same unadvanced timestamp.
//
// Compound accounts compound in whole years only: partial years contribute
// nothing, and the per-year factor (100 + rate/10000)/100 floor-divides the
// rate, so rates below 10000 bps compound to zero. Both truncations are
// intentional.
func AccrueInterest(acct *domain.InterestAccount, now time.Time) (int64, []domain.Event, error) {
	if !acct.Active {
		return 0, nil, domain.ErrAccountNotActive
	}
	elapsed := int64(now.Sub(acct.LastAccrualAt) / time.Second)
	if elapsed <= 0 {
		return 0, nil, nil
	}
	if elapsed > maxAccrualYears*SecondsPerYear {
		return 0, nil, domain.ErrTimePeriodTooLong
	}

	var interest int64
	var err error
	if acct.InterestType == domain.InterestCompound {
		interest, err = compoundInterest(acct.Balance, acct.RateBps, elapsed)
	} else {
		interest, err = simpleInterest(acct.Balance, acct.RateBps, elapsed)
	}
	if err != nil {
		return 0, nil, err
	}

	accrued, err := fixedpoint.CheckedAdd(acct.AccruedInterest, interest)
	if err != nil {
		return 0, nil, err
	}
	lifetime, err := fixedpoint.CheckedAdd(acct.LifetimeInterest, interest)
	if err != nil {
		return 0, nil, err
	}

	acct.AccruedInterest = accrued
	acct.LifetimeInterest = lifetime
	acct.LastAccrualAt = now

	var events []domain.Event
	if interest > 0 {
		acct.History = append(acct.History, domain.AccountEntry{
			Kind: domain.EntryInterest, Amount: interest, At: now,
		})
		events = append(events, domain.Event{
			Type:       domain.EventInterestPaid,
			EntityID:   acct.ID,
			Actor:      acct.OwnerID,
			Amount:     interest,
			OccurredAt: now,
		})
	}
	return interest, events, nil
}

// simpleInterest computes principal x rate x elapsed / (10000 x secondsPerYear).
func simpleInterest(principal, rateBps, elapsedSeconds int64) (int64, error) {
	num, err := fixedpoint.CheckedMul(rateBps, elapsedSeconds)
	if err != nil {
		return 0, err
	}
	return fixedpoint.MulRatio(principal, num, fixedpoint.BasisPoints*SecondsPerYear)
}

// compoundInterest applies whole-year compounding and returns the delta over
// the starting balance.
func compoundInterest(principal, rateBps, elapsedSeconds int64) (int64, error) {
	factor := 100 + rateBps/fixedpoint.BasisPoints
	balance := principal
	for years := elapsedSeconds / SecondsPerYear; years > 0; years-- {
		next, err := fixedpoint.MulRatio(balance, factor, 100)
		if err != nil {
			return 0, err
		}
		balance = next
	}
	return balance - principal, nil
}

// WithdrawalPenaltyBps derives the early-withdrawal penalty rate from the
// complete years remaining until lock end: 1000 bps per year, halved for
// flexible-term accounts.
func WithdrawalPenaltyBps(acct *domain.InterestAccount, now time.Time) int64 {
	if !now.Before(acct.LockEnd) {
		return 0
	}
	remaining := int64(acct.LockEnd.Sub(now) / time.Second)
	rate := remaining / SecondsPerYear * earlyPenaltyPerYearBps
	if acct.Type == domain.AccountFlexibleTerm {
		rate /= 2
	}
	return rate
}

// Withdraw takes amount out of the account, drawing accrued interest before
// principal. Withdrawing before lock end forfeits a penalty: the balance is
// reduced by the full amount but only the net is paid out. An account that
// reaches zero balance and zero accrued interest is flagged inactive.
func Withdraw(acct *domain.InterestAccount, amount int64, now time.Time) (*domain.AccountWithdrawal, []domain.Event, error) {
	if !acct.Active {
		return nil, nil, domain.ErrAccountNotActive
	}
	if amount <= 0 {
		return nil, nil, domain.ErrInvalidAmount
	}
	available, err := fixedpoint.CheckedAdd(acct.Balance, acct.AccruedInterest)
	if err != nil {
		return nil, nil, err
	}
	if amount > available {
		return nil, nil, domain.ErrInsufficientBalance
	}

	penalty, err := fixedpoint.ApplyBps(amount, WithdrawalPenaltyBps(acct, now))
	if err != nil {
		return nil, nil, err
	}
	if penalty > amount {
		return nil, nil, domain.ErrPenaltyExceedsAmount
	}
	net := amount - penalty

	fromInterest := amount
	if fromInterest > acct.AccruedInterest {
		fromInterest = acct.AccruedInterest
	}
	acct.AccruedInterest -= fromInterest
	acct.Balance -= amount - fromInterest
	if acct.Balance == 0 && acct.AccruedInterest == 0 {
		acct.Active = false
	}
	acct.History = append(acct.History, domain.AccountEntry{
		Kind: domain.EntryWithdrawal, Amount: net, At: now,
	})

	events := []domain.Event{{
		Type:       domain.EventWithdrawalProcessed,
		EntityID:   acct.ID,
		Actor:      acct.OwnerID,
		Amount:     net,
		Penalty:    penalty,
		OccurredAt: now,
	}}
	return &domain.AccountWithdrawal{NetAmount: net, Penalty: penalty}, events, nil
}
