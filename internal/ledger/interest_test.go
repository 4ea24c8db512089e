package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/blockbudget/ledger-service/internal/domain"
)

var testEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func openTestAccount(t *testing.T, accountType domain.AccountType, interestType domain.InterestType, lockYears int64, deposit int64) *domain.InterestAccount {
	t.Helper()
	acct, _, err := OpenAccount(OpenAccountParams{
		OwnerID:        uuid.New(),
		Type:           accountType,
		InterestType:   interestType,
		LockDuration:   time.Duration(lockYears*SecondsPerYear) * time.Second,
		InitialDeposit: deposit,
	}, testEpoch)
	if err != nil {
		t.Fatalf("OpenAccount returned error: %v", err)
	}
	return acct
}

func TestAccountRateBps(t *testing.T) {
	tests := []struct {
		name        string
		accountType domain.AccountType
		lockYears   int64
		want        int64
	}{
		{name: "fixed term one year", accountType: domain.AccountFixedTerm, lockYears: 1, want: 800},
		{name: "flexible term one year", accountType: domain.AccountFlexibleTerm, lockYears: 1, want: 600},
		{name: "ladder term three years", accountType: domain.AccountLadderTerm, lockYears: 3, want: 1100},
		{name: "fixed term ten years", accountType: domain.AccountFixedTerm, lockYears: 10, want: 1700},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AccountRateBps(tt.accountType, time.Duration(tt.lockYears*SecondsPerYear)*time.Second)
			if got != tt.want {
				t.Fatalf("expected %d bps, got %d", tt.want, got)
			}
		})
	}
}

func TestOpenAccountValidation(t *testing.T) {
	tests := []struct {
		name    string
		params  OpenAccountParams
		wantErr error
	}{
		{
			name:    "nil owner",
			params:  OpenAccountParams{InitialDeposit: 100, LockDuration: time.Hour},
			wantErr: domain.ErrInvalidOwner,
		},
		{
			name:    "zero deposit",
			params:  OpenAccountParams{OwnerID: uuid.New(), LockDuration: time.Hour},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "zero duration",
			params:  OpenAccountParams{OwnerID: uuid.New(), InitialDeposit: 100},
			wantErr: domain.ErrInvalidDuration,
		},
		{
			name: "duration beyond ten years",
			params: OpenAccountParams{
				OwnerID:        uuid.New(),
				InitialDeposit: 100,
				LockDuration:   time.Duration(11*SecondsPerYear) * time.Second,
			},
			wantErr: domain.ErrInvalidDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := OpenAccount(tt.params, testEpoch)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCompoundAccrualTruncatesSubHundredPercentRates(t *testing.T) {
	// Fixed term, one year lock: rate = 500+100+200 = 800 bps. The compound
	// per-year factor floor-divides rate/10000 to zero, so a full year of
	// compounding yields zero interest.
	acct := openTestAccount(t, domain.AccountFixedTerm, domain.InterestCompound, 1, 1000)
	if acct.RateBps != 800 {
		t.Fatalf("expected rate 800 bps, got %d", acct.RateBps)
	}

	interest, events, err := AccrueInterest(acct, testEpoch.Add(365*24*time.Hour))
	if err != nil {
		t.Fatalf("AccrueInterest returned error: %v", err)
	}
	if interest != 0 {
		t.Fatalf("expected zero compound interest, got %d", interest)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events for zero interest, got %d", len(events))
	}
	if acct.Balance != 1000 || acct.AccruedInterest != 0 {
		t.Fatalf("account mutated unexpectedly: balance=%d accrued=%d", acct.Balance, acct.AccruedInterest)
	}
}

func TestCompoundAccrualAboveHundredPercent(t *testing.T) {
	acct := openTestAccount(t, domain.AccountFixedTerm, domain.InterestCompound, 1, 1000)
	acct.RateBps = 20000 // 200%: factor (100 + 2)/100 per year

	interest, _, err := AccrueInterest(acct, testEpoch.Add(2*365*24*time.Hour))
	if err != nil {
		t.Fatalf("AccrueInterest returned error: %v", err)
	}
	// 1000 -> 1020 -> 1040 (floor of 1020*102/100).
	if interest != 40 {
		t.Fatalf("expected 40 interest over two years, got %d", interest)
	}
	if acct.AccruedInterest != 40 || acct.Balance != 1000 {
		t.Fatalf("expected interest in accrued bucket only: balance=%d accrued=%d", acct.Balance, acct.AccruedInterest)
	}
}

func TestSimpleAccrual(t *testing.T) {
	acct := openTestAccount(t, domain.AccountFixedTerm, domain.InterestFixed, 1, 1_000_000)

	halfYear := time.Duration(SecondsPerYear/2) * time.Second
	interest, events, err := AccrueInterest(acct, testEpoch.Add(halfYear))
	if err != nil {
		t.Fatalf("AccrueInterest returned error: %v", err)
	}
	// 1_000_000 x 800 x (SPY/2) / (10000 x SPY) = 40_000.
	if interest != 40_000 {
		t.Fatalf("expected 40000 interest, got %d", interest)
	}
	if len(events) != 1 || events[0].Type != domain.EventInterestPaid {
		t.Fatalf("expected one InterestPaid event, got %v", events)
	}
	if acct.LifetimeInterest != 40_000 {
		t.Fatalf("expected lifetime interest 40000, got %d", acct.LifetimeInterest)
	}
}

func TestAccrualSameInstantIsNoOp(t *testing.T) {
	acct := openTestAccount(t, domain.AccountFixedTerm, domain.InterestFixed, 1, 1_000_000)
	at := testEpoch.Add(time.Duration(SecondsPerYear/2) * time.Second)

	first, _, err := AccrueInterest(acct, at)
	if err != nil {
		t.Fatalf("first accrual returned error: %v", err)
	}
	second, events, err := AccrueInterest(acct, at)
	if err != nil {
		t.Fatalf("second accrual returned error: %v", err)
	}
	if second != 0 || len(events) != 0 {
		t.Fatalf("expected no-op on unadvanced timestamp, got interest=%d events=%d", second, len(events))
	}
	if acct.AccruedInterest != first {
		t.Fatalf("accrued interest changed on no-op: %d != %d", acct.AccruedInterest, first)
	}
}

func TestAccrualPeriodSanityBound(t *testing.T) {
	acct := openTestAccount(t, domain.AccountFixedTerm, domain.InterestFixed, 1, 1000)
	farFuture := testEpoch.Add(time.Duration(101*SecondsPerYear) * time.Second)
	if _, _, err := AccrueInterest(acct, farFuture); !errors.Is(err, domain.ErrTimePeriodTooLong) {
		t.Fatalf("expected ErrTimePeriodTooLong, got %v", err)
	}
}

func TestWithdrawalPenaltyBps(t *testing.T) {
	tests := []struct {
		name        string
		accountType domain.AccountType
		lockYears   int64
		at          time.Time
		want        int64
	}{
		{name: "two full years remaining", accountType: domain.AccountFixedTerm, lockYears: 2, at: testEpoch, want: 2000},
		{name: "under one year remaining floors to zero", accountType: domain.AccountFixedTerm, lockYears: 1, at: testEpoch.Add(time.Hour), want: 0},
		{name: "flexible term halves the rate", accountType: domain.AccountFlexibleTerm, lockYears: 2, at: testEpoch, want: 1000},
		{name: "after lock end no penalty", accountType: domain.AccountFixedTerm, lockYears: 1, at: testEpoch.Add(time.Duration(SecondsPerYear+1) * time.Second), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct := openTestAccount(t, tt.accountType, domain.InterestFixed, tt.lockYears, 1000)
			if got := WithdrawalPenaltyBps(acct, tt.at); got != tt.want {
				t.Fatalf("expected %d bps, got %d", tt.want, got)
			}
		})
	}
}

func TestDepositThenImmediateWithdrawRoundTrip(t *testing.T) {
	// Two-year lock gives a 2000 bps penalty at t0. Withdrawing the full
	// balance nets amount minus penalty and leaves the account empty and
	// inactive.
	acct := openTestAccount(t, domain.AccountFixedTerm, domain.InterestFixed, 2, 1000)

	res, events, err := Withdraw(acct, 1000, testEpoch)
	if err != nil {
		t.Fatalf("Withdraw returned error: %v", err)
	}
	if res.Penalty != 200 || res.NetAmount != 800 {
		t.Fatalf("expected net=800 penalty=200, got net=%d penalty=%d", res.NetAmount, res.Penalty)
	}
	if acct.Balance != 0 {
		t.Fatalf("expected zero balance, got %d", acct.Balance)
	}
	if acct.Active {
		t.Fatal("expected account flagged inactive once fully drained")
	}
	if len(events) != 1 || events[0].Type != domain.EventWithdrawalProcessed {
		t.Fatalf("expected one WithdrawalProcessed event, got %v", events)
	}
	if events[0].Amount != 800 || events[0].Penalty != 200 {
		t.Fatalf("event payload mismatch: %+v", events[0])
	}
}

func TestWithdrawDrawsInterestBeforePrincipal(t *testing.T) {
	acct := openTestAccount(t, domain.AccountFixedTerm, domain.InterestFixed, 1, 1_000_000)
	afterLock := testEpoch.Add(time.Duration(SecondsPerYear) * time.Second)
	if _, _, err := AccrueInterest(acct, afterLock); err != nil {
		t.Fatalf("AccrueInterest returned error: %v", err)
	}
	// rate 800 bps over one year: 80_000 accrued.
	if acct.AccruedInterest != 80_000 {
		t.Fatalf("expected 80000 accrued, got %d", acct.AccruedInterest)
	}

	res, _, err := Withdraw(acct, 100_000, afterLock)
	if err != nil {
		t.Fatalf("Withdraw returned error: %v", err)
	}
	if res.Penalty != 0 || res.NetAmount != 100_000 {
		t.Fatalf("expected penalty-free withdrawal, got %+v", res)
	}
	if acct.AccruedInterest != 0 {
		t.Fatalf("expected accrued interest drained first, got %d", acct.AccruedInterest)
	}
	if acct.Balance != 980_000 {
		t.Fatalf("expected balance 980000, got %d", acct.Balance)
	}
}

func TestWithdrawGuards(t *testing.T) {
	acct := openTestAccount(t, domain.AccountFixedTerm, domain.InterestFixed, 1, 1000)

	if _, _, err := Withdraw(acct, 0, testEpoch); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, _, err := Withdraw(acct, 1001, testEpoch); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	acct.Active = false
	if _, _, err := Withdraw(acct, 100, testEpoch); !errors.Is(err, domain.ErrAccountNotActive) {
		t.Fatalf("expected ErrAccountNotActive, got %v", err)
	}
	if _, err := Deposit(acct, 100, testEpoch); !errors.Is(err, domain.ErrAccountNotActive) {
		t.Fatalf("expected ErrAccountNotActive on deposit, got %v", err)
	}
}

func TestBalanceNeverNegative(t *testing.T) {
	acct := openTestAccount(t, domain.AccountFlexibleTerm, domain.InterestFixed, 2, 500)
	if _, err := Deposit(acct, 500, testEpoch); err != nil {
		t.Fatalf("Deposit returned error: %v", err)
	}

	steps := []int64{300, 300, 400}
	for _, amount := range steps {
		if _, _, err := Withdraw(acct, amount, testEpoch); err != nil {
			t.Fatalf("Withdraw(%d) returned error: %v", amount, err)
		}
		if acct.Balance < 0 {
			t.Fatalf("balance went negative: %d", acct.Balance)
		}
	}
	if acct.Balance != 0 {
		t.Fatalf("expected fully drained balance, got %d", acct.Balance)
	}
}
