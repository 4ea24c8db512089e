package fixedpoint

import (
	"errors"
	"math"
	"testing"

	"github.com/blockbudget/ledger-service/internal/domain"
)

func TestCheckedAdd(t *testing.T) {
	tests := []struct {
		name    string
		a, b    int64
		want    int64
		wantErr error
	}{
		{name: "simple sum", a: 100, b: 250, want: 350},
		{name: "zero operand", a: 0, b: 42, want: 42},
		{name: "max boundary", a: math.MaxInt64 - 1, b: 1, want: math.MaxInt64},
		{name: "overflow rejected", a: math.MaxInt64, b: 1, wantErr: domain.ErrOverflow},
		{name: "negative rejected", a: -1, b: 5, wantErr: domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckedAdd(tt.a, tt.b)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected err %v, got %v", tt.wantErr, err)
			}
			if err == nil && got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestCheckedSub(t *testing.T) {
	if _, err := CheckedSub(100, 101); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	got, err := CheckedSub(100, 100)
	if err != nil || got != 0 {
		t.Fatalf("expected 0, got %d err %v", got, err)
	}
}

func TestCheckedMul(t *testing.T) {
	if _, err := CheckedMul(math.MaxInt64/2+1, 2); !errors.Is(err, domain.ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	got, err := CheckedMul(0, math.MaxInt64)
	if err != nil || got != 0 {
		t.Fatalf("expected 0, got %d err %v", got, err)
	}
}

func TestApplyBps(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		rateBps int64
		want    int64
	}{
		{name: "ten percent", amount: 100, rateBps: 1000, want: 10},
		{name: "full rate", amount: 12345, rateBps: 10000, want: 12345},
		{name: "floors toward zero", amount: 99, rateBps: 500, want: 4},
		{name: "zero rate", amount: 1000, rateBps: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyBps(tt.amount, tt.rateBps)
			if err != nil {
				t.Fatalf("ApplyBps returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestMulRatioLargeIntermediate(t *testing.T) {
	// principal x rateBps x seconds-in-a-year would wrap int64 if computed
	// natively; the big.Int path must survive it.
	principal := int64(1_000_000_000_000_000_000)
	secondsPerYear := int64(365 * 24 * 3600)
	got, err := MulRatio(principal, 800*secondsPerYear, 10000*secondsPerYear)
	if err != nil {
		t.Fatalf("MulRatio returned error: %v", err)
	}
	want := int64(80_000_000_000_000_000)
	if got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMulRatioQuotientOverflow(t *testing.T) {
	if _, err := MulRatio(math.MaxInt64, 2, 1); !errors.Is(err, domain.ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}
