/**
 * @description
 * Overflow-checked integer arithmetic for ledger amounts. Amounts are int64
 * in the smallest currency unit; rates are integer basis points where
 * 10000 = 100%. Every helper fails instead of wrapping, and division always
 * truncates toward zero, which several accrual formulas depend on.
 *
 * MulRatio goes through math/big because intermediates like
 * principal x rateBps x elapsedSeconds exceed int64 for realistic inputs;
 * the result is checked back into int64 range.
 */

package fixedpoint

import (
	"math"
	"math/big"

	"github.com/blockbudget/ledger-service/internal/domain"
)

// BasisPoints is the denominator of all rate math: 10000 = 100%.
const BasisPoints = 10000

// CheckedAdd returns a+b or ErrOverflow.
func CheckedAdd(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, domain.ErrInvalidAmount
	}
	if a > math.MaxInt64-b {
		return 0, domain.ErrOverflow
	}
	return a + b, nil
}

// CheckedSub returns a-b or ErrInsufficientBalance when b exceeds a.
func CheckedSub(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, domain.ErrInvalidAmount
	}
	if b > a {
		return 0, domain.ErrInsufficientBalance
	}
	return a - b, nil
}

// CheckedMul returns a*b or ErrOverflow.
func CheckedMul(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, domain.ErrInvalidAmount
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxInt64/b {
		return 0, domain.ErrOverflow
	}
	return a * b, nil
}

// ApplyBps returns amount*rateBps/10000, floor-divided.
func ApplyBps(amount, rateBps int64) (int64, error) {
	return MulRatio(amount, rateBps, BasisPoints)
}

// MulRatio returns amount*num/den with floor division, computing the
// intermediate product at arbitrary precision so it cannot wrap. den must be
// positive. The quotient must fit in int64.
func MulRatio(amount, num, den int64) (int64, error) {
	if amount < 0 || num < 0 || den <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	p := new(big.Int).Mul(big.NewInt(amount), big.NewInt(num))
	p.Quo(p, big.NewInt(den))
	if !p.IsInt64() {
		return 0, domain.ErrOverflow
	}
	return p.Int64(), nil
}
