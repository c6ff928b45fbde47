package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// BalanceDelta carries the signed token movements produced by one pool
// operation. Positive amounts are owed to the pool, negative amounts
// are owed to the caller; settlement is the caller's responsibility.
type BalanceDelta struct {
	Amount0 sdkmath.Int
	Amount1 sdkmath.Int
}

// NewBalanceDelta constructs a delta from the two signed amounts.
func NewBalanceDelta(amount0, amount1 sdkmath.Int) BalanceDelta {
	return BalanceDelta{Amount0: amount0, Amount1: amount1}
}

// ZeroBalanceDelta returns a delta with both sides zero.
func ZeroBalanceDelta() BalanceDelta {
	return BalanceDelta{Amount0: sdkmath.ZeroInt(), Amount1: sdkmath.ZeroInt()}
}

// IsZero reports whether both sides are zero.
func (d BalanceDelta) IsZero() bool {
	return d.Amount0.IsZero() && d.Amount1.IsZero()
}

// Neg returns the delta with both signs flipped.
func (d BalanceDelta) Neg() BalanceDelta {
	return BalanceDelta{Amount0: d.Amount0.Neg(), Amount1: d.Amount1.Neg()}
}

func (d BalanceDelta) String() string {
	return fmt.Sprintf("delta{amount0: %s, amount1: %s}", d.Amount0, d.Amount1)
}
