package types

import (
	sdkmath "cosmossdk.io/math"
)

// SwapParams describes an exact-input swap against a pool.
type SwapParams struct {
	// ZeroForOne is true when token0 is sold for token1
	ZeroForOne bool

	// AmountIn is the exact input amount
	AmountIn sdkmath.Int

	// MinAmountOut aborts the swap when the output falls below it;
	// zero disables the check
	MinAmountOut sdkmath.Int
}

// Validate rejects non-positive inputs and negative output floors.
func (p SwapParams) Validate() error {
	if p.AmountIn.IsNil() || !p.AmountIn.IsPositive() {
		return ErrInvalidAmount.Wrap("swap input must be positive")
	}
	if p.MinAmountOut.IsNil() {
		return ErrInvalidAmount.Wrap("min amount out must be set (zero disables the check)")
	}
	if p.MinAmountOut.IsNegative() {
		return ErrInvalidAmount.Wrap("min amount out cannot be negative")
	}
	return nil
}

// TokenIn returns the denom being sold.
func (p SwapParams) TokenIn(pair PairKey) string {
	if p.ZeroForOne {
		return pair.Token0
	}
	return pair.Token1
}

// TokenOut returns the denom being bought.
func (p SwapParams) TokenOut(pair PairKey) string {
	if p.ZeroForOne {
		return pair.Token1
	}
	return pair.Token0
}
