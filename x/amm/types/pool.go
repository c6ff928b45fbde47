package types

import (
	sdkmath "cosmossdk.io/math"
)

// PriceScale is the fixed-point scale for prices (1e18).
var PriceScale = sdkmath.NewIntWithDecimal(1, 18)

// Pool is the stored state of one constant-product pool.
type Pool struct {
	// ID is the identifier derived from Pair at creation
	ID PoolID

	// Pair is the canonical pool identity
	Pair PairKey

	// Reserve0 and Reserve1 track the pool-side balances
	Reserve0 sdkmath.Int
	Reserve1 sdkmath.Int

	// TotalShares is the outstanding liquidity supply
	TotalShares sdkmath.Int

	// CreatedAt and LastSwapTime are unix seconds
	CreatedAt    int64
	LastSwapTime int64
}

// HasLiquidity reports whether both reserves are positive.
func (p Pool) HasLiquidity() bool {
	return p.Reserve0.IsPositive() && p.Reserve1.IsPositive()
}

// SpotPrice returns reserve1-per-reserve0 scaled by PriceScale.
func (p Pool) SpotPrice() (sdkmath.Int, error) {
	if !p.Reserve0.IsPositive() {
		return sdkmath.Int{}, ErrInsufficientLiquidity.Wrap("zero reserve0")
	}
	return p.Reserve1.Mul(PriceScale).Quo(p.Reserve0), nil
}

// Validate checks internal consistency of a stored pool record.
func (p Pool) Validate() error {
	if err := p.Pair.Validate(); err != nil {
		return err
	}
	if p.ID != p.Pair.PoolID() {
		return ErrInvalidPoolState.Wrapf("pool id %s does not match pair", p.ID)
	}
	if p.Reserve0.IsNil() || p.Reserve1.IsNil() || p.TotalShares.IsNil() {
		return ErrInvalidPoolState.Wrap("nil pool amounts")
	}
	if p.Reserve0.IsNegative() || p.Reserve1.IsNegative() {
		return ErrInvalidPoolState.Wrap("negative reserves")
	}
	if p.TotalShares.IsNegative() {
		return ErrInvalidPoolState.Wrap("negative total shares")
	}
	if p.TotalShares.IsZero() && (p.Reserve0.IsPositive() || p.Reserve1.IsPositive()) {
		return ErrInvalidPoolState.Wrap("pool has reserves but zero shares")
	}
	if p.TotalShares.IsPositive() && (p.Reserve0.IsZero() || p.Reserve1.IsZero()) {
		return ErrInvalidPoolState.Wrap("pool has shares but zero reserves")
	}
	return nil
}
