package types

import (
	sdkmath "cosmossdk.io/math"
)

// Params holds the module's chain-level configuration.
type Params struct {
	// MaxPools caps how many pools can exist
	MaxPools uint64

	// MinInitialLiquidity is the floor for the geometric-mean shares
	// minted at pool creation
	MinInitialLiquidity sdkmath.Int

	// MaxPriceRatio bounds the initial reserve ratio in both
	// directions; creation fails when reserve1/reserve0 or its inverse
	// exceeds it
	MaxPriceRatio sdkmath.LegacyDec
}

// DefaultParams returns the default module parameters.
func DefaultParams() Params {
	return Params{
		MaxPools:            1000,
		MinInitialLiquidity: sdkmath.NewInt(1000),
		MaxPriceRatio:       sdkmath.LegacyNewDec(100_000_000), // 1e8
	}
}

// Validate validates the set of params.
func (p Params) Validate() error {
	if p.MaxPools == 0 {
		return ErrInvalidParams.Wrap("max pools must be positive")
	}
	if p.MinInitialLiquidity.IsNil() || !p.MinInitialLiquidity.IsPositive() {
		return ErrInvalidParams.Wrap("min initial liquidity must be positive")
	}
	if p.MaxPriceRatio.IsNil() || p.MaxPriceRatio.LTE(sdkmath.LegacyOneDec()) {
		return ErrInvalidParams.Wrap("max price ratio must exceed one")
	}
	return nil
}
