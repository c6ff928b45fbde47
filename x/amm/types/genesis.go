package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// FeeTier is one registry entry exported to genesis.
type FeeTier struct {
	PoolID PoolID
	Fee    uint32
}

// SharePosition is one liquidity position exported to genesis.
type SharePosition struct {
	PoolID PoolID
	Owner  string
	Shares sdkmath.Int
}

// GenesisState is the AMM module's genesis payload.
type GenesisState struct {
	Params    Params
	Pools     []Pool
	FeeTiers  []FeeTier
	Positions []SharePosition
}

// DefaultGenesis returns the default genesis state for the AMM module.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:    DefaultParams(),
		Pools:     []Pool{},
		FeeTiers:  []FeeTier{},
		Positions: []SharePosition{},
	}
}

// Validate ensures the genesis state is well-formed.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}

	seen := make(map[PoolID]struct{}, len(gs.Pools))
	for _, pool := range gs.Pools {
		if err := pool.Validate(); err != nil {
			return fmt.Errorf("pool %s: %w", pool.ID, err)
		}
		if _, ok := seen[pool.ID]; ok {
			return fmt.Errorf("duplicate pool id %s", pool.ID)
		}
		seen[pool.ID] = struct{}{}
	}

	for _, tier := range gs.FeeTiers {
		if _, ok := seen[tier.PoolID]; !ok {
			return fmt.Errorf("fee tier references unknown pool %s", tier.PoolID)
		}
		if err := ValidateFeeValue(tier.Fee); err != nil {
			return fmt.Errorf("fee tier for pool %s: %w", tier.PoolID, err)
		}
	}

	// Positions must reference known pools and their per-pool sum must
	// account for every outstanding share.
	sums := make(map[PoolID]sdkmath.Int, len(gs.Pools))
	seenOwner := make(map[string]struct{}, len(gs.Positions))
	for _, pos := range gs.Positions {
		if _, ok := seen[pos.PoolID]; !ok {
			return fmt.Errorf("position references unknown pool %s", pos.PoolID)
		}
		if pos.Owner == "" {
			return fmt.Errorf("position for pool %s has empty owner", pos.PoolID)
		}
		if pos.Shares.IsNil() || !pos.Shares.IsPositive() {
			return fmt.Errorf("position for pool %s owner %s: shares must be positive", pos.PoolID, pos.Owner)
		}
		ownerKey := pos.PoolID.String() + "/" + pos.Owner
		if _, ok := seenOwner[ownerKey]; ok {
			return fmt.Errorf("duplicate position for pool %s owner %s", pos.PoolID, pos.Owner)
		}
		seenOwner[ownerKey] = struct{}{}

		sum, ok := sums[pos.PoolID]
		if !ok {
			sum = sdkmath.ZeroInt()
		}
		sums[pos.PoolID] = sum.Add(pos.Shares)
	}
	for _, pool := range gs.Pools {
		sum, ok := sums[pool.ID]
		if !ok {
			sum = sdkmath.ZeroInt()
		}
		if !sum.Equal(pool.TotalShares) {
			return fmt.Errorf("pool %s shares mismatch: positions sum to %s, pool has %s",
				pool.ID, sum, pool.TotalShares)
		}
	}
	return nil
}
