package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// InitGenesis initializes the AMM module's state from a genesis state.
func (k Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return fmt.Errorf("invalid genesis state: %w", err)
	}

	if err := k.SetParams(ctx, genState.Params); err != nil {
		return fmt.Errorf("failed to set params: %w", err)
	}

	store := k.getStore(ctx)
	for _, pool := range genState.Pools {
		if err := k.SetPool(ctx, pool); err != nil {
			return fmt.Errorf("failed to set pool %s: %w", pool.ID, err)
		}
		store.Set(PoolByTokensKey(pool.Pair.Token0, pool.Pair.Token1), pool.ID.Bytes())
	}
	k.setPoolCount(ctx, uint64(len(genState.Pools)))

	for _, tier := range genState.FeeTiers {
		if err := k.UpdateFee(ctx, tier.PoolID, tier.Fee); err != nil {
			return fmt.Errorf("failed to set fee tier for pool %s: %w", tier.PoolID, err)
		}
	}

	for _, pos := range genState.Positions {
		k.setPosition(ctx, pos.PoolID, pos.Owner, pos.Shares)
	}

	k.metrics.PoolsTotal.Set(float64(len(genState.Pools)))

	return nil
}

// ExportGenesis exports the AMM module's state to a genesis state.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	pools, err := k.GetAllPools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pools: %w", err)
	}

	var tiers []types.FeeTier
	k.iterateFeeTiers(ctx, func(poolID types.PoolID, fee uint32) bool {
		tiers = append(tiers, types.FeeTier{PoolID: poolID, Fee: fee})
		return false
	})

	var positions []types.SharePosition
	if err := k.iteratePositions(ctx, func(pos types.SharePosition) bool {
		positions = append(positions, pos)
		return false
	}); err != nil {
		sdkCtx := sdk.UnwrapSDKContext(ctx)
		sdkCtx.Logger().Error("failed to iterate positions during export", "error", err)
	}

	return &types.GenesisState{
		Params:    k.GetParams(ctx),
		Pools:     pools,
		FeeTiers:  tiers,
		Positions: positions,
	}, nil
}
