package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// GetPosition returns a caller's liquidity shares in a pool.
func (k Keeper) GetPosition(ctx context.Context, poolID types.PoolID, caller string) math.Int {
	bz := k.getStore(ctx).Get(PositionKey(poolID, caller))
	if bz == nil {
		return math.ZeroInt()
	}

	var shares math.Int
	if err := shares.Unmarshal(bz); err != nil {
		return math.ZeroInt()
	}
	return shares
}

func (k Keeper) setPosition(ctx context.Context, poolID types.PoolID, caller string, shares math.Int) {
	store := k.getStore(ctx)
	if shares.IsZero() {
		store.Delete(PositionKey(poolID, caller))
		return
	}
	bz, err := shares.Marshal()
	if err != nil {
		panic(err)
	}
	store.Set(PositionKey(poolID, caller), bz)
}

// ModifyPosition mints (positive delta) or burns (negative delta)
// liquidity shares against the pool's current reserves and dispatches
// the modify-position checkpoints. Returns the signed token movements:
// positive amounts are owed to the pool, negative to the caller.
func (k Keeper) ModifyPosition(ctx context.Context, caller string, poolID types.PoolID, liquidityDelta math.Int) (types.BalanceDelta, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if liquidityDelta.IsNil() || liquidityDelta.IsZero() {
		k.metrics.OperationsTotal.WithLabelValues("modify_position", "error").Inc()
		return types.BalanceDelta{}, types.ErrInvalidAmount.Wrap("liquidity delta cannot be zero")
	}

	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		k.metrics.OperationsTotal.WithLabelValues("modify_position", "error").Inc()
		return types.BalanceDelta{}, err
	}
	if !pool.HasLiquidity() {
		k.metrics.OperationsTotal.WithLabelValues("modify_position", "error").Inc()
		return types.BalanceDelta{}, types.ErrInsufficientLiquidity.Wrapf("pool %s has no reserves", poolID)
	}

	cacheCtx, writeFn := sdkCtx.CacheContext()

	if err := k.dispatchCheckpoint(cacheCtx, types.CheckpointBeforeModifyPosition, pool.Pair, func(ext types.Extension) (types.CheckpointAck, error) {
		return ext.BeforeModifyPosition(cacheCtx, caller, pool.Pair, liquidityDelta)
	}); err != nil {
		k.metrics.OperationsTotal.WithLabelValues("modify_position", "error").Inc()
		return types.BalanceDelta{}, err
	}

	var delta types.BalanceDelta
	position := k.GetPosition(cacheCtx, poolID, caller)

	if liquidityDelta.IsPositive() {
		// Mint: amounts owed to the pool, rounded up so share value
		// never dilutes existing holders
		amount0 := ceilDiv(liquidityDelta.Mul(pool.Reserve0), pool.TotalShares)
		amount1 := ceilDiv(liquidityDelta.Mul(pool.Reserve1), pool.TotalShares)

		pool.Reserve0 = pool.Reserve0.Add(amount0)
		pool.Reserve1 = pool.Reserve1.Add(amount1)
		pool.TotalShares = pool.TotalShares.Add(liquidityDelta)
		k.setPosition(cacheCtx, poolID, caller, position.Add(liquidityDelta))

		delta = types.NewBalanceDelta(amount0, amount1)
	} else {
		burn := liquidityDelta.Neg()
		if burn.GT(position) {
			k.metrics.OperationsTotal.WithLabelValues("modify_position", "error").Inc()
			return types.BalanceDelta{}, types.ErrInsufficientShares.Wrapf(
				"caller holds %s shares, tried to burn %s", position, burn)
		}

		var amount0, amount1 math.Int
		if burn.Equal(pool.TotalShares) {
			// Final burn drains the reserves exactly so no dust is
			// stranded in an empty pool
			amount0 = pool.Reserve0
			amount1 = pool.Reserve1
		} else {
			amount0 = burn.Mul(pool.Reserve0).Quo(pool.TotalShares)
			amount1 = burn.Mul(pool.Reserve1).Quo(pool.TotalShares)
		}

		pool.Reserve0 = pool.Reserve0.Sub(amount0)
		pool.Reserve1 = pool.Reserve1.Sub(amount1)
		pool.TotalShares = pool.TotalShares.Sub(burn)
		k.setPosition(cacheCtx, poolID, caller, position.Sub(burn))

		delta = types.NewBalanceDelta(amount0.Neg(), amount1.Neg())
	}

	if err := k.SetPool(cacheCtx, pool); err != nil {
		k.metrics.OperationsTotal.WithLabelValues("modify_position", "error").Inc()
		return types.BalanceDelta{}, err
	}

	if err := k.dispatchCheckpoint(cacheCtx, types.CheckpointAfterModifyPosition, pool.Pair, func(ext types.Extension) (types.CheckpointAck, error) {
		return ext.AfterModifyPosition(cacheCtx, caller, pool.Pair, liquidityDelta, delta)
	}); err != nil {
		k.metrics.OperationsTotal.WithLabelValues("modify_position", "error").Inc()
		return types.BalanceDelta{}, err
	}

	writeFn()

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePositionModified,
			sdk.NewAttribute(types.AttributeKeyPoolID, poolID.String()),
			sdk.NewAttribute(types.AttributeKeyCaller, caller),
			sdk.NewAttribute(types.AttributeKeyLiquidityDelta, liquidityDelta.String()),
			sdk.NewAttribute(types.AttributeKeyAmount0, delta.Amount0.String()),
			sdk.NewAttribute(types.AttributeKeyAmount1, delta.Amount1.String()),
		),
	)
	k.metrics.OperationsTotal.WithLabelValues("modify_position", "ok").Inc()

	return delta, nil
}

// ceilDiv divides rounding away from zero for positive operands.
func ceilDiv(num, den math.Int) math.Int {
	return num.Add(den.SubRaw(1)).Quo(den)
}

// iteratePositions visits every stored position. Used by genesis export.
func (k Keeper) iteratePositions(ctx context.Context, cb func(pos types.SharePosition) bool) error {
	store := k.getStore(ctx)
	iterator := sdk.KVStorePrefixIterator(store, PositionKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		key := iterator.Key()
		if len(key) <= len(PositionKeyPrefix)+32 {
			continue
		}
		var poolID types.PoolID
		copy(poolID[:], key[len(PositionKeyPrefix):len(PositionKeyPrefix)+32])
		owner := string(key[len(PositionKeyPrefix)+32:])

		var shares math.Int
		if err := shares.Unmarshal(iterator.Value()); err != nil {
			return err
		}
		if cb(types.SharePosition{PoolID: poolID, Owner: owner, Shares: shares}) {
			break
		}
	}
	return nil
}
