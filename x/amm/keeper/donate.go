package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// Donate adds tokens to the pool reserves without minting shares,
// raising the value of every outstanding share. At least one amount
// must be positive and the pool must already hold liquidity so the
// donation has shares to accrue to.
func (k Keeper) Donate(ctx context.Context, caller string, poolID types.PoolID, amount0, amount1 math.Int) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if amount0.IsNil() || amount1.IsNil() || amount0.IsNegative() || amount1.IsNegative() {
		k.metrics.OperationsTotal.WithLabelValues("donate", "error").Inc()
		return types.ErrInvalidAmount.Wrap("donation amounts must be non-negative")
	}
	if amount0.IsZero() && amount1.IsZero() {
		k.metrics.OperationsTotal.WithLabelValues("donate", "error").Inc()
		return types.ErrInvalidAmount.Wrap("donation must include at least one token")
	}

	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		k.metrics.OperationsTotal.WithLabelValues("donate", "error").Inc()
		return err
	}
	if !pool.HasLiquidity() {
		k.metrics.OperationsTotal.WithLabelValues("donate", "error").Inc()
		return types.ErrInsufficientLiquidity.Wrapf("pool %s has no shares to donate to", poolID)
	}

	cacheCtx, writeFn := sdkCtx.CacheContext()

	if err := k.dispatchCheckpoint(cacheCtx, types.CheckpointBeforeDonate, pool.Pair, func(ext types.Extension) (types.CheckpointAck, error) {
		return ext.BeforeDonate(cacheCtx, caller, pool.Pair, amount0, amount1)
	}); err != nil {
		k.metrics.OperationsTotal.WithLabelValues("donate", "error").Inc()
		return err
	}

	pool.Reserve0 = pool.Reserve0.Add(amount0)
	pool.Reserve1 = pool.Reserve1.Add(amount1)
	if err := k.SetPool(cacheCtx, pool); err != nil {
		k.metrics.OperationsTotal.WithLabelValues("donate", "error").Inc()
		return err
	}

	delta := types.NewBalanceDelta(amount0, amount1)
	if err := k.dispatchCheckpoint(cacheCtx, types.CheckpointAfterDonate, pool.Pair, func(ext types.Extension) (types.CheckpointAck, error) {
		return ext.AfterDonate(cacheCtx, caller, pool.Pair, amount0, amount1, delta)
	}); err != nil {
		k.metrics.OperationsTotal.WithLabelValues("donate", "error").Inc()
		return err
	}

	writeFn()

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeDonationReceived,
			sdk.NewAttribute(types.AttributeKeyPoolID, poolID.String()),
			sdk.NewAttribute(types.AttributeKeyCaller, caller),
			sdk.NewAttribute(types.AttributeKeyAmount0, amount0.String()),
			sdk.NewAttribute(types.AttributeKeyAmount1, amount1.String()),
		),
	)
	k.metrics.OperationsTotal.WithLabelValues("donate", "ok").Inc()

	return nil
}
