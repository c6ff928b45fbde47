package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// Swap executes an exact-input swap against the pool, charging the
// pool's effective fee from the fee-tier registry, and dispatches the
// swap checkpoints. The returned delta is oriented by direction:
// the input amount is positive (owed to the pool), the output amount
// negative (owed to the caller).
func (k Keeper) Swap(ctx context.Context, caller string, poolID types.PoolID, params types.SwapParams) (types.BalanceDelta, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	// 1. Input validation
	if err := params.Validate(); err != nil {
		k.metrics.OperationsTotal.WithLabelValues("swap", "error").Inc()
		return types.BalanceDelta{}, err
	}

	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		k.metrics.OperationsTotal.WithLabelValues("swap", "error").Inc()
		return types.BalanceDelta{}, err
	}
	if !pool.HasLiquidity() {
		k.metrics.OperationsTotal.WithLabelValues("swap", "error").Inc()
		return types.BalanceDelta{}, types.ErrInsufficientLiquidity.Wrapf("pool %s has no reserves", poolID)
	}

	// 2. Effective fee for this swap; fees pushed by the extension in
	// its after-swap handler take effect from the next swap on
	fee, err := k.GetFee(ctx, poolID)
	if err != nil {
		k.metrics.OperationsTotal.WithLabelValues("swap", "error").Inc()
		return types.BalanceDelta{}, err
	}

	// 3. Atomic section
	cacheCtx, writeFn := sdkCtx.CacheContext()

	if err := k.dispatchCheckpoint(cacheCtx, types.CheckpointBeforeSwap, pool.Pair, func(ext types.Extension) (types.CheckpointAck, error) {
		return ext.BeforeSwap(cacheCtx, caller, pool.Pair, params)
	}); err != nil {
		k.metrics.OperationsTotal.WithLabelValues("swap", "error").Inc()
		return types.BalanceDelta{}, err
	}

	reserveIn, reserveOut := pool.Reserve0, pool.Reserve1
	if !params.ZeroForOne {
		reserveIn, reserveOut = pool.Reserve1, pool.Reserve0
	}

	amountOut, err := CalculateSwapOutput(params.AmountIn, reserveIn, reserveOut, fee)
	if err != nil {
		k.metrics.OperationsTotal.WithLabelValues("swap", "error").Inc()
		return types.BalanceDelta{}, err
	}
	if amountOut.IsZero() {
		k.metrics.OperationsTotal.WithLabelValues("swap", "error").Inc()
		return types.BalanceDelta{}, types.ErrInvalidAmount.Wrap("swap produces zero output")
	}
	if params.MinAmountOut.IsPositive() && amountOut.LT(params.MinAmountOut) {
		k.metrics.OperationsTotal.WithLabelValues("swap", "error").Inc()
		return types.BalanceDelta{}, types.ErrSlippageExceeded.Wrapf(
			"output %s below minimum %s", amountOut, params.MinAmountOut)
	}

	newReserveIn := reserveIn.Add(params.AmountIn)
	newReserveOut := reserveOut.Sub(amountOut)

	// Product invariant must not shrink; the fee keeps it growing
	if newReserveIn.Mul(newReserveOut).LT(reserveIn.Mul(reserveOut)) {
		k.metrics.OperationsTotal.WithLabelValues("swap", "error").Inc()
		return types.BalanceDelta{}, types.ErrInvalidPoolState.Wrap("constant product invariant violated")
	}

	if params.ZeroForOne {
		pool.Reserve0, pool.Reserve1 = newReserveIn, newReserveOut
	} else {
		pool.Reserve0, pool.Reserve1 = newReserveOut, newReserveIn
	}
	pool.LastSwapTime = sdkCtx.BlockTime().Unix()

	if err := k.SetPool(cacheCtx, pool); err != nil {
		k.metrics.OperationsTotal.WithLabelValues("swap", "error").Inc()
		return types.BalanceDelta{}, err
	}

	var delta types.BalanceDelta
	if params.ZeroForOne {
		delta = types.NewBalanceDelta(params.AmountIn, amountOut.Neg())
	} else {
		delta = types.NewBalanceDelta(amountOut.Neg(), params.AmountIn)
	}

	if err := k.dispatchCheckpoint(cacheCtx, types.CheckpointAfterSwap, pool.Pair, func(ext types.Extension) (types.CheckpointAck, error) {
		return ext.AfterSwap(cacheCtx, caller, pool.Pair, params, delta)
	}); err != nil {
		k.metrics.OperationsTotal.WithLabelValues("swap", "error").Inc()
		return types.BalanceDelta{}, err
	}

	writeFn()

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeSwapExecuted,
			sdk.NewAttribute(types.AttributeKeyPoolID, poolID.String()),
			sdk.NewAttribute(types.AttributeKeyCaller, caller),
			sdk.NewAttribute(types.AttributeKeyAmountIn, params.AmountIn.String()),
			sdk.NewAttribute(types.AttributeKeyAmountOut, amountOut.String()),
			sdk.NewAttribute(types.AttributeKeyFee, math.NewIntFromUint64(uint64(fee)).String()),
		),
	)
	k.metrics.OperationsTotal.WithLabelValues("swap", "ok").Inc()
	k.metrics.SwapVolume.WithLabelValues(poolID.String(), params.TokenIn(pool.Pair)).Add(floatFromInt(params.AmountIn))

	return delta, nil
}

// CalculateSwapOutput computes the constant-product output for an
// exact input with the fee (parts-per-million) charged on the input:
//
//	out = (in * (1e6 - fee) * reserveOut) / (reserveIn * 1e6 + in * (1e6 - fee))
func CalculateSwapOutput(amountIn, reserveIn, reserveOut math.Int, fee uint32) (math.Int, error) {
	if !amountIn.IsPositive() {
		return math.Int{}, types.ErrInvalidAmount.Wrap("swap input must be positive")
	}
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return math.Int{}, types.ErrInsufficientLiquidity.Wrap("zero reserves")
	}
	if fee >= types.FeeDenominator {
		return math.Int{}, types.ErrInvalidFee.Wrapf("fee %d consumes the whole input", fee)
	}

	feeDenom := math.NewIntFromUint64(uint64(types.FeeDenominator))
	amountInWithFee := amountIn.Mul(math.NewIntFromUint64(uint64(types.FeeDenominator - fee)))
	numerator := amountInWithFee.Mul(reserveOut)
	denominator := reserveIn.Mul(feeDenom).Add(amountInWithFee)

	return numerator.Quo(denominator), nil
}

// SimulateSwap quotes a swap without executing it. Returns the output
// amount and the fee that would be charged.
func (k Keeper) SimulateSwap(ctx context.Context, poolID types.PoolID, params types.SwapParams) (math.Int, uint32, error) {
	if err := params.Validate(); err != nil {
		return math.Int{}, 0, err
	}
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.Int{}, 0, err
	}
	if !pool.HasLiquidity() {
		return math.Int{}, 0, types.ErrInsufficientLiquidity.Wrapf("pool %s has no reserves", poolID)
	}
	fee, err := k.GetFee(ctx, poolID)
	if err != nil {
		return math.Int{}, 0, err
	}

	reserveIn, reserveOut := pool.Reserve0, pool.Reserve1
	if !params.ZeroForOne {
		reserveIn, reserveOut = pool.Reserve1, pool.Reserve0
	}
	amountOut, err := CalculateSwapOutput(params.AmountIn, reserveIn, reserveOut, fee)
	if err != nil {
		return math.Int{}, 0, err
	}
	return amountOut, fee, nil
}

// floatFromInt converts for metrics only; precision loss is acceptable
// outside consensus state.
func floatFromInt(v math.Int) float64 {
	f, _ := math.LegacyNewDecFromInt(v).Float64()
	return f
}
