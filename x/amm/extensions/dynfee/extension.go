package dynfee

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// Extension recomputes a pool's effective fee after every qualifying
// swap from rolling volatility, liquidity and activity statistics, and
// pushes the result to the fee-tier registry.
type Extension struct {
	storeKey storetypes.StoreKey
	registry FeeRegistry
	metrics  *Metrics
}

// NewExtension creates the dynamic fee extension backed by its own
// store and the shared fee-tier registry.
func NewExtension(storeKey storetypes.StoreKey, registry FeeRegistry) *Extension {
	return &Extension{
		storeKey: storeKey,
		registry: registry,
		metrics:  NewMetrics(),
	}
}

func (e Extension) Name() string { return ExtensionName }

func (e Extension) Permissions() types.ExtensionPermissions {
	return types.ExtensionPermissions{
		BeforeSwap: true,
		AfterSwap:  true,
	}
}

// BeforeSwap gates the swap on pair sanity and a usable registry fee.
// No state is written here.
func (e Extension) BeforeSwap(ctx context.Context, caller string, pair types.PairKey, params types.SwapParams) (types.CheckpointAck, error) {
	if pair.Token0 == "" || pair.Token1 == "" {
		return 0, types.ErrInvalidTokenDenom.Wrap("pair tokens must be set")
	}

	fee, err := e.registry.GetFee(ctx, pair.PoolID())
	if err != nil {
		return 0, err
	}
	if fee == 0 {
		return 0, types.ErrInvalidFee.Wrap("registry reports a zero fee")
	}

	return types.CheckpointBeforeSwap.Ack(), nil
}

// AfterSwap folds the realized trade into the rolling statistics,
// derives the new fee and pushes it to the registry. A zero realized
// volume leaves all state untouched.
func (e Extension) AfterSwap(ctx context.Context, caller string, pair types.PairKey, params types.SwapParams, delta types.BalanceDelta) (types.CheckpointAck, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	now := sdkCtx.BlockTime().Unix()
	poolID := pair.PoolID()

	volume := delta.Amount0.Abs()
	if !params.ZeroForOne {
		volume = delta.Amount1.Abs()
	}
	if volume.IsZero() {
		return types.CheckpointAfterSwap.Ack(), nil
	}

	// 1. Realized price as token1 per token0
	amount0 := delta.Amount0.Abs()
	amount1 := delta.Amount1.Abs()
	price := math.ZeroInt()
	if amount0.IsPositive() && amount1.IsPositive() {
		price = amount1.Mul(types.PriceScale).Quo(amount0)
	}

	// 2. Statistics, in order: volatility, liquidity, market condition
	vol := e.GetVolatilityData(ctx, poolID)
	if price.IsPositive() {
		vol = e.updateVolatility(ctx, poolID, price, now)
	}
	liq := e.updateLiquidity(ctx, poolID, volume, now)
	cond := e.recomputeCondition(ctx, poolID, vol, liq, now)

	// 3. Derive and push the new fee
	newFee := deriveFee(cond)
	if err := e.registry.UpdateFee(ctx, poolID, newFee); err != nil {
		return 0, err
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeFeeUpdated,
			sdk.NewAttribute(types.AttributeKeyPoolID, poolID.String()),
			sdk.NewAttribute(types.AttributeKeyNewFee, fmt.Sprintf("%d", newFee)),
			sdk.NewAttribute(types.AttributeKeyVolatilityScore, fmt.Sprintf("%d", cond.VolatilityScore)),
			sdk.NewAttribute(types.AttributeKeyLiquidityScore, fmt.Sprintf("%d", cond.LiquidityScore)),
		),
	)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeMarketConditionUpdated,
			sdk.NewAttribute(types.AttributeKeyPoolID, poolID.String()),
			sdk.NewAttribute(types.AttributeKeyVolatilityScore, fmt.Sprintf("%d", cond.VolatilityScore)),
			sdk.NewAttribute(types.AttributeKeyLiquidityScore, fmt.Sprintf("%d", cond.LiquidityScore)),
			sdk.NewAttribute(types.AttributeKeyActivityScore, fmt.Sprintf("%d", cond.ActivityScore)),
			sdk.NewAttribute(types.AttributeKeyTimestamp, fmt.Sprintf("%d", cond.UpdatedAt)),
		),
	)

	e.metrics.FeeDerivationsTotal.Inc()
	e.metrics.MarketScore.WithLabelValues(poolID.String(), "volatility").Set(float64(cond.VolatilityScore))
	e.metrics.MarketScore.WithLabelValues(poolID.String(), "liquidity").Set(float64(cond.LiquidityScore))
	e.metrics.MarketScore.WithLabelValues(poolID.String(), "activity").Set(float64(cond.ActivityScore))

	return types.CheckpointAfterSwap.Ack(), nil
}

// The remaining checkpoints are outside the declared permission set
// and are never dispatched.

func (e Extension) BeforeInitialize(ctx context.Context, caller string, pair types.PairKey, amount0, amount1 math.Int) (types.CheckpointAck, error) {
	return types.CheckpointBeforeInitialize.Ack(), nil
}

func (e Extension) AfterInitialize(ctx context.Context, caller string, pair types.PairKey, delta types.BalanceDelta) (types.CheckpointAck, error) {
	return types.CheckpointAfterInitialize.Ack(), nil
}

func (e Extension) BeforeModifyPosition(ctx context.Context, caller string, pair types.PairKey, liquidityDelta math.Int) (types.CheckpointAck, error) {
	return types.CheckpointBeforeModifyPosition.Ack(), nil
}

func (e Extension) AfterModifyPosition(ctx context.Context, caller string, pair types.PairKey, liquidityDelta math.Int, delta types.BalanceDelta) (types.CheckpointAck, error) {
	return types.CheckpointAfterModifyPosition.Ack(), nil
}

func (e Extension) BeforeDonate(ctx context.Context, caller string, pair types.PairKey, amount0, amount1 math.Int) (types.CheckpointAck, error) {
	return types.CheckpointBeforeDonate.Ack(), nil
}

func (e Extension) AfterDonate(ctx context.Context, caller string, pair types.PairKey, amount0, amount1 math.Int, delta types.BalanceDelta) (types.CheckpointAck, error) {
	return types.CheckpointAfterDonate.Ack(), nil
}
