package keeper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// MaxPoolIterationLimit bounds pool listing to keep queries cheap.
const MaxPoolIterationLimit = 100

// GetPool retrieves a pool by ID
func (k Keeper) GetPool(ctx context.Context, poolID types.PoolID) (types.Pool, error) {
	store := k.getStore(ctx)
	bz := store.Get(PoolKey(poolID))
	if bz == nil {
		return types.Pool{}, types.ErrPoolNotFound.Wrapf("pool %s not found", poolID)
	}

	var pool types.Pool
	if err := json.Unmarshal(bz, &pool); err != nil {
		return types.Pool{}, types.ErrInvalidPoolState.Wrapf("unmarshal pool %s: %v", poolID, err)
	}
	return pool, nil
}

// SetPool persists a pool record
func (k Keeper) SetPool(ctx context.Context, pool types.Pool) error {
	bz, err := json.Marshal(pool)
	if err != nil {
		return types.ErrInvalidPoolState.Wrapf("marshal pool %s: %v", pool.ID, err)
	}
	k.getStore(ctx).Set(PoolKey(pool.ID), bz)
	return nil
}

// HasPool reports whether a pool exists.
func (k Keeper) HasPool(ctx context.Context, poolID types.PoolID) bool {
	return k.getStore(ctx).Has(PoolKey(poolID))
}

// GetPoolIDByTokens resolves a token pair to its pool through the
// by-tokens index. The order of the arguments does not matter.
func (k Keeper) GetPoolIDByTokens(ctx context.Context, tokenA, tokenB string) (types.PoolID, error) {
	store := k.getStore(ctx)
	bz := store.Get(PoolByTokensKey(tokenA, tokenB))
	if len(bz) != 32 {
		return types.PoolID{}, types.ErrPoolNotFound.Wrapf("no pool for pair %s/%s", tokenA, tokenB)
	}
	var id types.PoolID
	copy(id[:], bz)
	return id, nil
}

// PoolHasLiquidity reports whether a pool exists with positive reserves.
func (k Keeper) PoolHasLiquidity(ctx context.Context, poolID types.PoolID) bool {
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return false
	}
	return pool.HasLiquidity()
}

// GetPoolCount returns the total number of pools in O(1) time.
func (k Keeper) GetPoolCount(ctx context.Context) uint64 {
	bz := k.getStore(ctx).Get(PoolCountKey)
	if bz == nil {
		return 0
	}
	return binary.BigEndian.Uint64(bz)
}

func (k Keeper) setPoolCount(ctx context.Context, count uint64) {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, count)
	k.getStore(ctx).Set(PoolCountKey, bz)
}

// InitializePool creates a pool for the pair, seeded with the given
// reserves, and dispatches the initialize checkpoints to the pair's
// extension. The whole operation is atomic: a failing checkpoint
// leaves no trace of the pool.
func (k Keeper) InitializePool(ctx context.Context, caller string, pair types.PairKey, amount0, amount1 math.Int) (types.PoolID, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	// 1. Input validation
	if err := pair.Validate(); err != nil {
		k.metrics.OperationsTotal.WithLabelValues("initialize", "error").Inc()
		return types.PoolID{}, err
	}
	if err := k.validatePairExtension(pair); err != nil {
		k.metrics.OperationsTotal.WithLabelValues("initialize", "error").Inc()
		return types.PoolID{}, err
	}
	if amount0.IsNil() || amount1.IsNil() || !amount0.IsPositive() || !amount1.IsPositive() {
		k.metrics.OperationsTotal.WithLabelValues("initialize", "error").Inc()
		return types.PoolID{}, types.ErrInvalidAmount.Wrap("initial amounts must be positive")
	}

	poolID := pair.PoolID()

	// 2. Reject duplicates, both by identity and by token pair: the
	// by-tokens index admits one pool per pair so token-based lookups
	// stay unambiguous
	if k.HasPool(ctx, poolID) {
		k.metrics.OperationsTotal.WithLabelValues("initialize", "error").Inc()
		return types.PoolID{}, types.ErrPoolAlreadyExists.Wrapf("pool %s", poolID)
	}
	if _, err := k.GetPoolIDByTokens(ctx, pair.Token0, pair.Token1); err == nil {
		k.metrics.OperationsTotal.WithLabelValues("initialize", "error").Inc()
		return types.PoolID{}, types.ErrPoolAlreadyExists.Wrapf("pool for pair %s/%s", pair.Token0, pair.Token1)
	}

	// 3. Pool count limit
	params := k.GetParams(ctx)
	count := k.GetPoolCount(ctx)
	if count >= params.MaxPools {
		k.metrics.OperationsTotal.WithLabelValues("initialize", "error").Inc()
		return types.PoolID{}, types.ErrMaxPoolsReached.Wrapf("maximum number of pools (%d) reached", params.MaxPools)
	}

	// 4. Initial shares via geometric mean sqrt(amount0 * amount1)
	initialShares, err := calculateInitialShares(amount0, amount1)
	if err != nil {
		k.metrics.OperationsTotal.WithLabelValues("initialize", "error").Inc()
		return types.PoolID{}, err
	}
	if initialShares.LT(params.MinInitialLiquidity) {
		k.metrics.OperationsTotal.WithLabelValues("initialize", "error").Inc()
		return types.PoolID{}, types.ErrInsufficientLiquidity.Wrapf(
			"initial liquidity too low: %s < %s", initialShares, params.MinInitialLiquidity)
	}

	// 5. Price ratio sanity bounds
	ratio := math.LegacyNewDecFromInt(amount1).Quo(math.LegacyNewDecFromInt(amount0))
	if ratio.GT(params.MaxPriceRatio) || ratio.LT(math.LegacyOneDec().Quo(params.MaxPriceRatio)) {
		k.metrics.OperationsTotal.WithLabelValues("initialize", "error").Inc()
		return types.PoolID{}, types.ErrInvalidAmount.Wrapf("initial price ratio too extreme: %s", ratio)
	}

	// 6. Atomic section: checkpoints and state changes share one branch
	cacheCtx, writeFn := sdkCtx.CacheContext()

	if err := k.dispatchCheckpoint(cacheCtx, types.CheckpointBeforeInitialize, pair, func(ext types.Extension) (types.CheckpointAck, error) {
		return ext.BeforeInitialize(cacheCtx, caller, pair, amount0, amount1)
	}); err != nil {
		k.metrics.OperationsTotal.WithLabelValues("initialize", "error").Inc()
		return types.PoolID{}, err
	}

	now := sdkCtx.BlockTime().Unix()
	pool := types.Pool{
		ID:           poolID,
		Pair:         pair,
		Reserve0:     amount0,
		Reserve1:     amount1,
		TotalShares:  initialShares,
		CreatedAt:    now,
		LastSwapTime: now,
	}
	if err := k.SetPool(cacheCtx, pool); err != nil {
		k.metrics.OperationsTotal.WithLabelValues("initialize", "error").Inc()
		return types.PoolID{}, err
	}
	k.getStore(cacheCtx).Set(PoolByTokensKey(pair.Token0, pair.Token1), poolID.Bytes())
	k.setPoolCount(cacheCtx, count+1)
	k.setPosition(cacheCtx, poolID, caller, initialShares)

	// Dynamic pools start at the default fee until the extension
	// pushes its first derived value
	if pair.IsDynamicFee() {
		if err := k.UpdateFee(cacheCtx, poolID, types.DefaultFee); err != nil {
			k.metrics.OperationsTotal.WithLabelValues("initialize", "error").Inc()
			return types.PoolID{}, err
		}
	}

	delta := types.NewBalanceDelta(amount0, amount1)
	if err := k.dispatchCheckpoint(cacheCtx, types.CheckpointAfterInitialize, pair, func(ext types.Extension) (types.CheckpointAck, error) {
		return ext.AfterInitialize(cacheCtx, caller, pair, delta)
	}); err != nil {
		k.metrics.OperationsTotal.WithLabelValues("initialize", "error").Inc()
		return types.PoolID{}, err
	}

	writeFn()

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePoolInitialized,
			sdk.NewAttribute(types.AttributeKeyPoolID, poolID.String()),
			sdk.NewAttribute(types.AttributeKeyCaller, caller),
			sdk.NewAttribute(types.AttributeKeyToken0, pair.Token0),
			sdk.NewAttribute(types.AttributeKeyToken1, pair.Token1),
			sdk.NewAttribute(types.AttributeKeyExtension, pair.Extension),
			sdk.NewAttribute(types.AttributeKeyAmount0, amount0.String()),
			sdk.NewAttribute(types.AttributeKeyAmount1, amount1.String()),
			sdk.NewAttribute(types.AttributeKeyShares, initialShares.String()),
		),
	)

	k.metrics.OperationsTotal.WithLabelValues("initialize", "ok").Inc()
	k.metrics.PoolsTotal.Set(float64(count + 1))

	sdkCtx.Logger().Info("pool initialized",
		"pool_id", poolID.String(),
		"pair", fmt.Sprintf("%s/%s", pair.Token0, pair.Token1),
		"extension", pair.Extension,
	)

	return poolID, nil
}

// calculateInitialShares returns sqrt(amount0 * amount1), the
// geometric-mean share issuance that resists initial price manipulation.
func calculateInitialShares(amount0, amount1 math.Int) (math.Int, error) {
	product := amount0.Mul(amount1)
	sqrtShares, err := math.LegacyNewDecFromInt(product).ApproxSqrt()
	if err != nil {
		return math.Int{}, types.ErrArithmetic.Wrapf("initial shares square root: %v", err)
	}
	return sqrtShares.TruncateInt(), nil
}

// IteratePools walks stored pools in key order, stopping when cb
// returns true or the iteration limit is hit.
func (k Keeper) IteratePools(ctx context.Context, cb func(pool types.Pool) bool) error {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, PoolKeyPrefix)
	defer iterator.Close()

	seen := 0
	for ; iterator.Valid(); iterator.Next() {
		if seen >= MaxPoolIterationLimit {
			break
		}
		seen++

		var pool types.Pool
		if err := json.Unmarshal(iterator.Value(), &pool); err != nil {
			return types.ErrInvalidPoolState.Wrapf("unmarshal pool: %v", err)
		}
		if cb(pool) {
			break
		}
	}
	return nil
}

// GetAllPools returns every stored pool without the iteration cap.
// Reserved for genesis export.
func (k Keeper) GetAllPools(ctx context.Context) ([]types.Pool, error) {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, PoolKeyPrefix)
	defer iterator.Close()

	var pools []types.Pool
	for ; iterator.Valid(); iterator.Next() {
		var pool types.Pool
		if err := json.Unmarshal(iterator.Value(), &pool); err != nil {
			return nil, types.ErrInvalidPoolState.Wrapf("unmarshal pool: %v", err)
		}
		pools = append(pools, pool)
	}
	return pools, nil
}
