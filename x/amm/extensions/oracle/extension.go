package oracle

import (
	"context"
	"encoding/json"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// Extension maintains a manipulation-resistant price history per pool,
// fed by every liquidity-moving checkpoint, and answers historical
// price queries. Recording is best-effort: a rejected observation
// never fails the operation that produced it.
type Extension struct {
	storeKey storetypes.StoreKey
	resolver PoolResolver
	metrics  *Metrics
}

// NewExtension creates the oracle extension backed by its own store
// and the pool resolver for token-pair lookups.
func NewExtension(storeKey storetypes.StoreKey, resolver PoolResolver) *Extension {
	return &Extension{
		storeKey: storeKey,
		resolver: resolver,
		metrics:  NewMetrics(),
	}
}

func (e Extension) getStore(ctx context.Context) sdk.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(e.storeKey)
}

func (e Extension) Name() string { return ExtensionName }

func (e Extension) Permissions() types.ExtensionPermissions {
	return types.ExtensionPermissions{
		BeforeInitialize:    true,
		AfterInitialize:     true,
		AfterModifyPosition: true,
		AfterSwap:           true,
		AfterDonate:         true,
	}
}

// BeforeInitialize seeds the pool's protection params so the first
// observation already runs under the default gates.
func (e Extension) BeforeInitialize(ctx context.Context, caller string, pair types.PairKey, amount0, amount1 math.Int) (types.CheckpointAck, error) {
	poolID := pair.PoolID()
	store := e.getStore(ctx)
	if !store.Has(ProtectionKey(poolID)) {
		bz, err := json.Marshal(DefaultProtectionParams())
		if err != nil {
			return 0, types.ErrInvalidProtectionParams.Wrapf("failed to marshal default params: %s", err)
		}
		store.Set(ProtectionKey(poolID), bz)
	}
	return types.CheckpointBeforeInitialize.Ack(), nil
}

// AfterInitialize records the pool's opening price from the seeded
// reserves.
func (e Extension) AfterInitialize(ctx context.Context, caller string, pair types.PairKey, delta types.BalanceDelta) (types.CheckpointAck, error) {
	e.recordObservation(ctx, pair.PoolID(), delta.Amount0, delta.Amount1)
	return types.CheckpointAfterInitialize.Ack(), nil
}

func (e Extension) AfterModifyPosition(ctx context.Context, caller string, pair types.PairKey, liquidityDelta math.Int, delta types.BalanceDelta) (types.CheckpointAck, error) {
	e.recordObservation(ctx, pair.PoolID(), delta.Amount0, delta.Amount1)
	return types.CheckpointAfterModifyPosition.Ack(), nil
}

func (e Extension) AfterSwap(ctx context.Context, caller string, pair types.PairKey, params types.SwapParams, delta types.BalanceDelta) (types.CheckpointAck, error) {
	e.recordObservation(ctx, pair.PoolID(), delta.Amount0, delta.Amount1)
	return types.CheckpointAfterSwap.Ack(), nil
}

func (e Extension) AfterDonate(ctx context.Context, caller string, pair types.PairKey, amount0, amount1 math.Int, delta types.BalanceDelta) (types.CheckpointAck, error) {
	e.recordObservation(ctx, pair.PoolID(), delta.Amount0, delta.Amount1)
	return types.CheckpointAfterDonate.Ack(), nil
}

// The remaining checkpoints are outside the declared permission set
// and are never dispatched.

func (e Extension) BeforeModifyPosition(ctx context.Context, caller string, pair types.PairKey, liquidityDelta math.Int) (types.CheckpointAck, error) {
	return types.CheckpointBeforeModifyPosition.Ack(), nil
}

func (e Extension) BeforeSwap(ctx context.Context, caller string, pair types.PairKey, params types.SwapParams) (types.CheckpointAck, error) {
	return types.CheckpointBeforeSwap.Ack(), nil
}

func (e Extension) BeforeDonate(ctx context.Context, caller string, pair types.PairKey, amount0, amount1 math.Int) (types.CheckpointAck, error) {
	return types.CheckpointBeforeDonate.Ack(), nil
}
