package keeper

import (
	"context"
	"encoding/binary"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// GetFee returns the effective fee for a pool in parts per million.
// Pools with a registry entry use the stored value; pools without one
// fall back to the static fee from the pair, or the default fee for
// dynamic-fee pairs that have not been seeded yet.
func (k Keeper) GetFee(ctx context.Context, poolID types.PoolID) (uint32, error) {
	store := k.getStore(ctx)

	bz := store.Get(FeeTierKey(poolID))
	if len(bz) == 4 {
		return binary.BigEndian.Uint32(bz), nil
	}

	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return 0, err
	}
	if pool.Pair.IsDynamicFee() {
		return types.DefaultFee, nil
	}
	return pool.Pair.Fee, nil
}

// UpdateFee writes the effective fee for a pool into the registry.
// Extensions push recomputed fees here from their after-swap handlers;
// the new fee applies from the next swap. Callers own the fee-updated
// notification so they can attach the inputs that produced the value.
func (k Keeper) UpdateFee(ctx context.Context, poolID types.PoolID, fee uint32) error {
	if err := types.ValidateFeeValue(fee); err != nil {
		return err
	}
	if !k.HasPool(ctx, poolID) {
		return types.ErrPoolNotFound.Wrapf("pool %s not found", poolID)
	}

	store := k.getStore(ctx)
	bz := make([]byte, 4)
	binary.BigEndian.PutUint32(bz, fee)
	store.Set(FeeTierKey(poolID), bz)

	k.metrics.EffectiveFee.WithLabelValues(poolID.String()).Set(float64(fee))
	k.metrics.FeeUpdatesTotal.Inc()

	return nil
}

// iterateFeeTiers visits every registry entry. Used by genesis export.
func (k Keeper) iterateFeeTiers(ctx context.Context, cb func(poolID types.PoolID, fee uint32) bool) {
	store := k.getStore(ctx)
	iterator := sdk.KVStorePrefixIterator(store, FeeTierKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		key := iterator.Key()
		if len(key) != len(FeeTierKeyPrefix)+32 || len(iterator.Value()) != 4 {
			continue
		}
		var poolID types.PoolID
		copy(poolID[:], key[len(FeeTierKeyPrefix):])
		if cb(poolID, binary.BigEndian.Uint32(iterator.Value())) {
			break
		}
	}
}
