package keeper

import (
	"context"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// Keeper coordinates pool operations and checkpoint dispatch for the
// AMM module.
type Keeper struct {
	storeKey   storetypes.StoreKey
	extensions map[string]types.Extension
	metrics    *AMMMetrics
}

// NewKeeper creates a new AMM Keeper instance.
func NewKeeper(key storetypes.StoreKey) *Keeper {
	return &Keeper{
		storeKey:   key,
		extensions: make(map[string]types.Extension),
		metrics:    NewAMMMetrics(),
	}
}

// RegisterExtension makes an extension available for pools to attach.
// Registration is wiring-time only; it must complete before any pool
// referencing the extension is initialized.
func (k *Keeper) RegisterExtension(ext types.Extension) error {
	if ext == nil {
		return types.ErrExtensionNotFound.Wrap("nil extension")
	}
	name := ext.Name()
	if name == "" {
		return types.ErrExtensionNotFound.Wrap("extension name cannot be empty")
	}
	if _, ok := k.extensions[name]; ok {
		return types.ErrExtensionNotFound.Wrapf("extension %s already registered", name)
	}
	k.extensions[name] = ext
	return nil
}

// Extension returns a registered extension by name.
func (k Keeper) Extension(name string) (types.Extension, bool) {
	ext, ok := k.extensions[name]
	return ext, ok
}

// GetStoreKey returns the module's store key for direct store access.
func (k Keeper) GetStoreKey() storetypes.StoreKey {
	return k.storeKey
}

// getStore returns the KVStore for the AMM module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return sdkCtx.KVStore(k.storeKey)
}
