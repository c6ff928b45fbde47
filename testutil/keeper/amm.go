package keeper

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/lagoon-dex/lagoon/x/amm/extensions/dynfee"
	"github.com/lagoon-dex/lagoon/x/amm/extensions/oracle"
	"github.com/lagoon-dex/lagoon/x/amm/keeper"
	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// TestBlockTime is the deterministic block time test contexts start at.
var TestBlockTime = time.Unix(1_700_000_000, 0).UTC()

// AMMKeeper creates a test keeper for the AMM module with no
// extensions registered.
func AMMKeeper(t testing.TB) (keeper.Keeper, sdk.Context) {
	k, _, _, ctx := setupKeeper(t, false)
	return k, ctx
}

// AMMKeeperWithExtensions creates a test keeper with the dynamic fee
// and oracle extensions registered against their own stores.
func AMMKeeperWithExtensions(t testing.TB) (keeper.Keeper, *dynfee.Extension, *oracle.Extension, sdk.Context) {
	return setupKeeper(t, true)
}

func setupKeeper(t testing.TB, withExtensions bool) (keeper.Keeper, *dynfee.Extension, *oracle.Extension, sdk.Context) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	memStoreKey := storetypes.NewMemoryStoreKey(types.MemStoreKey)
	dynfeeStoreKey := storetypes.NewKVStoreKey(dynfee.StoreKey)
	oracleStoreKey := storetypes.NewKVStoreKey(oracle.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(memStoreKey, storetypes.StoreTypeMemory, nil)
	stateStore.MountStoreWithDB(dynfeeStoreKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(oracleStoreKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	k := keeper.NewKeeper(storeKey)

	var feeExt *dynfee.Extension
	var oracleExt *oracle.Extension
	if withExtensions {
		feeExt = dynfee.NewExtension(dynfeeStoreKey, k)
		oracleExt = oracle.NewExtension(oracleStoreKey, k)
		require.NoError(t, k.RegisterExtension(feeExt))
		require.NoError(t, k.RegisterExtension(oracleExt))
	}

	ctx := sdk.NewContext(stateStore, cmtproto.Header{}, false, log.NewNopLogger()).
		WithBlockTime(TestBlockTime)

	require.NoError(t, k.InitGenesis(ctx, *types.DefaultGenesis()))

	return *k, feeExt, oracleExt, ctx
}
