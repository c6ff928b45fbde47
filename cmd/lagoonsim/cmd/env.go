package cmd

import (
	"fmt"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lagoon-dex/lagoon/x/amm/extensions/dynfee"
	"github.com/lagoon-dex/lagoon/x/amm/extensions/oracle"
	"github.com/lagoon-dex/lagoon/x/amm/keeper"
	"github.com/lagoon-dex/lagoon/x/amm/types"
)

const simChainID = "lagoon-sim"

// poolHandle ties a scenario pool name to its stored identity. The
// declared token order is kept so queries and output read the way the
// scenario author wrote the pair.
type poolHandle struct {
	name   string
	pair   types.PairKey
	id     types.PoolID
	token0 string
	token1 string
}

// canonicalAmounts reorders declared-order amounts into the pair's
// canonical token order.
func (h poolHandle) canonicalAmounts(amount0, amount1 math.Int) (math.Int, math.Int) {
	if h.token0 != h.pair.Token0 {
		return amount1, amount0
	}
	return amount0, amount1
}

// simEnv is one scenario's world: an in-memory multistore with the
// coordinator and both extensions mounted, and a block clock that only
// advances when a step asks for it.
type simEnv struct {
	keeper  keeper.Keeper
	fees    *dynfee.Extension
	oracle  *oracle.Extension
	ctx     sdk.Context
	elapsed int64
	pools   map[string]poolHandle
}

func newSimEnv(startTime time.Time, logger log.Logger) (*simEnv, error) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	memStoreKey := storetypes.NewMemoryStoreKey(types.MemStoreKey)
	dynfeeStoreKey := storetypes.NewKVStoreKey(dynfee.StoreKey)
	oracleStoreKey := storetypes.NewKVStoreKey(oracle.StoreKey)

	db := dbm.NewMemDB()
	cms := store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	cms.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	cms.MountStoreWithDB(memStoreKey, storetypes.StoreTypeMemory, nil)
	cms.MountStoreWithDB(dynfeeStoreKey, storetypes.StoreTypeIAVL, db)
	cms.MountStoreWithDB(oracleStoreKey, storetypes.StoreTypeIAVL, db)
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("load multistore: %w", err)
	}

	k := keeper.NewKeeper(storeKey)
	feeExt := dynfee.NewExtension(dynfeeStoreKey, k)
	oracleExt := oracle.NewExtension(oracleStoreKey, k)
	if err := k.RegisterExtension(feeExt); err != nil {
		return nil, err
	}
	if err := k.RegisterExtension(oracleExt); err != nil {
		return nil, err
	}

	ctx := sdk.NewContext(cms, cmtproto.Header{ChainID: simChainID, Time: startTime}, false, logger).
		WithBlockTime(startTime)
	if err := k.InitGenesis(ctx, *types.DefaultGenesis()); err != nil {
		return nil, err
	}

	return &simEnv{
		keeper: *k,
		fees:   feeExt,
		oracle: oracleExt,
		ctx:    ctx,
		pools:  map[string]poolHandle{},
	}, nil
}

// advance moves the block clock forward.
func (env *simEnv) advance(seconds int64) {
	if seconds <= 0 {
		return
	}
	env.elapsed += seconds
	env.ctx = env.ctx.WithBlockTime(env.ctx.BlockTime().Add(time.Duration(seconds) * time.Second))
}

// createPool initializes one scenario pool and registers its handle.
func (env *simEnv) createPool(ps PoolSpec) (poolHandle, error) {
	pair := types.NewPairKey(ps.Token0, ps.Token1, ps.Fee, ps.TickSpacing, ps.Extension)

	// Seed amounts follow the canonical token order of the pair.
	amount0, amount1 := ps.Amount0, ps.Amount1
	if ps.Token0 != pair.Token0 {
		amount0, amount1 = amount1, amount0
	}

	poolID, err := env.keeper.InitializePool(env.ctx, defaultActor, pair, amount0, amount1)
	if err != nil {
		return poolHandle{}, fmt.Errorf("create pool %q: %w", ps.Name, err)
	}

	handle := poolHandle{
		name:   ps.Name,
		pair:   pair,
		id:     poolID,
		token0: ps.Token0,
		token1: ps.Token1,
	}
	env.pools[ps.Name] = handle
	return handle, nil
}

// handle resolves a pool name; scenario validation guarantees a hit.
func (env *simEnv) handle(name string) (poolHandle, error) {
	h, ok := env.pools[name]
	if !ok {
		return poolHandle{}, fmt.Errorf("unknown pool %q", name)
	}
	return h, nil
}
