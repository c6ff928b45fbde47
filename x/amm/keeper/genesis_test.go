package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	keepertest "github.com/lagoon-dex/lagoon/testutil/keeper"
	"github.com/lagoon-dex/lagoon/x/amm/types"
)

func TestGenesisRoundTrip(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)

	// Build live state: two pools, a registry override, a second LP
	poolA, err := k.InitializePool(ctx, "lagoon1creator",
		types.NewPairKey("uatom", "uosmo", 3000, 60, ""),
		math.NewInt(1_000_000), math.NewInt(4_000_000))
	require.NoError(t, err)

	poolB, err := k.InitializePool(ctx, "lagoon1creator",
		types.NewPairKey("ujuno", "uosmo", 500, 10, ""),
		math.NewInt(2_000_000), math.NewInt(2_000_000))
	require.NoError(t, err)

	require.NoError(t, k.UpdateFee(ctx, poolA, 5_000))

	_, err = k.ModifyPosition(ctx, "lagoon1lp", poolB, math.NewInt(500_000))
	require.NoError(t, err)

	_, err = k.Swap(ctx, "lagoon1trader", poolA, types.SwapParams{
		ZeroForOne: true, AmountIn: math.NewInt(10_000), MinAmountOut: math.ZeroInt(),
	})
	require.NoError(t, err)

	exported, err := k.ExportGenesis(ctx)
	require.NoError(t, err)
	require.NoError(t, exported.Validate())
	require.Len(t, exported.Pools, 2)
	require.Len(t, exported.FeeTiers, 1)
	require.Len(t, exported.Positions, 3)

	// Import into a fresh keeper and compare the stores
	k2, ctx2 := keepertest.AMMKeeper(t)
	require.NoError(t, k2.InitGenesis(ctx2, *exported))

	for _, poolID := range []types.PoolID{poolA, poolB} {
		want, err := k.GetPool(ctx, poolID)
		require.NoError(t, err)
		got, err := k2.GetPool(ctx2, poolID)
		require.NoError(t, err)
		require.Equal(t, want, got)

		wantFee, err := k.GetFee(ctx, poolID)
		require.NoError(t, err)
		gotFee, err := k2.GetFee(ctx2, poolID)
		require.NoError(t, err)
		require.Equal(t, wantFee, gotFee)
	}

	require.Equal(t, uint64(2), k2.GetPoolCount(ctx2))
	require.Equal(t,
		k.GetPosition(ctx, poolB, "lagoon1lp"),
		k2.GetPosition(ctx2, poolB, "lagoon1lp"))
	require.Equal(t,
		k.GetPosition(ctx, poolA, "lagoon1creator"),
		k2.GetPosition(ctx2, poolA, "lagoon1creator"))
	require.Equal(t, k.GetParams(ctx), k2.GetParams(ctx2))

	// The copy keeps serving lookups by token pair
	fromIndex, err := k2.GetPoolIDByTokens(ctx2, "uosmo", "uatom")
	require.NoError(t, err)
	require.Equal(t, poolA, fromIndex)
}

func TestInitGenesisRejectsInvalidState(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)

	pair := types.NewPairKey("uatom", "uosmo", 3000, 60, "")
	genesis := types.GenesisState{
		Params: types.DefaultParams(),
		Pools: []types.Pool{{
			ID:          pair.PoolID(),
			Pair:        pair,
			Reserve0:    math.NewInt(-1),
			Reserve1:    math.NewInt(1_000_000),
			TotalShares: math.NewInt(1_000_000),
		}},
	}
	err := k.InitGenesis(ctx, genesis)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid genesis state")
}

func TestExportGenesisEmpty(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)

	exported, err := k.ExportGenesis(ctx)
	require.NoError(t, err)
	require.NoError(t, exported.Validate())
	require.Empty(t, exported.Pools)
	require.Empty(t, exported.FeeTiers)
	require.Empty(t, exported.Positions)
	require.Equal(t, types.DefaultParams(), exported.Params)
}
