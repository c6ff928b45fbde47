package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/lagoon-dex/lagoon/testutil/keeper"
	"github.com/lagoon-dex/lagoon/x/amm/keeper"
	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// seedExactPool installs a pool with exact reserves and share supply
// through genesis, sidestepping the square-root rounding of pool
// creation so share math can be asserted to the unit.
func seedExactPool(t *testing.T, k keeper.Keeper, ctx sdk.Context, reserve0, reserve1, shares int64, owner string) types.PoolID {
	t.Helper()
	pair := types.NewPairKey("uatom", "uosmo", 3000, 60, "")
	genesis := types.GenesisState{
		Params: types.DefaultParams(),
		Pools: []types.Pool{{
			ID:          pair.PoolID(),
			Pair:        pair,
			Reserve0:    math.NewInt(reserve0),
			Reserve1:    math.NewInt(reserve1),
			TotalShares: math.NewInt(shares),
			CreatedAt:   keepertest.TestBlockTime.Unix(),
		}},
		Positions: []types.SharePosition{{
			PoolID: pair.PoolID(),
			Owner:  owner,
			Shares: math.NewInt(shares),
		}},
	}
	require.NoError(t, k.InitGenesis(ctx, genesis))
	return pair.PoolID()
}

func TestModifyPositionMint(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := seedExactPool(t, k, ctx, 1_000_000, 2_000_000, 1_000_000, "lagoon1lp")

	delta, err := k.ModifyPosition(ctx, "lagoon1trader", poolID, math.NewInt(500_000))
	require.NoError(t, err)

	// Half the supply costs half of each reserve, owed to the pool
	require.Equal(t, math.NewInt(500_000), delta.Amount0)
	require.Equal(t, math.NewInt(1_000_000), delta.Amount1)

	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_500_000), pool.Reserve0)
	require.Equal(t, math.NewInt(3_000_000), pool.Reserve1)
	require.Equal(t, math.NewInt(1_500_000), pool.TotalShares)

	require.Equal(t, math.NewInt(500_000), k.GetPosition(ctx, poolID, "lagoon1trader"))
	require.Equal(t, math.NewInt(1_000_000), k.GetPosition(ctx, poolID, "lagoon1lp"))

	require.True(t, hasEvent(ctx.EventManager().Events(), types.EventTypePositionModified))
}

func TestModifyPositionMintRoundsUp(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := seedExactPool(t, k, ctx, 1_000_001, 1_000_000, 1_000_000, "lagoon1lp")

	// One share is worth 1.000001 of token0; the minter pays 2 so the
	// existing holders are never diluted
	delta, err := k.ModifyPosition(ctx, "lagoon1trader", poolID, math.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(2), delta.Amount0)
	require.Equal(t, math.NewInt(1), delta.Amount1)
}

func TestModifyPositionBurn(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := seedExactPool(t, k, ctx, 1_000_000, 2_000_000, 1_000_000, "lagoon1lp")

	delta, err := k.ModifyPosition(ctx, "lagoon1lp", poolID, math.NewInt(-250_000))
	require.NoError(t, err)

	// Amounts owed to the caller are negative
	require.Equal(t, math.NewInt(-250_000), delta.Amount0)
	require.Equal(t, math.NewInt(-500_000), delta.Amount1)

	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(750_000), pool.Reserve0)
	require.Equal(t, math.NewInt(1_500_000), pool.Reserve1)
	require.Equal(t, math.NewInt(750_000), pool.TotalShares)
	require.Equal(t, math.NewInt(750_000), k.GetPosition(ctx, poolID, "lagoon1lp"))
}

func TestModifyPositionBurnTruncates(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := seedExactPool(t, k, ctx, 1_000_001, 2_000_001, 1_000_000, "lagoon1lp")

	// 500000.5 and 1000000.5 truncate toward the pool
	delta, err := k.ModifyPosition(ctx, "lagoon1lp", poolID, math.NewInt(-500_000))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(-500_000), delta.Amount0)
	require.Equal(t, math.NewInt(-1_000_000), delta.Amount1)

	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(500_001), pool.Reserve0)
	require.Equal(t, math.NewInt(1_000_001), pool.Reserve1)
}

func TestModifyPositionFullBurnDrainsPool(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := seedExactPool(t, k, ctx, 1_000_001, 2_000_001, 1_000_000, "lagoon1lp")

	delta, err := k.ModifyPosition(ctx, "lagoon1lp", poolID, math.NewInt(-1_000_000))
	require.NoError(t, err)

	// The final burn returns the reserves exactly, dust included
	require.Equal(t, math.NewInt(-1_000_001), delta.Amount0)
	require.Equal(t, math.NewInt(-2_000_001), delta.Amount1)

	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.True(t, pool.Reserve0.IsZero())
	require.True(t, pool.Reserve1.IsZero())
	require.True(t, pool.TotalShares.IsZero())
	require.False(t, pool.HasLiquidity())
	require.True(t, k.GetPosition(ctx, poolID, "lagoon1lp").IsZero())

	// A drained pool accepts no further operations until reseeded
	_, err = k.Swap(ctx, "lagoon1trader", poolID, types.SwapParams{
		ZeroForOne:   true,
		AmountIn:     math.NewInt(1000),
		MinAmountOut: math.ZeroInt(),
	})
	require.ErrorIs(t, err, types.ErrInsufficientLiquidity)

	_, err = k.ModifyPosition(ctx, "lagoon1lp", poolID, math.NewInt(1000))
	require.ErrorIs(t, err, types.ErrInsufficientLiquidity)
}

func TestModifyPositionInsufficientShares(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := seedExactPool(t, k, ctx, 1_000_000, 2_000_000, 1_000_000, "lagoon1lp")

	// Burning more than held fails, including for callers with nothing
	_, err := k.ModifyPosition(ctx, "lagoon1lp", poolID, math.NewInt(-1_000_001))
	require.ErrorIs(t, err, types.ErrInsufficientShares)

	_, err = k.ModifyPosition(ctx, "lagoon1stranger", poolID, math.NewInt(-1))
	require.ErrorIs(t, err, types.ErrInsufficientShares)

	// The failed burns leave the pool untouched
	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_000_000), pool.TotalShares)
}

func TestModifyPositionZeroDelta(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := seedExactPool(t, k, ctx, 1_000_000, 2_000_000, 1_000_000, "lagoon1lp")

	_, err := k.ModifyPosition(ctx, "lagoon1lp", poolID, math.ZeroInt())
	require.ErrorIs(t, err, types.ErrInvalidAmount)

	_, err = k.ModifyPosition(ctx, "lagoon1lp", poolID, math.Int{})
	require.ErrorIs(t, err, types.ErrInvalidAmount)
}

func TestModifyPositionUnknownPool(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)

	_, err := k.ModifyPosition(ctx, "lagoon1lp",
		types.NewPairKey("uatom", "uosmo", 3000, 60, "").PoolID(), math.NewInt(1000))
	require.ErrorIs(t, err, types.ErrPoolNotFound)
}
