package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	keepertest "github.com/lagoon-dex/lagoon/testutil/keeper"
	"github.com/lagoon-dex/lagoon/x/amm/types"
)

func TestDonate(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := seedExactPool(t, k, ctx, 1_000_000, 2_000_000, 1_000_000, "lagoon1lp")

	require.NoError(t, k.Donate(ctx, "lagoon1donor", poolID, math.NewInt(10_000), math.NewInt(20_000)))

	// Reserves grow, share supply does not
	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_010_000), pool.Reserve0)
	require.Equal(t, math.NewInt(2_020_000), pool.Reserve1)
	require.Equal(t, math.NewInt(1_000_000), pool.TotalShares)
	require.Equal(t, math.NewInt(1_000_000), k.GetPosition(ctx, poolID, "lagoon1lp"))

	require.True(t, hasEvent(ctx.EventManager().Events(), types.EventTypeDonationReceived))
}

func TestDonateSingleSided(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := seedExactPool(t, k, ctx, 1_000_000, 2_000_000, 1_000_000, "lagoon1lp")

	require.NoError(t, k.Donate(ctx, "lagoon1donor", poolID, math.ZeroInt(), math.NewInt(5000)))

	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_000_000), pool.Reserve0)
	require.Equal(t, math.NewInt(2_005_000), pool.Reserve1)
}

func TestDonateRaisesShareValue(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := seedExactPool(t, k, ctx, 1_000_000, 1_000_000, 1_000_000, "lagoon1lp")

	require.NoError(t, k.Donate(ctx, "lagoon1donor", poolID, math.NewInt(100_000), math.NewInt(100_000)))

	// The holder's full burn now returns the donated tokens too
	delta, err := k.ModifyPosition(ctx, "lagoon1lp", poolID, math.NewInt(-1_000_000))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(-1_100_000), delta.Amount0)
	require.Equal(t, math.NewInt(-1_100_000), delta.Amount1)
}

func TestDonateValidation(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := seedExactPool(t, k, ctx, 1_000_000, 2_000_000, 1_000_000, "lagoon1lp")

	tests := []struct {
		name    string
		amount0 math.Int
		amount1 math.Int
		expErr  error
	}{
		{
			name:    "both zero",
			amount0: math.ZeroInt(),
			amount1: math.ZeroInt(),
			expErr:  types.ErrInvalidAmount,
		},
		{
			name:    "negative amount0",
			amount0: math.NewInt(-1),
			amount1: math.NewInt(100),
			expErr:  types.ErrInvalidAmount,
		},
		{
			name:    "negative amount1",
			amount0: math.NewInt(100),
			amount1: math.NewInt(-1),
			expErr:  types.ErrInvalidAmount,
		},
		{
			name:    "nil amount",
			amount0: math.Int{},
			amount1: math.NewInt(100),
			expErr:  types.ErrInvalidAmount,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := k.Donate(ctx, "lagoon1donor", poolID, tc.amount0, tc.amount1)
			require.ErrorIs(t, err, tc.expErr)
		})
	}

	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_000_000), pool.Reserve0)
	require.Equal(t, math.NewInt(2_000_000), pool.Reserve1)
}

func TestDonateUnknownPool(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)

	err := k.Donate(ctx, "lagoon1donor",
		types.NewPairKey("uatom", "uosmo", 3000, 60, "").PoolID(),
		math.NewInt(100), math.NewInt(100))
	require.ErrorIs(t, err, types.ErrPoolNotFound)
}

func TestDonateEmptyPool(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := seedExactPool(t, k, ctx, 1_000_000, 1_000_000, 1_000_000, "lagoon1lp")

	_, err := k.ModifyPosition(ctx, "lagoon1lp", poolID, math.NewInt(-1_000_000))
	require.NoError(t, err)

	// Donations to a drained pool would accrue to nobody
	err = k.Donate(ctx, "lagoon1donor", poolID, math.NewInt(100), math.NewInt(100))
	require.ErrorIs(t, err, types.ErrInsufficientLiquidity)
	require.Contains(t, err.Error(), "no shares")
}
