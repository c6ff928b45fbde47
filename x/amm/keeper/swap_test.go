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

// setupSwapPool creates a uatom/uosmo pool at fee tier 3000 with the
// given raw reserves.
func setupSwapPool(t *testing.T, k keeper.Keeper, ctx sdk.Context, reserve0, reserve1 int64) types.PoolID {
	t.Helper()
	poolID, err := k.InitializePool(ctx, "lagoon1creator",
		types.NewPairKey("uatom", "uosmo", 3000, 60, ""),
		math.NewInt(reserve0), math.NewInt(reserve1))
	require.NoError(t, err)
	return poolID
}

func hasEvent(events []sdk.Event, eventType string) bool {
	for _, evt := range events {
		if evt.Type == eventType {
			return true
		}
	}
	return false
}

func TestCalculateSwapOutput(t *testing.T) {
	tests := []struct {
		name       string
		amountIn   int64
		reserveIn  int64
		reserveOut int64
		fee        uint32
		expected   int64
		expErr     error
	}{
		{
			name:      "balanced pool with default fee",
			amountIn:  1000,
			reserveIn: 1_000_000,
			reserveOut: 1_000_000,
			fee:       3000,
			expected:  996,
		},
		{
			name:      "zero fee",
			amountIn:  1000,
			reserveIn: 1_000_000,
			reserveOut: 1_000_000,
			fee:       0,
			expected:  999,
		},
		{
			name:      "asymmetric reserves",
			amountIn:  1000,
			reserveIn: 1_000_000,
			reserveOut: 2_000_000,
			fee:       3000,
			expected:  1992,
		},
		{
			name:      "dust input rounds to zero",
			amountIn:  1,
			reserveIn: 1_000_000,
			reserveOut: 1_000_000,
			fee:       3000,
			expected:  0,
		},
		{
			name:      "zero input",
			amountIn:  0,
			reserveIn: 1_000_000,
			reserveOut: 1_000_000,
			fee:       3000,
			expErr:    types.ErrInvalidAmount,
		},
		{
			name:      "negative input",
			amountIn:  -5,
			reserveIn: 1_000_000,
			reserveOut: 1_000_000,
			fee:       3000,
			expErr:    types.ErrInvalidAmount,
		},
		{
			name:      "empty input reserve",
			amountIn:  1000,
			reserveIn: 0,
			reserveOut: 1_000_000,
			fee:       3000,
			expErr:    types.ErrInsufficientLiquidity,
		},
		{
			name:      "empty output reserve",
			amountIn:  1000,
			reserveIn: 1_000_000,
			reserveOut: 0,
			fee:       3000,
			expErr:    types.ErrInsufficientLiquidity,
		},
		{
			name:      "fee consumes whole input",
			amountIn:  1000,
			reserveIn: 1_000_000,
			reserveOut: 1_000_000,
			fee:       types.FeeDenominator,
			expErr:    types.ErrInvalidFee,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := keeper.CalculateSwapOutput(
				math.NewInt(tc.amountIn), math.NewInt(tc.reserveIn), math.NewInt(tc.reserveOut), tc.fee)
			if tc.expErr != nil {
				require.ErrorIs(t, err, tc.expErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, math.NewInt(tc.expected), out)
		})
	}
}

func TestSwapZeroForOne(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := setupSwapPool(t, k, ctx, 1_000_000, 1_000_000)

	delta, err := k.Swap(ctx, "lagoon1trader", poolID, types.SwapParams{
		ZeroForOne:   true,
		AmountIn:     math.NewInt(1000),
		MinAmountOut: math.ZeroInt(),
	})
	require.NoError(t, err)

	// Input owed to the pool, output owed to the caller
	require.Equal(t, math.NewInt(1000), delta.Amount0)
	require.Equal(t, math.NewInt(-996), delta.Amount1)

	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_001_000), pool.Reserve0)
	require.Equal(t, math.NewInt(999_004), pool.Reserve1)
	require.Equal(t, keepertest.TestBlockTime.Unix(), pool.LastSwapTime)

	require.True(t, hasEvent(ctx.EventManager().Events(), types.EventTypeSwapExecuted))
}

func TestSwapOneForZero(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := setupSwapPool(t, k, ctx, 2_000_000, 1_000_000)

	delta, err := k.Swap(ctx, "lagoon1trader", poolID, types.SwapParams{
		ZeroForOne:   false,
		AmountIn:     math.NewInt(1000),
		MinAmountOut: math.ZeroInt(),
	})
	require.NoError(t, err)

	require.Equal(t, math.NewInt(-1992), delta.Amount0)
	require.Equal(t, math.NewInt(1000), delta.Amount1)

	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_998_008), pool.Reserve0)
	require.Equal(t, math.NewInt(1_001_000), pool.Reserve1)
}

func TestSwapGrowsInvariant(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := setupSwapPool(t, k, ctx, 1_000_000, 1_000_000)

	before, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	productBefore := before.Reserve0.Mul(before.Reserve1)

	for i := 0; i < 5; i++ {
		params := types.SwapParams{
			ZeroForOne:   i%2 == 0,
			AmountIn:     math.NewInt(10_000),
			MinAmountOut: math.ZeroInt(),
		}
		_, err := k.Swap(ctx, "lagoon1trader", poolID, params)
		require.NoError(t, err)
	}

	after, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.True(t, after.Reserve0.Mul(after.Reserve1).GTE(productBefore),
		"fee income must not let the product shrink")
}

func TestSwapSlippageExceeded(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := setupSwapPool(t, k, ctx, 1_000_000, 1_000_000)

	_, err := k.Swap(ctx, "lagoon1trader", poolID, types.SwapParams{
		ZeroForOne:   true,
		AmountIn:     math.NewInt(1000),
		MinAmountOut: math.NewInt(997),
	})
	require.ErrorIs(t, err, types.ErrSlippageExceeded)

	// The failed swap leaves no trace
	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_000_000), pool.Reserve0)
	require.Equal(t, math.NewInt(1_000_000), pool.Reserve1)
	require.Equal(t, keepertest.TestBlockTime.Unix(), pool.LastSwapTime)
	require.False(t, hasEvent(ctx.EventManager().Events(), types.EventTypeSwapExecuted))
}

func TestSwapMinAmountOutBoundary(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := setupSwapPool(t, k, ctx, 1_000_000, 1_000_000)

	// Exactly the produced output passes
	delta, err := k.Swap(ctx, "lagoon1trader", poolID, types.SwapParams{
		ZeroForOne:   true,
		AmountIn:     math.NewInt(1000),
		MinAmountOut: math.NewInt(996),
	})
	require.NoError(t, err)
	require.Equal(t, math.NewInt(-996), delta.Amount1)
}

func TestSwapZeroOutputRejected(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := setupSwapPool(t, k, ctx, 1_000_000, 1_000_000)

	_, err := k.Swap(ctx, "lagoon1trader", poolID, types.SwapParams{
		ZeroForOne:   true,
		AmountIn:     math.NewInt(1),
		MinAmountOut: math.ZeroInt(),
	})
	require.ErrorIs(t, err, types.ErrInvalidAmount)
	require.Contains(t, err.Error(), "zero output")
}

func TestSwapInputValidation(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := setupSwapPool(t, k, ctx, 1_000_000, 1_000_000)

	tests := []struct {
		name   string
		params types.SwapParams
	}{
		{
			name:   "zero input",
			params: types.SwapParams{ZeroForOne: true, AmountIn: math.ZeroInt(), MinAmountOut: math.ZeroInt()},
		},
		{
			name:   "negative input",
			params: types.SwapParams{ZeroForOne: true, AmountIn: math.NewInt(-1), MinAmountOut: math.ZeroInt()},
		},
		{
			name:   "nil input",
			params: types.SwapParams{ZeroForOne: true, MinAmountOut: math.ZeroInt()},
		},
		{
			name:   "nil min amount out",
			params: types.SwapParams{ZeroForOne: true, AmountIn: math.NewInt(1000)},
		},
		{
			name:   "negative min amount out",
			params: types.SwapParams{ZeroForOne: true, AmountIn: math.NewInt(1000), MinAmountOut: math.NewInt(-1)},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := k.Swap(ctx, "lagoon1trader", poolID, tc.params)
			require.ErrorIs(t, err, types.ErrInvalidAmount)
		})
	}
}

func TestSwapUnknownPool(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)

	_, err := k.Swap(ctx, "lagoon1trader", types.NewPairKey("uatom", "uosmo", 3000, 60, "").PoolID(), types.SwapParams{
		ZeroForOne:   true,
		AmountIn:     math.NewInt(1000),
		MinAmountOut: math.ZeroInt(),
	})
	require.ErrorIs(t, err, types.ErrPoolNotFound)
}

func TestSwapUsesRegistryFee(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := setupSwapPool(t, k, ctx, 1_000_000, 1_000_000)

	// Raise the tier to 1% and check the output reflects it
	require.NoError(t, k.UpdateFee(ctx, poolID, 10_000))

	delta, err := k.Swap(ctx, "lagoon1trader", poolID, types.SwapParams{
		ZeroForOne:   true,
		AmountIn:     math.NewInt(1000),
		MinAmountOut: math.ZeroInt(),
	})
	require.NoError(t, err)
	require.Equal(t, math.NewInt(-989), delta.Amount1)
}

func TestSimulateSwap(t *testing.T) {
	k, ctx := keepertest.AMMKeeper(t)
	poolID := setupSwapPool(t, k, ctx, 1_000_000, 1_000_000)

	params := types.SwapParams{
		ZeroForOne:   true,
		AmountIn:     math.NewInt(1000),
		MinAmountOut: math.ZeroInt(),
	}

	quoted, fee, err := k.SimulateSwap(ctx, poolID, params)
	require.NoError(t, err)
	require.Equal(t, uint32(3000), fee)

	// Simulation leaves the pool untouched
	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_000_000), pool.Reserve0)

	delta, err := k.Swap(ctx, "lagoon1trader", poolID, params)
	require.NoError(t, err)
	require.Equal(t, quoted, delta.Amount1.Neg())
}
