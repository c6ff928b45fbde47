package types_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

func testGenesisPool() types.Pool {
	pair := types.NewPairKey("uatom", "uosmo", 3000, 60, "")
	return types.Pool{
		ID:          pair.PoolID(),
		Pair:        pair,
		Reserve0:    math.NewInt(1_000_000),
		Reserve1:    math.NewInt(2_000_000),
		TotalShares: math.NewInt(1_414_213),
		CreatedAt:   1_700_000_000,
	}
}

func TestGenesisValidate(t *testing.T) {
	pool := testGenesisPool()
	position := types.SharePosition{
		PoolID: pool.ID,
		Owner:  "lagoon1creator",
		Shares: pool.TotalShares,
	}

	tests := []struct {
		name    string
		mutate  func(gs *types.GenesisState)
		wantErr string
	}{
		{
			name:   "default genesis",
			mutate: func(gs *types.GenesisState) { gs.Pools = nil; gs.Positions = nil },
		},
		{
			name:   "pool with matching position",
			mutate: func(gs *types.GenesisState) {},
		},
		{
			name: "duplicate pool id",
			mutate: func(gs *types.GenesisState) {
				gs.Pools = append(gs.Pools, pool)
			},
			wantErr: "duplicate pool id",
		},
		{
			name: "fee tier for unknown pool",
			mutate: func(gs *types.GenesisState) {
				gs.FeeTiers = []types.FeeTier{{PoolID: types.PoolID{0xff}, Fee: 500}}
			},
			wantErr: "unknown pool",
		},
		{
			name: "fee tier out of range",
			mutate: func(gs *types.GenesisState) {
				gs.FeeTiers = []types.FeeTier{{PoolID: pool.ID, Fee: 3}}
			},
			wantErr: "fee",
		},
		{
			name: "position for unknown pool",
			mutate: func(gs *types.GenesisState) {
				gs.Positions = []types.SharePosition{{PoolID: types.PoolID{0xee}, Owner: "lagoon1x", Shares: math.NewInt(1)}}
			},
			wantErr: "unknown pool",
		},
		{
			name: "duplicate position owner",
			mutate: func(gs *types.GenesisState) {
				gs.Positions = append(gs.Positions, types.SharePosition{
					PoolID: pool.ID, Owner: "lagoon1creator", Shares: math.NewInt(1),
				})
			},
			wantErr: "duplicate position",
		},
		{
			name: "shares sum exceeds total",
			mutate: func(gs *types.GenesisState) {
				gs.Positions = append(gs.Positions, types.SharePosition{
					PoolID: pool.ID, Owner: "lagoon1other", Shares: math.NewInt(100),
				})
			},
			wantErr: "shares mismatch",
		},
		{
			name: "shares sum below total",
			mutate: func(gs *types.GenesisState) {
				gs.Positions = []types.SharePosition{{
					PoolID: pool.ID, Owner: "lagoon1creator", Shares: math.NewInt(7),
				}}
			},
			wantErr: "shares mismatch",
		},
		{
			name: "position without shares",
			mutate: func(gs *types.GenesisState) {
				gs.Positions = []types.SharePosition{{
					PoolID: pool.ID, Owner: "lagoon1creator", Shares: math.ZeroInt(),
				}}
			},
			wantErr: "shares must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := types.GenesisState{
				Params:    types.DefaultParams(),
				Pools:     []types.Pool{pool},
				Positions: []types.SharePosition{position},
			}
			tt.mutate(&gs)

			err := gs.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDefaultGenesisIsValid(t *testing.T) {
	require.NoError(t, types.DefaultGenesis().Validate())
}
