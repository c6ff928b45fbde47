package keeper

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// RegisterInvariants registers the AMM module invariants.
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "pools-consistent", PoolsConsistentInvariant(k))
}

// PoolsConsistentInvariant checks that every stored pool validates,
// is reachable through the token-pair index, and carries a usable
// registry fee.
func PoolsConsistentInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var broken []string

		pools, err := k.GetAllPools(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "pools-consistent",
				fmt.Sprintf("failed to load pools: %s", err)), true
		}

		for _, pool := range pools {
			if err := pool.Validate(); err != nil {
				broken = append(broken, fmt.Sprintf("pool %s invalid: %s", pool.ID, err))
				continue
			}

			indexed, err := k.GetPoolIDByTokens(ctx, pool.Pair.Token0, pool.Pair.Token1)
			if err != nil || indexed != pool.ID {
				broken = append(broken, fmt.Sprintf("pool %s missing from token index", pool.ID))
			}

			fee, err := k.GetFee(ctx, pool.ID)
			if err != nil {
				broken = append(broken, fmt.Sprintf("pool %s fee lookup failed: %s", pool.ID, err))
			} else if err := types.ValidateFeeValue(fee); err != nil {
				broken = append(broken, fmt.Sprintf("pool %s fee %d invalid: %s", pool.ID, fee, err))
			}
		}

		msg := fmt.Sprintf("%d pools checked, %d broken\n", len(pools), len(broken))
		for _, b := range broken {
			msg += b + "\n"
		}
		return sdk.FormatInvariant(types.ModuleName, "pools-consistent", msg), len(broken) > 0
	}
}
