package oracle

import (
	"context"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// PoolResolver resolves token pairs to pools and reports their
// liquidity state. The AMM keeper satisfies this interface.
type PoolResolver interface {
	GetPoolIDByTokens(ctx context.Context, tokenA, tokenB string) (types.PoolID, error)
	PoolHasLiquidity(ctx context.Context, poolID types.PoolID) bool
}
