package dynfee

import (
	"context"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// FeeRegistry is the fee-tier registry the extension reads from and
// pushes recomputed fees to. The AMM keeper satisfies this interface.
type FeeRegistry interface {
	GetFee(ctx context.Context, poolID types.PoolID) (uint32, error)
	UpdateFee(ctx context.Context, poolID types.PoolID, fee uint32) error
}
