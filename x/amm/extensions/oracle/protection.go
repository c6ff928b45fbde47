package oracle

import (
	"context"
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// ProtectionParams governs which observations a pool's oracle accepts.
// Seeded with defaults when the pool is created.
type ProtectionParams struct {
	MaxPriceDeviationBps uint32   `json:"max_price_deviation_bps"`
	MinObservations      uint32   `json:"min_observations"`
	VolumeThreshold      math.Int `json:"volume_threshold"`
	CooldownSeconds      int64    `json:"cooldown_seconds"`
}

// DefaultProtectionParams returns the protection settings pools start
// with: 5% max deviation, 3 bootstrap observations, a one-token volume
// floor and a 30 second cooldown.
func DefaultProtectionParams() ProtectionParams {
	return ProtectionParams{
		MaxPriceDeviationBps: 500,
		MinObservations:      3,
		VolumeThreshold:      types.PriceScale,
		CooldownSeconds:      30,
	}
}

// Validate checks the protection params are internally consistent.
func (p ProtectionParams) Validate() error {
	if p.MaxPriceDeviationBps == 0 || p.MaxPriceDeviationBps > 10_000 {
		return fmt.Errorf("max price deviation must be in (0, 10000] bps, got %d", p.MaxPriceDeviationBps)
	}
	if p.MinObservations == 0 {
		return fmt.Errorf("min observations must be positive")
	}
	if p.MinObservations > MaxObservations {
		return fmt.Errorf("min observations %d exceeds storage cap %d", p.MinObservations, MaxObservations)
	}
	if p.VolumeThreshold.IsNil() || p.VolumeThreshold.IsNegative() {
		return fmt.Errorf("volume threshold must be non-negative")
	}
	if p.CooldownSeconds < 0 {
		return fmt.Errorf("cooldown seconds must be non-negative")
	}
	return nil
}

// GetProtectionParams returns a pool's protection params, falling back
// to defaults when the pool has none stored.
func (e Extension) GetProtectionParams(ctx context.Context, poolID types.PoolID) ProtectionParams {
	bz := e.getStore(ctx).Get(ProtectionKey(poolID))
	if bz == nil {
		return DefaultProtectionParams()
	}
	var params ProtectionParams
	if err := json.Unmarshal(bz, &params); err != nil {
		return DefaultProtectionParams()
	}
	return params
}

// UpdateProtectionParams replaces a pool's protection params wholesale.
// There is no caller restriction; tuning is open the same way reading
// the oracle is.
func (e Extension) UpdateProtectionParams(ctx context.Context, poolID types.PoolID, params ProtectionParams) error {
	if err := params.Validate(); err != nil {
		return types.ErrInvalidProtectionParams.Wrap(err.Error())
	}

	bz, err := json.Marshal(&params)
	if err != nil {
		return types.ErrInvalidProtectionParams.Wrapf("failed to marshal params: %s", err)
	}
	e.getStore(ctx).Set(ProtectionKey(poolID), bz)

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeProtectionParamsUpdated,
			sdk.NewAttribute(types.AttributeKeyPoolID, poolID.String()),
			sdk.NewAttribute("max_price_deviation_bps", fmt.Sprintf("%d", params.MaxPriceDeviationBps)),
			sdk.NewAttribute("min_observations", fmt.Sprintf("%d", params.MinObservations)),
			sdk.NewAttribute("volume_threshold", params.VolumeThreshold.String()),
			sdk.NewAttribute("cooldown_seconds", fmt.Sprintf("%d", params.CooldownSeconds)),
		),
	)
	return nil
}
