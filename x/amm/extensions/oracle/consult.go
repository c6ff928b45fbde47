package oracle

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// MinPeriodSeconds is the shortest lookback a query may ask for.
// Anything shorter reads essentially the spot price and defeats the
// purpose of a manipulation-resistant oracle.
const MinPeriodSeconds = 60

func validatePeriod(secondsAgo int64) error {
	if secondsAgo < MinPeriodSeconds {
		return types.ErrPeriodTooShort.Wrapf("period %d below minimum %d", secondsAgo, MinPeriodSeconds)
	}
	if secondsAgo > WindowSeconds {
		return types.ErrPeriodTooLong.Wrapf("period %d exceeds window %d", secondsAgo, WindowSeconds)
	}
	return nil
}

// Consult returns the pool price closest to secondsAgo in the past,
// expressed as tokenB per tokenA at PriceScale. The pair may be given
// in either order; non-canonical order returns the scaled inverse.
func (e Extension) Consult(ctx context.Context, tokenA, tokenB string, secondsAgo int64) (math.Int, error) {
	if err := validatePeriod(secondsAgo); err != nil {
		return math.Int{}, err
	}
	if tokenA == "" || tokenB == "" || tokenA == tokenB {
		return math.Int{}, types.ErrInvalidTokenDenom.Wrap("consult requires two distinct tokens")
	}

	poolID, err := e.resolver.GetPoolIDByTokens(ctx, tokenA, tokenB)
	if err != nil {
		return math.Int{}, err
	}
	if !e.resolver.PoolHasLiquidity(ctx, poolID) {
		return math.Int{}, types.ErrInsufficientLiquidity.Wrapf("pool %s has no active liquidity", poolID)
	}

	record := e.GetObservationRecord(ctx, poolID)
	params := e.GetProtectionParams(ctx, poolID)
	n := len(record.Observations)
	if n == 0 {
		return math.Int{}, types.ErrInsufficientObservations.Wrapf("no observations for pool %s", poolID)
	}
	if uint32(n) < params.MinObservations {
		return math.Int{}, types.ErrInsufficientObservations.Wrapf(
			"oracle bootstrapping: %d of %d observations", n, params.MinObservations)
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	target := sdkCtx.BlockTime().Unix() - secondsAgo
	price := record.Observations[searchObservation(record.Observations, target)].Price

	// Stored prices are token1 per token0 in canonical order; invert
	// for callers asking the other way around.
	token0, _ := types.CanonicalTokenOrder(tokenA, tokenB)
	if tokenA != token0 {
		if price.IsZero() {
			return math.Int{}, types.ErrInvalidPrice.Wrap("cannot invert zero price")
		}
		price = MaxPriceCeiling.Quo(price)
	}

	e.metrics.ConsultsTotal.Inc()
	return price, nil
}

// searchObservation finds the rightmost observation with time at or
// before target. The slice is sorted ascending by time; when target
// predates all history the earliest observation is the nearest.
func searchObservation(observations []Observation, target int64) int {
	if target < observations[0].Time {
		return 0
	}
	lo, hi := 0, len(observations)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if observations[mid].Time <= target {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// GetTWAP returns the time-weighted average price over the trailing
// period, weighting each observation's price by the time it remained
// current.
func (e Extension) GetTWAP(ctx context.Context, poolID types.PoolID, secondsAgo int64) (math.Int, error) {
	if err := validatePeriod(secondsAgo); err != nil {
		return math.Int{}, err
	}

	record := e.GetObservationRecord(ctx, poolID)
	if len(record.Observations) == 0 {
		return math.Int{}, types.ErrInsufficientObservations.Wrapf("no observations for pool %s", poolID)
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	cutoff := sdkCtx.BlockTime().Unix() - secondsAgo
	window := observationsSince(record.Observations, cutoff)
	if len(window) == 0 {
		return math.Int{}, types.ErrInsufficientObservations.Wrap("no observations in period")
	}
	if len(window) == 1 {
		return window[0].Price, nil
	}

	weighted := math.ZeroInt()
	for i := 0; i < len(window)-1; i++ {
		dt := window[i+1].Time - window[i].Time
		weighted = weighted.Add(window[i].Price.MulRaw(dt))
	}
	elapsed := window[len(window)-1].Time - window[0].Time
	if elapsed <= 0 {
		return math.Int{}, types.ErrArithmetic.Wrap("observation window has no elapsed time")
	}
	return weighted.QuoRaw(elapsed), nil
}

// GetVWAP returns the volume-weighted average price over the trailing
// period, skipping zero-volume entries.
func (e Extension) GetVWAP(ctx context.Context, poolID types.PoolID, secondsAgo int64) (math.Int, error) {
	if err := validatePeriod(secondsAgo); err != nil {
		return math.Int{}, err
	}

	record := e.GetObservationRecord(ctx, poolID)
	if len(record.Observations) == 0 {
		return math.Int{}, types.ErrInsufficientObservations.Wrapf("no observations for pool %s", poolID)
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	cutoff := sdkCtx.BlockTime().Unix() - secondsAgo

	weighted := math.ZeroInt()
	totalVolume := math.ZeroInt()
	for _, obs := range observationsSince(record.Observations, cutoff) {
		if obs.Volume.IsZero() {
			continue
		}
		weighted = weighted.Add(obs.Price.Mul(obs.Volume))
		totalVolume = totalVolume.Add(obs.Volume)
	}
	if totalVolume.IsZero() {
		return math.Int{}, types.ErrInsufficientObservations.Wrap("no volume in period")
	}
	return weighted.Quo(totalVolume), nil
}

// observationsSince returns the suffix of observations at or after
// cutoff.
func observationsSince(observations []Observation, cutoff int64) []Observation {
	start := 0
	for start < len(observations) && observations[start].Time < cutoff {
		start++
	}
	return observations[start:]
}

// Status describes how much history a pool's oracle has accumulated.
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusBootstrapping Status = "bootstrapping"
	StatusActive        Status = "active"
)

// GetLatestPrice returns the most recently accepted price for the pool.
func (e Extension) GetLatestPrice(ctx context.Context, poolID types.PoolID) (math.Int, error) {
	record := e.GetObservationRecord(ctx, poolID)
	n := len(record.Observations)
	if n == 0 {
		return math.Int{}, types.ErrInsufficientObservations.Wrapf("no observations for pool %s", poolID)
	}
	return record.Observations[n-1].Price, nil
}

// GetObservationCount returns the number of retained observations.
func (e Extension) GetObservationCount(ctx context.Context, poolID types.PoolID) int {
	return len(e.GetObservationRecord(ctx, poolID).Observations)
}

// Status reports the pool's oracle stage. Pools with no history are
// uninitialized, then bootstrap until MinObservations are on record,
// after which deviation checks arm and queries are served.
func (e Extension) Status(ctx context.Context, poolID types.PoolID) Status {
	n := len(e.GetObservationRecord(ctx, poolID).Observations)
	switch {
	case n == 0:
		return StatusUninitialized
	case uint32(n) < e.GetProtectionParams(ctx, poolID).MinObservations:
		return StatusBootstrapping
	default:
		return StatusActive
	}
}
