package oracle

import (
	"context"
	"encoding/json"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

const (
	// MaxObservations caps the per-pool history; the oldest entry is
	// dropped when a new one arrives at the cap.
	MaxObservations = 1000

	// WindowSeconds is the retention window. Observations older than
	// this are trimmed from the front after every append.
	WindowSeconds = 86_400
)

// MaxPriceCeiling is the sanity bound on a single observed price,
// PriceScale squared. Anything above it is treated as a broken input.
var MaxPriceCeiling = types.PriceScale.Mul(types.PriceScale)

// Observation is one accepted price point. Prices are token1 per
// token0 at PriceScale. CumulativePrice is the running sum over the
// record, kept for cheap interval averages.
type Observation struct {
	Time            int64    `json:"time"`
	Price           math.Int `json:"price"`
	Volume          math.Int `json:"volume"`
	CumulativePrice math.Int `json:"cumulative_price"`
}

// ObservationRecord is a pool's time-ordered observation history.
type ObservationRecord struct {
	Observations     []Observation `json:"observations"`
	CumulativeVolume math.Int      `json:"cumulative_volume"`
	LastUpdateTime   int64         `json:"last_update_time"`
}

// NewObservationRecord returns an empty record.
func NewObservationRecord() ObservationRecord {
	return ObservationRecord{CumulativeVolume: math.ZeroInt()}
}

// GetObservationRecord returns a pool's observation history, or an
// empty record if the pool has none yet.
func (e Extension) GetObservationRecord(ctx context.Context, poolID types.PoolID) ObservationRecord {
	bz := e.getStore(ctx).Get(ObservationKey(poolID))
	if bz == nil {
		return NewObservationRecord()
	}
	var record ObservationRecord
	if err := json.Unmarshal(bz, &record); err != nil {
		return NewObservationRecord()
	}
	return record
}

func (e Extension) setObservationRecord(ctx context.Context, poolID types.PoolID, record ObservationRecord) {
	bz, err := json.Marshal(&record)
	if err != nil {
		return
	}
	e.getStore(ctx).Set(ObservationKey(poolID), bz)
}

// recordObservation folds one operation's realized amounts into the
// pool's price history. Rejections are reported through events and
// skip the update; they never fail the operation that produced the
// amounts. The flow is ordered:
//
//  1. cooldown gate, silent skip
//  2. volume gate, rejection event
//  3. price computation and sanity bounds, rejection event
//  4. manipulation checks against recent history, rejection events
//  5. append under the storage cap
//  6. window trim from the front
func (e Extension) recordObservation(ctx context.Context, poolID types.PoolID, amount0, amount1 math.Int) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	now := sdkCtx.BlockTime().Unix()

	record := e.GetObservationRecord(ctx, poolID)
	params := e.GetProtectionParams(ctx, poolID)

	// 1. Cooldown since the last accepted observation
	if record.LastUpdateTime > 0 && now < record.LastUpdateTime+params.CooldownSeconds {
		e.metrics.ObservationsTotal.WithLabelValues("skipped").Inc()
		return
	}

	// 2. Volume gate
	volume := amount0.Abs().Add(amount1.Abs())
	if volume.LT(params.VolumeThreshold) {
		e.emitRejection(sdkCtx, poolID, math.ZeroInt(), types.RejectionReasonInsufficientVolume)
		return
	}

	// 3. Price as token1 per token0, bounded
	if amount0.IsZero() || amount1.IsZero() {
		e.emitRejection(sdkCtx, poolID, math.ZeroInt(), types.RejectionReasonInvalidPrice)
		return
	}
	price := amount1.Abs().Mul(types.PriceScale).Quo(amount0.Abs())
	if price.IsZero() || price.GT(MaxPriceCeiling) {
		e.emitRejection(sdkCtx, poolID, price, types.RejectionReasonInvalidPrice)
		return
	}

	// Observation times are strictly increasing
	if n := len(record.Observations); n > 0 && now <= record.Observations[n-1].Time {
		e.metrics.ObservationsTotal.WithLabelValues("skipped").Inc()
		return
	}

	// 4. Manipulation checks once enough history exists
	if !e.validatePrice(sdkCtx, poolID, record, params, price, volume) {
		return
	}

	// 5. Append under the cap
	if len(record.Observations) >= MaxObservations {
		record.Observations = record.Observations[1:]
	}
	cumulative := price
	if n := len(record.Observations); n > 0 {
		cumulative = record.Observations[n-1].CumulativePrice.Add(price)
	}
	record.Observations = append(record.Observations, Observation{
		Time:            now,
		Price:           price,
		Volume:          volume,
		CumulativePrice: cumulative,
	})
	record.CumulativeVolume = record.CumulativeVolume.Add(volume)
	record.LastUpdateTime = now

	// 6. Trim entries that fell out of the retention window
	record.Observations = trimWindow(record.Observations, now-WindowSeconds)

	e.setObservationRecord(ctx, poolID, record)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePriceUpdated,
			sdk.NewAttribute(types.AttributeKeyPoolID, poolID.String()),
			sdk.NewAttribute(types.AttributeKeyPrice, price.String()),
			sdk.NewAttribute(types.AttributeKeyVolume, volume.String()),
			sdk.NewAttribute(types.AttributeKeyTimestamp, math.NewInt(now).String()),
		),
	)
	e.metrics.ObservationsTotal.WithLabelValues("accepted").Inc()
}

// validatePrice runs the deviation checks against recent history.
// Below the bootstrap threshold every price is accepted; afterwards
// the price must stay near both the trailing average and the
// volume-weighted average. Small trades get double tolerance on the
// volume-weighted check since they move the pool less.
func (e Extension) validatePrice(sdkCtx sdk.Context, poolID types.PoolID, record ObservationRecord, params ProtectionParams, price, volume math.Int) bool {
	n := len(record.Observations)
	if uint32(n) < params.MinObservations {
		return true
	}

	// Trailing average of the last 5 observations
	window := 5
	if n < window {
		window = n
	}
	sum := math.ZeroInt()
	for _, obs := range record.Observations[n-window:] {
		sum = sum.Add(obs.Price)
	}
	avg := sum.QuoRaw(int64(window))

	if avg.IsPositive() {
		deviation := price.Sub(avg).Abs().MulRaw(10_000).Quo(avg)
		if deviation.GT(math.NewInt(int64(params.MaxPriceDeviationBps))) {
			e.emitManipulation(sdkCtx, poolID, price, avg)
			e.emitRejection(sdkCtx, poolID, price, types.RejectionReasonPriceDeviation)
			return false
		}
	}

	// Volume-weighted average of the last 10 observations
	window = 10
	if n < window {
		window = n
	}
	weighted := math.ZeroInt()
	totalVolume := math.ZeroInt()
	for _, obs := range record.Observations[n-window:] {
		if obs.Volume.IsZero() {
			continue
		}
		weighted = weighted.Add(obs.Price.Mul(obs.Volume))
		totalVolume = totalVolume.Add(obs.Volume)
	}
	if totalVolume.IsPositive() {
		vwap := weighted.Quo(totalVolume)
		if vwap.IsPositive() {
			threshold := math.NewInt(int64(params.MaxPriceDeviationBps))
			avgVolume := totalVolume.QuoRaw(int64(window))
			if volume.LT(avgVolume) {
				threshold = threshold.MulRaw(2)
			}
			deviation := price.Sub(vwap).Abs().MulRaw(10_000).Quo(vwap)
			if deviation.GT(threshold) {
				e.emitManipulation(sdkCtx, poolID, price, vwap)
				e.emitRejection(sdkCtx, poolID, price, types.RejectionReasonVWAPDeviation)
				return false
			}
		}
	}

	return true
}

// trimWindow drops the prefix of observations older than cutoff. The
// slice is time-sorted so only a prefix can be stale.
func trimWindow(observations []Observation, cutoff int64) []Observation {
	drop := 0
	for drop < len(observations) && observations[drop].Time < cutoff {
		drop++
	}
	if drop == 0 {
		return observations
	}
	return observations[drop:]
}

func (e Extension) emitRejection(sdkCtx sdk.Context, poolID types.PoolID, price math.Int, reason string) {
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeObservationRejected,
			sdk.NewAttribute(types.AttributeKeyPoolID, poolID.String()),
			sdk.NewAttribute(types.AttributeKeyRejectedPrice, price.String()),
			sdk.NewAttribute(types.AttributeKeyReason, reason),
		),
	)
	e.metrics.ObservationsTotal.WithLabelValues("rejected").Inc()
}

func (e Extension) emitManipulation(sdkCtx sdk.Context, poolID types.PoolID, suspicious, expected math.Int) {
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeManipulationDetected,
			sdk.NewAttribute(types.AttributeKeyPoolID, poolID.String()),
			sdk.NewAttribute(types.AttributeKeySuspiciousPrice, suspicious.String()),
			sdk.NewAttribute(types.AttributeKeyExpectedPrice, expected.String()),
		),
	)
	e.metrics.ManipulationsTotal.Inc()
}
