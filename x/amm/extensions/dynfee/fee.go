package dynfee

import (
	"context"

	"cosmossdk.io/math"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// Score and adjustment scales. Scores live in [0, ScoreScale]; each
// fee adjustment is score * multiplier / ScoreScale, applied as
// fee * (ScoreScale +/- adjustment) / ScoreScale.
const (
	BpsScale   = 10_000
	ScoreScale = 10_000

	VolatilityFeeMultiplier = 3_000
	LiquidityFeeMultiplier  = 1_500
	ActivityFeeMultiplier   = 500

	// Piecewise-linear score thresholds. Raw averages below the low
	// threshold map linearly into [0, 5000), between low and high into
	// [5000, 10000), above high saturate at ScoreScale.
	VolatilityLowBps  = 50
	VolatilityHighBps = 500

	// MaxVolumeMultiplier caps the discrete volume tiers applied by
	// CalculateFee.
	MaxVolumeMultiplier = 10
)

// Trade-size thresholds for the liquidity score and the volume tier
// boundary for CalculateFee, in base token units.
var (
	LiquidityLowSize  = math.NewIntWithDecimal(1_000, 18)
	LiquidityHighSize = math.NewIntWithDecimal(100_000, 18)
	VolumeThreshold   = math.NewIntWithDecimal(1_000, 18)
)

// ValidateFee reports whether a fee is usable: inside the allowed
// range and aligned to the fee step.
func ValidateFee(fee uint32) bool {
	return fee >= types.MinFee && fee <= types.MaxFee && fee%types.FeeStep == 0
}

// piecewiseScore maps a raw average into [0, ScoreScale] using a low
// and a high threshold.
func piecewiseScore(raw, low, high math.Int) uint32 {
	if raw.GTE(high) {
		return ScoreScale
	}
	half := math.NewInt(ScoreScale / 2)
	if raw.LT(low) {
		return uint32(raw.Mul(half).Quo(low).Int64())
	}
	return uint32(half.Add(raw.Sub(low).Mul(half).Quo(high.Sub(low))).Int64())
}

func volatilityScore(avgImpactBps math.Int) uint32 {
	return piecewiseScore(avgImpactBps, math.NewInt(VolatilityLowBps), math.NewInt(VolatilityHighBps))
}

func liquidityScore(avgTradeSize math.Int) uint32 {
	return piecewiseScore(avgTradeSize, LiquidityLowSize, LiquidityHighSize)
}

// activityScore rises with trade recency: ActivityWindowSeconds or
// less between trades saturates the score.
func activityScore(lastTradeTime, now int64) uint32 {
	if lastTradeTime == 0 {
		return 0
	}
	elapsed := now - lastTradeTime
	if elapsed <= 0 {
		return ScoreScale
	}
	score := int64(ActivityWindowSeconds) * ScoreScale / elapsed
	if score > ScoreScale {
		return ScoreScale
	}
	return uint32(score)
}

// deriveFee compounds the three adjustments onto the base fee in a
// fixed order: volatility raises, liquidity lowers, activity raises.
// The result is aligned down to the fee step and clamped to the
// allowed range.
func deriveFee(cond MarketCondition) uint32 {
	fee := uint64(types.DefaultFee)

	volAdj := uint64(cond.VolatilityScore) * VolatilityFeeMultiplier / ScoreScale
	fee = fee * (ScoreScale + volAdj) / ScoreScale

	liqAdj := uint64(cond.LiquidityScore) * LiquidityFeeMultiplier / ScoreScale
	fee = fee * (ScoreScale - liqAdj) / ScoreScale

	actAdj := uint64(cond.ActivityScore) * ActivityFeeMultiplier / ScoreScale
	fee = fee * (ScoreScale + actAdj) / ScoreScale

	fee -= fee % types.FeeStep
	if fee < types.MinFee {
		return types.MinFee
	}
	if fee > types.MaxFee {
		return types.MaxFee
	}
	return uint32(fee)
}

// CalculateFee quotes the fee amount a trade of the given size would
// pay at the pool's current registry fee. The volume multiplier is a
// discrete tier: ceil(amount / VolumeThreshold), capped at
// MaxVolumeMultiplier, applied to the fee before the amount is scaled.
// Tiering then scaling keeps large trades in stepped fee bands instead
// of a continuous curve, so the order of operations is load-bearing.
func (e Extension) CalculateFee(ctx context.Context, pair types.PairKey, amount math.Int) (math.Int, error) {
	if amount.IsNil() || !amount.IsPositive() {
		return math.Int{}, types.ErrInvalidAmount.Wrap("fee amount must be positive")
	}

	fee, err := e.registry.GetFee(ctx, pair.PoolID())
	if err != nil {
		return math.Int{}, err
	}
	if !ValidateFee(fee) {
		return math.Int{}, types.ErrInvalidFee.Wrapf("registry fee %d is out of range or misaligned", fee)
	}

	multiplier := amount.Add(VolumeThreshold).SubRaw(1).Quo(VolumeThreshold)
	if multiplier.GT(math.NewInt(MaxVolumeMultiplier)) {
		multiplier = math.NewInt(MaxVolumeMultiplier)
	}

	scaled := multiplier.MulRaw(int64(fee))
	if scaled.GT(math.NewInt(int64(types.MaxFee))) {
		scaled = math.NewInt(int64(types.MaxFee))
	}

	return amount.Mul(scaled).QuoRaw(int64(types.FeeDenominator)), nil
}
