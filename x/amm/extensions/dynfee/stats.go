package dynfee

import (
	"context"
	"encoding/json"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// Statistics windows and caps. Volatility uses the longest window,
// liquidity a shorter one, activity the shortest.
const (
	VolatilityWindowSeconds = 3600
	LiquidityWindowSeconds  = 900
	ActivityWindowSeconds   = 300

	// MaxVolatilitySamples bounds storage growth. When the sample count
	// passes the cap, 90% of the cumulative weight is kept and the
	// count drops to DecayedVolatilitySamples.
	MaxVolatilitySamples     = 100
	DecayedVolatilitySamples = 90
)

// VolatilityData is a rolling window of price-impact samples for one
// pool, in basis points.
type VolatilityData struct {
	CumulativeImpact math.Int `json:"cumulative_impact"`
	SampleCount      uint64   `json:"sample_count"`
	LastUpdateTime   int64    `json:"last_update_time"`
	LastImpact       math.Int `json:"last_impact"`
	LastPrice        math.Int `json:"last_price"`
}

// DefaultVolatilityData returns an empty record.
func DefaultVolatilityData() VolatilityData {
	return VolatilityData{
		CumulativeImpact: math.ZeroInt(),
		LastImpact:       math.ZeroInt(),
		LastPrice:        math.ZeroInt(),
	}
}

// AverageImpactBps returns the mean price impact over the window.
func (v VolatilityData) AverageImpactBps() math.Int {
	if v.SampleCount == 0 {
		return math.ZeroInt()
	}
	return v.CumulativeImpact.Quo(math.NewIntFromUint64(v.SampleCount))
}

// LiquidityData is the rolling average trade size for one pool.
type LiquidityData struct {
	AverageTradeSize math.Int `json:"average_trade_size"`
	TradeCount       uint64   `json:"trade_count"`
	WindowStart      int64    `json:"window_start"`
}

// DefaultLiquidityData returns an empty record.
func DefaultLiquidityData() LiquidityData {
	return LiquidityData{AverageTradeSize: math.ZeroInt()}
}

// MarketCondition holds the three derived scores in [0, ScoreScale]
// and the time they were computed.
type MarketCondition struct {
	VolatilityScore uint32 `json:"volatility_score"`
	LiquidityScore  uint32 `json:"liquidity_score"`
	ActivityScore   uint32 `json:"activity_score"`
	UpdatedAt       int64  `json:"updated_at"`
}

func (e Extension) getStore(ctx context.Context) sdk.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(e.storeKey)
}

// GetVolatilityData returns a pool's volatility record, or an empty
// record when none has been written yet.
func (e Extension) GetVolatilityData(ctx context.Context, poolID types.PoolID) VolatilityData {
	bz := e.getStore(ctx).Get(VolatilityKey(poolID))
	if bz == nil {
		return DefaultVolatilityData()
	}
	var data VolatilityData
	if err := json.Unmarshal(bz, &data); err != nil {
		return DefaultVolatilityData()
	}
	return data
}

func (e Extension) setVolatilityData(ctx context.Context, poolID types.PoolID, data VolatilityData) {
	bz, err := json.Marshal(&data)
	if err != nil {
		return
	}
	e.getStore(ctx).Set(VolatilityKey(poolID), bz)
}

// GetLiquidityData returns a pool's liquidity record, or an empty
// record when none has been written yet.
func (e Extension) GetLiquidityData(ctx context.Context, poolID types.PoolID) LiquidityData {
	bz := e.getStore(ctx).Get(LiquidityKey(poolID))
	if bz == nil {
		return DefaultLiquidityData()
	}
	var data LiquidityData
	if err := json.Unmarshal(bz, &data); err != nil {
		return DefaultLiquidityData()
	}
	return data
}

func (e Extension) setLiquidityData(ctx context.Context, poolID types.PoolID, data LiquidityData) {
	bz, err := json.Marshal(&data)
	if err != nil {
		return
	}
	e.getStore(ctx).Set(LiquidityKey(poolID), bz)
}

// GetMarketCondition returns a pool's latest derived scores. The zero
// value means no qualifying swap has been observed yet.
func (e Extension) GetMarketCondition(ctx context.Context, poolID types.PoolID) MarketCondition {
	bz := e.getStore(ctx).Get(ConditionKey(poolID))
	if bz == nil {
		return MarketCondition{}
	}
	var cond MarketCondition
	if err := json.Unmarshal(bz, &cond); err != nil {
		return MarketCondition{}
	}
	return cond
}

func (e Extension) setMarketCondition(ctx context.Context, poolID types.PoolID, cond MarketCondition) {
	bz, err := json.Marshal(&cond)
	if err != nil {
		return
	}
	e.getStore(ctx).Set(ConditionKey(poolID), bz)
}

// updateVolatility folds one price sample into the rolling window.
// The impact is the relative move from the previous price in basis
// points; the first sample of a pool contributes zero impact.
func (e Extension) updateVolatility(ctx context.Context, poolID types.PoolID, price math.Int, now int64) VolatilityData {
	data := e.GetVolatilityData(ctx, poolID)

	// Window elapsed: restart the statistics but keep the last price
	// so the next impact is still measured against real history.
	if data.SampleCount > 0 && now >= data.LastUpdateTime+VolatilityWindowSeconds {
		data.CumulativeImpact = math.ZeroInt()
		data.SampleCount = 0
		data.LastImpact = math.ZeroInt()
	}

	impact := math.ZeroInt()
	if data.LastPrice.IsPositive() && price.IsPositive() {
		diff := price.Sub(data.LastPrice).Abs()
		impact = diff.MulRaw(BpsScale).Quo(data.LastPrice)
	}

	data.CumulativeImpact = data.CumulativeImpact.Add(impact)
	data.SampleCount++
	data.LastImpact = impact
	data.LastPrice = price
	data.LastUpdateTime = now

	if data.SampleCount > MaxVolatilitySamples {
		data.CumulativeImpact = data.CumulativeImpact.MulRaw(9).QuoRaw(10)
		data.SampleCount = DecayedVolatilitySamples
	}

	e.setVolatilityData(ctx, poolID, data)
	return data
}

// updateLiquidity folds one trade size into the rolling average.
func (e Extension) updateLiquidity(ctx context.Context, poolID types.PoolID, volume math.Int, now int64) LiquidityData {
	data := e.GetLiquidityData(ctx, poolID)

	if data.WindowStart == 0 || now >= data.WindowStart+LiquidityWindowSeconds {
		data = LiquidityData{
			AverageTradeSize: volume,
			TradeCount:       1,
			WindowStart:      now,
		}
	} else {
		count := math.NewIntFromUint64(data.TradeCount)
		data.AverageTradeSize = data.AverageTradeSize.Mul(count).Add(volume).Quo(count.AddRaw(1))
		data.TradeCount++
	}

	e.setLiquidityData(ctx, poolID, data)
	return data
}

// recomputeCondition derives the three scores from the current
// statistics. The previous condition's timestamp serves as the last
// trade time for the activity score.
func (e Extension) recomputeCondition(ctx context.Context, poolID types.PoolID, vol VolatilityData, liq LiquidityData, now int64) MarketCondition {
	prev := e.GetMarketCondition(ctx, poolID)

	cond := MarketCondition{
		VolatilityScore: volatilityScore(vol.AverageImpactBps()),
		LiquidityScore:  liquidityScore(liq.AverageTradeSize),
		ActivityScore:   activityScore(prev.UpdatedAt, now),
		UpdatedAt:       now,
	}
	e.setMarketCondition(ctx, poolID, cond)
	return cond
}
