package types

// Event types for the AMM module
const (
	// Coordinator events
	EventTypePoolInitialized  = "pool_initialized"
	EventTypeSwapExecuted     = "swap_executed"
	EventTypePositionModified = "position_modified"
	EventTypeDonationReceived = "donation_received"

	// Dynamic fee events
	EventTypeFeeUpdated             = "fee_updated"
	EventTypeMarketConditionUpdated = "market_condition_updated"

	// Oracle events
	EventTypePriceUpdated            = "price_updated"
	EventTypeManipulationDetected    = "manipulation_detected"
	EventTypeObservationRejected     = "observation_rejected"
	EventTypeProtectionParamsUpdated = "protection_params_updated"
)

// Event attribute keys shared by the coordinator and extensions
const (
	AttributeKeyPoolID          = "pool_id"
	AttributeKeyCaller          = "caller"
	AttributeKeyToken0          = "token0"
	AttributeKeyToken1          = "token1"
	AttributeKeyExtension       = "extension"
	AttributeKeyAmount0         = "amount0"
	AttributeKeyAmount1         = "amount1"
	AttributeKeyAmountIn        = "amount_in"
	AttributeKeyAmountOut       = "amount_out"
	AttributeKeyShares          = "shares"
	AttributeKeyLiquidityDelta  = "liquidity_delta"
	AttributeKeyFee             = "fee"
	AttributeKeyNewFee          = "new_fee"
	AttributeKeyVolatilityScore = "volatility_score"
	AttributeKeyLiquidityScore  = "liquidity_score"
	AttributeKeyActivityScore   = "activity_score"
	AttributeKeyPrice           = "price"
	AttributeKeyVolume          = "volume"
	AttributeKeyTimestamp       = "timestamp"
	AttributeKeySuspiciousPrice = "suspicious_price"
	AttributeKeyExpectedPrice   = "expected_price"
	AttributeKeyRejectedPrice   = "rejected_price"
	AttributeKeyReason          = "reason"
)

// Rejection reasons attached to observation_rejected events
const (
	RejectionReasonInsufficientVolume = "insufficient volume"
	RejectionReasonInvalidPrice       = "invalid price"
	RejectionReasonPriceDeviation     = "price deviation exceeds protection threshold"
	RejectionReasonVWAPDeviation      = "deviation from volume-weighted average exceeds threshold"
)
