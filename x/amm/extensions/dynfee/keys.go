package dynfee

import (
	"github.com/lagoon-dex/lagoon/x/amm/types"
)

const (
	// ExtensionName is the name the extension registers under and the
	// name pools reference in their pair key.
	ExtensionName = "dynfee"

	// StoreKey is the extension's own KV store key.
	StoreKey = ExtensionName
)

// KV store key prefixes
var (
	VolatilityKeyPrefix = []byte{0x01}
	LiquidityKeyPrefix  = []byte{0x02}
	ConditionKeyPrefix  = []byte{0x03}
)

// VolatilityKey returns the store key for a pool's volatility data.
func VolatilityKey(poolID types.PoolID) []byte {
	return append(VolatilityKeyPrefix, poolID.Bytes()...)
}

// LiquidityKey returns the store key for a pool's liquidity data.
func LiquidityKey(poolID types.PoolID) []byte {
	return append(LiquidityKeyPrefix, poolID.Bytes()...)
}

// ConditionKey returns the store key for a pool's market condition.
func ConditionKey(poolID types.PoolID) []byte {
	return append(ConditionKeyPrefix, poolID.Bytes()...)
}
