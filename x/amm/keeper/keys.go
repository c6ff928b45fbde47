package keeper

import (
	"github.com/lagoon-dex/lagoon/x/amm/types"
)

var (
	// PoolKeyPrefix is the prefix for pool store keys
	PoolKeyPrefix = []byte{0x01}

	// PoolByTokensKeyPrefix is the prefix for indexing pools by token pair
	PoolByTokensKeyPrefix = []byte{0x02}

	// ParamsKey is the key for module parameters
	ParamsKey = []byte{0x03}

	// FeeTierKeyPrefix is the prefix for the fee-tier registry entries
	FeeTierKeyPrefix = []byte{0x04}

	// PoolCountKey is the key for the number of existing pools
	PoolCountKey = []byte{0x05}

	// PositionKeyPrefix is the prefix for per-caller liquidity shares
	PositionKeyPrefix = []byte{0x06}
)

// PoolKey returns the store key for a pool by ID
func PoolKey(poolID types.PoolID) []byte {
	return append(PoolKeyPrefix, poolID.Bytes()...)
}

// PoolByTokensKey returns the store key for indexing a pool by its token pair
func PoolByTokensKey(tokenA, tokenB string) []byte {
	token0, token1 := types.CanonicalTokenOrder(tokenA, tokenB)
	key := append(PoolByTokensKeyPrefix, []byte(token0)...)
	key = append(key, []byte("/")...)
	key = append(key, []byte(token1)...)
	return key
}

// FeeTierKey returns the store key for a pool's registry fee
func FeeTierKey(poolID types.PoolID) []byte {
	return append(FeeTierKeyPrefix, poolID.Bytes()...)
}

// PositionKey returns the store key for a caller's shares in a pool
func PositionKey(poolID types.PoolID, caller string) []byte {
	key := append(PositionKeyPrefix, poolID.Bytes()...)
	key = append(key, []byte(caller)...)
	return key
}
