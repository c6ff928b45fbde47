package oracle

import (
	"github.com/lagoon-dex/lagoon/x/amm/types"
)

const (
	// ExtensionName is the name the extension registers under and the
	// name pools reference in their pair key.
	ExtensionName = "oracle"

	// StoreKey is the extension's own KV store key. Prefixed to stay
	// unique among the app's mounted stores.
	StoreKey = "ammoracle"
)

// KV store key prefixes
var (
	ObservationKeyPrefix = []byte{0x01}
	ProtectionKeyPrefix  = []byte{0x02}
)

// ObservationKey returns the store key for a pool's observation record.
func ObservationKey(poolID types.PoolID) []byte {
	return append(ObservationKeyPrefix, poolID.Bytes()...)
}

// ProtectionKey returns the store key for a pool's protection params.
func ProtectionKey(poolID types.PoolID) []byte {
	return append(ProtectionKeyPrefix, poolID.Bytes()...)
}
