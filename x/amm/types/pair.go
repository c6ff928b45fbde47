package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// PairKey is the canonical identity of a pool: the two token denoms in
// lexicographic order, the fee configuration, the tick spacing, and the
// name of the extension attached to the pool (empty when none).
type PairKey struct {
	// Token0 is the lexicographically smaller denom
	Token0 string

	// Token1 is the lexicographically larger denom
	Token1 string

	// Fee is the static fee in parts-per-million, or DynamicFeeFlag
	// when the effective fee is managed by the fee-tier registry
	Fee uint32

	// TickSpacing is reserved for concentrated-liquidity pools and is
	// validated but otherwise unused by the constant-product engine
	TickSpacing int64

	// Extension names the registered extension receiving this pool's
	// checkpoints; empty means the pool runs without one
	Extension string
}

// NewPairKey builds a PairKey with the denoms put in canonical order.
func NewPairKey(tokenA, tokenB string, fee uint32, tickSpacing int64, extension string) PairKey {
	token0, token1 := CanonicalTokenOrder(tokenA, tokenB)
	return PairKey{
		Token0:      token0,
		Token1:      token1,
		Fee:         fee,
		TickSpacing: tickSpacing,
		Extension:   extension,
	}
}

// CanonicalTokenOrder returns the two denoms in lexicographic order.
func CanonicalTokenOrder(tokenA, tokenB string) (string, string) {
	if tokenA > tokenB {
		return tokenB, tokenA
	}
	return tokenA, tokenB
}

// IsDynamicFee reports whether the pair defers its fee to the registry.
func (p PairKey) IsDynamicFee() bool {
	return p.Fee == DynamicFeeFlag
}

// Validate checks the pair for well-formedness. Dynamic-fee pairs must
// name an extension because only an extension can push fee updates.
func (p PairKey) Validate() error {
	if strings.TrimSpace(p.Token0) == "" || strings.TrimSpace(p.Token1) == "" {
		return ErrInvalidTokenDenom.Wrap("token denom cannot be empty")
	}
	if p.Token0 == p.Token1 {
		return ErrInvalidPair.Wrapf("identical tokens %s", p.Token0)
	}
	if p.Token0 > p.Token1 {
		return ErrInvalidPair.Wrapf("tokens not in canonical order: %s > %s", p.Token0, p.Token1)
	}
	if p.TickSpacing <= 0 {
		return ErrInvalidPair.Wrapf("tick spacing must be positive, got %d", p.TickSpacing)
	}
	if p.IsDynamicFee() {
		if p.Extension == "" {
			return ErrInvalidPair.Wrap("dynamic-fee pair requires an extension")
		}
		return nil
	}
	if err := ValidateFeeValue(p.Fee); err != nil {
		return err
	}
	return nil
}

// PoolID returns the collision-resistant identifier derived from the
// pair's canonical encoding.
func (p PairKey) PoolID() PoolID {
	payload := fmt.Sprintf("%s|%s|%d|%d|%s", p.Token0, p.Token1, p.Fee, p.TickSpacing, p.Extension)
	return PoolID(sha256.Sum256([]byte(payload)))
}

// PoolID uniquely identifies a pool as the SHA-256 of its PairKey.
type PoolID [32]byte

// Bytes returns the raw identifier for store keys.
func (id PoolID) Bytes() []byte {
	return id[:]
}

// String returns the hex form used in events and logs.
func (id PoolID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether the identifier is unset.
func (id PoolID) IsZero() bool {
	return id == PoolID{}
}

// MarshalJSON encodes the identifier as a hex string.
func (id PoolID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON decodes the identifier from a hex string.
func (id *PoolID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(raw) != len(id) {
		return fmt.Errorf("pool id must be %d bytes, got %d", len(id), len(raw))
	}
	copy(id[:], raw)
	return nil
}

// PoolIDFromHex parses a hex-encoded pool identifier.
func PoolIDFromHex(s string) (PoolID, error) {
	var id PoolID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, ErrInvalidPoolState.Wrapf("malformed pool id %q", s)
	}
	if len(raw) != len(id) {
		return id, ErrInvalidPoolState.Wrapf("pool id must be %d bytes, got %d", len(id), len(raw))
	}
	copy(id[:], raw)
	return id, nil
}
