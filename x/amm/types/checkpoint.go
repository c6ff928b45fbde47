package types

import (
	"context"

	sdkmath "cosmossdk.io/math"
)

// CheckpointKind identifies one of the eight lifecycle checkpoints the
// coordinator can dispatch around a pool operation.
type CheckpointKind uint8

const (
	CheckpointBeforeInitialize CheckpointKind = iota + 1
	CheckpointAfterInitialize
	CheckpointBeforeModifyPosition
	CheckpointAfterModifyPosition
	CheckpointBeforeSwap
	CheckpointAfterSwap
	CheckpointBeforeDonate
	CheckpointAfterDonate
)

// String returns the snake_case name used in events and metrics labels.
func (k CheckpointKind) String() string {
	switch k {
	case CheckpointBeforeInitialize:
		return "before_initialize"
	case CheckpointAfterInitialize:
		return "after_initialize"
	case CheckpointBeforeModifyPosition:
		return "before_modify_position"
	case CheckpointAfterModifyPosition:
		return "after_modify_position"
	case CheckpointBeforeSwap:
		return "before_swap"
	case CheckpointAfterSwap:
		return "after_swap"
	case CheckpointBeforeDonate:
		return "before_donate"
	case CheckpointAfterDonate:
		return "after_donate"
	default:
		return "unknown"
	}
}

// CheckpointAck is the acknowledgment a checkpoint handler must return.
// The coordinator aborts the whole operation when the returned value
// does not match the dispatched checkpoint's expected acknowledgment,
// so a handler wired to the wrong checkpoint cannot half-commit state.
type CheckpointAck uint8

// Ack returns the acknowledgment value a handler for this checkpoint
// must echo back.
func (k CheckpointKind) Ack() CheckpointAck {
	return CheckpointAck(k)
}

// ExtensionPermissions declares which checkpoints an extension wants
// dispatched. The coordinator never calls a checkpoint the extension
// did not declare.
type ExtensionPermissions struct {
	BeforeInitialize     bool
	AfterInitialize      bool
	BeforeModifyPosition bool
	AfterModifyPosition  bool
	BeforeSwap           bool
	AfterSwap            bool
	BeforeDonate         bool
	AfterDonate          bool
}

// Has reports whether the permission set covers the given checkpoint.
func (p ExtensionPermissions) Has(kind CheckpointKind) bool {
	switch kind {
	case CheckpointBeforeInitialize:
		return p.BeforeInitialize
	case CheckpointAfterInitialize:
		return p.AfterInitialize
	case CheckpointBeforeModifyPosition:
		return p.BeforeModifyPosition
	case CheckpointAfterModifyPosition:
		return p.AfterModifyPosition
	case CheckpointBeforeSwap:
		return p.BeforeSwap
	case CheckpointAfterSwap:
		return p.AfterSwap
	case CheckpointBeforeDonate:
		return p.BeforeDonate
	case CheckpointAfterDonate:
		return p.AfterDonate
	default:
		return false
	}
}

// Any reports whether at least one checkpoint is declared. Pools reject
// extensions that declare nothing, since attaching one would be dead
// weight on every operation.
func (p ExtensionPermissions) Any() bool {
	return p.BeforeInitialize || p.AfterInitialize ||
		p.BeforeModifyPosition || p.AfterModifyPosition ||
		p.BeforeSwap || p.AfterSwap ||
		p.BeforeDonate || p.AfterDonate
}

// Extension is the checkpoint handler contract. Implementations keep
// their own state in their own stores; the coordinator hands them only
// the operation context.
//
// Every handler returns the acknowledgment for its checkpoint. An error
// or a mismatched acknowledgment aborts the surrounding operation and
// discards every write it made, including the handler's own.
type Extension interface {
	// Name is the identifier pools reference in their PairKey.
	Name() string

	// Permissions declares the checkpoints this extension handles.
	Permissions() ExtensionPermissions

	// BeforeInitialize runs before a pool is created with the initial
	// reserve amounts.
	BeforeInitialize(ctx context.Context, caller string, pair PairKey, amount0, amount1 sdkmath.Int) (CheckpointAck, error)

	// AfterInitialize runs after the pool exists; delta carries the
	// initial reserves as amounts owed to the pool.
	AfterInitialize(ctx context.Context, caller string, pair PairKey, delta BalanceDelta) (CheckpointAck, error)

	// BeforeModifyPosition runs before liquidity is minted or burned.
	BeforeModifyPosition(ctx context.Context, caller string, pair PairKey, liquidityDelta sdkmath.Int) (CheckpointAck, error)

	// AfterModifyPosition runs after the position change with the
	// resulting token movements.
	AfterModifyPosition(ctx context.Context, caller string, pair PairKey, liquidityDelta sdkmath.Int, delta BalanceDelta) (CheckpointAck, error)

	// BeforeSwap runs before the swap executes.
	BeforeSwap(ctx context.Context, caller string, pair PairKey, params SwapParams) (CheckpointAck, error)

	// AfterSwap runs after the swap with the realized delta.
	AfterSwap(ctx context.Context, caller string, pair PairKey, params SwapParams, delta BalanceDelta) (CheckpointAck, error)

	// BeforeDonate runs before reserves are topped up.
	BeforeDonate(ctx context.Context, caller string, pair PairKey, amount0, amount1 sdkmath.Int) (CheckpointAck, error)

	// AfterDonate runs after the donation with the resulting delta.
	AfterDonate(ctx context.Context, caller string, pair PairKey, amount0, amount1 sdkmath.Int, delta BalanceDelta) (CheckpointAck, error)
}
