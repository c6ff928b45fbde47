package keeper

import (
	"context"

	"github.com/lagoon-dex/lagoon/x/amm/types"
)

// checkpointCall invokes one handler method on an extension and returns
// its acknowledgment.
type checkpointCall func(ext types.Extension) (types.CheckpointAck, error)

// dispatchCheckpoint routes one checkpoint to the pair's extension.
//
// Pools without an extension, and extensions that did not declare the
// checkpoint, are skipped without error. A handler error or a
// mismatched acknowledgment is returned to the caller, which is
// expected to discard the operation's branched context so that nothing
// the handler wrote survives.
func (k Keeper) dispatchCheckpoint(ctx context.Context, kind types.CheckpointKind, pair types.PairKey, call checkpointCall) error {
	if pair.Extension == "" {
		return nil
	}

	ext, ok := k.extensions[pair.Extension]
	if !ok {
		return types.ErrExtensionNotFound.Wrapf("pool references extension %s", pair.Extension)
	}
	if !ext.Permissions().Has(kind) {
		return nil
	}

	ack, err := call(ext)
	if err != nil {
		k.metrics.CheckpointsTotal.WithLabelValues(kind.String(), pair.Extension, "error").Inc()
		return err
	}
	if ack != kind.Ack() {
		k.metrics.CheckpointsTotal.WithLabelValues(kind.String(), pair.Extension, "bad_ack").Inc()
		return types.ErrInvalidCheckpointAck.Wrapf(
			"extension %s returned ack %d for checkpoint %s, want %d",
			pair.Extension, ack, kind, kind.Ack(),
		)
	}

	k.metrics.CheckpointsTotal.WithLabelValues(kind.String(), pair.Extension, "ok").Inc()
	return nil
}

// validatePairExtension checks at pool creation that the referenced
// extension exists and declares at least one checkpoint.
func (k Keeper) validatePairExtension(pair types.PairKey) error {
	if pair.Extension == "" {
		return nil
	}
	ext, ok := k.extensions[pair.Extension]
	if !ok {
		return types.ErrExtensionNotFound.Wrapf("extension %s", pair.Extension)
	}
	if !ext.Permissions().Any() {
		return types.ErrInvalidPair.Wrapf("extension %s declares no checkpoints", pair.Extension)
	}
	return nil
}
