package indexer

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/yuv-protocol/yuv-node/chainbridge"
	"github.com/yuv-protocol/yuv-node/storage"
)

// defaultIndexStepBack is how many recent (height, hash) pairs the
// cursor keeps in memory to detect and unwind a reorg, independent of
// the durable single-point cursor storage persists, when the node's
// config doesn't set IndexStepBack explicitly.
const defaultIndexStepBack = 100

// cursor tracks the indexer's scan position: a durable (height, hash)
// pair in storage, plus an in-memory trail of recently processed
// blocks used to find the common ancestor on a reorg.
type cursor struct {
	store         storage.CursorStore
	trail         []blockRef
	indexStepBack int32
	seeded        bool
}

type blockRef struct {
	height int32
	hash   chainhash.Hash
}

func newCursor(store storage.CursorStore, indexStepBack int32) *cursor {
	if indexStepBack <= 0 {
		indexStepBack = defaultIndexStepBack
	}
	return &cursor{store: store, indexStepBack: indexStepBack}
}

// Load returns the last durably processed height, or (-1, false) if
// nothing has been processed yet.
func (c *cursor) Load(ctx context.Context) (int32, chainhash.Hash, bool, error) {
	height, hash, err := c.store.IndexerCursorGet(ctx)
	if err == storage.ErrNotFound {
		return -1, chainhash.Hash{}, false, nil
	}
	if err != nil {
		return 0, chainhash.Hash{}, false, err
	}
	return height, chainhash.Hash(hash), true, nil
}

// Advance records height/hash as processed, both durably and in the
// in-memory reorg trail.
func (c *cursor) Advance(ctx context.Context, height int32, hash chainhash.Hash) error {
	if err := c.store.IndexerCursorPut(ctx, height, [32]byte(hash)); err != nil {
		return err
	}

	c.trail = append(c.trail, blockRef{height: height, hash: hash})
	if int32(len(c.trail)) > c.indexStepBack {
		c.trail = c.trail[int32(len(c.trail))-c.indexStepBack:]
	}
	return nil
}

// ensureSeeded rebuilds the in-memory reorg trail from the chain itself
// the first time it's needed after a process restart, when the durable
// cursor already has a position but the in-memory trail that detects a
// reorg against it is still empty. Without this, the first poll after
// any restart would find an empty trail and treat even a shallow reorg
// as deeper than the local recovery window.
func (c *cursor) ensureSeeded(ctx context.Context, bridge chainbridge.Bridge,
	lastHeight int32, lastHash chainhash.Hash) error {

	if c.seeded || len(c.trail) > 0 {
		c.seeded = true
		return nil
	}

	start := lastHeight - c.indexStepBack + 1
	if start < 0 {
		start = 0
	}

	trail := make([]blockRef, 0, lastHeight-start+1)
	for h := start; h < lastHeight; h++ {
		hash, err := bridge.GetBlockHash(ctx, h)
		if err != nil {
			return fmt.Errorf("seeding reorg trail at height %d: %w", h, err)
		}
		trail = append(trail, blockRef{height: h, hash: *hash})
	}
	trail = append(trail, blockRef{height: lastHeight, hash: lastHash})

	c.trail = trail
	c.seeded = true
	return nil
}

// FindAncestor walks the in-memory trail backward from its tip looking
// for a height/hash pair the trail agrees with isStillValid on,
// returning the height to resume scanning from. It returns false if
// the entire trail was invalidated, meaning the reorg is deeper than
// this indexer can locally recover from.
func (c *cursor) FindAncestor(isStillValid func(height int32, hash chainhash.Hash) bool) (int32, bool) {
	for i := len(c.trail) - 1; i >= 0; i-- {
		ref := c.trail[i]
		if isStillValid(ref.height, ref.hash) {
			c.trail = c.trail[:i+1]
			return ref.height, true
		}
	}
	return 0, false
}
