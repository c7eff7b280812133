package controller

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/lru"
)

// seenCache is a bounded LRU of recently-seen txids, so the controller
// doesn't re-check or re-broadcast a transaction every peer happens to
// announce it has.
type seenCache struct {
	cache *lru.Cache
}

func newSeenCache(size uint) *seenCache {
	return &seenCache{cache: lru.New(size)}
}

// markSeen records txid as seen, returning true if it was already
// present.
func (c *seenCache) markSeen(txid chainhash.Hash) bool {
	if c.cache.Contains(txid) {
		return true
	}
	c.cache.Add(txid)
	return false
}
