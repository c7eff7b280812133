package indexer

import (
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/yuv-protocol/yuv-node/yuvtx"
)

// defaultMaxConfirmationTime bounds how long a transaction may sit
// awaiting confirmation before confirmationIndexer gives up on it, when
// the node's config doesn't set MaxConfirmationTime explicitly.
const defaultMaxConfirmationTime = time.Hour

// pendingConfirmation is a transaction the controller has already seen
// off-chain (via P2P or RPC submission) and is waiting to see confirmed
// on-chain before handing it to the attacher.
type pendingConfirmation struct {
	tx             *yuvtx.Tx
	prevOutScripts map[int][]byte
	trackedAt      time.Time
}

// confirmedTx is a pending transaction the confirmation sub-indexer
// found in a scanned block.
type confirmedTx struct {
	tx             *yuvtx.Tx
	prevOutScripts map[int][]byte
	txIndex        uint32
}

// confirmationIndexer watches confirmed blocks for transactions the
// node already knows the off-chain pixel-proof payload of, matching
// them against the Bitcoin txid the block actually confirms, and
// evicts any that sit unconfirmed past maxConfirmationTime.
type confirmationIndexer struct {
	mu                  sync.Mutex
	pending             map[chainhash.Hash]*pendingConfirmation
	maxConfirmationTime time.Duration
	clock               clock.Clock
}

func newConfirmationIndexer(maxConfirmationTime time.Duration, clk clock.Clock) *confirmationIndexer {
	if maxConfirmationTime == 0 {
		maxConfirmationTime = defaultMaxConfirmationTime
	}
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	return &confirmationIndexer{
		pending:             make(map[chainhash.Hash]*pendingConfirmation),
		maxConfirmationTime: maxConfirmationTime,
		clock:               clk,
	}
}

// track registers tx as awaiting confirmation.
func (c *confirmationIndexer) track(tx *yuvtx.Tx, prevOutScripts map[int][]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[tx.Txid()] = &pendingConfirmation{
		tx: tx, prevOutScripts: prevOutScripts, trackedAt: c.clock.Now(),
	}
}

// untrack removes a transaction from the awaiting-confirmation set.
// Reorg handling in scanOnce does not call it.
func (c *confirmationIndexer) untrack(txid chainhash.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, txid)
}

// scanBlock returns every pending transaction found confirmed in
// block, removing each from the pending set.
func (c *confirmationIndexer) scanBlock(block *wire.MsgBlock) []confirmedTx {
	c.mu.Lock()
	defer c.mu.Unlock()

	var found []confirmedTx
	for i, btx := range block.Transactions {
		txid := btx.TxHash()
		p, ok := c.pending[txid]
		if !ok {
			continue
		}
		found = append(found, confirmedTx{
			tx:             p.tx,
			prevOutScripts: p.prevOutScripts,
			txIndex:        uint32(i),
		})
		delete(c.pending, txid)
	}
	return found
}

// pendingCount reports how many transactions are awaiting confirmation.
func (c *confirmationIndexer) pendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// expireStale evicts every pending transaction that has waited longer
// than maxConfirmationTime, along with any still-pending transaction
// that spends one of those evicted transactions — their parent is
// never confirming either, so they can't either.
func (c *confirmationIndexer) expireStale() []chainhash.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	expired := make(map[chainhash.Hash]bool)
	for txid, p := range c.pending {
		if now.Sub(p.trackedAt) > c.maxConfirmationTime {
			expired[txid] = true
		}
	}

	for changed := true; changed; {
		changed = false
		for txid, p := range c.pending {
			if expired[txid] {
				continue
			}
			for _, op := range p.tx.ParentOutpoints() {
				if expired[op.Hash] {
					expired[txid] = true
					changed = true
					break
				}
			}
		}
	}

	txids := make([]chainhash.Hash, 0, len(expired))
	for txid := range expired {
		txids = append(txids, txid)
		delete(c.pending, txid)
	}
	return txids
}
