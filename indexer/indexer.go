// Package indexer scans the Bitcoin chain for YUV-relevant activity:
// confirmations of transactions the node already knows the off-chain
// proof payload of, and OP_RETURN protocol announcements, handing both
// to the attacher and event bus while tolerating shallow reorgs.
package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/yuv-protocol/yuv-node/attacher"
	"github.com/yuv-protocol/yuv-node/chainbridge"
	"github.com/yuv-protocol/yuv-node/errkind"
	"github.com/yuv-protocol/yuv-node/eventbus"
	"github.com/yuv-protocol/yuv-node/storage"
	"github.com/yuv-protocol/yuv-node/yuvtx"
)

// Config configures an Indexer.
type Config struct {
	Bridge   chainbridge.Bridge
	Storage  storage.CursorStore
	Attacher *attacher.Attacher
	Buses    *eventbus.Buses
	Loader   *BlockLoader

	// Clock drives the poll loop; defaults to the real wall clock.
	Clock clock.Clock

	// PollInterval is how often to check for new blocks once caught
	// up with the chain tip.
	PollInterval time.Duration

	// IndexStepBack is how many blocks behind the cursor the in-memory
	// reorg trail covers, both day-to-day and when re-seeded from the
	// chain at startup.
	IndexStepBack int32

	// MaxConfirmationTime bounds how long a transaction tracked via
	// TrackForConfirmation may sit unconfirmed before it's evicted and
	// rejected as Expired.
	MaxConfirmationTime time.Duration
}

// Indexer scans confirmed blocks and feeds the attacher and event bus.
type Indexer struct {
	cfg     Config
	cursor  *cursor
	confIdx *confirmationIndexer
}

// New builds an Indexer from cfg.
func New(cfg Config) *Indexer {
	if cfg.Clock == nil {
		cfg.Clock = clock.NewDefaultClock()
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 15 * time.Second
	}
	if cfg.MaxConfirmationTime == 0 {
		cfg.MaxConfirmationTime = defaultMaxConfirmationTime
	}
	return &Indexer{
		cfg:     cfg,
		cursor:  newCursor(cfg.Storage, cfg.IndexStepBack),
		confIdx: newConfirmationIndexer(cfg.MaxConfirmationTime, cfg.Clock),
	}
}

// TrackForConfirmation registers tx as awaiting on-chain confirmation;
// once its txid appears in a scanned block the indexer hands it to the
// attacher with the block position the chain actually gave it.
func (idx *Indexer) TrackForConfirmation(tx *yuvtx.Tx, prevOutScripts map[int][]byte) {
	idx.confIdx.track(tx, prevOutScripts)
}

// PendingConfirmations reports how many tracked transactions have not
// yet been seen confirmed.
func (idx *Indexer) PendingConfirmations() int {
	return idx.confIdx.pendingCount()
}

// Run scans the chain in a loop until ctx is done.
func (idx *Indexer) Run(ctx context.Context) error {
	for {
		if err := idx.scanOnce(ctx); err != nil {
			log.Errorf("scan failed: %v", err)
		}
		idx.expireStaleConfirmations()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-idx.cfg.Clock.TickAfter(idx.cfg.PollInterval):
		}
	}
}

func (idx *Indexer) scanOnce(ctx context.Context) error {
	best, err := idx.cfg.Bridge.BestHeight(ctx)
	if err != nil {
		return fmt.Errorf("best height: %w", err)
	}

	lastHeight, lastHash, have, err := idx.cursor.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cursor: %w", err)
	}

	start := int32(0)
	if have {
		if err := idx.cursor.ensureSeeded(ctx, idx.cfg.Bridge, lastHeight, lastHash); err != nil {
			return fmt.Errorf("seed reorg trail: %w", err)
		}

		curHash, err := idx.cfg.Bridge.GetBlockHash(ctx, lastHeight)
		if err != nil {
			return fmt.Errorf("get block hash at %d: %w", lastHeight, err)
		}
		if *curHash != lastHash {
			ancestor, ok := idx.cursor.FindAncestor(func(h int32, hash chainhash.Hash) bool {
				chash, err := idx.cfg.Bridge.GetBlockHash(ctx, h)
				return err == nil && *chash == hash
			})
			if !ok {
				return fmt.Errorf("reorg deeper than local recovery window")
			}
			idx.cfg.Buses.Reorg.Publish(eventbus.Reorg{
				InvalidatedHeight: lastHeight,
				NewTipHeight:      best,
			})
			start = ancestor + 1
		} else {
			start = lastHeight + 1
		}
	}

	if start > best {
		return nil
	}

	blocks, err := idx.cfg.Loader.LoadRange(ctx, start, best)
	if err != nil {
		return fmt.Errorf("load blocks [%d,%d]: %w", start, best, err)
	}

	for i, block := range blocks {
		height := start + int32(i)
		idx.processBlock(ctx, block, height)

		if err := idx.cursor.Advance(ctx, height, block.BlockHash()); err != nil {
			return fmt.Errorf("advance cursor to %d: %w", height, err)
		}
	}
	return nil
}

// expireStaleConfirmations evicts every transaction that has awaited
// confirmation longer than cfg.MaxConfirmationTime, rejecting each (and
// any pending transaction that spent one) as Expired.
func (idx *Indexer) expireStaleConfirmations() {
	for _, txid := range idx.confIdx.expireStale() {
		log.Warnf("expiring tx %v: unconfirmed after %s", txid, idx.cfg.MaxConfirmationTime)
		idx.cfg.Buses.TxRejected.Publish(eventbus.TxRejected{
			Txid: txid,
			Err: errkind.New(errkind.Expired,
				fmt.Sprintf("unconfirmed after %s", idx.cfg.MaxConfirmationTime)),
		})
	}
}

func (idx *Indexer) processBlock(ctx context.Context, block *wire.MsgBlock, height int32) {
	for _, fa := range scanBlockAnnouncements(block) {
		idx.cfg.Buses.AnnouncementSeen.Publish(eventbus.AnnouncementSeen{
			Announcement: fa.announcement,
			Height:       uint32(height),
		})
	}

	for _, c := range idx.confIdx.scanBlock(block) {
		err := idx.cfg.Attacher.Attach(ctx, c.tx, c.prevOutScripts, uint32(height), c.txIndex)
		if err == nil {
			idx.cfg.Buses.TxAttached.Publish(eventbus.TxAttached{Tx: c.tx, Height: uint32(height)})
			continue
		}

		if e, ok := err.(*errkind.Error); ok {
			idx.cfg.Buses.TxRejected.Publish(eventbus.TxRejected{Txid: c.tx.Txid(), Err: e})
			continue
		}
		log.Errorf("attach of %v failed: %v", c.tx.Txid(), err)
	}
}
