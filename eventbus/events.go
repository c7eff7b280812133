package eventbus

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/yuv-protocol/yuv-node/announcement"
	"github.com/yuv-protocol/yuv-node/errkind"
	"github.com/yuv-protocol/yuv-node/freeze"
	"github.com/yuv-protocol/yuv-node/yuvtx"
)

// TxAttached fires once a transaction (and the subgraph it completed)
// has been committed by the attacher.
type TxAttached struct {
	Tx     *yuvtx.Tx
	Height uint32
}

// TxRejected fires when a transaction fails the isolated check or the
// attacher's freeze re-check.
type TxRejected struct {
	Txid chainhash.Hash
	Err  *errkind.Error
}

// AnnouncementSeen fires for every OP_RETURN announcement the indexer's
// announcement sub-indexer parses out of a confirmed block.
type AnnouncementSeen struct {
	Announcement announcement.Announcement
	Height       uint32
}

// FreezeToggled fires whenever the attacher stores a new freeze.Record.
type FreezeToggled struct {
	Record *freeze.Record
}

// Reorg fires when the indexer detects the chain tip no longer builds
// on the cursor's last-known block.
type Reorg struct {
	InvalidatedHeight int32
	NewTipHeight      int32
}

// Buses bundles every typed event bus the node publishes to, so
// components needing more than one can be wired with a single value.
type Buses struct {
	TxAttached       *Bus[TxAttached]
	TxRejected       *Bus[TxRejected]
	AnnouncementSeen *Bus[AnnouncementSeen]
	FreezeToggled    *Bus[FreezeToggled]
	Reorg            *Bus[Reorg]
}

// NewBuses constructs one Bus per event type.
func NewBuses() *Buses {
	return &Buses{
		TxAttached:       New[TxAttached](),
		TxRejected:       New[TxRejected](),
		AnnouncementSeen: New[AnnouncementSeen](),
		FreezeToggled:    New[FreezeToggled](),
		Reorg:            New[Reorg](),
	}
}
