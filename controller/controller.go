// Package controller wires the P2P and RPC surfaces to the isolated
// checker and the indexer: it runs an unconfirmed transaction's
// isolated check the moment a peer relays it, tracks it with the
// indexer so the attacher picks it up once confirmed, and shares
// inventory with other peers on a fixed interval rather than per
// message, the way Bitcoin Core's own inv-batching avoids flooding
// peers with one INV per transaction.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/yuv-protocol/yuv-node/check"
	"github.com/yuv-protocol/yuv-node/errkind"
	"github.com/yuv-protocol/yuv-node/eventbus"
	"github.com/yuv-protocol/yuv-node/indexer"
	"github.com/yuv-protocol/yuv-node/p2p"
	"github.com/yuv-protocol/yuv-node/storage"
)

// Config configures a Controller.
type Config struct {
	Checker *check.Checker
	Indexer *indexer.Indexer
	Storage storage.TxStore
	Buses   *eventbus.Buses

	// InvSharingInterval is how often queued inventory is flushed to
	// peers, rather than per-message.
	InvSharingInterval time.Duration

	// MaxInvSize caps how many txids are queued between flushes; the
	// oldest are dropped once it's exceeded and are not queued again.
	MaxInvSize int

	// SeenCacheSize bounds the recently-seen txid dedup cache.
	SeenCacheSize uint
}

// Controller glues the P2P and checker/attacher/indexer layers
// together.
type Controller struct {
	cfg  Config
	seen *seenCache

	mu    sync.Mutex
	peers map[string]p2p.Peer

	invMu sync.Mutex
	inv   []p2p.InvVect
}

// New builds a Controller from cfg.
func New(cfg Config) *Controller {
	if cfg.InvSharingInterval == 0 {
		cfg.InvSharingInterval = 2 * time.Second
	}
	if cfg.MaxInvSize == 0 {
		cfg.MaxInvSize = 5000
	}
	if cfg.SeenCacheSize == 0 {
		cfg.SeenCacheSize = 50000
	}
	return &Controller{
		cfg:   cfg,
		seen:  newSeenCache(cfg.SeenCacheSize),
		peers: make(map[string]p2p.Peer),
	}
}

// AddPeer registers a connected peer.
func (c *Controller) AddPeer(peer p2p.Peer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.peers[peer.ID()] = peer
}

// RemovePeer deregisters a disconnected peer.
func (c *Controller) RemovePeer(peer p2p.Peer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.peers, peer.ID())
}

// OnInv handles an inventory announcement: if the txid isn't already
// known, request the full transaction from the announcing peer.
func (c *Controller) OnInv(from p2p.Peer, inv p2p.InvVect) {
	if c.seen.markSeen(inv.Txid) {
		return
	}
	if err := from.SendGetData(p2p.GetData{Txid: inv.Txid}); err != nil {
		log.Debugf("getdata request to %s failed: %v", from.ID(), err)
	}
}

// OnGetData serves a previously attached transaction to a requesting
// peer.
func (c *Controller) OnGetData(from p2p.Peer, req p2p.GetData) {
	ctx := context.Background()
	tx, err := c.cfg.Storage.GetTx(ctx, wire.OutPoint{Hash: req.Txid})
	if err != nil {
		log.Debugf("getdata for unknown tx %v from %s", req.Txid, from.ID())
		return
	}
	// PrevOutScripts is left for the receiving peer to re-derive from
	// its own chain view; the controller doesn't keep a redundant copy
	// of data Bitcoin itself already carries.
	if err := from.SendTx(p2p.TxMessage{Tx: tx}); err != nil {
		log.Debugf("sending tx %v to %s failed: %v", req.Txid, from.ID(), err)
	}
}

// OnTx handles a full transaction relayed by a peer: runs the isolated
// check, tracks it with the indexer for attachment once confirmed, and
// queues it for inventory sharing with other peers.
func (c *Controller) OnTx(from p2p.Peer, msg p2p.TxMessage) {
	txid := msg.Tx.Txid()
	if c.seen.markSeen(txid) {
		return
	}

	ctx := context.Background()
	outcome, err := c.cfg.Checker.Check(ctx, msg.Tx, msg.PrevOutScripts)
	if err != nil {
		log.Errorf("check of tx %v from %s failed: %v", txid, from.ID(), err)
		return
	}
	if !outcome.OK() {
		log.Debugf("rejecting tx %v from %s: %v", txid, from.ID(), outcome.Err)
		if c.cfg.Buses != nil {
			c.cfg.Buses.TxRejected.Publish(eventbus.TxRejected{Txid: txid, Err: outcome.Err})
		}
		return
	}

	c.cfg.Indexer.TrackForConfirmation(msg.Tx, msg.PrevOutScripts)
	c.queueInv(p2p.InvVect{Txid: txid})
}

func (c *Controller) queueInv(inv p2p.InvVect) {
	c.invMu.Lock()
	defer c.invMu.Unlock()

	c.inv = append(c.inv, inv)
	if len(c.inv) > c.cfg.MaxInvSize {
		c.inv = c.inv[len(c.inv)-c.cfg.MaxInvSize:]
	}
}

// RunInvSharing flushes queued inventory to every connected peer on
// InvSharingInterval, until ctx is done.
func (c *Controller) RunInvSharing(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.InvSharingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.flushInv()
		}
	}
}

func (c *Controller) flushInv() {
	c.invMu.Lock()
	batch := c.inv
	c.inv = nil
	c.invMu.Unlock()

	if len(batch) == 0 {
		return
	}

	c.mu.Lock()
	peers := make([]p2p.Peer, 0, len(c.peers))
	for _, p := range c.peers {
		peers = append(peers, p)
	}
	c.mu.Unlock()

	for _, peer := range peers {
		for _, inv := range batch {
			if err := peer.SendInv(inv); err != nil {
				log.Debugf("inv flush to %s failed: %v", peer.ID(), err)
				break
			}
		}
	}
}
