// Package p2p defines the wire-level message contract the controller
// needs from a Bitcoin P2P connection: transaction inventory
// announcements, the matching data request, and the YUV side-channel
// extension that rides alongside a plain Bitcoin tx to carry its
// pixel-proof payload. No transport (handshake, address discovery,
// connection management) lives here — only the messages.
package p2p

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/yuv-protocol/yuv-node/yuvtx"
)

// InvVect announces one transaction a peer has available.
type InvVect struct {
	Txid chainhash.Hash
}

// GetData requests the full payload for a previously announced
// transaction.
type GetData struct {
	Txid chainhash.Hash
}

// TxMessage carries a full YUV transaction: the underlying Bitcoin
// transaction plus the pixel-proof payload and the scriptPubKeys its
// inputs spend, since a peer receiving an unconfirmed transaction has
// no other way to learn those. This is the side-channel extension to
// plain Bitcoin tx relay the node needs, since stock Bitcoin P2P has no
// concept of the proof payload.
type TxMessage struct {
	Tx             *yuvtx.Tx
	PrevOutScripts map[int][]byte
}

// Peer is the outbound half of a P2P connection the controller drives:
// announce, request, and send full transactions. Connection lifecycle
// and message decoding are a transport concern, not modeled here.
type Peer interface {
	// ID uniquely identifies this peer for dedup and scoring.
	ID() string

	SendInv(inv InvVect) error
	SendGetData(req GetData) error
	SendTx(msg TxMessage) error
}

// Inbound is the set of callbacks a transport invokes as messages
// arrive from a Peer, wired to the controller.
type Inbound interface {
	OnInv(from Peer, inv InvVect)
	OnGetData(from Peer, req GetData)
	OnTx(from Peer, msg TxMessage)
}
