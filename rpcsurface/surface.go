// Package rpcsurface models the node's headline JSON-RPC methods as a
// plain Go interface, with no transport (HTTP, net/rpc, gRPC) bound to
// it. A concrete server wires this interface to whatever transport it
// chooses; none of that lives here, per the JSON-RPC surface being an
// external collaborator rather than a component of the validation and
// attachment engine.
package rpcsurface

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/yuv-protocol/yuv-node/errkind"
	"github.com/yuv-protocol/yuv-node/pixel"
	"github.com/yuv-protocol/yuv-node/yuvtx"
)

// ChromaInfo summarizes a chroma's known supply and freeze state, the
// shape a "get chroma info" RPC call returns.
type ChromaInfo struct {
	Chroma       pixel.Chroma
	TotalSupply  uint64
	FrozenCount  int
	Name         string
}

// TxStatus reports whether a submitted transaction has been attached,
// is still awaiting confirmation or ancestors, or was rejected.
type TxStatus struct {
	Txid      chainhash.Hash
	Attached  bool
	Pending   bool
	Rejection *errkind.Error
}

// Surface is the node's headline RPC method set.
type Surface interface {
	// SubmitTx accepts a fully-formed YUV transaction for relay and
	// eventual attachment, returning its isolated-check outcome
	// immediately and its attachment outcome asynchronously via the
	// event bus.
	SubmitTx(ctx context.Context, tx *yuvtx.Tx, prevOutScripts map[int][]byte) (*TxStatus, error)

	// GetTxStatus reports the current attachment status of a
	// previously submitted transaction.
	GetTxStatus(ctx context.Context, txid chainhash.Hash) (*TxStatus, error)

	// GetChromaInfo reports what the node knows about chroma.
	GetChromaInfo(ctx context.Context, chroma pixel.Chroma) (*ChromaInfo, error)

	// GetBalance reports the total plaintext luma of chroma a given
	// scriptPubKey's outputs currently hold, across attached
	// transactions.
	GetBalance(ctx context.Context, chroma pixel.Chroma, pkScript []byte) (pixel.Luma, error)
}
