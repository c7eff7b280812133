// Package chainbridge models the Bitcoin RPC surface the indexer and
// attacher depend on as a plain Go interface, the way the wallet's
// mempool package wraps a concrete HTTP client behind its own
// ChainBridge contract rather than importing a full node's RPC client
// directly.
package chainbridge

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// Bridge is the minimal Bitcoin RPC contract the node needs: block and
// transaction lookups by hash, fee estimation, and broadcast. A
// concrete implementation wraps bitcoind's RPC, mempool.space-style
// REST, or a full node's RPC client; this package ships one,
// MempoolBridge, for mempool.space-style REST.
type Bridge interface {
	// BestHeight returns the chain tip's height.
	BestHeight(ctx context.Context) (int32, error)

	// GetBlockHash returns the hash of the block at height.
	GetBlockHash(ctx context.Context, height int32) (*chainhash.Hash, error)

	// GetBlock returns the full block identified by hash.
	GetBlock(ctx context.Context, hash *chainhash.Hash) (*wire.MsgBlock, error)

	// GetTransaction returns a transaction by its txid, along with the
	// block hash it confirmed in, if any.
	GetTransaction(ctx context.Context, txid *chainhash.Hash) (*wire.MsgTx,
		*chainhash.Hash, error)

	// EstimateSmartFee estimates a feerate, in sat/vB, that confirms
	// within confTarget blocks.
	EstimateSmartFee(ctx context.Context, confTarget int32) (float64, error)

	// SendRawTransaction broadcasts tx to the network.
	SendRawTransaction(ctx context.Context, tx *wire.MsgTx) (*chainhash.Hash, error)
}
