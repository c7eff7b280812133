// Package storage defines the persistence contract shared by the
// attacher and indexer: confirmed transactions, freeze records, and the
// indexer's durable scan cursor. It mirrors the store-interface split the
// wallet's db package keeps over tapdb (one narrow interface per
// concern, a transaction executor underneath) without committing to a
// concrete backend — a Postgres or SQLite implementation satisfies the
// same interfaces the in-memory reference store here does.
package storage

import (
	"context"
	"errors"

	"github.com/btcsuite/btcd/wire"
	"github.com/yuv-protocol/yuv-node/freeze"
	"github.com/yuv-protocol/yuv-node/yuvtx"
)

// ErrNotFound is returned by lookups that find nothing under the given
// key.
var ErrNotFound = errors.New("storage: not found")

// TxStore persists confirmed YUV transactions, keyed by txid.
type TxStore interface {
	// GetTx fetches a previously stored transaction. It returns
	// ErrNotFound if no transaction is stored under txid.
	GetTx(ctx context.Context, txid wire.OutPoint) (*yuvtx.Tx, error)

	// PutTxsAtomic stores every transaction in txs, or none of them,
	// the attacher's subgraph commits depend on this atomicity to
	// avoid leaving a partially-attached DAG on a crash.
	PutTxsAtomic(ctx context.Context, txs []*yuvtx.Tx) error
}

// FreezeStore persists the latest freeze toggle of each outpoint.
type FreezeStore interface {
	// GetFreeze fetches the latest toggle of outpoint. It returns
	// ErrNotFound if the outpoint was never toggled.
	GetFreeze(ctx context.Context, outpoint wire.OutPoint) (*freeze.Record, error)

	// PutFreeze stores rec as the latest toggle of its outpoint. The
	// caller is responsible for having already established that rec
	// is newer than any existing record, via freeze.Record.IsNewer.
	PutFreeze(ctx context.Context, rec *freeze.Record) error
}

// CursorStore persists the indexer's durable scan position, so a
// restart resumes scanning rather than replaying from genesis.
type CursorStore interface {
	// IndexerCursorGet returns the last block height and hash fully
	// processed. It returns ErrNotFound before the first block is
	// processed.
	IndexerCursorGet(ctx context.Context) (height int32, hash [32]byte, err error)

	// IndexerCursorPut advances the durable cursor.
	IndexerCursorPut(ctx context.Context, height int32, hash [32]byte) error
}

// Storage is the full persistence surface the node depends on.
type Storage interface {
	TxStore
	FreezeStore
	CursorStore
}
