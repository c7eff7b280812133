package storage

import (
	"context"
	"sync"

	"github.com/btcsuite/btcd/wire"
	"github.com/yuv-protocol/yuv-node/freeze"
	"github.com/yuv-protocol/yuv-node/yuvtx"
)

// MemStore is an in-memory Storage implementation. It is concurrency
// safe and intended for tests and single-process development nodes,
// the way the wallet package's db.Stores wraps a concrete tapdb backend
// for the same role in that codebase.
type MemStore struct {
	mu sync.RWMutex

	txs     map[wire.OutPoint]*yuvtx.Tx
	freezes map[wire.OutPoint]*freeze.Record

	cursorHeight int32
	cursorHash   [32]byte
	haveCursor   bool
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		txs:     make(map[wire.OutPoint]*yuvtx.Tx),
		freezes: make(map[wire.OutPoint]*freeze.Record),
	}
}

func (m *MemStore) GetTx(_ context.Context, key wire.OutPoint) (*yuvtx.Tx, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, ok := m.txs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return tx, nil
}

func (m *MemStore) PutTxsAtomic(_ context.Context, txs []*yuvtx.Tx) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tx := range txs {
		txid := tx.Txid()
		m.txs[wire.OutPoint{Hash: txid, Index: 0}] = tx
	}
	return nil
}

func (m *MemStore) GetFreeze(_ context.Context, outpoint wire.OutPoint) (*freeze.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.freezes[outpoint]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (m *MemStore) PutFreeze(_ context.Context, rec *freeze.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.freezes[rec.Outpoint] = rec
	return nil
}

func (m *MemStore) IndexerCursorGet(_ context.Context) (int32, [32]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.haveCursor {
		return 0, [32]byte{}, ErrNotFound
	}
	return m.cursorHeight, m.cursorHash, nil
}

func (m *MemStore) IndexerCursorPut(_ context.Context, height int32, hash [32]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cursorHeight = height
	m.cursorHash = hash
	m.haveCursor = true
	return nil
}

var _ Storage = (*MemStore)(nil)
