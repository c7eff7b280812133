package attacher

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
	"github.com/yuv-protocol/yuv-node/yuvtx"
)

func txWithHash(b byte) *yuvtx.Tx {
	msg := &wire.MsgTx{Version: 2}
	msg.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{b}}})
	return &yuvtx.Tx{BtcTx: msg}
}

func TestGraphImmediateReady(t *testing.T) {
	t.Parallel()

	g := newGraph()
	tx := txWithHash(1)
	g.add(tx, nil, 10, 0, nil)

	ready := g.drainReady()
	require.Len(t, ready, 1)
	require.Equal(t, tx.Txid(), ready[0].tx.Txid())
	require.Equal(t, 0, g.pendingCount())
}

func TestGraphResolveUnblocksDependent(t *testing.T) {
	t.Parallel()

	g := newGraph()
	child := txWithHash(2)
	parentOp := wire.OutPoint{Hash: chainhash.Hash{9}, Index: 0}

	g.add(child, nil, 10, 0, []wire.OutPoint{parentOp})
	require.Equal(t, 1, g.pendingCount())
	require.Empty(t, g.drainReady())

	g.resolve(parentOp)

	ready := g.drainReady()
	require.Len(t, ready, 1)
	require.Equal(t, child.Txid(), ready[0].tx.Txid())
	require.Equal(t, 0, g.pendingCount())
}

func TestGraphResolveRequiresAllParents(t *testing.T) {
	t.Parallel()

	g := newGraph()
	child := txWithHash(3)
	opA := wire.OutPoint{Hash: chainhash.Hash{1}, Index: 0}
	opB := wire.OutPoint{Hash: chainhash.Hash{2}, Index: 0}

	g.add(child, nil, 10, 0, []wire.OutPoint{opA, opB})

	g.resolve(opA)
	require.Empty(t, g.drainReady(), "still missing opB")

	g.resolve(opB)
	require.Len(t, g.drainReady(), 1)
}

func TestGraphMissingOutpoints(t *testing.T) {
	t.Parallel()

	g := newGraph()
	op := wire.OutPoint{Hash: chainhash.Hash{5}, Index: 1}
	g.add(txWithHash(4), nil, 10, 0, []wire.OutPoint{op})

	missing := g.missingOutpoints()
	require.Equal(t, []wire.OutPoint{op}, missing)
}
