package indexer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
	"github.com/yuv-protocol/yuv-node/announcement"
	"github.com/yuv-protocol/yuv-node/attacher"
	"github.com/yuv-protocol/yuv-node/check"
	"github.com/yuv-protocol/yuv-node/eventbus"
	"github.com/yuv-protocol/yuv-node/pixel"
	"github.com/yuv-protocol/yuv-node/storage"
	"github.com/yuv-protocol/yuv-node/yuvtx"
)

type fakeBridge struct {
	blocks map[int32]*wire.MsgBlock
	best   int32
}

func (f *fakeBridge) BestHeight(context.Context) (int32, error) { return f.best, nil }

func (f *fakeBridge) GetBlockHash(_ context.Context, height int32) (*chainhash.Hash, error) {
	b, ok := f.blocks[height]
	if !ok {
		return nil, fmt.Errorf("no block at height %d", height)
	}
	h := b.BlockHash()
	return &h, nil
}

func (f *fakeBridge) GetBlock(_ context.Context, hash *chainhash.Hash) (*wire.MsgBlock, error) {
	for _, b := range f.blocks {
		if b.BlockHash() == *hash {
			return b, nil
		}
	}
	return nil, fmt.Errorf("block not found")
}

func (f *fakeBridge) GetTransaction(context.Context, *chainhash.Hash) (*wire.MsgTx, *chainhash.Hash, error) {
	return nil, nil, fmt.Errorf("unimplemented")
}

func (f *fakeBridge) EstimateSmartFee(context.Context, int32) (float64, error) { return 1.0, nil }

func (f *fakeBridge) SendRawTransaction(context.Context, *wire.MsgTx) (*chainhash.Hash, error) {
	return nil, fmt.Errorf("unimplemented")
}

func taprootOutScript(t *testing.T, innerKey *btcec.PublicKey, chroma pixel.Chroma,
	luma pixel.Luma) []byte {

	t.Helper()
	xonly := pixel.TweakXOnly(innerKey, chroma, luma)
	spk, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_1).AddData(xonly[:]).Script()
	require.NoError(t, err)
	return spk
}

func buildIssueTx(t *testing.T, issuer *btcec.PrivateKey, innerKey *btcec.PublicKey,
	luma pixel.Luma) (*yuvtx.Tx, map[int][]byte) {

	t.Helper()
	chroma := pixel.ChromaFromPubKey(issuer.PubKey())

	btx := wire.NewMsgTx(2)
	btx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{0xaa}, Index: 0},
	})
	btx.AddTxOut(&wire.TxOut{
		Value:    1000,
		PkScript: taprootOutScript(t, innerKey, chroma, luma),
	})

	tx := &yuvtx.Tx{
		BtcTx:       btx,
		InputProofs: map[int]pixel.Proof{0: &pixel.EmptyProof{}},
		OutputProofs: map[int]pixel.Proof{
			0: &pixel.SigProof{Pixel: pixel.Pixel{Chroma: chroma, Luma: luma}, InnerKey: innerKey, Taproot: true},
		},
		TxType:       yuvtx.TypeIssue,
		Announcement: &announcement.Issuance{Chroma_: chroma, TotalSupply: uint64(luma)},
	}
	txid := tx.Txid()
	sig, err := schnorr.Sign(issuer, txid.CloneBytes())
	require.NoError(t, err)
	tx.IssuerSig = sig.Serialize()

	return tx, map[int][]byte{0: {0x51}}
}

func announcementTx(t *testing.T, ann announcement.Announcement) *wire.MsgTx {
	t.Helper()
	btx := wire.NewMsgTx(2)
	btx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{0xbb}, Index: 0}})

	payload := announcement.Encode(ann)
	script, err := txscript.NewScriptBuilder().AddOp(txscript.OP_RETURN).AddData(payload).Script()
	require.NoError(t, err)
	btx.AddTxOut(&wire.TxOut{Value: 0, PkScript: script})
	return btx
}

func TestIndexerScanOnceAttachesAndEmits(t *testing.T) {
	t.Parallel()

	issuer, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	alice, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	issueTx, prevOutScripts := buildIssueTx(t, issuer, alice.PubKey(), 10000)

	block0 := &wire.MsgBlock{
		Header:       wire.BlockHeader{Timestamp: time.Unix(0, 0)},
		Transactions: []*wire.MsgTx{issueTx.BtcTx},
	}

	freezeAnn := &announcement.FreezeToggle{
		Chroma_:      pixel.ChromaFromPubKey(issuer.PubKey()),
		OutpointHash: issueTx.Txid(),
		OutpointIdx:  0,
	}
	block1 := &wire.MsgBlock{
		Header:       wire.BlockHeader{Timestamp: time.Unix(1, 0)},
		Transactions: []*wire.MsgTx{announcementTx(t, freezeAnn)},
	}

	bridge := &fakeBridge{
		blocks: map[int32]*wire.MsgBlock{0: block0, 1: block1},
		best:   1,
	}

	store := storage.NewMemStore()
	att := attacher.New(attacher.Config{
		Storage: store,
		Checker: check.New(check.Config{PoolSize: 1}),
	})
	buses := eventbus.NewBuses()
	attachedRecv := buses.TxAttached.Subscribe(4)
	annRecv := buses.AnnouncementSeen.Subscribe(4)

	loader := NewBlockLoader(bridge, 2, 100, 10, 50)
	idx := New(Config{
		Bridge:   bridge,
		Storage:  store,
		Attacher: att,
		Buses:    buses,
		Loader:   loader,
	})
	idx.TrackForConfirmation(issueTx, prevOutScripts)

	ctx := context.Background()
	require.NoError(t, idx.scanOnce(ctx))

	require.Equal(t, 0, idx.PendingConfirmations())

	select {
	case ev := <-attachedRecv.C():
		require.Equal(t, issueTx.Txid(), ev.Tx.Txid())
		require.Equal(t, uint32(0), ev.Height)
	default:
		t.Fatal("expected a TxAttached event")
	}

	select {
	case ev := <-annRecv.C():
		require.Equal(t, announcement.KindFreeze, ev.Announcement.Kind())
		require.Equal(t, uint32(1), ev.Height)
	default:
		t.Fatal("expected an AnnouncementSeen event")
	}

	height, _, have, err := idx.cursor.Load(ctx)
	require.NoError(t, err)
	require.True(t, have)
	require.Equal(t, int32(1), height)
}
