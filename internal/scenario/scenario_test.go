// Package scenario runs end-to-end walkthroughs through the checker,
// attacher, and storage together, the way a single confirmed block
// would: issue, transfer, multichromatic transfer, freeze, unfreeze,
// and a transfer that arrives before its parent.
package scenario

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
	"github.com/yuv-protocol/yuv-node/announcement"
	"github.com/yuv-protocol/yuv-node/attacher"
	"github.com/yuv-protocol/yuv-node/check"
	"github.com/yuv-protocol/yuv-node/errkind"
	"github.com/yuv-protocol/yuv-node/freeze"
	"github.com/yuv-protocol/yuv-node/pixel"
	"github.com/yuv-protocol/yuv-node/storage"
	"github.com/yuv-protocol/yuv-node/yuvtx"
)

func taprootOutScript(t *testing.T, innerKey *btcec.PublicKey, chroma pixel.Chroma,
	luma pixel.Luma) []byte {

	t.Helper()
	xonly := pixel.TweakXOnly(innerKey, chroma, luma)
	spk, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_1).AddData(xonly[:]).Script()
	require.NoError(t, err)
	return spk
}

func issueTx(t *testing.T, issuer *btcec.PrivateKey, fundingHash chainhash.Hash,
	recipient *btcec.PublicKey, chroma pixel.Chroma, luma pixel.Luma) (
	*yuvtx.Tx, map[int][]byte) {

	t.Helper()
	btx := wire.NewMsgTx(2)
	btx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: fundingHash}})
	btx.AddTxOut(&wire.TxOut{
		Value:    1000,
		PkScript: taprootOutScript(t, recipient, chroma, luma),
	})

	tx := &yuvtx.Tx{
		BtcTx:        btx,
		InputProofs:  map[int]pixel.Proof{0: &pixel.EmptyProof{}},
		OutputProofs: map[int]pixel.Proof{0: &pixel.SigProof{Pixel: pixel.Pixel{Chroma: chroma, Luma: luma}, InnerKey: recipient, Taproot: true}},
		TxType:       yuvtx.TypeIssue,
		Announcement: &announcement.Issuance{Chroma_: chroma, TotalSupply: uint64(luma)},
	}
	signIssuer(t, issuer, tx)
	return tx, map[int][]byte{0: {0x51}}
}

func signIssuer(t *testing.T, issuer *btcec.PrivateKey, tx *yuvtx.Tx) {
	t.Helper()
	txid := tx.Txid()
	sig, err := schnorr.Sign(issuer, txid.CloneBytes())
	require.NoError(t, err)
	tx.IssuerSig = sig.Serialize()
}

func transferTx(t *testing.T, parent *yuvtx.Tx, parentOutIdx uint32, chroma pixel.Chroma,
	sender *btcec.PublicKey, total pixel.Luma,
	recipients []*btcec.PublicKey, amounts []pixel.Luma) (*yuvtx.Tx, map[int][]byte) {

	t.Helper()
	require.Equal(t, len(recipients), len(amounts))

	btx := wire.NewMsgTx(2)
	btx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: parent.Txid(), Index: parentOutIdx},
	})

	outputProofs := make(map[int]pixel.Proof, len(recipients))
	for i, recipient := range recipients {
		btx.AddTxOut(&wire.TxOut{
			Value:    1000,
			PkScript: taprootOutScript(t, recipient, chroma, amounts[i]),
		})
		outputProofs[i] = &pixel.SigProof{
			Pixel:    pixel.Pixel{Chroma: chroma, Luma: amounts[i]},
			InnerKey: recipient,
			Taproot:  true,
		}
	}

	tx := &yuvtx.Tx{
		BtcTx: btx,
		InputProofs: map[int]pixel.Proof{
			0: &pixel.SigProof{Pixel: pixel.Pixel{Chroma: chroma, Luma: total}, InnerKey: sender, Taproot: true},
		},
		OutputProofs: outputProofs,
		TxType:       yuvtx.TypeTransfer,
	}

	prevOutScripts := map[int][]byte{0: taprootOutScript(t, sender, chroma, total)}
	return tx, prevOutScripts
}

// freezeAnnouncementTx builds a standalone announcement transaction
// toggling the freeze state of outpoint, signed by issuer.
func freezeAnnouncementTx(t *testing.T, issuer *btcec.PrivateKey, issuerChroma pixel.Chroma,
	outpoint wire.OutPoint, unfreeze bool, fundingHash chainhash.Hash) *yuvtx.Tx {

	t.Helper()
	btx := wire.NewMsgTx(2)
	btx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: fundingHash}})
	btx.AddTxOut(&wire.TxOut{Value: 1000, PkScript: []byte{txscript.OP_RETURN}})

	tx := &yuvtx.Tx{
		BtcTx:        btx,
		InputProofs:  map[int]pixel.Proof{0: &pixel.EmptyProof{}},
		OutputProofs: map[int]pixel.Proof{0: &pixel.EmptyProof{}},
		TxType:       yuvtx.TypeAnnouncement,
		Announcement: &announcement.FreezeToggle{
			Chroma_:      issuerChroma,
			OutpointHash: outpoint.Hash,
			OutpointIdx:  outpoint.Index,
			Unfreeze:     unfreeze,
		},
	}
	signIssuer(t, issuer, tx)
	return tx
}

func newHarness(t *testing.T) (*attacher.Attacher, storage.Storage) {
	t.Helper()
	store := storage.NewMemStore()
	a := attacher.New(attacher.Config{
		Storage: store,
		Checker: check.New(check.Config{PoolSize: 2}),
	})
	return a, store
}

// S1: Issuer mints 10000 USD to Alice.
func TestS1Issue(t *testing.T) {
	t.Parallel()

	issuer, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	alice, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	a, store := newHarness(t)
	ctx := context.Background()
	chroma := pixel.ChromaFromPubKey(issuer.PubKey())

	tx, scripts := issueTx(t, issuer, chainhash.Hash{0x01}, alice.PubKey(), chroma, 10000)
	require.NoError(t, a.Attach(ctx, tx, scripts, 100, 0))

	stored, err := store.GetTx(ctx, wire.OutPoint{Hash: tx.Txid()})
	require.NoError(t, err)
	require.Len(t, stored.OutputProofs, 1)
	require.Equal(t, pixel.Luma(10000), stored.OutputProofs[0].PixelValue().Luma)
	require.Equal(t, chroma, stored.OutputProofs[0].PixelValue().Chroma)
}

// S2: Alice sends 1000 USD to Bob, keeping 9000 as change.
func TestS2Transfer(t *testing.T) {
	t.Parallel()

	issuer, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	alice, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	bob, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	a, store := newHarness(t)
	ctx := context.Background()
	chroma := pixel.ChromaFromPubKey(issuer.PubKey())

	issue, issueScripts := issueTx(t, issuer, chainhash.Hash{0x02}, alice.PubKey(), chroma, 10000)
	require.NoError(t, a.Attach(ctx, issue, issueScripts, 100, 0))

	transfer, transferScripts := transferTx(t, issue, 0, chroma, alice.PubKey(), 10000,
		[]*btcec.PublicKey{bob.PubKey(), alice.PubKey()},
		[]pixel.Luma{1000, 9000})
	require.NoError(t, a.Attach(ctx, transfer, transferScripts, 101, 0))

	stored, err := store.GetTx(ctx, wire.OutPoint{Hash: transfer.Txid()})
	require.NoError(t, err)
	require.Equal(t, pixel.Luma(1000), stored.OutputProofs[0].PixelValue().Luma)
	require.Equal(t, pixel.Luma(9000), stored.OutputProofs[1].PixelValue().Luma)
}

// S3: Alice sends 500 USD + 1000 EUR to Bob in one transaction with two
// inputs, one per chroma, and conservation holds independently for
// each.
func TestS3Multichromatic(t *testing.T) {
	t.Parallel()

	usdIssuer, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	eurIssuer, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	alice, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	bob, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	a, store := newHarness(t)
	ctx := context.Background()
	usd := pixel.ChromaFromPubKey(usdIssuer.PubKey())
	eur := pixel.ChromaFromPubKey(eurIssuer.PubKey())

	usdIssue, usdScripts := issueTx(t, usdIssuer, chainhash.Hash{0x03}, alice.PubKey(), usd, 10000)
	require.NoError(t, a.Attach(ctx, usdIssue, usdScripts, 100, 0))
	eurIssue, eurScripts := issueTx(t, eurIssuer, chainhash.Hash{0x04}, alice.PubKey(), eur, 5000)
	require.NoError(t, a.Attach(ctx, eurIssue, eurScripts, 100, 1))

	btx := wire.NewMsgTx(2)
	btx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: usdIssue.Txid(), Index: 0}})
	btx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: eurIssue.Txid(), Index: 0}})
	btx.AddTxOut(&wire.TxOut{Value: 1000, PkScript: taprootOutScript(t, bob.PubKey(), usd, 500)})
	btx.AddTxOut(&wire.TxOut{Value: 1000, PkScript: taprootOutScript(t, alice.PubKey(), usd, 9500)})
	btx.AddTxOut(&wire.TxOut{Value: 1000, PkScript: taprootOutScript(t, bob.PubKey(), eur, 1000)})
	btx.AddTxOut(&wire.TxOut{Value: 1000, PkScript: taprootOutScript(t, alice.PubKey(), eur, 4000)})

	tx := &yuvtx.Tx{
		BtcTx: btx,
		InputProofs: map[int]pixel.Proof{
			0: &pixel.SigProof{Pixel: pixel.Pixel{Chroma: usd, Luma: 10000}, InnerKey: alice.PubKey(), Taproot: true},
			1: &pixel.SigProof{Pixel: pixel.Pixel{Chroma: eur, Luma: 5000}, InnerKey: alice.PubKey(), Taproot: true},
		},
		OutputProofs: map[int]pixel.Proof{
			0: &pixel.SigProof{Pixel: pixel.Pixel{Chroma: usd, Luma: 500}, InnerKey: bob.PubKey(), Taproot: true},
			1: &pixel.SigProof{Pixel: pixel.Pixel{Chroma: usd, Luma: 9500}, InnerKey: alice.PubKey(), Taproot: true},
			2: &pixel.SigProof{Pixel: pixel.Pixel{Chroma: eur, Luma: 1000}, InnerKey: bob.PubKey(), Taproot: true},
			3: &pixel.SigProof{Pixel: pixel.Pixel{Chroma: eur, Luma: 4000}, InnerKey: alice.PubKey(), Taproot: true},
		},
		TxType: yuvtx.TypeTransfer,
	}
	prevOutScripts := map[int][]byte{
		0: taprootOutScript(t, alice.PubKey(), usd, 10000),
		1: taprootOutScript(t, alice.PubKey(), eur, 5000),
	}

	require.NoError(t, a.Attach(ctx, tx, prevOutScripts, 101, 0))

	stored, err := store.GetTx(ctx, wire.OutPoint{Hash: tx.Txid()})
	require.NoError(t, err)
	require.Equal(t, pixel.Luma(500), stored.OutputProofs[0].PixelValue().Luma)
	require.Equal(t, pixel.Luma(1000), stored.OutputProofs[2].PixelValue().Luma)
}

// S4 and S5: freezing an outpoint rejects a subsequent spend; unfreezing
// it permits the spend again.
func TestS4AndS5FreezeThenUnfreeze(t *testing.T) {
	t.Parallel()

	issuer, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	alice, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	bob, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	a, store := newHarness(t)
	ctx := context.Background()
	chroma := pixel.ChromaFromPubKey(issuer.PubKey())

	issue, issueScripts := issueTx(t, issuer, chainhash.Hash{0x05}, alice.PubKey(), chroma, 10000)
	require.NoError(t, a.Attach(ctx, issue, issueScripts, 100, 0))
	target := wire.OutPoint{Hash: issue.Txid(), Index: 0}

	freezeTx := freezeAnnouncementTx(t, issuer, chroma, target, false, chainhash.Hash{0x06})
	require.NoError(t, a.Attach(ctx, freezeTx, nil, 101, 0))

	rec, err := store.GetFreeze(ctx, target)
	require.NoError(t, err)
	require.False(t, freeze.IsSpendable(rec, 102))

	transfer, transferScripts := transferTx(t, issue, 0, chroma, alice.PubKey(), 10000,
		[]*btcec.PublicKey{bob.PubKey()}, []pixel.Luma{10000})
	err = a.Attach(ctx, transfer, transferScripts, 102, 0)
	require.Error(t, err)
	var kindErr *errkind.Error
	require.ErrorAs(t, err, &kindErr)
	require.Equal(t, errkind.Frozen, kindErr.Kind)

	unfreezeTx := freezeAnnouncementTx(t, issuer, chroma, target, true, chainhash.Hash{0x07})
	require.NoError(t, a.Attach(ctx, unfreezeTx, nil, 103, 0))

	require.NoError(t, a.Attach(ctx, transfer, transferScripts, 104, 0))
	_, err = store.GetTx(ctx, wire.OutPoint{Hash: transfer.Txid()})
	require.NoError(t, err)
}

// S6: a transfer arrives before its parent is known; it's held in
// awaiting_parents until the parent attaches, which cascades the child
// to attachment too.
func TestS6MissingParent(t *testing.T) {
	t.Parallel()

	issuer, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	alice, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	bob, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	a, store := newHarness(t)
	ctx := context.Background()
	chroma := pixel.ChromaFromPubKey(issuer.PubKey())

	issue, issueScripts := issueTx(t, issuer, chainhash.Hash{0x08}, alice.PubKey(), chroma, 10000)
	transfer, transferScripts := transferTx(t, issue, 0, chroma, alice.PubKey(), 10000,
		[]*btcec.PublicKey{bob.PubKey()}, []pixel.Luma{10000})

	require.NoError(t, a.Attach(ctx, transfer, transferScripts, 101, 0))
	require.Equal(t, 1, a.PendingCount())

	_, err = store.GetTx(ctx, wire.OutPoint{Hash: transfer.Txid()})
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, a.Attach(ctx, issue, issueScripts, 100, 0))
	require.Equal(t, 0, a.PendingCount())

	_, err = store.GetTx(ctx, wire.OutPoint{Hash: transfer.Txid()})
	require.NoError(t, err)
}
