package yuvtx

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
	"github.com/yuv-protocol/yuv-node/pixel"
)

func sampleBtcTx() *wire.MsgTx {
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{1}, Index: 0},
	})
	tx.AddTxOut(&wire.TxOut{Value: 1000, PkScript: []byte{0x51, 0x20}})
	tx.AddTxOut(&wire.TxOut{Value: 2000, PkScript: []byte{0x51, 0x20}})
	return tx
}

func samplePriv(t *testing.T) *btcec.PrivateKey {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return priv
}

func TestTxRoundTripSigProofs(t *testing.T) {
	t.Parallel()

	priv := samplePriv(t)
	chroma := pixel.Chroma{1, 2, 3}

	tx := &Tx{
		BtcTx: sampleBtcTx(),
		InputProofs: map[int]pixel.Proof{
			0: &pixel.SigProof{
				Pixel:    pixel.Pixel{Chroma: chroma, Luma: 10000},
				InnerKey: priv.PubKey(),
				Taproot:  true,
			},
		},
		OutputProofs: map[int]pixel.Proof{
			0: &pixel.SigProof{
				Pixel:    pixel.Pixel{Chroma: chroma, Luma: 1000},
				InnerKey: priv.PubKey(),
				Taproot:  true,
			},
			1: &pixel.EmptyProof{},
		},
		TxType: TypeTransfer,
	}

	data, err := tx.Serialize()
	require.NoError(t, err)

	got, err := Deserialize(data)
	require.NoError(t, err)

	require.Equal(t, tx.Txid(), got.Txid())
	require.Equal(t, tx.TxType, got.TxType)
	require.Len(t, got.InputProofs, 1)
	require.Len(t, got.OutputProofs, 2)

	gotInput := got.InputProofs[0].(*pixel.SigProof)
	require.True(t, gotInput.Pixel.Equal(pixel.Pixel{Chroma: chroma, Luma: 10000}))
	require.True(t, gotInput.InnerKey.IsEqual(priv.PubKey()))
}

func TestValidateIndicesRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	tx := &Tx{
		BtcTx: sampleBtcTx(),
		InputProofs: map[int]pixel.Proof{
			5: &pixel.EmptyProof{},
		},
		OutputProofs: map[int]pixel.Proof{},
	}

	require.Error(t, tx.ValidateIndices())
}

func TestNonZeroOutputProofsDropsZeroLuma(t *testing.T) {
	t.Parallel()

	chroma := pixel.Chroma{7}
	tx := &Tx{
		BtcTx: sampleBtcTx(),
		OutputProofs: map[int]pixel.Proof{
			0: &pixel.SigProof{Pixel: pixel.Pixel{Chroma: chroma, Luma: 0}},
			1: &pixel.SigProof{Pixel: pixel.Pixel{Chroma: chroma, Luma: 5}},
		},
	}

	nonZero := tx.NonZeroOutputProofs()
	require.Len(t, nonZero, 1)
	_, ok := nonZero[1]
	require.True(t, ok)
}
