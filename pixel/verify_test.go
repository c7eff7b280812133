package pixel

import (
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

func sha256Sum(msg []byte) [32]byte {
	return sha256.Sum256(msg)
}

func schnorrSign(priv *btcec.PrivateKey, hash []byte) ([]byte, error) {
	sig, err := schnorr.Sign(priv, hash)
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}

func TestVerifyProofSigTaproot(t *testing.T) {
	t.Parallel()

	priv := randKey(t)
	chroma := Chroma{4, 5, 6}
	luma := Luma(500)

	xonly := TweakXOnly(priv.PubKey(), chroma, luma)
	spk, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_1).
		AddData(xonly[:]).
		Script()
	require.NoError(t, err)

	proof := &SigProof{
		Pixel:    Pixel{Chroma: chroma, Luma: luma},
		InnerKey: priv.PubKey(),
		Taproot:  true,
	}

	v := NewVerifier(nil)
	require.NoError(t, v.VerifyProof(proof, spk))
}

func TestVerifyProofSigWrongPixelFails(t *testing.T) {
	t.Parallel()

	priv := randKey(t)
	chroma := Chroma{4, 5, 6}

	xonly := TweakXOnly(priv.PubKey(), chroma, Luma(500))
	spk, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_1).
		AddData(xonly[:]).
		Script()
	require.NoError(t, err)

	proof := &SigProof{
		Pixel:    Pixel{Chroma: chroma, Luma: 501},
		InnerKey: priv.PubKey(),
		Taproot:  true,
	}

	v := NewVerifier(nil)
	err = v.VerifyProof(proof, spk)
	require.Error(t, err, "proof should not verify:\n%s", spew.Sdump(proof))

	var verr *VerifyError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, ErrInvalidCommitment, verr.Kind)
}

func TestVerifyProofMultisig(t *testing.T) {
	t.Parallel()

	priv1 := randKey(t)
	priv2 := randKey(t)
	chroma := Chroma{7, 7, 7}
	luma := Luma(10)

	mp := &MultisigProof{
		Pixel:     Pixel{Chroma: chroma, Luma: luma},
		InnerKeys: []*btcec.PublicKey{priv1.PubKey(), priv2.PubKey()},
		Threshold: 2,
		Taproot:   true,
	}

	agg, err := mp.AggregateKey()
	require.NoError(t, err)

	xonly := TweakXOnly(agg, chroma, luma)
	spk, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_1).
		AddData(xonly[:]).
		Script()
	require.NoError(t, err)

	v := NewVerifier(nil)
	require.NoError(t, v.VerifyProof(mp, spk))
}

func TestVerifyProofBulletproof(t *testing.T) {
	t.Parallel()

	priv := randKey(t)
	chroma := Chroma{8, 8, 8}
	var blind [32]byte
	blind[0] = 1

	commitment := PedersenCommit(Luma(777), blind)

	xonly := TweakHidden(priv.PubKey(), chroma, commitment)
	var xonlyArr [32]byte
	copy(xonlyArr[:], xonly.SerializeCompressed()[1:])
	spk, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_1).
		AddData(xonlyArr[:]).
		Script()
	require.NoError(t, err)

	bp := &BulletproofProof{
		Chroma:     chroma,
		InnerKey:   priv.PubKey(),
		Commitment: commitment,
		RangeProof: []byte("stub-range-proof"),
		Taproot:    true,
	}

	alwaysValid := RangeVerifierFunc(func(c Commitment, proof []byte) (bool, error) {
		return true, nil
	})
	v := NewVerifier(alwaysValid)
	require.NoError(t, v.VerifyProof(bp, spk))
}

func TestVerifyAnnouncementSignatureRoundTrip(t *testing.T) {
	t.Parallel()

	priv := randKey(t)
	chroma := ChromaFromPubKey(priv.PubKey())
	msg := []byte("issuance announcement payload")

	hashed := sha256Sum(msg)
	sig, err := schnorrSign(priv, hashed[:])
	require.NoError(t, err)

	ok, err := VerifyAnnouncementSignature(chroma, hashed[:], sig)
	require.NoError(t, err)
	require.True(t, ok)
}
