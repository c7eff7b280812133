package pixel

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
)

// Verifier checks pixel proofs against the Bitcoin scriptPubKey they
// claim to bind, and gives bulletproof-hidden proofs a range verifier.
// It holds no mutable state and is safe for concurrent use, matching the
// isolated checker's stateless contract.
type Verifier struct {
	RangeVerifier RangeVerifier
}

// NewVerifier builds a Verifier using the given range-proof backend. A
// nil RangeVerifier causes bulletproof proofs to fail closed with
// ErrUnsupportedProofVariant rather than silently passing.
func NewVerifier(rv RangeVerifier) *Verifier {
	return &Verifier{RangeVerifier: rv}
}

// VerifyProof checks that proof's tweaked key equals the key the given
// scriptPubKey actually commits to, and — for bulletproof proofs — that
// the range proof verifies against the commitment.
func (v *Verifier) VerifyProof(proof Proof, scriptPubKey []byte) error {
	switch p := proof.(type) {
	case *EmptyProof:
		return nil

	case *SigProof:
		return v.verifyKeyBinding(p.InnerKey, p.Pixel.Chroma, p.Pixel.Luma,
			p.Taproot, scriptPubKey)

	case *MultisigProof:
		aggKey, err := p.AggregateKey()
		if err != nil {
			return err
		}
		return v.verifyKeyBinding(aggKey, p.Pixel.Chroma, p.Pixel.Luma,
			p.Taproot, scriptPubKey)

	case *LightningProof:
		return v.verifyKeyBinding(p.InnerKey, p.Pixel.Chroma, p.Pixel.Luma,
			p.Taproot, scriptPubKey)

	case *BulletproofProof:
		if err := v.verifyHiddenBinding(p, scriptPubKey); err != nil {
			return err
		}
		return v.verifyRange(p)

	default:
		return newVerifyError(ErrUnsupportedProofVariant,
			"unrecognized proof type %T", proof)
	}
}

func (v *Verifier) verifyKeyBinding(
	innerKey *btcec.PublicKey, chroma Chroma, luma Luma, taproot bool,
	scriptPubKey []byte) error {

	if innerKey == nil {
		return newVerifyError(ErrInvalidCommitment,
			"proof carries no inner key")
	}

	derived, err := deriveScript(innerKey, chroma, luma, taproot)
	if err != nil {
		return err
	}

	if !bytes.Equal(derived, scriptPubKey) {
		return newVerifyError(ErrInvalidCommitment,
			"tweaked key does not match scriptPubKey")
	}
	return nil
}

func (v *Verifier) verifyHiddenBinding(p *BulletproofProof, scriptPubKey []byte) error {
	if p.InnerKey == nil {
		return newVerifyError(ErrInvalidCommitment,
			"bulletproof proof carries no inner key")
	}

	tweaked := TweakHidden(p.InnerKey, p.Chroma, p.Commitment)

	var derived []byte
	var err error
	if p.Taproot {
		var xonly [32]byte
		copy(xonly[:], tweaked.SerializeCompressed()[1:])
		derived, err = taprootScript(xonly)
	} else {
		derived, err = p2wpkhScript(tweaked)
	}
	if err != nil {
		return err
	}

	if !bytes.Equal(derived, scriptPubKey) {
		return newVerifyError(ErrInvalidCommitment,
			"tweaked key does not match scriptPubKey")
	}
	return nil
}

func (v *Verifier) verifyRange(p *BulletproofProof) error {
	if v.RangeVerifier == nil {
		return newVerifyError(ErrUnsupportedProofVariant,
			"no range verifier configured")
	}

	ok, err := v.RangeVerifier.VerifyRange(p.Commitment, p.RangeProof)
	if err != nil {
		return newVerifyError(ErrBulletproofInvalid, "%v", err)
	}
	if !ok {
		return newVerifyError(ErrBulletproofInvalid,
			"range proof failed verification")
	}
	return nil
}

func deriveScript(innerKey *btcec.PublicKey, chroma Chroma, luma Luma,
	taproot bool) ([]byte, error) {

	if taproot {
		xonly := TweakXOnly(innerKey, chroma, luma)
		return taprootScript(xonly)
	}

	tweaked := Tweak(innerKey, chroma, luma)
	return p2wpkhScript(tweaked)
}

func taprootScript(xonly [32]byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_1).
		AddData(xonly[:]).
		Script()
}

func p2wpkhScript(key *btcec.PublicKey) ([]byte, error) {
	hash160 := btcutil.Hash160(key.SerializeCompressed())
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(hash160).
		Script()
}

// VerifyAnnouncementSignature checks that sig is a valid BIP-340 Schnorr
// signature over msg under the chroma's x-only key, the primitive the
// checker's announcement rules build on (freeze/unfreeze/issuance
// signatures must come from the chroma's own key).
func VerifyAnnouncementSignature(chroma Chroma, msg []byte, sig []byte) (bool, error) {
	pubKey, err := schnorr.ParsePubKey(chroma[:])
	if err != nil {
		return false, newVerifyError(ErrInvalidSignature,
			"invalid chroma key: %v", err)
	}

	parsedSig, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false, newVerifyError(ErrInvalidSignature,
			"invalid signature encoding: %v", err)
	}

	return parsedSig.Verify(msg, pubKey), nil
}
