package pixel

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
)

// TweakHash computes H = SHA256(chroma || luma) for a plaintext pixel, the
// scalar that binds the pixel into the tweaked key. The result is reduced
// mod the curve order by the caller via ModNScalar.SetByteSlice.
func TweakHash(chroma Chroma, luma Luma) [32]byte {
	lumaBytes := luma.Bytes()
	return hashChromaAnd(chroma, lumaBytes[:])
}

// TweakHashHidden computes H = SHA256(chroma || commitment) for a
// bulletproof-hidden pixel, replacing the plaintext luma bytes with the
// Pedersen commitment per the commitment scheme's hidden-amount
// discipline.
func TweakHashHidden(chroma Chroma, commitment Commitment) [32]byte {
	return hashChromaAnd(chroma, commitment[:])
}

func hashChromaAnd(chroma Chroma, tail []byte) [32]byte {
	h := sha256.New()
	h.Write(chroma[:])
	h.Write(tail)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// tweakScalar reduces a 32-byte hash to a valid secp256k1 scalar.
func tweakScalar(h [32]byte) btcec.ModNScalar {
	var s btcec.ModNScalar
	s.SetByteSlice(h[:])
	return s
}

// Tweak computes P_tweak = inner_key + H(chroma||luma)*G, the key a
// Bitcoin output must carry to spend the given pixel. innerKey is the
// plain secp256k1 point supplied per-output before any tweaking.
func Tweak(innerKey *btcec.PublicKey, chroma Chroma, luma Luma) *btcec.PublicKey {
	return tweakWithHash(innerKey, TweakHash(chroma, luma))
}

// TweakHidden computes P_tweak for a bulletproof-hidden pixel, using the
// Pedersen commitment in place of the plaintext luma.
func TweakHidden(innerKey *btcec.PublicKey, chroma Chroma, commitment Commitment) *btcec.PublicKey {
	return tweakWithHash(innerKey, TweakHashHidden(chroma, commitment))
}

func tweakWithHash(innerKey *btcec.PublicKey, h [32]byte) *btcec.PublicKey {
	scalar := tweakScalar(h)

	var tweakPoint btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&scalar, &tweakPoint)

	var innerPoint btcec.JacobianPoint
	innerKey.AsJacobian(&innerPoint)

	var sumPoint btcec.JacobianPoint
	btcec.AddNonConst(&innerPoint, &tweakPoint, &sumPoint)
	sumPoint.ToAffine()

	return btcec.NewPublicKey(&sumPoint.X, &sumPoint.Y)
}

// TweakXOnly returns the 32-byte x-only serialization of the tweaked key,
// the discipline Taproot outputs use.
func TweakXOnly(innerKey *btcec.PublicKey, chroma Chroma, luma Luma) [32]byte {
	tweaked := Tweak(innerKey, chroma, luma)
	var out [32]byte
	copy(out[:], tweaked.SerializeCompressed()[1:])
	return out
}

// TweakCompressed returns the 33-byte compressed serialization of the
// tweaked key, the discipline P2WPKH and legacy multisig/HTLC outputs
// use.
func TweakCompressed(innerKey *btcec.PublicKey, chroma Chroma, luma Luma) [33]byte {
	tweaked := Tweak(innerKey, chroma, luma)
	var out [33]byte
	copy(out[:], tweaked.SerializeCompressed())
	return out
}
