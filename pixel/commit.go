package pixel

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
)

// Commitment is a 33-byte compressed Pedersen commitment to a hidden
// luma value, value*G + blinding*H.
type Commitment [33]byte

// altGenerator is a second, nothing-up-my-sleeve generator H, derived
// deterministically from G so that nobody knows its discrete log with
// respect to G. It is fixed for the lifetime of the protocol.
var altGenerator = deriveAltGenerator()

func deriveAltGenerator() *btcec.PublicKey {
	seed := sha256.Sum256([]byte("yuv/pedersen/alt-generator"))

	// Try-and-increment until the seed hashes to a valid curve point.
	for i := uint32(0); ; i++ {
		h := sha256.New()
		h.Write(seed[:])
		h.Write([]byte{byte(i), byte(i >> 8), byte(i >> 16), byte(i >> 24)})
		candidate := h.Sum(nil)

		// Prepend the even-Y compressed-point prefix and attempt to
		// parse; most candidates fail and we just try the next i.
		compressed := append([]byte{0x02}, candidate...)
		pub, err := btcec.ParsePubKey(compressed)
		if err == nil {
			return pub
		}
	}
}

// PedersenCommit computes commitment = value*G + blinding*H.
func PedersenCommit(value Luma, blinding [32]byte) Commitment {
	var valueScalar btcec.ModNScalar
	lumaBytes := value.Bytes()
	var padded [32]byte
	copy(padded[24:], lumaBytes[:])
	valueScalar.SetByteSlice(padded[:])

	var blindingScalar btcec.ModNScalar
	blindingScalar.SetByteSlice(blinding[:])

	var valuePoint btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&valueScalar, &valuePoint)

	var altPoint btcec.JacobianPoint
	altGenerator.AsJacobian(&altPoint)
	var blindingPoint btcec.JacobianPoint
	btcec.ScalarMultNonConst(&blindingScalar, &altPoint, &blindingPoint)

	var sum btcec.JacobianPoint
	btcec.AddNonConst(&valuePoint, &blindingPoint, &sum)
	sum.ToAffine()

	pub := btcec.NewPublicKey(&sum.X, &sum.Y)
	var out Commitment
	copy(out[:], pub.SerializeCompressed())
	return out
}

// Add returns the homomorphic sum of two commitments, used to verify
// per-chroma conservation over hidden amounts without revealing either
// value.
func (c Commitment) Add(o Commitment) (Commitment, error) {
	cp, err := btcec.ParsePubKey(c[:])
	if err != nil {
		return Commitment{}, err
	}
	op, err := btcec.ParsePubKey(o[:])
	if err != nil {
		return Commitment{}, err
	}

	var cj, oj, sum btcec.JacobianPoint
	cp.AsJacobian(&cj)
	op.AsJacobian(&oj)
	btcec.AddNonConst(&cj, &oj, &sum)
	sum.ToAffine()

	res := btcec.NewPublicKey(&sum.X, &sum.Y)
	var out Commitment
	copy(out[:], res.SerializeCompressed())
	return out, nil
}

// Equal reports whether two commitments serialize identically.
func (c Commitment) Equal(o Commitment) bool {
	return c == o
}

// RangeVerifier checks that a hidden luma committed to by Commitment lies
// in [0, 2^64), without learning the value. The Bulletproofs++ primitive
// itself is a black box per spec; this interface is its call boundary so
// the checker never depends on a concrete proving system.
type RangeVerifier interface {
	VerifyRange(commitment Commitment, proof []byte) (bool, error)
}

// RangeVerifierFunc adapts a function to a RangeVerifier.
type RangeVerifierFunc func(commitment Commitment, proof []byte) (bool, error)

// VerifyRange implements RangeVerifier.
func (f RangeVerifierFunc) VerifyRange(commitment Commitment, proof []byte) (bool, error) {
	return f(commitment, proof)
}
