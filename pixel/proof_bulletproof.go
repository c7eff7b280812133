package pixel

import "github.com/btcsuite/btcd/btcec/v2"

// BulletproofProof hides the luma behind a Pedersen commitment and a
// Bulletproofs++ range proof bounding the committed value to [0, 2^64).
type BulletproofProof struct {
	Chroma     Chroma
	InnerKey   *btcec.PublicKey
	Commitment Commitment
	RangeProof []byte
	Taproot    bool
}

// Type implements Proof.
func (p *BulletproofProof) Type() ProofType { return ProofTypeBulletproof }

// PixelValue implements Proof. The Luma field is always zero for a
// hidden pixel; callers must use Commitment and IsHidden instead of
// reading an amount out of PixelValue.
func (p *BulletproofProof) PixelValue() Pixel {
	return Pixel{Chroma: p.Chroma, Luma: 0}
}

// IsHidden implements Proof.
func (p *BulletproofProof) IsHidden() bool { return true }
