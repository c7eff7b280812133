package pixel

import "github.com/btcsuite/btcd/btcec/v2"

// SigProof proves single-key ownership: the pixel plus the inner key the
// tweak was applied to.
type SigProof struct {
	Pixel    Pixel
	InnerKey *btcec.PublicKey

	// Taproot selects the x-only tweak discipline over the compressed
	// one; it is fixed per output, not inferred.
	Taproot bool
}

// Type implements Proof.
func (p *SigProof) Type() ProofType { return ProofTypeSig }

// PixelValue implements Proof.
func (p *SigProof) PixelValue() Pixel { return p.Pixel }

// IsHidden implements Proof.
func (p *SigProof) IsHidden() bool { return false }
