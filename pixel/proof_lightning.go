package pixel

import "github.com/btcsuite/btcd/btcec/v2"

// LightningScriptKind distinguishes the two Lightning Channel script
// shapes a proof may reconstruct.
type LightningScriptKind uint8

const (
	// LightningScriptHTLC is a hashed-timelock-contract output.
	LightningScriptHTLC LightningScriptKind = iota

	// LightningScriptCommitment is a channel commitment output.
	LightningScriptCommitment
)

// LightningProof proves the pixel is carried by a Lightning HTLC or
// commitment output; it carries enough of the script's parameters for a
// verifier to rebuild the taproot/witness script and confirm the inner
// key it was built from.
type LightningProof struct {
	Pixel       Pixel
	InnerKey    *btcec.PublicKey
	Kind        LightningScriptKind
	ScriptLeaf  []byte
	Taproot     bool
}

// Type implements Proof.
func (p *LightningProof) Type() ProofType { return ProofTypeLightning }

// PixelValue implements Proof.
func (p *LightningProof) PixelValue() Pixel { return p.Pixel }

// IsHidden implements Proof.
func (p *LightningProof) IsHidden() bool { return false }
