package pixel

// EmptyProof marks an output that carries Bitcoin sats but no token —
// a change or fee carrier. It imposes no commitment-binding or balance
// obligation.
type EmptyProof struct{}

// Type implements Proof.
func (p *EmptyProof) Type() ProofType { return ProofTypeEmpty }

// PixelValue implements Proof.
func (p *EmptyProof) PixelValue() Pixel { return Pixel{} }

// IsHidden implements Proof.
func (p *EmptyProof) IsHidden() bool { return false }
