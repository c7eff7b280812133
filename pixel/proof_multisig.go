package pixel

import "github.com/btcsuite/btcd/btcec/v2"

// MultisigProof proves the pixel is carried by an M-of-N key, reachable
// by a threshold of the listed inner keys.
type MultisigProof struct {
	Pixel     Pixel
	InnerKeys []*btcec.PublicKey
	Threshold uint8
	Taproot   bool
}

// Type implements Proof.
func (p *MultisigProof) Type() ProofType { return ProofTypeMultisig }

// PixelValue implements Proof.
func (p *MultisigProof) PixelValue() Pixel { return p.Pixel }

// IsHidden implements Proof.
func (p *MultisigProof) IsHidden() bool { return false }

// AggregateKey combines the N inner keys into the single effective inner
// key the pixel tweak is applied to, by point addition. This mirrors a
// non-interactive key-sum aggregation; it is independent of Threshold,
// which only bounds how many of the N signers must cooperate to spend,
// a Bitcoin-script concern outside commitment binding.
func (p *MultisigProof) AggregateKey() (*btcec.PublicKey, error) {
	if len(p.InnerKeys) == 0 {
		return nil, newVerifyError(ErrInvalidCommitment,
			"multisig proof carries no inner keys")
	}

	var sum btcec.JacobianPoint
	p.InnerKeys[0].AsJacobian(&sum)

	for _, key := range p.InnerKeys[1:] {
		var next btcec.JacobianPoint
		key.AsJacobian(&next)

		var combined btcec.JacobianPoint
		btcec.AddNonConst(&sum, &next, &combined)
		sum = combined
	}

	sum.ToAffine()
	return btcec.NewPublicKey(&sum.X, &sum.Y), nil
}
