package pixel

// ProofType tags the proof variant carried by a pixel proof. New variants
// are added by extending this enum and adding a case to the type switch
// in Verifier.VerifyProof and to the codec in serialize.go.
type ProofType uint8

const (
	// ProofTypeSig is single-key ownership: pixel plus one inner key.
	ProofTypeSig ProofType = iota

	// ProofTypeMultisig is pixel plus M-of-N inner keys.
	ProofTypeMultisig

	// ProofTypeLightning is pixel plus HTLC/commitment script
	// parameters.
	ProofTypeLightning

	// ProofTypeBulletproof hides the luma behind a Pedersen commitment
	// and range proof.
	ProofTypeBulletproof

	// ProofTypeEmpty marks an output that carries Bitcoin sats but no
	// token.
	ProofTypeEmpty
)

func (t ProofType) String() string {
	switch t {
	case ProofTypeSig:
		return "Sig"
	case ProofTypeMultisig:
		return "Multisig"
	case ProofTypeLightning:
		return "Lightning"
	case ProofTypeBulletproof:
		return "Bulletproof"
	case ProofTypeEmpty:
		return "EmptyPixel"
	default:
		return "Unknown"
	}
}

// Proof is the tagged-union contract every pixel proof variant satisfies.
// The variant set is enumerated in ProofType.String, in
// Verifier.VerifyProof, and in EncodeProof/DecodeProof; other callers go
// through this interface.
type Proof interface {
	// Type identifies the concrete proof variant.
	Type() ProofType

	// PixelValue returns the chroma/luma the proof claims, or the zero
	// Pixel for ProofTypeEmpty.
	PixelValue() Pixel

	// IsHidden reports whether the luma is hidden behind a Pedersen
	// commitment rather than carried in PixelValue.
	IsHidden() bool
}
