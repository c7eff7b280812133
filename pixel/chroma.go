package pixel

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// ChromaSize is the length in bytes of a serialized Chroma.
const ChromaSize = 32

// Chroma is the 32-byte x-only public key of a token issuer. Two chromas
// are equal iff their byte representations are equal; a chroma has no
// notion of identity beyond the bytes it carries.
type Chroma [ChromaSize]byte

// ChromaFromPubKey derives a Chroma from the x-only serialization of a
// secp256k1 public key, the same encoding Taproot uses for its internal
// key.
func ChromaFromPubKey(pub *btcec.PublicKey) Chroma {
	var c Chroma
	copy(c[:], schnorr.SerializePubKey(pub))
	return c
}

// String returns the lower-case hex encoding of the chroma.
func (c Chroma) String() string {
	return hex.EncodeToString(c[:])
}

// IsZero reports whether the chroma is the all-zero value, used to mark
// "no chroma" in contexts such as EmptyPixel proofs.
func (c Chroma) IsZero() bool {
	return c == Chroma{}
}

// ChromaFromString parses a hex-encoded chroma.
func ChromaFromString(s string) (Chroma, error) {
	var c Chroma
	b, err := hex.DecodeString(s)
	if err != nil {
		return c, fmt.Errorf("invalid chroma hex: %w", err)
	}
	if len(b) != ChromaSize {
		return c, fmt.Errorf("invalid chroma length: got %d want %d",
			len(b), ChromaSize)
	}
	copy(c[:], b)
	return c, nil
}
