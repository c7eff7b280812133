package pixel

import "encoding/binary"

// LumaSize is the length in bytes of a serialized plaintext Luma.
const LumaSize = 8

// Luma is a plaintext token amount. Hidden (bulletproof) amounts are
// represented separately by a Commitment, never by Luma, so a Luma value
// is always directly comparable and summable.
type Luma uint64

// Bytes returns the canonical little-endian encoding of the luma, the
// same encoding fed into the tweak hash.
func (l Luma) Bytes() [LumaSize]byte {
	var b [LumaSize]byte
	binary.LittleEndian.PutUint64(b[:], uint64(l))
	return b
}

// LumaFromBytes decodes a little-endian 8-byte amount.
func LumaFromBytes(b []byte) (Luma, error) {
	if len(b) != LumaSize {
		return 0, errInvalidLumaLength(len(b))
	}
	return Luma(binary.LittleEndian.Uint64(b)), nil
}
