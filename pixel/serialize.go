package pixel

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
)

// EncodeProof serializes a proof to its wire representation: a one-byte
// type tag followed by the variant's fields. This is the format the P2P
// Tx side-channel extension and storage both use.
func EncodeProof(p Proof) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(p.Type()))

	switch v := p.(type) {
	case *EmptyProof:
		// No body.

	case *SigProof:
		writePixel(&buf, v.Pixel)
		writeKey(&buf, v.InnerKey)
		writeBool(&buf, v.Taproot)

	case *MultisigProof:
		writePixel(&buf, v.Pixel)
		buf.WriteByte(byte(len(v.InnerKeys)))
		for _, k := range v.InnerKeys {
			writeKey(&buf, k)
		}
		buf.WriteByte(v.Threshold)
		writeBool(&buf, v.Taproot)

	case *LightningProof:
		writePixel(&buf, v.Pixel)
		writeKey(&buf, v.InnerKey)
		buf.WriteByte(byte(v.Kind))
		writeBytes(&buf, v.ScriptLeaf)
		writeBool(&buf, v.Taproot)

	case *BulletproofProof:
		buf.Write(v.Chroma[:])
		writeKey(&buf, v.InnerKey)
		buf.Write(v.Commitment[:])
		writeBytes(&buf, v.RangeProof)
		writeBool(&buf, v.Taproot)

	default:
		return nil, newVerifyError(ErrUnsupportedProofVariant,
			"cannot encode proof of type %T", p)
	}

	return buf.Bytes(), nil
}

// DecodeProof parses the wire representation written by EncodeProof.
func DecodeProof(data []byte) (Proof, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("pixel: empty proof bytes")
	}

	r := bytes.NewReader(data[1:])
	switch ProofType(data[0]) {
	case ProofTypeEmpty:
		return &EmptyProof{}, nil

	case ProofTypeSig:
		pix, err := readPixel(r)
		if err != nil {
			return nil, err
		}
		key, err := readKey(r)
		if err != nil {
			return nil, err
		}
		taproot, err := readBool(r)
		if err != nil {
			return nil, err
		}
		return &SigProof{Pixel: pix, InnerKey: key, Taproot: taproot}, nil

	case ProofTypeMultisig:
		pix, err := readPixel(r)
		if err != nil {
			return nil, err
		}
		nKeys, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		keys := make([]*btcec.PublicKey, nKeys)
		for i := range keys {
			keys[i], err = readKey(r)
			if err != nil {
				return nil, err
			}
		}
		threshold, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		taproot, err := readBool(r)
		if err != nil {
			return nil, err
		}
		return &MultisigProof{
			Pixel: pix, InnerKeys: keys, Threshold: threshold,
			Taproot: taproot,
		}, nil

	case ProofTypeLightning:
		pix, err := readPixel(r)
		if err != nil {
			return nil, err
		}
		key, err := readKey(r)
		if err != nil {
			return nil, err
		}
		kindByte, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		leaf, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		taproot, err := readBool(r)
		if err != nil {
			return nil, err
		}
		return &LightningProof{
			Pixel: pix, InnerKey: key,
			Kind:       LightningScriptKind(kindByte),
			ScriptLeaf: leaf, Taproot: taproot,
		}, nil

	case ProofTypeBulletproof:
		var chroma Chroma
		if _, err := r.Read(chroma[:]); err != nil {
			return nil, err
		}
		key, err := readKey(r)
		if err != nil {
			return nil, err
		}
		var commitment Commitment
		if _, err := r.Read(commitment[:]); err != nil {
			return nil, err
		}
		rangeProof, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		taproot, err := readBool(r)
		if err != nil {
			return nil, err
		}
		return &BulletproofProof{
			Chroma: chroma, InnerKey: key, Commitment: commitment,
			RangeProof: rangeProof, Taproot: taproot,
		}, nil

	default:
		return nil, newVerifyError(ErrUnsupportedProofVariant,
			"unknown proof type tag 0x%02x", data[0])
	}
}

func writePixel(buf *bytes.Buffer, p Pixel) {
	buf.Write(p.Chroma[:])
	var l [LumaSize]byte
	l = p.Luma.Bytes()
	buf.Write(l[:])
}

func readPixel(r *bytes.Reader) (Pixel, error) {
	var c Chroma
	if _, err := r.Read(c[:]); err != nil {
		return Pixel{}, err
	}
	var l [LumaSize]byte
	if _, err := r.Read(l[:]); err != nil {
		return Pixel{}, err
	}
	luma, err := LumaFromBytes(l[:])
	if err != nil {
		return Pixel{}, err
	}
	return Pixel{Chroma: c, Luma: luma}, nil
}

func writeKey(buf *bytes.Buffer, key *btcec.PublicKey) {
	if key == nil {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(1)
	buf.Write(key.SerializeCompressed())
}

func readKey(r *bytes.Reader) (*btcec.PublicKey, error) {
	present, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	var raw [33]byte
	if _, err := r.Read(raw[:]); err != nil {
		return nil, err
	}
	return btcec.ParsePubKey(raw[:])
}

func writeBool(buf *bytes.Buffer, b bool) {
	if b {
		buf.WriteByte(1)
		return
	}
	buf.WriteByte(0)
}

func readBool(r *bytes.Reader) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	var lenBytes [4]byte
	binary.LittleEndian.PutUint32(lenBytes[:], uint32(len(b)))
	buf.Write(lenBytes[:])
	buf.Write(b)
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	var lenBytes [4]byte
	if _, err := r.Read(lenBytes[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBytes[:])
	out := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
