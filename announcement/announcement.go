// Package announcement implements the bit-exact YUV OP_RETURN
// announcement wire format: a 4-byte magic, a version byte, a kind byte,
// and a kind-specific body carrying issuance, freeze, unfreeze, or
// chroma metadata.
package announcement

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/yuv-protocol/yuv-node/pixel"
)

// Magic is the 4-byte prefix every YUV announcement OP_RETURN begins
// with.
var Magic = [4]byte{'y', 'u', 'v', 0}

// Version is the only wire version this implementation emits and
// accepts.
const Version = 0x01

// Kind tags the announcement body that follows the header.
type Kind uint8

const (
	KindIssuance Kind = 0x00
	KindFreeze   Kind = 0x01
	KindUnfreeze Kind = 0x02
	KindChroma   Kind = 0x03
)

func (k Kind) String() string {
	switch k {
	case KindIssuance:
		return "Issuance"
	case KindFreeze:
		return "Freeze"
	case KindUnfreeze:
		return "Unfreeze"
	case KindChroma:
		return "Chroma"
	default:
		return "Unknown"
	}
}

// ErrNotAnnouncement is returned by Parse when the payload doesn't carry
// the YUV magic; callers must treat this as "silently ignore", never as
// a diagnostic-worthy error, per the wire format's non-goal of flagging
// unrelated OP_RETURNs.
var ErrNotAnnouncement = errors.New("announcement: not a yuv announcement")

// ErrUnsupportedVersion is returned when the magic matches but the
// version byte is one this implementation doesn't understand.
var ErrUnsupportedVersion = errors.New("announcement: unsupported version")

// Announcement is the tagged union of the four announcement bodies.
type Announcement interface {
	Kind() Kind
	Chroma() pixel.Chroma
	encodeBody() []byte
}

// Issuance announces the creation of total_supply units of chroma.
type Issuance struct {
	Chroma_     pixel.Chroma
	TotalSupply uint64
}

func (a *Issuance) Kind() Kind             { return KindIssuance }
func (a *Issuance) Chroma() pixel.Chroma   { return a.Chroma_ }
func (a *Issuance) encodeBody() []byte {
	buf := make([]byte, 0, pixel.ChromaSize+8)
	buf = append(buf, a.Chroma_[:]...)
	var supply [8]byte
	binary.LittleEndian.PutUint64(supply[:], a.TotalSupply)
	return append(buf, supply[:]...)
}

// FreezeToggle announces a freeze or unfreeze of the given outpoint by
// its issuer chroma; the Kind on the envelope (not on this struct)
// distinguishes the two directions.
type FreezeToggle struct {
	Chroma_      pixel.Chroma
	OutpointHash chainhash.Hash
	OutpointIdx  uint32
	Unfreeze     bool
}

func (a *FreezeToggle) Kind() Kind {
	if a.Unfreeze {
		return KindUnfreeze
	}
	return KindFreeze
}
func (a *FreezeToggle) Chroma() pixel.Chroma { return a.Chroma_ }
func (a *FreezeToggle) encodeBody() []byte {
	buf := make([]byte, 0, pixel.ChromaSize+chainhash.HashSize+4)
	buf = append(buf, a.Chroma_[:]...)
	buf = append(buf, a.OutpointHash[:]...)
	var vout [4]byte
	binary.LittleEndian.PutUint32(vout[:], a.OutpointIdx)
	return append(buf, vout[:]...)
}

// ChromaMeta names a chroma with a human-readable label.
type ChromaMeta struct {
	Chroma_ pixel.Chroma
	Name    string
}

func (a *ChromaMeta) Kind() Kind           { return KindChroma }
func (a *ChromaMeta) Chroma() pixel.Chroma { return a.Chroma_ }
func (a *ChromaMeta) encodeBody() []byte {
	nameBytes := []byte(a.Name)
	buf := make([]byte, 0, pixel.ChromaSize+1+len(nameBytes))
	buf = append(buf, a.Chroma_[:]...)
	buf = append(buf, byte(len(nameBytes)))
	return append(buf, nameBytes...)
}

// Encode serializes an announcement to its bit-exact OP_RETURN payload,
// magic and version included.
func Encode(a Announcement) []byte {
	out := make([]byte, 0, 6+64)
	out = append(out, Magic[:]...)
	out = append(out, Version, byte(a.Kind()))
	out = append(out, a.encodeBody()...)
	return out
}

// Parse decodes an OP_RETURN payload into an Announcement. Returns
// ErrNotAnnouncement when the magic doesn't match — the caller must
// ignore the output silently, not surface a diagnostic. A magic match
// with malformed body bytes is a real parse error.
func Parse(data []byte) (Announcement, error) {
	if len(data) < 6 || !bytes.Equal(data[:4], Magic[:]) {
		return nil, ErrNotAnnouncement
	}
	if data[4] != Version {
		return nil, ErrUnsupportedVersion
	}

	kind := Kind(data[5])
	body := data[6:]

	switch kind {
	case KindIssuance:
		return parseIssuance(body)
	case KindFreeze:
		return parseFreezeToggle(body, false)
	case KindUnfreeze:
		return parseFreezeToggle(body, true)
	case KindChroma:
		return parseChromaMeta(body)
	default:
		return nil, fmt.Errorf("announcement: unknown kind 0x%02x", byte(kind))
	}
}

func parseIssuance(body []byte) (*Issuance, error) {
	const want = pixel.ChromaSize + 8
	if len(body) != want {
		return nil, fmt.Errorf("announcement: issuance body length %d want %d",
			len(body), want)
	}

	var c pixel.Chroma
	copy(c[:], body[:pixel.ChromaSize])
	supply := binary.LittleEndian.Uint64(body[pixel.ChromaSize:])

	return &Issuance{Chroma_: c, TotalSupply: supply}, nil
}

func parseFreezeToggle(body []byte, unfreeze bool) (*FreezeToggle, error) {
	const want = pixel.ChromaSize + chainhash.HashSize + 4
	if len(body) != want {
		return nil, fmt.Errorf("announcement: freeze body length %d want %d",
			len(body), want)
	}

	var c pixel.Chroma
	copy(c[:], body[:pixel.ChromaSize])

	var hash chainhash.Hash
	copy(hash[:], body[pixel.ChromaSize:pixel.ChromaSize+chainhash.HashSize])

	vout := binary.LittleEndian.Uint32(body[pixel.ChromaSize+chainhash.HashSize:])

	return &FreezeToggle{
		Chroma_:      c,
		OutpointHash: hash,
		OutpointIdx:  vout,
		Unfreeze:     unfreeze,
	}, nil
}

func parseChromaMeta(body []byte) (*ChromaMeta, error) {
	if len(body) < pixel.ChromaSize+1 {
		return nil, fmt.Errorf("announcement: chroma body too short: %d",
			len(body))
	}

	var c pixel.Chroma
	copy(c[:], body[:pixel.ChromaSize])

	nameLen := int(body[pixel.ChromaSize])
	rest := body[pixel.ChromaSize+1:]
	if len(rest) != nameLen {
		return nil, fmt.Errorf("announcement: chroma name length %d want %d",
			len(rest), nameLen)
	}

	return &ChromaMeta{Chroma_: c, Name: string(rest)}, nil
}
