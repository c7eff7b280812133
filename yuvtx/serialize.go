package yuvtx

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/wire"
	"github.com/yuv-protocol/yuv-node/announcement"
	"github.com/yuv-protocol/yuv-node/pixel"
)

// Serialize encodes a Tx to the wire format carried by the P2P Tx
// side-channel extension and by storage: the raw Bitcoin transaction,
// the tx type, the announcement payload (if any), and the proof maps.
func (tx *Tx) Serialize() ([]byte, error) {
	var buf bytes.Buffer

	var btxBuf bytes.Buffer
	if err := tx.BtcTx.Serialize(&btxBuf); err != nil {
		return nil, fmt.Errorf("yuvtx: serializing btc tx: %w", err)
	}
	writeU32Bytes(&buf, btxBuf.Bytes())

	buf.WriteByte(byte(tx.TxType))

	if tx.Announcement != nil {
		writeU32Bytes(&buf, announcement.Encode(tx.Announcement))
	} else {
		writeU32Bytes(&buf, nil)
	}
	writeU32Bytes(&buf, tx.IssuerSig)

	if err := writeProofMap(&buf, tx.InputProofs); err != nil {
		return nil, err
	}
	if err := writeProofMap(&buf, tx.OutputProofs); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Deserialize decodes a Tx from the format Serialize produces.
func Deserialize(data []byte) (*Tx, error) {
	r := bytes.NewReader(data)

	btxBytes, err := readU32Bytes(r)
	if err != nil {
		return nil, fmt.Errorf("yuvtx: reading btc tx bytes: %w", err)
	}
	btx := wire.NewMsgTx(2)
	if err := btx.Deserialize(bytes.NewReader(btxBytes)); err != nil {
		return nil, fmt.Errorf("yuvtx: parsing btc tx: %w", err)
	}

	txTypeByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	annBytes, err := readU32Bytes(r)
	if err != nil {
		return nil, err
	}

	var ann announcement.Announcement
	if len(annBytes) > 0 {
		ann, err = announcement.Parse(annBytes)
		if err != nil {
			return nil, fmt.Errorf("yuvtx: parsing announcement: %w", err)
		}
	}

	issuerSig, err := readU32Bytes(r)
	if err != nil {
		return nil, err
	}

	inputProofs, err := readProofMap(r)
	if err != nil {
		return nil, fmt.Errorf("yuvtx: reading input proofs: %w", err)
	}
	outputProofs, err := readProofMap(r)
	if err != nil {
		return nil, fmt.Errorf("yuvtx: reading output proofs: %w", err)
	}

	return &Tx{
		BtcTx:        btx,
		InputProofs:  inputProofs,
		OutputProofs: outputProofs,
		TxType:       Type(txTypeByte),
		Announcement: ann,
		IssuerSig:    issuerSig,
	}, nil
}

func writeProofMap(buf *bytes.Buffer, proofs map[int]pixel.Proof) error {
	var countBytes [4]byte
	binary.LittleEndian.PutUint32(countBytes[:], uint32(len(proofs)))
	buf.Write(countBytes[:])

	for idx, p := range proofs {
		var idxBytes [4]byte
		binary.LittleEndian.PutUint32(idxBytes[:], uint32(idx))
		buf.Write(idxBytes[:])

		encoded, err := pixel.EncodeProof(p)
		if err != nil {
			return err
		}
		writeU32Bytes(buf, encoded)
	}
	return nil
}

func readProofMap(r *bytes.Reader) (map[int]pixel.Proof, error) {
	var countBytes [4]byte
	if _, err := r.Read(countBytes[:]); err != nil {
		return nil, err
	}
	count := binary.LittleEndian.Uint32(countBytes[:])

	out := make(map[int]pixel.Proof, count)
	for i := uint32(0); i < count; i++ {
		var idxBytes [4]byte
		if _, err := r.Read(idxBytes[:]); err != nil {
			return nil, err
		}
		idx := int(binary.LittleEndian.Uint32(idxBytes[:]))

		encoded, err := readU32Bytes(r)
		if err != nil {
			return nil, err
		}
		p, err := pixel.DecodeProof(encoded)
		if err != nil {
			return nil, err
		}
		out[idx] = p
	}
	return out, nil
}

func writeU32Bytes(buf *bytes.Buffer, b []byte) {
	var lenBytes [4]byte
	binary.LittleEndian.PutUint32(lenBytes[:], uint32(len(b)))
	buf.Write(lenBytes[:])
	buf.Write(b)
}

func readU32Bytes(r *bytes.Reader) ([]byte, error) {
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
