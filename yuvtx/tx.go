// Package yuvtx defines the YUV transaction: an unmodified Bitcoin
// transaction plus the off-chain pixel-proofs payload that carries what
// Bitcoin itself does not — the chroma/luma each input and output
// commits to.
package yuvtx

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/yuv-protocol/yuv-node/announcement"
	"github.com/yuv-protocol/yuv-node/pixel"
)

// Type tags the protocol-level purpose of a YUV transaction.
type Type uint8

const (
	// TypeIssue mints new units of the issuer's chroma.
	TypeIssue Type = iota

	// TypeTransfer moves already-issued pixels between outputs.
	TypeTransfer

	// TypeAnnouncement carries an OP_RETURN protocol announcement and
	// no pixel outputs.
	TypeAnnouncement
)

func (t Type) String() string {
	switch t {
	case TypeIssue:
		return "Issue"
	case TypeTransfer:
		return "Transfer"
	case TypeAnnouncement:
		return "Announcement"
	default:
		return "Unknown"
	}
}

// Tx is a Bitcoin transaction plus its pixel-proofs payload.
type Tx struct {
	// BtcTx is the underlying, unmodified Bitcoin transaction.
	BtcTx *wire.MsgTx

	// InputProofs maps input index to the pixel proof for the output
	// being spent.
	InputProofs map[int]pixel.Proof

	// OutputProofs maps output index to the pixel proof for what this
	// output will carry.
	OutputProofs map[int]pixel.Proof

	// TxType is Issue, Transfer, or Announcement.
	TxType Type

	// Announcement holds the parsed OP_RETURN payload. Set for
	// TypeAnnouncement transactions (freeze, unfreeze, chroma-meta, or
	// a standalone issuance notice) and for TypeIssue transactions,
	// where it must be an *announcement.Issuance naming the chroma
	// being minted.
	Announcement announcement.Announcement

	// IssuerSig is a detached BIP-340 signature over the txid, made by
	// the issuer chroma named in Announcement. It is the "issuer signs
	// the transaction" authorization a TypeIssue transaction's balance
	// exemption depends on. TypeAnnouncement transactions carry one too,
	// made by the chroma their announcement names; TypeTransfer
	// transactions leave it nil.
	IssuerSig []byte
}

// Txid returns the underlying Bitcoin transaction's hash, the key every
// DAG node and storage record is indexed by.
func (tx *Tx) Txid() chainhash.Hash {
	return tx.BtcTx.TxHash()
}

// NumInputs returns the number of Bitcoin inputs this transaction
// spends.
func (tx *Tx) NumInputs() int {
	return len(tx.BtcTx.TxIn)
}

// NumOutputs returns the number of Bitcoin outputs this transaction
// creates.
func (tx *Tx) NumOutputs() int {
	return len(tx.BtcTx.TxOut)
}

// ParentOutpoints returns the outpoints this transaction's inputs spend,
// in input order — the edges the attacher walks to find ancestors.
func (tx *Tx) ParentOutpoints() []wire.OutPoint {
	out := make([]wire.OutPoint, len(tx.BtcTx.TxIn))
	for i, in := range tx.BtcTx.TxIn {
		out[i] = in.PreviousOutPoint
	}
	return out
}

// ValidateIndices checks that every proof map key references an
// existing input or output index — the structural check's first rule.
func (tx *Tx) ValidateIndices() error {
	for idx := range tx.InputProofs {
		if idx < 0 || idx >= tx.NumInputs() {
			return fmt.Errorf("input proof index %d out of range [0,%d)",
				idx, tx.NumInputs())
		}
	}
	for idx := range tx.OutputProofs {
		if idx < 0 || idx >= tx.NumOutputs() {
			return fmt.Errorf("output proof index %d out of range [0,%d)",
				idx, tx.NumOutputs())
		}
	}
	return nil
}

// NonZeroOutputProofs returns the output proofs that are hidden
// (bulletproof) or carry a non-zero pixel; EmptyProofs and zero-luma
// proofs are left out.
// Zero-luma outputs are dropped before balance checks per the
// commitment invariant, though their Bitcoin-level existence is
// preserved in OutputProofs and BtcTx regardless.
func (tx *Tx) NonZeroOutputProofs() map[int]pixel.Proof {
	out := make(map[int]pixel.Proof, len(tx.OutputProofs))
	for idx, p := range tx.OutputProofs {
		if p.IsHidden() || !p.PixelValue().IsZero() {
			out[idx] = p
		}
	}
	return out
}

// NonZeroInputProofs mirrors NonZeroOutputProofs for inputs.
func (tx *Tx) NonZeroInputProofs() map[int]pixel.Proof {
	out := make(map[int]pixel.Proof, len(tx.InputProofs))
	for idx, p := range tx.InputProofs {
		if p.IsHidden() || !p.PixelValue().IsZero() {
			out[idx] = p
		}
	}
	return out
}
