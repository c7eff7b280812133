// Package freeze implements the freeze-record data model and spendability
// rule: an output is spendable iff its latest toggle, ordered by
// (block_height, tx_index_in_block), is Unfrozen (or was never frozen).
package freeze

import (
	"github.com/btcsuite/btcd/wire"
	"github.com/yuv-protocol/yuv-node/pixel"
)

// State is one half of a freeze toggle.
type State uint8

const (
	Unfrozen State = iota
	Frozen
)

func (s State) String() string {
	if s == Frozen {
		return "Frozen"
	}
	return "Unfrozen"
}

// Record is one freeze/unfreeze toggle of a single outpoint, as named in
// the data model: (outpoint, issuer_chroma, state, height_last_toggled).
type Record struct {
	Outpoint     wire.OutPoint
	IssuerChroma pixel.Chroma
	State        State

	// Height is the block height the toggle was confirmed in.
	Height uint32

	// TxIndex is the toggling transaction's position within that
	// block, the tiebreaker when two toggles land in the same block.
	TxIndex uint32
}

// IsNewer reports whether r is a later toggle than other, by
// (Height, TxIndex) order — the ordering the data model requires when
// more than one toggle of the same outpoint is observed.
func (r *Record) IsNewer(other *Record) bool {
	if other == nil {
		return true
	}
	if r.Height != other.Height {
		return r.Height > other.Height
	}
	return r.TxIndex > other.TxIndex
}

// IsSpendable reports whether an outpoint governed by rec may be spent
// in a transaction confirming at atHeight. A freeze takes effect at the
// end of the block it is toggled in, so a spend confirming in the same
// block as the freeze still succeeds — the safe reading of the
// ambiguous same-block ordering case.
func IsSpendable(rec *Record, atHeight uint32) bool {
	if rec == nil {
		return true
	}
	if rec.State == Unfrozen {
		return true
	}
	return atHeight <= rec.Height
}
