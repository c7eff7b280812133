package rpcsurface

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
)

// DecodeSubmission unwraps a PSBT-framed submission into the unsigned
// anchor transaction and the prevout scriptPubKeys its inputs spend,
// taken from each input's witness UTXO. This is the wire shape a real
// RPC transport hands SubmitTx: a signed PSBT carrying both the
// transaction and the witness UTXOs the isolated checker needs to
// verify sig proofs, without a second round trip to the chain backend.
func DecodeSubmission(packet *psbt.Packet) (*psbt.Packet, map[int][]byte, error) {
	if packet.UnsignedTx == nil {
		return nil, nil, fmt.Errorf("psbt packet carries no unsigned transaction")
	}
	if len(packet.Inputs) != len(packet.UnsignedTx.TxIn) {
		return nil, nil, fmt.Errorf("psbt input count %d does not match "+
			"tx input count %d", len(packet.Inputs), len(packet.UnsignedTx.TxIn))
	}

	prevOutScripts := make(map[int][]byte, len(packet.Inputs))
	for idx, in := range packet.Inputs {
		if in.WitnessUtxo == nil {
			continue
		}
		prevOutScripts[idx] = in.WitnessUtxo.PkScript
	}

	return packet, prevOutScripts, nil
}
