package check

import (
	"github.com/yuv-protocol/yuv-node/errkind"
	"github.com/yuv-protocol/yuv-node/pixel"
	"github.com/yuv-protocol/yuv-node/yuvtx"
)

// checkBinding verifies, for every input and output proof, that the
// tweaked key the proof derives equals the scriptPubKey the
// corresponding Bitcoin input or output actually carries. This also
// exercises the bulletproof range check, folded into VerifyProof. An
// EmptyProof input carries no token and binds to nothing, so it needs
// no prevout script.
func checkBinding(verifier *pixel.Verifier, tx *yuvtx.Tx,
	prevOutScripts map[int][]byte) *errkind.Error {

	for idx, proof := range tx.InputProofs {
		if _, empty := proof.(*pixel.EmptyProof); empty {
			continue
		}
		spk, ok := prevOutScripts[idx]
		if !ok {
			return fail(errkind.Malformed,
				"missing prevout script for input %d", idx)
		}
		if err := verifier.VerifyProof(proof, spk); err != nil {
			return fail(errkind.BadProof,
				"input %d: %v", idx, err)
		}
	}

	for idx, proof := range tx.OutputProofs {
		if idx < 0 || idx >= len(tx.BtcTx.TxOut) {
			return fail(errkind.Malformed,
				"output proof index %d out of range", idx)
		}
		spk := tx.BtcTx.TxOut[idx].PkScript
		if err := verifier.VerifyProof(proof, spk); err != nil {
			return fail(errkind.BadProof,
				"output %d: %v", idx, err)
		}
	}

	return nil
}
