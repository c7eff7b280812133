package indexer

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/yuv-protocol/yuv-node/announcement"
)

// foundAnnouncement is one parsed OP_RETURN announcement located in a
// scanned block.
type foundAnnouncement struct {
	announcement announcement.Announcement
	txIndex      uint32
}

// scanBlockAnnouncements walks every output of every transaction in
// block looking for OP_RETURN scripts carrying a YUV announcement.
// Outputs that aren't OP_RETURN, or whose payload doesn't start with
// the YUV magic, are silently skipped — this is normal chain noise,
// not an error.
func scanBlockAnnouncements(block *wire.MsgBlock) []foundAnnouncement {
	var found []foundAnnouncement

	for i, tx := range block.Transactions {
		for _, out := range tx.TxOut {
			payload, ok := opReturnPayload(out.PkScript)
			if !ok {
				continue
			}

			ann, err := announcement.Parse(payload)
			if err != nil {
				continue
			}
			found = append(found, foundAnnouncement{
				announcement: ann,
				txIndex:      uint32(i),
			})
		}
	}
	return found
}

// opReturnPayload extracts the pushed data of an OP_RETURN script, or
// reports false for any other script form.
func opReturnPayload(pkScript []byte) ([]byte, bool) {
	tokenizer := txscript.MakeScriptTokenizer(0, pkScript)
	if !tokenizer.Next() || tokenizer.Opcode() != txscript.OP_RETURN {
		return nil, false
	}
	if !tokenizer.Next() {
		return nil, false
	}
	return tokenizer.Data(), true
}
