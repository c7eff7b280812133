package check

import (
	"github.com/yuv-protocol/yuv-node/announcement"
	"github.com/yuv-protocol/yuv-node/errkind"
	"github.com/yuv-protocol/yuv-node/pixel"
	"github.com/yuv-protocol/yuv-node/yuvtx"
)

// checkStructural runs the first isolated-checker pass: proof maps may
// only reference existing indices, and tx_type must be consistent with
// what the transaction actually carries.
func checkStructural(tx *yuvtx.Tx) *errkind.Error {
	if err := tx.ValidateIndices(); err != nil {
		return fail(errkind.Malformed, "%v", err)
	}

	switch tx.TxType {
	case yuvtx.TypeIssue:
		issuance, ok := tx.Announcement.(*announcement.Issuance)
		if !ok {
			return fail(errkind.Malformed,
				"issue tx carries no issuance announcement")
		}
		if len(tx.IssuerSig) == 0 {
			return fail(errkind.Malformed,
				"issue tx carries no issuer signature")
		}
		return checkNoPreexistingIssuerInputs(tx, issuance.Chroma_)

	case yuvtx.TypeAnnouncement:
		if tx.Announcement == nil {
			return fail(errkind.Malformed,
				"announcement tx carries no announcement payload")
		}
		return checkAnnouncementHasNoPixelOutputs(tx)

	case yuvtx.TypeTransfer:
		if tx.Announcement != nil {
			return fail(errkind.Malformed,
				"transfer tx must not carry an announcement payload")
		}
		return nil

	default:
		return fail(errkind.Malformed, "unknown tx type %v", tx.TxType)
	}
}

// checkNoPreexistingIssuerInputs resolves spec Open Question (a): an
// Issue transaction that spends a pre-existing input of its own minted
// chroma is rejected outright rather than given defined semantics.
func checkNoPreexistingIssuerInputs(tx *yuvtx.Tx, issuer pixel.Chroma) *errkind.Error {
	for _, proof := range tx.InputProofs {
		if proof.IsHidden() {
			if bp, ok := proof.(*pixel.BulletproofProof); ok && bp.Chroma == issuer {
				return fail(errkind.Malformed,
					"issue tx spends a pre-existing input of its own chroma")
			}
			continue
		}
		if proof.PixelValue().Chroma == issuer && !proof.PixelValue().IsZero() {
			return fail(errkind.Malformed,
				"issue tx spends a pre-existing input of its own chroma")
		}
	}
	return nil
}

func checkAnnouncementHasNoPixelOutputs(tx *yuvtx.Tx) *errkind.Error {
	for _, proof := range tx.OutputProofs {
		if proof.Type() != pixel.ProofTypeEmpty {
			return fail(errkind.Malformed,
				"announcement tx carries a non-empty pixel output")
		}
	}
	return nil
}
