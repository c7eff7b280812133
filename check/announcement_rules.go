package check

import (
	"github.com/yuv-protocol/yuv-node/announcement"
	"github.com/yuv-protocol/yuv-node/errkind"
	"github.com/yuv-protocol/yuv-node/pixel"
	"github.com/yuv-protocol/yuv-node/yuvtx"
)

// checkAnnouncement validates an Announcement-type transaction's
// signature: freeze, unfreeze, and chroma-metadata announcements must
// be signed by the chroma they name. This is a self-consistency check
// only — confirming the named chroma actually controls the token at a
// toggled outpoint requires DAG state the isolated checker, which only
// ever sees one transaction at a time, doesn't have. That
// cross-reference is the attacher's job: see
// Attacher.verifyToggleIssuer in the attacher package, which looks up
// the toggled outpoint's owning transaction before honoring a freeze
// or unfreeze.
func checkAnnouncement(tx *yuvtx.Tx) *errkind.Error {
	if tx.TxType != yuvtx.TypeAnnouncement {
		return nil
	}

	var signingChroma pixel.Chroma
	switch a := tx.Announcement.(type) {
	case *announcement.FreezeToggle:
		signingChroma = a.Chroma_
	case *announcement.ChromaMeta:
		signingChroma = a.Chroma_
	case *announcement.Issuance:
		signingChroma = a.Chroma_
	default:
		return fail(errkind.BadAnnouncement, "unrecognized announcement body")
	}

	if len(tx.IssuerSig) == 0 {
		return fail(errkind.BadAnnouncement,
			"announcement carries no signature")
	}

	txid := tx.Txid()
	ok, err := pixel.VerifyAnnouncementSignature(
		signingChroma, txid.CloneBytes(), tx.IssuerSig,
	)
	if err != nil {
		return fail(errkind.BadAnnouncement, "%v", err)
	}
	if !ok {
		return fail(errkind.BadAnnouncement,
			"announcement signature does not verify under chroma %s",
			signingChroma)
	}

	return nil
}
