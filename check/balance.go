package check

import (
	"github.com/yuv-protocol/yuv-node/announcement"
	"github.com/yuv-protocol/yuv-node/errkind"
	"github.com/yuv-protocol/yuv-node/pixel"
	"github.com/yuv-protocol/yuv-node/yuvtx"
)

// chromaTotals accumulates one chroma's plaintext and hidden amounts
// across a transaction's inputs and outputs.
type chromaTotals struct {
	plainIn, plainOut   pixel.Luma
	hiddenIn, hiddenOut pixel.Commitment
	hasPlain, hasHidden bool
	hiddenInSet         bool
	hiddenOutSet        bool
}

// checkBalance enforces per-chroma conservation: for every chroma
// present, input total equals output total, except the issuer chroma of
// a verified Issue transaction. Hidden (bulletproof) chromas are
// compared homomorphically over their Pedersen commitments instead of
// plaintext sums. A chroma that mixes plaintext and hidden proofs within
// the same transaction is rejected, since the two totals are not
// comparable.
func checkBalance(tx *yuvtx.Tx) *errkind.Error {
	totals := make(map[pixel.Chroma]*chromaTotals)

	if err := accumulate(totals, tx.NonZeroInputProofs(), true); err != nil {
		return err
	}
	if err := accumulate(totals, tx.NonZeroOutputProofs(), false); err != nil {
		return err
	}

	var issuerChroma pixel.Chroma
	var isIssue bool
	if tx.TxType == yuvtx.TypeIssue {
		issuance, ok := tx.Announcement.(*announcement.Issuance)
		if !ok {
			return fail(errkind.Malformed, "issue tx missing issuance announcement")
		}
		issuerChroma = issuance.Chroma_
		isIssue = true

		txid := tx.Txid()
		sigOK, err := pixel.VerifyAnnouncementSignature(
			issuerChroma, txid.CloneBytes(), tx.IssuerSig,
		)
		if err != nil {
			return fail(errkind.WrongIssuer, "%v", err)
		}
		if !sigOK {
			return fail(errkind.WrongIssuer,
				"issuer signature does not verify under chroma %s",
				issuerChroma)
		}
	}

	for chroma, t := range totals {
		if t.hasPlain && t.hasHidden {
			return fail(errkind.Unbalanced,
				"chroma %s mixes plaintext and hidden proofs", chroma)
		}

		if isIssue && chroma == issuerChroma {
			// The issuer's own chroma is exempt from conservation —
			// this transaction is minting it.
			continue
		}

		if t.hasHidden {
			if !t.hiddenIn.Equal(t.hiddenOut) {
				return fail(errkind.Unbalanced,
					"chroma %s hidden commitments do not balance", chroma)
			}
			continue
		}

		if t.plainIn != t.plainOut {
			return fail(errkind.Unbalanced,
				"chroma %s: input %d != output %d",
				chroma, t.plainIn, t.plainOut)
		}
	}

	return nil
}

func accumulate(totals map[pixel.Chroma]*chromaTotals, proofs map[int]pixel.Proof,
	isInput bool) *errkind.Error {

	for _, proof := range proofs {
		switch p := proof.(type) {
		case *pixel.EmptyProof:
			continue

		case *pixel.BulletproofProof:
			t := totalsFor(totals, p.Chroma)
			t.hasHidden = true
			if isInput {
				t.hiddenIn = addCommitment(t.hiddenIn, p.Commitment, t.hasHiddenIn())
				t.markHiddenIn()
			} else {
				t.hiddenOut = addCommitment(t.hiddenOut, p.Commitment, t.hasHiddenOut())
				t.markHiddenOut()
			}

		default:
			pix := proof.PixelValue()
			t := totalsFor(totals, pix.Chroma)
			t.hasPlain = true
			if isInput {
				t.plainIn += pix.Luma
			} else {
				t.plainOut += pix.Luma
			}
		}
	}
	return nil
}

func totalsFor(totals map[pixel.Chroma]*chromaTotals, c pixel.Chroma) *chromaTotals {
	t, ok := totals[c]
	if !ok {
		t = &chromaTotals{}
		totals[c] = t
	}
	return t
}

// addCommitment folds a new commitment into a running homomorphic sum.
// initialized reports whether acc already holds a commitment (the zero
// Commitment is not a valid curve point, so we can't just treat it as
// the additive identity).
func addCommitment(acc pixel.Commitment, next pixel.Commitment, initialized bool) pixel.Commitment {
	if !initialized {
		return next
	}
	sum, err := acc.Add(next)
	if err != nil {
		// An unparseable accumulator can only happen if a proof
		// carried a malformed commitment, which binding verification
		// already rejects before balance runs.
		return acc
	}
	return sum
}

func (t *chromaTotals) hasHiddenIn() bool  { return t.hiddenInSet }
func (t *chromaTotals) hasHiddenOut() bool { return t.hiddenOutSet }
func (t *chromaTotals) markHiddenIn()      { t.hiddenInSet = true }
func (t *chromaTotals) markHiddenOut()     { t.hiddenOutSet = true }
