// Package check implements the isolated transaction checker: the
// stateless rules a YUV transaction must satisfy on its own, given the
// scriptPubKeys of the outputs its inputs spend. It never fetches those
// scripts itself — the caller (the controller or the attacher)
// supplies them.
package check

import (
	"context"

	"github.com/yuv-protocol/yuv-node/errkind"
	"github.com/yuv-protocol/yuv-node/pixel"
	"github.com/yuv-protocol/yuv-node/yuvtx"
)

// Config configures a Checker.
type Config struct {
	// PoolSize bounds concurrent CPU-bound verification work.
	PoolSize int

	// RangeVerifier backs bulletproof range-proof verification; a nil
	// value causes bulletproof transactions to fail closed.
	RangeVerifier pixel.RangeVerifier
}

// Outcome is the result of checking one transaction.
type Outcome struct {
	Err *errkind.Error
}

// OK reports whether the transaction passed every isolated check.
func (o *Outcome) OK() bool { return o.Err == nil }

// Checker runs the isolated per-transaction validity rules: structural
// well-formedness, commitment binding (which includes the bulletproof
// range check), balance, and announcement signatures, in that order,
// stopping at the first failure.
type Checker struct {
	verifier *pixel.Verifier
	pool     *Pool
}

// New builds a Checker from cfg.
func New(cfg Config) *Checker {
	return &Checker{
		verifier: pixel.NewVerifier(cfg.RangeVerifier),
		pool:     NewPool(cfg.PoolSize),
	}
}

// Check runs every isolated rule against tx, using prevOutScripts to
// resolve the scriptPubKey each input proof must bind to. It blocks
// until a pool slot is available or ctx is done.
func (c *Checker) Check(ctx context.Context, tx *yuvtx.Tx,
	prevOutScripts map[int][]byte) (*Outcome, error) {

	return c.pool.Run(ctx, func() *Outcome {
		if err := checkStructural(tx); err != nil {
			return &Outcome{Err: err}
		}
		if err := checkBinding(c.verifier, tx, prevOutScripts); err != nil {
			return &Outcome{Err: err}
		}
		if err := checkBalance(tx); err != nil {
			return &Outcome{Err: err}
		}
		if err := checkAnnouncement(tx); err != nil {
			return &Outcome{Err: err}
		}
		return &Outcome{}
	})
}
