// Package attacher implements the transaction attacher: it takes
// transactions that have already passed the isolated checker and
// resolves them against the growing DAG of already-attached
// transactions, holding a child back in awaiting_parents until every
// parent it spends has itself been attached, then committing the whole
// newly-resolved subgraph to storage in one atomic batch.
package attacher

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/yuv-protocol/yuv-node/announcement"
	"github.com/yuv-protocol/yuv-node/check"
	"github.com/yuv-protocol/yuv-node/errkind"
	"github.com/yuv-protocol/yuv-node/eventbus"
	"github.com/yuv-protocol/yuv-node/freeze"
	"github.com/yuv-protocol/yuv-node/pixel"
	"github.com/yuv-protocol/yuv-node/storage"
	"github.com/yuv-protocol/yuv-node/yuvtx"
)

// ParentFetcher retrieves a transaction the attacher knows is confirmed
// on-chain but has not yet seen, along with the scriptPubKeys its own
// inputs spend. Implementations reach into the indexer's or the P2P
// layer's view of the chain.
type ParentFetcher interface {
	FetchTx(ctx context.Context, txid chainhash.Hash) (tx *yuvtx.Tx,
		prevOutScripts map[int][]byte, height uint32, txIndex uint32, err error)
}

// Config configures an Attacher.
type Config struct {
	Storage storage.Storage
	Checker *check.Checker
	Fetcher ParentFetcher
	Policy  FetchPolicy
	Buses   *eventbus.Buses

	// Expiry bounds how long a transaction may sit in awaiting_parents
	// before it's evicted and rejected as MissingAncestor, rather than
	// retried forever.
	Expiry time.Duration
}

// Attacher resolves checked transactions against the DAG and commits
// newly-resolved subgraphs to storage atomically.
type Attacher struct {
	cfg   Config
	graph *graph

	attemptsMu sync.Mutex
	attempts   map[wire.OutPoint]*retryState
}

type retryState struct {
	count       int
	nextAttempt time.Time
}

// New builds an Attacher from cfg.
func New(cfg Config) *Attacher {
	if cfg.Policy == (FetchPolicy{}) {
		cfg.Policy = DefaultFetchPolicy()
	}
	if cfg.Expiry == 0 {
		cfg.Expiry = 10 * time.Minute
	}
	return &Attacher{
		cfg:      cfg,
		graph:    newGraph(),
		attempts: make(map[wire.OutPoint]*retryState),
	}
}

// Attach runs the isolated check on tx, then either attaches it
// immediately (if every parent is already attached) or queues it in
// awaiting_parents. height and txIndex are the transaction's
// confirmation position, used to resolve same-block freeze ordering.
func (a *Attacher) Attach(ctx context.Context, tx *yuvtx.Tx,
	prevOutScripts map[int][]byte, height, txIndex uint32) error {

	outcome, err := a.cfg.Checker.Check(ctx, tx, prevOutScripts)
	if err != nil {
		return err
	}
	if !outcome.OK() {
		return outcome.Err
	}

	missing, err := a.unresolvedParents(ctx, tx)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		a.graph.add(tx, prevOutScripts, height, txIndex, missing)
		log.Debugf("tx %v awaiting %d parent(s)", tx.Txid(), len(missing))
		return nil
	}

	return a.attachReady(ctx, &pendingTx{
		tx: tx, prevOutScripts: prevOutScripts,
		height: height, txIndex: txIndex,
	})
}

// unresolvedParents returns the parent outpoints of tx whose owning
// transaction is not yet attached in storage. Inputs with no pixel
// proof, or an EmptyProof, spend plain Bitcoin value and carry no DAG
// edge — a funding input for an Issue transaction, for instance — so
// they impose no ancestry requirement.
func (a *Attacher) unresolvedParents(ctx context.Context,
	tx *yuvtx.Tx) ([]wire.OutPoint, error) {

	parents := tx.ParentOutpoints()

	var missing []wire.OutPoint
	for idx, op := range parents {
		proof, ok := tx.InputProofs[idx]
		if !ok {
			continue
		}
		if _, empty := proof.(*pixel.EmptyProof); empty {
			continue
		}

		_, err := a.cfg.Storage.GetTx(ctx, wire.OutPoint{Hash: op.Hash, Index: 0})
		switch err {
		case nil:
			continue
		case storage.ErrNotFound:
			missing = append(missing, op)
		default:
			return nil, err
		}
	}
	return missing, nil
}

// attachReady finalizes a transaction whose parents are all attached:
// it re-runs the freeze check at the transaction's confirmation height,
// then commits it and cascades attachment to any dependents this
// unblocks, all as one atomic subgraph commit.
func (a *Attacher) attachReady(ctx context.Context, p *pendingTx) error {
	queue := []*pendingTx{p}
	var commitSet []*yuvtx.Tx
	var toggles []*freeze.Record

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if err := a.checkFreezeState(ctx, cur); err != nil {
			return err
		}

		if toggle := freezeToggleOf(cur.tx, cur.height, cur.txIndex); toggle != nil {
			if err := a.verifyToggleIssuer(ctx, toggle); err != nil {
				return err
			}
			toggles = append(toggles, toggle)
		}

		commitSet = append(commitSet, cur.tx)

		txid := cur.tx.Txid()
		for idx := range cur.tx.BtcTx.TxOut {
			a.graph.resolve(wire.OutPoint{Hash: txid, Index: uint32(idx)})
		}
		queue = append(queue, a.graph.drainReady()...)
	}

	if err := a.cfg.Storage.PutTxsAtomic(ctx, commitSet); err != nil {
		return err
	}
	for _, toggle := range toggles {
		existing, err := a.cfg.Storage.GetFreeze(ctx, toggle.Outpoint)
		switch {
		case err == storage.ErrNotFound:
			existing = nil
		case err != nil:
			return err
		}
		if !toggle.IsNewer(existing) {
			continue
		}
		if err := a.cfg.Storage.PutFreeze(ctx, toggle); err != nil {
			return err
		}
		if a.cfg.Buses != nil {
			a.cfg.Buses.FreezeToggled.Publish(eventbus.FreezeToggled{Record: toggle})
		}
	}

	log.Debugf("attached subgraph of %d transaction(s)", len(commitSet))
	return nil
}

// checkFreezeState rejects a transaction that spends a frozen outpoint
// as of its own confirmation height. This is deliberately not part of
// the isolated checker: freeze state is mutable chain state the
// checker, which only ever sees one transaction at a time, has no way
// to consult.
func (a *Attacher) checkFreezeState(ctx context.Context, p *pendingTx) error {
	for _, op := range p.tx.ParentOutpoints() {
		rec, err := a.cfg.Storage.GetFreeze(ctx, op)
		if err == storage.ErrNotFound {
			continue
		}
		if err != nil {
			return err
		}
		if !freeze.IsSpendable(rec, p.height) {
			return errkind.New(errkind.Frozen,
				"input outpoint is frozen as of height "+
					strconv.Itoa(int(p.height)))
		}
	}
	return nil
}

// verifyToggleIssuer rejects a freeze/unfreeze toggle whose signing
// chroma does not actually control the toggled outpoint. The isolated
// checker only verifies the announcement's signature is self-consistent
// with the chroma it names; without this lookup against the toggled
// outpoint's own owning transaction, anyone could self-sign a
// FreezeToggle naming their own chroma and freeze a victim outpoint that
// belongs to an entirely different token.
func (a *Attacher) verifyToggleIssuer(ctx context.Context, toggle *freeze.Record) error {
	owner, err := a.cfg.Storage.GetTx(ctx, wire.OutPoint{Hash: toggle.Outpoint.Hash, Index: 0})
	if err == storage.ErrNotFound {
		return errkind.New(errkind.WrongIssuer,
			"toggled outpoint "+toggle.Outpoint.String()+" is not a known pixel output")
	}
	if err != nil {
		return err
	}

	proof, ok := owner.OutputProofs[int(toggle.Outpoint.Index)]
	if !ok {
		return errkind.New(errkind.WrongIssuer,
			"toggled outpoint "+toggle.Outpoint.String()+" carries no pixel value")
	}

	if proof.PixelValue().Chroma != toggle.IssuerChroma {
		return errkind.New(errkind.WrongIssuer,
			"freeze toggle signed by chroma "+toggle.IssuerChroma.String()+
				" does not control outpoint "+toggle.Outpoint.String())
	}

	return nil
}

// freezeToggleOf extracts the freeze.Record a Freeze/Unfreeze
// announcement transaction represents, or nil for any other tx.
func freezeToggleOf(tx *yuvtx.Tx, height, txIndex uint32) *freeze.Record {
	toggle, ok := tx.Announcement.(*announcement.FreezeToggle)
	if !ok {
		return nil
	}
	state := freeze.Frozen
	if toggle.Unfreeze {
		state = freeze.Unfrozen
	}
	return &freeze.Record{
		Outpoint:     wire.OutPoint{Hash: toggle.OutpointHash, Index: toggle.OutpointIdx},
		IssuerChroma: toggle.Chroma_,
		State:        state,
		Height:       height,
		TxIndex:      txIndex,
	}
}

// RunFetchLoop retries every outstanding missing parent on its own
// backoff schedule until ctx is done. Each resolved parent is attached
// through the same path a directly-submitted transaction takes.
func (a *Attacher) RunFetchLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.retryMissing(ctx)
			a.ExpireStale()
		}
	}
}

// ExpireStale evicts every transaction that has awaited a parent for
// longer than cfg.Expiry, rejecting each as MissingAncestor rather than
// retrying it forever.
func (a *Attacher) ExpireStale() {
	for _, p := range a.graph.expireStale(a.cfg.Expiry) {
		txid := p.tx.Txid()
		log.Warnf("expiring tx %v: parent still missing after %s", txid, a.cfg.Expiry)

		a.attemptsMu.Lock()
		for op := range p.missing {
			delete(a.attempts, op)
		}
		a.attemptsMu.Unlock()

		if a.cfg.Buses != nil {
			a.cfg.Buses.TxRejected.Publish(eventbus.TxRejected{
				Txid: txid,
				Err: errkind.New(errkind.MissingAncestor,
					fmt.Sprintf("parent still missing after %s", a.cfg.Expiry)),
			})
		}
	}
}

func (a *Attacher) retryMissing(ctx context.Context) {
	if a.cfg.Fetcher == nil {
		return
	}

	for _, op := range a.graph.missingOutpoints() {
		if !a.dueForRetry(op) {
			continue
		}

		tx, prevOutScripts, height, txIndex, err := a.cfg.Fetcher.FetchTx(ctx, op.Hash)
		if err != nil {
			log.Debugf("fetch of parent %v failed: %v", op.Hash, err)
			continue
		}

		a.attemptsMu.Lock()
		delete(a.attempts, op)
		a.attemptsMu.Unlock()

		if err := a.Attach(ctx, tx, prevOutScripts, height, txIndex); err != nil {
			log.Debugf("attaching fetched parent %v failed: %v", op.Hash, err)
		}
	}
}

// dueForRetry reports whether op's backoff delay has elapsed, advancing
// its attempt counter and next-eligible time as a side effect when it
// has.
func (a *Attacher) dueForRetry(op wire.OutPoint) bool {
	a.attemptsMu.Lock()
	defer a.attemptsMu.Unlock()

	st, ok := a.attempts[op]
	if !ok {
		st = &retryState{}
		a.attempts[op] = st
	}
	if time.Now().Before(st.nextAttempt) {
		return false
	}

	st.nextAttempt = time.Now().Add(a.cfg.Policy.Delay(st.count))
	st.count++
	return true
}

// PendingCount reports how many transactions are currently awaiting at
// least one parent.
func (a *Attacher) PendingCount() int {
	return a.graph.pendingCount()
}
