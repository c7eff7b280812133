package attacher

import (
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/yuv-protocol/yuv-node/yuvtx"
)

// pendingTx is a transaction that has passed its own isolated check but
// cannot yet be attached because one or more of its parent outpoints
// belong to a transaction not yet attached.
type pendingTx struct {
	tx             *yuvtx.Tx
	prevOutScripts map[int][]byte
	height         uint32
	txIndex        uint32
	missing        map[wire.OutPoint]struct{}
	queuedAt       time.Time
}

// graph holds the attacher's awaiting_parents, dependents, and
// ready_queue tables. It is pure bookkeeping: no I/O, no checking, just
// the dependency resolution a DAG of derived value requires before a
// child can be considered as durably attached as its parents.
type graph struct {
	mu sync.Mutex

	// awaitingParents indexes pending transactions by txid.
	awaitingParents map[chainhash.Hash]*pendingTx

	// dependents indexes, for each outpoint a pending transaction is
	// still missing, the txids waiting on it.
	dependents map[wire.OutPoint][]chainhash.Hash

	readyQueue []*pendingTx
}

func newGraph() *graph {
	return &graph{
		awaitingParents: make(map[chainhash.Hash]*pendingTx),
		dependents:      make(map[wire.OutPoint][]chainhash.Hash),
	}
}

// add registers tx as waiting on missing, or queues it ready immediately
// if missing is empty.
func (g *graph) add(tx *yuvtx.Tx, prevOutScripts map[int][]byte, height,
	txIndex uint32, missing []wire.OutPoint) {

	g.mu.Lock()
	defer g.mu.Unlock()

	p := &pendingTx{
		tx:             tx,
		prevOutScripts: prevOutScripts,
		height:         height,
		txIndex:        txIndex,
		missing:        make(map[wire.OutPoint]struct{}, len(missing)),
		queuedAt:       time.Now(),
	}
	for _, op := range missing {
		p.missing[op] = struct{}{}
	}

	if len(p.missing) == 0 {
		g.readyQueue = append(g.readyQueue, p)
		return
	}

	g.awaitingParents[tx.Txid()] = p
	for op := range p.missing {
		g.dependents[op] = append(g.dependents[op], tx.Txid())
	}
}

// resolve marks outpoint as attached, moving any pending transaction
// whose last missing parent was outpoint onto the ready queue.
func (g *graph) resolve(outpoint wire.OutPoint) {
	g.mu.Lock()
	defer g.mu.Unlock()

	waiters := g.dependents[outpoint]
	delete(g.dependents, outpoint)

	for _, txid := range waiters {
		p, ok := g.awaitingParents[txid]
		if !ok {
			continue
		}
		delete(p.missing, outpoint)
		if len(p.missing) == 0 {
			delete(g.awaitingParents, txid)
			g.readyQueue = append(g.readyQueue, p)
		}
	}
}

// drainReady removes and returns every transaction currently ready to
// attach.
func (g *graph) drainReady() []*pendingTx {
	g.mu.Lock()
	defer g.mu.Unlock()

	ready := g.readyQueue
	g.readyQueue = nil
	return ready
}

// missingOutpoints returns a snapshot of every outpoint at least one
// pending transaction is still waiting on, for the fetch loop to retry.
func (g *graph) missingOutpoints() []wire.OutPoint {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]wire.OutPoint, 0, len(g.dependents))
	for op := range g.dependents {
		out = append(out, op)
	}
	return out
}

// pendingCount reports how many transactions are still awaiting at
// least one parent.
func (g *graph) pendingCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.awaitingParents)
}

// expireStale evicts and returns every pending transaction that has
// been waiting on a parent for longer than maxAge, removing it from
// awaitingParents and every outpoint's dependents list it was still
// registered under.
func (g *graph) expireStale(maxAge time.Duration) []*pendingTx {
	g.mu.Lock()
	defer g.mu.Unlock()

	var expired []*pendingTx
	now := time.Now()
	for txid, p := range g.awaitingParents {
		if now.Sub(p.queuedAt) < maxAge {
			continue
		}
		expired = append(expired, p)
		delete(g.awaitingParents, txid)
		for op := range p.missing {
			waiters := g.dependents[op]
			for i, id := range waiters {
				if id == txid {
					waiters = append(waiters[:i], waiters[i+1:]...)
					break
				}
			}
			if len(waiters) == 0 {
				delete(g.dependents, op)
			} else {
				g.dependents[op] = waiters
			}
		}
	}
	return expired
}
