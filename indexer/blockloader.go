package indexer

import (
	"context"

	"github.com/btcsuite/btcd/wire"
	"github.com/yuv-protocol/yuv-node/chainbridge"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// defaultBufferSize is the chunk size LoadRange fetches a range in, when
// the node's config doesn't set BufferSize explicitly.
const defaultBufferSize = 50

// BlockLoader fetches a contiguous range of blocks concurrently, bounded
// by a worker count and a token-bucket rate limit on RPC calls —
// generalizing the wallet mempool client's single rate.Limiter-gated
// HTTP client into a fixed-size fan-out pool. Large ranges are fetched
// in bufferSize-sized chunks, one chunk after another. LoadRange returns
// the whole range at once, so every block of the range is held in
// memory until it returns, however far behind the cursor has fallen.
type BlockLoader struct {
	bridge     chainbridge.Bridge
	workers    int
	bufferSize int
	limiter    *rate.Limiter
}

// NewBlockLoader builds a BlockLoader. workers bounds how many RPC
// calls run concurrently; rps/burst bound the request rate across all
// of them; bufferSize sets how many blocks each chunk of a LoadRange
// call covers.
func NewBlockLoader(bridge chainbridge.Bridge, workers int, rps float64, burst int,
	bufferSize int) *BlockLoader {

	if workers <= 0 {
		workers = 1
	}
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &BlockLoader{
		bridge:     bridge,
		workers:    workers,
		bufferSize: bufferSize,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// LoadRange fetches every block from startHeight to endHeight
// inclusive, returning them in height order. It fails fast: the first
// worker error in a chunk cancels the rest of that chunk via the shared
// context, and no further chunks are started.
func (l *BlockLoader) LoadRange(ctx context.Context, startHeight,
	endHeight int32) ([]*wire.MsgBlock, error) {

	if endHeight < startHeight {
		return nil, nil
	}

	total := int(endHeight-startHeight) + 1
	blocks := make([]*wire.MsgBlock, 0, total)

	for chunkStart := startHeight; chunkStart <= endHeight; chunkStart += int32(l.bufferSize) {
		chunkEnd := chunkStart + int32(l.bufferSize) - 1
		if chunkEnd > endHeight {
			chunkEnd = endHeight
		}

		chunk, err := l.loadChunk(ctx, chunkStart, chunkEnd)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, chunk...)
	}
	return blocks, nil
}

// loadChunk fetches the inclusive [startHeight, endHeight] range
// concurrently across l.workers, rate-limited by l.limiter.
func (l *BlockLoader) loadChunk(ctx context.Context, startHeight,
	endHeight int32) ([]*wire.MsgBlock, error) {

	count := int(endHeight-startHeight) + 1
	blocks := make([]*wire.MsgBlock, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i := 0; i < count; i++ {
		i := i
		height := startHeight + int32(i)
		g.Go(func() error {
			if err := l.limiter.Wait(gctx); err != nil {
				return err
			}
			hash, err := l.bridge.GetBlockHash(gctx, height)
			if err != nil {
				return err
			}
			block, err := l.bridge.GetBlock(gctx, hash)
			if err != nil {
				return err
			}
			blocks[i] = block
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blocks, nil
}
