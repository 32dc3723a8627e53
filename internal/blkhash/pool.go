package blkhash

import (
	"hash"
	"sync"

	"github.com/nirs/blkhash/internal/digest"
)

// work is one hashing job handed to a worker: hash payload and deliver the
// digest to the numbered stream. A nil payload with isZero set lets the
// routing path dispatch a zero-run block without allocating or copying the
// zero bytes (spec §4.3 update_zeros, §9 "Zero constants").
type work struct {
	stream   int
	index    int64
	payload  []byte
	isZero   bool
	zeroSize int
}

// pool is the fixed set of T workers from spec §4.4. Each worker is bound
// to a fixed subset of streams (stream s is always served by worker s %
// len(workers)), which is what lets the routing path preserve per-stream
// ordering without a reordering buffer: a single producer (this pool's
// caller) feeds each worker's queue in order, and a worker only ever touches
// the streams assigned to it.
type pool struct {
	workers []*worker
	streams []*stream
	zero    *zeroConstants
	newHash digest.Factory
	block   int
	stats   *Stats
}

type worker struct {
	in   chan work
	done chan struct{}
}

func newPool(threads int, streams []*stream, zero *zeroConstants, newHash digest.Factory, blockSize, queueDepth int, stats *Stats) *pool {
	p := &pool{
		streams: streams,
		zero:    zero,
		newHash: newHash,
		block:   blockSize,
		stats:   stats,
	}
	p.workers = make([]*worker, threads)
	for i := range p.workers {
		w := &worker{
			in:   make(chan work, queueDepth),
			done: make(chan struct{}),
		}
		p.workers[i] = w
		go p.run(w)
	}
	return p
}

// workerFor returns the worker index a given stream is pinned to (spec §4.4
// "worker = stream mod thread_count").
func (p *pool) workerFor(streamIdx int) int {
	return streamIdx % len(p.workers)
}

// submit enqueues a block-hash job. It blocks when the target worker's
// queue is full, which is the backpressure point spec §5 calls out.
func (p *pool) submit(w work) {
	p.stats.incQueueDepth()
	p.workers[p.workerFor(w.stream)].in <- w
}

// run is a single worker's loop: hash each job and push the digest straight
// into its pinned stream. Because every stream has exactly one worker
// feeding it, and that worker processes its queue in FIFO order, per-stream
// ordering (spec I2) falls out of plain channel semantics with no
// additional bookkeeping.
func (p *pool) run(w *worker) {
	defer close(w.done)
	var h hash.Hash
	for job := range w.in {
		p.stats.decQueueDepth()
		s := p.streams[job.stream]
		if job.isZero {
			s.push(job.index, p.zero.forLength(job.zeroSize, p.block, p.newHash))
			continue
		}
		if h == nil {
			h = p.newHash()
		} else {
			h.Reset()
		}
		h.Write(job.payload)
		s.push(job.index, h.Sum(nil))
	}
}

// stop places one sentinel per worker (by closing its channel) and waits
// for every worker to drain and exit (spec §4.4 "Shutdown").
func (p *pool) stop() {
	var wg sync.WaitGroup
	wg.Add(len(p.workers))
	for _, w := range p.workers {
		w := w
		close(w.in)
		go func() {
			<-w.done
			wg.Done()
		}()
	}
	wg.Wait()
}
