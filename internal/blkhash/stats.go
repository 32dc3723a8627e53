package blkhash

import "sync/atomic"

// Stats holds counters an embedder (the blksum debug server, spec §2.5)
// can poll or drain periodically. All fields are updated with atomic ops
// (from the routing path, and queueDepth also from the workers), so a Stats
// value is safe to read concurrently with a running Hash.
type Stats struct {
	blocksHashed   atomic.Int64
	zeroBlocks     atomic.Int64
	bytesProcessed atomic.Int64
	queueDepth     atomic.Int64
}

func (s *Stats) addBlock(zero bool, n int) {
	if s == nil {
		return
	}
	s.blocksHashed.Add(1)
	if zero {
		s.zeroBlocks.Add(1)
	}
	s.bytesProcessed.Add(int64(n))
}

// incQueueDepth/decQueueDepth track how many work items sit in every
// worker's inbound queue combined, right now, backing the debug surface's
// gauge (spec §2.5 "worker queue depth gauge"). Incremented when the
// routing path submits a block, decremented when a worker picks it up.
func (s *Stats) incQueueDepth() {
	if s == nil {
		return
	}
	s.queueDepth.Add(1)
}

func (s *Stats) decQueueDepth() {
	if s == nil {
		return
	}
	s.queueDepth.Add(-1)
}

func (s *Stats) BlocksHashed() int64   { return s.blocksHashed.Load() }
func (s *Stats) ZeroBlocks() int64     { return s.zeroBlocks.Load() }
func (s *Stats) BytesProcessed() int64 { return s.bytesProcessed.Load() }
func (s *Stats) QueueDepth() int64     { return s.queueDepth.Load() }
