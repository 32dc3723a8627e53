package blkhash

import "hash"

// stream is one of the S accumulators from spec §3/§4.2. Each stream is
// owned by exactly one routing call path (the engine's dispatch loop, via
// exactly one worker), so push is never called concurrently for the same
// stream and no lock is needed (spec §4.2, §5).
type stream struct {
	h        hash.Hash
	lastSeen int64 // last block index pushed; -1 before the first push.
}

func newStream(newHash func() hash.Hash) *stream {
	return &stream{h: newHash(), lastSeen: -1}
}

// push folds a block digest into the stream's running hash. blockIndex is
// used only to assert strictly increasing order (spec I2); it never affects
// the digest value itself.
func (s *stream) push(blockIndex int64, blockDigest []byte) {
	if blockIndex <= s.lastSeen {
		panic("blkhash: stream pushed out of order")
	}
	s.lastSeen = blockIndex
	s.h.Write(blockDigest)
}

// finish returns the final stream digest D_s (spec §3).
func (s *stream) finish() []byte {
	return s.h.Sum(nil)
}
