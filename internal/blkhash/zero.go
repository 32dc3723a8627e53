package blkhash

import (
	"sync"

	"github.com/nirs/blkhash/internal/digest"
)

// zeroConstants precomputes the shortcut digests spec §3/§9 require: Z_full
// for a complete zero block, read-only after construction so every worker
// can read it lock-free (spec §5 "Shared resources"). A short-zero-length
// cache (Z_k, for the rare trailing partial zero block) is filled lazily;
// unlike Z_full it can be requested concurrently by more than one worker
// (a zero run's final short block is dispatched through the pool exactly
// like any other block), so it is guarded by a mutex. The mutex is only
// ever contended for the handful of distinct short lengths a run produces,
// never for the hot full-block path.
type zeroConstants struct {
	full []byte

	mu    sync.Mutex
	short map[int][]byte
}

func newZeroConstants(newHash digest.Factory, blockSize int) *zeroConstants {
	h := newHash()
	h.Write(make([]byte, blockSize))
	return &zeroConstants{
		full:  h.Sum(nil),
		short: make(map[int][]byte),
	}
}

// forLength returns the precomputed digest of n zero bytes, computing and
// caching Z_k lazily the first time a given short length is seen. n ==
// blockSize is the common case and is already cached at construction.
func (z *zeroConstants) forLength(n int, blockSize int, newHash digest.Factory) []byte {
	if n == blockSize {
		return z.full
	}

	z.mu.Lock()
	defer z.mu.Unlock()
	if d, ok := z.short[n]; ok {
		return d
	}
	h := newHash()
	h.Write(make([]byte, n))
	d := h.Sum(nil)
	z.short[n] = d
	return d
}
