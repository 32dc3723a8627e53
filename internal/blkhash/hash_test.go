package blkhash

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func digestOf(t *testing.T, cfg Config, chunks ...[]byte) string {
	t.Helper()
	h, err := New(cfg)
	require.NoError(t, err)
	for _, c := range chunks {
		require.NoError(t, h.Update(c))
	}
	sum, err := h.HexDigest()
	require.NoError(t, err)
	return sum
}

// S1: a single full zero block reaches the same digest via update(zeros),
// update_zeros(B), and (by the driver contract) a hole extent of length B.
func TestZeroEquivalence(t *testing.T) {
	cfg := Config{Digest: "sha256"}

	h1, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, h1.Update(make([]byte, BlockSize)))
	d1, err := h1.HexDigest()
	require.NoError(t, err)

	h2, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, h2.UpdateZeros(BlockSize))
	d2, err := h2.HexDigest()
	require.NoError(t, err)

	require.Equal(t, d1, d2)
}

// P3: any partition of the same bytes yields the same digest.
func TestBlockPartitionInvariance(t *testing.T) {
	data := make([]byte, 5*BlockSize+123)
	for i := range data {
		data[i] = byte(i * 7)
	}
	cfg := Config{Digest: "sha256"}

	whole := digestOf(t, cfg, data)

	var parts [][]byte
	for offset := 0; offset < len(data); {
		n := 1 + (offset % 4001)
		if offset+n > len(data) {
			n = len(data) - offset
		}
		parts = append(parts, data[offset:offset+n])
		offset += n
	}
	split := digestOf(t, cfg, parts...)

	require.Equal(t, whole, split)
}

// P4: finalize is idempotent.
func TestFinalizeIdempotent(t *testing.T) {
	h, err := New(Config{Digest: "sha256"})
	require.NoError(t, err)
	require.NoError(t, h.Update([]byte("hello")))

	d1, err := h.HexDigest()
	require.NoError(t, err)
	d2, err := h.HexDigest()
	require.NoError(t, err)
	require.Equal(t, d1, d2)
}

// P5: update after finalize fails and does not change the result.
func TestFinalizeExclusivity(t *testing.T) {
	h, err := New(Config{Digest: "sha256"})
	require.NoError(t, err)
	require.NoError(t, h.Update([]byte("hello")))
	d1, err := h.HexDigest()
	require.NoError(t, err)

	err = h.Update([]byte("world"))
	require.ErrorAs(t, err, &AlreadyFinalizedError{})

	err = h.UpdateZeros(10)
	require.ErrorAs(t, err, &AlreadyFinalizedError{})

	d2, err := h.HexDigest()
	require.NoError(t, err)
	require.Equal(t, d1, d2)
}

// P6: two images differing only in trailing length produce different
// digests whenever the lengths differ.
func TestLengthTrailerChangesDigest(t *testing.T) {
	cfg := Config{Digest: "sha256"}
	short := digestOf(t, cfg, make([]byte, BlockSize))
	long := digestOf(t, cfg, make([]byte, BlockSize+1))
	require.NotEqual(t, short, long)
}

// P7: the null primitive yields the empty string for any input.
func TestNullPassthrough(t *testing.T) {
	cfg := Config{Digest: "null"}
	require.Equal(t, "", digestOf(t, cfg, bytes.Repeat([]byte{0xAB}, 3*BlockSize+17)))
	require.Equal(t, "", digestOf(t, cfg, make([]byte, 4*BlockSize)))

	h, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, h.UpdateZeros(1<<30))
	sum, err := h.HexDigest()
	require.NoError(t, err)
	require.Equal(t, "", sum)
}

// P8: thread count does not change the digest.
func TestThreadInvariance(t *testing.T) {
	data := make([]byte, 10*BlockSize+42)
	for i := range data {
		data[i] = byte(i * 13)
	}

	var want string
	for _, threads := range []int{1, 2, 4, 8, 16, 32, 64} {
		got := digestOf(t, Config{Digest: "sha256", Threads: threads}, data)
		if want == "" {
			want = got
		} else {
			require.Equal(t, want, got, "threads=%d", threads)
		}
	}
}

// S3-shaped: a large zero run must not allocate per zero byte. This is a
// smoke test that it completes at all with a huge logical length and a
// small resident update; real allocation profiling is out of scope for a
// unit test.
func TestLargeZeroRunBoundedWork(t *testing.T) {
	h, err := New(Config{Digest: "sha256"})
	require.NoError(t, err)
	require.NoError(t, h.Update(bytes.Repeat([]byte("A"), 1<<20)))
	require.NoError(t, h.UpdateZeros(127<<20))
	sum, err := h.HexDigest()
	require.NoError(t, err)
	require.Len(t, sum, 64)
	require.Equal(t, uint64(1<<20+127<<20), h.Len())
}

func TestUnknownDigest(t *testing.T) {
	_, err := New(Config{Digest: "does-not-exist"})
	require.Error(t, err)
}
