package source

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nirs/blkhash/internal/blkhash"
	"github.com/nirs/blkhash/internal/imageserver"
	"github.com/stretchr/testify/require"
)

// buildTestImage returns one data extent, one zero/hole-equivalent run, and
// a second data extent, matching the shape of scenario S2 in spec.md §8.
func buildTestImage() []byte {
	var content []byte
	content = append(content, filledBytes(32, 0xA1)...)
	content = append(content, make([]byte, 64)...)
	content = append(content, filledBytes(32, 0xB2)...)
	return content
}

func digestThrough(t *testing.T, driver Driver) string {
	t.Helper()
	h, err := blkhash.New(blkhash.Config{BlockSize: 16, Threads: 2})
	require.NoError(t, err)
	require.NoError(t, driver.Run(context.Background(), h))
	sum, err := h.HexDigest()
	require.NoError(t, err)
	return sum
}

// TestFormatInvariance exercises spec.md §8 P1/S4: the same logical bytes
// must hash identically whether delivered by the file driver (which
// discovers the zero run via a post-read scan of data it actually read),
// the pipe driver (same scan, non-seekable source), or the extent-map
// driver (told about the zero run up front as a hole extent, so it is
// never read at all).
func TestFormatInvariance(t *testing.T) {
	content := buildTestImage()

	path := filepath.Join(t.TempDir(), "image")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	fileDriver, err := NewFileDriver(path, 16, true)
	require.NoError(t, err)
	defer fileDriver.Close()
	fileDigest := digestThrough(t, fileDriver)

	pipeDriver := NewPipeDriver(bytes.NewReader(content), 16)
	pipeDigest := digestThrough(t, pipeDriver)

	remote := &fakeRemote{
		data: content,
		extents: []imageserver.Extent{
			{Offset: 0, Length: 32, Kind: imageserver.KindData},
			{Offset: 32, Length: 64, Kind: imageserver.KindHole},
			{Offset: 96, Length: 32, Kind: imageserver.KindData},
		},
	}
	extentDriver := NewExtentDriver(remote, 16, 4)
	extentDigest := digestThrough(t, extentDriver)

	require.Equal(t, fileDigest, pipeDigest, "file and pipe digests must match (spec P1)")
	require.Equal(t, fileDigest, extentDigest, "file and extent-map digests must match (spec P1)")
}
