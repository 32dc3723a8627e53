package imageserver

import (
	"errors"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// memSource is an in-memory Source backing the round-trip tests, grounded
// on the same pattern as the teacher's storagedriver/inmemory fixture used
// to test its ipc client/server pair without a real backend.
type memSource struct {
	data    []byte
	extents []Extent
}

func (s *memSource) Extents() ([]Extent, error) {
	return s.extents, nil
}

func (s *memSource) ReadAt(p []byte, offset int64) (int, error) {
	if offset >= int64(len(s.data)) {
		return 0, errors.New("offset past end of image")
	}
	n := copy(p, s.data[offset:])
	return n, nil
}

func startTestServer(t *testing.T, source Source) string {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "image.sock")

	l, err := net.Listen("unix", socket)
	require.NoError(t, err)

	server := NewServer(source)
	go func() { _ = server.Serve(l) }()
	t.Cleanup(func() { _ = server.Close() })

	return socket
}

func TestClientExtentsRoundTrip(t *testing.T) {
	src := &memSource{
		data: filledBytes(64, 0xCD),
		extents: []Extent{
			{Offset: 0, Length: 32, Kind: KindData},
			{Offset: 32, Length: 32, Kind: KindZero},
		},
	}
	socket := startTestServer(t, src)

	client, err := Dial("unix", socket)
	require.NoError(t, err)
	defer client.Close()

	extents, err := client.Extents()
	require.NoError(t, err)
	require.Equal(t, src.extents, extents)
}

func TestClientReadAt(t *testing.T) {
	src := &memSource{data: filledBytes(64, 0xEF)}
	socket := startTestServer(t, src)

	client, err := Dial("unix", socket)
	require.NoError(t, err)
	defer client.Close()

	data, err := client.ReadAt(0, 16)
	require.NoError(t, err)
	require.Equal(t, filledBytes(16, 0xEF), data)
}

func TestClientReadAtError(t *testing.T) {
	src := &memSource{data: filledBytes(8, 0x01)}
	socket := startTestServer(t, src)

	client, err := Dial("unix", socket)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.ReadAt(100, 16)
	require.Error(t, err)
}

func filledBytes(n int, b byte) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = b
	}
	return buf
}
