package source

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPipeDriverData(t *testing.T) {
	content := []byte("the quick brown fox jumps over the lazy dog")
	driver := NewPipeDriver(bytes.NewReader(content), 8)

	engine := &recordingEngine{}
	require.NoError(t, driver.Run(context.Background(), engine))

	var got []byte
	for _, d := range engine.data {
		got = append(got, d...)
	}
	require.Equal(t, content, got)
}

func TestPipeDriverZeroRun(t *testing.T) {
	content := make([]byte, 64)
	driver := NewPipeDriver(bytes.NewReader(content), 16)

	engine := &recordingEngine{}
	require.NoError(t, driver.Run(context.Background(), engine))

	require.Empty(t, engine.data)
	var total uint64
	for _, z := range engine.zeros {
		total += z
	}
	require.Equal(t, uint64(64), total)
}

func TestPipeDriverEmpty(t *testing.T) {
	driver := NewPipeDriver(bytes.NewReader(nil), 16)

	engine := &recordingEngine{}
	require.NoError(t, driver.Run(context.Background(), engine))
	require.Empty(t, engine.data)
	require.Empty(t, engine.zeros)
}
