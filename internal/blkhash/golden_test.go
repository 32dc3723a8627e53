package blkhash

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// Golden values computed independently from spec §3/§6.1's equations
// (64 streams, SHA-256, 8-byte little-endian length trailer) rather than
// lifted from any single reference script: original_source/test/blkhash_flat.py
// implements the trailer but not the 64-stream fan-out (it is a 1-stream
// simplification), while the STREAMS=64 constant only appears in the
// benchmark drivers that call the compiled C library rather than
// reimplementing it in Python. These values pin this package's own
// implementation of the documented algorithm so a future change that
// silently drifts from spec §3/§6.1 is caught.

func TestGoldenS2(t *testing.T) {
	data := bytes.Repeat([]byte{'A'}, 32*1024)
	data = append(data, make([]byte, 64*1024)...) // hole, zero bytes either way
	data = append(data, make([]byte, 32*1024)...)
	data = append(data, bytes.Repeat([]byte{'E'}, 32*1024)...)
	data = append(data, make([]byte, 64*1024)...)

	got := digestOf(t, Config{Digest: "sha256"}, data)
	require.Equal(t, "a1d07db69e155ccb89dab4da2b974a60706ddfa0cb72f33cabe9caeab84515d5", got)
}

func TestGoldenZeroBlock(t *testing.T) {
	got := digestOf(t, Config{Digest: "sha256"}, make([]byte, BlockSize))
	require.Equal(t, "b4cbf6be257df5a34b96674e8e822642bb9e42bbb9db065e64a193b136e2a2e3", got)
}

func TestGoldenMixed(t *testing.T) {
	data := append(bytes.Repeat([]byte{'A'}, 1024), make([]byte, 2048)...)
	got := digestOf(t, Config{Digest: "sha256"}, data)
	require.Equal(t, "a1d677af3525e405bd5035eeabc74b9db906db65062b2c6f285b4aed3c1115a8", got)
}

func TestGoldenPartition(t *testing.T) {
	data := make([]byte, 5*BlockSize+123)
	for i := range data {
		data[i] = byte(i * 7)
	}
	got := digestOf(t, Config{Digest: "sha256"}, data)
	require.Equal(t, "f4213c38525a064e7a85cfe807c5bc1d97bdfe9d5fe8a999277371d31f60c148", got)
}

func TestGoldenThreadsData(t *testing.T) {
	data := make([]byte, 10*BlockSize+42)
	for i := range data {
		data[i] = byte(i * 13)
	}
	got := digestOf(t, Config{Digest: "sha256"}, data)
	require.Equal(t, "20e2e5c2616680a18d86ca0f42e643f6ddf62a7cded374ba15fa462dbab126fc", got)
}

func TestGoldenLengthTrailer(t *testing.T) {
	short := digestOf(t, Config{Digest: "sha256"}, make([]byte, BlockSize))
	long := digestOf(t, Config{Digest: "sha256"}, make([]byte, BlockSize+1))
	require.Equal(t, "b4cbf6be257df5a34b96674e8e822642bb9e42bbb9db065e64a193b136e2a2e3", short)
	require.Equal(t, "c032a15bb5593237dacdccfb55f91a07a622174285191d110cb34492c0edff6f", long)
}
