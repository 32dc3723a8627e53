package digest

import "hash"

// nullHash is the synthetic primitive required by spec §4.1: it accepts any
// input and always produces a zero-length digest. The engine special-cases
// it (spec I5) so every equation in §3 collapses to the empty-string root,
// but the primitive itself just needs to behave like a well-formed,
// always-empty hash.Hash so it can flow through the same worker/stream code
// path as every other algorithm without a second implementation of the
// engine.
type nullHash struct{}

func newNull() hash.Hash { return nullHash{} }

func (nullHash) Write(p []byte) (int, error) { return len(p), nil }
func (nullHash) Sum(b []byte) []byte         { return b }
func (nullHash) Reset()                      {}
func (nullHash) Size() int                   { return 0 }
func (nullHash) BlockSize() int              { return 1 }

// IsNull reports whether alg names the null primitive, letting the engine
// short-circuit per spec I5/§4.3 without hashing anything.
func IsNull(alg string) bool {
	return alg == "null"
}
