// Package source implements the three driver variants from spec §4.5: a
// seekable file using hole detection, a non-seekable pipe, and an
// extent-map client against an external image server. Each driver feeds an
// Engine with the same two calls regardless of backend, the way the
// teacher's storagedriver.StorageDriver interface lets one caller work
// against filesystem, s3, azure, or ipc backends without caring which one
// is underneath.
package source

import "context"

// ReadSize is the default buffer size for the file and pipe drivers (spec
// §4.5(a): "default 256 KiB").
const ReadSize = 256 * 1024

// Engine is the subset of *blkhash.Hash a driver needs; defined here as an
// interface so drivers can be tested against a fake without importing the
// engine package, and so the engine's internal buffering stays private to
// it.
type Engine interface {
	Update(data []byte) error
	UpdateZeros(count uint64) error
}

// Driver feeds an Engine from one image source, in strictly increasing
// offset order (spec §3 "Extent").
type Driver interface {
	// Run reads the entire image and delivers it to engine. It returns
	// UnexpectedEOFError, IOFailureError, ServerFailureError, or
	// CancelledError per spec §4.6/§7, or nil on a complete, successful
	// read.
	Run(ctx context.Context, engine Engine) error
}
