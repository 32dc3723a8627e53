package blkhash

import "fmt"

// AlreadyFinalizedError is returned by Update/UpdateZeros after Finalize has
// run (spec I4, §7).
type AlreadyFinalizedError struct{}

func (AlreadyFinalizedError) Error() string {
	return "blkhash: engine already finalized"
}

// UnexpectedEOFError is returned by a source driver when the underlying
// stream produced fewer bytes than the image's declared length (spec §4.6,
// §7).
type UnexpectedEOFError struct {
	Offset   int64
	Expected int64
}

func (e UnexpectedEOFError) Error() string {
	return fmt.Sprintf("unexpected end of input at offset %d, expected %d bytes", e.Offset, e.Expected)
}

// IOFailureError wraps an underlying read/connect/socket error (spec §7).
type IOFailureError struct {
	Op  string
	Err error
}

func (e IOFailureError) Error() string {
	return fmt.Sprintf("i/o failure during %s: %v", e.Op, e.Err)
}

func (e IOFailureError) Unwrap() error { return e.Err }

// ServerFailureError is returned when an image server exits unexpectedly
// (spec §7); it carries the server's last-known stderr for diagnosis.
type ServerFailureError struct {
	Stderr string
}

func (e ServerFailureError) Error() string {
	return fmt.Sprintf("image server failed: %s", e.Stderr)
}

// CancelledError is returned when a run is aborted by signal (spec §5, §7).
type CancelledError struct{}

func (CancelledError) Error() string {
	return "cancelled"
}
