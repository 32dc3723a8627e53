package source

import (
	"context"
	"io"

	"github.com/nirs/blkhash/internal/blkhash"
)

// PipeDriver reads a non-seekable stream (standard input, a FIFO, a socket)
// in fixed-size buffers. It cannot use hole detection (spec §4.5(b)): every
// byte is read, data or not. It still benefits from the post-read zero
// scan, same as FileDriver.
type PipeDriver struct {
	r        io.Reader
	readSize int
}

// NewPipeDriver wraps r. r is read to EOF; EOF is the only way the driver
// learns the image's length.
func NewPipeDriver(r io.Reader, readSize int) *PipeDriver {
	if readSize <= 0 {
		readSize = ReadSize
	}
	return &PipeDriver{r: r, readSize: readSize}
}

func (d *PipeDriver) Run(ctx context.Context, engine Engine) error {
	buf := make([]byte, d.readSize)
	for {
		if err := ctx.Err(); err != nil {
			return blkhash.CancelledError{}
		}

		n, err := d.r.Read(buf)
		if n > 0 {
			if derr := deliver(engine, buf[:n]); derr != nil {
				return derr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return blkhash.IOFailureError{Op: "read", Err: err}
		}
	}
}
