package source

import (
	"context"
	"fmt"

	"github.com/nirs/blkhash/internal/blkhash"
	"github.com/nirs/blkhash/internal/imageserver"
	"golang.org/x/sync/semaphore"
)

// remoteSource is the subset of *imageserver.Client an ExtentDriver needs;
// defined here so tests can substitute a fake without dialing a socket.
type remoteSource interface {
	Extents() ([]imageserver.Extent, error)
	ReadAt(offset, length int64) ([]byte, error)
}

// ExtentDriver drives an image exposed by an external image server (spec
// §4.5(c), §6.3): the server already knows the extent map, so this driver
// never seeks — it walks the map the server returned and, for each data
// extent, issues parallel chunk reads
// bounded to queueDepth in flight, the way blkhash's own Python prototype
// keeps a deque of in-flight Futures and pops them off strictly in order
// (original_source/test/blkhash_flat.py's HasherPool). That FIFO pop is
// what gives ordering without a reorder buffer: a chunk is only delivered
// once every chunk before it has already been delivered. Each data chunk
// still gets the post-read zero scan, so an all-zero chunk reaches the
// engine through UpdateZeros.
type ExtentDriver struct {
	client     remoteSource
	readSize   int64
	queueDepth int64
}

// NewExtentDriver wraps client. readSize bounds one read request's size;
// queueDepth bounds how many read requests are outstanding at once (spec
// §6.2 "--queue-depth").
func NewExtentDriver(client remoteSource, readSize int64, queueDepth int) *ExtentDriver {
	if readSize <= 0 {
		readSize = ReadSize
	}
	if queueDepth <= 0 {
		queueDepth = 1
	}
	return &ExtentDriver{client: client, readSize: readSize, queueDepth: int64(queueDepth)}
}

type chunkResult struct {
	data []byte
	err  error
}

// future is one outstanding read, resolved on its own goroutine. offset and
// length are the request that was issued, kept around so a short read can
// be reported with the exact offset it happened at (spec §4.6
// UnexpectedEOF).
type future struct {
	offset int64
	length int64
	result chan chunkResult
}

func (d *ExtentDriver) Run(ctx context.Context, engine Engine) error {
	extents, err := d.client.Extents()
	if err != nil {
		return blkhash.ServerFailureError{Stderr: err.Error()}
	}

	sem := semaphore.NewWeighted(d.queueDepth)
	var pending []*future

	// drain delivers futures from the front of pending until it hits one
	// that hasn't resolved yet, so ordering is preserved without ever
	// blocking on a chunk before the chunks ahead of it are delivered.
	deliverFuture := func(f *future, res chunkResult) error {
		if res.err != nil {
			return res.err
		}
		if int64(len(res.data)) != f.length {
			return blkhash.UnexpectedEOFError{Offset: f.offset + int64(len(res.data)), Expected: f.length}
		}
		return deliver(engine, res.data)
	}

	drain := func(all bool) error {
		for len(pending) > 0 {
			f := pending[0]
			if !all {
				select {
				case res := <-f.result:
					pending = pending[1:]
					if err := deliverFuture(f, res); err != nil {
						return err
					}
					continue
				default:
					return nil
				}
			}
			res := <-f.result
			pending = pending[1:]
			if err := deliverFuture(f, res); err != nil {
				return err
			}
		}
		return nil
	}

	submit := func(offset, length int64) error {
		if err := sem.Acquire(ctx, 1); err != nil {
			return blkhash.CancelledError{}
		}
		f := &future{offset: offset, length: length, result: make(chan chunkResult, 1)}
		go func() {
			defer sem.Release(1)
			data, err := d.client.ReadAt(offset, length)
			f.result <- chunkResult{data: data, err: err}
		}()
		pending = append(pending, f)
		return drain(false)
	}

	for _, ext := range extents {
		if err := ctx.Err(); err != nil {
			return blkhash.CancelledError{}
		}

		switch ext.Kind {
		case imageserver.KindZero, imageserver.KindHole:
			if err := drain(true); err != nil {
				return wrapServerErr(err)
			}
			if err := engine.UpdateZeros(uint64(ext.Length)); err != nil {
				return err
			}
		case imageserver.KindData:
			offset := ext.Offset
			remaining := ext.Length
			for remaining > 0 {
				n := d.readSize
				if n > remaining {
					n = remaining
				}
				if err := submit(offset, n); err != nil {
					return wrapServerErr(err)
				}
				offset += n
				remaining -= n
			}
		default:
			return blkhash.ServerFailureError{Stderr: fmt.Sprintf("unknown extent kind %v", ext.Kind)}
		}
	}

	if err := drain(true); err != nil {
		return wrapServerErr(err)
	}
	return nil
}

// wrapServerErr classifies a chunk-read failure as ServerFailureError
// unless it is already one of the driver's own typed errors (e.g.
// CancelledError from a context cancellation reaching into submit).
func wrapServerErr(err error) error {
	switch err.(type) {
	case blkhash.CancelledError, blkhash.ServerFailureError, blkhash.IOFailureError, blkhash.UnexpectedEOFError:
		return err
	default:
		return blkhash.ServerFailureError{Stderr: err.Error()}
	}
}
