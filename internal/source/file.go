package source

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/nirs/blkhash/internal/blkhash"
	"golang.org/x/sys/unix"
)

// FileDriver reads a seekable regular file, using SEEK_DATA/SEEK_HOLE to
// split it into alternating data/hole runs instead of reading the holes at
// all (spec §4.5(a)). Every data run it does read is post-scanned for an
// all-zero buffer and delivered as a zero extent instead, same as the pipe
// driver; the hole/zero distinction spec §3 draws is purely about which
// extents needed no I/O to discover.
type FileDriver struct {
	f         *os.File
	readSize  int
	keepCache bool
}

// NewFileDriver opens path for reading. keepCache controls the --cache flag
// (spec §6.2): when false, finished ranges are dropped from the OS page
// cache with an fadvise hint (spec §4.5(a)).
func NewFileDriver(path string, readSize int, keepCache bool) (*FileDriver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, blkhash.IOFailureError{Op: "open", Err: err}
	}
	if readSize <= 0 {
		readSize = ReadSize
	}
	return &FileDriver{f: f, readSize: readSize, keepCache: keepCache}, nil
}

func (d *FileDriver) Close() error {
	return d.f.Close()
}

func (d *FileDriver) Run(ctx context.Context, engine Engine) error {
	size, err := d.f.Seek(0, io.SeekEnd)
	if err != nil {
		return blkhash.IOFailureError{Op: "seek", Err: err}
	}

	var offset int64
	for offset < size {
		if err := ctx.Err(); err != nil {
			return blkhash.CancelledError{}
		}

		dataStart, holeStart, err := nextExtent(d.f, offset, size)
		if err != nil {
			return err
		}

		if dataStart > offset {
			// offset..dataStart is a hole: no bytes to read at all.
			if err := engine.UpdateZeros(uint64(dataStart - offset)); err != nil {
				return err
			}
			offset = dataStart
		}

		if err := d.readDataRun(ctx, engine, offset, holeStart); err != nil {
			return err
		}
		offset = holeStart
	}
	return nil
}

// nextExtent returns the bounds of the data run starting at or after
// offset: [dataStart, holeStart) is the next data extent (holeStart is size
// when the data runs to the end of the file), or (size, size) if the file
// has no more data after offset.
func nextExtent(f *os.File, offset, size int64) (dataStart, holeStart int64, err error) {
	dataStart, err = unix.Seek(int(f.Fd()), offset, unix.SEEK_DATA)
	if err != nil {
		if errors.Is(err, unix.ENXIO) {
			// No more data; the rest of the file is a hole.
			return size, size, nil
		}
		return 0, 0, blkhash.IOFailureError{Op: "SEEK_DATA", Err: err}
	}

	holeStart, err = unix.Seek(int(f.Fd()), dataStart, unix.SEEK_HOLE)
	if err != nil {
		return 0, 0, blkhash.IOFailureError{Op: "SEEK_HOLE", Err: err}
	}
	return dataStart, holeStart, nil
}

// readDataRun reads [start, end) in fixed-size buffers, scanning each
// buffer for an all-zero read (spec §4.5 "post-read zero scan") before
// deciding whether to deliver it as data or as a zero extent.
func (d *FileDriver) readDataRun(ctx context.Context, engine Engine, start, end int64) error {
	if _, err := d.f.Seek(start, io.SeekStart); err != nil {
		return blkhash.IOFailureError{Op: "seek", Err: err}
	}

	buf := make([]byte, d.readSize)
	remaining := end - start
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return blkhash.CancelledError{}
		}

		n := len(buf)
		if int64(n) > remaining {
			n = int(remaining)
		}
		read, err := io.ReadFull(d.f, buf[:n])
		if err != nil {
			return blkhash.IOFailureError{Op: "read", Err: err}
		}
		if err := deliver(engine, buf[:read]); err != nil {
			return err
		}
		remaining -= int64(read)
	}

	if !d.keepCache {
		// Best-effort: drop the range we just finished from the page
		// cache so a huge image doesn't evict the working set (spec
		// §4.5(a)). Failure here is never fatal to the checksum.
		_ = unix.Fadvise(int(d.f.Fd()), start, end-start, unix.FADV_DONTNEED)
	}
	return nil
}
