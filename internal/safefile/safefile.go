// Package safefile reads log files without blocking on special files.
package safefile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotRegularFile is returned for directories, FIFOs, sockets and device
// nodes. Reading a serial device node such as /dev/ttyUSB0 as a file would
// block indefinitely, so it is refused here.
var ErrNotRegularFile = errors.New("not a regular file")

// ErrTooLarge is returned when a file exceeds the read limit.
var ErrTooLarge = errors.New("file too large")

// ErrRead wraps I/O errors that occur after the file was opened.
var ErrRead = errors.New("read failed")

// OpenRegular opens path for reading and verifies it is a regular file.
// Symlinks are followed; the target must be a regular file.
//
// The path is stat'ed before opening so that a FIFO never blocks the open
// call, and the descriptor is stat'ed again afterwards in case the file was
// replaced in between.
//
// The caller must close the returned file when done.
func OpenRegular(path string) (*os.File, os.FileInfo, error) {
	pre, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	if !pre.Mode().IsRegular() {
		return nil, nil, ErrNotRegularFile
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrNotRegularFile
	}

	return f, info, nil
}

// ReadFile reads a whole regular file in one pass.
// maxBytes <= 0 means no limit; otherwise ErrTooLarge is returned for
// larger files, including files that grow while being read.
func ReadFile(path string, maxBytes int64) ([]byte, error) {
	f, info, err := OpenRegular(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, info.Size(), maxBytes)
	}

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxBytes)
	}
	return data, nil
}
