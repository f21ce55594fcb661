// Package linereader reads a file one line at a time through a fixed-size
// read window. Lines longer than the window are assembled in a growable
// buffer, so there is no line length limit.
package linereader

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/bamsammich/wrench/internal/fsys"
)

// DefaultBufferSize is the read window used when Open is given a size <= 0.
const DefaultBufferSize = 8192

// Reader yields the lines of a file without their trailing newline. A final
// line with no newline is still returned.
type Reader struct {
	r      *bufio.Reader
	closer io.Closer
	line   []byte
	ready  bool // line holds the next line
	done   bool
	err    error
}

// Open opens path for line reading with a read window of bufSize bytes.
func Open(path string, bufSize int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fsys.Wrap("open", path, err)
	}
	lr := New(f, bufSize)
	lr.closer = f
	return lr, nil
}

// New reads lines from r. Close on the returned Reader does not close r.
func New(r io.Reader, bufSize int) *Reader {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &Reader{r: bufio.NewReaderSize(r, bufSize)}
}

// HasNextLine reports whether another line is available. It reads ahead
// as far as the next newline or the end of input.
func (lr *Reader) HasNextLine() bool {
	if lr.ready {
		return true
	}
	if lr.done {
		return false
	}

	lr.line = lr.line[:0]
	for {
		chunk, err := lr.r.ReadSlice('\n')
		lr.line = append(lr.line, chunk...)
		switch {
		case err == nil:
			lr.line = bytes.TrimSuffix(lr.line, []byte{'\n'})
			lr.ready = true
			return true
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			lr.done = true
			lr.ready = len(lr.line) > 0
			return lr.ready
		default:
			lr.done = true
			lr.err = err
			return false
		}
	}
}

// NextLine returns the next line, or "" if there is none.
func (lr *Reader) NextLine() string {
	if !lr.HasNextLine() {
		return ""
	}
	lr.ready = false
	return string(lr.line)
}

// Err returns the first read error other than io.EOF.
func (lr *Reader) Err() error {
	return lr.err
}

// Close releases the underlying file when the Reader came from Open.
func (lr *Reader) Close() error {
	lr.done, lr.ready = true, false
	if lr.closer == nil {
		return nil
	}
	c := lr.closer
	lr.closer = nil
	return c.Close()
}
