package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/bamsammich/wrench/internal/fsys"
)

const copyBufferSize = 256 << 10

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, copyBufferSize)
		return &b
	},
}

// errChecksum marks a destination file whose digest differs from the bytes read.
var errChecksum = errors.New("checksum mismatch")

// tmpPath returns a hidden, unique sibling of dst for the in-progress write.
func tmpPath(dst string) string {
	dir, base := filepath.Split(dst)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.wrench-tmp", base, uuid.New().String()[:8]))
}

// copyFile writes the full contents of e to a temporary sibling of dst and
// renames it into place, so dst never holds a partial file.
func (c *copier) copyFile(e Entry, dst string) (int64, error) {
	in, err := c.fs.Open(e.Path)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	perm := defaultFileMode
	if c.cfg.PreserveMode {
		perm = e.Info.Mode.Perm()
	}

	tmp := tmpPath(dst)
	out, err := c.fs.Create(tmp, perm)
	if err != nil {
		return 0, err
	}
	fsys.Preallocate(out, e.Info.Size)
	committed := false
	defer func() {
		if !committed {
			_ = c.fs.Remove(tmp) // no-op after rename
		}
	}()

	var src io.Reader = limitReader(c.ctx, in, c.limiter)
	var h *blake3.Hasher
	if c.cfg.Verify {
		h = blake3.New()
		src = io.TeeReader(src, h)
	}

	n, err := copyData(out, src, e.Path, tmp)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fsys.Wrap("close", tmp, closeErr)
	}
	if err != nil {
		return n, err
	}

	// Create is subject to umask; set the exact source bits.
	if c.cfg.PreserveMode {
		if err := c.fs.Chmod(tmp, perm); err != nil {
			return n, err
		}
	}
	if h != nil {
		if err := c.verify(tmp, h.Sum(nil)); err != nil {
			return n, err
		}
	}
	if err := c.fs.Rename(tmp, dst); err != nil {
		return n, err
	}
	committed = true
	return n, nil
}

// copyData is a plain read-then-write loop over a pooled buffer. It never
// hands the pair to io.Copy, which could pick a kernel offload path that
// shares extents between source and destination.
func copyData(dst io.Writer, src io.Reader, srcPath, dstPath string) (int64, error) {
	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)
	buf := *bufp

	var total int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			w, err := dst.Write(buf[:n])
			total += int64(w)
			if err == nil && w < n {
				err = io.ErrShortWrite
			}
			if err != nil {
				return total, fsys.Wrap("write", dstPath, err)
			}
		}
		if readErr == io.EOF {
			return total, nil
		}
		if readErr != nil {
			return total, fsys.Wrap("read", srcPath, readErr)
		}
	}
}

func (c *copier) verify(path string, want []byte) error {
	got, err := hashFile(c.fs, path)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return &fsys.PathError{Op: "verify", Path: path, Kind: fsys.ErrIO, Err: errChecksum}
	}
	return nil
}
