//go:build linux

package fsys

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Preallocate reserves size bytes for w when it is a local file, without
// changing its length. Errors are ignored as fallocate is not supported on
// all filesystems.
//
//nolint:gosec // G115: fd values are small non-negative integers
func Preallocate(w io.Writer, size int64) {
	f, ok := w.(*os.File)
	if !ok || size <= 0 {
		return
	}
	//nolint:errcheck // fallocate is advisory; not supported on all filesystems
	unix.Fallocate(int(f.Fd()), unix.FALLOC_FL_KEEP_SIZE, 0, size)
}
