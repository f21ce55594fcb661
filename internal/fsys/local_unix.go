//go:build unix

package fsys

import (
	"time"

	"golang.org/x/sys/unix"
)

// rmdir uses rmdir(2) directly; os.Remove would also unlink a file that
// raced into the directory's place.
func rmdir(path string) error {
	return ignoringEINTR(func() error { return unix.Rmdir(path) })
}

func lchown(path string, uid, gid int) error {
	return ignoringEINTR(func() error { return unix.Lchown(path, uid, gid) })
}

func lchtimes(path string, atime, mtime time.Time) error {
	times := []unix.Timespec{
		unix.NsecToTimespec(atime.UnixNano()),
		unix.NsecToTimespec(mtime.UnixNano()),
	}
	return unix.UtimesNanoAt(unix.AT_FDCWD, path, times, unix.AT_SYMLINK_NOFOLLOW)
}

func ignoringEINTR(fn func() error) error {
	for {
		err := fn()
		if err != unix.EINTR {
			return err
		}
	}
}
