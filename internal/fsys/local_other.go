//go:build !unix

package fsys

import (
	"os"
	"time"
)

func rmdir(path string) error {
	return os.Remove(path)
}

func lchown(path string, uid, gid int) error {
	return os.Lchown(path, uid, gid)
}

// Without utimensat there is no no-follow variant; symlink times are set on
// the target.
func lchtimes(path string, atime, mtime time.Time) error {
	return os.Chtimes(path, atime, mtime)
}
