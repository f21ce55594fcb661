//go:build unix

package fsys

import (
	"errors"

	"golang.org/x/sys/unix"
)

// errnoKind classifies a raw errno. syscall.Errno reports ENOTEMPTY as
// fs.ErrExist, so the errno is mapped before the io/fs sentinels are tried.
func errnoKind(err error) (error, bool) {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return nil, false
	}
	switch errno {
	case unix.ENOENT:
		return ErrNotFound, true
	case unix.EACCES, unix.EPERM:
		return ErrPermission, true
	case unix.EEXIST:
		return ErrExist, true
	default:
		return ErrIO, true
	}
}
