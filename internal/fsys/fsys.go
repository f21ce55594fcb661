// Package fsys is the filesystem surface the tree engine runs against: entry
// classification plus the primitive operations every directory operation is
// built from.
package fsys

import (
	"io"
	"os"
	"time"
)

// Kind identifies the kind of filesystem entry.
type Kind int

const (
	File Kind = iota
	Dir
	Symlink
)

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Dir:
		return "dir"
	case Symlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Info is the metadata of a single entry, read once with a no-follow stat.
type Info struct {
	ModTime time.Time
	AccTime time.Time
	Size    int64
	UID     uint32
	GID     uint32
	Mode    os.FileMode
	Kind    Kind
}

// FS is the set of primitives the traversal engine consumes. Every path is
// passed through as given; implementations must not follow a symbolic link
// in the final path element for Lstat, Remove, Lchown and Lchtimes.
type FS interface {
	// Lstat returns metadata for path without following a final symlink.
	Lstat(path string) (Info, error)

	// ReadDir returns the names in directory path, in the order the host
	// listing primitive produced them.
	ReadDir(path string) ([]string, error)

	// Mkdir creates a single directory.
	Mkdir(path string, perm os.FileMode) error

	// Remove unlinks a file or symbolic link.
	Remove(path string) error

	// Rmdir removes an empty directory.
	Rmdir(path string) error

	// Rename moves oldPath to newPath, replacing newPath if it exists.
	Rename(oldPath, newPath string) error

	// Open opens a file for reading.
	Open(path string) (io.ReadCloser, error)

	// Create creates or truncates a file for writing.
	Create(path string, perm os.FileMode) (io.WriteCloser, error)

	// Readlink returns the target string of a symbolic link.
	Readlink(path string) (string, error)

	// Symlink creates a symbolic link at path pointing to target.
	Symlink(target, path string) error

	// Chmod sets permission bits.
	Chmod(path string, mode os.FileMode) error

	// Lchown sets owner and group without following a final symlink.
	Lchown(path string, uid, gid int) error

	// Lchtimes sets access and modification times without following a
	// final symlink.
	Lchtimes(path string, atime, mtime time.Time) error
}

// Classify reports whether path is a file, directory or symbolic link. A
// symlink to a directory is a Symlink. Anything that is neither a directory
// nor a symlink (devices, fifos, sockets) is treated as a File; check
// Info.Mode.IsRegular before reading one.
func Classify(fsys FS, path string) (Kind, error) {
	info, err := fsys.Lstat(path)
	if err != nil {
		return File, err
	}
	return info.Kind, nil
}

func kindOf(mode os.FileMode) Kind {
	switch {
	case mode&os.ModeSymlink != 0:
		return Symlink
	case mode.IsDir():
		return Dir
	default:
		return File
	}
}
