package fsys

import (
	"io"
	"os"
	"time"
)

// Compile-time interface check.
var _ FS = Local{}

// Local is the host filesystem.
type Local struct{}

func (Local) Lstat(path string) (Info, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return Info{}, Wrap("lstat", path, err)
	}
	return infoFromFileInfo(fi), nil
}

func (Local) ReadDir(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Wrap("readdir", path, err)
	}
	defer f.Close()

	// Readdirnames keeps the order the kernel returned; os.ReadDir would sort.
	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, Wrap("readdir", path, err)
	}
	return names, nil
}

func (Local) Mkdir(path string, perm os.FileMode) error {
	return Wrap("mkdir", path, os.Mkdir(path, perm))
}

func (Local) Remove(path string) error {
	return Wrap("unlink", path, os.Remove(path))
}

func (Local) Rmdir(path string) error {
	return Wrap("rmdir", path, rmdir(path))
}

func (Local) Rename(oldPath, newPath string) error {
	return Wrap("rename", newPath, os.Rename(oldPath, newPath))
}

func (Local) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Wrap("open", path, err)
	}
	return f, nil
}

func (Local) Create(path string, perm os.FileMode) (io.WriteCloser, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return nil, Wrap("create", path, err)
	}
	return f, nil
}

func (Local) Readlink(path string) (string, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return "", Wrap("readlink", path, err)
	}
	return target, nil
}

func (Local) Symlink(target, path string) error {
	return Wrap("symlink", path, os.Symlink(target, path))
}

func (Local) Chmod(path string, mode os.FileMode) error {
	return Wrap("chmod", path, os.Chmod(path, mode))
}

func (Local) Lchown(path string, uid, gid int) error {
	return Wrap("lchown", path, lchown(path, uid, gid))
}

func (Local) Lchtimes(path string, atime, mtime time.Time) error {
	return Wrap("utimensat", path, lchtimes(path, atime, mtime))
}

func infoFromFileInfo(fi os.FileInfo) Info {
	info := Info{
		Size:    fi.Size(),
		Mode:    fi.Mode(),
		ModTime: fi.ModTime(),
		AccTime: fi.ModTime(),
		Kind:    kindOf(fi.Mode()),
	}
	fillStatFields(fi, &info)
	return info
}
