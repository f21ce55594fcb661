package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bamsammich/wrench/internal/event"
	"github.com/bamsammich/wrench/internal/fsys"
)

// MkdirAll creates path and any missing parents with perm. An existing
// entry at path counts as success, whatever its kind.
func MkdirAll(path string, perm os.FileMode, opts Options) error {
	if err := mkdirAll(opts.filesystem(), path, perm, opts); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

func mkdirAll(fs fsys.FS, path string, perm os.FileMode, opts Options) error {
	err := fs.Mkdir(path, perm)
	switch {
	case err == nil:
		opts.Stats.AddDirsCreated(1)
		opts.emit(event.Event{Type: event.DirCreated, Path: path})
		return nil
	case errors.Is(err, fsys.ErrExist):
		return nil
	case !errors.Is(err, fsys.ErrNotFound):
		return err
	}

	parent := filepath.Dir(path)
	if parent == path || parent == "." {
		return err
	}
	if err := mkdirAll(fs, parent, perm, opts); err != nil {
		return err
	}
	if err := fs.Mkdir(path, perm); err != nil {
		if errors.Is(err, fsys.ErrExist) {
			return nil
		}
		return err
	}
	opts.Stats.AddDirsCreated(1)
	opts.emit(event.Event{Type: event.DirCreated, Path: path})
	return nil
}
