package engine

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bamsammich/wrench/internal/event"
	"github.com/bamsammich/wrench/internal/fsys"
)

// moder applies one mode to every file and directory, each directory after
// its subtree so the root is changed last. Symlinks are skipped: chmod would
// follow them out of the tree. A failed chmod does not stop the walk; the
// failures are logged and joined into the final error.
type moder struct {
	fs   fsys.FS
	opts Options
	mode os.FileMode
	errs []error
}

func (m *moder) Pre(e Entry) (Action, error) {
	switch e.Info.Kind {
	case fsys.Dir:
		return Descend, nil
	case fsys.Symlink:
		m.opts.skipped(e.Path)
	default:
		m.chmod(e.Path)
	}
	return Continue, nil
}

func (m *moder) Post(dir Entry) error {
	m.chmod(dir.Path)
	return nil
}

func (m *moder) chmod(path string) {
	if err := m.fs.Chmod(path, m.mode); err != nil {
		m.opts.logger().Warn("chmod failed", "path", path, "mode", m.mode, "error", err)
		m.errs = append(m.errs, m.opts.failed(path, err))
		return
	}
	m.opts.Stats.AddModesChanged(1)
	m.opts.emit(event.Event{Type: event.ModeChanged, Path: path})
}

// result folds the per-entry failures into the walk error.
func (m *moder) result(walkErr error) error {
	return errors.Join(append([]error{walkErr}, m.errs...)...)
}

// owner applies uid and gid to every entry, symlinks themselves included,
// each directory after its subtree. The first failure stops the walk.
type owner struct {
	fs       fsys.FS
	opts     Options
	uid, gid int
}

func (o *owner) Pre(e Entry) (Action, error) {
	if e.IsDir() {
		return Descend, nil
	}
	return Continue, o.lchown(e.Path)
}

func (o *owner) Post(dir Entry) error {
	return o.lchown(dir.Path)
}

func (o *owner) lchown(path string) error {
	if err := o.fs.Lchown(path, o.uid, o.gid); err != nil {
		return o.opts.failed(path, err)
	}
	o.opts.Stats.AddOwnersChanged(1)
	o.opts.emit(event.Event{Type: event.OwnerChanged, Path: path})
	return nil
}

// ChmodTree sets mode on every file and directory under root, root last.
// Listing and metadata failures stop the walk; individual chmod failures do
// not, and are returned joined once the walk is done.
func ChmodTree(ctx context.Context, root string, mode os.FileMode, opts Options) error {
	m := &moder{fs: opts.filesystem(), opts: opts, mode: mode}
	err := m.result(newWalker(ctx, opts, m, depthFirst).walk(root))
	if err != nil {
		return fmt.Errorf("chmod %s: %w", root, err)
	}
	return nil
}

// ChmodTreeAsync is the suspending form of ChmodTree.
func ChmodTreeAsync(ctx context.Context, root string, mode os.FileMode, opts Options, done func(error)) {
	m := &moder{fs: opts.filesystem(), opts: opts, mode: mode}
	finish := wrapDone(done, "chmod %s", root)
	startLoop(ctx, func(l *loop, k func(error)) {
		newWalker(ctx, opts, m, depthFirst).walkAsync(l, root, k)
	}, func(err error) {
		finish(m.result(err))
	})
}

// ChownTree sets uid and gid on every entry under root, root last, without
// following symlinks. The first failure stops the walk.
func ChownTree(ctx context.Context, root string, uid, gid int, opts Options) error {
	o := &owner{fs: opts.filesystem(), opts: opts, uid: uid, gid: gid}
	if err := newWalker(ctx, opts, o, depthFirst).walk(root); err != nil {
		return fmt.Errorf("chown %s: %w", root, err)
	}
	return nil
}

// ChownTreeAsync is the suspending form of ChownTree.
func ChownTreeAsync(ctx context.Context, root string, uid, gid int, opts Options, done func(error)) {
	o := &owner{fs: opts.filesystem(), opts: opts, uid: uid, gid: gid}
	startLoop(ctx, func(l *loop, k func(error)) {
		newWalker(ctx, opts, o, depthFirst).walkAsync(l, root, k)
	}, wrapDone(done, "chown %s", root))
}
