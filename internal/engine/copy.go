package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"github.com/bamsammich/wrench/internal/event"
	"github.com/bamsammich/wrench/internal/fsys"
)

// CopyConfig describes a tree copy. The zero value copies everything and
// replaces an existing destination directory wholesale.
type CopyConfig struct {
	Options
	PreserveFiles      bool  // merge into the destination, keeping entries that already exist
	PreserveTimestamps bool  // carry atime/mtime over to every copied entry
	PreserveMode       bool  // regular files keep source permission bits instead of the default creation mode
	Verify             bool  // compare BLAKE3 digests of the bytes read and the file written
	BWLimit            int64 // bytes per second across the whole copy; 0 means unlimited
}

// defaultFileMode is the creation mode for copied files, before umask.
const defaultFileMode os.FileMode = 0o666

// ErrDestinationInsideSource is returned when the destination lies within
// the source tree, which would make the copy chase its own output.
var ErrDestinationInsideSource = errors.New("destination is inside source")

// ErrSourceInsideDestination is returned when the destination is an
// ancestor of the source; clearing it would delete the source.
var ErrSourceInsideDestination = errors.New("source is inside destination")

type copier struct {
	ctx     context.Context
	fs      fsys.FS
	cfg     CopyConfig
	dst     string
	limiter *rate.Limiter
	created map[string]bool // rel paths of directories this copy made
}

func newCopier(ctx context.Context, dst string, cfg CopyConfig) *copier {
	c := &copier{
		ctx:     ctx,
		fs:      cfg.filesystem(),
		cfg:     cfg,
		dst:     dst,
		created: make(map[string]bool),
	}
	if cfg.BWLimit > 0 {
		c.limiter = NewBWLimiter(cfg.BWLimit)
	}
	return c
}

func (c *copier) walker() *walker {
	return newWalker(c.ctx, c.cfg.Options, c, depthFirst)
}

func (c *copier) target(e Entry) string {
	return filepath.Join(c.dst, e.Rel)
}

func (c *copier) Pre(e Entry) (Action, error) {
	target := c.target(e)
	switch e.Info.Kind {
	case fsys.Dir:
		return Descend, c.mkdir(e, target)
	case fsys.Symlink:
		return Continue, c.symlink(e, target)
	default:
		return Continue, c.file(e, target)
	}
}

// Post fixes up a directory once its children are written: the exact
// source mode (it was created owner-writable) and, if asked, its times.
func (c *copier) Post(dir Entry) error {
	target := c.target(dir)
	if c.created[dir.Rel] {
		if err := c.fs.Chmod(target, dir.Info.Mode.Perm()); err != nil {
			return c.cfg.failed(target, err)
		}
	}
	return c.stamp(dir, target)
}

func (c *copier) mkdir(e Entry, target string) error {
	err := c.fs.Mkdir(target, e.Info.Mode.Perm()|0o700)
	if err == nil {
		c.created[e.Rel] = true
		c.cfg.Stats.AddDirsCreated(1)
		c.cfg.emit(event.Event{Type: event.DirCreated, Path: target})
		return nil
	}
	if c.cfg.PreserveFiles && errors.Is(err, fsys.ErrExist) {
		if info, statErr := c.fs.Lstat(target); statErr == nil && info.Kind == fsys.Dir {
			return nil
		}
	}
	return c.cfg.failed(target, err)
}

func (c *copier) symlink(e Entry, target string) error {
	if keep, err := c.keep(target); keep || err != nil {
		return err
	}
	link, err := c.fs.Readlink(e.Path)
	if err != nil {
		return c.cfg.failed(e.Path, err)
	}
	if err := c.fs.Symlink(link, target); err != nil {
		return c.cfg.failed(target, err)
	}
	c.cfg.Stats.AddSymlinksCreated(1)
	c.cfg.emit(event.Event{Type: event.SymlinkCreated, Path: target})
	return c.stamp(e, target)
}

func (c *copier) file(e Entry, target string) error {
	// Fifos, devices and sockets have no contents to copy; opening a fifo
	// would block until a writer shows up.
	if !e.Info.Mode.IsRegular() {
		c.cfg.logger().Debug("skip special file", "path", e.Path, "type", e.Info.Mode.Type().String())
		c.cfg.skipped(e.Path)
		return nil
	}
	if keep, err := c.keep(target); keep || err != nil {
		return err
	}
	n, err := c.copyFile(e, target)
	if err != nil {
		return c.cfg.failed(target, err)
	}
	c.cfg.Stats.AddFilesCopied(1)
	c.cfg.Stats.AddBytesCopied(n)
	c.cfg.emit(event.Event{Type: event.FileCopied, Path: target, Size: n})
	return c.stamp(e, target)
}

// keep reports whether an existing non-directory destination entry must be
// left alone.
func (c *copier) keep(target string) (bool, error) {
	if !c.cfg.PreserveFiles {
		return false, nil
	}
	_, err := c.fs.Lstat(target)
	switch {
	case err == nil:
		c.cfg.skipped(target)
		return true, nil
	case errors.Is(err, fsys.ErrNotFound):
		return false, nil
	default:
		return false, c.cfg.failed(target, err)
	}
}

func (c *copier) stamp(e Entry, target string) error {
	if !c.cfg.PreserveTimestamps {
		return nil
	}
	if err := c.fs.Lchtimes(target, e.Info.AccTime, e.Info.ModTime); err != nil {
		return c.cfg.failed(target, err)
	}
	return nil
}

// clear removes an existing destination directory unless the copy merges.
func (c *copier) clear() error {
	if c.cfg.PreserveFiles {
		return nil
	}
	info, err := c.fs.Lstat(c.dst)
	switch {
	case errors.Is(err, fsys.ErrNotFound):
		return nil
	case err != nil:
		return err
	case info.Kind != fsys.Dir:
		return nil
	}
	return deleteWalker(c.ctx, c.cfg.Options).walk(c.dst)
}

func (c *copier) clearAsync(l *loop, k func(error)) {
	if c.cfg.PreserveFiles {
		k(nil)
		return
	}
	await(l, func() (fsys.Info, error) {
		return c.fs.Lstat(c.dst)
	}, func(info fsys.Info, err error) {
		switch {
		case errors.Is(err, fsys.ErrNotFound):
			k(nil)
		case err != nil:
			k(err)
		case info.Kind != fsys.Dir:
			k(nil)
		default:
			deleteWalker(c.ctx, c.cfg.Options).walkAsync(l, c.dst, k)
		}
	})
}

// inside reports whether dst is src or lies beneath it.
func inside(src, dst string) bool {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return false
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absSrc, absDst)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// checkOverlap rejects source and destination trees that contain each other.
func checkOverlap(src, dst string) error {
	switch {
	case inside(src, dst):
		return ErrDestinationInsideSource
	case inside(dst, src):
		return ErrSourceInsideDestination
	}
	return nil
}

// CopyTree recreates src at dst: directories with the source mode, symlinks
// with the same target string, files with full contents. An existing
// destination directory is deleted first unless PreserveFiles is set. The
// first failure stops the copy; whatever was written stays.
func CopyTree(ctx context.Context, src, dst string, cfg CopyConfig) error {
	if err := checkOverlap(src, dst); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	c := newCopier(ctx, dst, cfg)
	if err := c.clear(); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := c.walker().walk(src); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return nil
}

// CopyTreeAsync is the suspending form of CopyTree. It returns at once;
// done receives the result.
func CopyTreeAsync(ctx context.Context, src, dst string, cfg CopyConfig, done func(error)) {
	finish := wrapDone(done, "copy %s to %s", src, dst)
	if err := checkOverlap(src, dst); err != nil {
		go finish(err)
		return
	}
	startLoop(ctx, func(l *loop, k func(error)) {
		c := newCopier(ctx, dst, cfg)
		c.clearAsync(l, func(err error) {
			if err != nil {
				k(err)
				return
			}
			c.walker().walkAsync(l, src, k)
		})
	}, finish)
}
