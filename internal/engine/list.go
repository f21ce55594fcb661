package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/bamsammich/wrench/internal/event"
	"github.com/bamsammich/wrench/internal/fsys"
)

var errNotDir = errors.New("not a directory")

// lister reports relative paths one directory at a time: all of a
// directory's admitted children first, then each subdirectory in turn.
// Symlinks are listed but never entered.
type lister struct {
	opts    Options
	deliver func(batch []string)
}

func (*lister) Pre(e Entry) (Action, error) {
	switch {
	case e.IsDir():
		return Descend, nil
	case e.IsRoot():
		return Continue, &fsys.PathError{Op: "readdir", Path: e.Path, Kind: fsys.ErrIO, Err: errNotDir}
	}
	return Continue, nil
}

func (*lister) Post(Entry) error { return nil }

func (ls *lister) Listed(dir Entry, children []Entry) error {
	if len(children) == 0 {
		return nil
	}
	batch := make([]string, len(children))
	for i, child := range children {
		batch[i] = child.Rel
	}
	ls.opts.emit(event.Event{Type: event.ListBatch, Path: dir.Path, Size: int64(len(batch))})
	ls.deliver(batch)
	return nil
}

// ListTree returns the path of every entry under root, relative to root,
// directories included. For a tree holding bar.txt and foo/{bar/ipsum.js,
// dolor.md,lorem.txt} it returns
//
//	bar.txt foo foo/bar foo/dolor.md foo/lorem.txt foo/bar/ipsum.js
func ListTree(ctx context.Context, root string, opts Options) ([]string, error) {
	var paths []string
	ls := &lister{opts: opts, deliver: func(batch []string) {
		paths = append(paths, batch...)
	}}
	if err := newWalker(ctx, opts, ls, siblingsFirst).walk(root); err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}
	return paths, nil
}

// ListTreeAsync is the suspending form of ListTree. It returns at once and
// calls fn with one non-empty batch per directory, in the same order
// ListTree produces, then once with (nil, nil) when the walk is complete.
// On failure fn is called once with (nil, err) and not again.
func ListTreeAsync(ctx context.Context, root string, opts Options, fn func(batch []string, err error)) {
	ls := &lister{opts: opts, deliver: func(batch []string) {
		fn(batch, nil)
	}}
	startLoop(ctx, func(l *loop, k func(error)) {
		newWalker(ctx, opts, ls, siblingsFirst).walkAsync(l, root, k)
	}, wrapDone(func(err error) {
		fn(nil, err)
	}, "list %s", root))
}
