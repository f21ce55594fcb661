package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/bamsammich/wrench/internal/event"
	"github.com/bamsammich/wrench/internal/filter"
	"github.com/bamsammich/wrench/internal/fsys"
)

// Entry is one node met during a traversal. Its Info is read once, when the
// entry is first listed, and never refreshed.
type Entry struct {
	Path string // path handed to the filesystem
	Rel  string // path relative to the traversal root; "" for the root
	Info fsys.Info
}

// IsRoot reports whether e is the entry the traversal started from.
func (e Entry) IsRoot() bool { return e.Rel == "" }

// IsDir reports whether e is a real directory (not a symlink to one).
func (e Entry) IsDir() bool { return e.Info.Kind == fsys.Dir }

// Action tells the engine what to do after Pre.
type Action int

const (
	// Continue means the entry is handled; a directory is not entered.
	Continue Action = iota
	// Descend enters a directory. It is ignored for anything else.
	Descend
)

// Visitor is driven by both the blocking and the suspending engine. Pre
// runs for every entry in listing order, Post runs for a descended directory
// after its whole subtree is done. The suspending engine calls them one at a
// time, never concurrently.
type Visitor interface {
	Pre(e Entry) (Action, error)
	Post(dir Entry) error
}

// ListedVisitor is an optional extension notified once per descended
// directory with the children that passed the filters.
type ListedVisitor interface {
	Listed(dir Entry, children []Entry) error
}

// shape decides when a descended directory is entered.
type shape int

const (
	// depthFirst enters a directory as soon as Pre returns Descend.
	depthFirst shape = iota
	// siblingsFirst runs Pre on every sibling first, then enters the
	// descended ones in listing order.
	siblingsFirst
)

// walker holds the traversal policy for one operation. The blocking form
// recurses on the goroutine stack, so tree depth is bounded by the maximum
// goroutine stack size.
type walker struct {
	ctx     context.Context
	fs      fsys.FS
	opts    Options
	visitor Visitor
	shape   shape
	log     *slog.Logger
}

func newWalker(ctx context.Context, opts Options, v Visitor, sh shape) *walker {
	return &walker{
		ctx:     ctx,
		fs:      opts.filesystem(),
		opts:    opts,
		visitor: v,
		shape:   sh,
		log:     opts.logger(),
	}
}

// walk runs the visitor over the tree rooted at root on the calling goroutine.
func (w *walker) walk(root string) error {
	e, err := w.root(root)
	if err != nil {
		return err
	}
	down, err := w.enter(e)
	if err != nil || !down {
		return err
	}
	return w.descend(e)
}

func (w *walker) descend(dir Entry) error {
	names, err := w.list(dir)
	if err != nil {
		return err
	}

	var listed, pending []Entry
	for _, name := range names {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		if !w.admitName(dir, name) {
			continue
		}
		child, err := w.child(dir, name)
		if err != nil {
			return err
		}
		if !w.admit(child) {
			continue
		}
		listed = append(listed, child)

		down, err := w.enter(child)
		if err != nil {
			return err
		}
		switch {
		case !down:
		case w.shape == siblingsFirst:
			pending = append(pending, child)
		default:
			if err := w.descend(child); err != nil {
				return err
			}
		}
	}

	if err := w.listed(dir, listed); err != nil {
		return err
	}
	for _, child := range pending {
		if err := w.descend(child); err != nil {
			return err
		}
	}
	return w.visitor.Post(dir)
}

// root classifies the starting entry. The root is never filtered.
func (w *walker) root(path string) (Entry, error) {
	if err := w.ctx.Err(); err != nil {
		return Entry{}, err
	}
	return w.stat(path, "")
}

func (w *walker) child(dir Entry, name string) (Entry, error) {
	return w.stat(filepath.Join(dir.Path, name), filepath.Join(dir.Rel, name))
}

func (w *walker) stat(path, rel string) (Entry, error) {
	info, err := w.fs.Lstat(path)
	if err != nil {
		return Entry{}, err
	}
	w.opts.Stats.AddEntriesVisited(1)
	w.opts.emit(event.Event{Type: event.EntryVisited, Path: path, Size: info.Size})
	return Entry{Path: path, Rel: rel, Info: info}, nil
}

func (w *walker) list(dir Entry) ([]string, error) {
	if err := w.ctx.Err(); err != nil {
		return nil, err
	}
	names, err := w.fs.ReadDir(dir.Path)
	if err != nil {
		return nil, err
	}
	if w.opts.Order == Sorted {
		slices.Sort(names)
	}
	w.log.Debug("walk directory", "path", dir.Path, "entries", len(names))
	return names, nil
}

func (w *walker) enter(e Entry) (bool, error) {
	act, err := w.visitor.Pre(e)
	if err != nil {
		return false, err
	}
	return act == Descend && e.IsDir(), nil
}

func (w *walker) listed(dir Entry, children []Entry) error {
	lv, ok := w.visitor.(ListedVisitor)
	if !ok {
		return nil
	}
	return lv.Listed(dir, children)
}

// admitName applies the name-only rules before the entry is classified, so
// a hidden subtree costs no metadata query at all.
func (w *walker) admitName(dir Entry, name string) bool {
	ok := w.opts.Filter.MatchName(name) && !(w.opts.ExcludeHiddenUnix && filter.IsHidden(name))
	if !ok {
		w.opts.skipped(filepath.Join(dir.Path, name))
	}
	return ok
}

func (w *walker) admit(e Entry) bool {
	if w.opts.Filter.Match(e.Rel, e.IsDir(), e.Info.Size) {
		return true
	}
	w.opts.skipped(e.Path)
	return false
}
