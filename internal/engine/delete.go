package engine

import (
	"context"
	"fmt"

	"github.com/bamsammich/wrench/internal/event"
	"github.com/bamsammich/wrench/internal/fsys"
)

// remover unlinks entries post-order: files and symlinks as they are met,
// each directory once its subtree is gone. Symlinks are never followed.
type remover struct {
	fs   fsys.FS
	opts Options
}

func (r *remover) Pre(e Entry) (Action, error) {
	if e.IsDir() {
		return Descend, nil
	}
	if err := r.fs.Remove(e.Path); err != nil {
		return Continue, r.opts.failed(e.Path, err)
	}
	r.removed(e.Path)
	return Continue, nil
}

func (r *remover) Post(dir Entry) error {
	if err := r.fs.Rmdir(dir.Path); err != nil {
		return r.opts.failed(dir.Path, err)
	}
	r.removed(dir.Path)
	return nil
}

func (r *remover) removed(path string) {
	r.opts.Stats.AddEntriesRemoved(1)
	r.opts.emit(event.Event{Type: event.EntryRemoved, Path: path})
}

// deleteWalker removes everything, so filter options are dropped: a filtered
// delete could never remove the directories holding the skipped entries.
func deleteWalker(ctx context.Context, opts Options) *walker {
	opts = opts.unfiltered()
	return newWalker(ctx, opts, &remover{fs: opts.filesystem(), opts: opts}, depthFirst)
}

// RemoveAll deletes root and everything beneath it, children before parents.
// A file or symlink root is simply unlinked. The first failure stops the
// walk; entries already removed stay removed.
func RemoveAll(ctx context.Context, root string, opts Options) error {
	if err := deleteWalker(ctx, opts).walk(root); err != nil {
		return fmt.Errorf("remove %s: %w", root, err)
	}
	return nil
}

// RemoveAllAsync is the suspending form of RemoveAll. It returns at once;
// done receives the result.
func RemoveAllAsync(ctx context.Context, root string, opts Options, done func(error)) {
	startLoop(ctx, func(l *loop, k func(error)) {
		deleteWalker(ctx, opts).walkAsync(l, root, k)
	}, wrapDone(done, "remove %s", root))
}

// wrapDone adds the same context to an asynchronous result that the
// blocking form adds to its return value.
func wrapDone(done func(error), format string, args ...any) func(error) {
	return func(err error) {
		if done == nil {
			return
		}
		if err != nil {
			err = fmt.Errorf(format+": %w", append(args, err)...)
		}
		done(err)
	}
}
