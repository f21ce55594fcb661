// Package wrench performs recursive operations on local filesystem trees:
// delete, copy, chmod, chown, list and mkdir -p. Every tree operation
// comes in a blocking form and a suspending form that returns at once and
// reports through a callback. The two forms visit entries in the same order
// and produce the same result; the suspending form never has more than one
// filesystem call outstanding.
package wrench

import (
	"context"
	"os"

	"github.com/bamsammich/wrench/internal/engine"
	"github.com/bamsammich/wrench/internal/event"
	"github.com/bamsammich/wrench/internal/filter"
	"github.com/bamsammich/wrench/internal/fsys"
	"github.com/bamsammich/wrench/internal/linereader"
	"github.com/bamsammich/wrench/internal/stats"
)

type (
	// Options are shared by every tree operation.
	Options = engine.Options
	// CopyConfig describes a tree copy.
	CopyConfig = engine.CopyConfig
	// Order controls the order of names within one directory.
	Order = engine.Order

	// FS is the set of filesystem primitives the engine relies on.
	FS = fsys.FS
	// Local is the host filesystem.
	Local = fsys.Local
	// Info is the metadata of one entry, read without following symlinks.
	Info = fsys.Info
	// Kind classifies an entry as a file, directory or symlink.
	Kind = fsys.Kind
	// PathError carries the failed primitive, its path and the error kind.
	PathError = fsys.PathError

	// Filter is an ordered chain of include/exclude rules.
	Filter = filter.Chain
	// Event reports progress on a single entry.
	Event = event.Event
	// EventType identifies the kind of Event.
	EventType = event.Type
	// Stats counts the work done by an operation.
	Stats = stats.Collector
	// StatsSnapshot is a point-in-time read of Stats.
	StatsSnapshot = stats.Snapshot

	// LineReader yields the lines of a file.
	LineReader = linereader.Reader
)

const (
	Sorted = engine.Sorted
	Native = engine.Native

	File    = fsys.File
	Dir     = fsys.Dir
	Symlink = fsys.Symlink
)

// Error kinds; match them with errors.Is.
var (
	ErrNotFound   = fsys.ErrNotFound
	ErrPermission = fsys.ErrPermission
	ErrExist      = fsys.ErrExist
	ErrIO         = fsys.ErrIO

	ErrDestinationInsideSource = engine.ErrDestinationInsideSource
	ErrSourceInsideDestination = engine.ErrSourceInsideDestination
)

// Classify reports the kind of the entry at path without following symlinks.
func Classify(fs FS, path string) (Kind, error) {
	if fs == nil {
		fs = Local{}
	}
	return fsys.Classify(fs, path)
}

// NewFilter returns an empty filter chain that admits everything.
func NewFilter() *Filter { return filter.NewChain() }

// NewStats returns a Stats whose elapsed time starts now.
func NewStats() *Stats { return stats.NewCollector() }

// RemoveAll deletes root and everything beneath it.
func RemoveAll(ctx context.Context, root string, opts Options) error {
	return engine.RemoveAll(ctx, root, opts)
}

// RemoveAllAsync is the suspending form of RemoveAll.
func RemoveAllAsync(ctx context.Context, root string, opts Options, done func(error)) {
	engine.RemoveAllAsync(ctx, root, opts, done)
}

// CopyTree recreates src at dst.
func CopyTree(ctx context.Context, src, dst string, cfg CopyConfig) error {
	return engine.CopyTree(ctx, src, dst, cfg)
}

// CopyTreeAsync is the suspending form of CopyTree.
func CopyTreeAsync(ctx context.Context, src, dst string, cfg CopyConfig, done func(error)) {
	engine.CopyTreeAsync(ctx, src, dst, cfg, done)
}

// ChmodTree sets mode on every file and directory under root, root last.
// Symlinks are skipped. Per-entry failures do not stop the walk and are
// returned joined.
func ChmodTree(ctx context.Context, root string, mode os.FileMode, opts Options) error {
	return engine.ChmodTree(ctx, root, mode, opts)
}

// ChmodTreeAsync is the suspending form of ChmodTree.
func ChmodTreeAsync(ctx context.Context, root string, mode os.FileMode, opts Options, done func(error)) {
	engine.ChmodTreeAsync(ctx, root, mode, opts, done)
}

// ChownTree sets uid and gid on every entry under root without following
// symlinks, root last.
func ChownTree(ctx context.Context, root string, uid, gid int, opts Options) error {
	return engine.ChownTree(ctx, root, uid, gid, opts)
}

// ChownTreeAsync is the suspending form of ChownTree.
func ChownTreeAsync(ctx context.Context, root string, uid, gid int, opts Options, done func(error)) {
	engine.ChownTreeAsync(ctx, root, uid, gid, opts, done)
}

// ListTree returns every entry under root relative to root, each
// directory's children before any grandchildren.
func ListTree(ctx context.Context, root string, opts Options) ([]string, error) {
	return engine.ListTree(ctx, root, opts)
}

// ListTreeAsync is the suspending form of ListTree. fn receives one batch
// per non-empty directory, then (nil, nil); or (nil, err) on failure.
func ListTreeAsync(ctx context.Context, root string, opts Options, fn func(batch []string, err error)) {
	engine.ListTreeAsync(ctx, root, opts, fn)
}

// MkdirAll creates path and any missing parents.
func MkdirAll(path string, perm os.FileMode, opts Options) error {
	return engine.MkdirAll(path, perm, opts)
}

// HashFile returns the hex BLAKE3 digest of the file at path.
func HashFile(fs FS, path string) (string, error) {
	if fs == nil {
		fs = Local{}
	}
	return engine.HashFile(fs, path)
}

// OpenLineReader opens path for line reading; bufSize <= 0 selects the
// default read window.
func OpenLineReader(path string, bufSize int) (*LineReader, error) {
	return linereader.Open(path, bufSize)
}
