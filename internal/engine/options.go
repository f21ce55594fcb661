package engine

import (
	"log/slog"

	"github.com/bamsammich/wrench/internal/event"
	"github.com/bamsammich/wrench/internal/filter"
	"github.com/bamsammich/wrench/internal/fsys"
	"github.com/bamsammich/wrench/internal/stats"
)

// Order controls the order of names within one directory. The zero value
// is Sorted, which differs from the host listing order; set Native to visit
// entries exactly as the listing primitive returns them.
type Order int

const (
	// Sorted visits names in byte-wise lexical order, which is stable
	// across platforms and filesystems.
	Sorted Order = iota
	// Native keeps the order the host listing primitive returned.
	Native
)

func (o Order) String() string {
	if o == Native {
		return "native"
	}
	return "sorted"
}

// Options are shared by every tree operation. The zero value walks the
// local filesystem with no filtering, visiting each directory's names in
// sorted order rather than host order (see Order).
type Options struct {
	FS                fsys.FS // nil means fsys.Local
	Order             Order
	ExcludeHiddenUnix bool          // skip entries named ".*" and their subtrees
	Filter            *filter.Chain // optional include/exclude rules
	Events            chan<- event.Event
	Stats             *stats.Collector
	Logger            *slog.Logger // nil means slog.Default()
}

func (o Options) filesystem() fsys.FS {
	if o.FS == nil {
		return fsys.Local{}
	}
	return o.FS
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o Options) emit(e event.Event) {
	event.Emit(o.Events, e)
}

// failed records a per-entry failure and returns err unchanged.
func (o Options) failed(path string, err error) error {
	o.Stats.AddEntriesFailed(1)
	o.emit(event.Event{Type: event.EntryFailed, Path: path, Error: err})
	return err
}

// skipped records an entry left alone by a filter or a preserve option.
func (o Options) skipped(path string) {
	o.Stats.AddEntriesSkipped(1)
	o.emit(event.Event{Type: event.EntrySkipped, Path: path})
}

// unfiltered returns a copy of o that lets every entry through.
func (o Options) unfiltered() Options {
	o.ExcludeHiddenUnix = false
	o.Filter = nil
	return o
}
