package ui

import (
	"io"

	"github.com/bamsammich/wrench/internal/event"
	"github.com/bamsammich/wrench/internal/stats"
)

// Presenter consumes events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan event.Event) error
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer  io.Writer
	Stats   *stats.Collector
	Op      string // operation name for the summary, e.g. "copy"
	Root    string // stripped from displayed paths
	Quiet   bool
	Verbose bool // one line per entry instead of failures only
}

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{}
	}
	return &plainPresenter{
		w:       cfg.Writer,
		stats:   cfg.Stats,
		op:      cfg.Op,
		root:    cfg.Root,
		verbose: cfg.Verbose,
	}
}
