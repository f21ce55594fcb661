package ui

import (
	"fmt"
	"io"

	"github.com/bamsammich/wrench/internal/event"
	"github.com/bamsammich/wrench/internal/stats"
)

// plainPresenter prints failures as they happen and, when verbose, one
// line per changed entry. Skipped entries only show up in the summary count.
type plainPresenter struct {
	w       io.Writer
	stats   *stats.Collector
	op      string
	root    string
	verbose bool
}

func (p *plainPresenter) Run(events <-chan event.Event) error {
	for ev := range events {
		p.handleEvent(ev)
	}
	return nil
}

func (p *plainPresenter) handleEvent(ev event.Event) {
	path := StripRoot(p.root, ev.Path)
	if ev.Type == event.EntryFailed {
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		fmt.Fprintf(p.w, "%s  %s\n", path, errMsg)
		return
	}
	if !p.verbose {
		return
	}
	switch ev.Type {
	case event.FileCopied:
		fmt.Fprintf(p.w, "%s  %s\n", path, FormatBytes(ev.Size))
	case event.DirCreated:
		fmt.Fprintf(p.w, "%s/\n", path)
	case event.SymlinkCreated:
		fmt.Fprintf(p.w, "%s  symlink\n", path)
	case event.EntryRemoved:
		fmt.Fprintf(p.w, "delete: %s\n", path)
	case event.ModeChanged:
		fmt.Fprintf(p.w, "mode: %s\n", path)
	case event.OwnerChanged:
		fmt.Fprintf(p.w, "owner: %s\n", path)
	}
}

func (p *plainPresenter) Summary() string {
	return completionSummary(p.op, p.stats.Snapshot())
}
