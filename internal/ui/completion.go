package ui

import (
	"fmt"

	"github.com/bamsammich/wrench/internal/stats"
)

// completionSummary builds a final summary line from a snapshot.
// Format: copy ✓  entries 1,204  files 1,100  size 2.1 GB  avg 641 MB/s  time 3s  errors 0
func completionSummary(op string, snap stats.Snapshot) string {
	icon := "✓"
	if snap.EntriesFailed > 0 {
		icon = "✗"
	}
	if op == "" {
		op = "done"
	}

	base := fmt.Sprintf("%s %s  entries %s", op, icon, FormatCount(snap.EntriesVisited))
	for _, c := range []struct {
		name string
		n    int64
	}{
		{"files", snap.FilesCopied},
		{"symlinks", snap.SymlinksCreated},
		{"dirs", snap.DirsCreated},
		{"removed", snap.EntriesRemoved},
		{"modes", snap.ModesChanged},
		{"owners", snap.OwnersChanged},
		{"skipped", snap.EntriesSkipped},
	} {
		if c.n > 0 {
			base += fmt.Sprintf("  %s %s", c.name, FormatCount(c.n))
		}
	}

	if snap.BytesCopied > 0 {
		avgSpeed := 0.0
		if snap.Elapsed.Seconds() > 0 {
			avgSpeed = float64(snap.BytesCopied) / snap.Elapsed.Seconds()
		}
		base += fmt.Sprintf("  size %s  avg %s", FormatBytes(snap.BytesCopied), FormatRate(avgSpeed))
	}

	return base + fmt.Sprintf("  time %s  errors %d", FormatDuration(snap.Elapsed), snap.EntriesFailed)
}
