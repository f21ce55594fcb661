//go:build unix

package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/bamsammich/wrench/internal/stats"
)

func TestCopyTree_SkipsFifo(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()
			src := t.TempDir()
			createReaddirTree(t, src)
			require.NoError(t, unix.Mkfifo(filepath.Join(src, "foo", "pipe"), 0o644))
			dst := filepath.Join(t.TempDir(), "copy")

			collector := stats.NewCollector()
			cfg := CopyConfig{Options: Options{Stats: collector}}
			require.NoError(t, m.copy(t, src, dst, cfg))

			_, err := os.Lstat(filepath.Join(dst, "foo", "pipe"))
			assert.ErrorIs(t, err, os.ErrNotExist)
			assert.Equal(t, "lorem ipsum", readFile(t, filepath.Join(dst, "foo", "lorem.txt")))

			snap := collector.Snapshot()
			assert.Equal(t, int64(1), snap.EntriesSkipped)
			assert.Equal(t, int64(4), snap.FilesCopied)
		})
	}
}
