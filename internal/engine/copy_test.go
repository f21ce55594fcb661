package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/wrench/internal/event"
	"github.com/bamsammich/wrench/internal/filter"
	"github.com/bamsammich/wrench/internal/fsys"
	"github.com/bamsammich/wrench/internal/stats"
)

func TestCopyTree_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()
			src := t.TempDir()
			createShownTree(t, src)
			dst := filepath.Join(t.TempDir(), "copy")
			collector := stats.NewCollector()

			require.NoError(t, m.copy(t, src, dst, CopyConfig{Options: Options{Stats: collector}}))

			got, err := m.list(t, dst, Options{})
			require.NoError(t, err)
			assert.Equal(t, shownListing, got)
			assert.Equal(t, "console.log('ipsum');", readFile(t, filepath.Join(dst, "foo", "bar", "ipsum.js")))
			assert.Equal(t, "hidden dolor", readFile(t, filepath.Join(dst, ".hidden", "dolor.md")))

			snap := collector.Snapshot()
			assert.Equal(t, int64(6), snap.FilesCopied)
			assert.Equal(t, int64(4), snap.DirsCreated) // dst, .hidden, foo, foo/bar
		})
	}
}

func TestCopyTree_ExcludeHidden(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()
			src := t.TempDir()
			createShownTree(t, src)
			dst := filepath.Join(t.TempDir(), "copy")

			cfg := CopyConfig{Options: Options{ExcludeHiddenUnix: true}}
			require.NoError(t, m.copy(t, src, dst, cfg))

			got, err := ListTree(context.Background(), dst, Options{})
			require.NoError(t, err)
			assert.Equal(t, readdirListing, got)
		})
	}
}

func TestCopyTree_Filter(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	createReaddirTree(t, src)
	dst := filepath.Join(t.TempDir(), "copy")
	chain := filter.NewChain()
	require.NoError(t, chain.AddInclude("*.txt"))
	require.NoError(t, chain.AddExclude("*.*"))

	require.NoError(t, CopyTree(context.Background(), src, dst, CopyConfig{Options: Options{Filter: chain}}))

	got, err := ListTree(context.Background(), dst, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"bar.txt",
		"foo",
		filepath.Join("foo", "bar"),
		filepath.Join("foo", "lorem.txt"),
	}, got)
}

func TestCopyTree_Symlinks(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()
			src := t.TempDir()
			writeFile(t, filepath.Join(src, "target.txt"), "target")
			require.NoError(t, os.Symlink("target.txt", filepath.Join(src, "rel")))
			require.NoError(t, os.Symlink("/nonexistent/dangling", filepath.Join(src, "dangling")))
			dst := filepath.Join(t.TempDir(), "copy")

			require.NoError(t, m.copy(t, src, dst, CopyConfig{}))

			link, err := os.Readlink(filepath.Join(dst, "rel"))
			require.NoError(t, err)
			assert.Equal(t, "target.txt", link)

			link, err = os.Readlink(filepath.Join(dst, "dangling"))
			require.NoError(t, err)
			assert.Equal(t, "/nonexistent/dangling", link)
		})
	}
}

func TestCopyTree_DirectoryModes(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	locked := filepath.Join(src, "locked")
	require.NoError(t, os.Mkdir(locked, 0o755))
	writeFile(t, filepath.Join(locked, "inner.txt"), "inner")
	require.NoError(t, os.Chmod(locked, 0o555))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, CopyTree(context.Background(), src, dst, CopyConfig{}))
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(dst, "locked"), 0o755) })

	info, err := os.Lstat(filepath.Join(dst, "locked"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o555), info.Mode().Perm())
	assert.Equal(t, "inner", readFile(t, filepath.Join(dst, "locked", "inner.txt")))
}

func TestCopyTree_PreserveMode(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	script := filepath.Join(src, "run.sh")
	writeFile(t, script, "#!/bin/sh\n")
	require.NoError(t, os.Chmod(script, 0o751))

	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, CopyTree(context.Background(), src, dst, CopyConfig{PreserveMode: true}))

	info, err := os.Lstat(filepath.Join(dst, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o751), info.Mode().Perm())
}

func TestCopyTree_PreserveTimestamps(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()
			src := t.TempDir()
			createReaddirTree(t, src)
			past := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
			for _, rel := range []string{"bar.txt", filepath.Join("foo", "dolor.md"), "foo"} {
				require.NoError(t, os.Chtimes(filepath.Join(src, rel), past, past))
			}
			dst := filepath.Join(t.TempDir(), "copy")

			require.NoError(t, m.copy(t, src, dst, CopyConfig{PreserveTimestamps: true}))

			for _, rel := range []string{"bar.txt", filepath.Join("foo", "dolor.md"), "foo"} {
				info, err := os.Lstat(filepath.Join(dst, rel))
				require.NoError(t, err)
				assert.True(t, past.Equal(info.ModTime()), "%s mtime = %v", rel, info.ModTime())
			}
		})
	}
}

func TestCopyTree_ReplacesExistingDestination(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()
			src := t.TempDir()
			createReaddirTree(t, src)
			dst := t.TempDir()
			writeFile(t, filepath.Join(dst, "stale.txt"), "stale")
			writeFile(t, filepath.Join(dst, "bar.txt"), "old bar")

			require.NoError(t, m.copy(t, src, dst, CopyConfig{}))

			assert.NoFileExists(t, filepath.Join(dst, "stale.txt"))
			assert.Equal(t, "bar", readFile(t, filepath.Join(dst, "bar.txt")))
		})
	}
}

func TestCopyTree_PreserveFiles(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()
			src := t.TempDir()
			createReaddirTree(t, src)
			dst := t.TempDir()
			writeFile(t, filepath.Join(dst, "stale.txt"), "stale")
			writeFile(t, filepath.Join(dst, "bar.txt"), "old bar")
			collector := stats.NewCollector()

			cfg := CopyConfig{Options: Options{Stats: collector}, PreserveFiles: true}
			require.NoError(t, m.copy(t, src, dst, cfg))

			assert.Equal(t, "stale", readFile(t, filepath.Join(dst, "stale.txt")))
			assert.Equal(t, "old bar", readFile(t, filepath.Join(dst, "bar.txt")))
			assert.Equal(t, "lorem ipsum", readFile(t, filepath.Join(dst, "foo", "lorem.txt")))
			assert.Equal(t, int64(1), collector.Snapshot().EntriesSkipped)
		})
	}
}

func TestCopyTree_DestinationIsFile(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()
			src := t.TempDir()
			createReaddirTree(t, src)
			dst := filepath.Join(t.TempDir(), "file")
			writeFile(t, dst, "x")

			err := m.copy(t, src, dst, CopyConfig{})
			require.Error(t, err)
			assert.ErrorIs(t, err, fsys.ErrExist)
			assert.Equal(t, "x", readFile(t, dst))
		})
	}
}

func TestCopyTree_DestinationInsideSource(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()
			src := t.TempDir()
			createReaddirTree(t, src)

			for _, dst := range []string{src, filepath.Join(src, "foo", "copy")} {
				err := m.copy(t, src, dst, CopyConfig{})
				require.ErrorIs(t, err, ErrDestinationInsideSource)
			}
			assert.NoDirExists(t, filepath.Join(src, "foo", "copy"))
		})
	}
}

func TestCopyTree_DestinationIsAncestorOfSource(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()
			base := t.TempDir()
			src := filepath.Join(base, "proj", "src")
			require.NoError(t, os.MkdirAll(src, 0o755))
			createReaddirTree(t, src)

			for _, dst := range []string{filepath.Join(base, "proj"), base} {
				err := m.copy(t, src, dst, CopyConfig{})
				require.ErrorIs(t, err, ErrSourceInsideDestination)
			}

			got, err := m.list(t, src, Options{})
			require.NoError(t, err)
			assert.Equal(t, readdirListing, got)
		})
	}
}

func TestInside(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src, dst string
		want     bool
	}{
		{"/a/b", "/a/b", true},
		{"/a/b", "/a/b/c", true},
		{"/a/b", "/a/bc", false},
		{"/a/b", "/a", false},
		{"/a/b", "/a/..b", false},
		{"/a/b", "/x/y", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inside(tt.src, tt.dst), "inside(%q, %q)", tt.src, tt.dst)
	}
}

func TestCopyTree_DeleteCopyLeavesSource(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()
			src := t.TempDir()
			createShownTree(t, src)
			dst := filepath.Join(t.TempDir(), "copy")

			require.NoError(t, m.copy(t, src, dst, CopyConfig{}))
			require.NoError(t, m.remove(t, dst, Options{}))

			assert.NoDirExists(t, dst)
			got, err := m.list(t, src, Options{})
			require.NoError(t, err)
			assert.Equal(t, shownListing, got)
		})
	}
}

func TestCopyTree_Verify(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()
			src := t.TempDir()
			createReaddirTree(t, src)
			big := strings.Repeat("0123456789abcdef", copyBufferSize/8) // two buffers
			writeFile(t, filepath.Join(src, "big.bin"), big)
			dst := filepath.Join(t.TempDir(), "copy")

			require.NoError(t, m.copy(t, src, dst, CopyConfig{Verify: true}))

			want, err := HashFile(fsys.Local{}, filepath.Join(src, "big.bin"))
			require.NoError(t, err)
			got, err := HashFile(fsys.Local{}, filepath.Join(dst, "big.bin"))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestCopyTree_BWLimit(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "data.bin"), strings.Repeat("x", 64<<10))
	dst := filepath.Join(t.TempDir(), "copy")

	cfg := CopyConfig{BWLimit: 16 << 20}
	require.NoError(t, CopyTree(context.Background(), src, dst, cfg))
	assert.Equal(t, 64<<10, len(readFile(t, filepath.Join(dst, "data.bin"))))
}

func TestCopyTree_FailFastCleansTemp(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()
			src := t.TempDir()
			createReaddirTree(t, src)
			dst := filepath.Join(t.TempDir(), "copy")
			spy := newSpyFS()
			spy.fail("rename", "dolor.md", fsys.ErrIO)

			err := m.copy(t, src, dst, CopyConfig{Options: Options{FS: spy}})
			require.Error(t, err)
			assert.ErrorIs(t, err, fsys.ErrIO)

			assert.FileExists(t, filepath.Join(dst, "bar.txt"))
			assert.NoFileExists(t, filepath.Join(dst, "foo", "dolor.md"))
			assert.NoFileExists(t, filepath.Join(dst, "foo", "lorem.txt"), "copy must stop at the first failure")

			entries, err := os.ReadDir(filepath.Join(dst, "foo"))
			require.NoError(t, err)
			for _, e := range entries {
				assert.False(t, strings.HasSuffix(e.Name(), ".wrench-tmp"), "temp file %s left behind", e.Name())
			}
		})
	}
}

func TestCopyTree_Events(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	createReaddirTree(t, src)
	require.NoError(t, os.Symlink("bar.txt", filepath.Join(src, "link")))
	dst := filepath.Join(t.TempDir(), "copy")
	events := make(chan event.Event, 64)

	require.NoError(t, CopyTree(context.Background(), src, dst, CopyConfig{Options: Options{Events: events}}))
	close(events)

	counts := make(map[event.Type]int)
	for e := range events {
		counts[e.Type]++
	}
	assert.Equal(t, 4, counts[event.FileCopied])
	assert.Equal(t, 3, counts[event.DirCreated])
	assert.Equal(t, 1, counts[event.SymlinkCreated])
}

func TestCopyTreeAsync_SingleCallInFlight(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	createShownTree(t, src)
	dst := filepath.Join(t.TempDir(), "copy")
	spy := newSpyFS()

	err := wait(t, func(done func(error)) {
		CopyTreeAsync(context.Background(), src, dst, CopyConfig{Options: Options{FS: spy}}, done)
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), spy.maxSeen.Load())
}

func TestCopyTree_Cancelled(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	createReaddirTree(t, src)
	dst := filepath.Join(t.TempDir(), "copy")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, CopyTree(ctx, src, dst, CopyConfig{}), context.Canceled)
	err := wait(t, func(done func(error)) { CopyTreeAsync(ctx, src, dst, CopyConfig{}, done) })
	require.ErrorIs(t, err, context.Canceled)
	assert.NoDirExists(t, dst)
}
