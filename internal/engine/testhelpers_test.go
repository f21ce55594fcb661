package engine

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bamsammich/wrench/internal/fsys"
)

// createReaddirTree populates root with:
//
//	bar.txt
//	foo/dolor.md
//	foo/lorem.txt
//	foo/bar/ipsum.js
func createReaddirTree(t *testing.T, root string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "foo", "bar"), 0o755))
	writeFile(t, filepath.Join(root, "bar.txt"), "bar")
	writeFile(t, filepath.Join(root, "foo", "dolor.md"), "dolor sit amet")
	writeFile(t, filepath.Join(root, "foo", "lorem.txt"), "lorem ipsum")
	writeFile(t, filepath.Join(root, "foo", "bar", "ipsum.js"), "console.log('ipsum');")
}

// createShownTree is createReaddirTree plus hidden entries:
//
//	.hidden/dolor.md
//	.hidden.txt
func createShownTree(t *testing.T, root string) {
	t.Helper()

	createReaddirTree(t, root)
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".hidden"), 0o755))
	writeFile(t, filepath.Join(root, ".hidden", "dolor.md"), "hidden dolor")
	writeFile(t, filepath.Join(root, ".hidden.txt"), "hidden")
}

var readdirListing = []string{
	"bar.txt",
	"foo",
	filepath.Join("foo", "bar"),
	filepath.Join("foo", "dolor.md"),
	filepath.Join("foo", "lorem.txt"),
	filepath.Join("foo", "bar", "ipsum.js"),
}

var shownListing = []string{
	".hidden",
	".hidden.txt",
	"bar.txt",
	"foo",
	filepath.Join(".hidden", "dolor.md"),
	filepath.Join("foo", "bar"),
	filepath.Join("foo", "dolor.md"),
	filepath.Join("foo", "lorem.txt"),
	filepath.Join("foo", "bar", "ipsum.js"),
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// wait starts a suspending operation and blocks until done fires.
func wait(t *testing.T, start func(done func(error))) error {
	t.Helper()
	ch := make(chan error, 1)
	start(func(err error) { ch <- err })
	select {
	case err := <-ch:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("suspending operation did not finish")
		return nil
	}
}

// listAsync collects every batch of ListTreeAsync until the sentinel.
func listAsync(t *testing.T, ctx context.Context, root string, opts Options) ([][]string, error) {
	t.Helper()
	var batches [][]string
	err := wait(t, func(done func(error)) {
		ListTreeAsync(ctx, root, opts, func(batch []string, err error) {
			if batch != nil {
				batches = append(batches, batch)
				return
			}
			done(err)
		})
	})
	return batches, err
}

// mode runs each operation in blocking or suspending form.
type mode struct {
	name   string
	remove func(t *testing.T, root string, opts Options) error
	copy   func(t *testing.T, src, dst string, cfg CopyConfig) error
	chmod  func(t *testing.T, root string, perm os.FileMode, opts Options) error
	chown  func(t *testing.T, root string, uid, gid int, opts Options) error
	list   func(t *testing.T, root string, opts Options) ([]string, error)
}

var modes = []mode{
	{
		name: "blocking",
		remove: func(_ *testing.T, root string, opts Options) error {
			return RemoveAll(context.Background(), root, opts)
		},
		copy: func(_ *testing.T, src, dst string, cfg CopyConfig) error {
			return CopyTree(context.Background(), src, dst, cfg)
		},
		chmod: func(_ *testing.T, root string, perm os.FileMode, opts Options) error {
			return ChmodTree(context.Background(), root, perm, opts)
		},
		chown: func(_ *testing.T, root string, uid, gid int, opts Options) error {
			return ChownTree(context.Background(), root, uid, gid, opts)
		},
		list: func(_ *testing.T, root string, opts Options) ([]string, error) {
			return ListTree(context.Background(), root, opts)
		},
	},
	{
		name: "suspending",
		remove: func(t *testing.T, root string, opts Options) error {
			return wait(t, func(done func(error)) {
				RemoveAllAsync(context.Background(), root, opts, done)
			})
		},
		copy: func(t *testing.T, src, dst string, cfg CopyConfig) error {
			return wait(t, func(done func(error)) {
				CopyTreeAsync(context.Background(), src, dst, cfg, done)
			})
		},
		chmod: func(t *testing.T, root string, perm os.FileMode, opts Options) error {
			return wait(t, func(done func(error)) {
				ChmodTreeAsync(context.Background(), root, perm, opts, done)
			})
		},
		chown: func(t *testing.T, root string, uid, gid int, opts Options) error {
			return wait(t, func(done func(error)) {
				ChownTreeAsync(context.Background(), root, uid, gid, opts, done)
			})
		},
		list: func(t *testing.T, root string, opts Options) ([]string, error) {
			batches, err := listAsync(t, context.Background(), root, opts)
			return slices.Concat(batches...), err
		},
	},
}

// spyFS wraps the local filesystem, records every call, injects faults and
// tracks how many calls overlap.
type spyFS struct {
	fsys.Local

	reverse bool             // hand ReadDir names back in reverse order
	faults  map[string]error // "op base" -> error

	mu       sync.Mutex
	calls    []string
	inflight atomic.Int32
	maxSeen  atomic.Int32
}

func newSpyFS() *spyFS {
	return &spyFS{faults: make(map[string]error)}
}

// fail makes op fail on any path whose base name is base.
func (s *spyFS) fail(op, base string, err error) {
	s.faults[op+" "+base] = err
}

func (s *spyFS) enter(op, path string) (func(), error) {
	n := s.inflight.Add(1)
	for {
		m := s.maxSeen.Load()
		if n <= m || s.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	// Widen the window so overlapping calls would be caught.
	time.Sleep(50 * time.Microsecond)

	s.mu.Lock()
	s.calls = append(s.calls, op+" "+path)
	s.mu.Unlock()

	leave := func() { s.inflight.Add(-1) }
	if err, ok := s.faults[op+" "+filepath.Base(path)]; ok {
		leave()
		return func() {}, fsys.Wrap(op, path, err)
	}
	return leave, nil
}

// opsFor returns the recorded paths for op, in call order.
func (s *spyFS) opsFor(op string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.calls {
		if len(c) > len(op) && c[:len(op)+1] == op+" " {
			out = append(out, c[len(op)+1:])
		}
	}
	return out
}

func (s *spyFS) Lstat(path string) (fsys.Info, error) {
	leave, err := s.enter("lstat", path)
	defer leave()
	if err != nil {
		return fsys.Info{}, err
	}
	return s.Local.Lstat(path)
}

func (s *spyFS) ReadDir(path string) ([]string, error) {
	leave, err := s.enter("readdir", path)
	defer leave()
	if err != nil {
		return nil, err
	}
	names, err := s.Local.ReadDir(path)
	if s.reverse {
		slices.Sort(names)
		slices.Reverse(names)
	}
	return names, err
}

func (s *spyFS) Mkdir(path string, perm os.FileMode) error {
	leave, err := s.enter("mkdir", path)
	defer leave()
	if err != nil {
		return err
	}
	return s.Local.Mkdir(path, perm)
}

func (s *spyFS) Remove(path string) error {
	leave, err := s.enter("unlink", path)
	defer leave()
	if err != nil {
		return err
	}
	return s.Local.Remove(path)
}

func (s *spyFS) Rmdir(path string) error {
	leave, err := s.enter("rmdir", path)
	defer leave()
	if err != nil {
		return err
	}
	return s.Local.Rmdir(path)
}

func (s *spyFS) Rename(oldPath, newPath string) error {
	leave, err := s.enter("rename", newPath)
	defer leave()
	if err != nil {
		return err
	}
	return s.Local.Rename(oldPath, newPath)
}

func (s *spyFS) Open(path string) (io.ReadCloser, error) {
	leave, err := s.enter("open", path)
	defer leave()
	if err != nil {
		return nil, err
	}
	return s.Local.Open(path)
}

func (s *spyFS) Create(path string, perm os.FileMode) (io.WriteCloser, error) {
	leave, err := s.enter("create", path)
	defer leave()
	if err != nil {
		return nil, err
	}
	return s.Local.Create(path, perm)
}

func (s *spyFS) Symlink(target, path string) error {
	leave, err := s.enter("symlink", path)
	defer leave()
	if err != nil {
		return err
	}
	return s.Local.Symlink(target, path)
}

func (s *spyFS) Chmod(path string, mode os.FileMode) error {
	leave, err := s.enter("chmod", path)
	defer leave()
	if err != nil {
		return err
	}
	return s.Local.Chmod(path, mode)
}

func (s *spyFS) Lchown(path string, uid, gid int) error {
	leave, err := s.enter("lchown", path)
	defer leave()
	if err != nil {
		return err
	}
	return s.Local.Lchown(path, uid, gid)
}
