package engine

// dirFrame is the suspended state of one directory: the names not yet
// visited, the children admitted so far and, in siblingsFirst shape, the
// subdirectories waiting to be entered.
type dirFrame struct {
	dir      Entry
	names    []string
	listed   []Entry
	pending  []Entry
	reported bool
}

// walkAsync is the suspending form of walk. Every listing, metadata query,
// Pre and Post is a suspension point; k receives the first error or nil
// once the whole tree is done.
func (w *walker) walkAsync(l *loop, root string, k func(error)) {
	await(l, func() (Entry, error) {
		return w.root(root)
	}, func(e Entry, err error) {
		if err != nil {
			k(err)
			return
		}
		await(l, func() (bool, error) {
			return w.enter(e)
		}, func(down bool, err error) {
			if err != nil || !down {
				k(err)
				return
			}
			w.descendAsync(l, e, k)
		})
	})
}

func (w *walker) descendAsync(l *loop, dir Entry, k func(error)) {
	await(l, func() ([]string, error) {
		return w.list(dir)
	}, func(names []string, err error) {
		if err != nil {
			k(err)
			return
		}
		w.nextAsync(l, &dirFrame{dir: dir, names: names}, k)
	})
}

// nextAsync visits the next admitted name of f, or finishes f when none are
// left. It submits at most one call, so skipping never deepens the stack by
// more than one frame.
func (w *walker) nextAsync(l *loop, f *dirFrame, k func(error)) {
	for len(f.names) > 0 && !w.admitName(f.dir, f.names[0]) {
		f.names = f.names[1:]
	}
	if len(f.names) == 0 {
		w.finishAsync(l, f, k)
		return
	}
	name := f.names[0]
	f.names = f.names[1:]

	await(l, func() (Entry, error) {
		return w.child(f.dir, name)
	}, func(child Entry, err error) {
		if err != nil {
			k(err)
			return
		}
		if !w.admit(child) {
			w.nextAsync(l, f, k)
			return
		}
		f.listed = append(f.listed, child)

		await(l, func() (bool, error) {
			return w.enter(child)
		}, func(down bool, err error) {
			switch {
			case err != nil:
				k(err)
			case !down:
				w.nextAsync(l, f, k)
			case w.shape == siblingsFirst:
				f.pending = append(f.pending, child)
				w.nextAsync(l, f, k)
			default:
				w.descendAsync(l, child, func(err error) {
					if err != nil {
						k(err)
						return
					}
					w.nextAsync(l, f, k)
				})
			}
		})
	})
}

// finishAsync reports the listed children, enters pending subdirectories
// in order and finally runs Post for the directory itself.
func (w *walker) finishAsync(l *loop, f *dirFrame, k func(error)) {
	if !f.reported {
		f.reported = true
		if err := w.listed(f.dir, f.listed); err != nil {
			k(err)
			return
		}
	}
	if len(f.pending) == 0 {
		awaitErr(l, func() error {
			return w.visitor.Post(f.dir)
		}, k)
		return
	}
	child := f.pending[0]
	f.pending = f.pending[1:]
	w.descendAsync(l, child, func(err error) {
		if err != nil {
			k(err)
			return
		}
		w.finishAsync(l, f, k)
	})
}
