package engine

import "context"

// loop drives one suspending operation. Traversal state lives on the loop
// goroutine; each filesystem call is handed to a separate I/O goroutine
// through a single-slot queue and its continuation is posted back. Exactly
// one call is in flight at any time.
type loop struct {
	ctx      context.Context
	calls    chan func()
	ready    chan func()
	inflight bool
}

// startLoop runs op on a new loop and returns immediately. op, and every
// continuation it schedules, must either submit exactly one call or invoke
// its continuation. done, if non-nil, receives the result on the loop
// goroutine once op has finished.
func startLoop(ctx context.Context, op func(l *loop, k func(error)), done func(error)) {
	l := &loop{
		ctx:   ctx,
		calls: make(chan func(), 1),
		ready: make(chan func(), 1),
	}
	go l.serveIO()

	go func() {
		var (
			result   error
			finished bool
		)
		op(l, func(err error) {
			result, finished = err, true
		})
		for !finished {
			next := <-l.ready
			l.inflight = false
			next()
		}
		close(l.calls)
		if done != nil {
			done(result)
		}
	}()
}

func (l *loop) serveIO() {
	for call := range l.calls {
		call()
	}
}

// await submits call and resumes with then on the loop goroutine. A
// cancelled context short-circuits the call with ctx.Err().
func await[T any](l *loop, call func() (T, error), then func(T, error)) {
	if l.inflight {
		panic("engine: filesystem call submitted while another is in flight")
	}
	l.inflight = true
	l.calls <- func() {
		var v T
		err := l.ctx.Err()
		if err == nil {
			v, err = call()
		}
		l.ready <- func() { then(v, err) }
	}
}

// awaitErr is await for calls that produce only an error.
func awaitErr(l *loop, call func() error, then func(error)) {
	await(l, func() (struct{}, error) {
		return struct{}{}, call()
	}, func(_ struct{}, err error) {
		then(err)
	})
}
