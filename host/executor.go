package host

import (
	"context"
	"fmt"
	goruntime "runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/AtriKawaii/atri-go/ffi"
)

// ExecutorOption configures an Executor.
type ExecutorOption func(*executorConfig)

type executorConfig struct {
	workers int
	logger  *zap.Logger
	metrics *Metrics
}

// WithWorkers sets the number of worker goroutines. Values below one
// select GOMAXPROCS.
func WithWorkers(n int) ExecutorOption {
	return func(c *executorConfig) {
		c.workers = n
	}
}

// WithExecutorLogger sets the executor logger.
func WithExecutorLogger(l *zap.Logger) ExecutorOption {
	return func(c *executorConfig) {
		c.logger = l
	}
}

// WithExecutorMetrics sets the metrics the executor reports to.
func WithExecutorMetrics(m *Metrics) ExecutorOption {
	return func(c *executorConfig) {
		c.metrics = m
	}
}

// Executor runs the futures plugins spawn on a pool of worker goroutines.
// A future is polled when it is spawned and again each time its waker
// fires; wake-ups that arrive while it is already queued are coalesced.
type Executor struct {
	cfg executorConfig

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*hostTask
	live   map[*hostTask]struct{}
	closed bool

	wg sync.WaitGroup
}

// NewExecutor starts an executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	cfg := executorConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = goruntime.GOMAXPROCS(0)
	}
	if cfg.logger == nil {
		cfg.logger = Logger()
	}
	if cfg.metrics == nil {
		cfg.metrics = NewMetrics(nil)
	}

	e := &Executor{cfg: cfg, live: make(map[*hostTask]struct{})}
	e.cond = sync.NewCond(&e.mu)

	e.wg.Add(cfg.workers)
	for range cfg.workers {
		go e.work()
	}
	return e
}

// Spawn takes ownership of fut and schedules it. The returned future
// completes with fut's value, or with a failure when fut panics or the
// executor closes first. Scoped futures are refused.
//
// Dropping the returned future detaches the task: it keeps running and
// its value is released when it completes.
func (e *Executor) Spawn(fut ffi.Future[ffi.Managed]) ffi.Future[ffi.Result[ffi.Managed]] {
	if fut.Scoped {
		fut.Drop()
		return ffi.ReadyFuture(ffi.Failure[ffi.Managed]("spawn: scoped futures are not supported"))
	}

	join := &joinState{}
	t := &hostTask{exec: e, fut: fut, join: join}
	t.waker = ffi.WakerFunc(func() {
		e.cfg.metrics.Wakes.Inc()
		e.schedule(t)
	})
	t.cx = ffi.NewContext(&t.waker)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		fut.Drop()
		return ffi.ReadyFuture(ffi.Failure[ffi.Managed]("spawn: executor closed"))
	}
	e.live[t] = struct{}{}
	e.mu.Unlock()

	e.cfg.metrics.TasksSpawned.Inc()
	e.cfg.metrics.TasksInFlight.Inc()
	e.schedule(t)

	return ffi.NewFuture[ffi.Result[ffi.Managed]](&joinTask{state: join})
}

// BlockOn drives fut to completion on the calling goroutine and returns
// its value. Scoped futures are accepted.
func (e *Executor) BlockOn(fut ffi.Future[ffi.Managed]) ffi.Managed {
	v, _ := ffi.Drive(context.Background(), &fut)
	return v
}

// Close stops the workers. Tasks that have not finished are dropped and
// their join futures fail. Close is idempotent.
func (e *Executor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.queue = nil
	e.cond.Broadcast()
	e.mu.Unlock()

	e.wg.Wait()

	e.mu.Lock()
	live := e.live
	e.live = make(map[*hostTask]struct{})
	e.mu.Unlock()

	for t := range live {
		t.pollMu.Lock()
		if !t.finished {
			e.finish(t, ffi.Failure[ffi.Managed]("executor closed"))
		}
		t.pollMu.Unlock()
	}
	if len(live) > 0 {
		e.cfg.logger.Debug("executor closed with pending tasks", zap.Int("dropped", len(live)))
	}
}

// Pending returns the number of spawned tasks that have not finished.
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.live)
}

func (e *Executor) schedule(t *hostTask) {
	if !t.queued.CompareAndSwap(false, true) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.queue = append(e.queue, t)
	e.cond.Signal()
}

func (e *Executor) next() (*hostTask, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(e.queue) == 0 && !e.closed {
		e.cond.Wait()
	}
	if e.closed {
		return nil, false
	}
	t := e.queue[0]
	e.queue[0] = nil
	e.queue = e.queue[1:]
	return t, true
}

func (e *Executor) work() {
	defer e.wg.Done()
	for {
		t, ok := e.next()
		if !ok {
			return
		}
		e.poll(t)
	}
}

func (e *Executor) poll(t *hostTask) {
	t.pollMu.Lock()
	defer t.pollMu.Unlock()
	if t.finished {
		return
	}
	// Cleared before polling so that a wake during the poll queues again.
	t.queued.Store(false)
	e.cfg.metrics.Polls.Inc()

	p, panicked := pollRecover(&t.fut, t.cx)
	switch {
	case panicked != nil:
		e.cfg.logger.Error("spawned task panicked", zap.Any("panic", panicked))
		e.finish(t, ffi.Failure[ffi.Managed](fmt.Sprintf("task panicked: %v", panicked)))
	case p.Ready:
		e.finish(t, ffi.Ok(p.Value))
	}
}

func pollRecover(fut *ffi.Future[ffi.Managed], cx *ffi.Context) (p ffi.Poll[ffi.Managed], panicked any) {
	defer func() { panicked = recover() }()
	return fut.PollOnce(cx), nil
}

// finish must be called with t.pollMu held.
func (e *Executor) finish(t *hostTask, res ffi.Result[ffi.Managed]) {
	t.finished = true
	func() {
		defer func() {
			if r := recover(); r != nil {
				e.cfg.logger.Error("dropping spawned task panicked", zap.Any("panic", r))
			}
		}()
		t.fut.Drop()
	}()

	e.mu.Lock()
	delete(e.live, t)
	e.mu.Unlock()

	e.cfg.metrics.TasksInFlight.Dec()
	if res.IsOk {
		e.cfg.metrics.TasksCompleted.Inc()
	} else {
		e.cfg.metrics.TasksFailed.Inc()
	}
	t.join.complete(res)
}

type hostTask struct {
	exec  *Executor
	fut   ffi.Future[ffi.Managed]
	waker ffi.Waker
	cx    *ffi.Context
	join  *joinState

	queued atomic.Bool

	pollMu   sync.Mutex
	finished bool
}

// joinState is shared between a task and the join future handed back to
// the spawner.
type joinState struct {
	mu       sync.Mutex
	done     bool
	taken    bool
	detached bool
	result   ffi.Result[ffi.Managed]
	waker    *ffi.Waker
}

func (j *joinState) complete(res ffi.Result[ffi.Managed]) {
	j.mu.Lock()
	j.done = true
	j.result = res
	w := j.waker
	j.waker = nil
	detached := j.detached
	if detached {
		j.taken = true
	}
	j.mu.Unlock()

	if detached {
		releaseResult(res)
		return
	}
	if w != nil {
		w.Wake()
	}
}

func releaseResult(res ffi.Result[ffi.Managed]) {
	if v, err := res.Unpack(); err == nil {
		v.Drop()
	}
}

type joinTask struct {
	state *joinState
}

func (t *joinTask) Poll(cx *ffi.Context) (ffi.Result[ffi.Managed], bool) {
	j := t.state
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.done {
		j.taken = true
		return j.result, true
	}
	if j.waker != nil {
		j.waker.Drop()
	}
	w := cx.Waker().Clone()
	j.waker = &w
	return ffi.Result[ffi.Managed]{}, false
}

func (t *joinTask) Drop() {
	j := t.state
	j.mu.Lock()
	j.detached = true
	w := j.waker
	j.waker = nil
	leftover := j.done && !j.taken
	j.taken = true
	res := j.result
	j.mu.Unlock()

	if w != nil {
		w.Drop()
	}
	if leftover {
		releaseResult(res)
	}
}
