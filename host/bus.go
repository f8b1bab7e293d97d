package host

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"go.uber.org/zap"

	"github.com/AtriKawaii/atri-go/ffi"
)

// Listener priorities, highest first.
const (
	PriorityTop uint8 = iota
	PriorityHigh
	PriorityMiddle
	PriorityLow
	PriorityBase
)

// BusOption configures a Bus.
type BusOption func(*busConfig)

type busConfig struct {
	logger  *zap.Logger
	metrics *Metrics
}

// WithBusLogger sets the bus logger.
func WithBusLogger(l *zap.Logger) BusOption {
	return func(c *busConfig) {
		c.logger = l
	}
}

// WithBusMetrics sets the metrics the bus reports to.
func WithBusMetrics(m *Metrics) BusOption {
	return func(c *busConfig) {
		c.metrics = m
	}
}

// Bus dispatches events to plugin listeners and next-event waiters.
//
// Receivers are visited in priority order, Top first; receivers of equal
// priority are visited in registration order, waiters before listeners.
// Once a receiver intercepts an event no further receiver sees it.
// Sequential listeners are awaited in place, one event at a time.
// Concurrent listeners run on their own goroutine and are not awaited,
// so their interception only reaches receivers that have not been
// visited yet.
type Bus struct {
	cfg busConfig

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	listeners []*listenerEntry
	waiters   []*waiter
	closed    bool

	wg sync.WaitGroup
}

// NewBus creates an empty bus.
func NewBus(opts ...BusOption) *Bus {
	cfg := busConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = Logger()
	}
	if cfg.metrics == nil {
		cfg.metrics = NewMetrics(nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Bus{cfg: cfg, ctx: ctx, cancel: cancel}
}

type listenerEntry struct {
	priority   uint8
	concurrent bool
	handler    ffi.Fn[ffi.Event, ffi.Future[bool]]

	// use guards handler against release while it is being invoked.
	use    sync.RWMutex
	closed bool

	// serial is held while a sequential listener handles an event.
	serial sync.Mutex
}

type listenerGuard struct {
	bus   *Bus
	entry *listenerEntry
}

// Drop unregisters the listener.
func (g *listenerGuard) Drop() {
	g.bus.removeListener(g.entry)
}

// AddListener takes ownership of handler and registers it. Each event
// is handed to the handler as an owned clone; the handler's future
// reports whether the listener stays registered. Destroying the returned
// guard unregisters the listener.
func (b *Bus) AddListener(concurrent bool, handler ffi.Fn[ffi.Event, ffi.Future[bool]], priority uint8) ffi.Managed {
	entry := &listenerEntry{priority: priority, concurrent: concurrent, handler: handler}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		handler.Drop()
		return ffi.NullManaged()
	}
	b.listeners = insertOrdered(b.listeners, entry, func(l *listenerEntry) uint8 { return l.priority })
	b.mu.Unlock()

	b.cfg.metrics.Listeners.Inc()
	return ffi.ManagedFrom(listenerGuard{bus: b, entry: entry})
}

// insertOrdered keeps s sorted by priority with ties in insertion order.
func insertOrdered[T any](s []T, v T, priority func(T) uint8) []T {
	i, _ := slices.BinarySearchFunc(s, priority(v), func(e T, p uint8) int {
		if priority(e) <= p {
			return -1
		}
		return 1
	})
	return slices.Insert(s, i, v)
}

func (b *Bus) removeListener(entry *listenerEntry) {
	b.mu.Lock()
	i := slices.Index(b.listeners, entry)
	if i >= 0 {
		b.listeners = slices.Delete(b.listeners, i, i+1)
	}
	b.mu.Unlock()

	if entry.release() {
		b.cfg.metrics.Listeners.Dec()
	}
}

// release drops the handler once. It reports whether this call did it.
func (l *listenerEntry) release() bool {
	l.use.Lock()
	defer l.use.Unlock()
	if l.closed {
		return false
	}
	l.closed = true
	l.handler.Drop()
	return true
}

func (l *listenerEntry) invoke(ev ffi.Event) (ffi.Future[bool], bool) {
	l.use.RLock()
	defer l.use.RUnlock()
	if l.closed {
		return ffi.Future[bool]{}, false
	}
	return l.handler.Invoke(ev), true
}

// Listeners returns the number of registered listeners.
func (b *Bus) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// Waiters returns the number of pending next-event waiters.
func (b *Bus) Waiters() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.waiters)
}

// Publish takes ownership of ev and dispatches it. It returns once every
// sequential listener has handled the event, and reports whether the
// event was intercepted by then.
func (b *Bus) Publish(ctx context.Context, ev ffi.Event) bool {
	defer ev.Base.Drop()

	if ev.Intercepted == nil {
		ev.Intercepted = unsafe.Pointer(new(atomic.Bool))
	}
	flag := (*atomic.Bool)(ev.Intercepted)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return false
	}
	listeners := slices.Clone(b.listeners)
	waiters := slices.Clone(b.waiters)
	b.mu.Unlock()

	b.cfg.metrics.EventsPublished.WithLabelValues(eventKind(ev.Type)).Inc()

	li, wi := 0, 0
	for li < len(listeners) || wi < len(waiters) {
		if flag.Load() || ctx.Err() != nil {
			break
		}
		if wi < len(waiters) && (li == len(listeners) || waiters[wi].priority <= listeners[li].priority) {
			waiters[wi].offer(ev)
			wi++
			continue
		}
		b.deliver(ctx, listeners[li], ev)
		li++
	}
	return flag.Load()
}

func (b *Bus) deliver(ctx context.Context, l *listenerEntry, ev ffi.Event) {
	if l.concurrent {
		clone := ev.Clone()
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.handle(b.ctx, l, clone)
		}()
		return
	}

	l.serial.Lock()
	defer l.serial.Unlock()
	b.handle(ctx, l, ev.Clone())
}

// handle runs one invocation. ev is an owned clone.
func (b *Bus) handle(ctx context.Context, l *listenerEntry, ev ffi.Event) {
	fut, ok := l.invoke(ev)
	if !ok {
		ev.Base.Drop()
		return
	}

	keep, err := driveRecover(ctx, &fut)
	if err != nil {
		b.cfg.logger.Error("listener failed, closing it", zap.Error(err))
		keep = false
	}
	if !keep {
		b.removeListener(l)
	}
}

func driveRecover(ctx context.Context, fut *ffi.Future[bool]) (keep bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &listenerPanic{value: r}
		}
	}()
	keep, err = ffi.Drive(ctx, fut)
	if err != nil {
		// A cancelled dispatch does not close the listener.
		return true, nil
	}
	return keep, nil
}

type listenerPanic struct{ value any }

func (p *listenerPanic) Error() string { return fmt.Sprintf("listener panicked: %v", p.value) }

// NextEvent takes ownership of filter and returns a future that resolves
// with an owned clone of the first event at or below priority that filter
// accepts, or with None once millis elapse. Dropping the future cancels
// the wait.
func (b *Bus) NextEvent(millis uint64, filter ffi.Fn[ffi.Event, bool], priority uint8) ffi.Future[ffi.Option[ffi.Event]] {
	w := &waiter{bus: b, priority: priority, filter: filter}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		filter.Drop()
		return ffi.ReadyFuture(ffi.None[ffi.Event]())
	}
	b.waiters = insertOrdered(b.waiters, w, func(w *waiter) uint8 { return w.priority })
	b.cfg.metrics.Waiters.Inc()
	b.mu.Unlock()

	w.mu.Lock()
	if !w.done {
		w.timer = time.AfterFunc(time.Duration(millis)*time.Millisecond, func() {
			w.resolve(ffi.None[ffi.Event]())
		})
	}
	w.mu.Unlock()
	return ffi.NewFuture[ffi.Option[ffi.Event]](&waiterTask{w: w})
}

func (b *Bus) removeWaiter(w *waiter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := slices.Index(b.waiters, w); i >= 0 {
		b.waiters = slices.Delete(b.waiters, i, i+1)
		b.cfg.metrics.Waiters.Dec()
	}
}

// Close unregisters every listener, resolves pending waiters with None
// and waits for concurrent handlers. In-flight handler futures are
// cancelled.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	listeners := b.listeners
	waiters := slices.Clone(b.waiters)
	b.listeners = nil
	b.mu.Unlock()

	b.cancel()
	for _, w := range waiters {
		w.resolve(ffi.None[ffi.Event]())
	}
	for _, l := range listeners {
		if l.release() {
			b.cfg.metrics.Listeners.Dec()
		}
	}
	b.wg.Wait()
}

type waiter struct {
	bus      *Bus
	priority uint8
	filter   ffi.Fn[ffi.Event, bool]

	use      sync.RWMutex
	released bool

	mu     sync.Mutex
	timer  *time.Timer
	done   bool
	taken  bool
	result ffi.Option[ffi.Event]
	waker  *ffi.Waker
}

func (w *waiter) offer(ev ffi.Event) {
	if !w.matches(ev) {
		return
	}
	w.resolve(ffi.Some(ev.Clone()))
}

func (w *waiter) matches(ev ffi.Event) bool {
	w.use.RLock()
	defer w.use.RUnlock()
	if w.released {
		return false
	}
	return w.filter.Invoke(ev.Clone())
}

func (w *waiter) releaseFilter() {
	w.use.Lock()
	defer w.use.Unlock()
	if !w.released {
		w.released = true
		w.filter.Drop()
	}
}

func (w *waiter) resolve(res ffi.Option[ffi.Event]) {
	w.mu.Lock()
	if w.done {
		w.mu.Unlock()
		dropEvent(res)
		return
	}
	w.done = true
	w.result = res
	wk := w.waker
	w.waker = nil
	timer := w.timer
	w.mu.Unlock()

	w.finish(timer)
	if wk != nil {
		wk.Wake()
	}
}

func (w *waiter) finish(timer *time.Timer) {
	if timer != nil {
		timer.Stop()
	}
	w.bus.removeWaiter(w)
	w.releaseFilter()
}

func dropEvent(opt ffi.Option[ffi.Event]) {
	if ev, ok := opt.Get(); ok {
		ev.Base.Drop()
	}
}

type waiterTask struct {
	w *waiter
}

func (t *waiterTask) Poll(cx *ffi.Context) (ffi.Option[ffi.Event], bool) {
	w := t.w
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		w.taken = true
		return w.result, true
	}
	if w.waker != nil {
		w.waker.Drop()
	}
	wk := cx.Waker().Clone()
	w.waker = &wk
	return ffi.None[ffi.Event](), false
}

func (t *waiterTask) Drop() {
	w := t.w
	w.mu.Lock()
	wasDone := w.done
	w.done = true
	leftover := wasDone && !w.taken
	w.taken = true
	res := w.result
	wk := w.waker
	w.waker = nil
	timer := w.timer
	w.mu.Unlock()

	if wk != nil {
		wk.Drop()
	}
	if !wasDone {
		w.finish(timer)
	}
	if leftover {
		dropEvent(res)
	}
}

func eventKind(t uint8) string {
	switch t {
	case ffi.EventBotLogin:
		return "bot_login"
	case ffi.EventGroupMessage:
		return "group_message"
	case ffi.EventFriendMessage:
		return "friend_message"
	default:
		return "unknown"
	}
}
