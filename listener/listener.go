// Package listener subscribes plugin handlers to host events.
//
// A listener stays registered until its Guard is closed or its handler
// returns false. Handlers run on their own goroutine; a handler that
// panics is logged and its listener is closed.
package listener

import (
	"context"
	"log/slog"
	"time"

	"github.com/AtriKawaii/atri-go/event"
	"github.com/AtriKawaii/atri-go/ffi"
	"github.com/AtriKawaii/atri-go/loader"
)

// Priority orders listeners; higher priority listeners see an event
// first and may intercept it.
type Priority uint8

const (
	Top Priority = iota
	High
	Middle
	Low
	Base
)

// DefaultPriority is used when none is given.
const DefaultPriority = Middle

func (p Priority) String() string {
	switch p {
	case Top:
		return "top"
	case High:
		return "high"
	case Middle:
		return "middle"
	case Low:
		return "low"
	case Base:
		return "base"
	default:
		return "invalid"
	}
}

// Builder configures a listener before it starts.
type Builder struct {
	handler    func(event.Event) bool
	concurrent bool
	priority   Priority
}

// NewBuilder returns a concurrent listener at DefaultPriority. The
// listener is closed when handler returns false.
func NewBuilder(handler func(event.Event) bool) *Builder {
	return &Builder{handler: handler, concurrent: true, priority: DefaultPriority}
}

// Always returns a builder for a listener that never closes itself.
func Always(handler func(event.Event)) *Builder {
	return NewBuilder(func(e event.Event) bool {
		handler(e)
		return true
	})
}

// On returns a builder whose handler only sees events that as accepts.
// Other events are skipped and keep the listener open.
func On[E any](as func(event.Event) (E, bool), handler func(E) bool) *Builder {
	return NewBuilder(func(e event.Event) bool {
		typed, ok := as(e)
		if !ok {
			return true
		}
		return handler(typed)
	})
}

// Concurrent sets whether invocations may overlap. A sequential listener
// handles one event at a time.
func (b *Builder) Concurrent(concurrent bool) *Builder {
	b.concurrent = concurrent
	return b
}

// WithPriority sets the listener priority.
func (b *Builder) WithPriority(p Priority) *Builder {
	b.priority = p
	return b
}

// Start registers the listener with the host.
func (b *Builder) Start() *Guard {
	handler := b.handler
	fn := ffi.NewFn(func(raw ffi.Event) ffi.Future[bool] {
		ev := event.FromFFI(raw)
		return ffi.NewFuture(ffi.GoTask(func(context.Context) bool {
			defer ev.Release()
			return invoke(handler, ev)
		}))
	})
	return &Guard{handle: loader.Table().NewListener(b.concurrent, fn, uint8(b.priority))}
}

func invoke(handler func(event.Event) bool, ev event.Event) (keep bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("listener: handler panicked, closing listener", "event", ev.Kind().String(), "panic", r)
			keep = false
		}
	}()
	return handler(ev)
}

// ListeningOn starts a listener with default settings.
func ListeningOn(handler func(event.Event) bool) *Guard {
	return NewBuilder(handler).Start()
}

// ListeningOnAlways starts a listener that never closes itself.
func ListeningOnAlways(handler func(event.Event)) *Guard {
	return Always(handler).Start()
}

// Guard keeps a listener registered. Closing it unregisters the listener.
// A Guard that is dropped without Close keeps the listener until the host
// shuts down.
type Guard struct {
	handle ffi.Managed
}

// Close unregisters the listener. Closing twice is harmless.
func (g *Guard) Close() {
	g.handle.Drop()
}

// NextEvent waits up to timeout for the next event that filter accepts.
// It reports false when the timeout elapses first.
func NextEvent(ctx context.Context, timeout time.Duration, filter func(event.Event) bool) (event.Event, bool, error) {
	return NextEventWithPriority(ctx, timeout, filter, DefaultPriority)
}

// NextEventWithPriority is NextEvent at an explicit priority.
func NextEventWithPriority(ctx context.Context, timeout time.Duration, filter func(event.Event) bool, p Priority) (event.Event, bool, error) {
	fn := ffi.NewScopedFn(func(raw ffi.Event) bool {
		ev := event.FromFFI(raw)
		defer ev.Release()
		return filter(ev)
	})

	fut := loader.Table().ListenerNextEventWithPriority(uint64(timeout.Milliseconds()), fn, uint8(p))
	opt, err := ffi.Drive(ctx, &fut)
	if err != nil {
		return event.Event{}, false, err
	}

	raw, ok := opt.Get()
	if !ok {
		return event.Event{}, false, nil
	}
	return event.FromFFI(raw), true, nil
}

// NextEventOf waits for the next event that as accepts and filter
// approves.
func NextEventOf[E any](ctx context.Context, timeout time.Duration, as func(event.Event) (E, bool), filter func(E) bool) (E, bool, error) {
	ev, ok, err := NextEvent(ctx, timeout, func(e event.Event) bool {
		typed, ok := as(e)
		return ok && filter(typed)
	})
	var zero E
	if err != nil || !ok {
		return zero, false, err
	}
	typed, ok := as(ev)
	if !ok {
		ev.Release()
		return zero, false, nil
	}
	return typed, true, nil
}
