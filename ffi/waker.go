package ffi

import "unsafe"

// WakerVTable holds the operations of a Waker. Wake consumes the waker,
// WakeByRef does not.
type WakerVTable struct {
	Clone     func(data unsafe.Pointer) Waker
	Wake      func(data unsafe.Pointer)
	WakeByRef func(data unsafe.Pointer)
	Drop      func(data unsafe.Pointer)
}

// Waker is a wake-up handle supplied by whoever polls a Future.
type Waker struct {
	Data   unsafe.Pointer
	VTable *WakerVTable
}

// Clone returns a second handle that wakes the same task.
func (w *Waker) Clone() Waker { return w.VTable.Clone(w.Data) }

// Wake wakes the task and releases w.
func (w *Waker) Wake() {
	data, vt := w.Data, w.VTable
	*w = Waker{}
	vt.Wake(data)
}

// WakeByRef wakes the task and keeps w usable.
func (w *Waker) WakeByRef() { w.VTable.WakeByRef(w.Data) }

// Drop releases w without waking.
func (w *Waker) Drop() {
	if w.VTable == nil {
		return
	}
	data, vt := w.Data, w.VTable
	*w = Waker{}
	vt.Drop(data)
}

type funcWaker struct {
	fn func()
}

var funcWakerVTable = &WakerVTable{
	Wake:      func(data unsafe.Pointer) { (*funcWaker)(data).fn() },
	WakeByRef: func(data unsafe.Pointer) { (*funcWaker)(data).fn() },
	Drop:      func(unsafe.Pointer) {},
}

func init() {
	// Clone hands out the table itself, which a composite literal cannot.
	funcWakerVTable.Clone = func(data unsafe.Pointer) Waker {
		return Waker{Data: data, VTable: funcWakerVTable}
	}
}

// WakerFunc returns a Waker that calls fn on every wake. Clones share fn.
func WakerFunc(fn func()) Waker {
	return Waker{Data: unsafe.Pointer(&funcWaker{fn: fn}), VTable: funcWakerVTable}
}

// NoopWaker returns a Waker that ignores wake-ups.
func NoopWaker() Waker {
	return WakerFunc(func() {})
}

// Context is passed to every poll. It carries the waker of the current
// task.
type Context struct {
	waker *Waker
}

// NewContext returns a poll context for w.
func NewContext(w *Waker) *Context {
	return &Context{waker: w}
}

// Waker returns the waker of the current task. Tasks that return pending
// must clone it if they intend to wake later.
func (cx *Context) Waker() *Waker { return cx.waker }
