// Package abi tracks the heap boxes handed across the plugin boundary.
//
// Every owned box produced by the ffi package is registered here until its
// destructor runs. Holding the pointer in the ledger keeps the box reachable
// for the Go collector even while the only other reference lives on the far
// side of the boundary, and gives hosts and tests a live count to assert on.
package abi

import (
	"fmt"
	"sync"
	"unsafe"
)

// DefaultMaxLiveBytes is the default ceiling for bytes held by live boxes.
const DefaultMaxLiveBytes = 256 * 1024 * 1024 // 256 MB

var ledger = struct {
	sync.Mutex
	boxes    map[unsafe.Pointer]int // box -> size
	live     int
	limit    int
	pinned   uint64
	released uint64
}{
	boxes: make(map[unsafe.Pointer]int),
	limit: DefaultMaxLiveBytes,
}

// Pin records ptr as a live box of size bytes.
// Panics if the box would push the ledger over its configured limit.
func Pin(ptr unsafe.Pointer, size int) {
	if ptr == nil {
		return
	}

	ledger.Lock()
	defer ledger.Unlock()

	if _, exists := ledger.boxes[ptr]; exists {
		return
	}

	if ledger.live+size > ledger.limit {
		panic(fmt.Sprintf("abi: live box limit exceeded (requested: %d bytes, current: %d bytes, limit: %d bytes)",
			size, ledger.live, ledger.limit))
	}

	ledger.boxes[ptr] = size // PIN: the map entry keeps the box reachable
	ledger.live += size
	ledger.pinned++
}

// Unpin removes ptr from the ledger and reports whether it was tracked.
// Untracked pointers are ignored, so releasing twice is harmless.
func Unpin(ptr unsafe.Pointer) bool {
	ledger.Lock()
	defer ledger.Unlock()

	size, exists := ledger.boxes[ptr]
	if !exists {
		return false
	}

	delete(ledger.boxes, ptr)
	ledger.live -= size
	if ledger.live < 0 {
		ledger.live = 0
	}
	ledger.released++
	return true
}

// Tracked reports whether ptr is a live box.
func Tracked(ptr unsafe.Pointer) bool {
	ledger.Lock()
	defer ledger.Unlock()
	_, ok := ledger.boxes[ptr]
	return ok
}

// UnpinAll forgets every tracked box. Destructors are not run.
// Used when a plugin image is torn down as a whole.
func UnpinAll() {
	ledger.Lock()
	defer ledger.Unlock()

	for ptr := range ledger.boxes {
		delete(ledger.boxes, ptr)
	}
	ledger.live = 0
}

// Stats returns the number of live boxes and the bytes they hold.
func Stats() (count int, bytes int) {
	ledger.Lock()
	defer ledger.Unlock()
	return len(ledger.boxes), ledger.live
}

// Counters returns the lifetime number of pins and releases.
func Counters() (pinned, released uint64) {
	ledger.Lock()
	defer ledger.Unlock()
	return ledger.pinned, ledger.released
}

// Option configures the ledger.
type Option func(*config)

type config struct {
	maxLiveBytes int
}

// WithMaxLiveBytes sets the ceiling for bytes held by live boxes.
// Values of zero or less are ignored.
func WithMaxLiveBytes(limit int) Option {
	return func(c *config) {
		if limit > 0 {
			c.maxLiveBytes = limit
		}
	}
}

// Configure applies options to the ledger.
func Configure(opts ...Option) {
	cfg := config{maxLiveBytes: DefaultMaxLiveBytes}
	for _, opt := range opts {
		opt(&cfg)
	}

	ledger.Lock()
	defer ledger.Unlock()
	ledger.limit = cfg.maxLiveBytes
}
