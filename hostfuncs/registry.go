package hostfuncs

import (
	"fmt"
	"reflect"
	"slices"
	"unsafe"

	"github.com/AtriKawaii/atri-go/ffi"
)

// Registry is an immutable id to function table.
type Registry struct {
	slots  map[uint16]unsafe.Pointer
	ids    []uint16 // sorted
	lookup ffi.Lookup
}

// RegistryOption configures a Registry under construction.
type RegistryOption func(*registryBuilder)

type registryBuilder struct {
	slots      map[uint16]unsafe.Pointer
	middleware []Middleware
	errors     []error
}

// NewRegistry creates a Registry from opts. It fails if an id is
// registered twice or a slot is not a non-nil func.
//
//	reg, err := NewRegistry(
//	    WithMiddleware(LoggingMiddleware(logger)),
//	    WithSlot(loader.IDLog, logFn),
//	)
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	b := &registryBuilder{slots: make(map[uint16]unsafe.Pointer)}
	for _, opt := range opts {
		opt(b)
	}
	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}

	ids := make([]uint16, 0, len(b.slots))
	for id := range b.slots {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	r := &Registry{slots: b.slots, ids: ids}

	lookup := r.base
	// First middleware wraps outermost.
	for i := len(b.middleware) - 1; i >= 0; i-- {
		lookup = b.middleware[i](lookup)
	}
	r.lookup = lookup
	return r, nil
}

func (r *Registry) base(id uint16) unsafe.Pointer {
	return r.slots[id]
}

// Lookup returns the function registered under id, or nil. It has the
// signature plugins expect in ffi.Manager.GetFun.
func (r *Registry) Lookup(id uint16) unsafe.Pointer {
	return r.lookup(id)
}

// Has reports whether id is registered. Middleware is not consulted.
func (r *Registry) Has(id uint16) bool {
	_, ok := r.slots[id]
	return ok
}

// IDs returns the registered ids in ascending order.
func (r *Registry) IDs() []uint16 {
	return slices.Clone(r.ids)
}

// Len returns the number of registered slots.
func (r *Registry) Len() int {
	return len(r.ids)
}

func (b *registryBuilder) addSlot(id uint16, fn unsafe.Pointer) error {
	if _, exists := b.slots[id]; exists {
		return fmt.Errorf("duplicate slot id: %d", id)
	}
	b.slots[id] = fn
	return nil
}

// WithSlot registers fn under id. F must be a func type and must match
// the signature plugins expect for id exactly.
func WithSlot[F any](id uint16, fn F) RegistryOption {
	return func(b *registryBuilder) {
		v := reflect.ValueOf(fn)
		if v.Kind() != reflect.Func {
			b.errors = append(b.errors, fmt.Errorf("slot %d: %T is not a func", id, fn))
			return
		}
		if v.IsNil() {
			b.errors = append(b.errors, fmt.Errorf("slot %d: nil func", id))
			return
		}
		if err := b.addSlot(id, ffi.FuncPointer(fn)); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithRegistry copies every slot of other into the registry being built.
func WithRegistry(other *Registry) RegistryOption {
	return func(b *registryBuilder) {
		for _, id := range other.ids {
			if err := b.addSlot(id, other.slots[id]); err != nil {
				b.errors = append(b.errors, err)
			}
		}
	}
}

// WithMiddleware adds lookup middleware. Middleware runs in FIFO order.
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}
