package hostfuncs

import (
	"slices"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/AtriKawaii/atri-go/ffi"
)

// Middleware wraps a lookup to add cross-cutting behavior.
//
//	counting := func(next ffi.Lookup) ffi.Lookup {
//	    return func(id uint16) unsafe.Pointer {
//	        lookups.Add(1)
//	        return next(id)
//	    }
//	}
type Middleware func(next ffi.Lookup) ffi.Lookup

// LoggingMiddleware logs every lookup at debug level and ids the table
// does not provide at warn level.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next ffi.Lookup) ffi.Lookup {
		return func(id uint16) unsafe.Pointer {
			fn := next(id)
			if fn == nil {
				logger.Warn("host function not provided", zap.Uint16("id", id))
			} else {
				logger.Debug("host function resolved", zap.Uint16("id", id))
			}
			return fn
		}
	}
}

// MissingRecorder remembers the ids that were looked up but not found.
type MissingRecorder struct {
	mu      sync.Mutex
	missing map[uint16]struct{}
}

// NewMissingRecorder creates an empty recorder.
func NewMissingRecorder() *MissingRecorder {
	return &MissingRecorder{missing: make(map[uint16]struct{})}
}

// Middleware returns the recording middleware.
func (m *MissingRecorder) Middleware() Middleware {
	return func(next ffi.Lookup) ffi.Lookup {
		return func(id uint16) unsafe.Pointer {
			fn := next(id)
			if fn == nil {
				m.mu.Lock()
				m.missing[id] = struct{}{}
				m.mu.Unlock()
			}
			return fn
		}
	}
}

// Missing returns the recorded ids in ascending order.
func (m *MissingRecorder) Missing() []uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]uint16, 0, len(m.missing))
	for id := range m.missing {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
