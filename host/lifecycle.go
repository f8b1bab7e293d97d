package host

import (
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/AtriKawaii/atri-go/domain/errors"
	"github.com/AtriKawaii/atri-go/ffi"
)

// State is a plugin lifecycle state.
type State uint8

const (
	// StateConstructed holds a live instance that has never been enabled.
	StateConstructed State = iota
	StateEnabled
	// StateDisabled may or may not hold a live instance, depending on
	// whether the plugin asked to be destroyed on disable.
	StateDisabled
	StateUnloaded
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateEnabled:
		return "enabled"
	case StateDisabled:
		return "disabled"
	case StateUnloaded:
		return "unloaded"
	default:
		return "invalid"
	}
}

// LifecycleOption configures a Lifecycle.
type LifecycleOption func(*Lifecycle)

// WithLifecycleLogger sets the lifecycle logger.
func WithLifecycleLogger(l *zap.Logger) LifecycleOption {
	return func(lc *Lifecycle) {
		lc.logger = l
	}
}

// WithLifecycleMetrics sets the metrics transitions are counted on.
func WithLifecycleMetrics(m *Metrics) LifecycleOption {
	return func(lc *Lifecycle) {
		lc.metrics = m
	}
}

// Lifecycle drives one plugin instance through
// construct, enable, disable and unload.
//
// When the descriptor asks to be destroyed on disable, Disable destroys
// the instance and the next Enable constructs a fresh one. Otherwise the
// same instance lives until Unload. Whatever instance is live at Unload
// is destroyed exactly once.
type Lifecycle struct {
	name       string
	vtable     ffi.PluginVTable
	shouldDrop bool
	logger     *zap.Logger
	metrics    *Metrics

	mu       sync.Mutex
	instance unsafe.Pointer
	state    State
}

// NewLifecycle takes over the instance carried by inst.
func NewLifecycle(inst ffi.PluginInstance, opts ...LifecycleOption) *Lifecycle {
	lc := &Lifecycle{
		name:       inst.Name.Into(),
		vtable:     inst.VTable,
		shouldDrop: inst.ShouldDrop,
		instance:   inst.Instance,
		state:      StateConstructed,
	}
	for _, opt := range opts {
		opt(lc)
	}
	if lc.logger == nil {
		lc.logger = Logger()
	}
	if lc.metrics == nil {
		lc.metrics = NewMetrics(nil)
	}
	lc.logger = lc.logger.With(zap.String("plugin", lc.name))
	return lc
}

// Name returns the plugin name.
func (lc *Lifecycle) Name() string { return lc.name }

// State returns the current state.
func (lc *Lifecycle) State() State {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.state
}

// Live reports whether an instance currently exists.
func (lc *Lifecycle) Live() bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.instance != nil
}

// Enable enables the plugin, constructing a fresh instance first if the
// previous one was destroyed on disable.
func (lc *Lifecycle) Enable() error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if lc.state != StateConstructed && lc.state != StateDisabled {
		return lc.invalid("enable")
	}
	if lc.instance == nil {
		var inst unsafe.Pointer
		if err := lc.call("construct", func() { inst = lc.vtable.New() }); err != nil {
			return err
		}
		lc.instance = inst
		lc.count("construct")
	}
	if err := lc.call("enable", func() { lc.vtable.Enable(lc.instance) }); err != nil {
		return err
	}
	lc.state = StateEnabled
	lc.count("enable")
	lc.logger.Info("plugin enabled")
	return nil
}

// Disable disables the plugin.
func (lc *Lifecycle) Disable() error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if lc.state != StateEnabled {
		return lc.invalid("disable")
	}
	return lc.disable()
}

func (lc *Lifecycle) disable() error {
	err := lc.call("disable", func() { lc.vtable.Disable(lc.instance) })
	// The plugin is not considered enabled after a failed disable.
	lc.state = StateDisabled
	lc.count("disable")
	if lc.shouldDrop {
		if derr := lc.destroy(); err == nil {
			err = derr
		}
	}
	lc.logger.Info("plugin disabled", zap.Bool("destroyed", lc.instance == nil))
	return err
}

// Unload disables the plugin if it is enabled and destroys the live
// instance, if any. No further transitions are possible.
func (lc *Lifecycle) Unload() error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if lc.state == StateUnloaded {
		return lc.invalid("unload")
	}
	var err error
	if lc.state == StateEnabled {
		err = lc.disable()
	}
	if derr := lc.destroy(); err == nil {
		err = derr
	}
	lc.state = StateUnloaded
	lc.count("unload")
	return err
}

func (lc *Lifecycle) destroy() error {
	if lc.instance == nil {
		return nil
	}
	inst := lc.instance
	lc.instance = nil
	lc.count("destroy")
	return lc.call("destroy", func() { lc.vtable.Drop(inst) })
}

func (lc *Lifecycle) invalid(transition string) error {
	return &errors.LifecycleError{Plugin: lc.name, Transition: transition, State: lc.state.String()}
}

func (lc *Lifecycle) count(transition string) {
	lc.metrics.Transitions.WithLabelValues(lc.name, transition).Inc()
}

// call runs a plugin entry point, turning a panic into an error.
func (lc *Lifecycle) call(op string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			lc.logger.Error("plugin entry point panicked", zap.String("op", op), zap.Any("panic", r))
			err = &errors.PanicError{Plugin: lc.name, Operation: op, Value: r}
		}
	}()
	fn()
	return nil
}
