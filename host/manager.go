package host

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"unsafe"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/AtriKawaii/atri-go/application/validation"
	"github.com/AtriKawaii/atri-go/domain/errors"
	"github.com/AtriKawaii/atri-go/domain/ports"
	"github.com/AtriKawaii/atri-go/ffi"
	"github.com/AtriKawaii/atri-go/hostfuncs"
	"github.com/AtriKawaii/atri-go/infrastructure/goplugin"
)

// PluginExt is the file extension LoadDir picks up.
const PluginExt = ".so"

// Option configures a Manager.
type Option func(*managerConfig)

type managerConfig struct {
	workspace  string
	workers    int
	logger     *zap.Logger
	registerer prometheus.Registerer
	opener     ports.ModuleOpener
	middleware []hostfuncs.Middleware
	extra      []hostfuncs.RegistryOption
}

// WithWorkspace sets the directory plugin workspaces are created under.
func WithWorkspace(dir string) Option {
	return func(c *managerConfig) {
		c.workspace = dir
	}
}

// WithPoolSize sets the number of executor workers.
func WithPoolSize(n int) Option {
	return func(c *managerConfig) {
		c.workers = n
	}
}

// WithLogger sets the logger. Plugin log records are written to it with
// the plugin name attached.
func WithLogger(l *zap.Logger) Option {
	return func(c *managerConfig) {
		c.logger = l
	}
}

// WithRegisterer registers the host metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *managerConfig) {
		c.registerer = reg
	}
}

// WithOpener sets how Open turns a path into a module.
func WithOpener(o ports.ModuleOpener) Option {
	return func(c *managerConfig) {
		c.opener = o
	}
}

// WithLookupMiddleware wraps the lookup handed to plugins.
func WithLookupMiddleware(mw ...hostfuncs.Middleware) Option {
	return func(c *managerConfig) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithSlots serves additional host functions. Ids already served by the
// manager are rejected by NewManager.
func WithSlots(opts ...hostfuncs.RegistryOption) Option {
	return func(c *managerConfig) {
		c.extra = append(c.extra, opts...)
	}
}

// FromConfig applies the workspace and worker settings of cfg.
func FromConfig(cfg Config) Option {
	return func(c *managerConfig) {
		c.workspace = cfg.Workspace
		c.workers = cfg.Workers
	}
}

// Manager is the plugin manager. It owns the executor and the event bus
// and serves the host function table to every plugin it loads.
type Manager struct {
	cfg      managerConfig
	logger   *zap.Logger
	metrics  *Metrics
	exec     *Executor
	bus      *Bus
	registry *hostfuncs.Registry

	mu         sync.Mutex
	plugins    map[uintptr]*Plugin
	names      map[uintptr]string
	order      []uintptr
	nextHandle uintptr
	closed     bool
}

// NewManager creates a manager.
func NewManager(opts ...Option) (*Manager, error) {
	cfg := managerConfig{workspace: DefaultConfig().Workspace}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = Logger()
	}
	if cfg.opener == nil {
		cfg.opener = goplugin.NewOpener()
	}

	metrics := NewMetrics(cfg.registerer)
	m := &Manager{
		cfg:     cfg,
		logger:  cfg.logger,
		metrics: metrics,
		exec:    NewExecutor(WithWorkers(cfg.workers), WithExecutorLogger(cfg.logger), WithExecutorMetrics(metrics)),
		bus:     NewBus(WithBusLogger(cfg.logger), WithBusMetrics(metrics)),
		plugins: make(map[uintptr]*Plugin),
		names:   make(map[uintptr]string),
	}

	regOpts := append(m.slots(), cfg.extra...)
	regOpts = append(regOpts, hostfuncs.WithMiddleware(cfg.middleware...))
	reg, err := hostfuncs.NewRegistry(regOpts...)
	if err != nil {
		m.exec.Close()
		m.bus.Close()
		return nil, fmt.Errorf("build host function table: %w", err)
	}
	m.registry = reg
	return m, nil
}

// Registry returns the host function table.
func (m *Manager) Registry() *hostfuncs.Registry { return m.registry }

// Bus returns the event bus.
func (m *Manager) Bus() *Bus { return m.bus }

// Executor returns the executor.
func (m *Manager) Executor() *Executor { return m.exec }

// Open loads the plugin image at path.
func (m *Manager) Open(path string) (*Plugin, error) {
	mod, err := m.cfg.opener.Open(path)
	if err != nil {
		return nil, err
	}
	return m.load(path, mod)
}

// LoadDir opens every plugin image in dir. Images that fail to load are
// skipped; their errors are combined in the returned error.
func (m *Manager) LoadDir(dir string) ([]*Plugin, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var (
		loaded []*Plugin
		errs   error
	)
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), PluginExt) {
			continue
		}
		p, err := m.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		loaded = append(loaded, p)
	}
	return loaded, errs
}

// LoadModule loads an in-process module.
func (m *Manager) LoadModule(mod ports.PluginModule) (*Plugin, error) {
	return m.load("module", mod)
}

func (m *Manager) load(source string, mod ports.PluginModule) (*Plugin, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, &errors.LoadError{Source: source, Err: fmt.Errorf("manager closed")}
	}
	m.nextHandle++
	handle := m.nextHandle
	m.names[handle] = filepath.Base(source)
	m.mu.Unlock()

	inst, err := m.bootstrap(source, handle, mod)
	if err != nil {
		m.forget(handle)
		return nil, err
	}

	name := inst.Name.Into()
	m.mu.Lock()
	for _, p := range m.plugins {
		if p.Name() == name {
			m.mu.Unlock()
			m.discard(inst)
			m.forget(handle)
			return nil, &errors.LoadError{Source: source, Err: fmt.Errorf("plugin %q is already loaded", name)}
		}
	}
	p := &Plugin{
		manager: m,
		handle:  handle,
		source:  source,
		lc:      NewLifecycle(inst, WithLifecycleLogger(m.logger), WithLifecycleMetrics(m.metrics)),
	}
	m.plugins[handle] = p
	m.names[handle] = name
	m.order = append(m.order, handle)
	m.mu.Unlock()

	m.logger.Info("plugin loaded", zap.String("plugin", name), zap.String("source", source), zap.Bool("should_drop", inst.ShouldDrop))
	return p, nil
}

// bootstrap runs the module's entry points and validates the descriptor.
func (m *Manager) bootstrap(source string, handle uintptr, mod ports.PluginModule) (inst ffi.PluginInstance, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &errors.LoadError{Source: source, Err: &errors.PanicError{Plugin: source, Operation: "init", Value: r}}
		}
	}()

	mod.Init(ffi.Manager{
		ManagerPtr: unsafe.Pointer(m),
		Handle:     handle,
		GetFun:     m.registry.Lookup,
	})
	inst = mod.Instance()

	if err := validation.Descriptor(inst); err != nil {
		m.discard(inst)
		return ffi.PluginInstance{}, &errors.LoadError{Source: source, Err: err}
	}
	return inst, nil
}

// discard destroys the instance of a rejected descriptor.
func (m *Manager) discard(inst ffi.PluginInstance) {
	if inst.Instance == nil || inst.VTable.Drop == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("destroying rejected plugin panicked", zap.Any("panic", r))
		}
	}()
	inst.VTable.Drop(inst.Instance)
}

func (m *Manager) forget(handle uintptr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.plugins, handle)
	delete(m.names, handle)
	if i := slices.Index(m.order, handle); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}
}

func (m *Manager) pluginName(handle uintptr) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name, ok := m.names[handle]; ok {
		return name
	}
	return fmt.Sprintf("plugin-%d", handle)
}

// Plugins returns the loaded plugins in load order.
func (m *Manager) Plugins() []*Plugin {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Plugin, 0, len(m.order))
	for _, h := range m.order {
		out = append(out, m.plugins[h])
	}
	return out
}

// Plugin returns the loaded plugin called name.
func (m *Manager) Plugin(name string) (*Plugin, bool) {
	for _, p := range m.Plugins() {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Close unloads every plugin in reverse load order, then stops the bus
// and the executor.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	plugins := m.Plugins()
	var errs error
	for i := len(plugins) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, plugins[i].Unload())
	}
	m.bus.Close()
	m.exec.Close()
	return errs
}

// Plugin is a loaded plugin.
type Plugin struct {
	manager *Manager
	handle  uintptr
	source  string
	lc      *Lifecycle
}

// Name returns the name the plugin reported.
func (p *Plugin) Name() string { return p.lc.Name() }

// Handle returns the handle the plugin was bootstrapped with.
func (p *Plugin) Handle() uintptr { return p.handle }

// Source returns where the plugin was loaded from.
func (p *Plugin) Source() string { return p.source }

// State returns the lifecycle state.
func (p *Plugin) State() State { return p.lc.State() }

// Enable enables the plugin.
func (p *Plugin) Enable() error { return p.lc.Enable() }

// Disable disables the plugin.
func (p *Plugin) Disable() error { return p.lc.Disable() }

// Unload disables and destroys the plugin and removes it from the
// manager.
func (p *Plugin) Unload() error {
	err := p.lc.Unload()
	p.manager.forget(p.handle)
	p.manager.logger.Info("plugin unloaded", zap.String("plugin", p.Name()))
	return err
}
