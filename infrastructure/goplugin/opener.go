// Package goplugin opens plugin images built with -buildmode=plugin.
package goplugin

import (
	"fmt"
	"plugin"

	"github.com/AtriKawaii/atri-go/domain/errors"
	"github.com/AtriKawaii/atri-go/domain/ports"
	"github.com/AtriKawaii/atri-go/ffi"
)

// Default entry point names exported by a plugin image.
const (
	DefaultInitSymbol     = "AtriManagerInit"
	DefaultInstanceSymbol = "OnInit"
)

// Config names the entry points looked up in an image.
type Config struct {
	InitSymbol     string
	InstanceSymbol string
}

// Option configures the opener.
type Option func(*Config)

// WithInitSymbol sets the bootstrap entry point name.
func WithInitSymbol(name string) Option {
	return func(c *Config) {
		c.InitSymbol = name
	}
}

// WithInstanceSymbol sets the descriptor entry point name.
func WithInstanceSymbol(name string) Option {
	return func(c *Config) {
		c.InstanceSymbol = name
	}
}

// Opener implements ports.ModuleOpener on top of the plugin package.
type Opener struct {
	cfg  Config
	open func(path string) (symbolTable, error)
}

type symbolTable interface {
	Lookup(name string) (plugin.Symbol, error)
}

// NewOpener creates an Opener.
func NewOpener(opts ...Option) *Opener {
	cfg := Config{InitSymbol: DefaultInitSymbol, InstanceSymbol: DefaultInstanceSymbol}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Opener{cfg: cfg, open: func(path string) (symbolTable, error) { return plugin.Open(path) }}
}

var _ ports.ModuleOpener = (*Opener)(nil)

// Open loads the image at path and resolves its entry points.
func (o *Opener) Open(path string) (ports.PluginModule, error) {
	img, err := o.open(path)
	if err != nil {
		return nil, &errors.LoadError{Source: path, Err: err}
	}
	return resolve(path, img, o.cfg)
}

func resolve(path string, img symbolTable, cfg Config) (ports.PluginModule, error) {
	initSym, err := img.Lookup(cfg.InitSymbol)
	if err != nil {
		return nil, &errors.LoadError{Source: path, Err: err}
	}
	instSym, err := img.Lookup(cfg.InstanceSymbol)
	if err != nil {
		return nil, &errors.LoadError{Source: path, Err: err}
	}

	initFn, ok := initSym.(func(ffi.Manager))
	if !ok {
		return nil, &errors.LoadError{Source: path, Err: fmt.Errorf("%s has type %T, want func(ffi.Manager)", cfg.InitSymbol, initSym)}
	}
	instFn, ok := instSym.(func() ffi.PluginInstance)
	if !ok {
		return nil, &errors.LoadError{Source: path, Err: fmt.Errorf("%s has type %T, want func() ffi.PluginInstance", cfg.InstanceSymbol, instSym)}
	}

	return Module{InitFn: initFn, InstanceFn: instFn}, nil
}

// Module adapts a pair of entry point functions to ports.PluginModule.
// In-process plugins use it directly.
type Module struct {
	InitFn     func(ffi.Manager)
	InstanceFn func() ffi.PluginInstance
}

// Init implements ports.PluginModule.
func (m Module) Init(mgr ffi.Manager) { m.InitFn(mgr) }

// Instance implements ports.PluginModule.
func (m Module) Instance() ffi.PluginInstance { return m.InstanceFn() }
