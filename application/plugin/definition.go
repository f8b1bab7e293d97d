// Package plugin turns a Go value into the descriptor a host loads.
//
// A plugin image exports one descriptor built by Export. The host owns the
// instance lifecycle from then on and drives it through the descriptor's
// four operations: construct, enable, disable and destroy.
package plugin

import (
	"reflect"
	"unsafe"

	"github.com/AtriKawaii/atri-go/ffi"
)

// Plugin is implemented by plugin values. A value that also implements
// ffi.Dropper is dropped when the host destroys the instance.
type Plugin interface {
	Enable()
	Disable()
}

// Factory constructs a fresh plugin value.
type Factory func() Plugin

type exportConfig struct {
	name       string
	shouldDrop bool
}

// Option configures Export.
type Option func(*exportConfig)

// WithName overrides the plugin name. The default is DefaultName of the
// first constructed value.
func WithName(name string) Option {
	return func(c *exportConfig) {
		c.name = name
	}
}

// WithShouldDrop sets whether the host destroys the instance on disable
// and constructs a fresh one on the next enable. The default is true.
func WithShouldDrop(shouldDrop bool) Option {
	return func(c *exportConfig) {
		c.shouldDrop = shouldDrop
	}
}

// Export builds the descriptor for plugins produced by factory. The
// descriptor carries an already constructed instance.
func Export(factory Factory, opts ...Option) ffi.PluginInstance {
	cfg := exportConfig{shouldDrop: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	first := factory()
	if cfg.name == "" {
		cfg.name = DefaultName(first)
	}

	return ffi.PluginInstance{
		Instance:   construct(first),
		ShouldDrop: cfg.shouldDrop,
		VTable: ffi.PluginVTable{
			New:     func() unsafe.Pointer { return construct(factory()) },
			Enable:  func(p unsafe.Pointer) { (*holder)(p).plugin.Enable() },
			Disable: func(p unsafe.Pointer) { (*holder)(p).plugin.Disable() },
			Drop:    destroy,
		},
		ABIVersion: ffi.ABIVersion,
		Name:       ffi.StringFrom(cfg.name),
	}
}

// DefaultName derives a plugin name from the type of v: "<Type>_plugin".
func DefaultName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "anonymous_plugin"
	}
	return t.Name() + "_plugin"
}

type holder struct {
	plugin  Plugin
	managed ffi.Managed
}

func (h *holder) Drop() {
	if d, ok := h.plugin.(ffi.Dropper); ok {
		d.Drop()
	}
}

func construct(p Plugin) unsafe.Pointer {
	h := &holder{plugin: p}
	h.managed = ffi.ManagedFromPointer(h)
	return h.managed.Pointer
}

func destroy(p unsafe.Pointer) {
	m := (*holder)(p).managed
	m.Drop()
}
