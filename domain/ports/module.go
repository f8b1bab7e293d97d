package ports

import "github.com/AtriKawaii/atri-go/ffi"

// PluginModule is a loaded plugin image: its bootstrap entry point and
// its descriptor entry point.
type PluginModule interface {
	// Init passes the host manager to the image. The host calls it once,
	// before Instance.
	Init(m ffi.Manager)
	// Instance returns the image's plugin descriptor.
	Instance() ffi.PluginInstance
}

// ModuleOpener loads plugin images from storage.
type ModuleOpener interface {
	Open(path string) (PluginModule, error)
}
