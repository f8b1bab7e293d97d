// Package atri is the entry point of a plugin image.
//
// A plugin binary built with -buildmode=plugin exports two symbols the
// host looks up: AtriManagerInit, which must call ManagerInit, and
// OnInit, which returns the descriptor built by plugin.Export.
//
//	var image atri.Image
//
//	func AtriManagerInit(m ffi.Manager) { image.Init(m) }
//
//	func OnInit() ffi.PluginInstance { return plugin.Export(newEcho) }
package atri

import (
	"github.com/AtriKawaii/atri-go/ffi"
	"github.com/AtriKawaii/atri-go/loader"
)

// Version is the library version.
const Version = "0.1.0"

// ManagerInit bootstraps the plugin with the host manager. It suits a host
// that loads a single image; images that share a host use Image.
func ManagerInit(m ffi.Manager) {
	loader.Init(m)
}

// Workspace returns the private directory, created by the host on first
// use, of the first image bootstrapped in the process. See Image.
func Workspace() string {
	m := loader.Manager()
	return loader.Table().EnvGetWorkspace(m.Handle, m.ManagerPtr).Into()
}
