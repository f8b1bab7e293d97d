package atri

import (
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/AtriKawaii/atri-go/domain/errors"
	"github.com/AtriKawaii/atri-go/ffi"
	"github.com/AtriKawaii/atri-go/loader"
	"github.com/AtriKawaii/atri-go/log"
)

// Image is the bootstrap state of one plugin image.
//
// Go plugins loaded into one host share every package they import, the
// loader included, so package-level state cannot tell two images apart.
// An image that may run next to others keeps an Image in its own main
// package and reaches its workspace, config and logger through it:
//
//	var image atri.Image
//
//	func AtriManagerInit(m ffi.Manager) { image.Init(m) }
type Image struct {
	manager atomic.Pointer[ffi.Manager]
}

var _ log.Binding = (*Image)(nil)

// Init bootstraps the image. The function table is resolved by the first
// image in the process and shared; the handle stays with i.
func (i *Image) Init(m ffi.Manager) {
	loader.Init(m)
	i.manager.Store(&m)
}

// Bootstrapped returns the manager passed to Init.
func (i *Image) Bootstrapped() (ffi.Manager, bool) {
	m := i.manager.Load()
	if m == nil {
		return ffi.Manager{}, false
	}
	return *m, true
}

// Manager returns the manager passed to Init.
// Panics if called before Init.
func (i *Image) Manager() ffi.Manager {
	m, ok := i.Bootstrapped()
	if !ok {
		panic(&errors.NotInitializedError{Operation: "atri.Image"})
	}
	return m
}

// Workspace returns this image's private directory on the host.
func (i *Image) Workspace() string {
	m := i.Manager()
	return loader.Table().EnvGetWorkspace(m.Handle, m.ManagerPtr).Into()
}

// LoadConfig reads file from this image's workspace into out and
// validates it. An empty file name selects DefaultConfigFile.
func (i *Image) LoadConfig(file string, out any) error {
	if file == "" {
		file = DefaultConfigFile
	}
	return DecodeConfig(filepath.Join(i.Workspace(), file), out)
}

// Logger returns a logger whose records the host attributes to this image.
func (i *Image) Logger(opts ...log.HandlerOption) *slog.Logger {
	return slog.New(log.NewHandler(append(opts, log.WithBinding(i))...))
}
