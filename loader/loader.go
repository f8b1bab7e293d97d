// Package loader holds the host function table of a plugin image.
//
// The host calls Init exactly once, through the image's AtriManagerInit
// entry point, before any other plugin code runs. Init resolves every
// known function id through the host lookup and stores the results; the
// table is read-only afterwards, so readers need no synchronization.
package loader

import (
	"log/slog"

	"github.com/AtriKawaii/atri-go/domain/errors"
	"github.com/AtriKawaii/atri-go/ffi"
)

var (
	manager ffi.Manager
	vtable  *VTable
)

// Init records the host manager and resolves the function table.
// Calls after the first keep the first table and manager. Every image in a
// process shares this package, so later images keep their own handle
// (see atri.Image).
func Init(m ffi.Manager) {
	if vtable != nil {
		slog.Debug("loader: table already resolved", "handle", manager.Handle, "ignored", m.Handle)
		return
	}
	if m.GetFun == nil {
		panic("loader: Init called without a lookup function")
	}

	manager = m
	vtable = resolve(m.GetFun)
}

// Initialized reports whether Init has run.
func Initialized() bool {
	return vtable != nil
}

// Table returns the resolved function table.
// Panics if called before Init.
func Table() *VTable {
	if vtable == nil {
		panic(&errors.NotInitializedError{Operation: "loader.Table"})
	}
	return vtable
}

// Manager returns the manager passed to Init.
// Panics if called before Init.
func Manager() ffi.Manager {
	if vtable == nil {
		panic(&errors.NotInitializedError{Operation: "loader.Manager"})
	}
	return manager
}

// Reset forgets the table so that Init can run again. Only for hosts that
// tear down and rebootstrap an image within one process, which includes
// tests. Reset must not race with readers.
func Reset() {
	manager = ffi.Manager{}
	vtable = nil
}
