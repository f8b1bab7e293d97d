package ffi

import "unsafe"

// ABIVersion is the boundary layout version. Hosts refuse descriptors that
// report anything else.
const ABIVersion uint8 = 1

// PluginVTable holds the lifecycle entry points of a plugin.
// New returns a fresh instance; the other entries take that instance.
type PluginVTable struct {
	New     func() unsafe.Pointer
	Enable  func(instance unsafe.Pointer)
	Disable func(instance unsafe.Pointer)
	Drop    func(instance unsafe.Pointer)
}

// PluginInstance is the descriptor a plugin returns from its entry point.
// Instance is already constructed and is released only through
// VTable.Drop. When ShouldDrop is set the host must
// destroy the instance on disable and construct a fresh one on the next
// enable.
type PluginInstance struct {
	Instance   unsafe.Pointer
	ShouldDrop bool
	VTable     PluginVTable
	ABIVersion uint8
	Name       String
}

// Manager is passed from the host into the plugin's bootstrap entry point.
type Manager struct {
	ManagerPtr unsafe.Pointer
	Handle     uintptr
	GetFun     Lookup
}
