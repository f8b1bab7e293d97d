// Package hostfuncs builds the function table a host hands to plugins.
//
// A plugin resolves every host function by numeric id through a single
// lookup function during bootstrap. Registry maps those ids to func
// values and produces that lookup. Registries are immutable once built,
// so lookups need no locking.
package hostfuncs
