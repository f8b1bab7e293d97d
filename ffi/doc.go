// Package ffi defines the data shapes exchanged between a plugin image and
// its host.
//
// Both sides of the boundary live in one address space and agree on these
// layouts without copying. Owned buffers carry their storage, length and
// capacity so ownership can flow either way. Opaque values travel as a
// pointer plus the destructor that frees them, so whichever side ends up
// holding a value can release it without knowing its type. Asynchronous
// work travels as a Future: a task handle plus a poll function driven by a
// Waker supplied by the caller. Callbacks travel as a Fn: a closure handle
// plus an invoke function.
//
// Unions are encoded as a tag plus a pointer to the active variant. Readers
// must branch on the tag before touching the variant.
//
// Functions are exchanged as Go func values. FuncPointer and FuncFrom
// convert between a func value and the opaque word stored in the host's
// lookup table; the conversion is unchecked and the caller is responsible
// for matching signatures.
package ffi
