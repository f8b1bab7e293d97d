package ffi

import "unsafe"

// emptyByte backs empty strings so that an empty String is never null.
var emptyByte byte

// String is an owned UTF-8 buffer.
// A null Ptr is reserved for "no value" and is distinct from the empty string.
type String struct {
	Ptr *byte
	Len int
	Cap int
}

// StringFrom transfers s into a String without copying.
func StringFrom(s string) String {
	if len(s) == 0 {
		return String{Ptr: &emptyByte}
	}
	return String{Ptr: unsafe.StringData(s), Len: len(s), Cap: len(s)}
}

// StringFromBytes transfers b into a String without copying. The caller
// gives up b: it must not be written after the call.
func StringFromBytes(b []byte) String {
	if cap(b) == 0 {
		return String{Ptr: &emptyByte}
	}
	return String{Ptr: unsafe.SliceData(b), Len: len(b), Cap: cap(b)}
}

// NullString returns the null String.
func NullString() String { return String{} }

// IsNull reports whether s carries no value.
func (s String) IsNull() bool { return s.Ptr == nil }

// Into converts s back into a Go string without copying.
// The null String converts to "".
func (s String) Into() string {
	if s.Ptr == nil || s.Len == 0 {
		return ""
	}
	return unsafe.String(s.Ptr, s.Len)
}

// AsStr borrows s. The view is valid while s is.
func (s String) AsStr() Str {
	return Str{Ptr: s.Ptr, Len: s.Len}
}

// Str is a borrowed UTF-8 view. It is only valid while its owner is.
type Str struct {
	Ptr *byte
	Len int
}

// StrFrom borrows s.
func StrFrom(s string) Str {
	if len(s) == 0 {
		return Str{Ptr: &emptyByte}
	}
	return Str{Ptr: unsafe.StringData(s), Len: len(s)}
}

// IsNull reports whether the view is null.
func (s Str) IsNull() bool { return s.Ptr == nil }

// Borrow returns the view as a Go string aliasing the owner's storage.
// The result must not outlive the owner.
func (s Str) Borrow() string {
	if s.Ptr == nil || s.Len == 0 {
		return ""
	}
	return unsafe.String(s.Ptr, s.Len)
}

// String copies the view into a new Go string.
func (s Str) String() string {
	if s.Ptr == nil || s.Len == 0 {
		return ""
	}
	return string(unsafe.Slice(s.Ptr, s.Len))
}
