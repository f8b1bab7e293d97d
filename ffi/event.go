package ffi

import "unsafe"

// Event kinds.
const (
	EventBotLogin      uint8 = 0
	EventGroupMessage  uint8 = 1
	EventFriendMessage uint8 = 2
	EventUnknown       uint8 = 255
)

// Event is one dispatched host event. Intercepted points at the flag
// shared by every copy of the event; Base is the host's payload.
type Event struct {
	Type        uint8
	Intercepted unsafe.Pointer
	Base        ManagedCloneable
}

// Clone duplicates the payload. The interception flag stays shared.
func (e Event) Clone() Event {
	return Event{Type: e.Type, Intercepted: e.Intercepted, Base: e.Base.Clone()}
}

// Member is a message sender: a named group member or an anonymous one.
type Member struct {
	IsNamed bool
	Inner   ManagedCloneable
}
