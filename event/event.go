// Package event wraps the events the host dispatches to listeners.
package event

import (
	"unsafe"

	"github.com/AtriKawaii/atri-go/ffi"
	"github.com/AtriKawaii/atri-go/loader"
	"github.com/AtriKawaii/atri-go/message"
)

// Kind identifies the type of an event.
type Kind uint8

const (
	KindBotLogin      Kind = Kind(ffi.EventBotLogin)
	KindGroupMessage  Kind = Kind(ffi.EventGroupMessage)
	KindFriendMessage Kind = Kind(ffi.EventFriendMessage)
	KindUnknown       Kind = Kind(ffi.EventUnknown)
)

func (k Kind) String() string {
	switch k {
	case KindBotLogin:
		return "bot_login"
	case KindGroupMessage:
		return "group_message"
	case KindFriendMessage:
		return "friend_message"
	default:
		return "unknown"
	}
}

// Event is one host event. The payload is owned by the Event; handlers
// that keep an event past their return must Clone it.
type Event struct {
	kind        Kind
	intercepted unsafe.Pointer
	base        ffi.ManagedCloneable
}

// FromFFI wraps a boundary event, taking ownership of it.
func FromFFI(e ffi.Event) Event {
	kind := Kind(e.Type)
	switch kind {
	case KindBotLogin, KindGroupMessage, KindFriendMessage:
	default:
		kind = KindUnknown
	}
	return Event{kind: kind, intercepted: e.Intercepted, base: e.Base}
}

// Kind returns the event type.
func (e Event) Kind() Kind { return e.kind }

// Intercept stops the event from reaching lower priority listeners.
func (e Event) Intercept() {
	loader.Table().EventIntercept(e.intercepted)
}

// IsIntercepted reports whether a listener intercepted the event.
func (e Event) IsIntercepted() bool {
	return loader.Table().EventIsIntercepted(e.intercepted)
}

// Clone duplicates the payload. The interception state stays shared.
func (e Event) Clone() Event {
	return Event{kind: e.kind, intercepted: e.intercepted, base: e.base.Clone()}
}

// Release drops the payload.
func (e *Event) Release() {
	e.base.Drop()
}

// Raw returns the host payload pointer.
func (e Event) Raw() unsafe.Pointer { return e.base.Pointer() }

// GroupMessageEvent is a message posted in a group.
type GroupMessageEvent struct {
	Event
}

// AsGroupMessage narrows e to a group message.
func AsGroupMessage(e Event) (GroupMessageEvent, bool) {
	if e.kind != KindGroupMessage {
		return GroupMessageEvent{}, false
	}
	return GroupMessageEvent{Event: e}, true
}

// Message returns the posted chain.
func (e GroupMessageEvent) Message() message.MessageChain {
	return message.FromFFI(loader.Table().GroupMessageEventGetMessage(e.Raw()))
}

// Sender returns the member who posted the message.
func (e GroupMessageEvent) Sender() Member {
	return memberFromFFI(loader.Table().GroupMessageEventGetSender(e.Raw()))
}

// FriendMessageEvent is a private message from a friend.
type FriendMessageEvent struct {
	Event
}

// AsFriendMessage narrows e to a friend message.
func AsFriendMessage(e Event) (FriendMessageEvent, bool) {
	if e.kind != KindFriendMessage {
		return FriendMessageEvent{}, false
	}
	return FriendMessageEvent{Event: e}, true
}

// Message returns the received chain.
func (e FriendMessageEvent) Message() message.MessageChain {
	return message.FromFFI(loader.Table().FriendMessageEventGetMessage(e.Raw()))
}

// AnonymousMemberID is the id reported for anonymous senders.
const AnonymousMemberID int64 = 80000000

// Member is the sender of a group message.
type Member struct {
	named bool
	inner ffi.ManagedCloneable
}

func memberFromFFI(m ffi.Member) Member {
	return Member{named: m.IsNamed, inner: m.Inner}
}

// IsNamed reports whether the member posted under their own identity.
func (m Member) IsNamed() bool { return m.named }

// ID returns the member id, or AnonymousMemberID for anonymous members.
func (m Member) ID() int64 {
	if !m.named {
		return AnonymousMemberID
	}
	return loader.Table().NamedMemberGetID(m.inner.Pointer())
}

// Nickname returns the member nickname. Anonymous members have none.
func (m Member) Nickname() string {
	if !m.named {
		return ""
	}
	return loader.Table().NamedMemberGetNickname(m.inner.Pointer()).String()
}

// Release drops the host handle.
func (m *Member) Release() { m.inner.Drop() }
