package host

import (
	"context"

	"github.com/AtriKawaii/atri-go/ffi"
	"github.com/AtriKawaii/atri-go/message"
)

// Image is an image stored by the host.
type Image struct {
	ID  string
	URL string
}

// ImageElement wraps img as a message element.
func ImageElement(img Image) message.Image {
	return message.ImageFromFFI(ffi.CloneableCopy(img))
}

// Sender is the author of a group message.
type Sender struct {
	Named    bool
	ID       int64
	Nickname string
	CardName string
}

// BotLogin is published when a client finishes logging in.
type BotLogin struct {
	ClientID int64
}

// GroupMessage is a message posted in a group.
type GroupMessage struct {
	GroupID int64
	Sender  Sender
	Message message.MessageChain
}

// Clone duplicates the message and the host handles it holds.
func (e GroupMessage) Clone() GroupMessage {
	e.Message = e.Message.Clone()
	return e
}

// Drop releases the host handles held by the message.
func (e *GroupMessage) Drop() {
	e.Message.Release()
}

// FriendMessage is a private message from a friend.
type FriendMessage struct {
	FriendID int64
	Message  message.MessageChain
}

// Clone duplicates the message and the host handles it holds.
func (e FriendMessage) Clone() FriendMessage {
	e.Message = e.Message.Clone()
	return e
}

// Drop releases the host handles held by the message.
func (e *FriendMessage) Drop() {
	e.Message.Release()
}

// PublishBotLogin dispatches a login event.
func (m *Manager) PublishBotLogin(ctx context.Context, e BotLogin) bool {
	return m.bus.Publish(ctx, ffi.Event{Type: ffi.EventBotLogin, Base: ffi.CloneableCopy(e)})
}

// PublishGroupMessage takes ownership of e and dispatches it. It reports
// whether a listener intercepted the event.
func (m *Manager) PublishGroupMessage(ctx context.Context, e GroupMessage) bool {
	return m.bus.Publish(ctx, ffi.Event{Type: ffi.EventGroupMessage, Base: ffi.CloneableOf(e)})
}

// PublishFriendMessage takes ownership of e and dispatches it.
func (m *Manager) PublishFriendMessage(ctx context.Context, e FriendMessage) bool {
	return m.bus.Publish(ctx, ffi.Event{Type: ffi.EventFriendMessage, Base: ffi.CloneableOf(e)})
}
