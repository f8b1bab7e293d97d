package listener

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AtriKawaii/atri-go/event"
	"github.com/AtriKawaii/atri-go/ffi"
)

func rawEvent(kind uint8) event.Event {
	return event.FromFFI(ffi.Event{Type: kind, Base: ffi.NullCloneable()})
}

func TestPriority_String(t *testing.T) {
	tests := []struct {
		p    Priority
		want string
	}{
		{Top, "top"},
		{High, "high"},
		{Middle, "middle"},
		{Low, "low"},
		{Base, "base"},
		{Priority(9), "invalid"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.p.String())
	}
}

func TestBuilder_Defaults(t *testing.T) {
	b := NewBuilder(func(event.Event) bool { return true })
	assert.True(t, b.concurrent)
	assert.Equal(t, DefaultPriority, b.priority)

	b.Concurrent(false).WithPriority(Top)
	assert.False(t, b.concurrent)
	assert.Equal(t, Top, b.priority)
}

func TestOn_SkipsOtherKinds(t *testing.T) {
	calls := 0
	b := On(event.AsGroupMessage, func(event.GroupMessageEvent) bool {
		calls++
		return false
	})

	assert.True(t, b.handler(rawEvent(ffi.EventFriendMessage)), "skipped events keep the listener")
	assert.Equal(t, 0, calls)

	assert.False(t, b.handler(rawEvent(ffi.EventGroupMessage)))
	assert.Equal(t, 1, calls)
}

func TestAlways_KeepsListening(t *testing.T) {
	seen := 0
	b := Always(func(event.Event) { seen++ })

	assert.True(t, b.handler(rawEvent(ffi.EventBotLogin)))
	assert.Equal(t, 1, seen)
}

func TestInvoke_PanicClosesListener(t *testing.T) {
	keep := invoke(func(event.Event) bool { panic("handler bug") }, rawEvent(ffi.EventBotLogin))
	assert.False(t, keep)
}
