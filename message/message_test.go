package message

import (
	"testing"

	"github.com/AtriKawaii/atri-go/ffi"
	"github.com/AtriKawaii/atri-go/internal/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_MergesText(t *testing.T) {
	chain := NewBuilder().
		PushText("hello").
		PushText(", ").
		Push(Text("world")).
		Push(At{Target: 10, Display: "bob"}).
		PushText("!").
		Build()

	require.Len(t, chain.Elements, 3)
	assert.Equal(t, Text("hello, world"), chain.Elements[0])
	assert.Equal(t, At{Target: 10, Display: "bob"}, chain.Elements[1])
	assert.Equal(t, Text("!"), chain.Elements[2])
	assert.Equal(t, "hello, world[At:10(bob)]!", chain.String())
}

func TestBuilder_EmptyTextIsNotEmitted(t *testing.T) {
	chain := NewBuilder().Push(AtAll{}).Build()
	require.Len(t, chain.Elements, 1)
	assert.Equal(t, "[AtAll]", chain.String())
}

func TestBuilder_ReplyAndAnonymous(t *testing.T) {
	quoted := MessageChain{Meta: Metadata{Seqs: []int32{55}, Sender: 9, Time: 1000}, Elements: []Element{Text("q")}}
	chain := NewBuilder().
		WithReply(quoted.IntoReply()).
		WithAnonymous(Anonymous{Nick: "ghost"}).
		PushText("re").
		Build()

	require.NotNil(t, chain.Meta.Reply)
	assert.Equal(t, int32(55), chain.Meta.Reply.ReplySeq)
	assert.Equal(t, int64(9), chain.Meta.Reply.Sender)
	require.NotNil(t, chain.Meta.Anonymous)
	assert.Equal(t, "ghost", chain.Meta.Anonymous.Nick)
}

func TestIntoReply_NoSeqs(t *testing.T) {
	r := MessageChain{}.IntoReply()
	assert.Equal(t, int32(0), r.ReplySeq)
}

func TestChain_FFIRoundTrip(t *testing.T) {
	chain := NewBuilder().
		PushText("text").
		Push(At{Target: 1, Display: "a"}).
		Push(AtAll{}).
		Push(Face{Index: 14, Name: "smile"}).
		WithReply(Reply{ReplySeq: 3, Sender: 4, Time: 5, Elements: []Element{Text("orig")}}).
		WithAnonymous(Anonymous{AnonID: []byte{1, 2}, Nick: "n", Color: "red", BubbleIndex: 2}).
		Build()
	chain.Meta.Seqs = []int32{7, 8}
	chain.Meta.Rands = []int32{9}
	chain.Meta.Time = 42
	chain.Meta.Sender = 99

	back := FromFFI(chain.ToFFI())

	assert.Equal(t, chain.Elements, back.Elements)
	assert.Equal(t, chain.Meta.Seqs, back.Meta.Seqs)
	assert.Equal(t, chain.Meta.Rands, back.Meta.Rands)
	assert.Equal(t, int32(42), back.Meta.Time)
	assert.Equal(t, int64(99), back.Meta.Sender)
	require.NotNil(t, back.Meta.Reply)
	assert.Equal(t, *chain.Meta.Reply, *back.Meta.Reply)
	require.NotNil(t, back.Meta.Anonymous)
	assert.Equal(t, *chain.Meta.Anonymous, *back.Meta.Anonymous)
}

func TestChain_FFIRoundTripWithoutOptionalSections(t *testing.T) {
	back := FromFFI(FromText("plain").ToFFI())
	assert.Nil(t, back.Meta.Reply)
	assert.Nil(t, back.Meta.Anonymous)
	assert.Equal(t, "plain", back.String())
}

func TestChain_CloneDuplicatesHostHandles(t *testing.T) {
	before, _ := abi.Stats()

	chain := MessageChain{Elements: []Element{
		ImageFromFFI(ffi.CloneableCopy("img")),
		UnknownFromFFI(ffi.CloneableCopy(int32(1))),
	}}
	clone := chain.Clone()

	orig := chain.Elements[0].(Image)
	dup := clone.Elements[0].(Image)
	assert.NotEqual(t, orig.raw.Pointer(), dup.raw.Pointer())
	assert.Equal(t, "img", *ffi.As[string](dup.raw.Value))

	chain.Release()
	assert.Equal(t, "img", *ffi.As[string](dup.raw.Value), "clone survives release of the original")
	clone.Release()

	after, _ := abi.Stats()
	assert.Equal(t, before, after)
}

func TestElementFromFFI_InvalidTagSkipped(t *testing.T) {
	raw := []ffi.MessageElement{
		ffi.TextElement(ffi.StringFrom("ok")),
		{Tag: ffi.ElementTag(77)},
	}
	chain := FromFFI(ffi.MessageChain{Elements: ffi.VecFrom(raw)})
	require.Len(t, chain.Elements, 1)
	assert.Equal(t, Text("ok"), chain.Elements[0])

	_, ok := ElementFromFFI(ffi.MessageElement{Tag: ffi.ElementTag(77)})
	assert.False(t, ok)
}

func TestForward_RoundTrip(t *testing.T) {
	alice := ForwardNodeInfo{SenderID: 1, SenderName: "alice", Time: 10}
	bob := ForwardNodeInfo{SenderID: 2, SenderName: "bob", Time: 20}

	var inner ForwardMessage
	inner.PushMessage(bob, FromText("deep"))

	var fwd ForwardMessage
	fwd.PushMessage(alice, FromText("top"))
	fwd.PushForward(bob, inner)

	assert.Equal(t, 2, fwd.Depth())
	assert.Equal(t, 1, inner.Depth())
	assert.Equal(t, 0, ForwardMessage(nil).Depth())

	back := ForwardFromFFI(fwd.ToFFI())
	require.Len(t, back, 2)
	assert.False(t, back[0].IsNested())
	assert.Equal(t, "top", back[0].Chain.String())
	assert.Equal(t, alice, back[0].Info)

	require.True(t, back[1].IsNested())
	require.Len(t, back[1].Forward, 1)
	assert.Equal(t, "deep", back[1].Forward[0].Chain.String())
	assert.Equal(t, bob, back[1].Forward[0].Info)
}
