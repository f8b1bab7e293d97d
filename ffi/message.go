package ffi

import "unsafe"

// ElementTag selects the variant of a MessageElement.
type ElementTag uint8

const (
	TagText    ElementTag = 0
	TagImage   ElementTag = 1
	TagAt      ElementTag = 2
	TagAtAll   ElementTag = 3
	TagFace    ElementTag = 4
	TagUnknown ElementTag = 255
)

// String returns the tag name.
func (t ElementTag) String() string {
	switch t {
	case TagText:
		return "text"
	case TagImage:
		return "image"
	case TagAt:
		return "at"
	case TagAtAll:
		return "at_all"
	case TagFace:
		return "face"
	case TagUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// At mentions a single member.
type At struct {
	Target  int64
	Display String
}

// Face is a built-in emoticon.
type Face struct {
	Index int32
	Name  String
}

// MessageElement is one tagged element of a chain.
type MessageElement struct {
	Tag     ElementTag
	payload unsafe.Pointer
}

// TextElement encodes a text run.
func TextElement(s String) MessageElement {
	return MessageElement{Tag: TagText, payload: unsafe.Pointer(&s)}
}

// ImageElement encodes an image held by the host.
func ImageElement(img ManagedCloneable) MessageElement {
	return MessageElement{Tag: TagImage, payload: unsafe.Pointer(&img)}
}

// AtElement encodes a mention.
func AtElement(at At) MessageElement {
	return MessageElement{Tag: TagAt, payload: unsafe.Pointer(&at)}
}

// AtAllElement encodes a mention of everyone.
func AtAllElement() MessageElement {
	return MessageElement{Tag: TagAtAll}
}

// FaceElement encodes an emoticon.
func FaceElement(face Face) MessageElement {
	return MessageElement{Tag: TagFace, payload: unsafe.Pointer(&face)}
}

// UnknownElement encodes an element the receiving side cannot interpret.
func UnknownElement(raw ManagedCloneable) MessageElement {
	return MessageElement{Tag: TagUnknown, payload: unsafe.Pointer(&raw)}
}

// Text returns the text variant. Tag must be TagText.
func (e MessageElement) Text() String { return *(*String)(e.payload) }

// Image returns the image variant. Tag must be TagImage.
func (e MessageElement) Image() ManagedCloneable { return *(*ManagedCloneable)(e.payload) }

// At returns the mention variant. Tag must be TagAt.
func (e MessageElement) At() At { return *(*At)(e.payload) }

// Face returns the emoticon variant. Tag must be TagFace.
func (e MessageElement) Face() Face { return *(*Face)(e.payload) }

// Unknown returns the opaque variant. Tag must be TagUnknown.
func (e MessageElement) Unknown() ManagedCloneable { return *(*ManagedCloneable)(e.payload) }

// Anonymous describes the anonymous identity a message was sent under.
type Anonymous struct {
	AnonID        Vec[byte]
	Nick          String
	PortraitIndex int32
	BubbleIndex   int32
	ExpireTime    int32
	Color         String
}

// Reply references the message being replied to.
type Reply struct {
	ReplySeq int32
	Sender   int64
	Time     int32
	Elements Vec[MessageElement]
}

// Metadata flag bits.
const (
	FlagAnonymous uint8 = 1 << 0
	FlagReply     uint8 = 1 << 1
)

// MessageMetadata carries the chain's sequence information and the
// optional anonymous and reply sections selected by Flags.
type MessageMetadata struct {
	Seqs      Vec[int32]
	Rands     Vec[int32]
	Time      int32
	Sender    int64
	Flags     uint8
	anonymous Anonymous
	reply     Reply
}

// WithAnonymous sets the anonymous section.
func (m MessageMetadata) WithAnonymous(a Anonymous) MessageMetadata {
	m.anonymous = a
	m.Flags |= FlagAnonymous
	return m
}

// WithReply sets the reply section.
func (m MessageMetadata) WithReply(r Reply) MessageMetadata {
	m.reply = r
	m.Flags |= FlagReply
	return m
}

// Anonymous returns the anonymous section if its flag is set.
func (m MessageMetadata) Anonymous() (Anonymous, bool) {
	if m.Flags&FlagAnonymous == 0 {
		return Anonymous{}, false
	}
	return m.anonymous, true
}

// Reply returns the reply section if its flag is set.
func (m MessageMetadata) Reply() (Reply, bool) {
	if m.Flags&FlagReply == 0 {
		return Reply{}, false
	}
	return m.reply, true
}

// MessageChain is a message: metadata plus ordered elements.
type MessageChain struct {
	Meta     MessageMetadata
	Elements Vec[MessageElement]
}

// MessageReceipt identifies a sent message.
type MessageReceipt struct {
	Seqs  Vec[int32]
	Rands Vec[int32]
	Time  int64
}
