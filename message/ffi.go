package message

import "github.com/AtriKawaii/atri-go/ffi"

// UnknownFromFFI wraps an opaque element, taking ownership of it.
func UnknownFromFFI(raw ffi.ManagedCloneable) Unknown {
	return Unknown{raw: raw}
}

// ToFFI converts the chain to its boundary encoding. Host handles move
// into the result.
func (c MessageChain) ToFFI() ffi.MessageChain {
	return ffi.MessageChain{
		Meta:     c.Meta.toFFI(),
		Elements: elementsToFFI(c.Elements),
	}
}

// FromFFI converts a boundary chain, taking ownership of it.
func FromFFI(c ffi.MessageChain) MessageChain {
	return MessageChain{
		Meta:     metadataFromFFI(c.Meta),
		Elements: elementsFromFFI(c.Elements),
	}
}

func (m Metadata) toFFI() ffi.MessageMetadata {
	meta := ffi.MessageMetadata{
		Seqs:   ffi.VecFrom(m.Seqs),
		Rands:  ffi.VecFrom(m.Rands),
		Time:   m.Time,
		Sender: m.Sender,
	}
	if m.Anonymous != nil {
		meta = meta.WithAnonymous(m.Anonymous.toFFI())
	}
	if m.Reply != nil {
		meta = meta.WithReply(m.Reply.toFFI())
	}
	return meta
}

func metadataFromFFI(m ffi.MessageMetadata) Metadata {
	meta := Metadata{
		Seqs:   m.Seqs.Into(),
		Rands:  m.Rands.Into(),
		Time:   m.Time,
		Sender: m.Sender,
	}
	if a, ok := m.Anonymous(); ok {
		anon := anonymousFromFFI(a)
		meta.Anonymous = &anon
	}
	if r, ok := m.Reply(); ok {
		reply := replyFromFFI(r)
		meta.Reply = &reply
	}
	return meta
}

func (a Anonymous) toFFI() ffi.Anonymous {
	return ffi.Anonymous{
		AnonID:        ffi.VecFrom(a.AnonID),
		Nick:          ffi.StringFrom(a.Nick),
		PortraitIndex: a.PortraitIndex,
		BubbleIndex:   a.BubbleIndex,
		ExpireTime:    a.ExpireTime,
		Color:         ffi.StringFrom(a.Color),
	}
}

func anonymousFromFFI(a ffi.Anonymous) Anonymous {
	return Anonymous{
		AnonID:        a.AnonID.Into(),
		Nick:          a.Nick.Into(),
		PortraitIndex: a.PortraitIndex,
		BubbleIndex:   a.BubbleIndex,
		ExpireTime:    a.ExpireTime,
		Color:         a.Color.Into(),
	}
}

func (r Reply) toFFI() ffi.Reply {
	return ffi.Reply{
		ReplySeq: r.ReplySeq,
		Sender:   r.Sender,
		Time:     r.Time,
		Elements: elementsToFFI(r.Elements),
	}
}

func replyFromFFI(r ffi.Reply) Reply {
	return Reply{
		ReplySeq: r.ReplySeq,
		Sender:   r.Sender,
		Time:     r.Time,
		Elements: elementsFromFFI(r.Elements),
	}
}

func elementsToFFI(in []Element) ffi.Vec[ffi.MessageElement] {
	out := make([]ffi.MessageElement, 0, len(in))
	for _, e := range in {
		out = append(out, ElementToFFI(e))
	}
	return ffi.VecFrom(out)
}

func elementsFromFFI(v ffi.Vec[ffi.MessageElement]) []Element {
	raw := v.Into()
	out := make([]Element, 0, len(raw))
	for _, e := range raw {
		if el, ok := ElementFromFFI(e); ok {
			out = append(out, el)
		}
	}
	return out
}

// ElementToFFI converts one element.
func ElementToFFI(e Element) ffi.MessageElement {
	switch v := e.(type) {
	case Text:
		return ffi.TextElement(ffi.StringFrom(string(v)))
	case Image:
		return ffi.ImageElement(v.raw)
	case At:
		return ffi.AtElement(ffi.At{Target: v.Target, Display: ffi.StringFrom(v.Display)})
	case AtAll:
		return ffi.AtAllElement()
	case Face:
		return ffi.FaceElement(ffi.Face{Index: v.Index, Name: ffi.StringFrom(v.Name)})
	case Unknown:
		return ffi.UnknownElement(v.raw)
	default:
		return ffi.UnknownElement(ffi.NullCloneable())
	}
}

// ElementFromFFI converts one element. Tags outside the known set are
// reported as not ok and skipped by chain conversion.
func ElementFromFFI(e ffi.MessageElement) (Element, bool) {
	switch e.Tag {
	case ffi.TagText:
		return Text(e.Text().Into()), true
	case ffi.TagImage:
		return Image{raw: e.Image()}, true
	case ffi.TagAt:
		at := e.At()
		return At{Target: at.Target, Display: at.Display.Into()}, true
	case ffi.TagAtAll:
		return AtAll{}, true
	case ffi.TagFace:
		face := e.Face()
		return Face{Index: face.Index, Name: face.Name.Into()}, true
	case ffi.TagUnknown:
		return Unknown{raw: e.Unknown()}, true
	default:
		return nil, false
	}
}
