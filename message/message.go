// Package message provides the plugin-side message model: chains of
// elements with their metadata, a builder, and forward trees.
//
// Values convert to and from the boundary encoding with ToFFI and FromFFI.
// Images and unrecognised elements are host objects and carry their host
// handle; cloning a chain clones those handles.
package message

import (
	"fmt"
	"strings"

	"github.com/AtriKawaii/atri-go/ffi"
)

// Element is one element of a MessageChain. It is one of Text, Image, At,
// AtAll, Face or Unknown.
type Element interface {
	writeText(sb *strings.Builder)
	clone() Element
}

// Text is a run of plain text.
type Text string

// At mentions a single member.
type At struct {
	Target  int64  `json:"target"`
	Display string `json:"display"`
}

// AtAll mentions everyone.
type AtAll struct{}

// Face is a built-in emoticon.
type Face struct {
	Index int32  `json:"index"`
	Name  string `json:"name"`
}

// Unknown is an element the plugin cannot interpret. It round-trips to
// the host unchanged.
type Unknown struct {
	raw ffi.ManagedCloneable
}

func (t Text) writeText(sb *strings.Builder) { sb.WriteString(string(t)) }
func (t Text) clone() Element                { return t }

func (a At) writeText(sb *strings.Builder) { fmt.Fprintf(sb, "[At:%d(%s)]", a.Target, a.Display) }
func (a At) clone() Element                { return a }

func (AtAll) writeText(sb *strings.Builder) { sb.WriteString("[AtAll]") }
func (a AtAll) clone() Element              { return a }

func (f Face) writeText(sb *strings.Builder) { fmt.Fprintf(sb, "[Face:%s]", f.Name) }
func (f Face) clone() Element                { return f }

func (Unknown) writeText(*strings.Builder) {}
func (u Unknown) clone() Element            { return Unknown{raw: u.raw.Clone()} }

// MessageChain is a message: its metadata and its elements in order.
type MessageChain struct {
	Meta     Metadata
	Elements []Element
}

// Metadata carries sequence information and the optional anonymous and
// reply sections.
type Metadata struct {
	Seqs      []int32
	Rands     []int32
	Time      int32
	Sender    int64
	Anonymous *Anonymous
	Reply     *Reply
}

// Anonymous describes the anonymous identity a message was sent under.
type Anonymous struct {
	AnonID        []byte
	Nick          string
	PortraitIndex int32
	BubbleIndex   int32
	ExpireTime    int32
	Color         string
}

// Reply references the message being replied to.
type Reply struct {
	ReplySeq int32
	Sender   int64
	Time     int32
	Elements []Element
}

// String renders the chain as display text.
func (c MessageChain) String() string {
	var sb strings.Builder
	for _, e := range c.Elements {
		e.writeText(&sb)
	}
	return sb.String()
}

// Clone returns a deep copy. Host handles are cloned through the host.
func (c MessageChain) Clone() MessageChain {
	out := MessageChain{Meta: c.Meta.clone(), Elements: cloneElements(c.Elements)}
	return out
}

// IntoReply builds a Reply that quotes c.
func (c MessageChain) IntoReply() Reply {
	r := Reply{Sender: c.Meta.Sender, Time: c.Meta.Time, Elements: c.Elements}
	if len(c.Meta.Seqs) > 0 {
		r.ReplySeq = c.Meta.Seqs[0]
	}
	return r
}

// Release drops the host handles held by the chain.
func (c *MessageChain) Release() {
	releaseElements(c.Elements)
	if c.Meta.Reply != nil {
		releaseElements(c.Meta.Reply.Elements)
	}
	c.Elements = nil
}

func (m Metadata) clone() Metadata {
	out := m
	out.Seqs = append([]int32(nil), m.Seqs...)
	out.Rands = append([]int32(nil), m.Rands...)
	if m.Anonymous != nil {
		a := *m.Anonymous
		a.AnonID = append([]byte(nil), m.Anonymous.AnonID...)
		out.Anonymous = &a
	}
	if m.Reply != nil {
		r := *m.Reply
		r.Elements = cloneElements(m.Reply.Elements)
		out.Reply = &r
	}
	return out
}

func cloneElements(in []Element) []Element {
	if in == nil {
		return nil
	}
	out := make([]Element, len(in))
	for i, e := range in {
		out[i] = e.clone()
	}
	return out
}

func releaseElements(in []Element) {
	for _, e := range in {
		switch v := e.(type) {
		case Image:
			v.raw.Drop()
		case Unknown:
			v.raw.Drop()
		}
	}
}
