package message

import "strings"

// Builder assembles a MessageChain. Consecutive text is merged into one
// Text element.
type Builder struct {
	anonymous *Anonymous
	reply     *Reply
	elements  []Element
	buf       strings.Builder
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Push appends an element.
func (b *Builder) Push(e Element) *Builder {
	if t, ok := e.(Text); ok {
		return b.PushText(string(t))
	}
	b.flush()
	b.elements = append(b.elements, e)
	return b
}

// PushText appends text to the pending text run.
func (b *Builder) PushText(s string) *Builder {
	b.buf.WriteString(s)
	return b
}

// PushChain appends every element of c.
func (b *Builder) PushChain(c MessageChain) *Builder {
	for _, e := range c.Elements {
		b.Push(e)
	}
	return b
}

// WithReply quotes r in the built chain.
func (b *Builder) WithReply(r Reply) *Builder {
	b.reply = &r
	return b
}

// WithAnonymous sends the built chain anonymously.
func (b *Builder) WithAnonymous(a Anonymous) *Builder {
	b.anonymous = &a
	return b
}

// Build returns the chain.
func (b *Builder) Build() MessageChain {
	b.flush()
	return MessageChain{
		Meta:     Metadata{Anonymous: b.anonymous, Reply: b.reply},
		Elements: b.elements,
	}
}

func (b *Builder) flush() {
	if b.buf.Len() == 0 {
		return
	}
	b.elements = append(b.elements, Text(b.buf.String()))
	b.buf.Reset()
}

// FromText returns a chain holding the single text s.
func FromText(s string) MessageChain {
	return MessageChain{Elements: []Element{Text(s)}}
}
