package host

import (
	"encoding/json"
	"fmt"

	"github.com/AtriKawaii/atri-go/ffi"
)

// Wire form of a message chain. Element types use the tag names.
type chainJSON struct {
	Metadata metadataJSON  `json:"metadata"`
	Elements []elementJSON `json:"elements"`
}

type metadataJSON struct {
	Seqs      []int32        `json:"seqs"`
	Rands     []int32        `json:"rands"`
	Time      int32          `json:"time"`
	Sender    int64          `json:"sender"`
	Anonymous *anonymousJSON `json:"anonymous,omitempty"`
	Reply     *replyJSON     `json:"reply,omitempty"`
}

type anonymousJSON struct {
	AnonID        []byte `json:"anon_id"`
	Nick          string `json:"nick"`
	PortraitIndex int32  `json:"portrait_index"`
	BubbleIndex   int32  `json:"bubble_index"`
	ExpireTime    int32  `json:"expire_time"`
	Color         string `json:"color"`
}

type replyJSON struct {
	ReplySeq int32         `json:"reply_seq"`
	Sender   int64         `json:"sender"`
	Time     int32         `json:"time"`
	Elements []elementJSON `json:"elements"`
}

type elementJSON struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	ID      string `json:"id,omitempty"`
	URL     string `json:"url,omitempty"`
	Target  int64  `json:"target,omitempty"`
	Display string `json:"display,omitempty"`
	Index   int32  `json:"index,omitempty"`
	Name    string `json:"name,omitempty"`
}

// encodeChain renders c as JSON. c is only borrowed.
func encodeChain(c ffi.MessageChain) ([]byte, error) {
	out := chainJSON{
		Metadata: metadataJSON{
			Seqs:   nonNil(c.Meta.Seqs.Into()),
			Rands:  nonNil(c.Meta.Rands.Into()),
			Time:   c.Meta.Time,
			Sender: c.Meta.Sender,
		},
		Elements: encodeElements(c.Elements),
	}
	if a, ok := c.Meta.Anonymous(); ok {
		out.Metadata.Anonymous = &anonymousJSON{
			AnonID:        a.AnonID.Into(),
			Nick:          a.Nick.Into(),
			PortraitIndex: a.PortraitIndex,
			BubbleIndex:   a.BubbleIndex,
			ExpireTime:    a.ExpireTime,
			Color:         a.Color.Into(),
		}
	}
	if r, ok := c.Meta.Reply(); ok {
		out.Metadata.Reply = &replyJSON{
			ReplySeq: r.ReplySeq,
			Sender:   r.Sender,
			Time:     r.Time,
			Elements: encodeElements(r.Elements),
		}
	}
	return json.Marshal(out)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func encodeElements(v ffi.Vec[ffi.MessageElement]) []elementJSON {
	raw := v.Into()
	out := make([]elementJSON, 0, len(raw))
	for _, e := range raw {
		el := elementJSON{Type: e.Tag.String()}
		switch e.Tag {
		case ffi.TagText:
			el.Content = e.Text().Into()
		case ffi.TagImage:
			if img := e.Image(); !img.IsNull() {
				el.ID = (*Image)(img.Pointer()).ID
				el.URL = (*Image)(img.Pointer()).URL
			}
		case ffi.TagAt:
			at := e.At()
			el.Target, el.Display = at.Target, at.Display.Into()
		case ffi.TagFace:
			face := e.Face()
			el.Index, el.Name = face.Index, face.Name.Into()
		case ffi.TagAtAll, ffi.TagUnknown:
		default:
			continue
		}
		out = append(out, el)
	}
	return out
}

// decodeChain parses JSON produced by encodeChain. Image elements become
// fresh host images; unknown elements carry no payload.
func decodeChain(data []byte) (ffi.MessageChain, error) {
	var in chainJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return ffi.MessageChain{}, err
	}

	elements, err := decodeElements(in.Elements)
	if err != nil {
		return ffi.MessageChain{}, err
	}
	meta := ffi.MessageMetadata{
		Seqs:   ffi.VecFrom(in.Metadata.Seqs),
		Rands:  ffi.VecFrom(in.Metadata.Rands),
		Time:   in.Metadata.Time,
		Sender: in.Metadata.Sender,
	}
	if a := in.Metadata.Anonymous; a != nil {
		meta = meta.WithAnonymous(ffi.Anonymous{
			AnonID:        ffi.VecFrom(a.AnonID),
			Nick:          ffi.StringFrom(a.Nick),
			PortraitIndex: a.PortraitIndex,
			BubbleIndex:   a.BubbleIndex,
			ExpireTime:    a.ExpireTime,
			Color:         ffi.StringFrom(a.Color),
		})
	}
	if r := in.Metadata.Reply; r != nil {
		replyElements, err := decodeElements(r.Elements)
		if err != nil {
			releaseElements(elements.Into())
			return ffi.MessageChain{}, err
		}
		meta = meta.WithReply(ffi.Reply{
			ReplySeq: r.ReplySeq,
			Sender:   r.Sender,
			Time:     r.Time,
			Elements: replyElements,
		})
	}
	return ffi.MessageChain{Meta: meta, Elements: elements}, nil
}

func decodeElements(in []elementJSON) (ffi.Vec[ffi.MessageElement], error) {
	out := make([]ffi.MessageElement, 0, len(in))
	for i, el := range in {
		switch el.Type {
		case ffi.TagText.String():
			out = append(out, ffi.TextElement(ffi.StringFrom(el.Content)))
		case ffi.TagImage.String():
			out = append(out, ffi.ImageElement(ffi.CloneableCopy(Image{ID: el.ID, URL: el.URL})))
		case ffi.TagAt.String():
			out = append(out, ffi.AtElement(ffi.At{Target: el.Target, Display: ffi.StringFrom(el.Display)}))
		case ffi.TagAtAll.String():
			out = append(out, ffi.AtAllElement())
		case ffi.TagFace.String():
			out = append(out, ffi.FaceElement(ffi.Face{Index: el.Index, Name: ffi.StringFrom(el.Name)}))
		case ffi.TagUnknown.String():
			out = append(out, ffi.UnknownElement(ffi.NullCloneable()))
		default:
			releaseElements(out)
			return ffi.Vec[ffi.MessageElement]{}, fmt.Errorf("element %d: unknown type %q", i, el.Type)
		}
	}
	return ffi.VecFrom(out), nil
}

func releaseElements(els []ffi.MessageElement) {
	for _, e := range els {
		if e.Tag == ffi.TagImage {
			img := e.Image()
			img.Drop()
		}
	}
}
