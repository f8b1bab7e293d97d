package message

import "github.com/AtriKawaii/atri-go/ffi"

// ForwardNodeInfo identifies the original sender of a forwarded message.
type ForwardNodeInfo struct {
	SenderID   int64
	SenderName string
	Time       int32
}

// ForwardNode is one entry of a forward message: either a plain chain or
// a nested forward message.
type ForwardNode struct {
	Info    ForwardNodeInfo
	Chain   MessageChain
	Forward ForwardMessage
	nested  bool
}

// NormalNode returns a node holding chain.
func NormalNode(info ForwardNodeInfo, chain MessageChain) ForwardNode {
	return ForwardNode{Info: info, Chain: chain}
}

// NestedNode returns a node holding a nested forward message.
func NestedNode(info ForwardNodeInfo, forward ForwardMessage) ForwardNode {
	return ForwardNode{Info: info, Forward: forward, nested: true}
}

// IsNested reports whether the node holds a nested forward message.
func (n ForwardNode) IsNested() bool { return n.nested }

// ForwardMessage is an ordered list of forwarded nodes.
type ForwardMessage []ForwardNode

// PushMessage appends a plain chain.
func (f *ForwardMessage) PushMessage(info ForwardNodeInfo, chain MessageChain) {
	*f = append(*f, NormalNode(info, chain))
}

// PushForward appends a nested forward message.
func (f *ForwardMessage) PushForward(info ForwardNodeInfo, forward ForwardMessage) {
	*f = append(*f, NestedNode(info, forward))
}

// Depth returns the nesting depth; a flat list has depth 1.
func (f ForwardMessage) Depth() int {
	depth := 0
	for _, n := range f {
		d := 1
		if n.nested {
			d += n.Forward.Depth()
		}
		depth = max(depth, d)
	}
	return depth
}

// ToFFI converts the tree to its boundary encoding.
func (f ForwardMessage) ToFFI() ffi.Vec[ffi.ForwardNode] {
	out := make([]ffi.ForwardNode, 0, len(f))
	for _, n := range f {
		info := ffi.ForwardNodeInfo{
			SenderID:   n.Info.SenderID,
			SenderName: ffi.StringFrom(n.Info.SenderName),
			Time:       n.Info.Time,
		}
		if n.nested {
			out = append(out, ffi.NestedNode(info, n.Forward.ToFFI()))
		} else {
			out = append(out, ffi.NormalNode(info, n.Chain.ToFFI()))
		}
	}
	return ffi.VecFrom(out)
}

// ForwardFromFFI converts a boundary forward tree, taking ownership of it.
func ForwardFromFFI(v ffi.Vec[ffi.ForwardNode]) ForwardMessage {
	raw := v.Into()
	out := make(ForwardMessage, 0, len(raw))
	for _, n := range raw {
		info := ForwardNodeInfo{
			SenderID:   n.Info.SenderID,
			SenderName: n.Info.SenderName.Into(),
			Time:       n.Info.Time,
		}
		if n.IsNormal {
			out = append(out, NormalNode(info, FromFFI(n.Chain())))
		} else {
			out = append(out, NestedNode(info, ForwardFromFFI(n.Nodes())))
		}
	}
	return out
}
