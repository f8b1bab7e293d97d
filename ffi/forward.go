package ffi

import "unsafe"

// ForwardNodeInfo identifies the original sender of a forwarded message.
type ForwardNodeInfo struct {
	SenderID   int64
	SenderName String
	Time       int32
}

// ForwardNode is either a plain message or a nested forward list,
// selected by IsNormal.
type ForwardNode struct {
	IsNormal bool
	Info     ForwardNodeInfo
	payload  unsafe.Pointer
}

// NormalNode encodes a plain forwarded message.
func NormalNode(info ForwardNodeInfo, chain MessageChain) ForwardNode {
	return ForwardNode{IsNormal: true, Info: info, payload: unsafe.Pointer(&chain)}
}

// NestedNode encodes a nested forward list.
func NestedNode(info ForwardNodeInfo, nodes Vec[ForwardNode]) ForwardNode {
	return ForwardNode{Info: info, payload: unsafe.Pointer(&nodes)}
}

// Chain returns the message of a normal node.
func (n ForwardNode) Chain() MessageChain { return *(*MessageChain)(n.payload) }

// Nodes returns the children of a nested node.
func (n ForwardNode) Nodes() Vec[ForwardNode] { return *(*Vec[ForwardNode])(n.payload) }
