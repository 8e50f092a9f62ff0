// Package clvm implements the immutable program-tree value type used by the
// on-chain puzzle layer, together with its canonical serialization, tree
// hashing, and the curry/uncurry machinery for partially applied program
// templates.
//
// A program is a binary tree whose leaves are atoms (byte strings) and whose
// interior nodes are ordered pairs. Two programs are equal iff their
// serialized forms are byte identical. Execution of programs is out of scope
// for this package; only their shape, bytes and hashes are modeled here.
package clvm

import (
	"bytes"
	"math/bits"
)

// Node is a single node of an immutable program tree. A Node is either an
// atom carrying a byte string (possibly empty, which doubles as nil/0/false),
// or a pair of two child nodes. The zero value is the empty atom.
//
// Nodes must be treated as immutable once constructed. All accessors return
// internal state that callers must not modify.
type Node struct {
	atom []byte

	// first and rest are both non-nil iff this node is a pair.
	first *Node
	rest  *Node
}

// NewAtom returns an atom node carrying a copy of the passed bytes.
func NewAtom(b []byte) *Node {
	if len(b) == 0 {
		return &Node{}
	}

	atom := make([]byte, len(b))
	copy(atom, b)

	return &Node{atom: atom}
}

// NewNil returns the empty atom, which serves as nil, zero, false and the
// list terminator.
func NewNil() *Node {
	return &Node{}
}

// NewPair returns a pair node with the two passed children.
func NewPair(first, rest *Node) *Node {
	return &Node{first: first, rest: rest}
}

// NewList returns a proper list of the passed items, i.e. a chain of pairs
// terminated by the empty atom.
func NewList(items ...*Node) *Node {
	list := NewNil()
	for i := len(items) - 1; i >= 0; i-- {
		list = NewPair(items[i], list)
	}

	return list
}

// NewInt returns an atom carrying the minimal big-endian two's complement
// encoding of v. Zero encodes as the empty atom, and a leading zero byte is
// inserted when the top bit of the first payload byte is set, so the value
// always reads back as non-negative.
func NewInt(v uint64) *Node {
	return &Node{atom: encodeUint64(v)}
}

// encodeUint64 returns the minimal signed big-endian encoding of v.
func encodeUint64(v uint64) []byte {
	if v == 0 {
		return nil
	}

	size := (bits.Len64(v) + 8) / 8
	b := make([]byte, size)
	for i := size - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}

	return b
}

// IsAtom returns true if n is an atom.
func (n *Node) IsAtom() bool {
	return n.first == nil
}

// IsPair returns true if n is a pair.
func (n *Node) IsPair() bool {
	return n.first != nil
}

// IsNil returns true if n is the empty atom.
func (n *Node) IsNil() bool {
	return n.first == nil && len(n.atom) == 0
}

// Atom returns the byte string of an atom node, or nil if n is a pair. The
// returned slice must not be modified.
func (n *Node) Atom() []byte {
	if n.IsPair() {
		return nil
	}

	return n.atom
}

// First returns the first child of a pair node, or nil if n is an atom.
func (n *Node) First() *Node {
	return n.first
}

// Rest returns the second child of a pair node, or nil if n is an atom.
func (n *Node) Rest() *Node {
	return n.rest
}

// AsUint64 interprets an atom as a non-negative integer. It returns false if
// n is a pair, if the encoding carries more than eight significant bytes, or
// if the value would read as negative.
func (n *Node) AsUint64() (uint64, bool) {
	if n.IsPair() {
		return 0, false
	}

	b := n.atom

	if len(b) > 0 && b[0]&0x80 != 0 {
		// Negative under two's complement.
		return 0, false
	}

	// Strip any leading zero padding.
	for len(b) > 0 && b[0] == 0x00 {
		b = b[1:]
	}

	if len(b) > 8 {
		return 0, false
	}

	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}

	return v, true
}

// ProperList interprets n as a proper list and returns its items in order.
// It returns false if any list spine element is an atom other than the empty
// terminator.
func (n *Node) ProperList() ([]*Node, bool) {
	var items []*Node
	for n.IsPair() {
		items = append(items, n.first)
		n = n.rest
	}

	if !n.IsNil() {
		return nil, false
	}

	return items, true
}

// Equal reports whether two trees are structurally identical, which by
// construction of the canonical serialization is the same as their serialized
// forms being byte identical.
func (n *Node) Equal(other *Node) bool {
	switch {
	case n == nil || other == nil:
		return n == other

	case n.IsAtom() != other.IsAtom():
		return false

	case n.IsAtom():
		return bytes.Equal(n.atom, other.atom)

	default:
		return n.first.Equal(other.first) && n.rest.Equal(other.rest)
	}
}
