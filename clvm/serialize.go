package clvm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

const (
	// maxAtomSize is the largest atom the deserializer will accept. No
	// on-chain program comes anywhere near this; anything larger is
	// either corrupt or hostile.
	maxAtomSize = 1 << 22

	// maxTreeDepth bounds the nesting of deserialized trees so that the
	// recursive walks elsewhere in this package (hashing, equality)
	// operate on bounded stacks even for hostile inputs.
	maxTreeDepth = 1 << 16

	// consByte introduces a pair in the serialized form, followed by the
	// serializations of its two children.
	consByte = 0xff
)

var (
	// ErrTrailingBytes is returned when deserialization succeeds before
	// consuming the whole input.
	ErrTrailingBytes = errors.New("trailing bytes after program")

	// ErrTruncated is returned when the input ends mid-program.
	ErrTruncated = errors.New("truncated program")

	// ErrTooDeep is returned when the input nests pairs beyond
	// maxTreeDepth.
	ErrTooDeep = errors.New("program tree too deep")
)

// Serialize returns the canonical byte form of the tree. Atoms serialize as
// a size-prefixed byte string (with short atoms packed into the prefix byte
// itself), pairs as a cons byte followed by both children.
func (n *Node) Serialize() []byte {
	var buf bytes.Buffer
	n.write(&buf)

	return buf.Bytes()
}

func (n *Node) write(buf *bytes.Buffer) {
	if n.IsPair() {
		buf.WriteByte(consByte)
		n.first.write(buf)
		n.rest.write(buf)

		return
	}

	writeAtom(buf, n.atom)
}

func writeAtom(buf *bytes.Buffer, atom []byte) {
	size := uint64(len(atom))

	switch {
	case size == 0:
		buf.WriteByte(0x80)

	case size == 1 && atom[0] <= 0x7f:
		// The byte is its own encoding; there is no body to append.
		buf.WriteByte(atom[0])

		return

	case size <= 0x3f:
		buf.WriteByte(0x80 | byte(size))

	case size <= 0x1fff:
		buf.WriteByte(0xc0 | byte(size>>8))
		buf.WriteByte(byte(size))

	case size <= 0xfffff:
		buf.WriteByte(0xe0 | byte(size>>16))
		buf.WriteByte(byte(size >> 8))
		buf.WriteByte(byte(size))

	case size <= 0x7ffffff:
		buf.WriteByte(0xf0 | byte(size>>24))
		buf.WriteByte(byte(size >> 16))
		buf.WriteByte(byte(size >> 8))
		buf.WriteByte(byte(size))

	default:
		buf.WriteByte(0xf8 | byte(size>>32))
		buf.WriteByte(byte(size >> 24))
		buf.WriteByte(byte(size >> 16))
		buf.WriteByte(byte(size >> 8))
		buf.WriteByte(byte(size))
	}

	buf.Write(atom)
}

// Deserialize parses the canonical byte form of a program tree. The whole
// input must be consumed. The input is untrusted chain data, so all limits
// are enforced here and parsing is iterative: a hostile input can make the
// parser fail, never fault.
func Deserialize(b []byte) (*Node, error) {
	r := bytes.NewReader(b)

	node, err := deserialize(r)
	if err != nil {
		return nil, err
	}

	if r.Len() != 0 {
		return nil, ErrTrailingBytes
	}

	return node, nil
}

// Work items for the iterative parser. An opParse consumes bytes and pushes
// one completed subtree; an opCons folds the top two subtrees into a pair.
const (
	opParse = iota
	opCons
)

// deserialize reads one program from r using an explicit work stack instead
// of recursion.
func deserialize(r *bytes.Reader) (*Node, error) {
	ops := []uint8{opParse}
	var vals []*Node

	for len(ops) > 0 {
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]

		if op == opCons {
			rest := vals[len(vals)-1]
			first := vals[len(vals)-2]
			vals = vals[:len(vals)-2]
			vals = append(vals, &Node{first: first, rest: rest})

			continue
		}

		c, err := r.ReadByte()
		if err != nil {
			return nil, ErrTruncated
		}

		if c == consByte {
			if len(ops) >= maxTreeDepth {
				return nil, ErrTooDeep
			}

			// The second parse is pushed first so that the first
			// child is read from the stream before the rest.
			ops = append(ops, opCons, opParse, opParse)

			continue
		}

		atom, err := readAtom(r, c)
		if err != nil {
			return nil, err
		}
		vals = append(vals, &Node{atom: atom})
	}

	return vals[0], nil
}

// readAtom reads the remainder of an atom whose first byte was c.
func readAtom(r *bytes.Reader, c byte) ([]byte, error) {
	if c <= 0x7f {
		// Single byte atom packed into the prefix.
		return []byte{c}, nil
	}

	if c == 0x80 {
		return nil, nil
	}

	var (
		size      uint64
		sizeBytes int
	)

	switch {
	case c&0xc0 == 0x80:
		size = uint64(c & 0x3f)

	case c&0xe0 == 0xc0:
		size = uint64(c & 0x1f)
		sizeBytes = 1

	case c&0xf0 == 0xe0:
		size = uint64(c & 0x0f)
		sizeBytes = 2

	case c&0xf8 == 0xf0:
		size = uint64(c & 0x07)
		sizeBytes = 3

	case c&0xfc == 0xf8:
		size = uint64(c & 0x03)
		sizeBytes = 4

	default:
		return nil, fmt.Errorf("invalid atom prefix 0x%02x", c)
	}

	for i := 0; i < sizeBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return nil, ErrTruncated
		}
		size = size<<8 | uint64(b)
	}

	if size > maxAtomSize {
		return nil, fmt.Errorf("atom of %d bytes exceeds limit", size)
	}
	if size == 0 {
		return nil, nil
	}

	atom := make([]byte, size)
	if _, err := io.ReadFull(r, atom); err != nil {
		return nil, ErrTruncated
	}

	return atom, nil
}
