package clvm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestIntAtoms asserts that integer atoms use the minimal signed big-endian
// encoding and read back as the original value.
func TestIntAtoms(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		value uint64
		atom  []byte
	}{
		{value: 0, atom: nil},
		{value: 1, atom: []byte{0x01}},
		{value: 127, atom: []byte{0x7f}},
		{value: 128, atom: []byte{0x00, 0x80}},
		{value: 255, atom: []byte{0x00, 0xff}},
		{value: 256, atom: []byte{0x01, 0x00}},
		{value: 0xffffffff, atom: []byte{0x00, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, tc := range testCases {
		n := NewInt(tc.value)
		require.Equal(t, tc.atom, n.Atom())

		v, ok := n.AsUint64()
		require.True(t, ok)
		require.Equal(t, tc.value, v)
	}
}

// TestAsUint64Rejects asserts that pairs and over-long atoms do not read as
// integers.
func TestAsUint64Rejects(t *testing.T) {
	t.Parallel()

	_, ok := NewPair(NewNil(), NewNil()).AsUint64()
	require.False(t, ok)

	_, ok = NewAtom([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9}).AsUint64()
	require.False(t, ok)

	// Eight significant bytes with the top bit set would read negative.
	_, ok = NewAtom([]byte{0x80, 0, 0, 0, 0, 0, 0, 0}).AsUint64()
	require.False(t, ok)

	// So does a single byte with the top bit set.
	_, ok = NewAtom([]byte{0x80}).AsUint64()
	require.False(t, ok)

	// Leading zero padding is tolerated.
	v, ok := NewAtom([]byte{0x00, 0x00, 0x2a}).AsUint64()
	require.True(t, ok)
	require.EqualValues(t, 42, v)
}

// TestProperList asserts proper list recognition over well and badly formed
// spines.
func TestProperList(t *testing.T) {
	t.Parallel()

	items, ok := NewList(NewInt(1), NewInt(2), NewInt(3)).ProperList()
	require.True(t, ok)
	require.Len(t, items, 3)

	// The empty atom is the empty list.
	items, ok = NewNil().ProperList()
	require.True(t, ok)
	require.Empty(t, items)

	// An improper terminator fails.
	_, ok = NewPair(NewInt(1), NewInt(2)).ProperList()
	require.False(t, ok)
}

// TestEqual asserts structural equality semantics.
func TestEqual(t *testing.T) {
	t.Parallel()

	a := NewList(NewAtom([]byte("ab")), NewPair(NewInt(7), NewNil()))
	b := NewList(NewAtom([]byte("ab")), NewPair(NewInt(7), NewNil()))
	require.True(t, a.Equal(b))

	c := NewList(NewAtom([]byte("ab")), NewPair(NewInt(8), NewNil()))
	require.False(t, a.Equal(c))

	require.False(t, NewNil().Equal(NewPair(NewNil(), NewNil())))
}
