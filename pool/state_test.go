package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPoolStateRoundTrip asserts decode(encode(s)) == s for representative
// states with and without a pool URL.
func TestPoolStateRoundTrip(t *testing.T) {
	t.Parallel()

	for _, state := range []SingletonState{
		SelfPooling, Leaving, FarmingToPool,
	} {
		ps := testPoolState(t, state)

		encoded, err := ps.Serialize()
		require.NoError(t, err)

		decoded, err := DeserializePoolState(encoded)
		require.NoError(t, err)
		require.True(t, ps.Equal(decoded), "state %v", state)

		// Round-trip stability: re-encoding is byte identical.
		reencoded, err := decoded.Serialize()
		require.NoError(t, err)
		require.Equal(t, encoded, reencoded)
	}
}

// TestPoolStateSerializeRejects asserts the encoder refuses non-encodable
// values.
func TestPoolStateSerializeRejects(t *testing.T) {
	t.Parallel()

	// Undefined state.
	ps := testPoolState(t, SelfPooling)
	ps.State = SingletonState(9)
	_, err := ps.Serialize()
	require.ErrorIs(t, err, ErrInvalidPoolState)

	// Missing owner key.
	ps = testPoolState(t, SelfPooling)
	ps.OwnerPubKey = nil
	_, err = ps.Serialize()
	require.ErrorIs(t, err, ErrInvalidPoolState)
}

// TestPoolStateDecodeRejects asserts malformed encodings fail cleanly.
func TestPoolStateDecodeRejects(t *testing.T) {
	t.Parallel()

	valid, err := testPoolState(t, FarmingToPool).Serialize()
	require.NoError(t, err)

	testCases := []struct {
		name string
		blob []byte
	}{
		{name: "empty", blob: nil},
		{name: "truncated", blob: valid[:len(valid)-5]},
		{name: "trailing", blob: append(append([]byte{}, valid...), 0)},
		{
			name: "bad state byte",
			blob: append([]byte{0x09}, valid[1:]...),
		},
		{
			name: "bad presence byte",
			blob: func() []byte {
				b := append([]byte{}, valid...)
				b[34] = 0x07
				return b
			}(),
		},
		{
			name: "bad pubkey",
			blob: func() []byte {
				b := append([]byte{}, valid...)
				b[1] = 0xff
				return b
			}(),
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := DeserializePoolState(tc.blob)
			require.ErrorIs(t, err, ErrInvalidPoolState)
		})
	}
}
