package clvm

import (
	"crypto/sha256"
	"math/rand"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

// TestTreeHashVectors pins the hashing rule: atoms hash as H(0x01 || bytes),
// pairs as H(0x02 || left || right).
func TestTreeHashVectors(t *testing.T) {
	t.Parallel()

	nilHash := sha256.Sum256([]byte{0x01})
	require.EqualValues(t, nilHash, NewNil().TreeHash())

	atomHash := sha256.Sum256([]byte{0x01, 0xca, 0xfe})
	require.EqualValues(t, atomHash,
		NewAtom([]byte{0xca, 0xfe}).TreeHash())

	pairPre := append([]byte{0x02}, atomHash[:]...)
	pairPre = append(pairPre, nilHash[:]...)
	pairHash := sha256.Sum256(pairPre)
	require.EqualValues(t, pairHash,
		NewPair(NewAtom([]byte{0xca, 0xfe}), NewNil()).TreeHash())
}

// randomTree builds a small random tree for property tests.
func randomTree(rng *rand.Rand, depth int) *Node {
	if depth == 0 || rng.Intn(3) == 0 {
		atom := make([]byte, rng.Intn(40))
		rng.Read(atom)

		return NewAtom(atom)
	}

	return NewPair(randomTree(rng, depth-1), randomTree(rng, depth-1))
}

// TestCurryHashEquivalence asserts the package's core contract: the hash-only
// curried puzzle hash equals the tree hash of the fully materialized curried
// program, for random templates and argument lists of every small arity.
func TestCurryHashEquivalence(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1337))

	for i := 0; i < 500; i++ {
		mod := randomTree(rng, 4)

		numArgs := i % 6
		args := make([]*Node, numArgs)
		argHashes := make([]chainhash.Hash, numArgs)
		for j := range args {
			args[j] = randomTree(rng, 3)
			argHashes[j] = args[j].TreeHash()
		}

		direct := Curry(mod, args...).TreeHash()
		derived := CurriedPuzzleHash(
			QuotedModHash(mod.TreeHash()), argHashes...,
		)
		require.Equal(t, direct, derived,
			"iteration %d with %d args", i, numArgs)
	}
}

// TestCurryUncurryRoundTrip asserts Uncurry inverts Curry exactly.
func TestCurryUncurryRoundTrip(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7331))

	for i := 0; i < 200; i++ {
		mod := randomTree(rng, 3)
		args := make([]*Node, i%5)
		for j := range args {
			args[j] = randomTree(rng, 3)
		}

		gotMod, gotArgs, ok := Uncurry(Curry(mod, args...))
		require.True(t, ok)
		require.True(t, mod.Equal(gotMod))
		require.Len(t, gotArgs, len(args))
		for j := range args {
			require.True(t, args[j].Equal(gotArgs[j]))
		}
	}
}

// TestUncurryRejectsNonApplications asserts that programs outside the
// application form uncurry to nothing.
func TestUncurryRejectsNonApplications(t *testing.T) {
	t.Parallel()

	bad := []*Node{
		NewNil(),
		NewInt(42),
		NewList(NewInt(3), NewInt(4)),
		// Right operator, wrong chain terminator.
		NewList(NewAtom(atomApply),
			quoted(NewInt(9)), NewInt(2)),
		// Wrong operator.
		NewList(NewAtom(atomCons),
			quoted(NewInt(9)), NewAtom(atomQuote)),
	}

	for _, p := range bad {
		_, _, ok := Uncurry(p)
		require.False(t, ok)
	}
}
