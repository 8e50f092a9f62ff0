package puzzles

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/poolnetwork/pnd/clvm"
)

// TestClassifyInnerRoundTrip asserts the built inner puzzles classify as
// their own variant and that the extractors return the original tuples.
func TestClassifyInnerRoundTrip(t *testing.T) {
	t.Parallel()

	owner := testOwnerKey(t)
	lockHeight := uint32(10)

	waitingRoom := BuildWaitingRoom(
		testTargetPH, lockHeight, owner, testLauncher, testGenesis,
		testDelayTime, testDelayPH,
	)
	require.Equal(t, VariantWaitingRoom, ClassifyInner(waitingRoom))
	require.True(t, IsWaitingRoomPuzzle(waitingRoom))
	require.False(t, IsPoolMemberPuzzle(waitingRoom))

	wrArgs, err := ExtractWaitingRoomArgs(waitingRoom)
	require.NoError(t, err)
	require.Equal(t, testTargetPH, wrArgs.TargetPuzzleHash)
	require.Equal(t,
		P2SingletonHash(testLauncher, testDelayTime, testDelayPH),
		wrArgs.P2SingletonPuzzleHash)
	require.True(t, owner.IsEqual(wrArgs.OwnerPubKey))
	require.Equal(t, PoolRewardPrefix(testGenesis),
		wrArgs.PoolRewardPrefix)
	require.Equal(t, lockHeight, wrArgs.RelativeLockHeight)

	member := BuildPoolMember(
		testTargetPH, waitingRoom.TreeHash(), owner, testLauncher,
		testGenesis, testDelayTime, testDelayPH,
	)
	require.Equal(t, VariantPoolMember, ClassifyInner(member))
	require.True(t, IsPoolMemberPuzzle(member))
	require.False(t, IsWaitingRoomPuzzle(member))

	pmArgs, err := ExtractPoolMemberArgs(member)
	require.NoError(t, err)
	require.Equal(t, testTargetPH, pmArgs.TargetPuzzleHash)
	require.True(t, owner.IsEqual(pmArgs.OwnerPubKey))
	require.Equal(t, waitingRoom.TreeHash(), pmArgs.EscapePuzzleHash)
}

// TestClassifyInnerUnknown asserts that programs outside the known
// templates, curried or not, classify as unknown.
func TestClassifyInnerUnknown(t *testing.T) {
	t.Parallel()

	unknown := []*clvm.Node{
		clvm.NewNil(),
		clvm.NewInt(42),
		clvm.NewList(clvm.NewInt(2), clvm.NewInt(3)),
		// A curry application of a foreign template.
		clvm.Curry(clvm.NewList(clvm.NewInt(5), clvm.NewInt(6)),
			clvm.NewInt(7)),
	}

	for _, p := range unknown {
		require.Equal(t, VariantUnknown, ClassifyInner(p))
	}
}

// TestExtractWrongVariant asserts the extractors fail loudly when called on
// the other template.
func TestExtractWrongVariant(t *testing.T) {
	t.Parallel()

	owner := testOwnerKey(t)

	waitingRoom := BuildWaitingRoom(
		testTargetPH, 10, owner, testLauncher, testGenesis,
		testDelayTime, testDelayPH,
	)

	_, err := ExtractPoolMemberArgs(waitingRoom)
	require.ErrorIs(t, err, ErrWrongPuzzle)

	member := BuildPoolMember(
		testTargetPH, waitingRoom.TreeHash(), owner, testLauncher,
		testGenesis, testDelayTime, testDelayPH,
	)

	_, err = ExtractWaitingRoomArgs(member)
	require.ErrorIs(t, err, ErrWrongPuzzle)
}

// TestInnerPuzzleUnwrap asserts the outer wrapper unwraps to the original
// inner puzzle, and that wrappers around unknown inners yield none.
func TestInnerPuzzleUnwrap(t *testing.T) {
	t.Parallel()

	owner := testOwnerKey(t)

	waitingRoom := BuildWaitingRoom(
		testTargetPH, 10, owner, testLauncher, testGenesis,
		testDelayTime, testDelayPH,
	)
	full := BuildFullPuzzle(waitingRoom, testLauncher)

	inner := InnerPuzzle(full)
	require.True(t, inner.IsSome())
	require.True(t, waitingRoom.Equal(inner.UnwrapOrFail(t)))

	// A wrapper around a foreign inner puzzle shares the outer template
	// but must not unwrap.
	foreign := BuildFullPuzzle(clvm.NewInt(99), testLauncher)
	require.True(t, InnerPuzzle(foreign).IsNone())

	// Non-wrapper programs never unwrap.
	require.True(t, InnerPuzzle(waitingRoom).IsNone())
	require.True(t, InnerPuzzle(clvm.NewNil()).IsNone())
}
