package pool

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/poolnetwork/pnd/clvm"
	"github.com/poolnetwork/pnd/puzzles"
)

var (
	// ErrUnknownInnerPuzzle is returned when a spend builder is handed a
	// lineage whose inner puzzle matches neither known template. This is
	// a caller contract violation: the caller claimed a pool state that
	// does not correspond to the chain.
	ErrUnknownInnerPuzzle = errors.New("inner puzzle matches no known " +
		"template")

	// ErrNoSingletonTip is returned when the last spend does not create
	// exactly one odd-amount output, so no unique next lineage element
	// exists.
	ErrNoSingletonTip = errors.New("spend does not create exactly one " +
		"odd-amount output")

	// ErrPuzzleHashMismatch is returned when a computed puzzle hash
	// disagrees with the hash recorded on chain. It indicates an
	// internal construction bug and is fatal: broadcasting the spend
	// would be rejected by the network or lose funds, so the builders
	// stop before emitting it.
	ErrPuzzleHashMismatch = errors.New("computed puzzle hash does not " +
		"match coin puzzle hash")
)

// PoolStateToInnerPuzzle maps a pool state onto the inner puzzle template
// that represents it: the waiting room for SelfPooling and Leaving, the pool
// member for every other defined state. The member's escape hash commits to
// the waiting room built from the same parameters, so a later escape lands
// in a predictable puzzle.
func PoolStateToInnerPuzzle(state *PoolState, launcherID chainhash.Hash,
	consts *Constants) *clvm.Node {

	waitingRoom := puzzles.BuildWaitingRoom(
		state.TargetPuzzleHash, state.RelativeLockHeight,
		state.OwnerPubKey, launcherID, consts.GenesisChallenge,
		consts.DelayTime, consts.DelayPuzzleHash,
	)

	if state.State == SelfPooling || state.State == Leaving {
		return waitingRoom
	}

	escapeHash := waitingRoom.TreeHash()

	return puzzles.BuildPoolMember(
		state.TargetPuzzleHash, escapeHash, state.OwnerPubKey,
		launcherID, consts.GenesisChallenge, consts.DelayTime,
		consts.DelayPuzzleHash,
	)
}

// nextSingletonCoin finds the next lineage element among the additions of
// the passed spend: the unique odd-amount output.
func nextSingletonCoin(runner SpendRunner, spend *Spend) (*Coin, error) {
	additions, err := runner.Additions(spend)
	if err != nil {
		return nil, fmt.Errorf("computing additions: %w", err)
	}

	var tip *Coin
	for _, coin := range additions {
		if coin.Amount%2 == 0 {
			continue
		}

		if tip != nil {
			return nil, ErrNoSingletonTip
		}
		tip = coin
	}

	if tip == nil {
		return nil, ErrNoSingletonTip
	}

	return tip, nil
}

// lineageProof derives the parent-linkage data the outer solution must
// carry. If the tip descends directly from the launcher the proof is the
// two-field launcher form; otherwise it is the three-field form whose inner
// puzzle hash comes from uncurrying the previous spend's puzzle reveal.
func lineageProof(lastSpend *Spend, launcher Coin,
	tip *Coin) (*LineageProof, error) {

	if tip.ParentID == launcher.ID() {
		return &LineageProof{
			ParentID:        launcher.ParentID,
			InnerPuzzleHash: fn.None[chainhash.Hash](),
			Amount:          launcher.Amount,
		}, nil
	}

	prevInner := puzzles.InnerPuzzle(lastSpend.PuzzleReveal)
	if prevInner.IsNone() {
		return nil, fmt.Errorf("%w: previous spend puzzle",
			ErrUnknownInnerPuzzle)
	}

	innerHash := prevInner.UnsafeFromSome().TreeHash()

	return &LineageProof{
		ParentID:        lastSpend.Coin.ParentID,
		InnerPuzzleHash: fn.Some(innerHash),
		Amount:          lastSpend.Coin.Amount,
	}, nil
}

// BuildTravelSpend builds the unsigned spend transitioning the singleton
// from its current pool state to the target state, together with the current
// inner puzzle the wallet needs for signing. The returned spend consumes the
// tip coin created by lastSpend.
func BuildTravelSpend(runner SpendRunner, lastSpend *Spend, launcher Coin,
	current, target *PoolState,
	consts *Constants) (*Spend, *clvm.Node, error) {

	inner := PoolStateToInnerPuzzle(current, launcher.ID(), consts)

	targetBytes, err := target.Serialize()
	if err != nil {
		return nil, nil, fmt.Errorf("serializing target state: %w",
			err)
	}

	var innerSol *clvm.Node
	switch {
	case puzzles.IsPoolMemberPuzzle(inner):
		// The member's only exit is the immediate escape: commit the
		// target state with the zero marker.
		innerSol = clvm.NewList(
			clvm.NewAtom(targetBytes), clvm.NewInt(0),
		)

	case puzzles.IsWaitingRoomPuzzle(inner):
		// Complete the escape now, supplying the destination inner
		// puzzle hash alongside the committed target state.
		destination := PoolStateToInnerPuzzle(
			target, launcher.ID(), consts,
		)
		destHash := destination.TreeHash()

		innerSol = clvm.NewList(
			clvm.NewInt(1),
			clvm.NewAtom(targetBytes),
			clvm.NewAtom(destHash[:]),
		)

	default:
		return nil, nil, ErrUnknownInnerPuzzle
	}

	tip, err := nextSingletonCoin(runner, lastSpend)
	if err != nil {
		return nil, nil, err
	}

	proof, err := lineageProof(lastSpend, launcher, tip)
	if err != nil {
		return nil, nil, err
	}

	fullPuzzle := puzzles.BuildFullPuzzle(inner, launcher.ID())
	if fullPuzzle.TreeHash() != tip.PuzzleHash {
		return nil, nil, fmt.Errorf("%w: tip %v", ErrPuzzleHashMismatch,
			tip.ID())
	}

	fullSolution := clvm.NewList(
		proof.Node(), clvm.NewInt(tip.Amount), innerSol,
	)

	log.Debugf("Built travel spend for singleton %v: %v -> %v",
		launcher.ID(), current.State, target.State)

	spend := &Spend{
		Coin:         *tip,
		PuzzleReveal: fullPuzzle,
		Solution:     fullSolution,
	}

	return spend, inner, nil
}
