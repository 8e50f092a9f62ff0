package pool

import (
	"fmt"

	"github.com/poolnetwork/pnd/clvm"
	"github.com/poolnetwork/pnd/puzzles"
)

// BuildLauncherSpend builds the genesis spend of a lineage: the one-time
// spend of the launcher coin that creates the first singleton and commits
// the initial pool state and timing parameters in its extra data. The
// launcher coin must already be locked to the launcher puzzle hash, and its
// amount must be odd so the created singleton carries the uniqueness marker.
func BuildLauncherSpend(launcher Coin, initial *PoolState,
	consts *Constants) (*Spend, error) {

	if launcher.PuzzleHash != puzzles.LauncherPuzzleHash() {
		return nil, fmt.Errorf("%w: launcher coin",
			ErrPuzzleHashMismatch)
	}
	if launcher.Amount%2 == 0 {
		return nil, fmt.Errorf("%w: even launcher amount %d",
			ErrInvalidSpend, launcher.Amount)
	}

	stateBytes, err := initial.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serializing initial state: %w", err)
	}

	inner := PoolStateToInnerPuzzle(initial, launcher.ID(), consts)
	fullHash := puzzles.FullPuzzleHash(inner.TreeHash(), launcher.ID())

	extraData := clvm.NewList(
		clvm.NewPair(
			clvm.NewAtom(launcherKeyState),
			clvm.NewAtom(stateBytes),
		),
		clvm.NewPair(
			clvm.NewAtom(launcherKeyDelay),
			clvm.NewInt(consts.DelayTime),
		),
		clvm.NewPair(
			clvm.NewAtom(launcherKeyDelayPH),
			clvm.NewAtom(consts.DelayPuzzleHash[:]),
		),
	)

	solution := clvm.NewList(
		clvm.NewAtom(fullHash[:]),
		clvm.NewInt(launcher.Amount),
		extraData,
	)

	log.Debugf("Built launcher spend for singleton %v with initial "+
		"state %v", launcher.ID(), initial.State)

	return &Spend{
		Coin:         launcher,
		PuzzleReveal: puzzles.LauncherPuzzle(),
		Solution:     solution,
	}, nil
}
