package pool

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/poolnetwork/pnd/clvm"
	"github.com/poolnetwork/pnd/puzzles"
)

// poolRewardParentID derives the deterministic parent id of the pool reward
// coin minted at the given height: the chain's 16-byte reward prefix
// followed by the height as a 16-byte big-endian integer.
func poolRewardParentID(height uint32,
	genesisChallenge chainhash.Hash) chainhash.Hash {

	var parent chainhash.Hash
	copy(parent[:16], genesisChallenge[:16])
	binary.BigEndian.PutUint32(parent[28:], height)

	return parent
}

// BuildAbsorbSpend builds the two coordinated spends that claim the farming
// reward minted at the given height to the singleton lineage without
// changing pool state: a self-spend of the singleton tip, and the claim of
// the reward coin at its deterministic address. Both computed puzzle hashes
// are cross-checked before anything is returned; a mismatch is an internal
// invariant violation, never recoverable chain data.
func BuildAbsorbSpend(runner SpendRunner, lastSpend *Spend, current *PoolState,
	launcher Coin, height uint32, consts *Constants) ([]*Spend, error) {

	inner := PoolStateToInnerPuzzle(current, launcher.ID(), consts)
	reward := consts.RewardForHeight(height)

	var innerSol *clvm.Node
	switch {
	case puzzles.IsPoolMemberPuzzle(inner):
		innerSol = clvm.NewList(
			clvm.NewInt(reward), clvm.NewInt(uint64(height)),
		)

	case puzzles.IsWaitingRoomPuzzle(inner):
		innerSol = clvm.NewList(
			clvm.NewInt(0), clvm.NewInt(reward),
			clvm.NewInt(uint64(height)),
		)

	default:
		return nil, ErrUnknownInnerPuzzle
	}

	tip, err := nextSingletonCoin(runner, lastSpend)
	if err != nil {
		return nil, err
	}

	proof, err := lineageProof(lastSpend, launcher, tip)
	if err != nil {
		return nil, err
	}

	// The absorb preserves the outer puzzle across the spend, so the
	// rebuilt puzzle must hash to the tip coin's recorded puzzle hash.
	fullPuzzle := puzzles.BuildFullPuzzle(inner, launcher.ID())
	if fullPuzzle.TreeHash() != tip.PuzzleHash {
		return nil, fmt.Errorf("%w: tip %v", ErrPuzzleHashMismatch,
			tip.ID())
	}

	absorbSpend := &Spend{
		Coin:         *tip,
		PuzzleReveal: fullPuzzle,
		Solution: clvm.NewList(
			proof.Node(), clvm.NewInt(tip.Amount), innerSol,
		),
	}

	// The reward coin sits at the deterministic pay-to-singleton address
	// for this lineage. The materialized puzzle must agree with the
	// hash-only derivation every other party uses as the address.
	p2Puzzle := puzzles.BuildP2Singleton(
		launcher.ID(), consts.DelayTime, consts.DelayPuzzleHash,
	)
	p2Hash := puzzles.P2SingletonHash(
		launcher.ID(), consts.DelayTime, consts.DelayPuzzleHash,
	)
	if p2Puzzle.TreeHash() != p2Hash {
		return nil, fmt.Errorf("%w: p2 singleton",
			ErrPuzzleHashMismatch)
	}

	rewardCoin := Coin{
		ParentID:   poolRewardParentID(height, consts.GenesisChallenge),
		PuzzleHash: p2Hash,
		Amount:     reward,
	}

	innerHash := inner.TreeHash()
	rewardID := rewardCoin.ID()
	claimSpend := &Spend{
		Coin:         rewardCoin,
		PuzzleReveal: p2Puzzle,
		Solution: clvm.NewList(
			clvm.NewAtom(innerHash[:]),
			clvm.NewAtom(rewardID[:]),
		),
	}

	log.Debugf("Built absorb spends for singleton %v: reward %d at "+
		"height %d", launcher.ID(), reward, height)

	return []*Spend{absorbSpend, claimSpend}, nil
}
