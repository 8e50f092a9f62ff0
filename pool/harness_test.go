package pool

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/poolnetwork/pnd/puzzles"
)

// stubRunner is a canned program-execution engine: it maps spent coin ids to
// the additions the real engine would compute.
type stubRunner struct {
	additions map[chainhash.Hash][]*Coin
}

func newStubRunner() *stubRunner {
	return &stubRunner{additions: make(map[chainhash.Hash][]*Coin)}
}

func (s *stubRunner) addSpend(spent Coin, created ...*Coin) {
	s.additions[spent.ID()] = created
}

func (s *stubRunner) Additions(spend *Spend) ([]*Coin, error) {
	coins, ok := s.additions[spend.Coin.ID()]
	if !ok {
		return nil, fmt.Errorf("no additions for coin %v",
			spend.Coin.ID())
	}

	return coins, nil
}

func testOwnerKey(t *testing.T) *btcec.PublicKey {
	t.Helper()

	priv, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x55}, 32))

	return priv.PubKey()
}

func testConstants() *Constants {
	return &Constants{
		GenesisChallenge: chainhash.Hash{0xaa, 0xbb, 0xcc, 0x01, 0x02},
		DelayTime:        604800,
		DelayPuzzleHash:  chainhash.Hash{0xd1, 0xd2},
		RewardForHeight: func(height uint32) uint64 {
			return 1_750_000_000_000
		},
	}
}

func testPoolState(t *testing.T, state SingletonState) *PoolState {
	t.Helper()

	ps := &PoolState{
		State:              state,
		TargetPuzzleHash:   chainhash.Hash{0x42, 0x43},
		OwnerPubKey:        testOwnerKey(t),
		RelativeLockHeight: 10,
		Version:            1,
	}
	if state == FarmingToPool {
		ps.PoolURL = "https://pool.example.org"
	}

	return ps
}

// testLineage is a freshly launched singleton: the launcher coin, its spend
// committing the initial state, and the first singleton coin that spend
// created, wired into a stub runner.
type testLineage struct {
	launcher Coin
	genesis  *Spend
	tip      Coin
	runner   *stubRunner
	consts   *Constants
}

func newTestLineage(t *testing.T, initial *PoolState) *testLineage {
	t.Helper()

	consts := testConstants()

	launcher := Coin{
		ParentID:   chainhash.Hash{0x01},
		PuzzleHash: puzzles.LauncherPuzzleHash(),
		Amount:     1,
	}

	genesis, err := BuildLauncherSpend(launcher, initial, consts)
	require.NoError(t, err)

	inner := PoolStateToInnerPuzzle(initial, launcher.ID(), consts)
	tip := Coin{
		ParentID:   launcher.ID(),
		PuzzleHash: puzzles.FullPuzzleHash(inner.TreeHash(), launcher.ID()),
		Amount:     launcher.Amount,
	}

	runner := newStubRunner()
	runner.addSpend(launcher, &tip)

	return &testLineage{
		launcher: launcher,
		genesis:  genesis,
		tip:      tip,
		runner:   runner,
		consts:   consts,
	}
}
