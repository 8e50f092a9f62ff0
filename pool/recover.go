package pool

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/poolnetwork/pnd/clvm"
	"github.com/poolnetwork/pnd/puzzles"
)

// Keys of the launcher solution's extra-data key/value list.
var (
	launcherKeyState   = []byte("p")
	launcherKeyDelay   = []byte("t")
	launcherKeyDelayPH = []byte("h")
)

// RecoverPoolState recovers the pool state a historical spend encodes, if
// any. The spend is untrusted chain data produced by arbitrary actors, so
// every unexpected shape degrades to none; this function never fails.
//
// A launcher spend carries its state in the extra-data key/value list under
// the key "p". A travel spend carries the committed target state in its
// inner solution. Absorb spends preserve state and yield none, as does
// anything malformed.
func RecoverPoolState(spend *Spend) fn.Option[PoolState] {
	if spend == nil || spend.Solution == nil {
		return fn.None[PoolState]()
	}

	if spend.Coin.PuzzleHash == puzzles.LauncherPuzzleHash() {
		return recoverFromLauncher(spend)
	}

	// The outer solution is (lineage_proof amount inner_solution).
	outer, ok := spend.Solution.ProperList()
	if !ok || len(outer) != 3 {
		return fn.None[PoolState]()
	}

	args, ok := outer[2].ProperList()
	if !ok {
		return fn.None[PoolState]()
	}

	switch len(args) {
	// Pool member shape: (p1 pool_reward_height). A zero height marks
	// the escape committing p1; a nonzero height is an absorb and
	// carries no state.
	case 2:
		marker, ok := args[1].AsUint64()
		if !ok || marker != 0 {
			return fn.None[PoolState]()
		}

		return decodeStateAtom(spend, args[0])

	// Waiting room shape: (spend_type p1 p2). Spend type zero is the
	// state-preserving absorb; anything else completes the escape and
	// commits the state in p1.
	case 3:
		spendType, ok := args[0].AsUint64()
		if !ok || spendType == 0 {
			return fn.None[PoolState]()
		}

		return decodeStateAtom(spend, args[1])

	// Any other arity is malformed for both known templates.
	default:
		return fn.None[PoolState]()
	}
}

// recoverFromLauncher pulls the initial state out of the launcher solution
// (singleton_full_puzzle_hash amount key_value_list). Unknown keys and
// malformed entries are ignored; only a missing or undecodable "p" entry
// yields none.
func recoverFromLauncher(spend *Spend) fn.Option[PoolState] {
	items, ok := spend.Solution.ProperList()
	if !ok || len(items) < 3 {
		return fn.None[PoolState]()
	}

	entries, ok := items[2].ProperList()
	if !ok {
		return fn.None[PoolState]()
	}

	for _, entry := range entries {
		if !entry.IsPair() {
			continue
		}

		key := entry.First()
		if key.IsPair() || string(key.Atom()) != string(launcherKeyState) {
			continue
		}

		return decodeStateAtom(spend, entry.Rest())
	}

	return fn.None[PoolState]()
}

// decodeStateAtom decodes a committed pool state atom, mapping every failure
// to none.
func decodeStateAtom(spend *Spend, n *clvm.Node) fn.Option[PoolState] {
	if n.IsPair() || len(n.Atom()) == 0 {
		return fn.None[PoolState]()
	}

	state, err := DeserializePoolState(n.Atom())
	if err != nil {
		return fn.None[PoolState]()
	}

	log.Tracef("Recovered pool state from spend of %v: %v",
		spend.Coin.ID(), spew.Sdump(state))

	return fn.Some(*state)
}

// ReplayStates applies the reconstructor across an oldest-first lineage and
// returns every recovered state in chain order. Spends that carry no state
// are skipped.
func ReplayStates(spends SpendList) []PoolState {
	var states []PoolState
	for _, spend := range spends {
		RecoverPoolState(spend).WhenSome(func(s PoolState) {
			states = append(states, s)
		})
	}

	return states
}
