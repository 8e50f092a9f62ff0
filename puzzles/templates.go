// Package puzzles holds the fixed on-chain program templates of the pool
// singleton protocol and the constructors and matchers that curry them with
// lineage-specific parameters and recognize them again in arbitrary chain
// data.
//
// The templates and their precomputed hashes form a process-wide read-only
// registry built once at init time and never mutated afterwards.
package puzzles

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/poolnetwork/pnd/clvm"
)

// Program operators appearing in the compiled templates.
const (
	opQuote  = 0x01
	opApply  = 0x02
	opIf     = 0x03
	opCons   = 0x04
	opRaise  = 0x08
	opEq     = 0x09
	opSha256 = 0x0b
)

// Condition codes emitted by the templates.
const (
	condAggSigMe               = 50
	condCreateCoin             = 51
	condCreateCoinAnnouncement = 60
	condAssertCoinAnnouncement = 61
	condAssertMyAmount         = 73
	condAssertSecondsRelative  = 80
	condAssertHeightRelative   = 82
)

// Environment paths of the five curried arguments and the solution arguments
// in the compiled inner puzzles.
const (
	pathArg1 = 2
	pathArg2 = 5
	pathArg3 = 11
	pathArg4 = 23
	pathArg5 = 47
	pathSol1 = 95
	pathSol2 = 191
	pathSol3 = 383
)

// The registry. Populated once by init, read-only afterwards.
var (
	poolMemberMod  *clvm.Node
	waitingRoomMod *clvm.Node
	singletonMod   *clvm.Node
	launcherMod    *clvm.Node
	p2SingletonMod *clvm.Node

	poolMemberModHash  chainhash.Hash
	waitingRoomModHash chainhash.Hash
	singletonModHash   chainhash.Hash
	launcherModHash    chainhash.Hash
	p2SingletonModHash chainhash.Hash

	poolMemberQuoted  chainhash.Hash
	waitingRoomQuoted chainhash.Hash
	singletonQuoted   chainhash.Hash
	p2SingletonQuoted chainhash.Hash
)

func init() {
	poolMemberMod = buildPoolMemberMod()
	waitingRoomMod = buildWaitingRoomMod()
	singletonMod = buildSingletonMod()
	launcherMod = buildLauncherMod()
	p2SingletonMod = buildP2SingletonMod()

	poolMemberModHash = poolMemberMod.TreeHash()
	waitingRoomModHash = waitingRoomMod.TreeHash()
	singletonModHash = singletonMod.TreeHash()
	launcherModHash = launcherMod.TreeHash()
	p2SingletonModHash = p2SingletonMod.TreeHash()

	poolMemberQuoted = clvm.QuotedModHash(poolMemberModHash)
	waitingRoomQuoted = clvm.QuotedModHash(waitingRoomModHash)
	singletonQuoted = clvm.QuotedModHash(singletonModHash)
	p2SingletonQuoted = clvm.QuotedModHash(p2SingletonModHash)
}

// SingletonModHash returns the tree hash of the singleton outer template.
func SingletonModHash() chainhash.Hash {
	return singletonModHash
}

// LauncherPuzzle returns the launcher template. It takes no curried
// arguments; its hash is the well known address one-time launcher coins are
// paid to.
func LauncherPuzzle() *clvm.Node {
	return launcherMod
}

// LauncherPuzzleHash returns the tree hash of the launcher template.
func LauncherPuzzleHash() chainhash.Hash {
	return launcherModHash
}

// Small builders for the template trees.

func op(code byte) *clvm.Node {
	return clvm.NewAtom([]byte{code})
}

func ref(path uint64) *clvm.Node {
	return clvm.NewInt(path)
}

func cint(v uint64) *clvm.Node {
	return clvm.NewInt(v)
}

func list(items ...*clvm.Node) *clvm.Node {
	return clvm.NewList(items...)
}

func qt(n *clvm.Node) *clvm.Node {
	return clvm.NewPair(op(opQuote), n)
}

// condChain builds the runtime (c cond (c cond ... ())) construction for a
// produced condition list.
func condChain(conds ...*clvm.Node) *clvm.Node {
	out := clvm.NewNil()
	for i := len(conds) - 1; i >= 0; i-- {
		out = list(op(opCons), conds[i], out)
	}

	return out
}

// buildPoolMemberMod returns the compiled pool member inner puzzle. Curried
// arguments, in order: POOL_PUZZLE_HASH, P2_SINGLETON_PUZZLE_HASH,
// OWNER_PUBKEY, POOL_REWARD_PREFIX, ESCAPE_PUZZLE_HASH. The solution is
// (p1 pool_reward_height): a nonzero height absorbs a pool reward, a zero
// height escapes to the waiting room committed by ESCAPE_PUZZLE_HASH.
func buildPoolMemberMod() *clvm.Node {
	// Absorb branch: assert the reward coin's announcement, derived from
	// the reward prefix and height, and pay the claimed amount to the
	// pool's target puzzle hash.
	absorb := condChain(
		list(op(opCons), cint(condAssertCoinAnnouncement),
			list(op(opCons),
				list(op(opSha256), ref(pathArg2), ref(pathArg4),
					ref(pathSol2)),
				clvm.NewNil())),
		list(op(opCons), cint(condCreateCoin),
			list(op(opCons), ref(pathArg1),
				list(op(opCons), ref(pathSol1), clvm.NewNil()))),
	)

	// Escape branch: owner signs the committed target state and the coin
	// is recreated under the escape puzzle.
	escape := condChain(
		list(op(opCons), cint(condAggSigMe),
			list(op(opCons), ref(pathArg3),
				list(op(opCons),
					list(op(opSha256), ref(pathSol1)),
					clvm.NewNil()))),
		list(op(opCons), cint(condCreateCoin),
			list(op(opCons), ref(pathArg5),
				list(op(opCons), cint(1), clvm.NewNil()))),
	)

	return list(op(opApply),
		list(op(opIf), ref(pathSol2), qt(absorb), qt(escape)),
		ref(1))
}

// buildWaitingRoomMod returns the compiled waiting room inner puzzle.
// Curried arguments, in order: TARGET_PUZZLE_HASH, P2_SINGLETON_PUZZLE_HASH,
// OWNER_PUBKEY, POOL_REWARD_PREFIX, RELATIVE_LOCK_HEIGHT. The solution is
// (spend_type p1 p2): spend_type 1 completes the escape after the relative
// lock height, spend_type 0 absorbs a reward without a state change.
func buildWaitingRoomMod() *clvm.Node {
	exit := condChain(
		list(op(opCons), cint(condAssertHeightRelative),
			list(op(opCons), ref(pathArg5), clvm.NewNil())),
		list(op(opCons), cint(condAggSigMe),
			list(op(opCons), ref(pathArg3),
				list(op(opCons),
					list(op(opSha256), ref(pathSol2)),
					clvm.NewNil()))),
		list(op(opCons), cint(condCreateCoin),
			list(op(opCons), ref(pathSol3),
				list(op(opCons), cint(1), clvm.NewNil()))),
	)

	absorb := condChain(
		list(op(opCons), cint(condAssertCoinAnnouncement),
			list(op(opCons),
				list(op(opSha256), ref(pathArg2), ref(pathArg4),
					ref(pathSol3)),
				clvm.NewNil())),
		list(op(opCons), cint(condCreateCoin),
			list(op(opCons), ref(pathArg1),
				list(op(opCons), ref(pathSol2), clvm.NewNil()))),
	)

	return list(op(opApply),
		list(op(opIf), ref(pathSol1), qt(exit), qt(absorb)),
		ref(1))
}

// buildSingletonMod returns the singleton outer wrapper. Curried arguments:
// the singleton struct (MOD_HASH . (LAUNCHER_ID . LAUNCHER_PUZZLE_HASH)) and
// the inner puzzle. The wrapper enforces the odd-amount uniqueness marker
// and verifies the lineage proof supplied in the outer solution.
func buildSingletonMod() *clvm.Node {
	verify := list(op(opIf),
		list(op(opEq),
			list(op(opSha256), ref(pathSol1), ref(pathArg1)),
			ref(pathArg1)),
		qt(list(op(opApply), ref(pathArg2), ref(pathSol2))),
		qt(list(op(opRaise))))

	return list(op(opApply), verify, ref(1))
}

// buildLauncherMod returns the launcher template. Its solution is
// (singleton_full_puzzle_hash amount key_value_list); it creates the first
// singleton coin and announces the key/value commitment.
func buildLauncherMod() *clvm.Node {
	return list(op(opApply),
		qt(condChain(
			list(op(opCons), cint(condCreateCoin),
				list(op(opCons), ref(pathArg1),
					list(op(opCons), ref(pathArg2),
						clvm.NewNil()))),
			list(op(opCons), cint(condCreateCoinAnnouncement),
				list(op(opCons),
					list(op(opSha256), ref(pathArg3)),
					clvm.NewNil())),
		)),
		ref(1))
}

// buildP2SingletonMod returns the pay-to-singleton template. Curried
// arguments: SINGLETON_MOD_HASH, LAUNCHER_ID, LAUNCHER_PUZZLE_HASH,
// SECONDS_DELAY, DELAYED_PUZZLE_HASH. A coin paid to this puzzle can be
// claimed by the current singleton tip, or by the delayed puzzle hash once
// SECONDS_DELAY has passed.
func buildP2SingletonMod() *clvm.Node {
	claim := condChain(
		list(op(opCons), cint(condCreateCoinAnnouncement),
			list(op(opCons), ref(pathSol2), clvm.NewNil())),
		list(op(opCons), cint(condAssertMyAmount),
			list(op(opCons), ref(pathSol1), clvm.NewNil())),
	)

	delayed := condChain(
		list(op(opCons), cint(condAssertSecondsRelative),
			list(op(opCons), ref(pathArg4), clvm.NewNil())),
		list(op(opCons), cint(condCreateCoin),
			list(op(opCons), ref(pathArg5),
				list(op(opCons), cint(1), clvm.NewNil()))),
	)

	return list(op(opApply),
		list(op(opIf), ref(pathSol1), qt(claim), qt(delayed)),
		ref(1))
}
