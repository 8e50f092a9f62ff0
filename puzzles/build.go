package puzzles

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/poolnetwork/pnd/clvm"
)

// poolRewardPrefixLen is how many bytes of the genesis challenge identify a
// chain's pool reward coins.
const poolRewardPrefixLen = 16

// PoolRewardPrefix derives the 32-byte reward coin parent prefix for a
// chain: the first 16 bytes of its genesis challenge, zero padded. Every
// caller must derive this identically for puzzle hashes to agree.
func PoolRewardPrefix(genesisChallenge chainhash.Hash) []byte {
	prefix := make([]byte, chainhash.HashSize)
	copy(prefix, genesisChallenge[:poolRewardPrefixLen])

	return prefix
}

// singletonStruct returns the (MOD_HASH . (LAUNCHER_ID . LAUNCHER_PH))
// triple curried into the singleton outer wrapper.
func singletonStruct(launcherID chainhash.Hash) *clvm.Node {
	return clvm.NewPair(
		clvm.NewAtom(singletonModHash[:]),
		clvm.NewPair(
			clvm.NewAtom(launcherID[:]),
			clvm.NewAtom(launcherModHash[:]),
		),
	)
}

// BuildWaitingRoom curries the waiting room inner puzzle for a lineage. The
// waiting room represents both the self-pooling and the leaving states; its
// escape is gated on relativeLockHeight.
func BuildWaitingRoom(targetPuzzleHash chainhash.Hash,
	relativeLockHeight uint32, ownerPubKey *btcec.PublicKey,
	launcherID, genesisChallenge chainhash.Hash, delayTime uint64,
	delayPuzzleHash chainhash.Hash) *clvm.Node {

	p2PuzzleHash := P2SingletonHash(launcherID, delayTime, delayPuzzleHash)

	return clvm.Curry(waitingRoomMod,
		clvm.NewAtom(targetPuzzleHash[:]),
		clvm.NewAtom(p2PuzzleHash[:]),
		clvm.NewAtom(ownerPubKey.SerializeCompressed()),
		clvm.NewAtom(PoolRewardPrefix(genesisChallenge)),
		clvm.NewInt(uint64(relativeLockHeight)),
	)
}

// BuildPoolMember curries the pool member inner puzzle for a lineage.
// escapePuzzleHash is the tree hash of the waiting room the member escapes
// into, computed by the caller from the same lineage parameters.
func BuildPoolMember(targetPuzzleHash, escapePuzzleHash chainhash.Hash,
	ownerPubKey *btcec.PublicKey, launcherID,
	genesisChallenge chainhash.Hash, delayTime uint64,
	delayPuzzleHash chainhash.Hash) *clvm.Node {

	p2PuzzleHash := P2SingletonHash(launcherID, delayTime, delayPuzzleHash)

	return clvm.Curry(poolMemberMod,
		clvm.NewAtom(targetPuzzleHash[:]),
		clvm.NewAtom(p2PuzzleHash[:]),
		clvm.NewAtom(ownerPubKey.SerializeCompressed()),
		clvm.NewAtom(PoolRewardPrefix(genesisChallenge)),
		clvm.NewAtom(escapePuzzleHash[:]),
	)
}

// BuildFullPuzzle wraps an inner puzzle in the singleton outer wrapper for
// the given lineage.
func BuildFullPuzzle(inner *clvm.Node, launcherID chainhash.Hash) *clvm.Node {
	return clvm.Curry(singletonMod, singletonStruct(launcherID), inner)
}

// FullPuzzleHash returns the tree hash BuildFullPuzzle would produce, from
// the inner puzzle's hash alone.
func FullPuzzleHash(innerPuzzleHash chainhash.Hash,
	launcherID chainhash.Hash) chainhash.Hash {

	return clvm.CurriedPuzzleHash(singletonQuoted,
		singletonStruct(launcherID).TreeHash(), innerPuzzleHash)
}

// BuildP2Singleton curries the pay-to-singleton puzzle: coins paid to its
// hash are claimable only by the lineage's current tip, or by
// delayedPuzzleHash after secondsDelay.
func BuildP2Singleton(launcherID chainhash.Hash, secondsDelay uint64,
	delayedPuzzleHash chainhash.Hash) *clvm.Node {

	return clvm.Curry(p2SingletonMod,
		clvm.NewAtom(singletonModHash[:]),
		clvm.NewAtom(launcherID[:]),
		clvm.NewAtom(launcherModHash[:]),
		clvm.NewInt(secondsDelay),
		clvm.NewAtom(delayedPuzzleHash[:]),
	)
}

// P2SingletonHash returns the tree hash BuildP2Singleton would produce
// without materializing the curried tree.
func P2SingletonHash(launcherID chainhash.Hash, secondsDelay uint64,
	delayedPuzzleHash chainhash.Hash) chainhash.Hash {

	return clvm.CurriedPuzzleHash(p2SingletonQuoted,
		clvm.AtomHash(singletonModHash[:]),
		clvm.AtomHash(launcherID[:]),
		clvm.AtomHash(launcherModHash[:]),
		clvm.NewInt(secondsDelay).TreeHash(),
		clvm.AtomHash(delayedPuzzleHash[:]),
	)
}
