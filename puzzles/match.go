package puzzles

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/poolnetwork/pnd/clvm"
)

var (
	// ErrWrongPuzzle is returned by the argument extractors when the
	// passed puzzle was not curried from the expected template. Callers
	// are required to classify before extracting, so hitting this is a
	// programming mistake, not bad chain data.
	ErrWrongPuzzle = errors.New("puzzle not curried from expected " +
		"template")
)

// InnerVariant is the closed set of inner puzzle templates a singleton in
// this protocol can carry. Anything else on chain classifies as
// VariantUnknown.
type InnerVariant uint8

const (
	// VariantUnknown marks a puzzle that matches neither known template.
	VariantUnknown InnerVariant = iota

	// VariantPoolMember is the active farming-to-pool inner puzzle.
	VariantPoolMember

	// VariantWaitingRoom is the self-pooling/leaving inner puzzle with
	// an escape delay.
	VariantWaitingRoom
)

// String returns a human readable name for the variant.
func (v InnerVariant) String() string {
	switch v {
	case VariantPoolMember:
		return "PoolMember"
	case VariantWaitingRoom:
		return "WaitingRoom"
	default:
		return "Unknown"
	}
}

// ClassifyInner determines which known inner template, if any, the passed
// puzzle was curried from. The input is arbitrary chain data.
func ClassifyInner(p *clvm.Node) InnerVariant {
	mod, _, ok := clvm.Uncurry(p)
	if !ok {
		return VariantUnknown
	}

	switch mod.TreeHash() {
	case poolMemberModHash:
		return VariantPoolMember
	case waitingRoomModHash:
		return VariantWaitingRoom
	default:
		return VariantUnknown
	}
}

// IsPoolMemberPuzzle returns true if p is a curried pool member inner
// puzzle.
func IsPoolMemberPuzzle(p *clvm.Node) bool {
	return ClassifyInner(p) == VariantPoolMember
}

// IsWaitingRoomPuzzle returns true if p is a curried waiting room inner
// puzzle.
func IsWaitingRoomPuzzle(p *clvm.Node) bool {
	return ClassifyInner(p) == VariantWaitingRoom
}

// PoolMemberArgs is the fixed-order argument tuple curried into the pool
// member template.
type PoolMemberArgs struct {
	TargetPuzzleHash      chainhash.Hash
	P2SingletonPuzzleHash chainhash.Hash
	OwnerPubKey           *btcec.PublicKey
	PoolRewardPrefix      []byte
	EscapePuzzleHash      chainhash.Hash
}

// WaitingRoomArgs is the fixed-order argument tuple curried into the waiting
// room template.
type WaitingRoomArgs struct {
	TargetPuzzleHash      chainhash.Hash
	P2SingletonPuzzleHash chainhash.Hash
	OwnerPubKey           *btcec.PublicKey
	PoolRewardPrefix      []byte
	RelativeLockHeight    uint32
}

// ExtractPoolMemberArgs returns the curried argument tuple of a pool member
// inner puzzle, failing loudly if p is anything else.
func ExtractPoolMemberArgs(p *clvm.Node) (*PoolMemberArgs, error) {
	args, err := extractArgs(p, poolMemberModHash)
	if err != nil {
		return nil, err
	}

	target, err := atomAsHash(args[0])
	if err != nil {
		return nil, fmt.Errorf("pool member target: %w", err)
	}
	p2Hash, err := atomAsHash(args[1])
	if err != nil {
		return nil, fmt.Errorf("pool member p2 hash: %w", err)
	}
	owner, err := btcec.ParsePubKey(args[2].Atom())
	if err != nil {
		return nil, fmt.Errorf("pool member owner key: %w", err)
	}
	escape, err := atomAsHash(args[4])
	if err != nil {
		return nil, fmt.Errorf("pool member escape hash: %w", err)
	}

	return &PoolMemberArgs{
		TargetPuzzleHash:      target,
		P2SingletonPuzzleHash: p2Hash,
		OwnerPubKey:           owner,
		PoolRewardPrefix:      args[3].Atom(),
		EscapePuzzleHash:      escape,
	}, nil
}

// ExtractWaitingRoomArgs returns the curried argument tuple of a waiting
// room inner puzzle, failing loudly if p is anything else.
func ExtractWaitingRoomArgs(p *clvm.Node) (*WaitingRoomArgs, error) {
	args, err := extractArgs(p, waitingRoomModHash)
	if err != nil {
		return nil, err
	}

	target, err := atomAsHash(args[0])
	if err != nil {
		return nil, fmt.Errorf("waiting room target: %w", err)
	}
	p2Hash, err := atomAsHash(args[1])
	if err != nil {
		return nil, fmt.Errorf("waiting room p2 hash: %w", err)
	}
	owner, err := btcec.ParsePubKey(args[2].Atom())
	if err != nil {
		return nil, fmt.Errorf("waiting room owner key: %w", err)
	}
	lockHeight, ok := args[4].AsUint64()
	if !ok || lockHeight > 0xffffffff {
		return nil, fmt.Errorf("waiting room lock height: %w",
			ErrWrongPuzzle)
	}

	return &WaitingRoomArgs{
		TargetPuzzleHash:      target,
		P2SingletonPuzzleHash: p2Hash,
		OwnerPubKey:           owner,
		PoolRewardPrefix:      args[3].Atom(),
		RelativeLockHeight:    uint32(lockHeight),
	}, nil
}

// extractArgs uncurries p, requires its template hash to match modHash, and
// requires the five-argument arity shared by both inner templates.
func extractArgs(p *clvm.Node, modHash chainhash.Hash) ([]*clvm.Node, error) {
	mod, args, ok := clvm.Uncurry(p)
	if !ok || mod.TreeHash() != modHash {
		return nil, ErrWrongPuzzle
	}

	if len(args) != 5 {
		return nil, fmt.Errorf("%w: got %d curried args, want 5",
			ErrWrongPuzzle, len(args))
	}

	return args, nil
}

// InnerPuzzle unwraps the singleton outer wrapper and returns the inner
// puzzle, but only when that inner puzzle classifies as one of the two known
// variants. Arbitrary chain programs that merely share the outer template
// yield none.
func InnerPuzzle(full *clvm.Node) fn.Option[*clvm.Node] {
	mod, args, ok := clvm.Uncurry(full)
	if !ok || mod.TreeHash() != singletonModHash || len(args) != 2 {
		return fn.None[*clvm.Node]()
	}

	// First curried argument must be the singleton struct triple.
	if !args[0].IsPair() {
		return fn.None[*clvm.Node]()
	}

	inner := args[1]
	if ClassifyInner(inner) == VariantUnknown {
		log.Tracef("Singleton wrapper around unrecognized inner "+
			"puzzle %x", inner.TreeHash())

		return fn.None[*clvm.Node]()
	}

	return fn.Some(inner)
}

// atomAsHash converts a 32-byte atom into a hash value.
func atomAsHash(n *clvm.Node) (chainhash.Hash, error) {
	var h chainhash.Hash
	if n.IsPair() || len(n.Atom()) != chainhash.HashSize {
		return h, ErrWrongPuzzle
	}

	copy(h[:], n.Atom())

	return h, nil
}
