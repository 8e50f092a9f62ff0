package pool

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/poolnetwork/pnd/clvm"
)

var (
	// ErrInvalidSpend is returned when decoding bytes that are not a
	// serialized spend.
	ErrInvalidSpend = errors.New("invalid spend encoding")
)

// Coin is a single on-chain coin: an output identified by the spend that
// created it, the puzzle hash it is locked to, and its amount.
type Coin struct {
	// ParentID is the id of the coin whose spend created this one.
	ParentID chainhash.Hash

	// PuzzleHash is the tree hash of the puzzle locking this coin.
	PuzzleHash chainhash.Hash

	// Amount is the coin's value. Odd amounts mark singleton lineage
	// elements.
	Amount uint64
}

// ID returns the coin's unique id: the hash of its parent id, puzzle hash
// and amount, with the amount encoded as a minimal integer atom so the id
// agrees with the one the chain derives from the creating spend.
func (c *Coin) ID() chainhash.Hash {
	amount := clvm.NewInt(c.Amount).Atom()

	buf := make([]byte, 0, 2*chainhash.HashSize+len(amount))
	buf = append(buf, c.ParentID[:]...)
	buf = append(buf, c.PuzzleHash[:]...)
	buf = append(buf, amount...)

	return chainhash.HashH(buf)
}

// Spend is a concrete, provable state transition: a coin together with the
// full puzzle reveal it was locked to and the solution that satisfied it.
type Spend struct {
	// Coin is the coin being consumed.
	Coin Coin

	// PuzzleReveal is the full program whose tree hash equals
	// Coin.PuzzleHash.
	PuzzleReveal *clvm.Node

	// Solution is the input the puzzle was executed with.
	Solution *clvm.Node
}

// Serialize returns the canonical byte encoding of the spend: the coin's
// three fields followed by the length-prefixed serialized puzzle and
// solution.
func (s *Spend) Serialize() []byte {
	var buf bytes.Buffer

	buf.Write(s.Coin.ParentID[:])
	buf.Write(s.Coin.PuzzleHash[:])

	var amount [8]byte
	binary.BigEndian.PutUint64(amount[:], s.Coin.Amount)
	buf.Write(amount[:])

	writeBlob(&buf, s.PuzzleReveal.Serialize())
	writeBlob(&buf, s.Solution.Serialize())

	return buf.Bytes()
}

func writeBlob(buf *bytes.Buffer, b []byte) {
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(b)))
	buf.Write(size[:])
	buf.Write(b)
}

// DeserializeSpend decodes a serialized spend. The input is untrusted.
func DeserializeSpend(b []byte) (*Spend, error) {
	r := bytes.NewReader(b)

	var s Spend
	if _, err := io.ReadFull(r, s.Coin.ParentID[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpend, err)
	}
	if _, err := io.ReadFull(r, s.Coin.PuzzleHash[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpend, err)
	}

	var amount [8]byte
	if _, err := io.ReadFull(r, amount[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpend, err)
	}
	s.Coin.Amount = binary.BigEndian.Uint64(amount[:])

	puzzle, err := readBlob(r)
	if err != nil {
		return nil, err
	}
	if s.PuzzleReveal, err = clvm.Deserialize(puzzle); err != nil {
		return nil, fmt.Errorf("%w: puzzle: %v", ErrInvalidSpend, err)
	}

	solution, err := readBlob(r)
	if err != nil {
		return nil, err
	}
	if s.Solution, err = clvm.Deserialize(solution); err != nil {
		return nil, fmt.Errorf("%w: solution: %v", ErrInvalidSpend,
			err)
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes",
			ErrInvalidSpend, r.Len())
	}

	return &s, nil
}

func readBlob(r *bytes.Reader) ([]byte, error) {
	var sizeBytes [4]byte
	if _, err := io.ReadFull(r, sizeBytes[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpend, err)
	}

	size := binary.BigEndian.Uint32(sizeBytes[:])
	if uint64(r.Len()) < uint64(size) {
		return nil, fmt.Errorf("%w: truncated blob", ErrInvalidSpend)
	}

	blob := make([]byte, size)
	if _, err := io.ReadFull(r, blob); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpend, err)
	}

	return blob, nil
}

// LineageProof links a singleton coin to its predecessor so a verifier can
// recompute the parent's puzzle hash without storing it. The inner puzzle
// hash leg is absent exactly when the parent is the launcher coin.
type LineageProof struct {
	// ParentID is the parent of the spent coin's parent.
	ParentID chainhash.Hash

	// InnerPuzzleHash is the previous singleton's inner puzzle hash,
	// absent for the eve spend directly after the launcher.
	InnerPuzzleHash fn.Option[chainhash.Hash]

	// Amount is the previous coin's amount.
	Amount uint64
}

// Node returns the proof's solution encoding: the two-field launcher form,
// or the three-field form carrying the previous inner puzzle hash.
func (l *LineageProof) Node() *clvm.Node {
	items := []*clvm.Node{clvm.NewAtom(l.ParentID[:])}

	l.InnerPuzzleHash.WhenSome(func(h chainhash.Hash) {
		items = append(items, clvm.NewAtom(h[:]))
	})

	items = append(items, clvm.NewInt(l.Amount))

	return clvm.NewList(items...)
}

// SpendList is the spend history of one singleton lineage, ordered
// oldest-first beginning at the launcher spend. The ordering is a caller
// contract: each spend's parent coin must appear before it, since lineage
// proofs and state recovery depend on the immediately preceding spend.
type SpendList []*Spend

// SpendRunner executes a spend's puzzle against its solution. It is
// implemented by the external program-execution engine; nothing in this
// module runs programs itself.
type SpendRunner interface {
	// Additions returns the coins created by the passed spend.
	Additions(spend *Spend) ([]*Coin, error)
}

// Constants carries the consensus parameters the builders need. The values
// come from the external constants registry and are never mutated here.
type Constants struct {
	// GenesisChallenge identifies the chain; its first 16 bytes prefix
	// all pool reward coin parents.
	GenesisChallenge chainhash.Hash

	// DelayTime is the p2-singleton claw-back delay in seconds.
	DelayTime uint64

	// DelayPuzzleHash is the fallback claim address after DelayTime.
	DelayPuzzleHash chainhash.Hash

	// RewardForHeight is the chain's reward schedule.
	RewardForHeight func(height uint32) uint64
}
