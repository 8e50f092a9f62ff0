// Package pool implements the pool-membership singleton state machine: the
// travel and absorb spend builders that advance a singleton lineage, and the
// reconstructor that recovers membership state from historical spends.
package pool

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// SingletonState enumerates the pool-membership states a lineage can be in.
type SingletonState uint8

const (
	// SelfPooling means the owner farms to their own target puzzle hash.
	SelfPooling SingletonState = 1

	// Leaving means the owner has started the timed exit from a pool and
	// is waiting out the relative lock height.
	Leaving SingletonState = 2

	// FarmingToPool means rewards are routed to the pool's target puzzle
	// hash.
	FarmingToPool SingletonState = 3
)

// String returns a human readable name for the state.
func (s SingletonState) String() string {
	switch s {
	case SelfPooling:
		return "SelfPooling"
	case Leaving:
		return "Leaving"
	case FarmingToPool:
		return "FarmingToPool"
	default:
		return fmt.Sprintf("SingletonState(%d)", uint8(s))
	}
}

// valid returns true for the defined states.
func (s SingletonState) valid() bool {
	switch s {
	case SelfPooling, Leaving, FarmingToPool:
		return true
	default:
		return false
	}
}

// maxPoolURLLen bounds the encoded pool URL.
const maxPoolURLLen = 1024

var (
	// ErrInvalidPoolState is returned when decoding bytes that are not a
	// canonical pool state encoding.
	ErrInvalidPoolState = errors.New("invalid pool state encoding")
)

// PoolState is the wallet's intended or observed pool-membership
// configuration. It is an immutable value; its serialized form is the
// canonical encoding embedded in on-chain solutions, so round-trip stability
// of Serialize/DeserializePoolState is load-bearing.
type PoolState struct {
	// State is the membership state this configuration represents.
	State SingletonState

	// TargetPuzzleHash receives reward payouts: the pool's address when
	// farming to a pool, the owner's when self pooling.
	TargetPuzzleHash chainhash.Hash

	// OwnerPubKey authorizes state transitions.
	OwnerPubKey *btcec.PublicKey

	// PoolURL is the pool's endpoint, empty when self pooling.
	PoolURL string

	// RelativeLockHeight gates how quickly the owner can leave a pool.
	RelativeLockHeight uint32

	// Version is the encoding version.
	Version uint8
}

// Serialize returns the canonical byte encoding: state byte, compressed
// owner key, presence-flagged length-prefixed pool URL, relative lock
// height, target puzzle hash, version byte.
func (ps *PoolState) Serialize() ([]byte, error) {
	if !ps.State.valid() {
		return nil, fmt.Errorf("%w: state %d", ErrInvalidPoolState,
			ps.State)
	}
	if ps.OwnerPubKey == nil {
		return nil, fmt.Errorf("%w: missing owner key",
			ErrInvalidPoolState)
	}
	if len(ps.PoolURL) > maxPoolURLLen {
		return nil, fmt.Errorf("%w: pool URL of %d bytes",
			ErrInvalidPoolState, len(ps.PoolURL))
	}

	var buf bytes.Buffer
	buf.WriteByte(byte(ps.State))
	buf.Write(ps.OwnerPubKey.SerializeCompressed())

	if ps.PoolURL != "" {
		buf.WriteByte(1)
		var urlLen [2]byte
		binary.BigEndian.PutUint16(urlLen[:], uint16(len(ps.PoolURL)))
		buf.Write(urlLen[:])
		buf.WriteString(ps.PoolURL)
	} else {
		buf.WriteByte(0)
	}

	var lockHeight [4]byte
	binary.BigEndian.PutUint32(lockHeight[:], ps.RelativeLockHeight)
	buf.Write(lockHeight[:])

	buf.Write(ps.TargetPuzzleHash[:])
	buf.WriteByte(ps.Version)

	return buf.Bytes(), nil
}

// DeserializePoolState decodes the canonical encoding. The input is
// untrusted; any deviation from the canonical form, including trailing
// bytes, is an error.
func DeserializePoolState(b []byte) (*PoolState, error) {
	r := bytes.NewReader(b)

	var state [1]byte
	if _, err := io.ReadFull(r, state[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoolState, err)
	}

	ps := &PoolState{State: SingletonState(state[0])}
	if !ps.State.valid() {
		return nil, fmt.Errorf("%w: state %d", ErrInvalidPoolState,
			state[0])
	}

	var keyBytes [btcec.PubKeyBytesLenCompressed]byte
	if _, err := io.ReadFull(r, keyBytes[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoolState, err)
	}
	ownerKey, err := btcec.ParsePubKey(keyBytes[:])
	if err != nil {
		return nil, fmt.Errorf("%w: owner key: %v",
			ErrInvalidPoolState, err)
	}
	ps.OwnerPubKey = ownerKey

	var hasURL [1]byte
	if _, err := io.ReadFull(r, hasURL[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoolState, err)
	}
	switch hasURL[0] {
	case 0:

	case 1:
		var urlLen [2]byte
		if _, err := io.ReadFull(r, urlLen[:]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPoolState,
				err)
		}
		size := binary.BigEndian.Uint16(urlLen[:])
		if size == 0 || size > maxPoolURLLen {
			return nil, fmt.Errorf("%w: pool URL of %d bytes",
				ErrInvalidPoolState, size)
		}

		url := make([]byte, size)
		if _, err := io.ReadFull(r, url); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPoolState,
				err)
		}
		ps.PoolURL = string(url)

	default:
		return nil, fmt.Errorf("%w: URL presence byte %d",
			ErrInvalidPoolState, hasURL[0])
	}

	var lockHeight [4]byte
	if _, err := io.ReadFull(r, lockHeight[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoolState, err)
	}
	ps.RelativeLockHeight = binary.BigEndian.Uint32(lockHeight[:])

	if _, err := io.ReadFull(r, ps.TargetPuzzleHash[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoolState, err)
	}

	var version [1]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoolState, err)
	}
	ps.Version = version[0]

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes",
			ErrInvalidPoolState, r.Len())
	}

	return ps, nil
}

// Equal reports whether two states are identical, which by canonical
// encoding is the same as their serialized forms matching.
func (ps *PoolState) Equal(other *PoolState) bool {
	if ps == nil || other == nil {
		return ps == other
	}

	return ps.State == other.State &&
		ps.TargetPuzzleHash == other.TargetPuzzleHash &&
		ps.OwnerPubKey.IsEqual(other.OwnerPubKey) &&
		ps.PoolURL == other.PoolURL &&
		ps.RelativeLockHeight == other.RelativeLockHeight &&
		ps.Version == other.Version
}
