package clvm

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Tree hashing domain separators. Atoms hash as H(0x01 || bytes), pairs as
// H(0x02 || firstHash || restHash).
const (
	atomHashPrefix = 0x01
	pairHashPrefix = 0x02
)

// Hashes of the atoms that appear in the application form produced by
// currying, precomputed once.
var (
	// hashNil is the tree hash of the empty atom.
	hashNil = AtomHash(nil)

	// hashQuote is the tree hash of the quote operator atom (1), which
	// also terminates a curried argument chain.
	hashQuote = AtomHash([]byte{0x01})

	// hashApply is the tree hash of the apply operator atom (2).
	hashApply = AtomHash([]byte{0x02})

	// hashCons is the tree hash of the cons operator atom (4).
	hashCons = AtomHash([]byte{0x04})
)

// AtomHash returns the tree hash of an atom with the given bytes.
func AtomHash(b []byte) chainhash.Hash {
	buf := make([]byte, 0, 1+len(b))
	buf = append(buf, atomHashPrefix)
	buf = append(buf, b...)

	return chainhash.HashH(buf)
}

// PairHash returns the tree hash of a pair whose children have the given
// tree hashes.
func PairHash(first, rest chainhash.Hash) chainhash.Hash {
	buf := make([]byte, 0, 1+2*chainhash.HashSize)
	buf = append(buf, pairHashPrefix)
	buf = append(buf, first[:]...)
	buf = append(buf, rest[:]...)

	return chainhash.HashH(buf)
}

// TreeHash returns the content hash of the tree. The hash is the program's
// on-chain address and is reproducible regardless of how the program was
// constructed.
func (n *Node) TreeHash() chainhash.Hash {
	if n.IsAtom() {
		return AtomHash(n.atom)
	}

	return PairHash(n.first.TreeHash(), n.rest.TreeHash())
}

// QuotedModHash returns the tree hash of (q . mod) for a template with the
// given tree hash, i.e. the hash contribution of the template once it is
// quoted inside a curried application. It is computed once per template and
// cached by the template registry.
func QuotedModHash(modHash chainhash.Hash) chainhash.Hash {
	return PairHash(hashQuote, modHash)
}

// CurriedPuzzleHash returns the tree hash of a template curried with the
// given arguments, from hashes alone. The fold mirrors the nesting of the
// application form built by Curry: each argument is quoted and consed onto
// the chain, which terminates in the bare environment reference 1.
//
// For every template and argument list, the result equals
// Curry(mod, args...).TreeHash(); that equivalence is the foundational
// contract of this package.
func CurriedPuzzleHash(quotedModHash chainhash.Hash,
	argHashes ...chainhash.Hash) chainhash.Hash {

	args := hashQuote
	for i := len(argHashes) - 1; i >= 0; i-- {
		quotedArg := PairHash(hashQuote, argHashes[i])
		args = PairHash(hashCons,
			PairHash(quotedArg, PairHash(args, hashNil)))
	}

	return PairHash(hashApply,
		PairHash(quotedModHash, PairHash(args, hashNil)))
}
