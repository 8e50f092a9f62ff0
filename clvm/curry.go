package clvm

// Operator atoms of the application form. The curried program
//
//	(a (q . mod) (c (q . arg1) (c (q . arg2) ... 1)))
//
// runs mod with the literal arguments prepended to whatever environment the
// caller supplies, so executing it with remaining input behaves exactly like
// executing mod with (args ++ remaining input).
var (
	atomQuote = []byte{0x01}
	atomApply = []byte{0x02}
	atomCons  = []byte{0x04}
)

// quoted returns (q . n).
func quoted(n *Node) *Node {
	return NewPair(NewAtom(atomQuote), n)
}

// Curry partially applies a template to the passed literal arguments,
// materializing the full application form. Its tree hash always matches
// CurriedPuzzleHash over the same hashes.
func Curry(mod *Node, args ...*Node) *Node {
	chain := NewAtom(atomQuote)
	for i := len(args) - 1; i >= 0; i-- {
		chain = NewList(NewAtom(atomCons), quoted(args[i]), chain)
	}

	return NewList(NewAtom(atomApply), quoted(mod), chain)
}

// Uncurry is the inverse of Curry. Given a program in the application form,
// it extracts the template and the curried arguments in order. It returns
// false for any program that is not a curry application; the input is
// arbitrary chain data, so no shape is an error here.
func Uncurry(p *Node) (*Node, []*Node, bool) {
	// (a (q . mod) chain)
	items, ok := p.ProperList()
	if !ok || len(items) != 3 {
		return nil, nil, false
	}

	if !items[0].Equal(NewAtom(atomApply)) {
		return nil, nil, false
	}

	mod, ok := unquote(items[1])
	if !ok {
		return nil, nil, false
	}

	// Walk the (c (q . arg) rest) chain down to the terminating 1.
	var args []*Node
	chain := items[2]
	for chain.IsPair() {
		link, ok := chain.ProperList()
		if !ok || len(link) != 3 {
			return nil, nil, false
		}
		if !link[0].Equal(NewAtom(atomCons)) {
			return nil, nil, false
		}

		arg, ok := unquote(link[1])
		if !ok {
			return nil, nil, false
		}

		args = append(args, arg)
		chain = link[2]
	}

	if !chain.Equal(NewAtom(atomQuote)) {
		return nil, nil, false
	}

	return mod, args, true
}

// unquote unwraps (q . n), returning false if p is not a quote form.
func unquote(p *Node) (*Node, bool) {
	if !p.IsPair() || !p.first.Equal(NewAtom(atomQuote)) {
		return nil, false
	}

	return p.rest, true
}
