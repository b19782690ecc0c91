package kernel

// Tree enumerates the concrete parse trees of an Order, one at a time.
// Enumeration walks the forest's choice points like an odometer: the
// right-most choice point that still has an untried alternative is
// advanced, everything after it is reset.
type Tree struct {
	o         *Order
	first     bool
	exhausted bool
	count     int
	choices   []choice // choice points of the current tree, in preorder
}

type choice struct {
	n   *symNode
	alt int
}

// NewTree creates a tree enumerator over an order and freezes the order.
func NewTree(o *Order) (*Tree, error) {
	if o == nil {
		return nil, newError(ErrInternal, "tree over nil order")
	}
	o.freeze()
	return &Tree{o: o, first: true}, nil
}

// Next advances to the next parse tree. It returns a non-negative tree
// index, or -1 when the enumeration is exhausted.
func (t *Tree) Next() int {
	if t.exhausted {
		return -1
	}
	if t.first {
		t.first = false
		t.count = 0
		if t.o.b.isNull {
			return 0
		}
		t.choices = t.build(nil)
		return 0
	}
	if t.o.b.isNull {
		t.exhausted = true
		return -1
	}
	for k := len(t.choices) - 1; k >= 0; k-- {
		c := t.choices[k]
		if c.alt+1 < c.n.alts.Size() {
			prefix := make([]choice, k+1)
			copy(prefix, t.choices[:k])
			prefix[k] = choice{n: c.n, alt: c.alt + 1}
			t.choices = t.build(prefix)
			t.count++
			return t.count
		}
	}
	t.exhausted = true
	return -1
}

// build materializes the choice-point list of a tree. The first len(prefix)
// choice points take their alternative from prefix, all later ones take
// alternative 0. The preorder prefix of choice points is stable under this
// scheme, because the shape of the walk up to a choice point depends only
// on choices made before it.
func (t *Tree) build(prefix []choice) []choice {
	var out []choice
	var walk func(n *symNode)
	walk = func(n *symNode) {
		if n.alts == nil { // leaf
			return
		}
		sel := 0
		if len(out) < len(prefix) {
			sel = prefix[len(out)].alt
		}
		out = append(out, choice{n: n, alt: sel})
		v, _ := n.alts.Get(sel)
		for _, c := range v.(*altNode).children {
			walk(c)
		}
	}
	walk(t.o.b.root)
	return out
}

// chosen returns the chosen alternative of the k-th choice point.
func (t *Tree) chosen(k int) *altNode {
	c := t.choices[k]
	v, _ := c.n.alts.Get(c.alt)
	return v.(*altNode)
}

func (t *Tree) hasTree() bool {
	return !t.first && !t.exhausted
}
