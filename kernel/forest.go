package kernel

import (
	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/lists/arraylist"
)

// Bocage is a packed parse forest over the recognized input. Symbol nodes
// cover a span of earlemes and fan out to packed alternatives; shared
// subtrees are re-used between parse trees.
type Bocage struct {
	g      *Grammar
	r      *Recognizer
	latest int
	root   *symNode
	isNull bool
}

type symNode struct {
	sym      SymID
	from, to int
	nulled   bool
	tok      *token
	alts     *arraylist.List // of *altNode; nil for leaves
}

type altNode struct {
	rule      RuleID
	rank      int
	nullHigh  bool
	hasNulled bool
	children  []*symNode
}

// NewBocage builds the parse forest for the parse ending at the given
// Earley set. latest may be -1 for the recognizer's latest set. Fails with
// ErrNoParse if the start symbol does not cover earlemes 0…latest.
func NewBocage(r *Recognizer, latest int) (*Bocage, error) {
	if latest < 0 {
		latest = r.LatestEarleySet()
	}
	if latest > r.LatestEarleySet() {
		return nil, newError(ErrInvalidEarleySet, "set %d", latest)
	}
	b := &Bocage{g: r.g, r: r, latest: latest}
	if latest == 0 {
		if !r.g.sym(r.g.start).nullable {
			return nil, newError(ErrNoParse, "empty input, start symbol not nullable")
		}
		b.isNull = true
		b.root = &symNode{sym: r.g.start, nulled: true}
		return b, nil
	}
	fb := &forestBuilder{
		g:        r.g,
		r:        r,
		memo:     make(map[nodeKey]*symNode),
		building: make(map[nodeKey]bool),
		tokens:   make(map[nodeKey]*token),
	}
	for i := range r.tokens {
		t := &r.tokens[i]
		fb.tokens[nodeKey{t.sym, t.start, t.end}] = t
	}
	root := fb.derive(r.g.start, 0, latest)
	if root == nil {
		return nil, newError(ErrNoParse, "start symbol does not cover earlemes 0…%d", latest)
	}
	b.root = root
	return b, nil
}

type nodeKey struct {
	sym      SymID
	from, to int
}

type forestBuilder struct {
	g        *Grammar
	r        *Recognizer
	memo     map[nodeKey]*symNode
	building map[nodeKey]bool
	tokens   map[nodeKey]*token
}

// altFingerprint identifies a packed alternative for de-duplication.
// Children are keyed by their spans; nodes are unique per (symbol, span).
type altFingerprint struct {
	Rule int
	Kids [][3]int
}

// derive returns the forest node for sym spanning earlemes i…j, or nil if
// no derivation exists. Nodes are memoized; a derivation cycle (possible
// with loop rules) is cut off at the point of re-entry.
func (fb *forestBuilder) derive(sym SymID, i, j int) *symNode {
	key := nodeKey{sym, i, j}
	if n, ok := fb.memo[key]; ok {
		return n
	}
	if i == j {
		var n *symNode
		if fb.g.sym(sym).nullable {
			n = &symNode{sym: sym, from: i, to: j, nulled: true}
		}
		fb.memo[key] = n
		return n
	}
	if fb.g.sym(sym).terminal {
		var n *symNode
		if t := fb.tokens[key]; t != nil {
			n = &symNode{sym: sym, from: i, to: j, tok: t}
		}
		fb.memo[key] = n
		return n
	}
	if fb.building[key] {
		tracer().Debugf("cutting derivation cycle at symbol %d (%d…%d)", sym, i, j)
		return nil
	}
	fb.building[key] = true
	defer delete(fb.building, key)

	node := &symNode{sym: sym, from: i, to: j, alts: arraylist.New()}
	seen := make(map[string]bool)
	for _, it := range fb.r.sets[j].items {
		ir := fb.g.irules[it.ir]
		if ir.lhs != sym || it.origin != i || it.dot < len(ir.rhs) {
			continue
		}
		rule := fb.g.rules[ir.src]
		switch ir.kind {
		case irPlain:
			for _, kids := range fb.matchRHS(ir.rhs, i, j) {
				fb.addAlt(node, seen, rule, kids)
			}
		case irSeqHead:
			for _, items := range fb.seqItems(rule, i, j) {
				fb.addAlt(node, seen, rule, items)
			}
		case irSeqHeadTrail:
			for p := i; p < j; p++ {
				if fb.tokens[nodeKey{rule.separator, p, j}] == nil {
					continue
				}
				for _, items := range fb.seqItems(rule, i, p) {
					fb.addAlt(node, seen, rule, items)
				}
			}
		}
	}
	if node.alts.Size() == 0 {
		fb.memo[key] = nil
		return nil
	}
	fb.memo[key] = node
	return node
}

func (fb *forestBuilder) addAlt(node *symNode, seen map[string]bool, rule *ruleEntry, kids []*symNode) {
	fp := altFingerprint{Rule: int(rule.id)}
	hasNulled := false
	for _, k := range kids {
		fp.Kids = append(fp.Kids, [3]int{int(k.sym), k.from, k.to})
		if k.nulled {
			hasNulled = true
		}
	}
	h, err := structhash.Hash(fp, 1)
	if err != nil { // no reason for this to happen, but the API demands it
		panic(err)
	}
	if seen[h] {
		return
	}
	seen[h] = true
	node.alts.Add(&altNode{
		rule:      rule.id,
		rank:      rule.rank,
		nullHigh:  rule.nullHigh,
		hasNulled: hasNulled,
		children:  kids,
	})
}

// matchRHS enumerates all ways to cover earlemes i…j with the symbols of
// rhs, right to left. Every returned slice has one node per RHS symbol.
func (fb *forestBuilder) matchRHS(rhs []SymID, i, j int) [][]*symNode {
	if len(rhs) == 0 {
		if i == j {
			return [][]*symNode{{}}
		}
		return nil
	}
	last := rhs[len(rhs)-1]
	var out [][]*symNode
	for p := i; p <= j; p++ {
		c := fb.derive(last, p, j)
		if c == nil {
			continue
		}
		for _, prefix := range fb.matchRHS(rhs[:len(rhs)-1], i, p) {
			kids := make([]*symNode, 0, len(rhs))
			kids = append(kids, prefix...)
			kids = append(kids, c)
			out = append(out, kids)
		}
	}
	return out
}

// seqItems enumerates the item sequences of a sequence rule covering
// earlemes i…j. Separators are matched but not returned: the value
// stepper presents a sequence reduction with its item values only.
func (fb *forestBuilder) seqItems(rule *ruleEntry, i, j int) [][]*symNode {
	q := rule.seqSym
	itemSym := rule.rhs[0]
	var out [][]*symNode
	for _, it := range fb.r.sets[j].items {
		ir := fb.g.irules[it.ir]
		if ir.lhs != q || ir.src != rule.id || it.origin != i || it.dot < len(ir.rhs) {
			continue
		}
		switch ir.kind {
		case irSeqOne:
			if c := fb.derive(itemSym, i, j); c != nil {
				out = append(out, []*symNode{c})
			}
		case irSeqMore:
			for p2 := i; p2 < j; p2++ {
				c := fb.derive(itemSym, p2, j)
				if c == nil {
					continue
				}
				if rule.separator == NoSymbol {
					for _, sub := range fb.seqItems(rule, i, p2) {
						out = append(out, append(append([]*symNode(nil), sub...), c))
					}
					continue
				}
				for p1 := i; p1 < p2; p1++ {
					if fb.tokens[nodeKey{rule.separator, p1, p2}] == nil {
						continue
					}
					for _, sub := range fb.seqItems(rule, i, p1) {
						out = append(out, append(append([]*symNode(nil), sub...), c))
					}
				}
			}
		}
	}
	return out
}

// IsNull reports whether the forest represents the null parse.
func (b *Bocage) IsNull() bool {
	return b.isNull
}
