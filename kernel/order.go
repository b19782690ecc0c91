package kernel

import "sort"

// Order is an ordering policy over a bocage's packed alternatives. Trees
// are enumerated in order of the (possibly ranked) alternatives. An Order
// freezes when the first tree is created or an ordering metric is queried.
type Order struct {
	b            *Bocage
	highRankOnly bool
	byRank       bool
	frozen       bool
}

// NewOrder creates an ordering over a bocage, in bocage order.
func NewOrder(b *Bocage) (*Order, error) {
	if b == nil {
		return nil, newError(ErrInternal, "order over nil bocage")
	}
	return &Order{b: b}, nil
}

// HighRankOnlySet restricts every choice point to its highest-ranked
// alternatives. Only effective together with Rank.
func (o *Order) HighRankOnlySet(on bool) error {
	if o.frozen {
		return newError(ErrOrderFrozen, "high_rank_only_set")
	}
	o.highRankOnly = on
	return nil
}

// Rank orders the alternatives of every choice point by rule rank,
// descending. Rules ranking their null variants high sort those before
// equally ranked non-null variants.
func (o *Order) Rank() error {
	if o.frozen {
		return newError(ErrOrderFrozen, "rank")
	}
	o.byRank = true
	return nil
}

// freeze applies the ordering policy to the forest. Idempotent.
func (o *Order) freeze() {
	if o.frozen {
		return
	}
	o.frozen = true
	if o.b.isNull || !o.byRank {
		return
	}
	o.eachNode(func(n *symNode) {
		if n.alts == nil || n.alts.Size() < 2 {
			return
		}
		alts := make([]*altNode, n.alts.Size())
		for i := range alts {
			v, _ := n.alts.Get(i)
			alts[i] = v.(*altNode)
		}
		sort.SliceStable(alts, func(x, y int) bool {
			return altWeight(alts[x]) > altWeight(alts[y])
		})
		if o.highRankOnly {
			top := altWeight(alts[0])
			cut := len(alts)
			for i, a := range alts {
				if altWeight(a) < top {
					cut = i
					break
				}
			}
			alts = alts[:cut]
		}
		n.alts.Clear()
		for _, a := range alts {
			n.alts.Add(a)
		}
	})
}

// altWeight folds rank and the null-rank-high flag into a single sort key.
func altWeight(a *altNode) int {
	w := a.rank * 2
	if a.nullHigh && a.hasNulled {
		w++
	}
	return w
}

func (o *Order) eachNode(visit func(*symNode)) {
	seen := make(map[*symNode]bool)
	var walk func(n *symNode)
	walk = func(n *symNode) {
		if n == nil || seen[n] {
			return
		}
		seen[n] = true
		visit(n)
		if n.alts == nil {
			return
		}
		for i := 0; i < n.alts.Size(); i++ {
			v, _ := n.alts.Get(i)
			for _, c := range v.(*altNode).children {
				walk(c)
			}
		}
	}
	walk(o.b.root)
}

// AmbiguityMetric returns 1 for an unambiguous ordering and a value of 2
// or more when the ordering contains more than one parse tree.
func (o *Order) AmbiguityMetric() int {
	o.freeze()
	metric := 1
	o.eachNode(func(n *symNode) {
		if n.alts != nil && n.alts.Size() > 1 {
			metric = 2
		}
	})
	return metric
}

// IsNull reports whether the ordering is over the null parse.
func (o *Order) IsNull() bool {
	return o.b.isNull
}
