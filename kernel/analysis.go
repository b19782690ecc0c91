package kernel

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// Precompute freezes the grammar: sequence rules are rewritten into
// internal right-recursive rules, the symbol properties nullable, nulling,
// accessible and productive are derived, and grammar defects are reported
// as events. Counted nullables and nulling terminals are fatal and leave
// the grammar unusable; loop rules and inaccessible symbols are advisory.
func (g *Grammar) Precompute() error {
	if g.precomp {
		return newError(ErrPrecomputed, "precompute")
	}
	g.clearEvents()
	if g.start == NoSymbol {
		return newError(ErrNoStartSymbol, "precompute")
	}
	g.rewriteSequences()
	g.indexRules()
	g.analyzeSymbols()

	var fatal *Error
	for _, r := range g.rules {
		if !r.sequence {
			continue
		}
		item := r.rhs[0]
		if g.sym(item).nullable {
			g.pushEvent(EventCountedNullable, int(item))
			if fatal == nil {
				fatal = newError(ErrCountedNullable, "symbol %d in sequence rule %d", item, r.id)
			}
		}
		if r.separator != NoSymbol && g.sym(r.separator).nullable {
			g.pushEvent(EventCountedNullable, int(r.separator))
			if fatal == nil {
				fatal = newError(ErrCountedNullable, "separator %d in sequence rule %d", r.separator, r.id)
			}
		}
	}
	for i := 0; i < g.nUserSym; i++ {
		s := g.symbols[i]
		if s.terminal && s.nullable {
			g.pushEvent(EventNullingTerminal, int(s.id))
			if fatal == nil {
				fatal = newError(ErrNullingTerminal, "symbol %d", s.id)
			}
		}
	}
	if fatal != nil {
		tracer().Errorf("precompute failed: %v", fatal)
		return fatal
	}
	if n := g.countLoopRules(); n > 0 {
		g.pushEvent(EventLoopRules, n)
	}
	for i := 0; i < g.nUserSym; i++ {
		if !g.symbols[i].accessible {
			g.pushEvent(EventInaccessible, i)
		}
	}
	g.precomp = true
	tracer().Debugf("grammar precomputed: %d symbols, %d rules, %d internal rules",
		g.nUserSym, len(g.rules), len(g.irules))
	return nil
}

// Precomputed tells whether the grammar has been frozen.
func (g *Grammar) Precomputed() bool {
	return g.precomp
}

// rewriteSequences expands every sequence rule over a hidden recursion
// symbol. The internal rules remember their source rule, so that progress
// reports and the value stepper can fold them back.
func (g *Grammar) rewriteSequences() {
	g.irules = g.irules[:0]
	for _, r := range g.rules {
		if !r.sequence {
			g.irules = append(g.irules, &irule{lhs: r.lhs, rhs: r.rhs, src: r.id, kind: irPlain})
			continue
		}
		q := g.newInternalSymbol()
		r.seqSym = q
		item := r.rhs[0]
		g.irules = append(g.irules, &irule{lhs: r.lhs, rhs: []SymID{q}, src: r.id, kind: irSeqHead})
		if r.separator != NoSymbol && !r.proper {
			g.irules = append(g.irules,
				&irule{lhs: r.lhs, rhs: []SymID{q, r.separator}, src: r.id, kind: irSeqHeadTrail})
		}
		if r.min == 0 {
			g.irules = append(g.irules, &irule{lhs: r.lhs, rhs: nil, src: r.id, kind: irSeqEmpty})
		}
		g.irules = append(g.irules, &irule{lhs: q, rhs: []SymID{item}, src: r.id, kind: irSeqOne})
		more := []SymID{q, item}
		if r.separator != NoSymbol {
			more = []SymID{q, r.separator, item}
		}
		g.irules = append(g.irules, &irule{lhs: q, rhs: more, src: r.id, kind: irSeqMore})
	}
}

func (g *Grammar) newInternalSymbol() SymID {
	id := SymID(len(g.symbols))
	g.symbols = append(g.symbols, &symEntry{id: id, internal: true})
	return id
}

func (g *Grammar) indexRules() {
	g.rulesFor = make(map[SymID][]int)
	for i, ir := range g.irules {
		g.rulesFor[ir.lhs] = append(g.rulesFor[ir.lhs], i)
	}
}

// analyzeSymbols runs the nullable/productive/nulling/accessible fixpoints
// over the internal rules.
func (g *Grammar) analyzeSymbols() {
	// nullable: derives the empty string
	for changed := true; changed; {
		changed = false
		for _, ir := range g.irules {
			if g.sym(ir.lhs).nullable {
				continue
			}
			if allOf(ir.rhs, func(s SymID) bool { return g.sym(s).nullable }) {
				g.sym(ir.lhs).nullable = true
				changed = true
			}
		}
	}
	// productive: derives some string of terminals
	for _, s := range g.symbols {
		s.productive = s.terminal || s.nullable
	}
	for changed := true; changed; {
		changed = false
		for _, ir := range g.irules {
			if g.sym(ir.lhs).productive {
				continue
			}
			if allOf(ir.rhs, func(s SymID) bool { return g.sym(s).productive }) {
				g.sym(ir.lhs).productive = true
				changed = true
			}
		}
	}
	// nulling: nullable and unable to derive anything non-empty
	nonempty := make([]bool, len(g.symbols))
	for i, s := range g.symbols {
		nonempty[i] = s.terminal
	}
	for changed := true; changed; {
		changed = false
		for _, ir := range g.irules {
			if nonempty[ir.lhs] {
				continue
			}
			usable := allOf(ir.rhs, func(s SymID) bool { return g.sym(s).productive })
			if !usable {
				continue
			}
			if anyOf(ir.rhs, func(s SymID) bool { return nonempty[s] }) {
				nonempty[ir.lhs] = true
				changed = true
			}
		}
	}
	for i, s := range g.symbols {
		s.nulling = s.nullable && !nonempty[i]
	}
	// accessible: reachable from the start symbol
	worklist := treeset.NewWith(utils.IntComparator)
	worklist.Add(int(g.start))
	g.sym(g.start).accessible = true
	for worklist.Size() > 0 {
		id := worklist.Values()[0].(int)
		worklist.Remove(id)
		for _, ri := range g.rulesFor[SymID(id)] {
			for _, rhs := range g.irules[ri].rhs {
				if s := g.sym(rhs); !s.accessible {
					s.accessible = true
					worklist.Add(int(rhs))
				}
			}
		}
	}
}

// countLoopRules counts rules on a cycle A ⇒+ A, where the derivation may
// pass through nullable context only.
func (g *Grammar) countLoopRules() int {
	n := len(g.symbols)
	reach := make([][]bool, n)
	for i := range reach {
		reach[i] = make([]bool, n)
	}
	for _, ir := range g.irules {
		for d, rhs := range ir.rhs {
			if g.sym(rhs).terminal {
				continue
			}
			nullableAround := true
			for d2, other := range ir.rhs {
				if d2 != d && !g.sym(other).nullable {
					nullableAround = false
					break
				}
			}
			if nullableAround {
				reach[ir.lhs][rhs] = true
			}
		}
	}
	for k := 0; k < n; k++ { // Warshall
		for i := 0; i < n; i++ {
			if !reach[i][k] {
				continue
			}
			for j := 0; j < n; j++ {
				if reach[k][j] {
					reach[i][j] = true
				}
			}
		}
	}
	loops := 0
	for _, r := range g.rules {
		if r.sequence {
			continue
		}
		for d, rhs := range r.rhs {
			if g.sym(rhs).terminal {
				continue
			}
			nullableAround := true
			for d2, other := range r.rhs {
				if d2 != d && !g.sym(other).nullable {
					nullableAround = false
					break
				}
			}
			if nullableAround && (rhs == r.lhs || reach[rhs][r.lhs]) {
				loops++
				break
			}
		}
	}
	return loops
}

func allOf(syms []SymID, pred func(SymID) bool) bool {
	for _, s := range syms {
		if !pred(s) {
			return false
		}
	}
	return true
}

func anyOf(syms []SymID, pred func(SymID) bool) bool {
	for _, s := range syms {
		if pred(s) {
			return true
		}
	}
	return false
}
