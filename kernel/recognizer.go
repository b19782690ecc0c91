package kernel

import "sort"

// An item is a dotted internal rule with its origin Earley set.
type item struct {
	ir     int // index into Grammar.irules
	dot    int
	origin int
}

type eset struct {
	items []item
	index map[item]bool
}

func newEset() *eset {
	return &eset{index: make(map[item]bool)}
}

type token struct {
	sym        SymID
	value      int
	start, end int // earlemes
}

// Recognizer drives earleme-by-earleme input over a precomputed grammar.
// A Recognizer is not safe for concurrent use, and recognizers sharing a
// grammar must be serialized externally: events accumulate at the grammar.
type Recognizer struct {
	g       *Grammar
	sets    []*eset
	cur     int
	tokens  []token
	started bool

	// per-recognizer event activation, indexed by user symbol id
	actCompletion []bool
	actNulled     []bool
	actPrediction []bool

	progress       []progressItem
	progressPos    int
	progressActive bool
}

type progressItem struct {
	rule     RuleID
	position int
	origin   int
}

// NewRecognizer creates a recognizer for a precomputed grammar.
func NewRecognizer(g *Grammar) (*Recognizer, error) {
	if !g.precomp {
		return nil, newError(ErrNotPrecomputed, "recognizer_new")
	}
	r := &Recognizer{
		g:             g,
		actCompletion: make([]bool, g.nUserSym),
		actNulled:     make([]bool, g.nUserSym),
		actPrediction: make([]bool, g.nUserSym),
	}
	for i := 0; i < g.nUserSym; i++ {
		s := g.symbols[i]
		r.actCompletion[i] = s.completionEvent
		r.actNulled[i] = s.nulledEvent
		r.actPrediction[i] = s.predictionEvent
	}
	return r, nil
}

// StartInput initializes Earley set 0 with the predictions of the start
// symbol and posts the resulting events.
func (r *Recognizer) StartInput() error {
	if r.started {
		return newError(ErrInternal, "start_input called twice")
	}
	r.started = true
	r.g.clearEvents()
	r.sets = append(r.sets, newEset())
	for _, ri := range r.g.rulesFor[r.g.start] {
		r.addItem(0, item{ir: ri, dot: 0, origin: 0})
	}
	r.closure(0)
	r.postSymbolEvents(0)
	r.checkExhaustion()
	return nil
}

func (r *Recognizer) addItem(set int, it item) {
	s := r.sets[set]
	if s.index[it] {
		return
	}
	s.index[it] = true
	s.items = append(s.items, it)
}

func (r *Recognizer) nextSym(it item) SymID {
	rhs := r.g.irules[it.ir].rhs
	if it.dot >= len(rhs) {
		return NoSymbol
	}
	return rhs[it.dot]
}

// closure applies the completer and predictor to set i until it is stable.
// The item list serves as the work queue; zero-width derivations are
// covered by the nullable-advance of the predictor, so one pass suffices.
func (r *Recognizer) closure(i int) {
	set := r.sets[i]
	for k := 0; k < len(set.items); k++ {
		it := set.items[k]
		next := r.nextSym(it)
		if next == NoSymbol { // completer
			lhs := r.g.irules[it.ir].lhs
			src := r.sets[it.origin]
			for x := 0; x < len(src.items); x++ {
				jt := src.items[x]
				if r.nextSym(jt) == lhs {
					r.addItem(i, item{ir: jt.ir, dot: jt.dot + 1, origin: jt.origin})
				}
			}
			continue
		}
		if r.g.sym(next).terminal {
			continue
		}
		for _, ri := range r.g.rulesFor[next] { // predictor
			r.addItem(i, item{ir: ri, dot: 0, origin: i})
		}
		if r.g.sym(next).nullable { // nullable advance
			r.addItem(i, item{ir: it.ir, dot: it.dot + 1, origin: it.origin})
		}
	}
	if len(set.items) > r.g.itemThreshold {
		r.g.pushEvent(EventEarleyItemThreshold, len(set.items))
	}
}

// Alternative offers a token starting at the current earleme. length is
// measured in earlemes and must be at least 1.
func (r *Recognizer) Alternative(sym SymID, value int, length int) error {
	if !r.started {
		return newError(ErrInternal, "alternative before start_input")
	}
	s, err := r.g.userSym(sym)
	if err != nil {
		return err
	}
	if !s.terminal {
		return newError(ErrNotATerminal, "symbol %d", sym)
	}
	if length < 1 {
		return newError(ErrTokenLengthInvalid, "length %d", length)
	}
	expected, err := r.TerminalIsExpected(sym)
	if err != nil {
		return err
	}
	if !expected {
		return newError(ErrUnexpectedToken, "symbol %d at earleme %d", sym, r.cur)
	}
	end := r.cur + length
	for _, t := range r.tokens {
		if t.sym == sym && t.start == r.cur && t.end == end {
			return newError(ErrDuplicateToken, "symbol %d at earleme %d, length %d", sym, r.cur, length)
		}
	}
	r.tokens = append(r.tokens, token{sym: sym, value: value, start: r.cur, end: end})
	tracer().Debugf("alternative: symbol %d, value %d, earlemes %d…%d", sym, value, r.cur, end)
	return nil
}

// EarlemeComplete advances the recognizer by one earleme, scanning all
// tokens that end there. Exhaustion is reported as an event, never as an
// error: a recognizer that can accept no further input still completes.
func (r *Recognizer) EarlemeComplete() error {
	if !r.started {
		return newError(ErrInternal, "earleme_complete before start_input")
	}
	r.g.clearEvents()
	r.cur++
	r.sets = append(r.sets, newEset())
	for _, t := range r.tokens {
		if t.end != r.cur {
			continue
		}
		src := r.sets[t.start]
		for _, jt := range src.items {
			if r.nextSym(jt) == t.sym {
				r.addItem(r.cur, item{ir: jt.ir, dot: jt.dot + 1, origin: jt.origin})
			}
		}
	}
	r.closure(r.cur)
	r.postSymbolEvents(r.cur)
	r.checkExhaustion()
	tracer().Debugf("earleme %d complete, %d items", r.cur, len(r.sets[r.cur].items))
	return nil
}

// postSymbolEvents collects completed/nulled/predicted events for
// subscribed and activated symbols of set i, in item order.
func (r *Recognizer) postSymbolEvents(i int) {
	g := r.g
	seenC := make(map[SymID]bool)
	seenN := make(map[SymID]bool)
	seenP := make(map[SymID]bool)
	for _, it := range r.sets[i].items {
		ir := g.irules[it.ir]
		lhs := ir.lhs
		if int(lhs) >= g.nUserSym { // internal recursion symbol
			continue
		}
		if it.dot >= len(ir.rhs) { // completed instance
			if it.origin == i { // zero-width: nulled
				if r.actNulled[lhs] && !seenN[lhs] {
					seenN[lhs] = true
					g.pushEvent(EventSymbolNulled, int(lhs))
				}
			} else if r.actCompletion[lhs] && !seenC[lhs] {
				seenC[lhs] = true
				g.pushEvent(EventSymbolCompleted, int(lhs))
			}
			continue
		}
		if it.dot == 0 && it.origin == i { // freshly predicted
			if r.actPrediction[lhs] && !seenP[lhs] {
				seenP[lhs] = true
				g.pushEvent(EventSymbolPredicted, int(lhs))
			}
		}
	}
}

func (r *Recognizer) checkExhaustion() {
	for _, t := range r.tokens {
		if t.end > r.cur {
			return // a pending token keeps the parse alive
		}
	}
	for _, it := range r.sets[r.cur].items {
		next := r.nextSym(it)
		if next != NoSymbol && r.g.sym(next).terminal {
			return
		}
	}
	r.g.pushEvent(EventExhausted, 0)
}

// TerminalsExpected fills buf with the terminals the recognizer currently
// expects, in ascending id order, and returns their number. buf must hold
// at least HighestSymbolID()+1 entries.
func (r *Recognizer) TerminalsExpected(buf []SymID) (int, error) {
	if len(buf) < r.g.nUserSym {
		return 0, newError(ErrInvalidBufferSize, "have %d, want %d", len(buf), r.g.nUserSym)
	}
	seen := make(map[SymID]bool)
	var ids []int
	for _, it := range r.sets[r.cur].items {
		next := r.nextSym(it)
		if next == NoSymbol || !r.g.sym(next).terminal || seen[next] {
			continue
		}
		seen[next] = true
		ids = append(ids, int(next))
	}
	sort.Ints(ids)
	for i, id := range ids {
		buf[i] = SymID(id)
	}
	return len(ids), nil
}

// TerminalIsExpected reports whether sym can be scanned at the current earleme.
func (r *Recognizer) TerminalIsExpected(sym SymID) (bool, error) {
	s, err := r.g.userSym(sym)
	if err != nil {
		return false, err
	}
	if !s.terminal {
		return false, newError(ErrNotATerminal, "symbol %d", sym)
	}
	for _, it := range r.sets[r.cur].items {
		if r.nextSym(it) == sym {
			return true, nil
		}
	}
	return false, nil
}

// CompletionSymbolActivate enables or disables completion events for a
// symbol. The symbol must have been subscribed at grammar-build time.
func (r *Recognizer) CompletionSymbolActivate(sym SymID, on bool) error {
	s, err := r.g.userSym(sym)
	if err != nil {
		return err
	}
	if !s.completionEvent {
		return newError(ErrEventNotSubscribed, "completion of symbol %d", sym)
	}
	r.actCompletion[sym] = on
	return nil
}

// NulledSymbolActivate enables or disables nulled events for a symbol.
func (r *Recognizer) NulledSymbolActivate(sym SymID, on bool) error {
	s, err := r.g.userSym(sym)
	if err != nil {
		return err
	}
	if !s.nulledEvent {
		return newError(ErrEventNotSubscribed, "nulled of symbol %d", sym)
	}
	r.actNulled[sym] = on
	return nil
}

// PredictionSymbolActivate enables or disables prediction events for a symbol.
func (r *Recognizer) PredictionSymbolActivate(sym SymID, on bool) error {
	s, err := r.g.userSym(sym)
	if err != nil {
		return err
	}
	if !s.predictionEvent {
		return newError(ErrEventNotSubscribed, "prediction of symbol %d", sym)
	}
	r.actPrediction[sym] = on
	return nil
}

// LatestEarleySet returns the id of the latest Earley set.
func (r *Recognizer) LatestEarleySet() int {
	return r.cur
}

// Earleme returns the earleme of an Earley set. Sets and earlemes are in
// 1:1 correspondence in this kernel.
func (r *Recognizer) Earleme(set int) (int, error) {
	if set < 0 || set > r.cur {
		return -1, newError(ErrInvalidEarleySet, "set %d", set)
	}
	return set, nil
}

// ProgressReportStart snapshots the dotted rules of an Earley set and
// returns the number of report items. Items of internal recursion rules
// are folded onto their source rule; a position of -1 denotes a dot at the
// end of the rule.
func (r *Recognizer) ProgressReportStart(set int) (int, error) {
	if set < 0 || set > r.cur {
		return 0, newError(ErrInvalidEarleySet, "set %d", set)
	}
	r.progress = r.progress[:0]
	seen := make(map[progressItem]bool)
	for _, it := range r.sets[set].items {
		ir := r.g.irules[it.ir]
		var pos int
		switch ir.kind {
		case irPlain, irSeqEmpty, irSeqHeadTrail:
			pos = it.dot
		case irSeqHead:
			pos = 0
		case irSeqOne, irSeqMore:
			continue
		}
		if it.dot >= len(ir.rhs) {
			pos = -1
		}
		p := progressItem{rule: ir.src, position: pos, origin: it.origin}
		if seen[p] {
			continue
		}
		seen[p] = true
		r.progress = append(r.progress, p)
	}
	r.progressPos = 0
	r.progressActive = true
	return len(r.progress), nil
}

// ProgressItem returns the next report item as (rule, position, origin).
func (r *Recognizer) ProgressItem() (RuleID, int, int, error) {
	if !r.progressActive || r.progressPos >= len(r.progress) {
		return -1, 0, 0, newError(ErrNoProgressReport, "progress_item")
	}
	p := r.progress[r.progressPos]
	r.progressPos++
	return p.rule, p.position, p.origin, nil
}

// ProgressReportFinish ends a progress report.
func (r *Recognizer) ProgressReportFinish() error {
	if !r.progressActive {
		return newError(ErrNoProgressReport, "progress_report_finish")
	}
	r.progressActive = false
	return nil
}
