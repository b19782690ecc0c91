package kernel

// Grammar holds symbols and rules during the build phase and the
// precomputed tables afterwards. Symbol and rule ids are dense and never
// reused. A Grammar may be shared read-only by several recognizers after
// precomputation; mutation must be serialized externally.
type Grammar struct {
	symbols  []*symEntry
	nUserSym int // symbols visible to the caller; internal helpers live beyond
	rules    []*ruleEntry
	start    SymID
	valued   bool
	precomp  bool
	events   []Event

	// recognition tuning
	itemThreshold int

	// precomputation artifacts
	irules    []*irule
	rulesFor  map[SymID][]int // irule indexes by LHS
}

type symEntry struct {
	id       SymID
	terminal bool
	internal bool

	// event subscriptions
	completionEvent bool
	nulledEvent     bool
	predictionEvent bool

	// analysis results, valid after precompute
	nullable   bool
	nulling    bool
	accessible bool
	productive bool
}

type ruleEntry struct {
	id       RuleID
	lhs      SymID
	rhs      []SymID
	rank     int
	nullHigh bool

	sequence  bool
	separator SymID
	min       int
	proper    bool
	seqSym    SymID // internal recursion symbol, assigned at precompute
}

// internal rule kinds produced by the sequence rewrite
type irKind int

const (
	irPlain irKind = iota
	irSeqHead      // L ::= q
	irSeqHeadTrail // L ::= q sep           (non-proper separation)
	irSeqEmpty     // L ::= ε               (minimum 0)
	irSeqOne       // q ::= item
	irSeqMore      // q ::= q [sep] item
)

type irule struct {
	lhs  SymID
	rhs  []SymID
	src  RuleID
	kind irKind
}

// defaultItemThreshold bounds the size of a single Earley set before an
// advisory event is generated.
const defaultItemThreshold = 10000

// NewGrammar creates an empty grammar.
func NewGrammar() *Grammar {
	return &Grammar{
		start:         NoSymbol,
		itemThreshold: defaultItemThreshold,
	}
}

// ForceValued switches the grammar into valued mode. All token values are
// passed through the value stepper. The engine forces this at creation.
func (g *Grammar) ForceValued() error {
	g.valued = true
	return nil
}

// SymbolNew appends a fresh symbol and returns its id.
func (g *Grammar) SymbolNew() (SymID, error) {
	if g.precomp {
		return NoSymbol, newError(ErrPrecomputed, "symbol_new")
	}
	id := SymID(len(g.symbols))
	g.symbols = append(g.symbols, &symEntry{id: id})
	g.nUserSym = len(g.symbols)
	return id, nil
}

// HighestSymbolID returns the highest caller-visible symbol id, -1 for an
// empty grammar.
func (g *Grammar) HighestSymbolID() SymID {
	return SymID(g.nUserSym - 1)
}

// HighestRuleID returns the highest rule id, -1 for a grammar without rules.
func (g *Grammar) HighestRuleID() RuleID {
	return RuleID(len(g.rules) - 1)
}

func (g *Grammar) userSym(id SymID) (*symEntry, error) {
	if id < 0 || int(id) >= g.nUserSym {
		return nil, newError(ErrInvalidSymbolID, "symbol %d", id)
	}
	return g.symbols[id], nil
}

func (g *Grammar) sym(id SymID) *symEntry {
	return g.symbols[id]
}

func (g *Grammar) rule(id RuleID) (*ruleEntry, error) {
	if id < 0 || int(id) >= len(g.rules) {
		return nil, newError(ErrInvalidRuleID, "rule %d", id)
	}
	return g.rules[id], nil
}

// SymbolIsTerminalSet marks a symbol as terminal (or clears the mark).
func (g *Grammar) SymbolIsTerminalSet(id SymID, on bool) error {
	if g.precomp {
		return newError(ErrPrecomputed, "symbol_is_terminal_set")
	}
	s, err := g.userSym(id)
	if err != nil {
		return err
	}
	s.terminal = on
	return nil
}

// StartSymbolSet declares the start symbol.
func (g *Grammar) StartSymbolSet(id SymID) error {
	if g.precomp {
		return newError(ErrPrecomputed, "start_symbol_set")
	}
	if _, err := g.userSym(id); err != nil {
		return err
	}
	g.start = id
	return nil
}

// StartSymbol returns the start symbol, NoSymbol if none has been set.
func (g *Grammar) StartSymbol() SymID {
	return g.start
}

// SymbolIsCompletionEventSet subscribes a symbol to completion events.
func (g *Grammar) SymbolIsCompletionEventSet(id SymID, on bool) error {
	return g.eventFlagSet(id, "completion", on, func(s *symEntry) { s.completionEvent = on })
}

// SymbolIsNulledEventSet subscribes a symbol to nulled events.
func (g *Grammar) SymbolIsNulledEventSet(id SymID, on bool) error {
	return g.eventFlagSet(id, "nulled", on, func(s *symEntry) { s.nulledEvent = on })
}

// SymbolIsPredictionEventSet subscribes a symbol to prediction events.
func (g *Grammar) SymbolIsPredictionEventSet(id SymID, on bool) error {
	return g.eventFlagSet(id, "prediction", on, func(s *symEntry) { s.predictionEvent = on })
}

func (g *Grammar) eventFlagSet(id SymID, which string, on bool, apply func(*symEntry)) error {
	if g.precomp {
		return newError(ErrPrecomputed, "symbol_is_%s_event_set", which)
	}
	s, err := g.userSym(id)
	if err != nil {
		return err
	}
	apply(s)
	return nil
}

// RuleNew appends an ordinary BNF rule. The RHS may be empty.
func (g *Grammar) RuleNew(lhs SymID, rhs []SymID) (RuleID, error) {
	if g.precomp {
		return -1, newError(ErrPrecomputed, "rule_new")
	}
	if _, err := g.userSym(lhs); err != nil {
		return -1, err
	}
	for _, r := range rhs {
		if _, err := g.userSym(r); err != nil {
			return -1, err
		}
	}
	for _, r := range g.rules {
		if !r.sequence && r.lhs == lhs && equalRHS(r.rhs, rhs) {
			return -1, newError(ErrDuplicateRule, "rule for symbol %d", lhs)
		}
	}
	id := RuleID(len(g.rules))
	g.rules = append(g.rules, &ruleEntry{
		id:        id,
		lhs:       lhs,
		rhs:       append([]SymID(nil), rhs...),
		separator: NoSymbol,
		seqSym:    NoSymbol,
	})
	return id, nil
}

// SequenceNew appends a sequence rule: lhs derives a repetition of item,
// optionally interspersed with separator. minimum must be 0 or 1. With
// proper separation no trailing separator is accepted.
func (g *Grammar) SequenceNew(lhs, item, separator SymID, minimum int, proper bool) (RuleID, error) {
	if g.precomp {
		return -1, newError(ErrPrecomputed, "sequence_new")
	}
	if _, err := g.userSym(lhs); err != nil {
		return -1, err
	}
	if _, err := g.userSym(item); err != nil {
		return -1, err
	}
	if separator != NoSymbol {
		if _, err := g.userSym(separator); err != nil {
			return -1, err
		}
	}
	if minimum != 0 && minimum != 1 {
		return -1, newError(ErrSequenceMinimum, "minimum %d", minimum)
	}
	id := RuleID(len(g.rules))
	g.rules = append(g.rules, &ruleEntry{
		id:        id,
		lhs:       lhs,
		rhs:       []SymID{item},
		sequence:  true,
		separator: separator,
		min:       minimum,
		proper:    proper,
		seqSym:    NoSymbol,
	})
	return id, nil
}

// RuleRankSet assigns a rank to a rule. Ranks order alternatives during
// evaluation; higher ranks come first.
func (g *Grammar) RuleRankSet(id RuleID, rank int) error {
	if g.precomp {
		return newError(ErrPrecomputed, "rule_rank_set")
	}
	r, err := g.rule(id)
	if err != nil {
		return err
	}
	r.rank = rank
	return nil
}

// RuleNullHighSet ranks the null variants of a partially nullable rule
// above its non-null variants.
func (g *Grammar) RuleNullHighSet(id RuleID, on bool) error {
	if g.precomp {
		return newError(ErrPrecomputed, "rule_null_high_set")
	}
	r, err := g.rule(id)
	if err != nil {
		return err
	}
	r.nullHigh = on
	return nil
}

// EventCount returns the number of pending events.
func (g *Grammar) EventCount() int {
	return len(g.events)
}

// Event returns the pending event at index i.
func (g *Grammar) Event(i int) (Event, error) {
	if i < 0 || i >= len(g.events) {
		return Event{}, newError(ErrInternal, "event index %d of %d", i, len(g.events))
	}
	return g.events[i], nil
}

func (g *Grammar) clearEvents() {
	g.events = g.events[:0]
}

func (g *Grammar) pushEvent(t EventType, value int) {
	g.events = append(g.events, Event{Type: t, Value: value})
}

func equalRHS(a, b []SymID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
