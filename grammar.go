package bocage

import (
	"fmt"

	"github.com/npillmayer/bocage/bufman"
	"github.com/npillmayer/bocage/kernel"
)

// Symbol is a grammar symbol. Symbols are created with Grammar.AddSymbol,
// owned by their grammar and valid until the grammar is discarded.
type Symbol struct {
	g    *Grammar
	id   kernel.SymID
	opts SymbolOptions

	// transient per-lex-iteration classification, managed by the driver
	length   int
	isLexeme bool
}

// SymbolOptions configures a new symbol. The zero value is a valid
// default: a non-terminal without events.
type SymbolOptions struct {
	UserData  interface{} // opaque client data, passed to classifier callbacks
	Terminal  bool
	Start     bool
	Events    EventKind // subscribed event kinds
	Size      int       // declared token size; 0 = unknown (LATM only)
	FirstChar rune      // declared first character; 0 = unknown (LATM only)
}

// ID returns the dense kernel-assigned symbol id.
func (s *Symbol) ID() int {
	return int(s.id)
}

// UserData returns the client data attached at creation.
func (s *Symbol) UserData() interface{} {
	return s.opts.UserData
}

func (s *Symbol) String() string {
	return fmt.Sprintf("symbol #%d", s.id)
}

// Rule is a grammar rule, created with Grammar.AddRule.
type Rule struct {
	g    *Grammar
	id   kernel.RuleID
	opts RuleOptions
}

// RuleOptions configures a new rule. LHS must be set; everything else is
// optional. For sequence rules, RHS must hold exactly one symbol and Min
// must be 0 or 1.
type RuleOptions struct {
	UserData      interface{}
	LHS           *Symbol
	RHS           []*Symbol
	Rank          int
	NullRanksHigh bool

	Sequence  bool
	Separator *Symbol
	Proper    bool
	Min       int
}

// ID returns the dense kernel-assigned rule id.
func (r *Rule) ID() int {
	return int(r.id)
}

// UserData returns the client data attached at creation.
func (r *Rule) UserData() interface{} {
	return r.opts.UserData
}

func (r *Rule) String() string {
	return fmt.Sprintf("rule #%d", r.id)
}

// Grammar owns symbols and rules and drives the kernel grammar through
// build and precomputation. After Precompute a grammar may be shared
// read-only by several recognizers, externally serialized.
type Grammar struct {
	kg      *kernel.Grammar
	symbols *bufman.Buffer[*Symbol]
	rules   *bufman.Buffer[*Rule]

	handler        EventHandler
	handlerData    interface{}
	warningIsError bool
	ignoreWarnings bool
	unsortedEvents bool
	version        *[3]int
}

// Option configures a grammar.
type Option func(g *Grammar)

// WithEventHandler installs the event callback together with its opaque
// receiver data.
func WithEventHandler(h EventHandler, userdata interface{}) Option {
	return func(g *Grammar) {
		g.handler = h
		g.handlerData = userdata
	}
}

// WarningIsError escalates advisory grammar events to failures. It takes
// precedence over IgnoreWarnings.
func WarningIsError(b bool) Option {
	return func(g *Grammar) {
		g.warningIsError = b
	}
}

// IgnoreWarnings suppresses logging of advisory grammar events.
func IgnoreWarnings(b bool) Option {
	return func(g *Grammar) {
		g.ignoreWarnings = b
	}
}

// UnsortedEvents delivers event batches in kernel order instead of
// sorting them completed before nulled before predicted.
func UnsortedEvents(b bool) Option {
	return func(g *Grammar) {
		g.unsortedEvents = b
	}
}

// RequireVersion makes grammar creation fail unless the kernel is
// compatible with the given version triple.
func RequireVersion(major, minor, patch int) Option {
	return func(g *Grammar) {
		g.version = &[3]int{major, minor, patch}
	}
}

// NewGrammar creates an empty grammar in valued mode.
func NewGrammar(opts ...Option) (*Grammar, error) {
	g := &Grammar{
		symbols: bufman.New[*Symbol](nil),
		rules:   bufman.New[*Rule](nil),
	}
	for _, opt := range opts {
		opt(g)
	}
	v := kernel.Version()
	tracer().Debugf("kernel version is %d.%d.%d", v[0], v[1], v[2])
	if g.version != nil {
		if err := kernel.CheckVersion(g.version[0], g.version[1], g.version[2]); err != nil {
			tracer().Errorf(err.Error())
			return nil, err
		}
	}
	g.kg = kernel.NewGrammar()
	if err := g.kg.ForceValued(); err != nil {
		tracer().Errorf(err.Error())
		return nil, err
	}
	return g, nil
}

// AddSymbol appends a symbol and applies its flags synchronously. Adding
// symbols to a precomputed grammar is an error.
func (g *Grammar) AddSymbol(opts SymbolOptions) (*Symbol, error) {
	if g.kg.Precomputed() {
		return nil, ErrGrammarFrozen
	}
	id, err := g.kg.SymbolNew()
	if err != nil {
		return nil, g.fail("add symbol", err)
	}
	if opts.Terminal {
		if err := g.kg.SymbolIsTerminalSet(id, true); err != nil {
			return nil, g.fail("add symbol", err)
		}
	}
	if opts.Start {
		if err := g.kg.StartSymbolSet(id); err != nil {
			return nil, g.fail("add symbol", err)
		}
	}
	if opts.Events&EventCompleted != 0 {
		if err := g.kg.SymbolIsCompletionEventSet(id, true); err != nil {
			return nil, g.fail("add symbol", err)
		}
	}
	if opts.Events&EventNulled != 0 {
		if err := g.kg.SymbolIsNulledEventSet(id, true); err != nil {
			return nil, g.fail("add symbol", err)
		}
	}
	if opts.Events&EventPredicted != 0 {
		if err := g.kg.SymbolIsPredictionEventSet(id, true); err != nil {
			return nil, g.fail("add symbol", err)
		}
	}
	sym := &Symbol{g: g, id: id, opts: opts}
	if err := g.symbols.Put(int(id), sym); err != nil {
		return nil, g.fail("add symbol", err)
	}
	return sym, nil
}

// AddRule appends a rule. Ordinary rules take any number of RHS symbols,
// sequence rules exactly one. Rank and null-rank-high are applied when
// they differ from the defaults.
func (g *Grammar) AddRule(opts RuleOptions) (*Rule, error) {
	if g.kg.Precomputed() {
		return nil, ErrGrammarFrozen
	}
	if opts.LHS == nil {
		tracer().Errorf(ErrMissingLHS.Error())
		return nil, ErrMissingLHS
	}
	var id kernel.RuleID
	var err error
	if opts.Sequence {
		if len(opts.RHS) != 1 {
			tracer().Errorf(ErrSequenceRHS.Error())
			return nil, ErrSequenceRHS
		}
		if opts.Min != 0 && opts.Min != 1 {
			tracer().Errorf(ErrSequenceMinimum.Error())
			return nil, ErrSequenceMinimum
		}
		separator := kernel.NoSymbol
		if opts.Separator != nil {
			separator = opts.Separator.id
		}
		id, err = g.kg.SequenceNew(opts.LHS.id, opts.RHS[0].id, separator, opts.Min, opts.Proper)
	} else {
		rhs := make([]kernel.SymID, len(opts.RHS))
		for i, s := range opts.RHS {
			if s == nil {
				tracer().Errorf("RHS symbol %d is void", i)
				return nil, fmt.Errorf("%w: RHS symbol %d", ErrMissingLHS, i)
			}
			rhs[i] = s.id
		}
		id, err = g.kg.RuleNew(opts.LHS.id, rhs)
	}
	if err != nil {
		return nil, g.fail("add rule", err)
	}
	if opts.Rank != 0 {
		if err := g.kg.RuleRankSet(id, opts.Rank); err != nil {
			return nil, g.fail("add rule", err)
		}
	}
	if opts.NullRanksHigh {
		if err := g.kg.RuleNullHighSet(id, true); err != nil {
			return nil, g.fail("add rule", err)
		}
	}
	rule := &Rule{g: g, id: id, opts: opts}
	if err := g.rules.Put(int(id), rule); err != nil {
		return nil, g.fail("add rule", err)
	}
	return rule, nil
}

// Precompute freezes the grammar. Events generated by precomputation are
// dispatched through the event pipeline; fatal kinds fail the call.
func (g *Grammar) Precompute() error {
	kerr := g.kg.Precompute()
	serr := g.syncEvents()
	if serr != nil {
		return serr
	}
	if kerr != nil {
		return g.fail("precompute", kerr)
	}
	return nil
}

// Symbol returns the symbol with the given id, nil if out of range.
func (g *Grammar) Symbol(id int) *Symbol {
	return g.symbols.Get(id)
}

// Rule returns the rule with the given id, nil if out of range.
func (g *Grammar) Rule(id int) *Rule {
	return g.rules.Get(id)
}

// fail logs a kernel error and wraps it with engine context.
func (g *Grammar) fail(op string, err error) error {
	tracer().Errorf("%s: %v", op, err)
	return fmt.Errorf("%s: %w", op, err)
}
