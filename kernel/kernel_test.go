package kernel

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// We use the deliberately ambiguous expression grammar
//
//	S ::= E
//	E ::= E op E
//	E ::= number
//
// for most tests. Terminals are op and number.
func makeExprGrammar(t *testing.T) (*Grammar, [4]SymID, [3]RuleID) {
	g := NewGrammar()
	if err := g.ForceValued(); err != nil {
		t.Fatal(err)
	}
	var syms [4]SymID
	for i := range syms {
		id, err := g.SymbolNew()
		if err != nil {
			t.Fatal(err)
		}
		syms[i] = id
	}
	S, E, op, number := syms[0], syms[1], syms[2], syms[3]
	if err := g.StartSymbolSet(S); err != nil {
		t.Fatal(err)
	}
	if err := g.SymbolIsTerminalSet(op, true); err != nil {
		t.Fatal(err)
	}
	if err := g.SymbolIsTerminalSet(number, true); err != nil {
		t.Fatal(err)
	}
	var rules [3]RuleID
	var err error
	if rules[0], err = g.RuleNew(S, []SymID{E}); err != nil {
		t.Fatal(err)
	}
	if rules[1], err = g.RuleNew(E, []SymID{E, op, E}); err != nil {
		t.Fatal(err)
	}
	if rules[2], err = g.RuleNew(E, []SymID{number}); err != nil {
		t.Fatal(err)
	}
	if err := g.Precompute(); err != nil {
		t.Fatal(err)
	}
	return g, syms, rules
}

// readExpr feeds "2-0*3+1" as alternating number/op tokens.
func readExpr(t *testing.T, g *Grammar, syms [4]SymID) *Recognizer {
	r, err := NewRecognizer(g)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.StartInput(); err != nil {
		t.Fatal(err)
	}
	_, _, op, number := syms[0], syms[1], syms[2], syms[3]
	input := []struct {
		sym   SymID
		value int
	}{
		{number, 2}, {op, 5}, {number, 4}, {op, 7}, {number, 3}, {op, 6}, {number, 1},
	}
	for _, tok := range input {
		if err := r.Alternative(tok.sym, tok.value, 1); err != nil {
			t.Fatal(err)
		}
		if err := r.EarlemeComplete(); err != nil {
			t.Fatal(err)
		}
	}
	return r
}

func TestGrammarPhases(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.kernel")
	defer teardown()
	//
	g, _, _ := makeExprGrammar(t)
	if _, err := g.SymbolNew(); CodeOf(err) != ErrPrecomputed {
		t.Errorf("expected ErrPrecomputed after precompute, got %v", err)
	}
	if _, err := g.RuleNew(0, nil); CodeOf(err) != ErrPrecomputed {
		t.Errorf("expected ErrPrecomputed after precompute, got %v", err)
	}
}

func TestPrecomputeNeedsStartSymbol(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.kernel")
	defer teardown()
	//
	g := NewGrammar()
	if _, err := g.SymbolNew(); err != nil {
		t.Fatal(err)
	}
	if err := g.Precompute(); CodeOf(err) != ErrNoStartSymbol {
		t.Errorf("expected ErrNoStartSymbol, got %v", err)
	}
}

func TestExpectedTerminals(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.kernel")
	defer teardown()
	//
	g, syms, _ := makeExprGrammar(t)
	r, err := NewRecognizer(g)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.StartInput(); err != nil {
		t.Fatal(err)
	}
	buf := make([]SymID, int(g.HighestSymbolID())+1)
	n, err := r.TerminalsExpected(buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || buf[0] != syms[3] {
		t.Errorf("expected only 'number' at earleme 0, got %v", buf[:n])
	}
	if err := r.Alternative(syms[3], 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := r.EarlemeComplete(); err != nil {
		t.Fatal(err)
	}
	n, err = r.TerminalsExpected(buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || buf[0] != syms[2] {
		t.Errorf("expected only 'op' at earleme 1, got %v", buf[:n])
	}
}

func TestAlternativeValidation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.kernel")
	defer teardown()
	//
	g, syms, _ := makeExprGrammar(t)
	r, _ := NewRecognizer(g)
	if err := r.StartInput(); err != nil {
		t.Fatal(err)
	}
	if err := r.Alternative(syms[1], 1, 1); CodeOf(err) != ErrNotATerminal {
		t.Errorf("expected ErrNotATerminal for E, got %v", err)
	}
	if err := r.Alternative(syms[3], 1, 0); CodeOf(err) != ErrTokenLengthInvalid {
		t.Errorf("expected ErrTokenLengthInvalid for length 0, got %v", err)
	}
	if err := r.Alternative(syms[2], 1, 1); CodeOf(err) != ErrUnexpectedToken {
		t.Errorf("expected ErrUnexpectedToken for op at earleme 0, got %v", err)
	}
	if err := r.Alternative(syms[3], 1, 1); err != nil {
		t.Error(err)
	}
	if err := r.Alternative(syms[3], 1, 1); CodeOf(err) != ErrDuplicateToken {
		t.Errorf("expected ErrDuplicateToken, got %v", err)
	}
}

func TestRecognizeExpression(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.kernel")
	defer teardown()
	//
	g, syms, _ := makeExprGrammar(t)
	r := readExpr(t, g, syms)
	if r.LatestEarleySet() != 7 {
		t.Errorf("expected 7 earlemes, got %d", r.LatestEarleySet())
	}
	if _, err := NewBocage(r, -1); err != nil {
		t.Errorf("expected a parse, got %v", err)
	}
}

func TestTreeCountOfAmbiguousParse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.kernel")
	defer teardown()
	//
	g, syms, _ := makeExprGrammar(t)
	r := readExpr(t, g, syms)
	b, err := NewBocage(r, -1)
	if err != nil {
		t.Fatal(err)
	}
	o, err := NewOrder(b)
	if err != nil {
		t.Fatal(err)
	}
	if o.AmbiguityMetric() <= 1 {
		t.Errorf("expected an ambiguous parse")
	}
	tree, err := NewTree(o)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for tree.Next() >= 0 {
		count++
	}
	// 3 binary operators: Catalan(3) = 5 parse trees
	if count != 5 {
		t.Errorf("expected 5 parse trees, got %d", count)
	}
}

func TestValueStepsPostOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.kernel")
	defer teardown()
	//
	g := NewGrammar()
	S, _ := g.SymbolNew()
	E, _ := g.SymbolNew()
	number, _ := g.SymbolNew()
	if err := g.StartSymbolSet(S); err != nil {
		t.Fatal(err)
	}
	if err := g.SymbolIsTerminalSet(number, true); err != nil {
		t.Fatal(err)
	}
	rS, _ := g.RuleNew(S, []SymID{E})
	rE, _ := g.RuleNew(E, []SymID{number})
	if err := g.Precompute(); err != nil {
		t.Fatal(err)
	}
	r, _ := NewRecognizer(g)
	if err := r.StartInput(); err != nil {
		t.Fatal(err)
	}
	if err := r.Alternative(number, 7, 1); err != nil {
		t.Fatal(err)
	}
	if err := r.EarlemeComplete(); err != nil {
		t.Fatal(err)
	}
	b, err := NewBocage(r, -1)
	if err != nil {
		t.Fatal(err)
	}
	o, _ := NewOrder(b)
	tree, _ := NewTree(o)
	if tree.Next() < 0 {
		t.Fatal("expected one parse tree")
	}
	v, err := NewValue(tree)
	if err != nil {
		t.Fatal(err)
	}
	if err := v.ValuedForce(); err != nil {
		t.Fatal(err)
	}
	if _, ok := v.Step().(InitialStep); !ok {
		t.Errorf("expected initial step first")
	}
	tok, ok := v.Step().(TokenStep)
	if !ok || tok.Symbol != number || tok.Value != 7 || tok.Result != 0 {
		t.Errorf("unexpected token step %+v", tok)
	}
	stepE, ok := v.Step().(RuleStep)
	if !ok || stepE.Rule != rE || stepE.ArgFirst != 0 || stepE.ArgLast != 0 || stepE.Result != 0 {
		t.Errorf("unexpected rule step %+v", stepE)
	}
	stepS, ok := v.Step().(RuleStep)
	if !ok || stepS.Rule != rS || stepS.Result != 0 {
		t.Errorf("unexpected rule step %+v", stepS)
	}
	if _, ok := v.Step().(InactiveStep); !ok {
		t.Errorf("expected inactive step at end")
	}
	if _, ok := v.Step().(InactiveStep); !ok {
		t.Errorf("expected inactive step to repeat")
	}
	if tree.Next() >= 0 {
		t.Errorf("expected a single parse tree")
	}
}

func TestExhaustionIsAnEventNotAnError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.kernel")
	defer teardown()
	//
	g := NewGrammar()
	S, _ := g.SymbolNew()
	a, _ := g.SymbolNew()
	if err := g.StartSymbolSet(S); err != nil {
		t.Fatal(err)
	}
	if err := g.SymbolIsTerminalSet(a, true); err != nil {
		t.Fatal(err)
	}
	if _, err := g.RuleNew(S, []SymID{a}); err != nil {
		t.Fatal(err)
	}
	if err := g.Precompute(); err != nil {
		t.Fatal(err)
	}
	r, _ := NewRecognizer(g)
	if err := r.StartInput(); err != nil {
		t.Fatal(err)
	}
	if err := r.Alternative(a, 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := r.EarlemeComplete(); err != nil {
		t.Fatal(err)
	}
	found := false
	for i := 0; i < g.EventCount(); i++ {
		ev, _ := g.Event(i)
		if ev.Type == EventExhausted {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an exhaustion event after the final token")
	}
	// completing an earleme with nothing to scan still succeeds
	if err := r.EarlemeComplete(); err != nil {
		t.Errorf("expected complete on exhausted recognizer to succeed, got %v", err)
	}
}

func TestProgressReport(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.kernel")
	defer teardown()
	//
	g, syms, rules := makeExprGrammar(t)
	r := readExpr(t, g, syms)
	n, err := r.ProgressReportStart(7)
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Fatal("expected progress items at the final set")
	}
	foundAccept := false
	for i := 0; i < n; i++ {
		rule, pos, origin, err := r.ProgressItem()
		if err != nil {
			t.Fatal(err)
		}
		if rule == rules[0] && pos == -1 && origin == 0 {
			foundAccept = true
		}
	}
	if !foundAccept {
		t.Errorf("expected completed start rule spanning the whole input")
	}
	if err := r.ProgressReportFinish(); err != nil {
		t.Error(err)
	}
	if _, _, _, err := r.ProgressItem(); CodeOf(err) != ErrNoProgressReport {
		t.Errorf("expected ErrNoProgressReport after finish, got %v", err)
	}
}

func TestSequenceRecognition(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.kernel")
	defer teardown()
	//
	g := NewGrammar()
	L, _ := g.SymbolNew()
	item, _ := g.SymbolNew()
	comma, _ := g.SymbolNew()
	if err := g.StartSymbolSet(L); err != nil {
		t.Fatal(err)
	}
	if err := g.SymbolIsTerminalSet(item, true); err != nil {
		t.Fatal(err)
	}
	if err := g.SymbolIsTerminalSet(comma, true); err != nil {
		t.Fatal(err)
	}
	seq, err := g.SequenceNew(L, item, comma, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Precompute(); err != nil {
		t.Fatal(err)
	}
	r, _ := NewRecognizer(g)
	if err := r.StartInput(); err != nil {
		t.Fatal(err)
	}
	for i, sym := range []SymID{item, comma, item} {
		if err := r.Alternative(sym, i+1, 1); err != nil {
			t.Fatal(err)
		}
		if err := r.EarlemeComplete(); err != nil {
			t.Fatal(err)
		}
	}
	b, err := NewBocage(r, -1)
	if err != nil {
		t.Fatal(err)
	}
	o, _ := NewOrder(b)
	tree, _ := NewTree(o)
	if tree.Next() < 0 {
		t.Fatal("expected one parse tree")
	}
	v, err := NewValue(tree)
	if err != nil {
		t.Fatal(err)
	}
	var tokens []TokenStep
	var rulesteps []RuleStep
	for {
		step := v.Step()
		if _, done := step.(InactiveStep); done {
			break
		}
		switch s := step.(type) {
		case TokenStep:
			tokens = append(tokens, s)
		case RuleStep:
			rulesteps = append(rulesteps, s)
		}
	}
	// the separator is dropped: two item tokens, one sequence reduction
	if len(tokens) != 2 {
		t.Fatalf("expected 2 item tokens, got %d", len(tokens))
	}
	if tokens[0].Value != 1 || tokens[1].Value != 3 {
		t.Errorf("unexpected item values %d, %d", tokens[0].Value, tokens[1].Value)
	}
	if len(rulesteps) != 1 || rulesteps[0].Rule != seq {
		t.Fatalf("expected one sequence reduction, got %+v", rulesteps)
	}
	if rulesteps[0].ArgFirst != 0 || rulesteps[0].ArgLast != 1 {
		t.Errorf("expected operand range 0…1, got %d…%d", rulesteps[0].ArgFirst, rulesteps[0].ArgLast)
	}
}

func TestNullParse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.kernel")
	defer teardown()
	//
	g := NewGrammar()
	L, _ := g.SymbolNew()
	item, _ := g.SymbolNew()
	if err := g.StartSymbolSet(L); err != nil {
		t.Fatal(err)
	}
	if err := g.SymbolIsTerminalSet(item, true); err != nil {
		t.Fatal(err)
	}
	if _, err := g.SequenceNew(L, item, NoSymbol, 0, false); err != nil {
		t.Fatal(err)
	}
	if err := g.Precompute(); err != nil {
		t.Fatal(err)
	}
	r, _ := NewRecognizer(g)
	if err := r.StartInput(); err != nil {
		t.Fatal(err)
	}
	b, err := NewBocage(r, -1)
	if err != nil {
		t.Fatal(err)
	}
	if !b.IsNull() {
		t.Fatal("expected a null parse")
	}
	o, _ := NewOrder(b)
	tree, _ := NewTree(o)
	if tree.Next() != 0 {
		t.Fatal("expected one (null) parse tree")
	}
	v, err := NewValue(tree)
	if err != nil {
		t.Fatal(err)
	}
	v.Step() // initial
	nulling, ok := v.Step().(NullingStep)
	if !ok || nulling.Symbol != L || nulling.Result != 0 {
		t.Errorf("expected nulling step for start symbol, got %+v", nulling)
	}
	if tree.Next() >= 0 {
		t.Errorf("expected a single null tree")
	}
}

func TestCountedNullableIsFatal(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.kernel")
	defer teardown()
	//
	g := NewGrammar()
	L, _ := g.SymbolNew()
	item, _ := g.SymbolNew()
	if err := g.StartSymbolSet(L); err != nil {
		t.Fatal(err)
	}
	if _, err := g.RuleNew(item, nil); err != nil { // item ::= ε
		t.Fatal(err)
	}
	if _, err := g.SequenceNew(L, item, NoSymbol, 1, false); err != nil {
		t.Fatal(err)
	}
	err := g.Precompute()
	if CodeOf(err) != ErrCountedNullable {
		t.Errorf("expected ErrCountedNullable, got %v", err)
	}
	found := false
	for i := 0; i < g.EventCount(); i++ {
		ev, _ := g.Event(i)
		if ev.Type == EventCountedNullable && ev.Value == int(item) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a counted-nullable event for the item symbol")
	}
}

func TestNullingTerminalIsFatal(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.kernel")
	defer teardown()
	//
	g := NewGrammar()
	S, _ := g.SymbolNew()
	a, _ := g.SymbolNew()
	if err := g.StartSymbolSet(S); err != nil {
		t.Fatal(err)
	}
	if err := g.SymbolIsTerminalSet(a, true); err != nil {
		t.Fatal(err)
	}
	if _, err := g.RuleNew(S, []SymID{a}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.RuleNew(a, nil); err != nil { // a ::= ε, but a is a terminal
		t.Fatal(err)
	}
	if err := g.Precompute(); CodeOf(err) != ErrNullingTerminal {
		t.Errorf("expected ErrNullingTerminal, got %v", err)
	}
}

func TestEventActivationNeedsSubscription(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.kernel")
	defer teardown()
	//
	g, syms, _ := makeExprGrammar(t)
	r, _ := NewRecognizer(g)
	if err := r.StartInput(); err != nil {
		t.Fatal(err)
	}
	if err := r.CompletionSymbolActivate(syms[1], true); CodeOf(err) != ErrEventNotSubscribed {
		t.Errorf("expected ErrEventNotSubscribed, got %v", err)
	}
}
