package bocage

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// latmFixture builds the grammar  S ::= a | b  with both terminals
// expected at earleme 0 and a reader that offers exactly one earleme.
type latmFixture struct {
	classified []string // symbols the classifier was asked about
	valued     []string // symbols whose lexeme-value callback ran
	reads      int
}

func (f *latmFixture) reader(_ interface{}) (bool, bool) {
	f.reads++
	if f.reads > 1 {
		return false, true
	}
	return true, false
}

func makeLATMGrammar(t *testing.T, sizeA, sizeB int) (*Grammar, *latmFixture, *RecognizerOptions) {
	f := &latmFixture{}
	lengths := map[string]int{"a": 5, "b": 3}
	g, err := NewGrammar()
	if err != nil {
		t.Fatal(err)
	}
	s, _ := g.AddSymbol(SymbolOptions{Start: true})
	a, _ := g.AddSymbol(SymbolOptions{Terminal: true, Size: sizeA, UserData: "a"})
	b, _ := g.AddSymbol(SymbolOptions{Terminal: true, Size: sizeB, UserData: "b"})
	mustRule(t, g, RuleOptions{LHS: s, RHS: []*Symbol{a}})
	mustRule(t, g, RuleOptions{LHS: s, RHS: []*Symbol{b}})
	if err := g.Precompute(); err != nil {
		t.Fatal(err)
	}
	opts := NewRecognizerOptions()
	opts.Reader = f.reader
	opts.IsLexeme = func(symdata interface{}) (bool, int) {
		name := symdata.(string)
		f.classified = append(f.classified, name)
		return true, lengths[name]
	}
	opts.LexemeValue = func(symdata interface{}) (bool, int, int) {
		f.valued = append(f.valued, symdata.(string))
		return true, 1, 1
	}
	return g, f, opts
}

func TestLATMPicksLongestMatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.engine")
	defer teardown()
	//
	// Declared sizes unknown: both terminals classify (lengths 5 and 3),
	// only the length-5 alternative is pushed.
	g, f, opts := makeLATMGrammar(t, 0, 0)
	r, err := g.Recognize(opts)
	if err != nil {
		t.Fatal(err)
	}
	_ = r
	if len(f.classified) != 2 {
		t.Errorf("expected both terminals to be classified, got %v", f.classified)
	}
	if len(f.valued) != 1 || f.valued[0] != "a" {
		t.Errorf("expected only the length-5 terminal to be pushed, got %v", f.valued)
	}
}

func TestLATMSkipsDominatedSizes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.engine")
	defer teardown()
	//
	// Declared sizes 5 and 3: after the size-5 terminal matches with
	// length 5, the size-3 terminal cannot win and is never classified.
	g, f, opts := makeLATMGrammar(t, 5, 3)
	if _, err := g.Recognize(opts); err != nil {
		t.Fatal(err)
	}
	if len(f.classified) != 1 || f.classified[0] != "a" {
		t.Errorf("expected only the size-5 terminal to be classified, got %v", f.classified)
	}
	if len(f.valued) != 1 || f.valued[0] != "a" {
		t.Errorf("expected only the size-5 alternative to be pushed, got %v", f.valued)
	}
}

func TestLATMOffPushesEveryMatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.engine")
	defer teardown()
	//
	g, f, opts := makeLATMGrammar(t, 0, 0)
	opts.LongestMatch = false
	opts.SharedTokenValues = false
	if _, err := g.Recognize(opts); err != nil {
		t.Fatal(err)
	}
	if len(f.valued) != 2 {
		t.Errorf("expected both matches to be pushed with LATM off, got %v", f.valued)
	}
}

func TestDriverRequiresCallbacks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.engine")
	defer teardown()
	//
	g, _, opts := makeLATMGrammar(t, 0, 0)
	opts.IsLexeme = nil
	if _, err := g.Recognize(opts); !errors.Is(err, ErrMissingCallback) {
		t.Errorf("expected ErrMissingCallback, got %v", err)
	}
	if _, err := g.Recognize(nil); !errors.Is(err, ErrMissingCallback) {
		t.Errorf("expected ErrMissingCallback for nil options, got %v", err)
	}
}

func TestRemainingDataFailsTheDriver(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.engine")
	defer teardown()
	//
	g, _, opts := makeLATMGrammar(t, 0, 0)
	opts.Reader = func(_ interface{}) (bool, bool) {
		return false, false // stop with data remaining
	}
	if _, err := g.Recognize(opts); !errors.Is(err, ErrRemainingData) {
		t.Errorf("expected ErrRemainingData, got %v", err)
	}
	opts.RemainingDataOK = true
	if _, err := g.Recognize(opts); err != nil {
		t.Errorf("expected remaining data to be tolerated, got %v", err)
	}
}

// With an empty expected-terminal set the driver still completes the
// earleme and loops back to the reader.
func TestDriverSurvivesEmptyExpectedSet(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.engine")
	defer teardown()
	//
	g, err := NewGrammar()
	if err != nil {
		t.Fatal(err)
	}
	s, _ := g.AddSymbol(SymbolOptions{Start: true})
	a, _ := g.AddSymbol(SymbolOptions{Terminal: true, UserData: "a"})
	mustRule(t, g, RuleOptions{LHS: s, RHS: []*Symbol{a}})
	if err := g.Precompute(); err != nil {
		t.Fatal(err)
	}
	reads := 0
	classified := 0
	opts := NewRecognizerOptions()
	opts.RemainingDataOK = true
	opts.Reader = func(_ interface{}) (bool, bool) {
		reads++
		if reads > 3 {
			return false, false
		}
		return true, false
	}
	opts.IsLexeme = func(_ interface{}) (bool, int) {
		classified++
		return true, 1
	}
	opts.LexemeValue = func(_ interface{}) (bool, int, int) {
		return true, 1, 1
	}
	r, err := g.Recognize(opts)
	if err != nil {
		t.Fatal(err)
	}
	// reads 2 and 3 find no expected terminal: no classification, no push
	if classified != 1 {
		t.Errorf("expected a single classification, got %d", classified)
	}
	if r.LatestEarleySet() != 3 {
		t.Errorf("expected the driver to complete every earleme, got %d", r.LatestEarleySet())
	}
}
