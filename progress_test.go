package bocage

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestProgressSortedByRuleAndPosition(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.engine")
	defer teardown()
	//
	g, op, number := makeExprGrammar(t)
	r := readExpr(t, g, op, number)
	defer r.Close()
	items, err := r.Progress(0, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) == 0 {
		t.Fatal("expected progress items")
	}
	for i := 1; i < len(items); i++ {
		a, b := items[i-1], items[i]
		if a.Rule.ID() > b.Rule.ID() {
			t.Fatalf("items not sorted by rule id: %v before %v", a, b)
		}
		if a.Rule.ID() == b.Rule.ID() && a.Position > b.Position {
			t.Fatalf("items not sorted by position: %v before %v", a, b)
		}
	}
}

func TestProgressNegativeRangeResolvesToLatest(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.engine")
	defer teardown()
	//
	g, op, number := makeExprGrammar(t)
	r := readExpr(t, g, op, number)
	defer r.Close()
	latest := r.LatestEarleySet()
	relative, err := r.Progress(-1, -1)
	if err != nil {
		t.Fatal(err)
	}
	absolute, err := r.Progress(latest, latest)
	if err != nil {
		t.Fatal(err)
	}
	if len(relative) != len(absolute) {
		t.Fatalf("(-1,-1) and (latest,latest) differ: %d vs %d items", len(relative), len(absolute))
	}
	for i := range relative {
		if *relative[i] != *absolute[i] {
			t.Errorf("item %d differs: %v vs %v", i, relative[i], absolute[i])
		}
	}
	for _, p := range relative {
		if p.EarleySet != latest {
			t.Errorf("expected all items at set %d, got %v", latest, p)
		}
	}
}

func TestProgressRangeValidation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bocage.engine")
	defer teardown()
	//
	g, op, number := makeExprGrammar(t)
	r := readExpr(t, g, op, number)
	defer r.Close()
	if _, err := r.Progress(3, 2); !errors.Is(err, ErrProgressRange) {
		t.Errorf("expected ErrProgressRange for start > end, got %v", err)
	}
	if _, err := r.Progress(0, 100); !errors.Is(err, ErrProgressRange) {
		t.Errorf("expected ErrProgressRange for end beyond latest, got %v", err)
	}
	if _, err := r.Progress(-100, 0); !errors.Is(err, ErrProgressRange) {
		t.Errorf("expected ErrProgressRange for start below range, got %v", err)
	}
}
