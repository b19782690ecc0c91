package bocage

import (
	"github.com/npillmayer/bocage/kernel"
)

// Recognizer feeds tokens earleme by earleme into the kernel and reports
// expected terminals and progress. Recognizers are created from a
// precomputed grammar and hold a preallocated scratch buffer for
// expected-terminal queries.
type Recognizer struct {
	g          *Grammar
	kr         *kernel.Recognizer
	scratchIDs []kernel.SymID
	scratch    []*Symbol
	closed     bool
}

// NewRecognizer creates a recognizer and starts input. Creation already
// synchronizes events, so prediction events of Earley set 0 reach the
// event handler before the first token is read.
func (g *Grammar) NewRecognizer() (*Recognizer, error) {
	if !g.kg.Precomputed() {
		return nil, ErrNotPrecomputed
	}
	kr, err := kernel.NewRecognizer(g.kg)
	if err != nil {
		return nil, g.fail("new recognizer", err)
	}
	n := int(g.kg.HighestSymbolID()) + 1
	r := &Recognizer{
		g:          g,
		kr:         kr,
		scratchIDs: make([]kernel.SymID, n),
		scratch:    make([]*Symbol, n),
	}
	if err := kr.StartInput(); err != nil {
		return nil, g.fail("new recognizer", err)
	}
	if err := g.syncEvents(); err != nil {
		return nil, err
	}
	return r, nil
}

// Close ends recognition. Afterwards Alternative, Complete, Read,
// ExpectedTerminals, IsExpected, ActivateEvents and Progress fail with
// ErrRecognizerClosed; Value and LatestEarleySet keep working.
func (r *Recognizer) Close() {
	r.closed = true
}

// Grammar returns the grammar this recognizer reads for.
func (r *Recognizer) Grammar() *Grammar {
	return r.g
}

// Alternative offers a token at the current earleme. length is measured
// in earleme steps and must be at least 1.
func (r *Recognizer) Alternative(sym *Symbol, value int, length int) error {
	if r.closed {
		return ErrRecognizerClosed
	}
	if sym == nil {
		return ErrMissingLHS
	}
	if err := r.kr.Alternative(sym.id, value, length); err != nil {
		return r.g.fail("alternative", err)
	}
	return nil
}

// Complete advances the recognizer by one earleme and synchronizes
// events. Kernel exhaustion surfaces as an informational event, not as
// an error.
func (r *Recognizer) Complete() error {
	if r.closed {
		return ErrRecognizerClosed
	}
	if err := r.kr.EarlemeComplete(); err != nil {
		return r.g.fail("complete", err)
	}
	return r.g.syncEvents()
}

// Read is shorthand for Alternative followed by Complete.
func (r *Recognizer) Read(sym *Symbol, value int, length int) error {
	if err := r.Alternative(sym, value, length); err != nil {
		return err
	}
	return r.Complete()
}

// ExpectedTerminals returns the terminals the recognizer currently
// expects. The returned slice aliases a preallocated scratch buffer and
// is valid until the next recognizer mutation.
func (r *Recognizer) ExpectedTerminals() ([]*Symbol, error) {
	if r.closed {
		return nil, ErrRecognizerClosed
	}
	n, err := r.kr.TerminalsExpected(r.scratchIDs)
	if err != nil {
		return nil, r.g.fail("expected terminals", err)
	}
	for i := 0; i < n; i++ {
		r.scratch[i] = r.g.symbols.Get(int(r.scratchIDs[i]))
	}
	return r.scratch[:n], nil
}

// IsExpected reports whether sym can be scanned at the current earleme.
func (r *Recognizer) IsExpected(sym *Symbol) (bool, error) {
	if r.closed {
		return false, ErrRecognizerClosed
	}
	if sym == nil {
		return false, ErrMissingLHS
	}
	ok, err := r.kr.TerminalIsExpected(sym.id)
	if err != nil {
		return false, r.g.fail("is expected", err)
	}
	return ok, nil
}

// ActivateEvents enables or disables a subset of the symbol's subscribed
// event kinds for this recognizer. Kinds the symbol never subscribed to
// are rejected by the kernel.
func (r *Recognizer) ActivateEvents(sym *Symbol, kinds EventKind, on bool) error {
	if r.closed {
		return ErrRecognizerClosed
	}
	if sym == nil {
		return ErrMissingLHS
	}
	if kinds&EventCompleted != 0 {
		if err := r.kr.CompletionSymbolActivate(sym.id, on); err != nil {
			return r.g.fail("activate events", err)
		}
	}
	if kinds&EventNulled != 0 {
		if err := r.kr.NulledSymbolActivate(sym.id, on); err != nil {
			return r.g.fail("activate events", err)
		}
	}
	if kinds&EventPredicted != 0 {
		if err := r.kr.PredictionSymbolActivate(sym.id, on); err != nil {
			return r.g.fail("activate events", err)
		}
	}
	return nil
}

// LatestEarleySet returns the id of the latest Earley set.
func (r *Recognizer) LatestEarleySet() int {
	return r.kr.LatestEarleySet()
}
