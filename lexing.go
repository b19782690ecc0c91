package bocage

import "sort"

// ReaderFunc is called once per earleme. It returns ok=false to stop the
// read loop and reports through endOfInput whether the input was consumed
// completely.
type ReaderFunc func(userdata interface{}) (ok bool, endOfInput bool)

// IsLexemeFunc classifies one expected terminal at the current input
// position: whether it matches, and the matched length. The classifier
// must leave the input cursor unchanged.
type IsLexemeFunc func(symdata interface{}) (match bool, length int)

// LexemeValueFunc resolves the token value index and the earleme advance
// length of a matched terminal.
type LexemeValueFunc func(symdata interface{}) (ok bool, value int, length int)

// RuleToStringFunc and SymbolToStringFunc render rules and symbols for
// trace output. Both are optional.
type RuleToStringFunc func(ruledata interface{}) string
type SymbolToStringFunc func(symdata interface{}) string

// RecognizerOptions configures the lexing driver. Reader, IsLexeme and
// LexemeValue must be overridden by the caller; use NewRecognizerOptions
// for the defaults (longest match on, shared token values on).
type RecognizerOptions struct {
	RemainingDataOK   bool
	LongestMatch      bool // longest-acceptable-token-match
	SharedTokenValues bool // longest tokens share one value and length

	Reader     ReaderFunc
	ReaderData interface{}

	IsLexeme    IsLexemeFunc
	LexemeValue LexemeValueFunc

	RuleToString   RuleToStringFunc
	SymbolToString SymbolToStringFunc
}

// NewRecognizerOptions returns the driver defaults.
func NewRecognizerOptions() *RecognizerOptions {
	return &RecognizerOptions{
		LongestMatch:      true,
		SharedTokenValues: true,
	}
}

// Recognize runs the lexing driver over the whole input: per earleme it
// calls the reader, classifies the expected terminals, selects the
// matches (all of them, or under longest-match only those of maximal
// length), pushes the selected alternatives and completes the earleme.
// On success it returns the recognizer, closed for further input but
// ready for evaluation.
//
// With longest-match enabled the expected terminals are classified in
// descending order of their declared token size, tie-broken by declared
// first character (unknown sorts last); a terminal whose declared size
// cannot beat the longest match found so far is skipped without
// classification.
func (g *Grammar) Recognize(opts *RecognizerOptions) (*Recognizer, error) {
	if opts == nil || opts.Reader == nil || opts.IsLexeme == nil || opts.LexemeValue == nil {
		return nil, ErrMissingCallback
	}
	r, err := g.NewRecognizer()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	endOfInput := false
	for {
		if ok, end := opts.Reader(opts.ReaderData); !ok {
			endOfInput = end
			break
		}
		r.traceProgress(opts)
		expected, err := r.ExpectedTerminals()
		if err != nil {
			return nil, err
		}
		tracer().Debugf("number of expected terminals: %d", len(expected))
		if opts.LongestMatch && len(expected) > 1 {
			sort.SliceStable(expected, func(i, j int) bool {
				a, b := expected[i].opts, expected[j].opts
				if a.Size != b.Size {
					return a.Size > b.Size
				}
				if a.FirstChar == 0 {
					return false
				}
				if b.FirstChar == 0 {
					return true
				}
				return a.FirstChar > b.FirstChar
			})
		}
		maxLen := 0
		lexemes := 0
		for _, t := range expected {
			if opts.LongestMatch && t.opts.Size > 0 && t.opts.Size < maxLen {
				// Declared size cannot beat the longest match so far.
				tracer().Debugf("skipped %v (declared size %d < longest match %d)",
					r.symbolName(opts, t), t.opts.Size, maxLen)
				t.length = 0
				t.isLexeme = false
				continue
			}
			tracer().Debugf("checking %v", r.symbolName(opts, t))
			match, length := opts.IsLexeme(t.opts.UserData)
			t.isLexeme = match
			if match {
				t.length = length
				lexemes++
				if length > maxLen {
					maxLen = length
				}
			} else {
				t.length = 0
			}
		}
		if maxLen > 0 {
			resolved := false
			var value, length int
			for _, t := range expected {
				if opts.LongestMatch && t.length != maxLen {
					continue
				}
				if !opts.LongestMatch && t.length <= 0 {
					continue
				}
				if !opts.SharedTokenValues || !resolved {
					var ok bool
					ok, value, length = opts.LexemeValue(t.opts.UserData)
					if !ok {
						tracer().Errorf("lexeme-value callback failure")
						return nil, ErrCallbackFailed
					}
					resolved = true
				}
				if err := r.Alternative(t, value, length); err != nil {
					return nil, err
				}
			}
		}
		if err := r.Complete(); err != nil {
			return nil, err
		}
	}
	if !endOfInput && !opts.RemainingDataOK {
		tracer().Errorf(ErrRemainingData.Error())
		return nil, ErrRemainingData
	}
	return r, nil
}

// traceProgress dumps the latest progress report at debug level.
func (r *Recognizer) traceProgress(opts *RecognizerOptions) {
	if opts.RuleToString == nil {
		return
	}
	items, err := r.Progress(-1, -1)
	if err != nil {
		return
	}
	for _, p := range items {
		tracer().Debugf("%v: %s", p, opts.RuleToString(p.Rule.UserData()))
	}
}

func (r *Recognizer) symbolName(opts *RecognizerOptions, sym *Symbol) string {
	if opts.SymbolToString == nil {
		return sym.String()
	}
	return opts.SymbolToString(sym.opts.UserData)
}
