/*
Package scanner provides token sources for the bocage lexing driver.

Two sources are provided: StringSource, a cursor over a string with
pluggable per-symbol matchers, and LMSource, an adapter for lexmachine
(in file lexmach.go). Both wire themselves into the driver's
reader / is-lexeme / lexeme-value callbacks.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package scanner

import (
	"strings"

	"github.com/npillmayer/bocage"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'bocage.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("bocage.scanner")
}

// Matcher classifies a terminal at the start of the remaining input.
// It returns whether the terminal matches there and the matched length in
// bytes. Matchers are attached to symbols as their user data.
type Matcher interface {
	Match(input string) (ok bool, length int)
}

// LiteralMatcher matches a fixed string.
type LiteralMatcher string

// Match is part of the Matcher interface.
func (m LiteralMatcher) Match(input string) (bool, int) {
	if strings.HasPrefix(input, string(m)) {
		return true, len(m)
	}
	return false, 0
}

// FuncMatcher adapts a plain function to the Matcher interface.
type FuncMatcher func(input string) (bool, int)

// Match is part of the Matcher interface.
func (m FuncMatcher) Match(input string) (bool, int) {
	return m(input)
}

// Digits matches a non-empty run of decimal digits.
func Digits(input string) (bool, int) {
	n := 0
	for n < len(input) && input[n] >= '0' && input[n] <= '9' {
		n++
	}
	return n > 0, n
}

// StringSource is a cursor over a string input. The cursor advances by
// the length of the winning lexeme whenever the driver loops back to the
// reader; classification never moves it.
type StringSource struct {
	Input   string
	Pos     int
	values  []string
	pending int
	started bool
}

// NewStringSource creates a source over the given input. Value index 0 is
// reserved for "no value".
func NewStringSource(input string) *StringSource {
	return &StringSource{
		Input:  input,
		values: []string{""},
	}
}

// Rest returns the input not yet consumed.
func (s *StringSource) Rest() string {
	return s.Input[s.Pos:]
}

// Read is the driver's reader callback: it commits the pending advance
// and reports whether input remains. An earleme that consumed nothing
// stops the loop, leaving the remaining-data decision to the driver.
func (s *StringSource) Read(_ interface{}) (bool, bool) {
	if s.started && s.pending == 0 {
		tracer().Debugf("string source stalled at position %d", s.Pos)
		return false, s.Pos >= len(s.Input)
	}
	s.started = true
	s.Pos += s.pending
	s.pending = 0
	if s.Pos >= len(s.Input) {
		tracer().Debugf("string source reached end of input")
		return false, true
	}
	return true, false
}

// IsLexeme is the driver's classifier callback. symdata must be the
// symbol's Matcher; anything else never matches.
func (s *StringSource) IsLexeme(symdata interface{}) (bool, int) {
	m, ok := symdata.(Matcher)
	if !ok {
		return false, 0
	}
	return m.Match(s.Rest())
}

// LexemeValue is the driver's value callback: it interns the matched
// lexeme, schedules the cursor advance and reports an earleme length of 1.
func (s *StringSource) LexemeValue(symdata interface{}) (bool, int, int) {
	m, ok := symdata.(Matcher)
	if !ok {
		return false, 0, 0
	}
	match, n := m.Match(s.Rest())
	if !match {
		return false, 0, 0
	}
	s.pending = n
	return true, s.Intern(s.Rest()[:n]), 1
}

// Intern stores a lexeme and returns its value index.
func (s *StringSource) Intern(lexeme string) int {
	s.values = append(s.values, lexeme)
	return len(s.values) - 1
}

// Value resolves a value index to its lexeme, "" for index 0.
func (s *StringSource) Value(i int) string {
	if i < 0 || i >= len(s.values) {
		return ""
	}
	return s.values[i]
}

// Options returns driver options wired to this source.
func (s *StringSource) Options() *bocage.RecognizerOptions {
	opts := bocage.NewRecognizerOptions()
	opts.Reader = s.Read
	opts.IsLexeme = s.IsLexeme
	opts.LexemeValue = s.LexemeValue
	return opts
}
