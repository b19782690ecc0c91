package scanner

import (
	"strings"

	"github.com/npillmayer/bocage"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// lexmachine adapter

// LMSource feeds tokens scanned by a lexmachine DFA into the bocage
// lexing driver. Symbols attach their lexmachine token id as user data;
// classification compares the id against the current lookahead token.
type LMSource struct {
	Lexer *lexmachine.Lexer

	scanner  *lexmachine.Scanner
	values   []string
	cur      *lexmachine.Token
	consumed bool
	started  bool
	eof      bool
}

// NewLMSource creates a lexmachine-backed source. It receives a list of
// literals ('[', ';', …), a list of keywords ("if", "for", …) and a map
// for translating token strings to their ids. Additional patterns may be
// added through the init function.
//
// NewLMSource will return an error if compiling the DFA failed.
func NewLMSource(init func(*lexmachine.Lexer), literals []string, keywords []string, tokenIds map[string]int) (*LMSource, error) {
	lm := &LMSource{values: []string{""}}
	lm.Lexer = lexmachine.NewLexer()
	if init != nil {
		init(lm.Lexer)
	}
	for _, lit := range literals {
		r := "\\" + strings.Join(strings.Split(lit, ""), "\\")
		lm.Lexer.Add([]byte(r), MakeToken(lit, tokenIds[lit]))
	}
	for _, name := range keywords {
		lm.Lexer.Add([]byte(strings.ToLower(name)), MakeToken(name, tokenIds[name]))
	}
	if err := lm.Lexer.Compile(); err != nil {
		tracer().Errorf("error compiling DFA: %v", err)
		return nil, err
	}
	return lm, nil
}

// Start initializes the source for an input string.
func (lm *LMSource) Start(input string) error {
	s, err := lm.Lexer.Scanner([]byte(input))
	if err != nil {
		return err
	}
	lm.scanner = s
	lm.cur = nil
	lm.consumed = false
	lm.started = false
	lm.eof = false
	lm.scan()
	return nil
}

func (lm *LMSource) scan() {
	tok, err, eof := lm.scanner.Next()
	for err != nil {
		tracer().Errorf("scanner error: %v", err)
		if ui, is := err.(*machines.UnconsumedInput); is {
			lm.scanner.TC = ui.FailTC
		}
		tok, err, eof = lm.scanner.Next()
	}
	if eof {
		lm.eof = true
		lm.cur = nil
		return
	}
	lm.cur = tok.(*lexmachine.Token)
	tracer().Debugf("lookahead token %d %q", lm.cur.Type, string(lm.cur.Lexeme))
}

// Read is the driver's reader callback: it moves to the next token once
// the previous one has been consumed by a winning alternative. An
// earleme that consumed nothing stops the loop, leaving the
// remaining-data decision to the driver.
func (lm *LMSource) Read(_ interface{}) (bool, bool) {
	if lm.started {
		if !lm.consumed {
			tracer().Debugf("lexmachine source stalled")
			return false, lm.eof
		}
		lm.consumed = false
		lm.scan()
	}
	lm.started = true
	if lm.eof {
		return false, true
	}
	return true, false
}

// IsLexeme is the driver's classifier callback. symdata must be the
// symbol's lexmachine token id.
func (lm *LMSource) IsLexeme(symdata interface{}) (bool, int) {
	id, ok := symdata.(int)
	if !ok || lm.cur == nil || lm.cur.Type != id {
		return false, 0
	}
	return true, len(lm.cur.Lexeme)
}

// LexemeValue is the driver's value callback: it interns the lookahead
// lexeme and marks it consumed.
func (lm *LMSource) LexemeValue(symdata interface{}) (bool, int, int) {
	id, ok := symdata.(int)
	if !ok || lm.cur == nil || lm.cur.Type != id {
		return false, 0, 0
	}
	lm.consumed = true
	lm.values = append(lm.values, string(lm.cur.Lexeme))
	return true, len(lm.values) - 1, 1
}

// Value resolves a value index to its lexeme, "" for index 0.
func (lm *LMSource) Value(i int) string {
	if i < 0 || i >= len(lm.values) {
		return ""
	}
	return lm.values[i]
}

// Options returns driver options wired to this source.
func (lm *LMSource) Options() *bocage.RecognizerOptions {
	opts := bocage.NewRecognizerOptions()
	opts.Reader = lm.Read
	opts.IsLexeme = lm.IsLexeme
	opts.LexemeValue = lm.LexemeValue
	return opts
}

// Skip is a pre-defined action which ignores the scanned match.
func Skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// MakeToken is a pre-defined action which wraps a scanned match into a token.
func MakeToken(name string, id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}
