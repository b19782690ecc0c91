package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/npillmayer/bocage"
	"github.com/npillmayer/bocage/scanner"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/

// bocalc is an interactive calculator over the deliberately ambiguous
// grammar
//
//	S ::= E
//	E ::= E op E
//	E ::= number
//
// Every line of input is recognized and then evaluated: bocalc prints one
// fully parenthesized reading per parse tree, together with its value.
// With more than one operator the grammar is ambiguous, so a single line
// usually yields several readings. This makes bocalc a handy sandbox for
// watching rank ordering and ambiguity handling at work.

const (
	ruleStart = iota
	ruleOp
	ruleNumber
)

// element layout of the semantic stack: an int64 value and an int64 index
// into the interpreter's string table
const elemSize = 16

type calc struct {
	grammar *bocage.Grammar
	src     *scanner.StringSource
	strs    []string
}

func (c *calc) enc(v int64, s string) []byte {
	elem := make([]byte, elemSize)
	binary.LittleEndian.PutUint64(elem[0:8], uint64(v))
	c.strs = append(c.strs, s)
	binary.LittleEndian.PutUint64(elem[8:16], uint64(len(c.strs)-1))
	return elem
}

func (c *calc) dec(elem []byte) (int64, string) {
	if len(elem) < elemSize {
		return 0, ""
	}
	v := int64(binary.LittleEndian.Uint64(elem[0:8]))
	i := int(binary.LittleEndian.Uint64(elem[8:16]))
	if i < 0 || i >= len(c.strs) {
		return v, ""
	}
	return v, c.strs[i]
}

func makeGrammar() (*bocage.Grammar, error) {
	g, err := bocage.NewGrammar()
	if err != nil {
		return nil, err
	}
	s, err := g.AddSymbol(bocage.SymbolOptions{Start: true})
	if err != nil {
		return nil, err
	}
	e, err := g.AddSymbol(bocage.SymbolOptions{})
	if err != nil {
		return nil, err
	}
	op, err := g.AddSymbol(bocage.SymbolOptions{
		Terminal: true,
		Size:     1,
		UserData: scanner.FuncMatcher(matchOp),
	})
	if err != nil {
		return nil, err
	}
	number, err := g.AddSymbol(bocage.SymbolOptions{
		Terminal: true,
		UserData: scanner.FuncMatcher(scanner.Digits),
	})
	if err != nil {
		return nil, err
	}
	rules := []bocage.RuleOptions{
		{LHS: s, RHS: []*bocage.Symbol{e}, UserData: ruleStart},
		{LHS: e, RHS: []*bocage.Symbol{e, op, e}, UserData: ruleOp},
		{LHS: e, RHS: []*bocage.Symbol{number}, UserData: ruleNumber},
	}
	for _, opts := range rules {
		if _, err := g.AddRule(opts); err != nil {
			return nil, err
		}
	}
	if err := g.Precompute(); err != nil {
		return nil, err
	}
	return g, nil
}

func matchOp(input string) (bool, int) {
	if len(input) == 0 {
		return false, 0
	}
	switch input[0] {
	case '+', '-', '*':
		return true, 1
	}
	return false, 0
}

// evaluate recognizes one line and prints every reading.
func (c *calc) evaluate(line string) {
	line = strings.ReplaceAll(line, " ", "")
	if line == "" {
		return
	}
	c.src = scanner.NewStringSource(line)
	c.strs = c.strs[:0]
	r, err := c.grammar.Recognize(c.src.Options())
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	vopts := bocage.NewValueOptions()
	vopts.RuleFn = c.onRule
	vopts.SymbolFn = c.onToken
	vopts.ResultFn = c.onResult
	if err := r.Value(vopts, bocage.StackOptions{ElementSize: elemSize}); err != nil {
		pterm.Error.Println(err.Error())
	}
}

func (c *calc) onRule(_ interface{}, _ *bocage.Recognizer, rule *bocage.Rule, operands [][]byte) ([]byte, bool) {
	switch rule.UserData() {
	case ruleStart:
		v, s := c.dec(operands[0])
		return c.enc(v, s), true
	case ruleNumber:
		v, _ := c.dec(operands[0])
		return c.enc(v, strconv.FormatInt(v, 10)), true
	case ruleOp:
		left, ls := c.dec(operands[0])
		_, opstr := c.dec(operands[1])
		right, rs := c.dec(operands[2])
		var v int64
		switch opstr {
		case "+":
			v = left + right
		case "-":
			v = left - right
		case "*":
			v = left * right
		default:
			return nil, false
		}
		return c.enc(v, fmt.Sprintf("(%s%s%s)", ls, opstr, rs)), true
	}
	return nil, false
}

func (c *calc) onToken(_ interface{}, _ *bocage.Recognizer, _ *bocage.Symbol, valueIx int) ([]byte, bool) {
	lexeme := c.src.Value(valueIx)
	n, _ := strconv.ParseInt(lexeme, 10, 64)
	return c.enc(n, lexeme), true
}

func (c *calc) onResult(_ interface{}, _ *bocage.Recognizer, top []byte) bocage.ValueResult {
	v, s := c.dec(top)
	pterm.Info.Printf("%s == %d\n", s, v)
	return bocage.ValueContinue
}

func main() {
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	flag.Parse()
	tracing.Select("bocage.engine").SetTraceLevel(traceLevel(*tlevel))
	tracing.Select("bocage.kernel").SetTraceLevel(traceLevel(*tlevel))
	tracing.Select("bocage.scanner").SetTraceLevel(traceLevel(*tlevel))
	pterm.Info.Println("Welcome to bocalc")

	g, err := makeGrammar()
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
	c := &calc{grammar: g}
	if input := strings.Join(flag.Args(), " "); strings.TrimSpace(input) != "" {
		c.evaluate(input)
	}
	repl, err := readline.New("bocalc> ")
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(3)
	}
	defer repl.Close()
	pterm.Info.Println("Quit with <ctrl>D")
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF on <ctrl>D
			break
		}
		c.evaluate(line)
	}
}

func traceLevel(l string) tracing.TraceLevel {
	return tracing.TraceLevelFromString(l)
}
