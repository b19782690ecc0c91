/*
Package kernel implements the Earley core behind the bocage engine.

The kernel knows nothing about callbacks, lexing or semantic values. It
offers the low-level vocabulary the engine is built on: a grammar with
dense symbol and rule ids, a precomputation step with grammar analysis,
an earleme-driven Earley recognizer, and the evaluation chain
bocage → order → tree → value over the recognized input.

Recognition follows the classic description of Earley's algorithm, with
the nullable-symbol refinement from
"Practical Earley Parsing" by John Aycock and R. Nigel Horspool, 2002
(http://citeseerx.ist.psu.edu/viewdoc/download?doi=10.1.1.12.4254&rep=rep1&type=pdf):
when predicting a nullable symbol, the predicting item is advanced over it
immediately, which makes zero-width completions safe to process in a
single pass over each Earley set.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package kernel

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'bocage.kernel'.
func tracer() tracing.Trace {
	return tracing.Select("bocage.kernel")
}

// SymID is a dense non-negative symbol id, assigned by the kernel.
type SymID int

// RuleID is a dense non-negative rule id, assigned by the kernel.
type RuleID int

// NoSymbol denotes the absence of a symbol, e.g. a missing sequence separator.
const NoSymbol SymID = -1

var kernelVersion = [3]int{1, 0, 2}

// Version returns the kernel version triple.
func Version() [3]int {
	return kernelVersion
}

// CheckVersion verifies that the kernel is compatible with the requested
// version triple. Compatible means: same major, same minor and a patch
// level of at least the requested one.
func CheckVersion(major, minor, patch int) error {
	v := kernelVersion
	if v[0] != major || v[1] != minor || v[2] < patch {
		return newError(ErrVersionMismatch, "have %d.%d.%d, want %d.%d.%d",
			v[0], v[1], v[2], major, minor, patch)
	}
	return nil
}

// ErrCode enumerates kernel error conditions.
type ErrCode int

// Kernel error codes.
const (
	ErrNone ErrCode = iota
	ErrInternal
	ErrVersionMismatch
	ErrInvalidSymbolID
	ErrInvalidRuleID
	ErrNoStartSymbol
	ErrNotATerminal
	ErrPrecomputed
	ErrNotPrecomputed
	ErrCountedNullable
	ErrNullingTerminal
	ErrDuplicateRule
	ErrDuplicateToken
	ErrUnexpectedToken
	ErrTokenLengthInvalid
	ErrSequenceRHSCount
	ErrSequenceMinimum
	ErrEventNotSubscribed
	ErrInvalidEarleySet
	ErrInvalidBufferSize
	ErrNoProgressReport
	ErrNoParse
	ErrOrderFrozen
	ErrNoTree
)

var errCodeStrings = map[ErrCode]string{
	ErrNone:               "no error",
	ErrInternal:           "internal kernel error",
	ErrVersionMismatch:    "kernel version mismatch",
	ErrInvalidSymbolID:    "invalid symbol id",
	ErrInvalidRuleID:      "invalid rule id",
	ErrNoStartSymbol:      "no start symbol has been set",
	ErrNotATerminal:       "symbol is not a terminal",
	ErrPrecomputed:        "grammar is already precomputed",
	ErrNotPrecomputed:     "grammar is not precomputed",
	ErrCountedNullable:    "symbol is a counted nullable",
	ErrNullingTerminal:    "symbol is a nulling terminal",
	ErrDuplicateRule:      "duplicate rule",
	ErrDuplicateToken:     "duplicate token",
	ErrUnexpectedToken:    "token symbol is not expected here",
	ErrTokenLengthInvalid: "token length must be at least 1",
	ErrSequenceRHSCount:   "a sequence must have exactly one RHS symbol",
	ErrSequenceMinimum:    "a sequence must have a minimum of exactly 0 or 1",
	ErrEventNotSubscribed: "symbol is not subscribed to this event kind",
	ErrInvalidEarleySet:   "Earley set id out of range",
	ErrInvalidBufferSize:  "caller buffer is too small",
	ErrNoProgressReport:   "no progress report in progress",
	ErrNoParse:            "no parse",
	ErrOrderFrozen:        "order is frozen",
	ErrNoTree:             "no current parse tree",
}

func (c ErrCode) String() string {
	if s, ok := errCodeStrings[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown kernel error %d", int(c))
}

// Error is the error type returned by all kernel operations.
type Error struct {
	Code    ErrCode
	Context string
}

func (e *Error) Error() string {
	if e.Context == "" {
		return "kernel: " + e.Code.String()
	}
	return "kernel: " + e.Code.String() + ": " + e.Context
}

func newError(code ErrCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Context: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the kernel error code from an error, ErrNone for nil and
// ErrInternal for foreign errors.
func CodeOf(err error) ErrCode {
	if err == nil {
		return ErrNone
	}
	if kerr, ok := err.(*Error); ok {
		return kerr.Code
	}
	return ErrInternal
}

// EventType classifies kernel events.
type EventType int

// Kernel event types. Symbol events carry the symbol id in Event.Value,
// EventEarleyItemThreshold carries the item count, EventLoopRules the
// number of looping rules.
const (
	EventNone EventType = iota
	EventCountedNullable
	EventEarleyItemThreshold
	EventExhausted
	EventLoopRules
	EventNullingTerminal
	EventInaccessible
	EventSymbolCompleted
	EventSymbolNulled
	EventSymbolPredicted
	EventSymbolExpected
)

// Event is a single kernel event. Events accumulate at the grammar during
// precomputation and recognition; every state-changing operation replaces
// the previous batch.
type Event struct {
	Type  EventType
	Value int
}
