/*
Package bocage wraps an Earley parsing kernel into a three-phase
grammar → recognize → value workflow.

Earley parsing handles every context-free grammar, ambiguous ones
included, which makes it a pleasant fit for ad-hoc languages where
massaging a grammar into LALR- or PEG-shape is not worth the trouble.
The price is bookkeeping: Earley sets, parse forests and their
enumeration. This package keeps that bookkeeping behind three phases,
each with a small API:

▪︎ Grammar building. Clients create a Grammar, add symbols and rules
(ordinary BNF rules or sequence rules with separators), and freeze the
grammar with Precompute. Symbols may subscribe to completion-, nulled-
and prediction-events.

▪︎ Recognition. A Recognizer feeds tokens earleme by earleme, either
manually (Alternative/Complete/Read) or through the lexing driver
Grammar.Recognize, which runs a reader → classify → select → push loop
with longest-acceptable-token-match semantics. After every
state-changing call the engine synthesizes a deterministically sorted
event batch for subscribed symbols.

▪︎ Valuation. Recognizer.Value walks every parse tree of the recognized
input and drives user callbacks over a typed semantic stack (package
vstack): one callback per scanned token, per zero-width symbol instance
and per rule reduction, plus a result callback per tree that may
continue, stop or fail the walk.

The kernel behind the engine lives in package kernel and can be used on
its own, but the expectation is that clients stay with this package.

Control flow is strictly phased and single-threaded: callbacks run
synchronously on the calling goroutine, and no instance of Grammar,
Recognizer or the evaluation chain may be shared between goroutines
without external serialization.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package bocage

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'bocage.engine'.
func tracer() tracing.Trace {
	return tracing.Select("bocage.engine")
}
