package bocage

import "errors"

// Errors reported by the engine. Kernel-detected conditions are wrapped
// with their kernel error; use errors.Is against these sentinels.
var (
	// ErrGrammarFrozen flags an attempt to modify a precomputed grammar.
	ErrGrammarFrozen = errors.New("bocage: grammar is already precomputed")

	// ErrNotPrecomputed flags recognition over an unfrozen grammar.
	ErrNotPrecomputed = errors.New("bocage: grammar has not been precomputed")

	// ErrMissingLHS flags a rule without a left-hand symbol.
	ErrMissingLHS = errors.New("bocage: rule has no LHS symbol")

	// ErrSequenceRHS flags a sequence rule without exactly one RHS symbol.
	ErrSequenceRHS = errors.New("bocage: a sequence must have exactly one RHS symbol")

	// ErrSequenceMinimum flags a sequence minimum outside {0, 1}.
	ErrSequenceMinimum = errors.New("bocage: a sequence must have a minimum of exactly 0 or 1")

	// ErrMissingCallback flags a driver or evaluator configuration with an
	// unset mandatory callback.
	ErrMissingCallback = errors.New("bocage: mandatory callback is not set")

	// ErrCallbackFailed flags a user callback which returned failure.
	ErrCallbackFailed = errors.New("bocage: callback failure")

	// ErrGrammarFatalEvent flags a fatal grammar event (counted nullable,
	// nulling terminal) during event synchronization.
	ErrGrammarFatalEvent = errors.New("bocage: fatal grammar event")

	// ErrWarningAsError flags an advisory event escalated under the
	// warning-is-error regime.
	ErrWarningAsError = errors.New("bocage: grammar warning escalated to error")

	// ErrRecognizerClosed flags an operation on a closed recognizer.
	ErrRecognizerClosed = errors.New("bocage: recognizer is closed")

	// ErrRemainingData flags a reader which stopped with input left over.
	ErrRemainingData = errors.New("bocage: there is data remaining in the input")

	// ErrAmbiguousParse flags an ambiguous parse when ambiguity is disallowed.
	ErrAmbiguousParse = errors.New("bocage: ambiguous parse detected")

	// ErrNullParse flags a null parse when null parses are disallowed.
	ErrNullParse = errors.New("bocage: null parse detected")

	// ErrProgressRange flags an invalid progress report range.
	ErrProgressRange = errors.New("bocage: progress range out of bounds")
)
