package bocage

import (
	"github.com/npillmayer/bocage/kernel"
	"github.com/npillmayer/bocage/vstack"
)

// ValueResult is the verdict of the per-tree result callback.
type ValueResult int

// Result callback verdicts.
const (
	ValueContinue ValueResult = iota // proceed with the next parse tree
	ValueStop                        // terminate evaluation successfully
	ValueFail                        // fail evaluation
)

// ValueRuleFunc produces the semantic value of a rule reduction from the
// operand elements. The returned element (nil allowed) is copied onto the
// stack, which takes ownership.
type ValueRuleFunc func(userdata interface{}, r *Recognizer, rule *Rule, operands [][]byte) ([]byte, bool)

// ValueSymbolFunc produces the semantic value of a scanned token from its
// value index.
type ValueSymbolFunc func(userdata interface{}, r *Recognizer, sym *Symbol, valueIx int) ([]byte, bool)

// ValueNullingFunc produces the semantic value of a zero-width symbol
// instance.
type ValueNullingFunc func(userdata interface{}, r *Recognizer, sym *Symbol) ([]byte, bool)

// ValueResultFunc receives the final element of each parse tree.
type ValueResultFunc func(userdata interface{}, r *Recognizer, top []byte) ValueResult

// StackElementFreeFunc releases resources an element refers to.
type StackElementFreeFunc func(userdata interface{}, r *Recognizer, elem []byte) bool

// StackElementCopyFunc deep-copies element contents after the stack has
// copied the raw bytes.
type StackElementCopyFunc func(userdata interface{}, r *Recognizer, dst, src []byte) bool

// ValueOptions configures an evaluation run. Use NewValueOptions for the
// defaults: order by rank, high rank only, ambiguous and null parses
// allowed.
type ValueOptions struct {
	HighRankOnly   bool
	OrderByRank    bool
	AllowAmbiguous bool
	AllowNull      bool

	RuleFn      ValueRuleFunc
	RuleData    interface{}
	SymbolFn    ValueSymbolFunc
	SymbolData  interface{}
	NullingFn   ValueNullingFunc
	NullingData interface{}
	ResultFn    ValueResultFunc
	ResultData  interface{}
}

// NewValueOptions returns the evaluator defaults.
func NewValueOptions() *ValueOptions {
	return &ValueOptions{
		HighRankOnly:   true,
		OrderByRank:    true,
		AllowAmbiguous: true,
		AllowNull:      true,
	}
}

// StackOptions configures the semantic stack of an evaluation run.
// ElementSize must be overridden by the caller.
type StackOptions struct {
	ElementSize int
	Free        StackElementFreeFunc
	FreeData    interface{}
	Copy        StackElementCopyFunc
	CopyData    interface{}
}

// Value evaluates every parse tree of the recognized input. Per tree it
// walks the kernel's value steps over a fresh semantic stack, invoking
// the configured callbacks; after the walk the result callback decides
// whether to continue, stop or fail. The recognizer is not mutated.
func (r *Recognizer) Value(vopts *ValueOptions, sopts StackOptions) error {
	if vopts == nil {
		vopts = NewValueOptions()
	}
	g := r.g

	latest := r.kr.LatestEarleySet()
	bocage, err := kernel.NewBocage(r.kr, latest)
	if err != nil {
		return g.fail("value", err)
	}
	order, err := kernel.NewOrder(bocage)
	if err != nil {
		return g.fail("value", err)
	}
	if err := order.HighRankOnlySet(vopts.HighRankOnly); err != nil {
		return g.fail("value", err)
	}
	if vopts.OrderByRank {
		if err := order.Rank(); err != nil {
			return g.fail("value", err)
		}
	}
	if !vopts.AllowAmbiguous && order.AmbiguityMetric() > 1 {
		tracer().Errorf("ambiguous parse detected after bocage")
		return ErrAmbiguousParse
	}
	if !vopts.AllowNull && order.IsNull() {
		tracer().Errorf("null parse detected after bocage")
		return ErrNullParse
	}
	tree, err := kernel.NewTree(order)
	if err != nil {
		return g.fail("value", err)
	}

	stackOpts := vstack.Options{
		ElementSize: sopts.ElementSize,
		GrowOnGet:   true,
		GrowOnSet:   true,
		OnFailure: func(_ interface{}, err error) {
			tracer().Errorf("semantic stack: %v", err)
		},
	}
	if sopts.Free != nil {
		stackOpts.Free = func(_ interface{}, elem []byte) bool {
			return sopts.Free(sopts.FreeData, r, elem)
		}
	}
	if sopts.Copy != nil {
		stackOpts.Copy = func(_ interface{}, dst, src []byte) bool {
			return sopts.Copy(sopts.CopyData, r, dst, src)
		}
	}

	for tree.Next() >= 0 {
		value, err := kernel.NewValue(tree)
		if err != nil {
			return g.fail("value", err)
		}
		if err := value.ValuedForce(); err != nil {
			return g.fail("value", err)
		}
		stack, err := vstack.New(stackOpts)
		if err != nil {
			return err
		}
		if err := r.walkTree(vopts, value, stack, &stackOpts); err != nil {
			stack.Destroy()
			return err
		}
		verdict := ValueContinue
		if vopts.ResultFn != nil {
			top, err := stack.Get(0)
			if err != nil {
				stack.Destroy()
				return err
			}
			verdict = vopts.ResultFn(vopts.ResultData, r, top)
		}
		stack.Destroy()
		switch verdict {
		case ValueFail:
			tracer().Errorf("result callback failure")
			return ErrCallbackFailed
		case ValueStop:
			return nil
		}
	}
	return nil
}

// walkTree steps through one tree's semantic events.
func (r *Recognizer) walkTree(vopts *ValueOptions, value *kernel.Value, stack *vstack.Stack, stackOpts *vstack.Options) error {
	g := r.g
	for {
		var produced []byte
		var result int
		switch step := value.Step().(type) {
		case kernel.RuleStep:
			rule := g.rules.Get(int(step.Rule))
			n := step.ArgLast - step.ArgFirst + 1
			tracer().Debugf("rule step: stack [%d…%d] -> stack %d", step.ArgFirst, step.ArgLast, step.Result)
			operands := make([][]byte, n)
			for i := 0; i < n; i++ {
				elem, err := stack.Get(step.ArgFirst + i)
				if err != nil {
					return err
				}
				operands[i] = elem
			}
			if vopts.RuleFn != nil {
				out, ok := vopts.RuleFn(vopts.RuleData, r, rule, operands)
				if !ok {
					tracer().Errorf("rule callback failure")
					return ErrCallbackFailed
				}
				produced = out
			}
			result = step.Result
		case kernel.TokenStep:
			sym := g.symbols.Get(int(step.Symbol))
			tracer().Debugf("token step: value %d -> stack %d", step.Value, step.Result)
			if vopts.SymbolFn != nil {
				out, ok := vopts.SymbolFn(vopts.SymbolData, r, sym, step.Value)
				if !ok {
					tracer().Errorf("symbol callback failure")
					return ErrCallbackFailed
				}
				produced = out
			}
			result = step.Result
		case kernel.NullingStep:
			sym := g.symbols.Get(int(step.Symbol))
			tracer().Debugf("nulling step: stack %d", step.Result)
			if vopts.NullingFn != nil {
				out, ok := vopts.NullingFn(vopts.NullingData, r, sym)
				if !ok {
					tracer().Errorf("nulling callback failure")
					return ErrCallbackFailed
				}
				produced = out
			}
			result = step.Result
		case kernel.InactiveStep:
			return nil
		default: // initial and future step kinds
			continue
		}
		if err := stack.Set(result, produced); err != nil {
			return err
		}
		if produced != nil && stackOpts.Free != nil {
			// The stack owns a copy now; release the producer's transient
			// element to avoid double ownership.
			if !stackOpts.Free(nil, produced) {
				return ErrCallbackFailed
			}
		}
	}
}
