package bocage

import (
	"fmt"
	"sort"

	"github.com/npillmayer/bocage/kernel"
)

// EventKind is a bitmask of the event kinds a symbol may subscribe to.
type EventKind int

// Event kinds.
const (
	EventCompleted EventKind = 0x01
	EventNulled    EventKind = 0x02
	EventPredicted EventKind = 0x04
)

func (k EventKind) String() string {
	switch k {
	case EventCompleted:
		return "completed"
	case EventNulled:
		return "nulled"
	case EventPredicted:
		return "predicted"
	}
	return fmt.Sprintf("event-kind(%d)", int(k))
}

// Event is a single user-visible grammar event, produced for subscribed
// symbols during precomputation and recognition.
type Event struct {
	Kind   EventKind
	Symbol *Symbol
}

// EventHandler receives the event batch of a single engine operation. The
// handler may observe but not mutate the grammar. A false return is
// reported as an error but does not fail the originating operation.
type EventHandler func(userdata interface{}, g *Grammar, events []Event) bool

// eventWeight orders event kinds: completed before nulled before predicted.
func eventWeight(k EventKind) int {
	switch k {
	case EventCompleted:
		return -1
	case EventNulled:
		return 0
	case EventPredicted:
		return 1
	}
	return 0
}

// syncEvents drains the kernel's pending events after a state-changing
// operation: fatal kinds fail the operation, advisory kinds are logged
// (escalated under warning-is-error), and symbol events are collected,
// sorted by weight and delivered to the event handler in one batch.
func (g *Grammar) syncEvents() error {
	n := g.kg.EventCount()
	if n <= 0 {
		return nil
	}
	var batch []Event
	var failure error
	for i := 0; i < n; i++ {
		ev, err := g.kg.Event(i)
		if err != nil {
			return err
		}
		var warning, fatal, info string
		switch ev.Type {
		case kernel.EventNone:
		case kernel.EventCountedNullable:
			fatal = "this symbol is a counted nullable"
		case kernel.EventNullingTerminal:
			fatal = "this symbol is a nulling terminal"
		case kernel.EventEarleyItemThreshold:
			warning = "too many Earley items"
		case kernel.EventLoopRules:
			warning = "grammar contains an infinite loop"
		case kernel.EventInaccessible:
			info = "this symbol is inaccessible"
		case kernel.EventExhausted:
			info = "recognizer is exhausted"
		case kernel.EventSymbolCompleted:
			batch = append(batch, Event{Kind: EventCompleted, Symbol: g.symbols.Get(ev.Value)})
		case kernel.EventSymbolNulled:
			batch = append(batch, Event{Kind: EventNulled, Symbol: g.symbols.Get(ev.Value)})
		case kernel.EventSymbolPredicted, kernel.EventSymbolExpected:
			batch = append(batch, Event{Kind: EventPredicted, Symbol: g.symbols.Get(ev.Value)})
		default:
			tracer().Infof("kernel reported unsupported event type %d", int(ev.Type))
		}
		if warning != "" {
			if g.warningIsError {
				tracer().Errorf(warning)
				if failure == nil {
					failure = fmt.Errorf("%w: %s", ErrWarningAsError, warning)
				}
			} else if !g.ignoreWarnings {
				tracer().Infof("warning: " + warning)
			}
		} else if fatal != "" {
			tracer().Errorf(fatal)
			if failure == nil {
				failure = fmt.Errorf("%w: %s", ErrGrammarFatalEvent, fatal)
			}
		} else if info != "" {
			tracer().Infof(info)
		}
	}
	if failure != nil {
		return failure
	}
	if len(batch) >= 2 && !g.unsortedEvents {
		sort.SliceStable(batch, func(i, j int) bool {
			return eventWeight(batch[i].Kind) < eventWeight(batch[j].Kind)
		})
	}
	if len(batch) > 0 && g.handler != nil {
		if !g.handler(g.handlerData, g, batch) {
			tracer().Errorf("event handler failure")
		}
	}
	return nil
}
