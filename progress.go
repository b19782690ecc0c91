package bocage

import (
	"fmt"
	"sort"

	"github.com/npillmayer/bocage/bufman"
)

// ProgressItem is a dotted-rule record of a progress report. A Position
// of -1 denotes a dot at the end of the rule.
type ProgressItem struct {
	EarleySet int
	Origin    int
	Rule      *Rule
	Position  int
}

func (p *ProgressItem) String() string {
	return fmt.Sprintf("Earley set %4d, origin %4d, rule %4d, position %3d",
		p.EarleySet, p.Origin, p.Rule.ID(), p.Position)
}

// Progress enumerates the Earley items of the sets in range start…end,
// sorted ascending by (rule id, position). Negative range values are
// interpreted relative to the latest Earley set id, so Progress(-1, -1)
// reports the latest set.
func (r *Recognizer) Progress(start, end int) ([]*ProgressItem, error) {
	if r.closed {
		return nil, ErrRecognizerClosed
	}
	latest := r.kr.LatestEarleySet()
	if start < 0 {
		start += latest + 1
	}
	if start < 0 || start > latest {
		tracer().Errorf("progress start must be in range [%d…%d]", -(latest + 1), latest)
		return nil, ErrProgressRange
	}
	if end < 0 {
		end += latest + 1
	}
	if end < 0 || end > latest {
		tracer().Errorf("progress end must be in range [%d…%d]", -(latest + 1), latest)
		return nil, ErrProgressRange
	}
	if start > end {
		tracer().Errorf("progress range [%d…%d] is empty", start, end)
		return nil, ErrProgressRange
	}
	buf := bufman.New[*ProgressItem](nil)
	for set := start; set <= end; set++ {
		if _, err := r.kr.Earleme(set); err != nil {
			return nil, r.g.fail("progress", err)
		}
		n, err := r.kr.ProgressReportStart(set)
		if err != nil {
			return nil, r.g.fail("progress", err)
		}
		for i := 0; i < n; i++ {
			rule, pos, origin, err := r.kr.ProgressItem()
			if err != nil {
				return nil, r.g.fail("progress", err)
			}
			if _, err := buf.Append(&ProgressItem{
				EarleySet: set,
				Origin:    origin,
				Rule:      r.g.rules.Get(int(rule)),
				Position:  pos,
			}); err != nil {
				return nil, r.g.fail("progress", err)
			}
		}
		if err := r.kr.ProgressReportFinish(); err != nil {
			return nil, r.g.fail("progress", err)
		}
	}
	items := buf.Slots()
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Rule.id != items[j].Rule.id {
			return items[i].Rule.id < items[j].Rule.id
		}
		return items[i].Position < items[j].Position
	})
	return items, nil
}
