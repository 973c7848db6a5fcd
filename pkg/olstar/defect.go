package olstar

import (
	"fmt"
	"log/slog"

	"github.com/ha1tch/olstar/pkg/mealy"
	"github.com/ha1tch/olstar/pkg/oracle"
)

// FindReachableDefect searches the reachable states of the hypothesis for a
// transition whose output is not well-defined. Local closedness and
// consistency cannot rule these out: the components of a state may combine
// rows that never occur together in a single table row. The defect is returned
// as a query for the access word of the state followed by the offending input,
// answered by the membership oracle.
func (l *Learner) FindReachableDefect() (oracle.Query, bool) {
	q, _, ok := l.findReachableDefect()
	return q, ok
}

func (l *Learner) findReachableDefect() (oracle.Query, int, bool) {
	if !l.table.Initialized() {
		return oracle.Query{}, 0, false
	}
	h := l.Hypothesis()
	init := h.Initial()
	access := map[int]mealy.Word{init: mealy.Epsilon}
	queue := []int{init}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for k := 0; k < l.inputs.Len(); k++ {
			in := l.inputs.Symbol(k)
			w := access[cur].Append(in)
			if outs := h.OutputSet(cur, in); len(outs) != 1 {
				return oracle.Query{Input: w, Output: l.mq.Answer(w)}, len(outs), true
			}
			next, ok := h.Successor(cur, in)
			if !ok {
				continue
			}
			if _, seen := access[next]; !seen {
				access[next] = w
				queue = append(queue, next)
			}
		}
	}
	return oracle.Query{}, 0, false
}

// fixReachableDefects repairs reachable defects until none is left. Each
// pass over a defect adds the shortest new suffix of its word and closes the
// table; a defect still reproduced after maxDefectRetries passes is reported
// as ErrDefectPersists. With a deterministic target every pass adds a suffix,
// so a word of length n needs at most n+1 passes.
func (l *Learner) fixReachableDefects() error {
	for {
		ce, outputs, found := l.findReachableDefect()
		if !found {
			l.logger.Debug("no reachable defects", slog.Int("short_rows", len(l.table.short)))
			return nil
		}
		// Under SingleSymbol projections an ambiguous transition also has an
		// empty candidate set, so both shapes count as zero-output defects.
		if outputs == 0 {
			l.stats.ZeroOutputDefects++
		} else {
			l.stats.MultiOutputDefects++
		}
		l.logger.Debug("reachable defect",
			slog.String("query", ce.String()),
			slog.Int("outputs", outputs),
			slog.Int("short_rows", len(l.table.short)))

		for attempt := 1; ; attempt++ {
			grew := l.addShortestNewSuffix(ce.Input)
			closed, err := l.closeTable()
			if err != nil {
				return err
			}
			if !l.contradicts(ce) {
				break
			}
			if !grew && !closed {
				return fmt.Errorf("%w: %s", ErrRefinementStalled, ce)
			}
			if attempt >= l.maxDefectRetries {
				return fmt.Errorf("%w after %d attempts: %s", ErrDefectPersists, attempt, ce)
			}
			l.stats.DefectRetries++
			l.logger.Debug("same defect", slog.String("query", ce.String()), slog.Int("attempt", attempt))
		}
	}
}
