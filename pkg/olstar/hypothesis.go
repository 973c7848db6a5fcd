package olstar

import (
	"strconv"
	"strings"

	"github.com/ha1tch/olstar/pkg/mealy"
)

// Hypothesis is the Mealy machine derived from the short rows of a table. A
// state is a tuple holding one short row per projection; component i follows
// successors and then projection-i links. The output of a transition is the
// unique symbol consistent with the class every component predicts; when no
// or several symbols qualify the output is undefined.
//
// A Hypothesis reads the table it was built from and is only meaningful until
// the table changes; see Stale.
type Hypothesis struct {
	table   *Table
	version uint64

	tuples [][]RowID
	ids    map[string]int
	states []int
}

func newHypothesis(t *Table) *Hypothesis {
	h := &Hypothesis{
		table:   t,
		version: t.version,
		ids:     make(map[string]int),
	}
	// Row 0 is the empty prefix.
	h.intern(make([]RowID, len(t.projections)))
	return h
}

func (h *Hypothesis) intern(tuple []RowID) int {
	var sb strings.Builder
	for _, id := range tuple {
		sb.WriteString(strconv.Itoa(int(id)))
		sb.WriteByte(',')
	}
	k := sb.String()
	if id, ok := h.ids[k]; ok {
		return id
	}
	id := len(h.tuples)
	h.ids[k] = id
	h.tuples = append(h.tuples, tuple)
	return id
}

// Stale reports whether the table changed after the hypothesis was built.
func (h *Hypothesis) Stale() bool { return h.version != h.table.version }

// Inputs returns the input alphabet.
func (h *Hypothesis) Inputs() *mealy.Alphabet { return h.table.inputs }

// Initial returns the state made of the empty-prefix row in every component.
func (h *Hypothesis) Initial() int { return 0 }

// Tuple returns the rows making up a state.
func (h *Hypothesis) Tuple(state int) []RowID {
	out := make([]RowID, len(h.tuples[state]))
	copy(out, h.tuples[state])
	return out
}

// Successor returns the state reached on input, or false if some component
// has no resolved projection link.
func (h *Hypothesis) Successor(state int, input string) (int, bool) {
	k := h.table.inputs.Index(input)
	if k < 0 || state < 0 || state >= len(h.tuples) {
		return 0, false
	}
	cur := h.tuples[state]
	next := make([]RowID, len(cur))
	for i, id := range cur {
		row := h.table.rows[id]
		if !row.IsShort() {
			return 0, false
		}
		link, ok := h.table.rows[row.successors[k]].Link(i)
		if !ok {
			return 0, false
		}
		next[i] = link
	}
	return h.intern(next), true
}

// Output returns the output of the transition if exactly one output symbol is
// consistent with all components.
func (h *Hypothesis) Output(state int, input string) (string, bool) {
	outs := h.OutputSet(state, input)
	if len(outs) != 1 {
		return "", false
	}
	return outs[0], true
}

// OutputSet returns the output symbols consistent with every component of the
// transition. It stops after finding two, since beyond that the transition is
// ill-defined anyway.
func (h *Hypothesis) OutputSet(state int, input string) []string {
	k := h.table.inputs.Index(input)
	if k < 0 || state < 0 || state >= len(h.tuples) {
		return nil
	}
	cur := h.tuples[state]
	ps := h.table.projections
	classes := make([]int, len(cur))
	for i, id := range cur {
		classes[i] = ps[i].Class(h.table.output(id, k))
	}
	var outs []string
	outputs := h.table.outputs
	for o := 0; o < outputs.Len() && len(outs) < 2; o++ {
		sym := outputs.Symbol(o)
		match := true
		for i, c := range classes {
			if ps[i].Class(sym) != c {
				match = false
				break
			}
		}
		if match {
			outs = append(outs, sym)
		}
	}
	return outs
}

// States returns the reachable states in BFS order. The result is computed
// once per hypothesis.
func (h *Hypothesis) States() []int {
	if h.states == nil {
		h.states, _ = mealy.Reachable(h)
	}
	return h.states
}

// Size returns the number of reachable states.
func (h *Hypothesis) Size() int { return len(h.States()) }
