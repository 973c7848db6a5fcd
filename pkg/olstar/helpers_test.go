package olstar

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ha1tch/olstar/pkg/mealy"
	"github.com/ha1tch/olstar/pkg/oracle"
)

type transition struct {
	from, input, to, output string
}

func build(t *testing.T, inputs []string, initial string, ts []transition) *mealy.Compact {
	t.Helper()
	c := mealy.NewCompact(mealy.NewAlphabet(inputs...))
	c.SetInitial(c.AddState(initial))
	for _, tr := range ts {
		from := c.AddState(tr.from)
		to := c.AddState(tr.to)
		require.NoError(t, c.SetTransition(from, tr.input, to, tr.output))
	}
	require.NoError(t, c.Complete())
	return c
}

// modCounter outputs the current count modulo 3 on a and then increments it;
// b outputs 0 and keeps the count.
func modCounter(t *testing.T) *mealy.Compact {
	return build(t, []string{"a", "b"}, "c0", []transition{
		{"c0", "a", "c1", "0"}, {"c0", "b", "c0", "0"},
		{"c1", "a", "c2", "1"}, {"c1", "b", "c1", "0"},
		{"c2", "a", "c0", "2"}, {"c2", "b", "c2", "0"},
	})
}

// componentInconsistent has a state whose projections, combined, predict no
// output at all once the table is closed and consistent.
func componentInconsistent(t *testing.T) *mealy.Compact {
	return build(t, []string{"a", "b"}, "qe", []transition{
		{"qe", "a", "qa", "0"}, {"qe", "b", "qb", "1"},
		{"qa", "a", "qaa", "1"}, {"qa", "b", "qaa", "2"},
		{"qb", "a", "qaa", "0"}, {"qb", "b", "qaa", "2"},
		{"qaa", "a", "qaa", "2"}, {"qaa", "b", "qaa", "0"},
	})
}

// twoCounters combines a counter over a with a shifted counter entered by b.
func twoCounters(t *testing.T) *mealy.Compact {
	return build(t, []string{"a", "b"}, "q0", []transition{
		{"q0", "a", "q1", "1"}, {"q0", "b", "r0", "0"},
		{"q1", "a", "q2", "2"}, {"q1", "b", "r1", "1"},
		{"q2", "a", "q0", "0"}, {"q2", "b", "r2", "2"},
		{"r0", "a", "r2", "2"}, {"r0", "b", "q0", "0"},
		{"r1", "a", "r0", "0"}, {"r1", "b", "q1", "1"},
		{"r2", "a", "r1", "1"}, {"r2", "b", "q2", "2"},
	})
}

// randomMachine returns a complete random machine. Output symbols are drawn
// from a larger alphabet than the number of states.
func randomMachine(t *testing.T, seed int64, states, inputs, outputs int) *mealy.Compact {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	in := make([]string, inputs)
	for i := range in {
		in[i] = fmt.Sprintf("i%d", i)
	}
	c := mealy.NewCompact(mealy.NewAlphabet(in...))
	for s := 0; s < states; s++ {
		c.AddState(fmt.Sprintf("s%d", s))
	}
	for s := 0; s < states; s++ {
		for _, sym := range in {
			out := fmt.Sprintf("o%d", rng.Intn(outputs))
			require.NoError(t, c.SetTransition(s, sym, rng.Intn(states), out))
		}
	}
	return c
}

func simulator(t *testing.T, target *mealy.Compact) *oracle.Simulator {
	t.Helper()
	sim, err := oracle.NewSimulator(target)
	require.NoError(t, err)
	return sim
}

// requireClosed checks that every row matches a short row under every
// projection.
func requireClosed(t *testing.T, tbl *Table) {
	t.Helper()
	short := make(map[int]map[string]bool)
	for p, proj := range tbl.projections {
		short[p] = make(map[string]bool)
		for _, id := range tbl.short {
			short[p][tbl.projectedKey(proj, tbl.cells[id])] = true
		}
	}
	for p, proj := range tbl.projections {
		for _, r := range tbl.rows {
			require.True(t, short[p][tbl.projectedKey(proj, tbl.cells[r.id])],
				"row %s unclosed under projection %s", r, proj.Name)
		}
	}
}

// requireConsistent checks that short rows equal under a projection have
// successors equal under that projection.
func requireConsistent(t *testing.T, tbl *Table) {
	t.Helper()
	for _, proj := range tbl.projections {
		for _, x := range tbl.short {
			for _, y := range tbl.short {
				if x >= y || tbl.projectedKey(proj, tbl.cells[x]) != tbl.projectedKey(proj, tbl.cells[y]) {
					continue
				}
				for k := 0; k < tbl.inputs.Len(); k++ {
					sx := tbl.rows[x].successors[k]
					sy := tbl.rows[y].successors[k]
					require.Equal(t, tbl.projectedKey(proj, tbl.cells[sx]), tbl.projectedKey(proj, tbl.cells[sy]),
						"rows %s and %s inconsistent under %s", tbl.rows[x], tbl.rows[y], proj.Name)
				}
			}
		}
	}
}
