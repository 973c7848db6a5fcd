package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ha1tch/olstar/pkg/fsmfile"
	"github.com/ha1tch/olstar/pkg/mealy"
	"github.com/ha1tch/olstar/pkg/olstar"
)

// printReport writes the summary of a learning run.
func printReport(w io.Writer, name string, s *session, res olstar.Result) {
	tbl := s.learner.Table()
	st := res.Stats
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Target:\t%s (%d states)\n", name, s.target.NumStates())
	fmt.Fprintf(tw, "Hypothesis:\t%d states\n", res.Hypothesis.Size())
	fmt.Fprintf(tw, "Rounds:\t%d\n", res.Rounds)
	fmt.Fprintf(tw, "Table:\t%d short, %d long rows, %d suffixes, %d outputs\n",
		len(tbl.ShortRows()), len(tbl.LongRows()), len(tbl.Suffixes()), tbl.Outputs().Len())
	fmt.Fprintf(tw, "Promotions:\t%d\n", st.Promotions)
	fmt.Fprintf(tw, "Inconsistencies:\t%d\n", st.Inconsistencies)
	fmt.Fprintf(tw, "Counterexamples:\t%d\n", st.Refinements)
	fmt.Fprintf(tw, "Defects:\t%d without output, %d with several outputs, %d retries\n",
		st.ZeroOutputDefects, st.MultiOutputDefects, st.DefectRetries)
	for _, c := range []struct {
		name    string
		queries int64
		symbols int64
	}{
		{"learning", s.learning.Queries(), s.learning.Symbols()},
		{"testing", s.testing.Queries(), s.testing.Symbols()},
	} {
		line := fmt.Sprintf("%d queries, %d symbols", c.queries, c.symbols)
		if cache, ok := s.caches[c.name]; ok {
			hits, misses := cache.Stats()
			line += fmt.Sprintf(", cache %d hits / %d misses", hits, misses)
		}
		fmt.Fprintf(tw, "Queries (%s):\t%s\n", c.name, line)
	}
	equivalent := "yes"
	if sep := mealy.SeparatingWord(s.target, res.Hypothesis, s.target.Inputs()); sep != nil {
		equivalent = "no, differs on " + sep.String()
	}
	fmt.Fprintf(tw, "Equivalent:\t%s\n", equivalent)
	tw.Flush()
}

// tableGrid lays out an observation table: short rows first, then long rows,
// one column per suffix.
func tableGrid(t *olstar.Table, title string) fsmfile.Grid {
	g := fsmfile.Grid{Title: title, Header: []string{""}}
	for _, s := range t.Suffixes() {
		g.Header = append(g.Header, s.String())
	}
	add := func(rows []*olstar.Row, short bool) {
		for _, r := range rows {
			line := []string{r.String()}
			for _, w := range t.Contents(r.ID()) {
				line = append(line, w.String())
			}
			g.Rows = append(g.Rows, line)
			g.Short = append(g.Short, short)
		}
	}
	add(t.ShortRows(), true)
	add(t.LongRows(), false)
	return g
}

// printGrid writes a grid as aligned text; short rows are marked with *.
func printGrid(w io.Writer, g fsmfile.Grid) {
	if g.Title != "" {
		fmt.Fprintln(w, g.Title)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\t%s\n", strings.Join(g.Header, "\t"))
	for i, r := range g.Rows {
		mark := " "
		if i < len(g.Short) && g.Short[i] {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\n", mark, strings.Join(r, "\t"))
	}
	tw.Flush()
}
