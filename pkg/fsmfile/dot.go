package fsmfile

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ha1tch/olstar/pkg/fsm"
)

// GenerateDOT converts an FSM to Graphviz DOT format. Edges are labelled
// "input/output"; parallel edges are merged into one edge with one label line
// per transition. Edge order is stable.
func GenerateDOT(f *fsm.FSM, title string) string {
	var sb strings.Builder

	sb.WriteString("digraph FSM {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [fontname=\"Helvetica\", fontsize=11];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10];\n")
	sb.WriteString("\n")

	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(title)))
		sb.WriteString("\n")
	}

	// Invisible start node
	if f.Initial != "" {
		sb.WriteString("    __start0 [shape=none, label=\"\", width=0, height=0];\n")
		sb.WriteString(fmt.Sprintf("    __start0 -> \"%s\";\n", escapeDOT(f.Initial)))
		sb.WriteString("\n")
	}

	for _, state := range f.States {
		sb.WriteString(fmt.Sprintf("    \"%s\" [shape=circle];\n", escapeDOT(state)))
	}
	sb.WriteString("\n")

	edgeLabels := make(map[[2]string][]string)
	for _, t := range f.Transitions {
		key := [2]string{t.From, t.To}
		edgeLabels[key] = append(edgeLabels[key], escapeDOT(t.Input+"/"+t.Output))
	}
	keys := maps.Keys(edgeLabels)
	slices.SortFunc(keys, func(a, b [2]string) bool {
		if a[0] != b[0] {
			return f.StateIndex(a[0]) < f.StateIndex(b[0])
		}
		return f.StateIndex(a[1]) < f.StateIndex(b[1])
	})
	for _, key := range keys {
		sb.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\" [label=\"%s\"];\n",
			escapeDOT(key[0]), escapeDOT(key[1]), strings.Join(edgeLabels[key], `\n`)))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}

var (
	dotEdge  = regexp.MustCompile(`^\s*("(?:[^"\\]|\\.)*"|[\w.]+)\s*->\s*("(?:[^"\\]|\\.)*"|[\w.]+)\s*(?:\[(.*)\])?\s*;?\s*$`)
	dotLabel = regexp.MustCompile(`label\s*=\s*"((?:[^"\\]|\\.)*)"`)
)

// ParseDOT reads a Mealy machine in the DOT dialect used by automata
// benchmark collections: one edge per line labelled "input / output", with
// the initial state marked by an edge from a node named __start0. Without
// such an edge the source of the first transition is initial. A label may
// hold several transitions separated by \n. Node declarations and graph
// attributes are ignored.
func ParseDOT(r io.Reader) (*fsm.FSM, error) {
	f := fsm.New("")
	sc := bufio.NewScanner(r)
	first := ""
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		m := dotEdge.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		from, to := unquoteDOT(m[1]), unquoteDOT(m[2])
		if strings.HasPrefix(from, "__start") {
			f.SetInitial(to)
			continue
		}
		lm := dotLabel.FindStringSubmatch(m[3])
		if lm == nil {
			return nil, fmt.Errorf("line %d: edge %s -> %s has no label", n, from, to)
		}
		for _, part := range strings.Split(lm[1], `\n`) {
			input, output, ok := splitMealyLabel(unescapeDOT(part))
			if !ok {
				return nil, fmt.Errorf("line %d: label %q is not of the form input/output", n, part)
			}
			if _, dup := f.GetTransition(from, input); dup {
				return nil, fmt.Errorf("line %d: state %s already has a transition on %q", n, from, input)
			}
			if first == "" {
				first = from
			}
			f.AddTransition(from, input, to, output)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(f.Transitions) == 0 {
		return nil, fmt.Errorf("no transitions found")
	}
	if f.Initial == "" {
		f.SetInitial(first)
	}
	return f, nil
}

func splitMealyLabel(label string) (string, string, bool) {
	i := strings.Index(label, "/")
	if i < 0 {
		return "", "", false
	}
	input := strings.TrimSpace(label[:i])
	output := strings.TrimSpace(label[i+1:])
	if input == "" || output == "" {
		return "", "", false
	}
	return input, output, true
}

func unquoteDOT(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return unescapeDOT(s[1 : len(s)-1])
	}
	return s
}

func unescapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\\"", "\"")
	return strings.ReplaceAll(s, "\\\\", "\\")
}
