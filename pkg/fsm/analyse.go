package fsm

import (
	"strings"

	"golang.org/x/exp/slices"
)

// Warning describes a property of a machine that is legal but suspicious.
type Warning struct {
	Type    string // unreachable, incomplete, unused_input, unused_output
	Message string
	States  []string
}

// UnreachableStates returns the states that cannot be reached from the
// initial state, in declaration order.
func (f *FSM) UnreachableStates() []string {
	reached := map[string]bool{f.Initial: true}
	queue := []string{f.Initial}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, t := range f.Transitions {
			if t.From == cur && !reached[t.To] {
				reached[t.To] = true
				queue = append(queue, t.To)
			}
		}
	}
	var out []string
	for _, s := range f.States {
		if !reached[s] {
			out = append(out, s)
		}
	}
	return out
}

// IncompleteStates returns the states missing a transition for some input.
// OL* needs a target that answers every query.
func (f *FSM) IncompleteStates() []string {
	defined := make(map[string]map[string]bool)
	for _, t := range f.Transitions {
		if defined[t.From] == nil {
			defined[t.From] = make(map[string]bool)
		}
		defined[t.From][t.Input] = true
	}
	var out []string
	for _, s := range f.States {
		for _, in := range f.Alphabet {
			if !defined[s][in] {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// UnusedInputs returns the input symbols no transition reads.
func (f *FSM) UnusedInputs() []string {
	used := make(map[string]bool)
	for _, t := range f.Transitions {
		used[t.Input] = true
	}
	return missing(f.Alphabet, used)
}

// UnusedOutputs returns the declared output symbols no transition produces.
func (f *FSM) UnusedOutputs() []string {
	used := make(map[string]bool)
	for _, t := range f.Transitions {
		used[t.Output] = true
	}
	return missing(f.OutputAlphabet, used)
}

func missing(all []string, used map[string]bool) []string {
	var out []string
	for _, s := range all {
		if !used[s] {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return out
}

// Analyse runs all checks and returns the warnings found.
func (f *FSM) Analyse() []Warning {
	var warnings []Warning
	if s := f.UnreachableStates(); len(s) > 0 {
		warnings = append(warnings, Warning{Type: "unreachable", Message: "states not reachable from the initial state", States: s})
	}
	if s := f.IncompleteStates(); len(s) > 0 {
		warnings = append(warnings, Warning{Type: "incomplete", Message: "states missing a transition for some input", States: s})
	}
	if s := f.UnusedInputs(); len(s) > 0 {
		warnings = append(warnings, Warning{Type: "unused_input", Message: "inputs without transitions: " + strings.Join(s, ", ")})
	}
	if s := f.UnusedOutputs(); len(s) > 0 {
		warnings = append(warnings, Warning{Type: "unused_output", Message: "outputs never produced: " + strings.Join(s, ", ")})
	}
	return warnings
}
