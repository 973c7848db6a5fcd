// Package fsm provides the file-level description of a Mealy machine: named
// states, input and output alphabets and a transition list. It is the form in
// which targets and learned hypotheses are stored and exchanged.
package fsm

import (
	"fmt"
	"strings"

	"github.com/ha1tch/olstar/pkg/mealy"
)

// Type represents the kind of machine stored in a file.
type Type string

// TypeMealy is the only machine type olstar reads and writes.
const TypeMealy Type = "mealy"

// Transition represents a state transition with its output.
type Transition struct {
	From   string `json:"from"`
	Input  string `json:"input"`
	To     string `json:"to"`
	Output string `json:"output"`
}

// FSM represents a Mealy machine as stored in a file.
type FSM struct {
	Type           Type         `json:"type"`
	Name           string       `json:"name,omitempty"`
	Description    string       `json:"description,omitempty"`
	States         []string     `json:"states"`
	Alphabet       []string     `json:"alphabet"`
	OutputAlphabet []string     `json:"output_alphabet,omitempty"`
	Initial        string       `json:"initial"`
	Transitions    []Transition `json:"transitions"`
}

// New creates an empty Mealy machine description.
func New(name string) *FSM {
	return &FSM{
		Type:           TypeMealy,
		Name:           name,
		States:         make([]string, 0),
		Alphabet:       make([]string, 0),
		OutputAlphabet: make([]string, 0),
		Transitions:    make([]Transition, 0),
	}
}

// AddState adds a state to the FSM.
func (f *FSM) AddState(name string) {
	if f.StateIndex(name) < 0 {
		f.States = append(f.States, name)
	}
}

// AddInput adds an input symbol to the alphabet.
func (f *FSM) AddInput(symbol string) {
	if f.InputIndex(symbol) < 0 {
		f.Alphabet = append(f.Alphabet, symbol)
	}
}

// AddOutput adds an output symbol to the output alphabet.
func (f *FSM) AddOutput(symbol string) {
	if f.OutputIndex(symbol) < 0 {
		f.OutputAlphabet = append(f.OutputAlphabet, symbol)
	}
}

// AddTransition adds a transition. States and symbols it mentions are added
// when missing.
func (f *FSM) AddTransition(from, input, to, output string) {
	f.AddState(from)
	f.AddState(to)
	f.AddInput(input)
	f.AddOutput(output)
	f.Transitions = append(f.Transitions, Transition{From: from, Input: input, To: to, Output: output})
}

// SetInitial sets the initial state.
func (f *FSM) SetInitial(state string) {
	f.Initial = state
}

// Validate checks if the FSM is well-formed: the initial state exists, every
// transition references known states and symbols, and no state has two
// transitions on the same input.
func (f *FSM) Validate() error {
	if f.Type != "" && f.Type != TypeMealy {
		return fmt.Errorf("unsupported machine type %q", f.Type)
	}
	if len(f.States) == 0 {
		return fmt.Errorf("FSM has no states")
	}
	if f.Initial == "" {
		return fmt.Errorf("FSM has no initial state")
	}
	if f.StateIndex(f.Initial) < 0 {
		return fmt.Errorf("initial state %q not in states", f.Initial)
	}

	seen := make(map[[2]string]bool)
	for i, t := range f.Transitions {
		if f.StateIndex(t.From) < 0 {
			return fmt.Errorf("transition %d: from state %q not in states", i, t.From)
		}
		if f.StateIndex(t.To) < 0 {
			return fmt.Errorf("transition %d: to state %q not in states", i, t.To)
		}
		if f.InputIndex(t.Input) < 0 {
			return fmt.Errorf("transition %d: input %q not in alphabet", i, t.Input)
		}
		if len(f.OutputAlphabet) > 0 && f.OutputIndex(t.Output) < 0 {
			return fmt.Errorf("transition %d: output %q not in output alphabet", i, t.Output)
		}
		key := [2]string{t.From, t.Input}
		if seen[key] {
			return fmt.Errorf("transition %d: state %q already has a transition on %q", i, t.From, t.Input)
		}
		seen[key] = true
	}
	return nil
}

// StateIndex returns the index of a state, or -1 if not found.
func (f *FSM) StateIndex(state string) int {
	return indexOf(f.States, state)
}

// InputIndex returns the index of an input, or -1 if not found.
func (f *FSM) InputIndex(input string) int {
	return indexOf(f.Alphabet, input)
}

// OutputIndex returns the index of an output, or -1 if not found.
func (f *FSM) OutputIndex(output string) int {
	return indexOf(f.OutputAlphabet, output)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// GetTransition returns the transition from a state on an input.
func (f *FSM) GetTransition(from, input string) (Transition, bool) {
	for _, t := range f.Transitions {
		if t.From == from && t.Input == input {
			return t, true
		}
	}
	return Transition{}, false
}

// ToMealy converts a valid and complete description into a machine that can
// be simulated. State ids follow the order of States.
func (f *FSM) ToMealy() (*mealy.Compact, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	c := mealy.NewCompact(mealy.NewAlphabet(f.Alphabet...))
	for _, s := range f.States {
		c.AddState(s)
	}
	initial, _ := c.StateID(f.Initial)
	c.SetInitial(initial)
	for i, t := range f.Transitions {
		from, _ := c.StateID(t.From)
		to, _ := c.StateID(t.To)
		if err := c.SetTransition(from, t.Input, to, t.Output); err != nil {
			return nil, fmt.Errorf("transition %d: %w", i, err)
		}
	}
	if err := c.Complete(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromMealy describes the reachable part of a machine. States are named
// s0, s1, ... in breadth-first order from the initial state.
func FromMealy(m mealy.Machine, name string) (*FSM, error) {
	c, err := mealy.Materialize(m)
	if err != nil {
		return nil, err
	}
	f := New(name)
	for id := 0; id < c.NumStates(); id++ {
		f.AddState(c.StateName(id))
	}
	f.SetInitial(c.StateName(c.Initial()))
	f.Alphabet = c.Inputs().Symbols()
	for id := 0; id < c.NumStates(); id++ {
		for _, in := range f.Alphabet {
			to, ok := c.Successor(id, in)
			if !ok {
				continue
			}
			out, _ := c.Output(id, in)
			f.AddTransition(c.StateName(id), in, c.StateName(to), out)
		}
	}
	return f, nil
}

// String returns a string representation of the FSM.
func (f *FSM) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("FSM[%s]: %s\n", f.Type, f.Name))
	sb.WriteString(fmt.Sprintf("  States: %v\n", f.States))
	sb.WriteString(fmt.Sprintf("  Alphabet: %v\n", f.Alphabet))
	sb.WriteString(fmt.Sprintf("  Outputs: %v\n", f.OutputAlphabet))
	sb.WriteString(fmt.Sprintf("  Initial: %s\n", f.Initial))
	sb.WriteString(fmt.Sprintf("  Transitions: %d\n", len(f.Transitions)))
	return sb.String()
}
