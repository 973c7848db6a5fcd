package mealy

import "fmt"

type edge struct {
	to     int
	output string
	set    bool
}

// Compact is an explicit Mealy machine with named states. It is used for
// targets loaded from model files and for materialised hypotheses.
type Compact struct {
	inputs  *Alphabet
	outputs *Alphabet
	names   []string
	byName  map[string]int
	edges   [][]edge
	initial int
}

// NewCompact creates an empty machine over the given input alphabet.
func NewCompact(inputs *Alphabet) *Compact {
	return &Compact{
		inputs:  inputs,
		outputs: NewAlphabet(),
		byName:  make(map[string]int),
	}
}

// AddState adds a named state and returns its id. Adding an existing name
// returns the id it already has.
func (c *Compact) AddState(name string) int {
	if id, ok := c.byName[name]; ok {
		return id
	}
	id := len(c.names)
	c.names = append(c.names, name)
	c.byName[name] = id
	c.edges = append(c.edges, make([]edge, c.inputs.Len()))
	return id
}

// StateID returns the id of a named state.
func (c *Compact) StateID(name string) (int, bool) {
	id, ok := c.byName[name]
	return id, ok
}

// StateName returns the name of a state id.
func (c *Compact) StateName(id int) string { return c.names[id] }

// NumStates returns the number of states, reachable or not.
func (c *Compact) NumStates() int { return len(c.names) }

// SetInitial marks a state as initial.
func (c *Compact) SetInitial(id int) { c.initial = id }

// SetTransition defines the transition of state from on input.
func (c *Compact) SetTransition(from int, input string, to int, output string) error {
	k := c.inputs.Index(input)
	if k < 0 {
		return fmt.Errorf("input %q not in alphabet", input)
	}
	if from < 0 || from >= len(c.names) || to < 0 || to >= len(c.names) {
		return fmt.Errorf("transition %d -%s-> %d: unknown state", from, input, to)
	}
	if e := c.edges[from][k]; e.set && (e.to != to || e.output != output) {
		return fmt.Errorf("state %q: conflicting transitions on input %q", c.names[from], input)
	}
	c.edges[from][k] = edge{to: to, output: output, set: true}
	c.outputs.Add(output)
	return nil
}

// Inputs returns the input alphabet.
func (c *Compact) Inputs() *Alphabet { return c.inputs }

// Outputs returns the output symbols used by the transitions.
func (c *Compact) Outputs() *Alphabet { return c.outputs }

// Initial returns the initial state.
func (c *Compact) Initial() int { return c.initial }

// Successor returns the target of the transition.
func (c *Compact) Successor(state int, input string) (int, bool) {
	e, ok := c.edge(state, input)
	return e.to, ok
}

// Output returns the output of the transition.
func (c *Compact) Output(state int, input string) (string, bool) {
	e, ok := c.edge(state, input)
	return e.output, ok
}

func (c *Compact) edge(state int, input string) (edge, bool) {
	k := c.inputs.Index(input)
	if k < 0 || state < 0 || state >= len(c.edges) {
		return edge{}, false
	}
	e := c.edges[state][k]
	return e, e.set
}

// Complete reports whether every state has a transition for every input, and
// otherwise names the first missing one.
func (c *Compact) Complete() error {
	for s := range c.edges {
		for k, e := range c.edges[s] {
			if !e.set {
				return fmt.Errorf("state %q has no transition on input %q", c.names[s], c.inputs.Symbol(k))
			}
		}
	}
	return nil
}

// Materialize copies the reachable part of any machine into a Compact machine,
// naming states s0, s1, ... in BFS order. Transitions the view cannot define
// are left out. A view whose transitions change between calls, or lead
// outside the states it reported as reachable, is an error.
func Materialize(m Machine) (*Compact, error) {
	inputs := m.Inputs()
	states, _ := Reachable(m)
	c := NewCompact(inputs)
	ids := make(map[int]int, len(states))
	for i, s := range states {
		ids[s] = c.AddState(fmt.Sprintf("s%d", i))
	}
	c.SetInitial(ids[m.Initial()])
	for _, s := range states {
		for k := 0; k < inputs.Len(); k++ {
			in := inputs.Symbol(k)
			next, ok := m.Successor(s, in)
			if !ok {
				continue
			}
			out, ok := m.Output(s, in)
			if !ok {
				continue
			}
			to, ok := ids[next]
			if !ok {
				return nil, fmt.Errorf("materialize: state %d -%s-> %d is not reachable", s, in, next)
			}
			if err := c.SetTransition(ids[s], in, to, out); err != nil {
				return nil, fmt.Errorf("materialize: %w", err)
			}
		}
	}
	return c, nil
}
