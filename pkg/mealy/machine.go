package mealy

import "fmt"

// Machine is a read-only view of a deterministic Mealy machine whose states are
// identified by small integers. Successor and Output report false when the
// machine has no (or no well-defined) transition for the input.
type Machine interface {
	Inputs() *Alphabet
	Initial() int
	Successor(state int, input string) (int, bool)
	Output(state int, input string) (string, bool)
}

// Run feeds the word to the machine from its initial state and returns the
// produced output word.
func Run(m Machine, w Word) (Word, error) {
	return RunFrom(m, m.Initial(), w)
}

// RunFrom feeds the word to the machine starting in the given state.
func RunFrom(m Machine, state int, w Word) (Word, error) {
	out := make(Word, 0, len(w))
	for i, in := range w {
		o, ok := m.Output(state, in)
		if !ok {
			return out, fmt.Errorf("no output for input %q at step %d", in, i)
		}
		next, ok := m.Successor(state, in)
		if !ok {
			return out, fmt.Errorf("no transition for input %q at step %d", in, i)
		}
		out = append(out, o)
		state = next
	}
	return out, nil
}

// Reachable returns the states reachable from the initial state in BFS order,
// together with a shortest access word for each of them.
func Reachable(m Machine) ([]int, map[int]Word) {
	inputs := m.Inputs()
	init := m.Initial()
	access := map[int]Word{init: Epsilon}
	order := []int{init}
	for i := 0; i < len(order); i++ {
		s := order[i]
		for k := 0; k < inputs.Len(); k++ {
			in := inputs.Symbol(k)
			next, ok := m.Successor(s, in)
			if !ok {
				continue
			}
			if _, seen := access[next]; seen {
				continue
			}
			access[next] = access[s].Append(in)
			order = append(order, next)
		}
	}
	return order, access
}

// Size returns the number of reachable states of the machine.
func Size(m Machine) int {
	states, _ := Reachable(m)
	return len(states)
}
