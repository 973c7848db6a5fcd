package fsm

import (
	"fmt"
	"strings"
)

// Runner steps through a Mealy machine description one input at a time.
type Runner struct {
	fsm     *FSM
	current string
	history []Step
}

// Step records one step of execution.
type Step struct {
	FromState string
	Input     string
	ToState   string
	Output    string
}

// NewRunner creates a runner for the given FSM.
func NewRunner(f *FSM) (*Runner, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid FSM: %w", err)
	}
	return &Runner{fsm: f, current: f.Initial}, nil
}

// CurrentState returns the current state.
func (r *Runner) CurrentState() string {
	return r.current
}

// AvailableInputs returns the inputs with a transition from the current
// state, in alphabet order.
func (r *Runner) AvailableInputs() []string {
	var inputs []string
	for _, in := range r.fsm.Alphabet {
		if _, ok := r.fsm.GetTransition(r.current, in); ok {
			inputs = append(inputs, in)
		}
	}
	return inputs
}

// Step processes an input and returns its output. It returns an error if the
// current state has no transition on the input.
func (r *Runner) Step(input string) (string, error) {
	t, ok := r.fsm.GetTransition(r.current, input)
	if !ok {
		return "", fmt.Errorf("no transition from state %s on input %q", r.current, input)
	}
	r.history = append(r.history, Step{
		FromState: r.current,
		Input:     input,
		ToState:   t.To,
		Output:    t.Output,
	})
	r.current = t.To
	return t.Output, nil
}

// Reset returns the runner to the initial state.
func (r *Runner) Reset() {
	r.current = r.fsm.Initial
	r.history = nil
}

// History returns the execution history.
func (r *Runner) History() []Step {
	return r.history
}

// Run processes a sequence of inputs and returns all outputs. On error the
// outputs produced so far are returned.
func (r *Runner) Run(inputs []string) ([]string, error) {
	var outputs []string
	for _, input := range inputs {
		output, err := r.Step(input)
		if err != nil {
			return outputs, err
		}
		outputs = append(outputs, output)
	}
	return outputs, nil
}

// RunString processes whitespace-separated input symbols.
func (r *Runner) RunString(input string) ([]string, error) {
	return r.Run(strings.Fields(input))
}

// Status returns a status string for the current state.
func (r *Runner) Status() string {
	status := fmt.Sprintf("State: %s", r.current)
	if n := len(r.history); n > 0 {
		last := r.history[n-1]
		status += fmt.Sprintf(" (last: %s/%s)", last.Input, last.Output)
	}
	return status
}
