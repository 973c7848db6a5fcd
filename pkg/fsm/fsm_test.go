package fsm

import (
	"reflect"
	"testing"

	"github.com/ha1tch/olstar/pkg/mealy"
)

func counter() *FSM {
	f := New("counter")
	f.SetInitial("c0")
	f.AddTransition("c0", "a", "c1", "0")
	f.AddTransition("c0", "b", "c0", "0")
	f.AddTransition("c1", "a", "c2", "1")
	f.AddTransition("c1", "b", "c1", "0")
	f.AddTransition("c2", "a", "c0", "2")
	f.AddTransition("c2", "b", "c2", "0")
	return f
}

func TestValidate(t *testing.T) {
	if err := counter().Validate(); err != nil {
		t.Fatalf("counter should be valid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*FSM)
	}{
		{"no states", func(f *FSM) { f.States = nil }},
		{"no initial", func(f *FSM) { f.Initial = "" }},
		{"unknown initial", func(f *FSM) { f.Initial = "nope" }},
		{"unknown from", func(f *FSM) { f.Transitions[0].From = "nope" }},
		{"unknown to", func(f *FSM) { f.Transitions[0].To = "nope" }},
		{"unknown input", func(f *FSM) { f.Transitions[0].Input = "z" }},
		{"unknown output", func(f *FSM) { f.Transitions[0].Output = "9" }},
		{"duplicate transition", func(f *FSM) { f.Transitions = append(f.Transitions, f.Transitions[0]) }},
		{"wrong type", func(f *FSM) { f.Type = "dfa" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := counter()
			tt.mutate(f)
			if err := f.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestAddDeduplicates(t *testing.T) {
	f := counter()
	if len(f.States) != 3 || len(f.Alphabet) != 2 || len(f.OutputAlphabet) != 3 {
		t.Errorf("unexpected sizes: %v %v %v", f.States, f.Alphabet, f.OutputAlphabet)
	}
	if got := f.StateIndex("c2"); got != 2 {
		t.Errorf("StateIndex(c2) = %d", got)
	}
	if got := f.InputIndex("z"); got != -1 {
		t.Errorf("InputIndex(z) = %d", got)
	}
}

func TestConversionRoundTrip(t *testing.T) {
	c, err := counter().ToMealy()
	if err != nil {
		t.Fatalf("ToMealy: %v", err)
	}
	out, err := mealy.Run(c, mealy.WordOf("a", "a", "b", "a"))
	if err != nil {
		t.Fatal(err)
	}
	if want := mealy.WordOf("0", "1", "0", "2"); !out.Equal(want) {
		t.Errorf("got %s, want %s", out, want)
	}

	back, err := FromMealy(c, "copy")
	if err != nil {
		t.Fatalf("FromMealy: %v", err)
	}
	if !reflect.DeepEqual(back.States, []string{"s0", "s1", "s2"}) {
		t.Errorf("states = %v", back.States)
	}
	if len(back.Transitions) != 6 {
		t.Errorf("expected 6 transitions, got %d", len(back.Transitions))
	}
	again, err := back.ToMealy()
	if err != nil {
		t.Fatalf("ToMealy of copy: %v", err)
	}
	if w := mealy.SeparatingWord(c, again, c.Inputs()); w != nil {
		t.Errorf("copy differs on %s", w)
	}
}

func TestToMealyRejectsIncomplete(t *testing.T) {
	f := counter()
	f.Transitions = f.Transitions[:5]
	if _, err := f.ToMealy(); err == nil {
		t.Error("expected an error for a missing transition")
	}
}

func TestAnalyse(t *testing.T) {
	if w := counter().Analyse(); len(w) != 0 {
		t.Errorf("expected no warnings, got %v", w)
	}

	f := counter()
	f.AddState("island")
	f.AddInput("unused")
	f.AddOutput("never")
	warnings := f.Analyse()
	types := make(map[string]bool)
	for _, w := range warnings {
		types[w.Type] = true
	}
	for _, want := range []string{"unreachable", "incomplete", "unused_input", "unused_output"} {
		if !types[want] {
			t.Errorf("missing %q warning in %v", want, warnings)
		}
	}
	if got := f.UnreachableStates(); !reflect.DeepEqual(got, []string{"island"}) {
		t.Errorf("UnreachableStates = %v", got)
	}
	if got := f.UnusedOutputs(); !reflect.DeepEqual(got, []string{"never"}) {
		t.Errorf("UnusedOutputs = %v", got)
	}
}

func TestRunner(t *testing.T) {
	r, err := NewRunner(counter())
	if err != nil {
		t.Fatal(err)
	}
	outs, err := r.RunString("a a a b")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(outs, []string{"0", "1", "2", "0"}) {
		t.Errorf("outputs = %v", outs)
	}
	if r.CurrentState() != "c0" {
		t.Errorf("state = %s", r.CurrentState())
	}
	if len(r.History()) != 4 || r.History()[1].ToState != "c2" {
		t.Errorf("history = %v", r.History())
	}
	if got := r.Status(); got != "State: c0 (last: b/0)" {
		t.Errorf("status = %q", got)
	}

	if _, err := r.Step("z"); err == nil {
		t.Error("expected error for unknown input")
	}
	r.Reset()
	if r.CurrentState() != "c0" || len(r.History()) != 0 {
		t.Error("reset did not restore the initial state")
	}
	if got := r.AvailableInputs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("AvailableInputs = %v", got)
	}
}

func TestNewRunnerRejectsInvalid(t *testing.T) {
	f := counter()
	f.Initial = ""
	if _, err := NewRunner(f); err == nil {
		t.Error("expected error")
	}
}
