package fsmfile

import (
	"encoding/json"
	"fmt"

	"github.com/ha1tch/olstar/pkg/fsm"
)

// jsonFSM is the JSON representation of a Mealy machine.
type jsonFSM struct {
	Type           string           `json:"type"`
	Name           string           `json:"name,omitempty"`
	Description    string           `json:"description,omitempty"`
	States         []string         `json:"states"`
	Alphabet       []string         `json:"alphabet"`
	OutputAlphabet []string         `json:"output_alphabet,omitempty"`
	Initial        string           `json:"initial"`
	Transitions    []jsonTransition `json:"transitions"`
}

type jsonTransition struct {
	From   string      `json:"from"`
	Input  *string     `json:"input"`
	To     interface{} `json:"to"` // string or single-element []string
	Output *string     `json:"output"`
}

// ParseJSON parses a Mealy machine from JSON. Transitions must have an input,
// exactly one target and an output.
func ParseJSON(data []byte) (*fsm.FSM, error) {
	var j jsonFSM
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	if j.Type != "" && fsm.Type(j.Type) != fsm.TypeMealy {
		return nil, fmt.Errorf("unsupported machine type %q", j.Type)
	}

	f := fsm.New(j.Name)
	f.Description = j.Description
	for _, s := range j.States {
		f.AddState(s)
	}
	for _, a := range j.Alphabet {
		f.AddInput(a)
	}
	for _, o := range j.OutputAlphabet {
		f.AddOutput(o)
	}
	f.SetInitial(j.Initial)

	for i, jt := range j.Transitions {
		var to string
		switch v := jt.To.(type) {
		case string:
			to = v
		case []interface{}:
			if len(v) != 1 {
				return nil, fmt.Errorf("transition %d: expected one target, got %d", i, len(v))
			}
			s, ok := v[0].(string)
			if !ok {
				return nil, fmt.Errorf("transition %d: target is not a string", i)
			}
			to = s
		default:
			return nil, fmt.Errorf("transition %d: missing target", i)
		}
		if jt.Input == nil {
			return nil, fmt.Errorf("transition %d: epsilon transitions are not allowed", i)
		}
		if jt.Output == nil {
			return nil, fmt.Errorf("transition %d: missing output", i)
		}
		f.AddTransition(jt.From, *jt.Input, to, *jt.Output)
	}
	return f, nil
}

// ToJSON converts an FSM to JSON.
func ToJSON(f *fsm.FSM, pretty bool) ([]byte, error) {
	j := jsonFSM{
		Type:           string(fsm.TypeMealy),
		Name:           f.Name,
		Description:    f.Description,
		States:         f.States,
		Alphabet:       f.Alphabet,
		OutputAlphabet: f.OutputAlphabet,
		Initial:        f.Initial,
		Transitions:    make([]jsonTransition, 0, len(f.Transitions)),
	}
	for _, t := range f.Transitions {
		input, output := t.Input, t.Output
		j.Transitions = append(j.Transitions, jsonTransition{
			From:   t.From,
			Input:  &input,
			To:     t.To,
			Output: &output,
		})
	}

	if pretty {
		return json.MarshalIndent(j, "", "  ")
	}
	return json.Marshal(j)
}
