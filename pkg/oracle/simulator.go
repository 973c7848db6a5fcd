package oracle

import (
	"fmt"

	"github.com/ha1tch/olstar/pkg/mealy"
)

// Simulator answers membership queries by running a known, complete machine.
type Simulator struct {
	target *mealy.Compact
}

// NewSimulator creates a simulator for the target. The target must define a
// transition for every state and input.
func NewSimulator(target *mealy.Compact) (*Simulator, error) {
	if err := target.Complete(); err != nil {
		return nil, fmt.Errorf("simulator target incomplete: %w", err)
	}
	return &Simulator{target: target}, nil
}

// Target returns the simulated machine.
func (s *Simulator) Target() *mealy.Compact { return s.target }

// Answer runs the word on the target.
func (s *Simulator) Answer(w mealy.Word) mealy.Word {
	// The target is complete, so Run cannot fail for words over its alphabet.
	out, _ := mealy.Run(s.target, w)
	return out
}

// AnswerBatch runs every word on the target.
func (s *Simulator) AnswerBatch(ws []mealy.Word) []mealy.Word {
	return AnswerEach(s, ws)
}
