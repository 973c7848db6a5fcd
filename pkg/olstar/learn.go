package olstar

import (
	"fmt"

	"github.com/ha1tch/olstar/pkg/oracle"
)

// Result summarises a learning run.
type Result struct {
	Rounds     int
	Hypothesis *Hypothesis
	Stats      Stats
}

// Learn starts the learner and alternates equivalence queries with refinement
// until the equivalence oracle finds no counterexample. A positive maxRounds
// bounds the number of equivalence queries.
func Learn(l *Learner, eq oracle.Equivalence, maxRounds int) (Result, error) {
	if err := l.StartLearning(); err != nil {
		return Result{}, fmt.Errorf("start learning: %w", err)
	}
	for round := 1; ; round++ {
		h := l.Hypothesis()
		l.logger.Info("equivalence query", "round", round, "states", h.Size())
		ce, found := eq.FindCounterexample(h, l.inputs)
		res := Result{Rounds: round, Hypothesis: h, Stats: l.stats}
		if !found {
			return res, nil
		}
		if maxRounds > 0 && round >= maxRounds {
			return res, fmt.Errorf("%w (%d)", ErrRoundLimit, maxRounds)
		}
		l.logger.Debug("counterexample", "round", round, "query", ce.String())
		if _, err := l.Refine(ce); err != nil {
			return res, fmt.Errorf("round %d: %w", round, err)
		}
	}
}
