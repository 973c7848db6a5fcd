// Package oracle provides the membership and equivalence oracles a learner
// talks to, together with the usual filters around them (caching, counting).
package oracle

import "github.com/ha1tch/olstar/pkg/mealy"

// Query pairs an input word with the output word the target produced for it.
type Query struct {
	Input  mealy.Word
	Output mealy.Word
}

// String renders the query as "input / output".
func (q Query) String() string {
	return q.Input.String() + " / " + q.Output.String()
}

// Membership answers membership queries: the output word the target produces
// for an input word, one output symbol per input symbol. Implementations must
// be deterministic. AnswerBatch must be equivalent to calling Answer for every
// word in order.
type Membership interface {
	Answer(w mealy.Word) mealy.Word
	AnswerBatch(ws []mealy.Word) []mealy.Word
}

// Equivalence compares a hypothesis with the target. It returns a
// counterexample and true, or false if it could not find a difference.
type Equivalence interface {
	FindCounterexample(h mealy.Machine, inputs *mealy.Alphabet) (Query, bool)
}

// AnswerEach implements AnswerBatch in terms of Answer.
func AnswerEach(m Membership, ws []mealy.Word) []mealy.Word {
	out := make([]mealy.Word, len(ws))
	for i, w := range ws {
		out[i] = m.Answer(w)
	}
	return out
}
