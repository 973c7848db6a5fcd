package oracle

import (
	"math/rand"

	"github.com/ha1tch/olstar/pkg/mealy"
)

// disagrees reports whether the hypothesis output for the query differs from
// the recorded target output. An undefined hypothesis output always disagrees.
func disagrees(h mealy.Machine, q Query) bool {
	out, err := mealy.Run(h, q.Input)
	return err != nil || !out.Equal(q.Output)
}

// Perfect finds counterexamples by comparing the hypothesis with a known
// target. It returns shortest counterexamples.
type Perfect struct {
	target mealy.Machine
}

// NewPerfect creates an oracle comparing against target.
func NewPerfect(target mealy.Machine) *Perfect {
	return &Perfect{target: target}
}

// FindCounterexample returns a shortest word separating h from the target.
func (p *Perfect) FindCounterexample(h mealy.Machine, inputs *mealy.Alphabet) (Query, bool) {
	w := mealy.SeparatingWord(p.target, h, inputs)
	if w == nil {
		return Query{}, false
	}
	out, _ := mealy.Run(p.target, w)
	return Query{Input: w, Output: out}, true
}

// EarlyBreak skips the (possibly expensive) delegate when a known target shows
// the hypothesis is already equivalent. It never reports counterexamples the
// delegate did not find.
type EarlyBreak struct {
	target   mealy.Machine
	delegate Equivalence
}

// NewEarlyBreak wraps delegate.
func NewEarlyBreak(target mealy.Machine, delegate Equivalence) *EarlyBreak {
	return &EarlyBreak{target: target, delegate: delegate}
}

// FindCounterexample consults the delegate only if target and h differ.
func (e *EarlyBreak) FindCounterexample(h mealy.Machine, inputs *mealy.Alphabet) (Query, bool) {
	if mealy.SeparatingWord(e.target, h, inputs) == nil {
		return Query{}, false
	}
	return e.delegate.FindCounterexample(h, inputs)
}

// WMethod is a conformance-testing oracle: it tests every word
// p · middle · w, where p ranges over the hypothesis' transition cover (each
// access word alone and followed by one input), middle over all words up to
// the depth and w over a characterising set of the hypothesis. It finds every
// counterexample of a target with at most depth more states than the
// hypothesis.
type WMethod struct {
	mq    Membership
	depth int
}

// NewWMethod creates a W-method oracle with the given look-ahead depth.
func NewWMethod(mq Membership, depth int) *WMethod {
	if depth < 0 {
		depth = 0
	}
	return &WMethod{mq: mq, depth: depth}
}

// FindCounterexample returns the first failing test word.
func (o *WMethod) FindCounterexample(h mealy.Machine, inputs *mealy.Alphabet) (Query, bool) {
	states, access := mealy.Reachable(h)
	suffixes := mealy.CharacterizingSet(h)
	// access · (ε | Σ) · Σ^≤depth is access · Σ^≤depth+1.
	middles := WordsUpTo(inputs, o.depth+1)
	for _, s := range states {
		for _, mid := range middles {
			prefix := access[s].Concat(mid)
			for _, w := range suffixes {
				test := prefix.Concat(w)
				q := Query{Input: test, Output: o.mq.Answer(test)}
				if disagrees(h, q) {
					return q, true
				}
			}
		}
	}
	return Query{}, false
}

// WordsUpTo enumerates every word over inputs of length 0..n, shortest first
// and in alphabet order within a length.
func WordsUpTo(inputs *mealy.Alphabet, n int) []mealy.Word {
	words := []mealy.Word{mealy.Epsilon}
	layer := []mealy.Word{mealy.Epsilon}
	for l := 1; l <= n; l++ {
		next := make([]mealy.Word, 0, len(layer)*inputs.Len())
		for _, w := range layer {
			for k := 0; k < inputs.Len(); k++ {
				next = append(next, w.Append(inputs.Symbol(k)))
			}
		}
		words = append(words, next...)
		layer = next
	}
	return words
}

// RandomWords tests uniformly random words.
type RandomWords struct {
	mq     Membership
	rng    *rand.Rand
	count  int
	minLen int
	maxLen int
}

// NewRandomWords creates an oracle testing count random words whose lengths
// lie in [minLen, maxLen]. The seed makes runs reproducible.
func NewRandomWords(mq Membership, count, minLen, maxLen int, seed int64) *RandomWords {
	if maxLen < minLen {
		maxLen = minLen
	}
	return &RandomWords{
		mq:     mq,
		rng:    rand.New(rand.NewSource(seed)),
		count:  count,
		minLen: minLen,
		maxLen: maxLen,
	}
}

// FindCounterexample returns the first random test word the hypothesis fails.
func (o *RandomWords) FindCounterexample(h mealy.Machine, inputs *mealy.Alphabet) (Query, bool) {
	if inputs.Len() == 0 {
		return Query{}, false
	}
	for i := 0; i < o.count; i++ {
		n := o.minLen + o.rng.Intn(o.maxLen-o.minLen+1)
		w := make(mealy.Word, n)
		for j := range w {
			w[j] = inputs.Symbol(o.rng.Intn(inputs.Len()))
		}
		q := Query{Input: w, Output: o.mq.Answer(w)}
		if disagrees(h, q) {
			return q, true
		}
	}
	return Query{}, false
}
