package mealy

type statePair struct{ a, b int }

// SeparatingWord returns a shortest input word on which a and b produce
// different outputs, or nil if none exists. A transition one machine cannot
// define while the other can counts as a difference.
func SeparatingWord(a, b Machine, inputs *Alphabet) Word {
	return separateFrom(a, a.Initial(), b, b.Initial(), inputs)
}

func separateFrom(a Machine, sa int, b Machine, sb int, inputs *Alphabet) Word {
	start := statePair{sa, sb}
	access := map[statePair]Word{start: Epsilon}
	queue := []statePair{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for k := 0; k < inputs.Len(); k++ {
			in := inputs.Symbol(k)
			oa, okA := a.Output(cur.a, in)
			ob, okB := b.Output(cur.b, in)
			if okA != okB || oa != ob {
				return access[cur].Append(in)
			}
			if !okA {
				continue
			}
			na, okA := a.Successor(cur.a, in)
			nb, okB := b.Successor(cur.b, in)
			if !okA || !okB {
				continue
			}
			next := statePair{na, nb}
			if _, seen := access[next]; seen {
				continue
			}
			access[next] = access[cur].Append(in)
			queue = append(queue, next)
		}
	}
	return nil
}

// CharacterizingSet returns a set of words that pairwise separates every two
// reachable states of m. Words are returned in discovery order.
func CharacterizingSet(m Machine) []Word {
	states, _ := Reachable(m)
	inputs := m.Inputs()
	var result []Word
	seen := make(map[string]bool)
	add := func(w Word) {
		if k := w.Key(); !seen[k] {
			seen[k] = true
			result = append(result, w)
		}
	}
	for k := 0; k < inputs.Len(); k++ {
		add(WordOf(inputs.Symbol(k)))
	}
	for i := 0; i < len(states); i++ {
		for j := i + 1; j < len(states); j++ {
			if separatedBy(m, states[i], states[j], result) {
				continue
			}
			if w := separateFrom(m, states[i], m, states[j], inputs); w != nil {
				add(w)
			}
		}
	}
	return result
}

func separatedBy(m Machine, s, t int, words []Word) bool {
	for _, w := range words {
		outS, errS := RunFrom(m, s, w)
		outT, errT := RunFrom(m, t, w)
		if (errS == nil) != (errT == nil) || !outS.Equal(outT) {
			return true
		}
	}
	return false
}
