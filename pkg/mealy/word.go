// Package mealy provides the words, alphabets and machine views shared by the
// learner, the oracles and the model file formats.
package mealy

import (
	"strconv"
	"strings"
)

// Word is a finite sequence of symbols. Words are treated as immutable values:
// every operation returns a fresh slice and never aliases its receiver.
type Word []string

// Epsilon is the empty word.
var Epsilon = Word{}

// WordOf builds a word from the given symbols.
func WordOf(symbols ...string) Word {
	w := make(Word, len(symbols))
	copy(w, symbols)
	return w
}

// Len returns the number of symbols in the word.
func (w Word) Len() int { return len(w) }

// IsEmpty reports whether w is the empty word.
func (w Word) IsEmpty() bool { return len(w) == 0 }

// Append returns w followed by the symbol s.
func (w Word) Append(s string) Word {
	out := make(Word, len(w)+1)
	copy(out, w)
	out[len(w)] = s
	return out
}

// Concat returns w followed by o.
func (w Word) Concat(o Word) Word {
	out := make(Word, 0, len(w)+len(o))
	out = append(out, w...)
	return append(out, o...)
}

// Prefix returns the first n symbols of w.
func (w Word) Prefix(n int) Word {
	if n > len(w) {
		n = len(w)
	}
	return WordOf(w[:n]...)
}

// Suffix returns the last n symbols of w.
func (w Word) Suffix(n int) Word {
	if n > len(w) {
		n = len(w)
	}
	return WordOf(w[len(w)-n:]...)
}

// Last returns the final symbol of w, or "" for the empty word.
func (w Word) Last() string {
	if len(w) == 0 {
		return ""
	}
	return w[len(w)-1]
}

// Equal reports whether two words have the same symbols in the same order.
func (w Word) Equal(o Word) bool {
	if len(w) != len(o) {
		return false
	}
	for i := range w {
		if w[i] != o[i] {
			return false
		}
	}
	return true
}

// Key returns a string that identifies the word. Distinct words always have
// distinct keys, including words whose symbols contain separators.
func (w Word) Key() string {
	var sb strings.Builder
	for _, s := range w {
		sb.WriteString(strconv.Itoa(len(s)))
		sb.WriteByte(':')
		sb.WriteString(s)
	}
	return sb.String()
}

// String renders the word for humans, using ε for the empty word.
func (w Word) String() string {
	if len(w) == 0 {
		return "ε"
	}
	return strings.Join(w, " ")
}
