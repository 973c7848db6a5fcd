package mealy

// Alphabet is an ordered, de-duplicated set of symbols. Input alphabets are
// fixed once learning starts; output alphabets grow with Add as new symbols are
// observed.
type Alphabet struct {
	symbols []string
	index   map[string]int
}

// NewAlphabet creates an alphabet from the given symbols, dropping duplicates
// while keeping first-occurrence order.
func NewAlphabet(symbols ...string) *Alphabet {
	a := &Alphabet{index: make(map[string]int, len(symbols))}
	for _, s := range symbols {
		a.Add(s)
	}
	return a
}

// Add appends the symbol if it is not present yet. It reports whether the
// alphabet grew.
func (a *Alphabet) Add(s string) bool {
	if _, ok := a.index[s]; ok {
		return false
	}
	a.index[s] = len(a.symbols)
	a.symbols = append(a.symbols, s)
	return true
}

// Index returns the position of the symbol, or -1 if it is not present.
func (a *Alphabet) Index(s string) int {
	if i, ok := a.index[s]; ok {
		return i
	}
	return -1
}

// Contains reports whether the symbol is present.
func (a *Alphabet) Contains(s string) bool {
	_, ok := a.index[s]
	return ok
}

// Symbol returns the symbol at position i.
func (a *Alphabet) Symbol(i int) string { return a.symbols[i] }

// Len returns the number of symbols.
func (a *Alphabet) Len() int { return len(a.symbols) }

// Symbols returns a copy of the symbols in order.
func (a *Alphabet) Symbols() []string {
	out := make([]string, len(a.symbols))
	copy(out, a.symbols)
	return out
}
