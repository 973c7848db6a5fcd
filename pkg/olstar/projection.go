package olstar

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ha1tch/olstar/pkg/mealy"
)

// Projection maps every output symbol to an indicator class. Rows are compared
// after projecting their outputs, so the table never needs a column per output
// symbol. Symbols the projection does not mention fall into the fallback class.
type Projection struct {
	Name     string
	classes  map[string]int
	fallback int
}

// NewProjection creates a projection from a symbol-to-class map.
func NewProjection(name string, classes map[string]int, fallback int) Projection {
	c := make(map[string]int, len(classes))
	for k, v := range classes {
		c[k] = v
	}
	return Projection{Name: name, classes: c, fallback: fallback}
}

// Class returns the class of an output symbol.
func (p Projection) Class(symbol string) int {
	if c, ok := p.classes[symbol]; ok {
		return c
	}
	return p.fallback
}

// Projector derives the projections for the output symbols seen so far. It is
// called again whenever the output alphabet may have grown.
type Projector func(outputs *mealy.Alphabet) []Projection

// SingleSymbol projects onto "is it exactly this symbol", one projection per
// output symbol.
func SingleSymbol(outputs *mealy.Alphabet) []Projection {
	ps := make([]Projection, outputs.Len())
	for i := range ps {
		o := outputs.Symbol(i)
		ps[i] = Projection{Name: o, classes: map[string]int{o: 1}, fallback: 0}
	}
	return ps
}

// FixedProjector always returns the given projections. All output symbols the
// target can produce should be covered, otherwise symbols sharing the fallback
// class everywhere cannot be told apart.
func FixedProjector(ps []Projection) Projector {
	return func(*mealy.Alphabet) []Projection { return ps }
}

// ParseProjections reads a projection map file. Every line holds an output
// symbol followed by its class in each projection:
//
//	L 0 0
//	x 2 4
//	z 4 2
//
// Blank lines and lines starting with # are ignored. All lines must have the
// same number of columns.
func ParseProjections(r io.Reader) ([]Projection, error) {
	var classes []map[string]int
	columns := 0
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if columns == 0 {
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: need a symbol and at least one class", n)
			}
			columns = len(fields)
			classes = make([]map[string]int, columns-1)
			for i := range classes {
				classes[i] = make(map[string]int)
			}
		}
		if len(fields) != columns {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", n, columns, len(fields))
		}
		for i, f := range fields[1:] {
			c, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("line %d: class %q: %w", n, f, err)
			}
			classes[i][fields[0]] = c
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if columns == 0 {
		return nil, fmt.Errorf("no projections defined")
	}
	ps := make([]Projection, len(classes))
	for i, c := range classes {
		ps[i] = Projection{Name: fmt.Sprintf("p%d", i+1), classes: c, fallback: -1}
	}
	return ps, nil
}

// projectWord renders the classes of a word's symbols as a key.
func projectWord(sb *strings.Builder, p Projection, w mealy.Word) {
	for _, s := range w {
		sb.WriteString(strconv.Itoa(p.Class(s)))
		sb.WriteByte(',')
	}
}
