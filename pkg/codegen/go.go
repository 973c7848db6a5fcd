// Package codegen turns Mealy machines into standalone Go source.
package codegen

import (
	"fmt"
	"go/format"
	"strings"
	"unicode"

	"github.com/ha1tch/olstar/pkg/fsm"
)

// GenerateGo generates a table-driven Go implementation of the machine. The
// generated code has no dependencies and allocates nothing when stepping.
// Undefined transitions make Step report false.
func GenerateGo(f *fsm.FSM, packageName string) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if packageName == "" {
		packageName = "model"
	}
	if !isIdentifier(packageName) {
		return nil, fmt.Errorf("invalid package name %q", packageName)
	}
	typeName := toPascalCase(sanitizeName(f.Name))
	if typeName == "Unnamed" {
		typeName = "Machine"
	} else if !unicode.IsLetter([]rune(typeName)[0]) {
		typeName = "Machine" + typeName
	}
	outputs := f.OutputAlphabet
	if len(outputs) == 0 {
		outputs = usedOutputs(f)
	}

	g := &generator{typeName: typeName}
	g.printf("// Code generated by olstar from %q. DO NOT EDIT.\n\n", f.Name)
	g.printf("package %s\n\n", packageName)

	states := g.enum("State", "is a state of "+typeName, f.States)
	g.enum("Input", "is an input symbol of "+typeName, f.Alphabet)
	g.enum("Output", "is an output symbol of "+typeName, outputs)

	n := len(f.Alphabet)
	lower := lowerFirst(typeName)
	next := make([][]string, len(f.States))
	out := make([][]string, len(f.States))
	defined := make([][]string, len(f.States))
	for s := range f.States {
		next[s] = make([]string, n)
		out[s] = make([]string, n)
		defined[s] = make([]string, n)
		for i := range f.Alphabet {
			next[s][i], out[s][i], defined[s][i] = "0", "0", "false"
		}
	}
	for _, t := range f.Transitions {
		s, i := f.StateIndex(t.From), f.InputIndex(t.Input)
		next[s][i] = fmt.Sprint(f.StateIndex(t.To))
		out[s][i] = fmt.Sprint(indexOf(outputs, t.Output))
		defined[s][i] = "true"
	}
	g.table(lower+"Next", typeName+"State", n, next)
	g.table(lower+"Out", typeName+"Output", n, out)
	g.table(lower+"Defined", "bool", n, defined)

	initial := states[f.StateIndex(f.Initial)]
	g.printf("// %s runs the machine one input at a time.\n", typeName)
	g.printf("type %s struct {\n\tstate %sState\n}\n\n", typeName, typeName)
	g.printf("// New%s returns the machine in its initial state.\n", typeName)
	g.printf("func New%s() *%s {\n\treturn &%s{state: %s}\n}\n\n", typeName, typeName, typeName, initial)
	g.printf("// State returns the current state.\n")
	g.printf("func (m *%s) State() %sState {\n\treturn m.state\n}\n\n", typeName, typeName)
	g.printf("// Step consumes one input and returns its output. It reports false, and\n")
	g.printf("// keeps the state, when the transition is undefined.\n")
	g.printf("func (m *%s) Step(in %sInput) (%sOutput, bool) {\n", typeName, typeName, typeName)
	g.printf("\tif int(in) >= %d || !%sDefined[m.state][in] {\n\t\treturn 0, false\n\t}\n", n, lower)
	g.printf("\tout := %sOut[m.state][in]\n\tm.state = %sNext[m.state][in]\n\treturn out, true\n}\n\n", lower, lower)
	g.printf("// Run steps through a word and returns its outputs, stopping at the first\n")
	g.printf("// undefined transition.\n")
	g.printf("func (m *%s) Run(word ...%sInput) ([]%sOutput, bool) {\n", typeName, typeName, typeName)
	g.printf("\touts := make([]%sOutput, 0, len(word))\n", typeName)
	g.printf("\tfor _, in := range word {\n\t\tout, ok := m.Step(in)\n\t\tif !ok {\n\t\t\treturn outs, false\n\t\t}\n")
	g.printf("\t\touts = append(outs, out)\n\t}\n\treturn outs, true\n}\n\n")
	g.printf("// Reset returns the machine to its initial state.\n")
	g.printf("func (m *%s) Reset() {\n\tm.state = %s\n}\n", typeName, initial)

	src, err := format.Source([]byte(g.sb.String()))
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w", err)
	}
	return src, nil
}

type generator struct {
	sb       strings.Builder
	typeName string
}

func (g *generator) printf(format string, args ...any) {
	fmt.Fprintf(&g.sb, format, args...)
}

// enum declares a uint16 type with one constant per symbol and a String
// method. It returns the constant names.
func (g *generator) enum(kind, doc string, symbols []string) []string {
	typ := g.typeName + kind
	names := constNames(typ, symbols)
	g.printf("// %s %s.\n", typ, doc)
	g.printf("type %s uint16\n\n", typ)
	if len(names) > 0 {
		g.printf("const (\n")
		for i, name := range names {
			if i == 0 {
				g.printf("\t%s %s = iota\n", name, typ)
			} else {
				g.printf("\t%s\n", name)
			}
		}
		g.printf(")\n\n")
	}
	table := lowerFirst(typ) + "Names"
	g.printf("var %s = [...]string{", table)
	for _, s := range symbols {
		g.printf("%q, ", s)
	}
	g.printf("}\n\n")
	g.printf("func (v %s) String() string {\n", typ)
	g.printf("\tif int(v) < len(%s) {\n\t\treturn %s[v]\n\t}\n\treturn \"unknown\"\n}\n\n", table, table)
	return names
}

// table declares a two-dimensional lookup table indexed by state and input.
func (g *generator) table(name, elem string, width int, cells [][]string) {
	g.printf("var %s = [...][%d]%s{\n", name, width, elem)
	for _, row := range cells {
		g.printf("\t{%s},\n", strings.Join(row, ", "))
	}
	g.printf("}\n\n")
}

// constNames derives unique exported identifiers for symbols.
func constNames(prefix string, symbols []string) []string {
	names := make([]string, len(symbols))
	seen := make(map[string]bool)
	for i, s := range symbols {
		name := prefix + toPascalCase(sanitizeName(s))
		for base, k := name, 2; seen[name]; k++ {
			name = fmt.Sprintf("%s%d", base, k)
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

// usedOutputs lists the outputs of the transitions in first-use order.
func usedOutputs(f *fsm.FSM) []string {
	var outs []string
	for _, t := range f.Transitions {
		if indexOf(outs, t.Output) < 0 {
			outs = append(outs, t.Output)
		}
	}
	return outs
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if !unicode.IsLetter(r) && r != '_' && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return s != ""
}

// sanitizeName keeps letters, digits and underscores, turning separators into
// underscores.
func sanitizeName(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			result.WriteRune(r)
		} else if r == ' ' || r == '-' || r == '/' || r == '.' {
			result.WriteRune('_')
		}
	}
	if result.Len() == 0 {
		return "unnamed"
	}
	return result.String()
}

func lowerFirst(s string) string {
	rs := []rune(s)
	rs[0] = unicode.ToLower(rs[0])
	return string(rs)
}

func toPascalCase(s string) string {
	var result strings.Builder
	for _, word := range strings.FieldsFunc(s, func(r rune) bool { return r == '_' }) {
		rs := []rune(word)
		result.WriteRune(unicode.ToUpper(rs[0]))
		result.WriteString(string(rs[1:]))
	}
	if result.Len() == 0 {
		return "Unknown"
	}
	return result.String()
}
