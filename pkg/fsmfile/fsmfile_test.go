package fsmfile

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ha1tch/olstar/pkg/fsm"
	"github.com/ha1tch/olstar/pkg/mealy"
)

func sample() *fsm.FSM {
	f := fsm.New("toggle")
	f.SetInitial("off")
	f.AddTransition("off", "press", "on", "light")
	f.AddTransition("off", "wait", "off", "dark")
	f.AddTransition("on", "press", "off", "dark")
	f.AddTransition("on", "wait", "on", "light")
	return f
}

func equivalent(t *testing.T, a, b *fsm.FSM) {
	t.Helper()
	ma, err := a.ToMealy()
	if err != nil {
		t.Fatal(err)
	}
	mb, err := b.ToMealy()
	if err != nil {
		t.Fatal(err)
	}
	if w := mealy.SeparatingWord(ma, mb, ma.Inputs()); w != nil {
		t.Errorf("machines differ on %s", w)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		data, err := ToJSON(sample(), pretty)
		if err != nil {
			t.Fatal(err)
		}
		back, err := ParseJSON(data)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(back, sample()) {
			t.Errorf("round trip changed the machine:\n%s", data)
		}
	}
}

func TestParseJSONAcceptsTargetList(t *testing.T) {
	data := []byte(`{"type":"mealy","states":["s0"],"alphabet":["a"],"initial":"s0",
		"transitions":[{"from":"s0","input":"a","to":["s0"],"output":"x"}]}`)
	f, err := ParseJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if f.Transitions[0].To != "s0" || f.Transitions[0].Output != "x" {
		t.Errorf("unexpected transition %+v", f.Transitions[0])
	}
}

func TestParseJSONErrors(t *testing.T) {
	cases := map[string]string{
		"not mealy":     `{"type":"dfa","states":["s0"]}`,
		"epsilon":       `{"states":["s0"],"transitions":[{"from":"s0","to":"s0","output":"x"}]}`,
		"no output":     `{"states":["s0"],"transitions":[{"from":"s0","input":"a","to":"s0"}]}`,
		"two targets":   `{"states":["s0"],"transitions":[{"from":"s0","input":"a","to":["s0","s0"],"output":"x"}]}`,
		"no target":     `{"states":["s0"],"transitions":[{"from":"s0","input":"a","output":"x"}]}`,
		"invalid json":  `{`,
		"wrong to type": `{"states":["s0"],"transitions":[{"from":"s0","input":"a","to":[1],"output":"x"}]}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseJSON([]byte(data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDOTRoundTrip(t *testing.T) {
	dot := GenerateDOT(sample(), "toggle")
	if !strings.Contains(dot, `__start0 -> "off"`) {
		t.Errorf("missing start edge:\n%s", dot)
	}
	if !strings.Contains(dot, `"off" -> "off" [label="wait/dark"]`) {
		t.Errorf("missing self loop:\n%s", dot)
	}
	if dot != GenerateDOT(sample(), "toggle") {
		t.Error("output is not deterministic")
	}

	back, err := ParseDOT(strings.NewReader(dot))
	if err != nil {
		t.Fatal(err)
	}
	if back.Initial != "off" {
		t.Errorf("initial = %q", back.Initial)
	}
	equivalent(t, sample(), back)
}

func TestDOTMergesParallelEdges(t *testing.T) {
	f := fsm.New("")
	f.SetInitial("s")
	f.AddTransition("s", "a", "t", "1")
	f.AddTransition("s", "b", "t", "2")
	f.AddTransition("t", "a", "t", "1")
	f.AddTransition("t", "b", "s", "2")
	dot := GenerateDOT(f, "")
	if !strings.Contains(dot, `"s" -> "t" [label="a/1\nb/2"]`) {
		t.Errorf("edges not merged:\n%s", dot)
	}
	back, err := ParseDOT(strings.NewReader(dot))
	if err != nil {
		t.Fatal(err)
	}
	equivalent(t, f, back)
}

func TestParseDOTBenchmarkDialect(t *testing.T) {
	src := `digraph g {
	__start0 [label="" shape="none"];
	s0 [shape="circle" label="s0"];
	s1 [shape="circle" label="s1"];
	s0 -> s1 [label="ICONNECT / OK"];
	s0 -> s0 [label="IDISCONNECT / NOK"];
	s1 -> s1 [label="ICONNECT / NOK"];
	s1 -> s0 [label="IDISCONNECT / OK"];
	__start0 -> s0;
}
`
	f, err := ParseDOT(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Validate(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(f.Alphabet, []string{"ICONNECT", "IDISCONNECT"}) {
		t.Errorf("alphabet = %v", f.Alphabet)
	}
	if !reflect.DeepEqual(f.OutputAlphabet, []string{"OK", "NOK"}) {
		t.Errorf("outputs = %v", f.OutputAlphabet)
	}
	tr, ok := f.GetTransition("s1", "IDISCONNECT")
	if !ok || tr.To != "s0" || tr.Output != "OK" {
		t.Errorf("unexpected transition %+v", tr)
	}
}

func TestParseDOTInitialDefaultsToFirstSource(t *testing.T) {
	f, err := ParseDOT(strings.NewReader("q1 -> q0 [label=\"a/x\"];\nq0 -> q1 [label=\"a/y\"];\n"))
	if err != nil {
		t.Fatal(err)
	}
	if f.Initial != "q1" {
		t.Errorf("initial = %q", f.Initial)
	}
}

func TestParseDOTErrors(t *testing.T) {
	cases := map[string]string{
		"empty":        "digraph g {}\n",
		"no label":     "a -> b;\n",
		"bad label":    `a -> b [label="x"];` + "\n",
		"duplicate":    "a -> b [label=\"x/1\"];\na -> a [label=\"x/2\"];\n",
		"empty output": `a -> b [label="x/ "];` + "\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseDOT(strings.NewReader(src)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"m.json", "m.dot"} {
		path := filepath.Join(dir, name)
		if err := WriteFile(path, sample()); err != nil {
			t.Fatal(err)
		}
		back, err := ReadFile(path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		equivalent(t, sample(), back)
	}

	if _, err := FormatOf("m.txt"); err == nil {
		t.Error("expected error for unknown extension")
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"type":"mealy","states":["s0"],"initial":"s9","transitions":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(bad); err == nil {
		t.Error("expected validation error")
	}
}

func TestRenderPNG(t *testing.T) {
	g := Grid{
		Title:  "table",
		Header: []string{"", "a", "b"},
		Rows: [][]string{
			{"ε", "0", "0"},
			{"a", "1", "0"},
		},
		Short: []bool{true, false},
	}
	var buf bytes.Buffer
	if err := RenderPNG(g, &buf, DefaultPNGOptions()); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() < 30 || b.Dy() < 30 {
		t.Errorf("image too small: %v", b)
	}

	if err := RenderPNG(Grid{}, &buf, DefaultPNGOptions()); err == nil {
		t.Error("expected error for an empty grid")
	}
}
