package olstar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/olstar/pkg/mealy"
)

var (
	symA = mealy.WordOf("a")
	symB = mealy.WordOf("b")
)

func newCounterTable(t *testing.T) *Table {
	t.Helper()
	tbl := NewTable(mealy.NewAlphabet("a", "b"), simulator(t, modCounter(t)))
	require.NoError(t, tbl.Initialize([]mealy.Word{mealy.Epsilon}, []mealy.Word{symA, symB}))
	return tbl
}

func TestInitializePreconditions(t *testing.T) {
	inputs := mealy.NewAlphabet("a", "b")
	sim := simulator(t, modCounter(t))

	tests := []struct {
		name     string
		prefixes []mealy.Word
		suffixes []mealy.Word
		err      error
	}{
		{"no prefixes", nil, []mealy.Word{symA, symB}, ErrInvalidPrefixes},
		{"first prefix not empty", []mealy.Word{symA}, []mealy.Word{symA, symB}, ErrInvalidPrefixes},
		{"missing input suffix", []mealy.Word{mealy.Epsilon}, []mealy.Word{symA}, ErrInvalidSuffixes},
		{"suffixes out of order", []mealy.Word{mealy.Epsilon}, []mealy.Word{symB, symA}, ErrInvalidSuffixes},
		{"multi-symbol leading suffix", []mealy.Word{mealy.Epsilon}, []mealy.Word{mealy.WordOf("a", "a"), symB}, ErrInvalidSuffixes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := NewTable(inputs, sim)
			err := tbl.Initialize(tt.prefixes, tt.suffixes)
			assert.ErrorIs(t, err, tt.err)
			assert.False(t, tbl.Initialized())
		})
	}

	tbl := NewTable(inputs, sim)
	require.NoError(t, tbl.Initialize([]mealy.Word{mealy.Epsilon}, []mealy.Word{symA, symB}))
	assert.ErrorIs(t, tbl.Initialize([]mealy.Word{mealy.Epsilon}, []mealy.Word{symA, symB}), ErrAlreadyInitialized)
}

func TestInitializeFillsRows(t *testing.T) {
	tbl := newCounterTable(t)

	require.Len(t, tbl.ShortRows(), 1)
	require.Len(t, tbl.LongRows(), 2)
	eps := tbl.Row(0)
	assert.True(t, eps.Label().IsEmpty())
	assert.True(t, eps.IsShort())
	assert.Equal(t, "a", tbl.Row(eps.Successor(0)).String())
	assert.Equal(t, "b", tbl.Row(eps.Successor(1)).String())

	assert.Equal(t, mealy.WordOf("0"), tbl.Cell(0, 0))
	assert.Equal(t, mealy.WordOf("1"), tbl.Cell(1, 0))
	assert.Equal(t, mealy.WordOf("0"), tbl.Cell(2, 1))
	assert.Equal(t, []string{"0", "1"}, tbl.Outputs().Symbols())
}

func TestInitializeWithExtraPrefixes(t *testing.T) {
	tbl := NewTable(mealy.NewAlphabet("a", "b"), simulator(t, modCounter(t)))
	prefixes := []mealy.Word{mealy.Epsilon, symA, symA}
	suffixes := []mealy.Word{symA, symB, symA}
	require.NoError(t, tbl.Initialize(prefixes, suffixes))

	assert.Len(t, tbl.ShortRows(), 2, "duplicate prefixes collapse")
	assert.Len(t, tbl.Suffixes(), 2, "duplicate suffixes collapse")
	// ε·a is the short row a, not a new long row.
	assert.Equal(t, RowID(1), tbl.Row(0).Successor(0))
	assert.Len(t, tbl.LongRows(), 3)
}

func TestAddSuffix(t *testing.T) {
	tbl := newCounterTable(t)
	v := tbl.Version()

	aa := mealy.WordOf("a", "a")
	assert.True(t, tbl.AddSuffix(aa))
	assert.False(t, tbl.AddSuffix(aa))
	assert.False(t, tbl.AddSuffixes([]mealy.Word{symA, aa}))
	assert.Greater(t, tbl.Version(), v)

	require.Len(t, tbl.Suffixes(), 3)
	assert.Equal(t, mealy.WordOf("0", "1"), tbl.Cell(0, 2))
	assert.Equal(t, mealy.WordOf("1", "2"), tbl.Cell(1, 2))
	assert.True(t, tbl.Outputs().Contains("2"))
}

func TestMakeShort(t *testing.T) {
	tbl := newCounterTable(t)

	assert.ErrorIs(t, tbl.MakeShort(0), ErrNotLongRow)
	assert.ErrorIs(t, tbl.MakeShort(42), ErrNotLongRow)

	require.NoError(t, tbl.MakeShort(1))
	assert.Len(t, tbl.ShortRows(), 2)
	assert.Len(t, tbl.LongRows(), 3)
	assert.Equal(t, "a a", tbl.Row(tbl.Row(1).Successor(0)).String())
	assert.Equal(t, "a b", tbl.Row(tbl.Row(1).Successor(1)).String())
	assert.Equal(t, mealy.WordOf("2"), tbl.Cell(3, 0))
	assert.ErrorIs(t, tbl.MakeShort(1), ErrNotLongRow)
}

func TestClosednessChecks(t *testing.T) {
	tbl := newCounterTable(t)
	tbl.SetProjections(SingleSymbol(tbl.Outputs()))

	assert.False(t, tbl.IsRegularClosed())
	// Row a differs from ε under both projections.
	assert.Equal(t, [][]RowID{{1}, {1}}, tbl.FindUnclosedRows())
	link, ok := tbl.Row(2).Link(0)
	require.True(t, ok)
	assert.Equal(t, RowID(0), link)
	_, ok = tbl.Row(1).Link(0)
	assert.False(t, ok)

	require.NoError(t, tbl.MakeShort(1))
	require.NoError(t, tbl.MakeShort(3))
	tbl.SetProjections(SingleSymbol(tbl.Outputs()))
	require.True(t, tbl.IsRegularClosed())
	assert.Empty(t, tbl.FindUnclosedRows())
	for _, r := range tbl.Rows() {
		for p := range tbl.Projections() {
			_, ok := r.Link(p)
			assert.True(t, ok, "row %s projection %d", r, p)
		}
	}
	// a·a·a behaves like ε.
	link, _ = tbl.Row(5).Link(2)
	assert.Equal(t, RowID(0), link)
}

func TestInconsistencyChecks(t *testing.T) {
	tbl := newCounterTable(t)
	require.NoError(t, tbl.MakeShort(1))
	require.NoError(t, tbl.MakeShort(3))
	tbl.SetProjections(SingleSymbol(tbl.Outputs()))

	// a and a·a agree on "is it 0" but their a-successors do not.
	w, ok := tbl.FindInconsistentRows()
	require.True(t, ok)
	assert.Equal(t, mealy.WordOf("a", "a"), w)

	all := tbl.FindAllInconsistentRows()
	require.NotEmpty(t, all)
	assert.Equal(t, w, all[0])

	require.True(t, tbl.AddSuffix(w))
	tbl.SetProjections(SingleSymbol(tbl.Outputs()))
	_, ok = tbl.FindInconsistentRows()
	assert.False(t, ok)
	assert.Empty(t, tbl.FindAllInconsistentRows())
}

func TestSetProjectionsResetsLinks(t *testing.T) {
	tbl := newCounterTable(t)
	tbl.SetProjections(SingleSymbol(tbl.Outputs()))
	tbl.FindUnclosedRows()
	_, ok := tbl.Row(2).Link(0)
	require.True(t, ok)

	v := tbl.Version()
	tbl.SetProjections(SingleSymbol(tbl.Outputs()))
	_, ok = tbl.Row(2).Link(0)
	assert.False(t, ok)
	assert.Greater(t, tbl.Version(), v)
}

func TestSelectClosingRow(t *testing.T) {
	tests := []struct {
		name    string
		classes [][]RowID
		want    RowID
	}{
		{"empty", nil, -1},
		{"single", [][]RowID{{4}}, 4},
		{"tie takes first", [][]RowID{{5, 6}}, 5},
		{"most classes", [][]RowID{{3, 4}, {2, 3, 4}, {3, 4}}, 3},
		{"later row wins on count", [][]RowID{{1}, {2}, {2}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectClosingRow(tt.classes))
		})
	}
}

func TestMostCommon(t *testing.T) {
	_, ok := MostCommon(nil)
	assert.False(t, ok)

	w, ok := MostCommon([]mealy.Word{symA, symB, symB, symA})
	require.True(t, ok)
	assert.Equal(t, symB, w)

	w, _ = MostCommon([]mealy.Word{mealy.WordOf("a", "b"), symA})
	assert.Equal(t, mealy.WordOf("a", "b"), w)
}
