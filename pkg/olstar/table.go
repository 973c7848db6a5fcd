// Package olstar implements OL*, an L*-style learner for Mealy machines with
// large, unstructured output alphabets. Rows of the observation table are
// compared per output projection instead of on their raw contents, and a
// reachability search over the combined hypothesis finds the defects the
// local closedness and consistency checks cannot see.
package olstar

import (
	"fmt"
	"strings"

	"github.com/ha1tch/olstar/pkg/mealy"
	"github.com/ha1tch/olstar/pkg/oracle"
)

// projectedIndex groups the short rows of one projection by their projected
// contents. Groups keep the order in which their first row was found.
type projectedIndex struct {
	ids    map[string]int
	groups [][]RowID
}

// Table is the observation table used by OL*. Rows and suffixes are only ever
// added; the table is owned by a single learner and is not safe for concurrent
// use.
type Table struct {
	inputs  *mealy.Alphabet
	outputs *mealy.Alphabet
	mq      oracle.Membership

	rows    []*Row
	byLabel map[string]RowID
	short   []RowID
	long    []RowID
	cells   [][]mealy.Word

	suffixes  []mealy.Word
	suffixSet map[string]bool

	// contentIDs maps the raw contents of short rows to a representative.
	contentIDs map[string]RowID

	projections []Projection
	index       []projectedIndex
	version     uint64
}

// NewTable creates an empty table for the input alphabet.
func NewTable(inputs *mealy.Alphabet, mq oracle.Membership) *Table {
	return &Table{
		inputs:     inputs,
		outputs:    mealy.NewAlphabet(),
		mq:         mq,
		byLabel:    make(map[string]RowID),
		suffixSet:  make(map[string]bool),
		contentIDs: make(map[string]RowID),
	}
}

// Initialize fills the table with the given short prefixes, their one-symbol
// extensions as long rows, and the given suffixes. The first prefix must be
// the empty word and the suffixes must start with the input symbols in order.
func (t *Table) Initialize(prefixes, suffixes []mealy.Word) error {
	if len(t.rows) > 0 {
		return ErrAlreadyInitialized
	}
	if len(prefixes) == 0 || !prefixes[0].IsEmpty() {
		return ErrInvalidPrefixes
	}
	if len(suffixes) < t.inputs.Len() {
		return fmt.Errorf("%w: got %d suffixes for %d inputs", ErrInvalidSuffixes, len(suffixes), t.inputs.Len())
	}
	for k := 0; k < t.inputs.Len(); k++ {
		if suffixes[k].Len() != 1 || suffixes[k][0] != t.inputs.Symbol(k) {
			return fmt.Errorf("%w: suffix %d is %q", ErrInvalidSuffixes, k, suffixes[k])
		}
	}

	for _, s := range suffixes {
		if k := s.Key(); !t.suffixSet[k] {
			t.suffixSet[k] = true
			t.suffixes = append(t.suffixes, s)
		}
	}
	for _, p := range prefixes {
		if _, ok := t.byLabel[p.Key()]; ok {
			continue
		}
		row := t.createRow(p)
		row.makeShort(t.inputs.Len())
		t.short = append(t.short, row.id)
	}
	for _, id := range t.short {
		row := t.rows[id]
		for k := 0; k < t.inputs.Len(); k++ {
			lp := row.label.Append(t.inputs.Symbol(k))
			succ, ok := t.byLabel[lp.Key()]
			if !ok {
				succRow := t.createRow(lp)
				t.long = append(t.long, succRow.id)
				succ = succRow.id
			}
			row.successors[k] = succ
		}
	}

	all := make([]RowID, len(t.rows))
	for i := range all {
		all[i] = RowID(i)
	}
	t.fill(all, t.suffixes)
	for _, id := range t.short {
		t.updateContentID(id, 0)
	}
	t.touch()
	return nil
}

func (t *Table) createRow(label mealy.Word) *Row {
	row := newRow(label, RowID(len(t.rows)))
	t.rows = append(t.rows, row)
	t.byLabel[label.Key()] = row.id
	t.cells = append(t.cells, make([]mealy.Word, 0, len(t.suffixes)))
	return row
}

// fill queries every row for every suffix in one batch and appends the
// answers to the rows' contents.
func (t *Table) fill(ids []RowID, suffixes []mealy.Word) {
	if len(ids) == 0 || len(suffixes) == 0 {
		return
	}
	queries := make([]mealy.Word, 0, len(ids)*len(suffixes))
	for _, id := range ids {
		for _, s := range suffixes {
			queries = append(queries, t.rows[id].label.Concat(s))
		}
	}
	answers := t.mq.AnswerBatch(queries)
	i := 0
	for _, id := range ids {
		for _, s := range suffixes {
			out := answers[i].Suffix(s.Len())
			for _, o := range out {
				t.outputs.Add(o)
			}
			t.cells[id] = append(t.cells[id], out)
			i++
		}
	}
}

// AddSuffix adds one suffix. It reports whether the suffix was new.
func (t *Table) AddSuffix(s mealy.Word) bool {
	return t.AddSuffixes([]mealy.Word{s})
}

// AddSuffixes adds the suffixes that are not present yet and queries every
// row for them. It reports whether the suffix set grew.
func (t *Table) AddSuffixes(suffixes []mealy.Word) bool {
	var added []mealy.Word
	for _, s := range suffixes {
		k := s.Key()
		if t.suffixSet[k] {
			continue
		}
		t.suffixSet[k] = true
		added = append(added, s)
	}
	if len(added) == 0 {
		return false
	}
	oldCount := len(t.suffixes)
	t.suffixes = append(t.suffixes, added...)

	all := make([]RowID, len(t.rows))
	for i := range all {
		all[i] = RowID(i)
	}
	t.fill(all, added)
	// New answers are appended after the old ones, so only keys move.
	for _, id := range t.short {
		t.updateContentID(id, oldCount)
	}
	t.touch()
	return true
}

// updateContentID re-keys a short row after its contents grew from oldCount
// cells to the current number.
func (t *Table) updateContentID(id RowID, oldCount int) {
	if oldCount > 0 {
		old := t.contentKey(t.cells[id][:oldCount])
		if rep, ok := t.contentIDs[old]; ok && rep == id {
			delete(t.contentIDs, old)
		}
	}
	if k := t.contentKey(t.cells[id]); !t.hasContent(k) {
		t.contentIDs[k] = id
	}
}

func (t *Table) hasContent(key string) bool {
	_, ok := t.contentIDs[key]
	return ok
}

// MakeShort promotes a long row to a short row and adds its one-symbol
// extensions as long rows.
func (t *Table) MakeShort(id RowID) error {
	if id < 0 || int(id) >= len(t.rows) || t.rows[id].IsShort() {
		return fmt.Errorf("%w: %d", ErrNotLongRow, id)
	}
	row := t.rows[id]
	for i, l := range t.long {
		if l == id {
			t.long = append(t.long[:i], t.long[i+1:]...)
			break
		}
	}
	t.short = append(t.short, id)
	row.makeShort(t.inputs.Len())
	if k := t.contentKey(t.cells[id]); !t.hasContent(k) {
		t.contentIDs[k] = id
	}

	var created []RowID
	for k := 0; k < t.inputs.Len(); k++ {
		lp := row.label.Append(t.inputs.Symbol(k))
		succ, ok := t.byLabel[lp.Key()]
		if !ok {
			succRow := t.createRow(lp)
			t.long = append(t.long, succRow.id)
			created = append(created, succRow.id)
			succ = succRow.id
		}
		row.successors[k] = succ
	}
	t.fill(created, t.suffixes)
	t.touch()
	return nil
}

// SetProjections installs the projections used by the closedness and
// consistency checks. All projection links are reset.
func (t *Table) SetProjections(ps []Projection) {
	t.projections = ps
	for _, r := range t.rows {
		r.resetLinks()
	}
	t.touch()
}

// IsRegularClosed reports whether every row has the same raw contents as some
// short row. If so, every row is linked to that short row for every
// projection, since equal contents are equal under any projection.
func (t *Table) IsRegularClosed() bool {
	reps := make([]RowID, len(t.rows))
	for i := range t.rows {
		rep, ok := t.contentIDs[t.contentKey(t.cells[i])]
		if !ok {
			return false
		}
		reps[i] = rep
	}
	for i, r := range t.rows {
		for p := range t.projections {
			r.links[p] = reps[i]
		}
	}
	return true
}

// FindUnclosedRows links every row that matches a short row under a
// projection and returns the rows that do not, grouped into classes. All rows
// of a class share their projected contents for one projection, so promoting
// any of them closes the class. A row can appear in several classes.
func (t *Table) FindUnclosedRows() [][]RowID {
	t.ensureIndex()
	var unclosed [][]RowID
	for p, proj := range t.projections {
		classes := make(map[string]int)
		for _, r := range t.rows {
			key := t.projectedKey(proj, t.cells[r.id])
			if g, ok := t.index[p].ids[key]; ok {
				r.links[p] = t.index[p].groups[g][0]
				continue
			}
			c, ok := classes[key]
			if !ok {
				c = len(unclosed)
				classes[key] = c
				unclosed = append(unclosed, nil)
			}
			unclosed[c] = append(unclosed[c], r.id)
		}
	}
	return unclosed
}

// FindInconsistentRows returns a suffix separating two short rows that are
// equal under some projection while one of their successors is not.
func (t *Table) FindInconsistentRows() (mealy.Word, bool) {
	var found mealy.Word
	t.eachInconsistency(func(w mealy.Word) bool {
		found = w
		return false
	})
	return found, found != nil
}

// FindAllInconsistentRows returns the separating suffix of every
// inconsistency, with repetitions, so callers can pick the most useful one.
func (t *Table) FindAllInconsistentRows() []mealy.Word {
	var all []mealy.Word
	t.eachInconsistency(func(w mealy.Word) bool {
		all = append(all, w)
		return true
	})
	return all
}

func (t *Table) eachInconsistency(yield func(mealy.Word) bool) {
	t.ensureIndex()
	for p, proj := range t.projections {
		for _, group := range t.index[p].groups {
			if len(group) < 2 {
				continue
			}
			for k := 0; k < t.inputs.Len(); k++ {
				first := t.projectedCells(proj, t.rows[group[0]].successors[k])
				for _, other := range group[1:] {
					cells := t.projectedCells(proj, t.rows[other].successors[k])
					for c := range first {
						if first[c] == cells[c] {
							continue
						}
						w := mealy.WordOf(t.inputs.Symbol(k)).Concat(t.suffixes[c])
						if !yield(w) {
							return
						}
					}
				}
			}
		}
	}
}

func (t *Table) ensureIndex() {
	if t.index != nil {
		return
	}
	t.index = make([]projectedIndex, len(t.projections))
	for p, proj := range t.projections {
		idx := projectedIndex{ids: make(map[string]int)}
		for _, id := range t.short {
			key := t.projectedKey(proj, t.cells[id])
			g, ok := idx.ids[key]
			if !ok {
				g = len(idx.groups)
				idx.ids[key] = g
				idx.groups = append(idx.groups, nil)
			}
			idx.groups[g] = append(idx.groups[g], id)
		}
		t.index[p] = idx
	}
}

func (t *Table) touch() {
	t.index = nil
	t.version++
}

func (t *Table) contentKey(cells []mealy.Word) string {
	var sb strings.Builder
	for _, w := range cells {
		sb.WriteString(w.Key())
		sb.WriteByte('|')
	}
	return sb.String()
}

func (t *Table) projectedKey(p Projection, cells []mealy.Word) string {
	var sb strings.Builder
	for _, w := range cells {
		projectWord(&sb, p, w)
		sb.WriteByte('|')
	}
	return sb.String()
}

func (t *Table) projectedCells(p Projection, id RowID) []string {
	out := make([]string, len(t.cells[id]))
	var sb strings.Builder
	for c, w := range t.cells[id] {
		sb.Reset()
		projectWord(&sb, p, w)
		out[c] = sb.String()
	}
	return out
}

// output returns the output of row id on the input at index k.
func (t *Table) output(id RowID, k int) string {
	return t.cells[id][k].Last()
}

// Inputs returns the input alphabet.
func (t *Table) Inputs() *mealy.Alphabet { return t.inputs }

// Outputs returns the output symbols observed so far. Callers must not add to
// it.
func (t *Table) Outputs() *mealy.Alphabet { return t.outputs }

// Projections returns the projections currently installed.
func (t *Table) Projections() []Projection { return t.projections }

// Suffixes returns a copy of the suffixes in insertion order.
func (t *Table) Suffixes() []mealy.Word {
	out := make([]mealy.Word, len(t.suffixes))
	copy(out, t.suffixes)
	return out
}

// Row returns the row with the given id.
func (t *Table) Row(id RowID) *Row { return t.rows[id] }

// Rows returns all rows in creation order.
func (t *Table) Rows() []*Row {
	out := make([]*Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// ShortRows returns the short rows in promotion order.
func (t *Table) ShortRows() []*Row { return t.pick(t.short) }

// LongRows returns the long rows.
func (t *Table) LongRows() []*Row { return t.pick(t.long) }

func (t *Table) pick(ids []RowID) []*Row {
	out := make([]*Row, len(ids))
	for i, id := range ids {
		out[i] = t.rows[id]
	}
	return out
}

// Cell returns the output word recorded for row id under suffix column c.
func (t *Table) Cell(id RowID, c int) mealy.Word { return t.cells[id][c] }

// Version increases with every mutation of rows, suffixes or projections.
func (t *Table) Version() uint64 { return t.version }

// Initialized reports whether Initialize has run.
func (t *Table) Initialized() bool { return len(t.rows) > 0 }

// Contents returns a copy of the cells of a row, one per suffix.
func (t *Table) Contents(id RowID) []mealy.Word {
	out := make([]mealy.Word, len(t.cells[id]))
	copy(out, t.cells[id])
	return out
}
