package olstar

import "github.com/ha1tch/olstar/pkg/mealy"

// RowID identifies a row in its table. IDs are dense and never reused.
type RowID int

// Row is one prefix of the observation table. Short rows are candidate states
// and have one successor row per input symbol; long rows have none. For every
// projection the table resolves a link to the short row this row behaves like
// under that projection.
type Row struct {
	label      mealy.Word
	id         RowID
	successors []RowID
	links      map[int]RowID
}

func newRow(label mealy.Word, id RowID) *Row {
	return &Row{label: label, id: id, links: make(map[int]RowID)}
}

// Label returns the prefix word of the row.
func (r *Row) Label() mealy.Word { return r.label }

// ID returns the row id.
func (r *Row) ID() RowID { return r.id }

// IsShort reports whether the row is a short prefix row.
func (r *Row) IsShort() bool { return r.successors != nil }

// Successor returns the row reached by the input at index k. Only defined for
// short rows.
func (r *Row) Successor(k int) RowID { return r.successors[k] }

// Link returns the short row this row is equivalent to under projection p.
// It is unresolved until the table has been checked for closedness.
func (r *Row) Link(p int) (RowID, bool) {
	id, ok := r.links[p]
	return id, ok
}

func (r *Row) makeShort(inputs int) {
	if r.successors == nil {
		r.successors = make([]RowID, inputs)
	}
}

func (r *Row) resetLinks() {
	r.links = make(map[int]RowID)
}

// String returns the label.
func (r *Row) String() string { return r.label.String() }
