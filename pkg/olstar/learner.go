package olstar

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ha1tch/olstar/pkg/mealy"
	"github.com/ha1tch/olstar/pkg/oracle"
)

// DefaultMaxDefectRetries bounds how often one reachable defect is refined
// before learning gives up with ErrDefectPersists.
const DefaultMaxDefectRetries = 32

// Stats counts what the learner did. Counts accumulate over the lifetime of
// one Learner and are never shared between learners.
type Stats struct {
	Promotions         int
	Inconsistencies    int
	SuffixesAdded      int
	Refinements        int
	ZeroOutputDefects  int // no output symbol fits every component
	MultiOutputDefects int // several output symbols fit every component
	DefectRetries      int
}

// Learner runs OL* against a membership oracle.
type Learner struct {
	inputs *mealy.Alphabet
	mq     oracle.Membership
	table  *Table

	checkConsistency   bool
	firstInconsistency bool
	projector          Projector
	maxDefectRetries   int
	logger             *slog.Logger

	stats Stats
}

// Option configures a Learner.
type Option func(*Learner)

// WithConsistency enables or disables the per-projection consistency check.
// Without it more reachable defects have to be repaired instead.
func WithConsistency(on bool) Option {
	return func(l *Learner) { l.checkConsistency = on }
}

// WithFirstInconsistency selects whether the first inconsistency found is
// fixed (true) or the suffix fixing the most inconsistencies at once (false).
func WithFirstInconsistency(first bool) Option {
	return func(l *Learner) { l.firstInconsistency = first }
}

// WithProjector replaces the default SingleSymbol projections.
func WithProjector(p Projector) Option {
	return func(l *Learner) { l.projector = p }
}

// WithMaxDefectRetries sets how often a reproduced defect is refined again.
func WithMaxDefectRetries(n int) Option {
	return func(l *Learner) { l.maxDefectRetries = n }
}

// WithLogger sets the logger. Learners log nothing by default.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Learner) { l.logger = logger }
}

// New creates a learner for the input alphabet.
func New(inputs *mealy.Alphabet, mq oracle.Membership, opts ...Option) *Learner {
	l := &Learner{
		inputs:             inputs,
		mq:                 mq,
		table:              NewTable(inputs, mq),
		checkConsistency:   true,
		firstInconsistency: true,
		projector:          SingleSymbol,
		maxDefectRetries:   DefaultMaxDefectRetries,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if l.maxDefectRetries <= 0 {
		l.maxDefectRetries = DefaultMaxDefectRetries
	}
	return l
}

// Inputs returns the input alphabet.
func (l *Learner) Inputs() *mealy.Alphabet { return l.inputs }

// Table returns the observation table. Callers must treat it as read-only.
func (l *Learner) Table() *Table { return l.table }

// Stats returns the counts accumulated so far.
func (l *Learner) Stats() Stats { return l.stats }

// StartLearning initializes the table with the empty prefix and the input
// symbols as suffixes, closes it and repairs all reachable defects.
func (l *Learner) StartLearning() error {
	prefixes := []mealy.Word{mealy.Epsilon}
	suffixes := make([]mealy.Word, l.inputs.Len())
	for k := range suffixes {
		suffixes[k] = mealy.WordOf(l.inputs.Symbol(k))
	}
	if err := l.table.Initialize(prefixes, suffixes); err != nil {
		return err
	}
	if _, err := l.closeTable(); err != nil {
		return err
	}
	if err := l.fixReachableDefects(); err != nil {
		return err
	}
	l.logPhase("learning started")
	return nil
}

// Hypothesis returns the current hypothesis. It returns nil before
// StartLearning. The result must not be used after the next Refine.
func (l *Learner) Hypothesis() *Hypothesis {
	if !l.table.Initialized() {
		return nil
	}
	return newHypothesis(l.table)
}

// Refine incorporates a counterexample: suffixes of its input are added until
// the hypothesis reproduces its output, after which reachable defects are
// repaired. It reports whether the table changed.
func (l *Learner) Refine(ce oracle.Query) (bool, error) {
	if !l.table.Initialized() {
		return false, ErrNotStarted
	}
	if !l.contradicts(ce) {
		return false, fmt.Errorf("%w: %s", ErrNotCounterexample, ce)
	}
	refined, err := l.refine(ce)
	if err != nil {
		return refined, err
	}
	if refined {
		l.stats.Refinements++
		if err := l.fixReachableDefects(); err != nil {
			return refined, err
		}
	}
	l.logPhase("refined")
	return refined, nil
}

// refine adds suffixes of the counterexample and closes the table until the
// hypothesis reproduces its output.
func (l *Learner) refine(ce oracle.Query) (bool, error) {
	refined := false
	for {
		grew := l.addShortestNewSuffix(ce.Input)
		closed, err := l.closeTable()
		if err != nil {
			return refined, err
		}
		refined = refined || grew || closed
		if !l.contradicts(ce) {
			break
		}
		if !grew && !closed {
			return refined, fmt.Errorf("%w: %s", ErrRefinementStalled, ce)
		}
	}
	return refined, nil
}

// addShortestNewSuffix adds the shortest suffix of w the table does not have.
func (l *Learner) addShortestNewSuffix(w mealy.Word) bool {
	for n := 1; n <= w.Len(); n++ {
		if l.table.AddSuffix(w.Suffix(n)) {
			l.stats.SuffixesAdded++
			return true
		}
	}
	return false
}

// contradicts reports whether the current hypothesis fails to reproduce the
// query's output, including when its output is undefined along the way.
func (l *Learner) contradicts(ce oracle.Query) bool {
	out, err := mealy.Run(l.Hypothesis(), ce.Input)
	return err != nil || !out.Equal(ce.Output)
}

func (l *Learner) project() {
	l.table.SetProjections(l.projector(l.table.Outputs()))
}

// closeTable makes the table closed under every projection and, if enabled,
// consistent. Being regular-closed only skips the closedness search: equal
// short rows can still have successors that differ, so consistency is checked
// on every pass. It reports whether rows or suffixes were added.
func (l *Learner) closeTable() (bool, error) {
	refined := false
	for {
		l.project()
		if !l.table.IsRegularClosed() {
			unclosed := l.table.FindUnclosedRows()
			for len(unclosed) > 0 {
				row := SelectClosingRow(unclosed)
				if err := l.table.MakeShort(row); err != nil {
					return refined, err
				}
				refined = true
				l.stats.Promotions++
				l.logger.Debug("promoted row",
					slog.String("row", l.table.Row(row).String()),
					slog.Int("unclosed_classes", len(unclosed)),
					slog.Int("short_rows", len(l.table.short)))
				l.project()
				if l.table.IsRegularClosed() {
					break
				}
				unclosed = l.table.FindUnclosedRows()
			}
		}
		if !l.checkConsistency {
			return refined, nil
		}
		suffix, ok := l.findInconsistency()
		if !ok {
			return refined, nil
		}
		l.stats.Inconsistencies++
		l.logger.Debug("inconsistency",
			slog.String("suffix", suffix.String()),
			slog.Int("short_rows", len(l.table.short)))
		if !l.table.AddSuffix(suffix) {
			return refined, fmt.Errorf("%w: inconsistency suffix %s already present", ErrRefinementStalled, suffix)
		}
		l.stats.SuffixesAdded++
		refined = true
	}
}

func (l *Learner) findInconsistency() (mealy.Word, bool) {
	if l.firstInconsistency {
		return l.table.FindInconsistentRows()
	}
	return MostCommon(l.table.FindAllInconsistentRows())
}

func (l *Learner) logPhase(msg string) {
	l.logger.Info(msg,
		slog.Int("short_rows", len(l.table.short)),
		slog.Int("long_rows", len(l.table.long)),
		slog.Int("suffixes", len(l.table.suffixes)),
		slog.Int("outputs", l.table.outputs.Len()))
}

// SelectClosingRow picks the row occurring in the most unclosed classes, the
// first one found on ties. Choosing a minimum set of rows closing every class
// is a hitting set problem; this is the greedy approximation. It returns -1
// for no classes.
func SelectClosingRow(classes [][]RowID) RowID {
	best, bestCount := RowID(-1), 0
	counts := make(map[RowID]int)
	for _, class := range classes {
		for _, id := range class {
			counts[id]++
			if counts[id] > bestCount {
				best, bestCount = id, counts[id]
			}
		}
	}
	return best
}

// MostCommon returns the word occurring most often, the first one found on
// ties.
func MostCommon(words []mealy.Word) (mealy.Word, bool) {
	var best mealy.Word
	bestCount := 0
	counts := make(map[string]int)
	for _, w := range words {
		k := w.Key()
		counts[k]++
		if counts[k] > bestCount {
			best, bestCount = w, counts[k]
		}
	}
	return best, bestCount > 0
}
