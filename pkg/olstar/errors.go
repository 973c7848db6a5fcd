package olstar

import "errors"

// Precondition violations. They signal a bug in the caller and are always
// returned, never ignored.
var (
	ErrAlreadyInitialized = errors.New("observation table already initialized")
	ErrInvalidPrefixes    = errors.New("first prefix must be the empty word")
	ErrInvalidSuffixes    = errors.New("leading suffixes must be the input symbols in order")
	ErrNotLongRow         = errors.New("row is not a long prefix row")
	ErrNotStarted         = errors.New("learning has not been started")
	ErrNotCounterexample  = errors.New("hypothesis already explains the query")
)

// Failures of the refinement loop. With a deterministic target and the default
// projections these do not occur; they indicate oracle non-determinism,
// projections that cannot tell output symbols apart, or an exhausted budget.
var (
	ErrRefinementStalled = errors.New("counterexample still unexplained and the table cannot grow")
	ErrDefectPersists    = errors.New("reachable defect survives repeated refinement")
	ErrRoundLimit        = errors.New("equivalence round limit reached")
)
