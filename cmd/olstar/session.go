package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ha1tch/olstar/internal/config"
	"github.com/ha1tch/olstar/pkg/fsmfile"
	"github.com/ha1tch/olstar/pkg/mealy"
	"github.com/ha1tch/olstar/pkg/olstar"
	"github.com/ha1tch/olstar/pkg/oracle"
)

// learnOptions are the flags shared by every command that runs the learner.
type learnOptions struct {
	method         string
	depth          int
	words          int
	seed           int64
	maxRounds      int
	cacheSize      int
	noConsistency  bool
	mostCommon     bool
	noEarlyBreak   bool
	projectionFile string
	metricsFile    string
}

func (o *learnOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.method, "method", "m", "", "equivalence oracle: wmethod, random or perfect")
	f.IntVar(&o.depth, "depth", 0, "W-method look-ahead depth")
	f.IntVar(&o.words, "words", 0, "number of random test words")
	f.Int64Var(&o.seed, "seed", 0, "seed of the random test words")
	f.IntVar(&o.maxRounds, "max-rounds", 0, "maximum number of equivalence queries (0 for no limit)")
	f.IntVar(&o.cacheSize, "cache-size", 0, "membership cache entries (0 disables the cache)")
	f.BoolVar(&o.noConsistency, "no-consistency", false, "skip the per-projection consistency check")
	f.BoolVar(&o.mostCommon, "most-common", false, "fix the inconsistency shared by most row pairs first")
	f.BoolVar(&o.noEarlyBreak, "no-early-break", false, "always run the testing oracle, even when the target is known equivalent")
	f.StringVarP(&o.projectionFile, "projections", "p", "", "projection map file (default: one projection per output symbol)")
	f.StringVar(&o.metricsFile, "metrics", "", "write query counters in Prometheus text format to this file")
}

// apply overrides the configuration with the flags the user set.
func (o *learnOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("method") {
		cfg.Equivalence.Method = o.method
	}
	if f.Changed("depth") {
		cfg.Equivalence.Depth = o.depth
	}
	if f.Changed("words") {
		cfg.Equivalence.Words = o.words
	}
	if f.Changed("seed") {
		cfg.Equivalence.Seed = o.seed
	}
	if f.Changed("max-rounds") {
		cfg.MaxRounds = o.maxRounds
	}
	if f.Changed("cache-size") {
		cfg.Cache.Size = o.cacheSize
	}
	if o.noConsistency {
		cfg.Learner.CheckConsistency = false
	}
	if o.mostCommon {
		cfg.Learner.FirstInconsistency = false
	}
	if o.noEarlyBreak {
		cfg.Equivalence.EarlyBreak = false
	}
	return cfg.Validate()
}

// session wires a target into the learner: a counter and a cache per oracle,
// all counters registered in one registry.
type session struct {
	cfg    config.Config
	logger *slog.Logger
	target *mealy.Compact

	registry *prometheus.Registry
	learning *oracle.Counter
	testing  *oracle.Counter
	caches   map[string]*oracle.Cache

	learner *olstar.Learner
	eq      oracle.Equivalence
}

func newSession(cfg config.Config, logger *slog.Logger, target *mealy.Compact, projectionFile string) (*session, error) {
	sim, err := oracle.NewSimulator(target)
	if err != nil {
		return nil, err
	}
	s := &session{
		cfg:      cfg,
		logger:   logger,
		target:   target,
		registry: prometheus.NewRegistry(),
		caches:   make(map[string]*oracle.Cache),
	}
	metrics, err := oracle.NewCounterMetrics(s.registry)
	if err != nil {
		return nil, err
	}
	s.learning = oracle.NewCounter(sim, "learning", metrics)
	s.testing = oracle.NewCounter(sim, "testing", metrics)

	mq, err := s.cached("learning", s.learning)
	if err != nil {
		return nil, err
	}
	tq, err := s.cached("testing", s.testing)
	if err != nil {
		return nil, err
	}

	opts := []olstar.Option{
		olstar.WithConsistency(cfg.Learner.CheckConsistency),
		olstar.WithFirstInconsistency(cfg.Learner.FirstInconsistency),
		olstar.WithMaxDefectRetries(cfg.Learner.MaxDefectRetries),
		olstar.WithLogger(logger),
	}
	if projectionFile != "" {
		ps, err := readProjections(projectionFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, olstar.WithProjector(olstar.FixedProjector(ps)))
	}
	s.learner = olstar.New(target.Inputs(), mq, opts...)
	s.eq = s.equivalence(tq)
	return s, nil
}

func (s *session) cached(name string, mq oracle.Membership) (oracle.Membership, error) {
	if s.cfg.Cache.Size == 0 {
		return mq, nil
	}
	c, err := oracle.NewCache(mq, s.cfg.Cache.Size)
	if err != nil {
		return nil, err
	}
	s.caches[name] = c
	return c, nil
}

func (s *session) equivalence(mq oracle.Membership) oracle.Equivalence {
	eq := s.cfg.Equivalence
	var o oracle.Equivalence
	switch eq.Method {
	case config.MethodPerfect:
		return oracle.NewPerfect(s.target)
	case config.MethodRandom:
		o = oracle.NewRandomWords(mq, eq.Words, eq.MinLength, eq.MaxLength, eq.Seed)
	default:
		o = oracle.NewWMethod(mq, eq.Depth)
	}
	if eq.EarlyBreak {
		o = oracle.NewEarlyBreak(s.target, o)
	}
	return o
}

func (s *session) run() (olstar.Result, error) {
	s.logger.Info("learning",
		slog.Int("target_states", s.target.NumStates()),
		slog.Int("inputs", s.target.Inputs().Len()),
		slog.String("method", s.cfg.Equivalence.Method))
	res, err := olstar.Learn(s.learner, s.eq, s.cfg.MaxRounds)
	if err != nil {
		return res, err
	}
	s.logger.Info("learned",
		slog.Int("rounds", res.Rounds),
		slog.Int("states", res.Hypothesis.Size()),
		slog.Int64("learning_queries", s.learning.Queries()),
		slog.Int64("testing_queries", s.testing.Queries()))
	return res, nil
}

// writeMetrics dumps the counters in the Prometheus text format.
func (s *session) writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, s.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func readProjections(path string) ([]olstar.Projection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ps, err := olstar.ParseProjections(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ps, nil
}

// loadTarget reads a machine file and converts it into a simulatable target.
func loadTarget(path string) (*mealy.Compact, string, error) {
	f, err := fsmfile.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	m, err := f.ToMealy()
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return m, f.Name, nil
}
