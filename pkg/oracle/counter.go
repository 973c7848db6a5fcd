package oracle

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/ha1tch/olstar/pkg/mealy"
)

// Counter forwards membership queries and counts queries and symbols. The
// counts are exported as prometheus counters labelled with the counter's name,
// so the learning and the testing oracle can be told apart.
type Counter struct {
	delegate Membership
	name     string
	queries  prometheus.Counter
	symbols  prometheus.Counter
}

// CounterMetrics holds the counter vectors shared by all Counters registered
// on one registry.
type CounterMetrics struct {
	queries *prometheus.CounterVec
	symbols *prometheus.CounterVec
}

// NewCounterMetrics creates the query and symbol counters and registers them
// with reg. A nil reg leaves them unregistered.
func NewCounterMetrics(reg prometheus.Registerer) (*CounterMetrics, error) {
	m := &CounterMetrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "olstar",
			Name:      "membership_queries_total",
			Help:      "Membership queries forwarded to the target.",
		}, []string{"oracle"}),
		symbols: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "olstar",
			Name:      "membership_symbols_total",
			Help:      "Input symbols submitted with membership queries.",
		}, []string{"oracle"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.queries, m.symbols} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// NewCounter wraps delegate. A nil metrics value creates private, unregistered
// counters.
func NewCounter(delegate Membership, name string, metrics *CounterMetrics) *Counter {
	if metrics == nil {
		// Unregistered metrics never fail.
		metrics, _ = NewCounterMetrics(nil)
	}
	return &Counter{
		delegate: delegate,
		name:     name,
		queries:  metrics.queries.WithLabelValues(name),
		symbols:  metrics.symbols.WithLabelValues(name),
	}
}

// Name returns the label the counter reports under.
func (c *Counter) Name() string { return c.name }

// Answer counts and forwards a single query.
func (c *Counter) Answer(w mealy.Word) mealy.Word {
	c.queries.Inc()
	c.symbols.Add(float64(len(w)))
	return c.delegate.Answer(w)
}

// AnswerBatch counts and forwards a batch of queries.
func (c *Counter) AnswerBatch(ws []mealy.Word) []mealy.Word {
	n := 0
	for _, w := range ws {
		n += len(w)
	}
	c.queries.Add(float64(len(ws)))
	c.symbols.Add(float64(n))
	return c.delegate.AnswerBatch(ws)
}

// Queries returns the number of queries forwarded so far.
func (c *Counter) Queries() int64 { return readCounter(c.queries) }

// Symbols returns the number of input symbols forwarded so far.
func (c *Counter) Symbols() int64 { return readCounter(c.symbols) }

func readCounter(c prometheus.Counter) int64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return int64(m.GetCounter().GetValue())
}
