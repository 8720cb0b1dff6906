package governance

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "govern"

type metrics struct {
	participants prometheus.Gauge
	proposals    prometheus.Gauge
	votes        *prometheus.CounterVec
	overwrites   prometheus.Counter
	failures     *prometheus.CounterVec
	tallyHits    prometheus.Counter
	weights      prometheus.Histogram
}

// newMetrics builds the ledger collectors, registering them with reg when
// it is not nil.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		participants: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "participants",
			Help:      "Number of registered participants",
		}),
		proposals: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "proposals",
			Help:      "Number of proposals",
		}),
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "votes_total",
			Help:      "Votes cast by value",
		}, []string{"value"}),
		overwrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "vote_overwrites_total",
			Help:      "Votes that replaced an earlier vote of the same participant",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "identity_failures_total",
			Help:      "Identity provider failures by operation",
		}, []string{"op"}),
		tallyHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tally_cache_hits_total",
			Help:      "Consensus checks served from the tally cache",
		}),
		weights: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "vote_weight",
			Help:      "Adjusted weight of cast votes",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
	}

	if reg == nil {
		return m, nil
	}

	for _, c := range []prometheus.Collector{
		m.participants,
		m.proposals,
		m.votes,
		m.overwrites,
		m.failures,
		m.tallyHits,
		m.weights,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *metrics) observeVote(v *Vote, replaced bool) {
	m.votes.WithLabelValues(strconv.FormatBool(v.Value)).Inc()
	m.weights.Observe(v.Weight)

	if replaced {
		m.overwrites.Inc()
	}
}
