package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "modelcore"

// Prometheus is a Recorder backed by client_golang collectors registered on
// a caller-supplied registerer.
type Prometheus struct {
	events       *prometheus.CounterVec
	failures     *prometheus.CounterVec
	edges        prometheus.Gauge
	stackDepth   *prometheus.GaugeVec
	transactions *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them on reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "events_published_total",
			Help:      "Change events delivered by the event bus.",
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "handler_failures_total",
			Help:      "Handlers or replay steps that failed and were recovered.",
		}, []string{"component"}),
		edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "edges",
			Help:      "Element/property pairs currently watched by the dispatcher.",
		}),
		stackDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "undo",
			Name:      "stack_depth",
			Help:      "Transactions held on the undo and redo stacks.",
		}, []string{"stack"}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "undo",
			Name:      "transactions_total",
			Help:      "Finished transactions by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{p.events, p.failures, p.edges, p.stackDepth, p.transactions} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return p, nil
}

func (p *Prometheus) EventPublished(kind string) {
	p.events.WithLabelValues(kind).Inc()
}

func (p *Prometheus) HandlerFailed(component string) {
	p.failures.WithLabelValues(component).Inc()
}

func (p *Prometheus) EdgesTracked(n int) {
	p.edges.Set(float64(n))
}

func (p *Prometheus) StackDepth(stack string, n int) {
	p.stackDepth.WithLabelValues(stack).Set(float64(n))
}

func (p *Prometheus) TransactionFinished(outcome string) {
	p.transactions.WithLabelValues(outcome).Inc()
}
