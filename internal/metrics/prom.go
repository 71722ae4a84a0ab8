package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// PromRecorder records pruning outcomes in Prometheus metrics.
type PromRecorder struct {
	params  *prometheus.CounterVec
	density *prometheus.HistogramVec
}

// NewPromRecorder registers pruning metrics on the provided registerer.
// If reg is nil, the default registerer is used. If the collectors are already
// registered, the existing ones are reused.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	params := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "born_asp_params_total",
		Help: "Parameters visited by sparsity pruning, by layer type and outcome",
	}, []string{"layer", "outcome"})
	density := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "born_asp_param_density",
		Help:    "Fraction of non-zero weights after pruning",
		Buckets: prometheus.LinearBuckets(0.125, 0.125, 8),
	}, []string{"layer"})

	var err error
	if params, err = register(reg, params); err != nil {
		return nil, err
	}
	if density, err = register(reg, density); err != nil {
		return nil, err
	}
	return &PromRecorder{params: params, density: density}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveParam implements Recorder.
func (r *PromRecorder) ObserveParam(layer string, outcome Outcome, density float64) {
	r.params.WithLabelValues(layer, string(outcome)).Inc()
	if outcome == Pruned || outcome == Skipped {
		r.density.WithLabelValues(layer).Observe(density)
	}
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format, for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
