package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes simulation throughput metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	TrajectoriesTotal prometheus.Counter
	StepsTotal        prometheus.Counter
	NonFiniteTotal    prometheus.Counter
	ScalarDuration    prometheus.Histogram
	BatchDuration     prometheus.Histogram
}

// NewCollector registers simulation metrics against the provided registerer.
// Registering twice against the same registerer reuses the existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	buckets := []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

	trajectories, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rickersim_trajectories_total",
		Help: "Number of trajectories generated.",
	}), "rickersim_trajectories_total")
	if err != nil {
		return nil, err
	}

	steps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rickersim_steps_total",
		Help: "Number of population values generated across all trajectories.",
	}), "rickersim_steps_total")
	if err != nil {
		return nil, err
	}

	nonFinite, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rickersim_nonfinite_trajectories_total",
		Help: "Trajectories containing NaN or infinite values.",
	}), "rickersim_nonfinite_trajectories_total")
	if err != nil {
		return nil, err
	}

	scalar, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rickersim_scalar_run_duration_seconds",
		Help:    "Wall time of scalar collection runs.",
		Buckets: buckets,
	}), "rickersim_scalar_run_duration_seconds")
	if err != nil {
		return nil, err
	}

	batch, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rickersim_batch_run_duration_seconds",
		Help:    "Wall time of vectorized batch runs.",
		Buckets: buckets,
	}), "rickersim_batch_run_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:          gatherer,
		TrajectoriesTotal: trajectories,
		StepsTotal:        steps,
		NonFiniteTotal:    nonFinite,
		ScalarDuration:    scalar,
		BatchDuration:     batch,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveTrajectory counts one generated trajectory of the given length.
func (c *Collector) ObserveTrajectory(steps int, finite bool) {
	if c == nil {
		return
	}
	c.TrajectoriesTotal.Inc()
	c.StepsTotal.Add(float64(steps))
	if !finite {
		c.NonFiniteTotal.Inc()
	}
}

func (c *Collector) ObserveScalarRun(d time.Duration) {
	if c == nil {
		return
	}
	c.ScalarDuration.Observe(d.Seconds())
}

func (c *Collector) ObserveBatchRun(d time.Duration) {
	if c == nil {
		return
	}
	c.BatchDuration.Observe(d.Seconds())
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
