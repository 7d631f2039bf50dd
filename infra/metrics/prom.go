package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/productionplan/core/metrics"
)

// PromSink records production plan calculations in Prometheus metrics.
type PromSink struct {
	plans    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	load     prometheus.Gauge
	cost     prometheus.Gauge
	units    *prometheus.GaugeVec
}

// NewPromSink registers plan metrics on the default Prometheus registerer.
// The Prometheus server should be started separately with StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	plans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "productionplan_requests_total",
		Help: "Total number of production plan calculations",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "productionplan_duration_seconds",
		Help:    "Time spent computing a production plan",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"outcome"})
	load := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "productionplan_last_load_mw",
		Help: "Load requested by the last successful plan",
	})
	cost := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "productionplan_last_cost_eur",
		Help: "Hourly cost of the last successful plan",
	})
	units := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "productionplan_unit_power_mw",
		Help: "Power assigned to each powerplant by the last plan",
	}, []string{"powerplant"})

	var err error
	if plans, err = register(reg, plans); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if load, err = register(reg, load); err != nil {
		return nil, err
	}
	if cost, err = register(reg, cost); err != nil {
		return nil, err
	}
	if units, err = register(reg, units); err != nil {
		return nil, err
	}
	return &PromSink{plans: plans, duration: duration, load: load, cost: cost, units: units}, nil
}

// register adds c to reg and reuses an identical collector that is already
// registered.
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

// RecordPlan counts the calculation and observes its duration.
func (s *PromSink) RecordPlan(rec coremetrics.PlanRecord) error {
	s.plans.WithLabelValues(rec.Outcome).Inc()
	s.duration.WithLabelValues(rec.Outcome).Observe(rec.Duration.Seconds())
	if rec.Outcome == coremetrics.OutcomeSuccess {
		s.load.Set(rec.LoadMW)
		s.cost.Set(rec.CostEUR)
	}
	return nil
}

// RecordUnitDispatch sets the per-unit power gauge.
func (s *PromSink) RecordUnitDispatch(units []coremetrics.UnitDispatch) error {
	for _, u := range units {
		s.units.WithLabelValues(u.Name).Set(u.PowerMW)
	}
	return nil
}
