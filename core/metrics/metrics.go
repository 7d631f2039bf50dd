package metrics

import (
	"time"
)

// Outcome labels used by every sink.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// PlanRecord summarises one production plan calculation.
type PlanRecord struct {
	PlanID   string
	LoadMW   float64
	Units    int
	CostEUR  float64
	Outcome  string
	Reason   string
	Duration time.Duration
	Time     time.Time
}

// MetricsSink records plan calculations for observability purposes.
type MetricsSink interface {
	RecordPlan(rec PlanRecord) error
}

// UnitDispatch is the setpoint given to one powerplant by a plan.
type UnitDispatch struct {
	PlanID  string
	Name    string
	PowerMW float64
	// MeritRank is the position of the unit in cost order, starting at 0.
	MeritRank int
	Time      time.Time
}

// UnitDispatchRecorder is implemented by sinks able to record per-unit output.
type UnitDispatchRecorder interface {
	RecordUnitDispatch(units []UnitDispatch) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlan(PlanRecord) error             { return nil }
func (NopSink) RecordUnitDispatch([]UnitDispatch) error { return nil }

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPlan forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordPlan(rec PlanRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordPlan(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordUnitDispatch forwards unit setpoints when supported by the sink.
func (m *MultiSink) RecordUnitDispatch(units []UnitDispatch) error {
	for _, s := range m.Sinks {
		if r, ok := s.(UnitDispatchRecorder); ok {
			if err := r.RecordUnitDispatch(units); err != nil {
				return err
			}
		}
	}
	return nil
}
