package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/productionplan/core/metrics"
)

func newTestPromSink(t *testing.T, reg prometheus.Registerer) *PromSink {
	t.Helper()
	s, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	sink, ok := s.(*PromSink)
	require.True(t, ok, "expected PromSink")
	return sink
}

func TestPromSink_RecordPlan(t *testing.T) {
	sink := newTestPromSink(t, prometheus.NewRegistry())

	require.NoError(t, sink.RecordPlan(coremetrics.PlanRecord{
		Outcome: coremetrics.OutcomeSuccess, LoadMW: 480, CostEUR: 9313.2, Duration: time.Millisecond,
	}))
	require.NoError(t, sink.RecordPlan(coremetrics.PlanRecord{
		Outcome: coremetrics.OutcomeFailure, LoadMW: 9999, Duration: time.Millisecond,
	}))

	expected := `
# HELP productionplan_requests_total Total number of production plan calculations
# TYPE productionplan_requests_total counter
productionplan_requests_total{outcome="failure"} 1
productionplan_requests_total{outcome="success"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(sink.plans, strings.NewReader(expected)))
	assert.Equal(t, 2, testutil.CollectAndCount(sink.duration))
	assert.Equal(t, 480.0, testutil.ToFloat64(sink.load), "failures must not overwrite the last load")
	assert.Equal(t, 9313.2, testutil.ToFloat64(sink.cost))
}

func TestPromSink_RecordUnitDispatch(t *testing.T) {
	sink := newTestPromSink(t, prometheus.NewRegistry())
	require.NoError(t, sink.RecordUnitDispatch([]coremetrics.UnitDispatch{
		{Name: "windpark1", PowerMW: 90},
		{Name: "gasfiredbig1", PowerMW: 368.4},
	}))
	assert.Equal(t, 368.4, testutil.ToFloat64(sink.units.WithLabelValues("gasfiredbig1")))
	assert.Equal(t, 2, testutil.CollectAndCount(sink.units))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := newTestPromSink(t, reg)
	second := newTestPromSink(t, reg)
	require.NoError(t, first.RecordPlan(coremetrics.PlanRecord{Outcome: coremetrics.OutcomeSuccess}))
	assert.Equal(t, 1.0, testutil.ToFloat64(second.plans.WithLabelValues(coremetrics.OutcomeSuccess)))
}
