package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/productionplan/core/metrics"
)

type lineRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (l *lineRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		l.mu.Lock()
		l.lines = append(l.lines, strings.TrimSpace(string(data)))
		l.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestInfluxSink_RecordPlan(t *testing.T) {
	rec := &lineRecorder{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()
	require.NoError(t, sink.RecordPlan(coremetrics.PlanRecord{
		PlanID:   "p1",
		LoadMW:   480,
		Units:    6,
		CostEUR:  9313.2,
		Outcome:  coremetrics.OutcomeSuccess,
		Duration: 2 * time.Millisecond,
		Time:     now,
	}))

	p := write.NewPointWithMeasurement("production_plan").
		AddTag("plan_id", "p1").
		AddTag("outcome", "success").
		AddTag("component", "planner").
		AddField("load_mw", 480.0).
		AddField("cost_eur", 9313.2).
		AddField("units", 6).
		AddField("duration_ms", 2.0).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	require.Len(t, rec.lines, 1)
	assert.Equal(t, expected, rec.lines[0])
}

func TestInfluxSink_RecordUnitDispatch(t *testing.T) {
	rec := &lineRecorder{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()
	require.NoError(t, sink.RecordUnitDispatch([]coremetrics.UnitDispatch{
		{PlanID: "p1", Name: "windpark1", PowerMW: 90, MeritRank: 0, Time: time.Now()},
		{PlanID: "p1", Name: "gasfiredbig1", PowerMW: 368.4, MeritRank: 1, Time: time.Now()},
	}))
	require.Len(t, rec.lines, 2)
	assert.Contains(t, rec.lines[0], "unit_dispatch,plan_id=p1,powerplant=windpark1")
	assert.Contains(t, rec.lines[1], "power_mw=368.4")
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	assert.True(t, called, "health endpoint not queried")
	assert.IsType(t, coremetrics.NopSink{}, sink)
}
