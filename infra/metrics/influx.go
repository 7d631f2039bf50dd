package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/productionplan/core/metrics"
	"github.com/kilianp07/productionplan/infra/logger"
)

// InfluxSink writes plan events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordPlan writes one production_plan point.
func (s *InfluxSink) RecordPlan(rec coremetrics.PlanRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("production_plan").
		AddTag("plan_id", rec.PlanID).
		AddTag("outcome", rec.Outcome).
		AddTag("component", "planner").
		AddField("load_mw", round3(rec.LoadMW)).
		AddField("cost_eur", round3(rec.CostEUR)).
		AddField("units", rec.Units).
		AddField("duration_ms", round3(rec.Duration.Seconds()*1000))
	if rec.Reason != "" {
		p = p.AddField("reason", rec.Reason)
	}
	p = p.SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordUnitDispatch writes a unit_dispatch point per powerplant.
func (s *InfluxSink) RecordUnitDispatch(units []coremetrics.UnitDispatch) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, u := range units {
		p := write.NewPointWithMeasurement("unit_dispatch").
			AddTag("plan_id", u.PlanID).
			AddTag("powerplant", u.Name).
			AddField("power_mw", round3(u.PowerMW)).
			AddField("merit_rank", u.MeritRank).
			SetTime(u.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
