package planlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kilianp07/productionplan/core/events"
	"github.com/kilianp07/productionplan/core/logger"
	"github.com/kilianp07/productionplan/core/metrics"
	"github.com/kilianp07/productionplan/internal/eventbus"
)

// FromEvent converts a plan event into a log record.
func FromEvent(ev events.PlanEvent) LogRecord {
	rec := LogRecord{
		PlanID:     ev.PlanID,
		Timestamp:  ev.Time,
		Load:       json.Number(ev.Load.String()),
		Units:      ev.Units,
		Outcome:    metrics.OutcomeSuccess,
		DurationMS: float64(ev.Duration) / float64(time.Millisecond),
	}
	if !ev.Succeeded() {
		rec.Outcome = metrics.OutcomeFailure
		if ev.Err != nil {
			rec.Error = ev.Err.Error()
		}
		return rec
	}
	rec.CostEUR = ev.Plan.Cost().InexactFloat64()
	for _, a := range ev.Plan.Assignments() {
		rec.Plan = append(rec.Plan, UnitOutput{Name: a.Name, P: json.Number(a.P.String())})
	}
	return rec
}

// StartRecorder appends every plan event published on bus to store until ctx
// is canceled or the bus closes. The returned channel is closed on exit.
func StartRecorder(ctx context.Context, bus *eventbus.TypedBus[events.PlanEvent], store LogStore, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || store == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.Nop{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := store.Append(context.WithoutCancel(ctx), FromEvent(ev)); err != nil {
					log.Errorf("append plan log %s: %v", ev.PlanID, err)
				}
			}
		}
	}()
	return done
}
