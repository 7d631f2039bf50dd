package metrics

import (
	"context"

	"github.com/kilianp07/productionplan/core/events"
	coremetrics "github.com/kilianp07/productionplan/core/metrics"
	"github.com/kilianp07/productionplan/infra/logger"
	"github.com/kilianp07/productionplan/internal/eventbus"
)

// StartPlanCollector subscribes to the event bus and records metrics for
// every plan event. It stops when the context is canceled or the bus closes.
// The returned channel is closed once the collector has stopped.
func StartPlanCollector(ctx context.Context, bus *eventbus.TypedBus[events.PlanEvent], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log := logger.New("plan-collector")
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
				if err := sink.RecordPlan(ToPlanRecord(ev)); err != nil {
					log.Warnf("record plan %s: %v", ev.PlanID, err)
				}
				if !ev.Succeeded() {
					continue
				}
				if r, ok := sink.(coremetrics.UnitDispatchRecorder); ok {
					if err := r.RecordUnitDispatch(ToUnitDispatch(ev)); err != nil {
						log.Warnf("record unit dispatch %s: %v", ev.PlanID, err)
					}
				}
			}
		}
	}()
	return done
}

// ToPlanRecord converts a plan event into a metrics record.
func ToPlanRecord(ev events.PlanEvent) coremetrics.PlanRecord {
	rec := coremetrics.PlanRecord{
		PlanID:   ev.PlanID,
		LoadMW:   ev.Load.InexactFloat64(),
		Units:    ev.Units,
		Outcome:  coremetrics.OutcomeSuccess,
		Duration: ev.Duration,
		Time:     ev.Time,
	}
	if ev.Succeeded() {
		rec.CostEUR = ev.Plan.Cost().InexactFloat64()
	} else {
		rec.Outcome = coremetrics.OutcomeFailure
		if ev.Err != nil {
			rec.Reason = ev.Err.Error()
		}
	}
	return rec
}

// ToUnitDispatch lists the setpoint of every unit of a successful plan.
func ToUnitDispatch(ev events.PlanEvent) []coremetrics.UnitDispatch {
	if ev.Plan == nil {
		return nil
	}
	out := make([]coremetrics.UnitDispatch, len(ev.Plan.Entries))
	for i, e := range ev.Plan.Entries {
		out[i] = coremetrics.UnitDispatch{
			PlanID:    ev.PlanID,
			Name:      e.Unit.Name,
			PowerMW:   e.Output.InexactFloat64(),
			MeritRank: i,
			Time:      ev.Time,
		}
	}
	return out
}
