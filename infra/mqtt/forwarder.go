package mqtt

import (
	"context"
	"encoding/json"

	"github.com/kilianp07/productionplan/core/events"
	"github.com/kilianp07/productionplan/core/logger"
	"github.com/kilianp07/productionplan/internal/eventbus"
)

// StartSetpointForwarder publishes the setpoints of every successful plan on
// bus until ctx is canceled or the bus closes.
func StartSetpointForwarder(ctx context.Context, bus *eventbus.TypedBus[events.PlanEvent], pub SetpointPublisher, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
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
				if !ev.Succeeded() {
					continue
				}
				for _, a := range ev.Plan.Assignments() {
					if _, err := pub.PublishSetpoint(ev.PlanID, a.Name, json.Number(a.P.String())); err != nil {
						log.Errorf("plan %s: %v", ev.PlanID, err)
					}
				}
			}
		}
	}()
	return done
}
