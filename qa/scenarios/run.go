package scenarios

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/productionplan/config"
	"github.com/kilianp07/productionplan/core/events"
	"github.com/kilianp07/productionplan/core/productionplan"
	"github.com/kilianp07/productionplan/infra/logger"
	"github.com/kilianp07/productionplan/infra/mqtt"
	"github.com/kilianp07/productionplan/internal/eventbus"
)

func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	plant := config.Default().Plant
	plant.CO2Cost = make(map[string]float64, len(sc.CO2Cost))
	for k, v := range sc.CO2Cost {
		f, err := decimal.NewFromString(v)
		if err != nil {
			t.Fatalf("co2 cost %s: %v", k, err)
		}
		plant.CO2Cost[k] = f.InexactFloat64()
	}
	engine := productionplan.NewEngine(plant.Tables(), logger.NopLogger{})

	pub := mqtt.NewMockPublisher()
	for _, u := range sc.FailUnits {
		pub.FailUnits[u] = true
	}
	bus := eventbus.NewTyped[events.PlanEvent]()
	done := mqtt.StartSetpointForwarder(context.Background(), bus, pub, logger.NopLogger{})

	req, err := sc.Request()
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}
	err = req.Validate()
	var res *productionplan.Result
	if err == nil {
		res, err = engine.Calculate(req)
	}
	ev := events.PlanEvent{PlanID: sc.Name, Time: time.Unix(0, 0), Load: req.Load, Units: len(req.Powerplants), Err: err}
	if res != nil {
		ev.Plan = res.Plan
	}
	bus.Publish(ev)
	bus.Close()
	<-done

	want := sc.Expected
	switch {
	case want.Error != "":
		if err == nil || !strings.Contains(err.Error(), want.Error) {
			t.Errorf("scenario %s expected error %q, got %v", sc.Name, want.Error, err)
		}
	case err != nil:
		t.Errorf("scenario %s unexpected error: %v", sc.Name, err)
	default:
		checkResult(t, sc, res)
	}
	if got := pub.Count(); got != want.Published {
		t.Errorf("scenario %s expected %d setpoints, got %d", sc.Name, want.Published, got)
	}
}

func checkResult(t *testing.T, sc *Scenario, res *productionplan.Result) {
	t.Helper()
	got := make(map[string]decimal.Decimal, len(res.Response))
	order := make([]string, len(res.Response))
	for i, a := range res.Response {
		got[a.Name] = decimal.RequireFromString(a.P.String())
		order[i] = a.Name
	}
	for name, p := range sc.Expected.Outputs {
		if !got[name].Equal(decimal.RequireFromString(p)) {
			t.Errorf("scenario %s: %s expected %s, got %s", sc.Name, name, p, got[name])
		}
	}
	if len(sc.Expected.Order) > 0 && strings.Join(order, ",") != strings.Join(sc.Expected.Order, ",") {
		t.Errorf("scenario %s: expected order %v, got %v", sc.Name, sc.Expected.Order, order)
	}
	if sc.Expected.Cost != "" && !res.Plan.Cost().Equal(decimal.RequireFromString(sc.Expected.Cost)) {
		t.Errorf("scenario %s: expected cost %s, got %s", sc.Name, sc.Expected.Cost, res.Plan.Cost())
	}
	if !res.Plan.Total().Equal(decimal.RequireFromString(sc.Load)) {
		t.Errorf("scenario %s: total %s does not match load %s", sc.Name, res.Plan.Total(), sc.Load)
	}
}
