// Package productionplan computes the production plan for one request:
// categorize fuel prices, derive the cost of every powerplant and allocate
// the load in merit order.
package productionplan

import (
	"encoding/json"
	"fmt"

	"github.com/kilianp07/productionplan/core/cost"
	"github.com/kilianp07/productionplan/core/fuel"
	"github.com/kilianp07/productionplan/core/logger"
	"github.com/kilianp07/productionplan/core/model"
	"github.com/kilianp07/productionplan/core/planner"
)

// Result bundles the internal plan with its wire representation.
type Result struct {
	Plan     *planner.Plan
	Response Response
}

// Engine is safe for concurrent use: every call builds its own units and
// only reads the shared cost tables.
type Engine struct {
	costs   *cost.Model
	planner *planner.Planner
	log     logger.Logger
}

// NewEngine returns an engine using the static tables t.
func NewEngine(t cost.Tables, log logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop{}
	}
	return &Engine{costs: cost.NewModel(t), planner: planner.New(), log: log}
}

// Calculate returns the plan for req. The request is expected to be valid;
// see Request.Validate.
func (e *Engine) Calculate(req Request) (*Result, error) {
	prices, err := fuel.Categorize(req.Fuels)
	if err != nil {
		return nil, err
	}

	units := make([]*model.Powerplant, len(req.Powerplants))
	for i, p := range req.Powerplants {
		units[i] = model.NewPowerplant(p.Name, p.Type, p.Efficiency, p.Pmin, p.Pmax)
	}
	if err := e.costs.DeriveAll(units, prices); err != nil {
		return nil, err
	}
	if err := e.logCosts(units); err != nil {
		return nil, err
	}

	plan, err := e.planner.Plan(req.Load, units)
	if err != nil {
		return nil, fmt.Errorf("plan %s MW: %w", req.Load, err)
	}
	return &Result{Plan: plan, Response: toResponse(plan)}, nil
}

// logCosts reports the derived cost of every unit.
func (e *Engine) logCosts(units []*model.Powerplant) error {
	for _, u := range units {
		c, err := u.ProductionCost()
		if err != nil {
			return fmt.Errorf("unit %s: %w", u.Name, err)
		}
		e.log.Debugw("unit cost derived", map[string]any{
			"unit":      u.Name,
			"fuel":      u.FuelType,
			"cost":      c.String(),
			"pmin_eff":  u.EffectivePmin.String(),
			"pmax_eff":  u.EffectivePmax.String(),
			"unit_type": u.Type,
		})
	}
	return nil
}

func toResponse(p *planner.Plan) Response {
	as := p.Assignments()
	out := make(Response, len(as))
	for i, a := range as {
		out[i] = Assignment{Name: a.Name, P: json.Number(a.P.String())}
	}
	return out
}
