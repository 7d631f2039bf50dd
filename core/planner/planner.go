// Package planner allocates a load across powerplants in merit order.
//
// Units are sorted by production cost. An increase pass commits the cheapest
// units and raises them to their maximum until the load is covered. When the
// minimum output of the last committed unit overshoots the load, a decrease
// pass walks back from the most expensive committed unit and lowers outputs
// towards their minimum until the plan matches the load exactly.
package planner

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/productionplan/core/model"
)

// Entry is the dispatch decision for one unit.
type Entry struct {
	Unit      *model.Powerplant
	Committed bool
	Output    decimal.Decimal
}

// Assignment is the output of one unit in a finished plan.
type Assignment struct {
	Name string
	P    decimal.Decimal
}

// Plan holds one entry per unit in ascending production cost order.
type Plan struct {
	Entries []Entry
}

// Total returns the summed output of every entry.
func (p *Plan) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range p.Entries {
		total = total.Add(e.Output)
	}
	return total
}

// Cost returns the hourly cost of the plan.
func (p *Plan) Cost() decimal.Decimal {
	total := decimal.Zero
	for _, e := range p.Entries {
		c, err := e.Unit.ProductionCost()
		if err != nil {
			continue
		}
		total = total.Add(c.Mul(e.Output))
	}
	return total
}

// Assignments lists the output of every unit in plan order.
func (p *Plan) Assignments() []Assignment {
	out := make([]Assignment, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = Assignment{Name: e.Unit.Name, P: e.Output}
	}
	return out
}

// Planner builds production plans. The zero value is ready to use.
type Planner struct{}

// New returns a Planner.
func New() *Planner { return &Planner{} }

// Plan distributes load over units. Units must have their cost derived. On
// success the sum of outputs equals load exactly; otherwise the error wraps
// model.ErrLoadUnreachable and no plan is returned.
func (pl *Planner) Plan(load decimal.Decimal, units []*model.Powerplant) (*Plan, error) {
	sorted, err := meritOrder(units)
	if err != nil {
		return nil, err
	}
	plan := &Plan{Entries: make([]Entry, len(sorted))}
	for i, u := range sorted {
		plan.Entries[i] = Entry{Unit: u, Output: decimal.Zero}
	}

	increase(plan, load)
	total := plan.Total()
	switch total.Cmp(load) {
	case 0:
		return plan, nil
	case -1:
		return nil, &model.LoadUnreachableError{Load: load, Reached: total, Phase: "increase"}
	}

	decrease(plan, load)
	if total = plan.Total(); !total.Equal(load) {
		return nil, &model.LoadUnreachableError{Load: load, Reached: total, Phase: "decrease"}
	}
	return plan, nil
}

// meritOrder returns a copy of units sorted by production cost. Ties keep
// their input order.
func meritOrder(units []*model.Powerplant) ([]*model.Powerplant, error) {
	costs := make(map[*model.Powerplant]decimal.Decimal, len(units))
	for _, u := range units {
		c, err := u.ProductionCost()
		if err != nil {
			return nil, fmt.Errorf("merit order: %w", err)
		}
		costs[u] = c
	}
	sorted := slices.Clone(units)
	slices.SortStableFunc(sorted, func(a, b *model.Powerplant) int {
		return costs[a].Cmp(costs[b])
	})
	return sorted, nil
}

func increase(plan *Plan, load decimal.Decimal) {
	for i := range plan.Entries {
		e := &plan.Entries[i]
		if plan.Total().GreaterThanOrEqual(load) {
			return
		}
		if !e.Committed {
			e.Committed = true
			e.Output = e.Unit.EffectivePmin
		}
		total := plan.Total()
		if total.GreaterThanOrEqual(load) {
			return
		}
		if total.Sub(e.Unit.EffectivePmin).Add(e.Unit.EffectivePmax).LessThanOrEqual(load) {
			e.Output = e.Unit.EffectivePmax
			continue
		}
		// Remove this unit's own contribution before closing the gap.
		e.Output = load.Sub(total.Sub(e.Output))
		return
	}
}

func decrease(plan *Plan, load decimal.Decimal) {
	for i := len(plan.Entries) - 1; i >= 0; i-- {
		e := &plan.Entries[i]
		total := plan.Total()
		if total.Equal(load) {
			return
		}
		if !e.Committed {
			continue
		}
		if e.Output.Equal(e.Unit.EffectivePmin) && total.GreaterThan(load) {
			continue
		}
		rest := total.Sub(e.Output)
		if rest.Add(e.Unit.EffectivePmin).GreaterThan(load) {
			e.Output = e.Unit.EffectivePmin
			continue
		}
		e.Output = load.Sub(rest)
		return
	}
}
