package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Powerplant is a generation unit taking part in a production plan. Declared
// bounds come from the request; effective bounds and costs are filled in by
// the cost model.
type Powerplant struct {
	Name       string
	Type       string
	Efficiency decimal.Decimal
	Pmin       decimal.Decimal
	Pmax       decimal.Decimal

	FuelType string
	FuelCost decimal.Decimal

	// EffectivePmin and EffectivePmax equal Pmin and Pmax unless the unit's
	// type has no marginal fuel cost, in which case they are derated.
	EffectivePmin decimal.Decimal
	EffectivePmax decimal.Decimal

	prodCost decimal.Decimal
	derived  bool
}

// NewPowerplant returns a unit whose effective bounds default to the
// declared ones. Its production cost is unknown until SetCost is called.
func NewPowerplant(name, typ string, efficiency, pmin, pmax decimal.Decimal) *Powerplant {
	return &Powerplant{
		Name:          name,
		Type:          typ,
		Efficiency:    efficiency,
		Pmin:          pmin,
		Pmax:          pmax,
		EffectivePmin: pmin,
		EffectivePmax: pmax,
	}
}

// SetCost records the derived fuel and production cost and marks the unit as
// ready for planning.
func (p *Powerplant) SetCost(fuelCost, prodCost decimal.Decimal) {
	p.FuelCost = fuelCost
	p.prodCost = prodCost
	p.derived = true
}

// Derived reports whether the production cost has been computed.
func (p *Powerplant) Derived() bool { return p.derived }

// ProductionCost returns the cost of producing one MWh with this unit.
func (p *Powerplant) ProductionCost() (decimal.Decimal, error) {
	if !p.derived {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNotDerived, p.Name)
	}
	return p.prodCost, nil
}

func (p *Powerplant) String() string {
	return fmt.Sprintf("%s(%s) [%s, %s]", p.Name, p.Type, p.EffectivePmin, p.EffectivePmax)
}
