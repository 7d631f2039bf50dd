// Package cost derives the effective bounds and production cost of each
// powerplant from the request prices and the static plant tables.
package cost

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/productionplan/core/fuel"
	"github.com/kilianp07/productionplan/core/model"
)

var hundred = decimal.NewFromInt(100)

// Tables holds the static lookups loaded once at startup. They are never
// modified after construction and may be shared between requests.
type Tables struct {
	// TypeToFuel maps a powerplant type to the fuel it burns.
	TypeToFuel map[string]string
	// FreeTypes lists types with no marginal fuel cost. Their capacity is
	// derated by the "%" category of the request.
	FreeTypes map[string]bool
	// CO2Cost is a multiplicative surcharge per fuel.
	CO2Cost map[string]decimal.Decimal
}

// Model computes production costs.
type Model struct {
	tables Tables
}

// NewModel returns a cost model backed by t.
func NewModel(t Tables) *Model {
	return &Model{tables: t}
}

// Derive fills in the fuel type, fuel cost, production cost and effective
// bounds of unit.
func (m *Model) Derive(unit *model.Powerplant, prices fuel.PriceTable) error {
	fuelType, ok := m.tables.TypeToFuel[unit.Type]
	if !ok {
		return fmt.Errorf("%w: %s (%s)", model.ErrUnknownUnitType, unit.Type, unit.Name)
	}
	unit.FuelType = fuelType

	if m.tables.FreeTypes[unit.Type] {
		pct, ok := prices.Price(fuel.CategoryDerating, fuelType)
		if !ok {
			return fmt.Errorf("%w: no %s value for %s", model.ErrUnknownFuelType, fuel.CategoryDerating, fuelType)
		}
		unit.EffectivePmin = unit.Pmin.Mul(pct).Div(hundred)
		unit.EffectivePmax = unit.Pmax.Mul(pct).Div(hundred)
		unit.SetCost(decimal.Zero, decimal.Zero)
		return nil
	}

	price, ok := prices.Price(fuel.CategoryPrice, fuelType)
	if !ok {
		return fmt.Errorf("%w: no %s price for %s", model.ErrUnknownFuelType, fuel.CategoryPrice, fuelType)
	}
	if unit.Efficiency.IsZero() {
		return fmt.Errorf("%w: %s", model.ErrZeroEfficiency, unit.Name)
	}
	prod := price.Div(unit.Efficiency)
	if surcharge, ok := m.tables.CO2Cost[fuelType]; ok {
		prod = prod.Add(prod.Mul(surcharge))
	}
	unit.EffectivePmin = unit.Pmin
	unit.EffectivePmax = unit.Pmax
	unit.SetCost(price, prod)
	return nil
}

// DeriveAll runs Derive on every unit, stopping at the first failure.
func (m *Model) DeriveAll(units []*model.Powerplant, prices fuel.PriceTable) error {
	for _, u := range units {
		if err := m.Derive(u, prices); err != nil {
			return err
		}
	}
	return nil
}
