package config

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/productionplan/core/cost"
)

// PlantConfig holds the static powerplant tables.
type PlantConfig struct {
	// TypeToFuel maps a powerplant type to the fuel it consumes.
	TypeToFuel map[string]string `json:"type_to_fuel"`
	// FreePowerplantTypes have no marginal cost and are derated by the
	// "%" category of the request.
	FreePowerplantTypes []string `json:"free_powerplant_types"`
	// CO2Cost is the fraction added to the production cost per fuel.
	CO2Cost map[string]float64 `json:"co2_cost"`
}

// SetDefaults fills the standard gas/kerosine/wind mapping when none is set.
func (c *PlantConfig) SetDefaults() {
	if len(c.TypeToFuel) == 0 {
		c.TypeToFuel = map[string]string{
			"gasfired":    "gas",
			"turbojet":    "kerosine",
			"windturbine": "wind",
		}
		if c.FreePowerplantTypes == nil {
			c.FreePowerplantTypes = []string{"windturbine"}
		}
	}
}

// Validate checks that every free type is mapped and surcharges are sane.
func (c PlantConfig) Validate() error {
	for _, t := range c.FreePowerplantTypes {
		if _, ok := c.TypeToFuel[t]; !ok {
			return fmt.Errorf("free powerplant type %s has no fuel", t)
		}
	}
	for f, v := range c.CO2Cost {
		if v < 0 {
			return fmt.Errorf("negative co2 cost for %s", f)
		}
	}
	return nil
}

// Tables converts the configuration into the immutable cost tables.
func (c PlantConfig) Tables() cost.Tables {
	t := cost.Tables{
		TypeToFuel: make(map[string]string, len(c.TypeToFuel)),
		FreeTypes:  make(map[string]bool, len(c.FreePowerplantTypes)),
		CO2Cost:    make(map[string]decimal.Decimal, len(c.CO2Cost)),
	}
	for k, v := range c.TypeToFuel {
		t.TypeToFuel[k] = v
	}
	for _, f := range c.FreePowerplantTypes {
		t.FreeTypes[f] = true
	}
	for k, v := range c.CO2Cost {
		t.CO2Cost[k] = decimal.NewFromFloat(v)
	}
	return t
}
