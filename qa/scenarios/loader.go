// Package scenarios replays YAML described production plan requests through
// the engine and checks the resulting setpoints.
package scenarios

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/productionplan/core/productionplan"
)

type PowerplantDef struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Efficiency string `yaml:"efficiency"`
	Pmin       string `yaml:"pmin"`
	Pmax       string `yaml:"pmax"`
}

type Expected struct {
	// Error is a substring of the expected failure, empty on success.
	Error string `yaml:"error,omitempty"`
	// Outputs maps unit names to their expected power.
	Outputs map[string]string `yaml:"outputs,omitempty"`
	// Order lists the units in expected response order.
	Order     []string `yaml:"order,omitempty"`
	Cost      string   `yaml:"cost,omitempty"`
	Published int      `yaml:"published"`
}

type Scenario struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	CO2Cost     map[string]string `yaml:"co2_cost,omitempty"`
	Load        string            `yaml:"load"`
	Fuels       map[string]string `yaml:"fuels"`
	Powerplants []PowerplantDef   `yaml:"powerplants"`
	FailUnits   []string          `yaml:"fail_units,omitempty"`
	Expected    Expected          `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario name is required", path)
	}
	return &sc, nil
}

// Request converts the scenario into an engine request.
func (s *Scenario) Request() (productionplan.Request, error) {
	var req productionplan.Request
	var err error
	if req.Load, err = decimal.NewFromString(s.Load); err != nil {
		return req, fmt.Errorf("load: %w", err)
	}
	req.Fuels = make(map[string]decimal.Decimal, len(s.Fuels))
	for k, v := range s.Fuels {
		if req.Fuels[k], err = decimal.NewFromString(v); err != nil {
			return req, fmt.Errorf("fuel %s: %w", k, err)
		}
	}
	req.Powerplants = make([]productionplan.PowerplantSpec, len(s.Powerplants))
	for i, p := range s.Powerplants {
		spec := productionplan.PowerplantSpec{Name: p.Name, Type: p.Type}
		for _, f := range []struct {
			dst *decimal.Decimal
			src string
		}{{&spec.Efficiency, p.Efficiency}, {&spec.Pmin, p.Pmin}, {&spec.Pmax, p.Pmax}} {
			if *f.dst, err = decimal.NewFromString(f.src); err != nil {
				return req, fmt.Errorf("powerplant %s: %w", p.Name, err)
			}
		}
		req.Powerplants[i] = spec
	}
	return req, nil
}
