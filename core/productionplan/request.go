package productionplan

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidPayload is returned when a request does not match the payload
// schema.
var ErrInvalidPayload = errors.New("invalid payload")

// Request is the body of POST /productionplan.
type Request struct {
	Load        decimal.Decimal            `json:"load"`
	Fuels       map[string]decimal.Decimal `json:"fuels"`
	Powerplants []PowerplantSpec           `json:"powerplants"`
}

// PowerplantSpec describes one unit as declared by the caller.
type PowerplantSpec struct {
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Efficiency decimal.Decimal `json:"efficiency"`
	Pmin       decimal.Decimal `json:"pmin"`
	Pmax       decimal.Decimal `json:"pmax"`
}

// Assignment is one line of the response.
type Assignment struct {
	Name string      `json:"name"`
	P    json.Number `json:"p"`
}

// Response lists every unit in ascending production cost order.
type Response []Assignment

var one = decimal.NewFromInt(1)

// Validate checks the request against the payload schema.
func (r Request) Validate() error {
	if !r.Load.IsPositive() {
		return fmt.Errorf("%w: load must be positive, got %s", ErrInvalidPayload, r.Load)
	}
	if r.Fuels == nil {
		return fmt.Errorf("%w: fuels is required", ErrInvalidPayload)
	}
	for k, v := range r.Fuels {
		if v.IsNegative() {
			return fmt.Errorf("%w: fuel %q must not be negative", ErrInvalidPayload, k)
		}
	}
	if r.Powerplants == nil {
		return fmt.Errorf("%w: powerplants is required", ErrInvalidPayload)
	}
	seen := make(map[string]bool, len(r.Powerplants))
	for i, p := range r.Powerplants {
		if err := p.validate(); err != nil {
			return fmt.Errorf("%w: powerplants[%d]: %v", ErrInvalidPayload, i, err)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate powerplant name %q", ErrInvalidPayload, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

func (p PowerplantSpec) validate() error {
	switch {
	case p.Name == "":
		return errors.New("name is required")
	case p.Type == "":
		return errors.New("type is required")
	case p.Efficiency.IsNegative() || p.Efficiency.GreaterThan(one):
		return fmt.Errorf("efficiency %s outside [0, 1]", p.Efficiency)
	case p.Pmin.IsNegative() || !isInteger(p.Pmin):
		return fmt.Errorf("pmin %s must be a non-negative integer", p.Pmin)
	case !p.Pmax.IsPositive() || !isInteger(p.Pmax):
		return fmt.Errorf("pmax %s must be a positive integer", p.Pmax)
	case p.Pmin.GreaterThan(p.Pmax):
		return fmt.Errorf("pmin %s greater than pmax %s", p.Pmin, p.Pmax)
	}
	return nil
}

func isInteger(d decimal.Decimal) bool { return d.Equal(d.Truncate(0)) }
