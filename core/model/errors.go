package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrMalformedKey is returned when a fuel key has no "(category)" part.
	ErrMalformedKey = errors.New("malformed fuel key")
	// ErrUnknownUnitType is returned when a powerplant type has no fuel mapping.
	ErrUnknownUnitType = errors.New("unknown powerplant type")
	// ErrUnknownFuelType is returned when no price or derating is known for a fuel.
	ErrUnknownFuelType = errors.New("unknown fuel type")
	// ErrZeroEfficiency is returned for a fuel-burning unit with zero efficiency.
	ErrZeroEfficiency = errors.New("zero efficiency")
	// ErrNotDerived is returned when a unit's cost is read before derivation.
	ErrNotDerived = errors.New("production cost not calculated")
	// ErrLoadUnreachable indicates no exact-match plan exists.
	ErrLoadUnreachable = errors.New("the load cannot be reached")
)

// LoadUnreachableError describes a failed search for an exact-match plan.
type LoadUnreachableError struct {
	Load    decimal.Decimal
	Reached decimal.Decimal
	// Phase is "increase" when capacity ran out, "decrease" when the
	// committed units could not be lowered to the load.
	Phase string
}

func (e *LoadUnreachableError) Error() string {
	return fmt.Sprintf("%s: load %s, reached %s after %s pass", ErrLoadUnreachable, e.Load, e.Reached, e.Phase)
}

// Is makes errors.Is(err, ErrLoadUnreachable) hold.
func (e *LoadUnreachableError) Is(target error) bool { return target == ErrLoadUnreachable }
