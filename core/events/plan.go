package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/productionplan/core/planner"
)

// PlanEvent is published after every calculation. Plan is nil when Err is set.
type PlanEvent struct {
	PlanID   string
	Time     time.Time
	Load     decimal.Decimal
	Units    int
	Plan     *planner.Plan
	Duration time.Duration
	Err      error
}

// Succeeded reports whether a plan was produced.
func (e PlanEvent) Succeeded() bool { return e.Err == nil && e.Plan != nil }
