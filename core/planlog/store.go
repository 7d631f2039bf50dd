// Package planlog keeps a record of every production plan decision so that
// past requests can be inspected through the API.
package planlog

import (
	"context"
	"encoding/json"
	"time"
)

// UnitOutput is the power assigned to one powerplant.
type UnitOutput struct {
	Name string      `json:"name"`
	P    json.Number `json:"p"`
}

// LogRecord captures one plan calculation and its result.
type LogRecord struct {
	PlanID     string       `json:"plan_id"`
	Timestamp  time.Time    `json:"timestamp"`
	Load       json.Number  `json:"load"`
	Units      int          `json:"units"`
	Outcome    string       `json:"outcome"`
	Error      string       `json:"error,omitempty"`
	Plan       []UnitOutput `json:"plan,omitempty"`
	CostEUR    float64      `json:"cost_eur"`
	DurationMS float64      `json:"duration_ms"`
}

// LogQuery defines filters for retrieving records. Zero values match all.
type LogQuery struct {
	Start   time.Time
	End     time.Time
	Unit    string
	Outcome string
	Limit   int
}

// Match reports whether r satisfies the query filters.
func (q LogQuery) Match(r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	if q.Unit != "" {
		for _, u := range r.Plan {
			if u.Name == q.Unit {
				return true
			}
		}
		return false
	}
	return true
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}

// limit keeps the q.Limit most recent records.
func limit(recs []LogRecord, q LogQuery) []LogRecord {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[len(recs)-q.Limit:]
	}
	return recs
}
