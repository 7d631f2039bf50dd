package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordSink struct {
	plans int
	units int
	err   error
}

func (r *recordSink) RecordPlan(PlanRecord) error {
	r.plans++
	return r.err
}

func (r *recordSink) RecordUnitDispatch(u []UnitDispatch) error {
	r.units += len(u)
	return r.err
}

type planOnlySink struct{ plans int }

func (p *planOnlySink) RecordPlan(PlanRecord) error {
	p.plans++
	return nil
}

func TestMultiSink_ForwardsToAll(t *testing.T) {
	a, b := &recordSink{}, &planOnlySink{}
	m := NewMultiSink(a, b)

	assert.NoError(t, m.RecordPlan(PlanRecord{Outcome: OutcomeSuccess}))
	assert.NoError(t, m.RecordUnitDispatch([]UnitDispatch{{Name: "u1"}, {Name: "u2"}}))

	assert.Equal(t, 1, a.plans)
	assert.Equal(t, 2, a.units)
	assert.Equal(t, 1, b.plans)
}

func TestMultiSink_StopsOnError(t *testing.T) {
	failing := &recordSink{err: errors.New("boom")}
	next := &recordSink{}
	m := NewMultiSink(failing, next)

	assert.Error(t, m.RecordPlan(PlanRecord{}))
	assert.Equal(t, 0, next.plans)
}
