package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"

	coremqtt "github.com/kilianp07/productionplan/core/mqtt"
)

// SetpointPublisher mirrors the core mqtt.SetpointPublisher interface.
type SetpointPublisher = coremqtt.SetpointPublisher

// MockPublisher records setpoints in memory.
type MockPublisher struct {
	// Messages holds the last setpoint per unit.
	Messages map[string]coremqtt.Setpoint
	// FailUnits makes PublishSetpoint fail for the listed units.
	FailUnits map[string]bool
	count     int
	mu        sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Messages:  make(map[string]coremqtt.Setpoint),
		FailUnits: make(map[string]bool),
	}
}

// PublishSetpoint records the setpoint or fails if unit is in FailUnits.
func (m *MockPublisher) PublishSetpoint(planID, unit string, p json.Number) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailUnits[unit] {
		return "", fmt.Errorf("%w: %s", coremqtt.ErrPublishFailed, unit)
	}
	m.count++
	id := fmt.Sprintf("cmd-%d", m.count)
	m.Messages[unit] = coremqtt.Setpoint{CommandID: id, PlanID: planID, Name: unit, P: p}
	return id, nil
}

// Setpoint returns the last setpoint recorded for unit.
func (m *MockPublisher) Setpoint(unit string) (coremqtt.Setpoint, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Messages[unit]
	return s, ok
}

// Count returns the number of published setpoints.
func (m *MockPublisher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}
