package mqtt

import "encoding/json"

// Setpoint is the message sent to a powerplant controller once a plan is
// accepted.
type Setpoint struct {
	CommandID string      `json:"command_id"`
	PlanID    string      `json:"plan_id"`
	Name      string      `json:"name"`
	P         json.Number `json:"p"`
	Timestamp int64       `json:"timestamp"`
}

// SetpointPublisher sends the power assigned to a unit to its controller.
type SetpointPublisher interface {
	// PublishSetpoint sends p MW for unit and returns the command identifier
	// carried by the message.
	PublishSetpoint(planID, unit string, p json.Number) (commandID string, err error)
}
