package mqtt

import "errors"

// ErrPublishFailed is returned when a setpoint could not be delivered after
// every retry.
var ErrPublishFailed = errors.New("setpoint publish failed")
