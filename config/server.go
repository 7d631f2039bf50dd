package config

import "fmt"

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	// Address is the listen address of the production plan API.
	Address string `json:"address"`
	// LogToken protects the decision log endpoint when set.
	LogToken string `json:"log_token"`
	// RequestTimeoutSeconds bounds the handling of a single request.
	RequestTimeoutSeconds int `json:"request_timeout_seconds"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8888"
	}
	if c.RequestTimeoutSeconds == 0 {
		c.RequestTimeoutSeconds = 30
	}
}

func (c ServerConfig) Validate() error {
	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("request_timeout_seconds must be positive")
	}
	return nil
}
