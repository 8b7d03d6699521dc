package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAlerts(); err != nil {
		return err
	}
	if err := c.validateAssignments(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAlerts() error {
	if c.Alerts.OverloadedThreshold <= 0 {
		return errors.New("alerts.overloaded_threshold must be positive")
	}
	if c.Alerts.UnderutilizedThreshold < 0 {
		return errors.New("alerts.underutilized_threshold must not be negative")
	}
	if c.Alerts.UnderutilizedThreshold >= c.Alerts.OverloadedThreshold {
		return errors.New("alerts.underutilized_threshold must be below alerts.overloaded_threshold")
	}
	if c.Alerts.DeadlineWarningDays < 0 {
		return errors.New("alerts.deadline_warning_days must not be negative")
	}
	return nil
}

func (c *Config) validateAssignments() error {
	switch c.Assignments.CapacityPolicy {
	case CapacityPolicyStrict, CapacityPolicyAdvisory:
		return nil
	default:
		return fmt.Errorf("assignments.capacity_policy must be %q or %q, got %q",
			CapacityPolicyStrict, CapacityPolicyAdvisory, c.Assignments.CapacityPolicy)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
