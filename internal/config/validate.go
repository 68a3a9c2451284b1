package config

import (
	"errors"
	"fmt"
	"time"
)

// Schedule cadence types.
const (
	ScheduleDaily       = "daily"
	ScheduleHourly      = "hourly"
	ScheduleEveryNHours = "every_n_hours"
	ScheduleCustom      = "custom"
)

// ScheduleTypes lists the cadences the scheduler understands.
var ScheduleTypes = []string{ScheduleDaily, ScheduleHourly, ScheduleEveryNHours, ScheduleCustom}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSheets(); err != nil {
		return err
	}
	if err := c.validateSecrets(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSheets() error {
	if c.Sheets.SpreadsheetID == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/reelforge/config.toml"
		}
		return fmt.Errorf("sheets.spreadsheet_id is required. Edit %s (create with 'reelforge config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateSecrets() error {
	switch c.Secrets.Provider {
	case "env":
		return nil
	case "gcp":
		if c.Secrets.GCPProjectID == "" {
			return errors.New("secrets.gcp_project_id must be set when secrets.provider is \"gcp\"")
		}
		return nil
	default:
		return fmt.Errorf("secrets.provider: unsupported value %q (expected gcp or env)", c.Secrets.Provider)
	}
}

func (c *Config) validateSchedule() error {
	switch c.Schedule.Type {
	case ScheduleDaily:
		return validateClockTime("schedule.time", c.Schedule.Time)
	case ScheduleHourly, ScheduleEveryNHours:
		return nil
	case ScheduleCustom:
		if len(c.Schedule.Times) == 0 {
			return errors.New("schedule.times must list at least one HH:MM entry for a custom schedule")
		}
		for _, value := range c.Schedule.Times {
			if err := validateClockTime("schedule.times", value); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("schedule.type: unsupported value %q (expected one of %v)", c.Schedule.Type, ScheduleTypes)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func validateClockTime(field, value string) error {
	if _, err := time.Parse("15:04", value); err != nil {
		return fmt.Errorf("%s: %q is not a valid HH:MM time", field, value)
	}
	return nil
}
