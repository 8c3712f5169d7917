package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTiming(); err != nil {
		return err
	}
	if err := c.validateSpeed(); err != nil {
		return err
	}
	if err := c.validateSynth(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTiming() error {
	if c.Timing.Tolerance <= 0 {
		return errors.New("timing.tolerance must be positive")
	}
	if c.Timing.MaxMergeCount < 1 {
		return errors.New("timing.max_merge_count must be at least 1")
	}
	if c.Timing.MinLineDuration <= 0 {
		return errors.New("timing.min_line_duration must be positive")
	}
	return nil
}

func (c *Config) validateSpeed() error {
	if c.Speed.Accept <= 0 {
		return errors.New("speed.accept must be positive")
	}
	if c.Speed.Min <= 0 {
		return errors.New("speed.min must be positive")
	}
	if c.Speed.Min > c.Speed.Accept {
		return fmt.Errorf("speed.min (%.3f) must not exceed speed.accept (%.3f)", c.Speed.Min, c.Speed.Accept)
	}
	return nil
}

func (c *Config) validateSynth() error {
	for _, arg := range c.Synth.Command {
		if strings.TrimSpace(arg) == "" {
			return errors.New("synth.command must not contain empty arguments")
		}
	}
	return nil
}
