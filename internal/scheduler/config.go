package scheduler

import "time"

// Config controls the refresh cadence and window.
type Config struct {
	RunInterval time.Duration
	WindowDays  int
}

func DefaultConfig() Config {
	return Config{
		RunInterval: 15 * time.Minute,
		WindowDays:  30,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.WindowDays <= 0 {
		c.WindowDays = defaults.WindowDays
	}
	return c
}
