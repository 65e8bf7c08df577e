package tasks

import "time"

// Config sizes the worker pool. Retry, timeout and retention policy belong to
// each queue's backlite.QueueConfig.
type Config struct {
	Workers         int
	ReleaseAfter    time.Duration // stuck tasks return to the queue after this
	CleanupInterval time.Duration // how often backlite purges finished tasks
}

func DefaultConfig() Config {
	return Config{
		Workers:         2,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: time.Hour,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = def.ReleaseAfter
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = def.CleanupInterval
	}
	return c
}
