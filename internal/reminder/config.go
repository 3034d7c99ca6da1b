package reminder

import (
	"time"

	"github.com/pulsehub/pulsehub/internal/config"
)

// Config controls sweep cadence and batch sizes. Reminder windows and the
// pending TTL live in the hot-reloadable ReminderConfig and are read on
// every pass.
type Config struct {
	RunInterval time.Duration
	BatchSize   int
	JobTimeout  time.Duration
	LockTTL     time.Duration
	EnabledJobs []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval: 5 * time.Minute,
		BatchSize:   50,
		JobTimeout:  30 * time.Second,
		LockTTL:     4 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	return c
}

func ProvideConfig(holder *config.ReminderConfigHolder) Config {
	cfg := DefaultConfig()
	if holder != nil {
		if interval := holder.Get().RunIntervalSec; interval > 0 {
			cfg.RunInterval = time.Duration(interval) * time.Second
		}
	}
	return cfg
}
