package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ReminderConfig tunes the reminder sweep windows and the pending-purchase
// expiry. Offsets are minutes before the event start; a sweep picks up events
// whose start falls inside [now+MinOffset, now+MaxOffset] inclusive.
type ReminderConfig struct {
	Email          ReminderWindow `mapstructure:"email"`
	InApp          ReminderWindow `mapstructure:"inApp"`
	PendingTTLHrs  int            `mapstructure:"pendingTtlHours"`
	RunIntervalSec int            `mapstructure:"runIntervalSeconds"`
}

type ReminderWindow struct {
	MinOffsetMin int `mapstructure:"minOffsetMinutes"`
	MaxOffsetMin int `mapstructure:"maxOffsetMinutes"`
}

func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{
		Email:          ReminderWindow{MinOffsetMin: 55, MaxOffsetMin: 65},
		InApp:          ReminderWindow{MinOffsetMin: 10, MaxOffsetMin: 20},
		PendingTTLHrs:  24,
		RunIntervalSec: 300,
	}
}

type ReminderConfigHolder struct {
	current atomic.Value // holds ReminderConfig
}

func NewReminderConfigHolder() (*ReminderConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("reminder")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/pulsehub/config") // Volume-mounted config
	v.AddConfigPath("/etc/pulsehub")            // System config
	v.AddConfigPath(".")                        // Current directory (dev mode)

	v.SetEnvPrefix("PULSEHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultReminderConfig()
		v.SetDefault("reminder.email", defaults.Email)
		v.SetDefault("reminder.inApp", defaults.InApp)
		v.SetDefault("reminder.pendingTtlHours", defaults.PendingTTLHrs)
		v.SetDefault("reminder.runIntervalSeconds", defaults.RunIntervalSec)
	}

	var cfg ReminderConfig
	if err := v.UnmarshalKey("reminder", &cfg); err != nil {
		return nil, err
	}
	if err := validateReminderConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ReminderConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ReminderConfig
		if err := v.UnmarshalKey("reminder", &updated); err != nil {
			log.Printf("[reminder-config] reload failed: %v", err)
			return
		}
		if err := validateReminderConfig(updated); err != nil {
			log.Printf("[reminder-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[reminder-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *ReminderConfigHolder) Get() ReminderConfig {
	return h.current.Load().(ReminderConfig)
}

// StaticReminderConfigHolder wraps a fixed config with no file watching.
func StaticReminderConfigHolder(cfg ReminderConfig) *ReminderConfigHolder {
	holder := &ReminderConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func validateReminderConfig(cfg ReminderConfig) error {
	for _, w := range []ReminderWindow{cfg.Email, cfg.InApp} {
		if w.MinOffsetMin < 0 || w.MaxOffsetMin < w.MinOffsetMin {
			return errors.New("reminder window offsets must satisfy 0 <= min <= max")
		}
	}
	if cfg.PendingTTLHrs <= 0 {
		return errors.New("reminder.pendingTtlHours must be positive")
	}
	if cfg.RunIntervalSec <= 0 {
		return errors.New("reminder.runIntervalSeconds must be positive")
	}
	return nil
}
