// Package config holds runtime configuration for the pingup messaging core.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration. Precedence: defaults < file < env < flags.
type Config struct {
	// HTTP surface
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`

	// DataDir is where the sqlite document store lives.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// PollInterval is how often the workflow scheduler scans for due runs.
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// ReminderDelay is the durable suspension between the immediate
	// connection-request notification and the reminder check.
	ReminderDelay time.Duration `json:"reminder_delay" yaml:"reminder_delay"`

	// RunGracePeriod is how long a run may sit in "running" before the
	// scheduler treats it as stalled (crash mid-step) and re-drives it.
	RunGracePeriod time.Duration `json:"run_grace_period" yaml:"run_grace_period"`

	// StreamWriteTimeout bounds a single event write to a live connection.
	// A write that exceeds it marks the handle stale and evicts it.
	StreamWriteTimeout time.Duration `json:"stream_write_timeout" yaml:"stream_write_timeout"`

	// Notification delivery (email via SMTP)
	EmailHost string `json:"email_host" yaml:"email_host"`
	EmailPort int    `json:"email_port" yaml:"email_port"`
	EmailUser string `json:"email_user" yaml:"email_user"`
	EmailPass string `json:"email_pass" yaml:"email_pass"`
	EmailFrom string `json:"email_from" yaml:"email_from"`

	// Generic webhook notification endpoint (optional)
	WebhookURL string `json:"webhook_url" yaml:"webhook_url"`

	// Metrics
	MetricsEnabled bool `json:"metrics_enabled" yaml:"metrics_enabled"`
	MetricsPort    int  `json:"metrics_port" yaml:"metrics_port"`
}

// DefaultConfig returns a sane default configuration
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:         ":8080",
		DataDir:            "./data",
		PollInterval:       30 * time.Second,
		ReminderDelay:      24 * time.Hour,
		RunGracePeriod:     5 * time.Minute,
		StreamWriteTimeout: 10 * time.Second,

		EmailPort: 587,

		// Metrics defaults (opt-in)
		MetricsEnabled: false,
		MetricsPort:    9090,
	}
}

// Validate returns a list of non-fatal configuration warnings, such as
// incomplete notifier credential combinations.
func (c *Config) Validate() []string {
	var warnings []string
	checks := []struct {
		cond bool
		msg  string
	}{
		{c.EmailHost != "" && c.EmailFrom == "", "email host provided but sender address is missing (EmailFrom)"},
		{c.EmailHost == "" && c.EmailFrom != "", "email sender configured but email host is empty"},
		{c.EmailHost == "" && c.WebhookURL == "", "no notification provider configured; connection-request reminders will be logged only"},
		{c.ReminderDelay <= 0, "reminder_delay must be positive; workflow reminders would fire immediately"},
		{c.PollInterval < time.Second, "poll_interval below 1s will hammer the store"},
	}
	for _, ch := range checks {
		if ch.cond {
			warnings = append(warnings, ch.msg)
		}
	}
	return warnings
}

// LoadConfigFromFile loads config from a YAML/JSON file
func LoadConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
