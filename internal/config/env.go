package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ApplyEnvOverrides reads configuration values from environment variables and
// overrides fields in the provided Config. Returns an error if parsing fails.
//
// Environment variables supported:
// - PINGUP_LISTEN_ADDR (string, e.g. ":8080")
// - PINGUP_DATA_DIR (string)
// - PINGUP_POLL_INTERVAL (duration, e.g. "30s")
// - PINGUP_REMINDER_DELAY (duration, e.g. "24h")
// - PINGUP_RUN_GRACE_PERIOD (duration, e.g. "5m")
// - PINGUP_STREAM_WRITE_TIMEOUT (duration, e.g. "10s")
// - PINGUP_EMAIL_HOST / _PORT / _USER / _PASS / _FROM
// - PINGUP_WEBHOOK_URL (string)
// - PINGUP_METRICS_ENABLED (bool) / PINGUP_METRICS_PORT (int)
func ApplyEnvOverrides(cfg *Config) error {
	if err := applyCoreEnv(cfg); err != nil {
		return err
	}
	if err := applyEmailEnv(cfg); err != nil {
		return err
	}
	if err := applyMetricsEnv(cfg); err != nil {
		return err
	}
	if v := os.Getenv("PINGUP_WEBHOOK_URL"); v != "" {
		cfg.WebhookURL = v
	}
	return nil
}

func applyCoreEnv(cfg *Config) error {
	if v := os.Getenv("PINGUP_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("PINGUP_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	durations := []struct {
		env string
		set func(time.Duration)
	}{
		{"PINGUP_POLL_INTERVAL", func(d time.Duration) { cfg.PollInterval = d }},
		{"PINGUP_REMINDER_DELAY", func(d time.Duration) { cfg.ReminderDelay = d }},
		{"PINGUP_RUN_GRACE_PERIOD", func(d time.Duration) { cfg.RunGracePeriod = d }},
		{"PINGUP_STREAM_WRITE_TIMEOUT", func(d time.Duration) { cfg.StreamWriteTimeout = d }},
	}
	for _, ent := range durations {
		if err := setDurationEnv(ent.env, ent.set); err != nil {
			return err
		}
	}
	return nil
}

// applyEmailEnv consolidates email-related env parsing
func applyEmailEnv(cfg *Config) error {
	if v := os.Getenv("PINGUP_EMAIL_HOST"); v != "" {
		cfg.EmailHost = v
	}
	if v := os.Getenv("PINGUP_EMAIL_USER"); v != "" {
		cfg.EmailUser = v
	}
	if v := os.Getenv("PINGUP_EMAIL_PASS"); v != "" {
		cfg.EmailPass = v
	}
	if v := os.Getenv("PINGUP_EMAIL_FROM"); v != "" {
		cfg.EmailFrom = v
	}
	if v := os.Getenv("PINGUP_EMAIL_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PINGUP_EMAIL_PORT: %w", err)
		}
		cfg.EmailPort = p
	}
	return nil
}

// applyMetricsEnv consolidates metrics-related env parsing
func applyMetricsEnv(cfg *Config) error {
	if err := setBoolEnv("PINGUP_METRICS_ENABLED", func(b bool) { cfg.MetricsEnabled = b }); err != nil {
		return err
	}
	if v := os.Getenv("PINGUP_METRICS_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PINGUP_METRICS_PORT: %w", err)
		}
		cfg.MetricsPort = p
	}
	return nil
}

// setBoolEnv is a small helper to parse boolean environment variables
func setBoolEnv(env string, setter func(bool)) error {
	if v := os.Getenv(env); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		setter(b)
	}
	return nil
}

func setDurationEnv(env string, setter func(time.Duration)) error {
	if v := os.Getenv(env); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		setter(d)
	}
	return nil
}
