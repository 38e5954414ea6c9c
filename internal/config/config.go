// Package config reads the JSON configuration file that controls the HAS
// receiver's ambient concerns: where the nav-data monitor log lives,
// whether it's enabled by default, and the stale-slot sweep's schedule
// and TTL. It follows the same read-a-JSON-file-at-startup shape as the
// teacher repo's jsonconfig package, trimmed to this receiver's needs.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Config holds the values read from the JSON control file.
type Config struct {
	// MonitorLogDir is the directory the nav-data monitor's daily log
	// files are written to.
	MonitorLogDir string `json:"monitorLogDir"`

	// EnableNavDataMonitor is the startup value passed to
	// receiver.SetEnableNavDataMonitor.
	EnableNavDataMonitor bool `json:"enableNavDataMonitor"`

	// StaleSlotSweepCron is a robfig/cron schedule expression for the
	// stale-PageSlot eviction sweep, e.g. "@every 1m".
	StaleSlotSweepCron string `json:"staleSlotSweepCron"`

	// StaleSlotTTLSeconds is how long a PageSlot may sit with partial
	// coverage before the sweep resets it. Zero disables the sweep,
	// matching spec.md's "default disabled" resolution of the PageSlot
	// TTL open question.
	StaleSlotTTLSeconds uint `json:"staleSlotTTLSeconds"`

	// LogLevel selects the minimum slog level the receiver logs at.
	LogLevel string `json:"logLevel"`
}

// TTL returns StaleSlotTTLSeconds as a time.Duration.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.StaleSlotTTLSeconds) * time.Second
}

// SweepEnabled reports whether the stale-slot sweep should run at all.
func (c *Config) SweepEnabled() bool {
	return c.StaleSlotTTLSeconds > 0 && c.StaleSlotSweepCron != ""
}

// SlogLevel parses LogLevel, defaulting to Info for an empty or unknown
// value.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FromFile reads and parses the JSON control file at path.
func FromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()
	return FromReader(f)
}

// FromReader parses the JSON control file content from r.
func FromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: reading: %w", err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parsing: %w", err)
	}
	return &c, nil
}
