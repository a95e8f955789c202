package config

import (
	"fmt"
	"math"
	"strings"
)

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validPriorities = map[string]bool{
	"min": true, "low": true, "default": true, "high": true, "urgent": true,
}

// InvalidField is a single rejected configuration value
type InvalidField struct {
	Key    string
	Value  any
	Reason string
}

// ValidationErrors collects all validation errors
type ValidationErrors struct {
	Fields []InvalidField
}

// HasErrors returns true if any validation errors exist
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationErrors) add(key string, value any, reason string) {
	e.Fields = append(e.Fields, InvalidField{Key: key, Value: value, Reason: reason})
}

// Error formats all validation errors into a clear message
func (e *ValidationErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, f := range e.Fields {
		sb.WriteString(fmt.Sprintf("  - %s = %v: %s\n", f.Key, f.Value, f.Reason))
	}
	return sb.String()
}

// Validate checks every value and reports all problems at once.
func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	if c.Data.Directory == "" {
		errs.add("data.directory", c.Data.Directory, "must not be empty")
	}

	a := c.Analysis
	if a.HalfWidth <= 0 || math.IsNaN(a.HalfWidth) || math.IsInf(a.HalfWidth, 0) {
		errs.add("analysis.half_width", a.HalfWidth, "must be a positive number")
	}
	if a.TopN < 1 {
		errs.add("analysis.top_n", a.TopN, "must be >= 1")
	}
	if !(a.HeatFraction > 0 && a.HeatFraction <= 1) {
		errs.add("analysis.heat_fraction", a.HeatFraction, "must be in (0, 1]")
	}
	if a.ParallelThreshold < 1 {
		errs.add("analysis.parallel_threshold", a.ParallelThreshold, "must be >= 1")
	}
	if a.Workers < 0 {
		errs.add("analysis.workers", a.Workers, "must be >= 0 (0 uses every CPU)")
	}

	s := c.Server
	if s.Port < 1 || s.Port > 65535 {
		errs.add("server.port", s.Port, "must be between 1 and 65535")
	}
	if s.RatePerSecond <= 0 {
		errs.add("server.rate_per_second", s.RatePerSecond, "must be > 0")
	}
	if s.Burst < 1 {
		errs.add("server.burst", s.Burst, "must be >= 1")
	}

	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs.add("logging.level", c.Logging.Level, "must be one of debug, info, warn, error")
	}

	if n := c.Notify; n.Enabled {
		if n.Topic == "" {
			errs.add("notify.topic", n.Topic, "is required when notify.enabled is true")
		}
		if !validPriorities[n.Priority] {
			errs.add("notify.priority", n.Priority, "must be one of min, low, default, high, urgent")
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
