package config

import (
	"errors"
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Data: DataConfig{Directory: "data"},
		Analysis: AnalysisConfig{
			HalfWidth:         300,
			TopN:              2,
			HeatFraction:      0.1,
			ParallelThreshold: 256,
		},
		Server:  ServerConfig{Port: 8080, RatePerSecond: 10, Burst: 20},
		Logging: LoggingConfig{Level: "info"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("expected no error for valid config, got: %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Analysis.HalfWidth = -1
	cfg.Analysis.HeatFraction = 1.5
	cfg.Server.Port = 70000
	cfg.Logging.Level = "verbose"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verrs *ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected *ValidationErrors, got %T", err)
	}
	if len(verrs.Fields) != 4 {
		t.Errorf("expected 4 invalid fields, got %d: %v", len(verrs.Fields), verrs.Fields)
	}

	msg := err.Error()
	for _, key := range []string{"analysis.half_width", "analysis.heat_fraction", "server.port", "logging.level"} {
		if !strings.Contains(msg, key) {
			t.Errorf("error should mention %s, got: %s", key, msg)
		}
	}
}

func TestValidate_HeatFractionBounds(t *testing.T) {
	cfg := validConfig()

	cfg.Analysis.HeatFraction = 1
	if err := cfg.Validate(); err != nil {
		t.Errorf("heat fraction 1 should be accepted: %v", err)
	}

	cfg.Analysis.HeatFraction = 0
	if err := cfg.Validate(); err == nil {
		t.Error("heat fraction 0 should be rejected")
	}
}

func TestValidate_NegativeWorkers(t *testing.T) {
	cfg := validConfig()
	cfg.Analysis.Workers = -2

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "analysis.workers") {
		t.Errorf("expected workers error, got %v", err)
	}
}

func TestValidate_Notify(t *testing.T) {
	cfg := validConfig()
	cfg.Notify = NotifyConfig{Enabled: false, Priority: "bogus"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled notify should not be validated, got: %v", err)
	}

	cfg.Notify.Enabled = true
	err := cfg.Validate()
	var verr *ValidationErrors
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationErrors, got %T", err)
	}
	if len(verr.Fields) != 2 {
		t.Errorf("expected topic and priority errors, got %d: %v", len(verr.Fields), verr)
	}

	cfg.Notify.Topic = "gex"
	cfg.Notify.Priority = "high"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid notify config, got: %v", err)
	}
}
