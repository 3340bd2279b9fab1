package config

import (
	"reflect"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Mode = "replay" }},
		{"unknown device", func(c *Config) { c.Device.Type = "labjack" }},
		{"zero sample rate", func(c *Config) { c.SampleRateHz = 0 }},
		{"ignition below burnout", func(c *Config) { c.IgnitionTrigger = 5 }},
		{"negative retries", func(c *Config) { c.ReadRetries = -1 }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mod(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestThresholdsExtraction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IgnitionTrigger = 30
	cfg.BurnoutTrigger = 15
	cfg.SampleRateHz = 100
	thr := cfg.Thresholds()
	if thr.IgnitionTrigger != 30 || thr.BurnoutTrigger != 15 || thr.SampleRateHz != 100 {
		t.Fatalf("thresholds: %+v", thr)
	}
	if thr.DebounceSamples() != 50 {
		t.Fatalf("debounce samples: got %d want 50", thr.DebounceSamples())
	}
}

func TestConverterExtraction(t *testing.T) {
	cfg := DefaultConfig()
	c := cfg.Converter(true)
	if !c.ZeroClamp {
		t.Fatal("clamp flag not propagated")
	}
	if c.Thrust != cfg.ThrustCalibration || c.Pressure != cfg.PressureCalibration {
		t.Fatal("calibration params not propagated")
	}
	if cfg.Converter(false).ZeroClamp {
		t.Fatal("raw converter should not clamp")
	}
}

func TestParseIntOrHex(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"72", 72, true},
		{"0x48", 0x48, true},
		{"0X4a", 0x4a, true},
		{"zz", 0, false},
	}
	for _, tt := range tests {
		got, err := parseIntOrHex(tt.in)
		if (err == nil) != tt.ok {
			t.Fatalf("parseIntOrHex(%q) ok=%v err=%v", tt.in, tt.ok, err)
		}
		if tt.ok && got != tt.want {
			t.Fatalf("parseIntOrHex(%q) = %d; want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseCSV(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"console", []string{"console"}},
		{"console, mqtt", []string{"console", "mqtt"}},
		{" console ,, mqtt ,", []string{"console", "mqtt"}},
	}
	for _, tt := range tests {
		if got := parseCSV(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("parseCSV(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}
