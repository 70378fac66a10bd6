package config

import (
	"testing"
	"time"
)

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback time.Duration
		want     time.Duration
	}{
		{name: "unset uses fallback", value: "", fallback: time.Minute, want: time.Minute},
		{name: "go duration", value: "90s", fallback: 0, want: 90 * time.Second},
		{name: "bare seconds", value: "30", fallback: 0, want: 30 * time.Second},
		{name: "garbage uses fallback", value: "soon", fallback: time.Hour, want: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION_KEY", tt.value)
			if got := getEnvDuration("TEST_DURATION_KEY", tt.fallback); got != tt.want {
				t.Fatalf("getEnvDuration(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseOrigins(t *testing.T) {
	if got := parseOrigins(""); got != nil {
		t.Fatalf("parseOrigins(\"\") = %v, want nil", got)
	}
	got := parseOrigins(" https://a.example , ,https://b.example")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("parseOrigins = %v, want two trimmed origins", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TIME_POLICY", "")
	t.Setenv("WEAKNESS_THRESHOLD", "")
	cfg := Load()
	if cfg.TimePolicy != "overwrite" {
		t.Fatalf("TimePolicy = %q, want overwrite", cfg.TimePolicy)
	}
	if cfg.WeaknessThreshold != 0.65 {
		t.Fatalf("WeaknessThreshold = %v, want 0.65", cfg.WeaknessThreshold)
	}
}
