package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.RegionName != "California" {
		t.Errorf("RegionName: got %q, want California", cfg.RegionName)
	}
	if cfg.MapWidth != 900 || cfg.MapHeight != 600 {
		t.Errorf("map size: got %dx%d, want 900x600", cfg.MapWidth, cfg.MapHeight)
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{Min: 0, Max: 1000, Step: 50}

	tests := []struct {
		v    float64
		want bool
	}{
		{0, true},
		{50, true},
		{1000, true},
		{75, false},
		{-50, false},
		{1050, false},
	}

	for _, tt := range tests {
		if got := r.Contains(tt.v); got != tt.want {
			t.Errorf("Contains(%v) = %v; want %v", tt.v, got, tt.want)
		}
	}
}

func TestLoadLayersYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.yaml")
	yamlDoc := `
region_name: Nevada
csv_path: from-yaml.csv
min_parking:
  min: 0
  max: 500
  step: 25
  default: 25
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("CSV_PATH", "from-env.csv")
	t.Setenv("DROP_INCOMPLETE", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RegionName != "Nevada" {
		t.Errorf("RegionName: got %q, want Nevada (yaml)", cfg.RegionName)
	}
	if cfg.CSVPath != "from-env.csv" {
		t.Errorf("CSVPath: got %q, want env to win over yaml", cfg.CSVPath)
	}
	if cfg.DropIncomplete {
		t.Error("DropIncomplete: env false should override default true")
	}
	if cfg.MinParking.Max != 500 || cfg.MinParking.Step != 25 {
		t.Errorf("MinParking: got %+v", cfg.MinParking)
	}
	if cfg.MinSize.Max != 1500000 {
		t.Errorf("MinSize should keep its default, got %+v", cfg.MinSize)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("zoom: [not, a, number"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Error("expected an error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown source", func(c *Config) { c.DataSource = "excel" }},
		{"sql without dsn", func(c *Config) { c.DataSource = "postgres" }},
		{"zero width", func(c *Config) { c.MapWidth = 0 }},
		{"zoom too deep", func(c *Config) { c.Zoom = 30 }},
		{"default off step", func(c *Config) { c.MinSize.Default = 12345 }},
		{"empty region", func(c *Config) { c.RegionName = "" }},
		{"no boundary timeout", func(c *Config) { c.BoundaryTimeout = 0 }},
	}

	for _, tt := range tests {
		cfg := Defaults()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}
