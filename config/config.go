package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const defaultBoundaryURL = "https://raw.githubusercontent.com/PublicaMundi/MappingAPI/master/data/geojson/us-states.json"

// Range bounds a numeric filter control: the user can pick any value in
// [Min, Max] that is a multiple of Step above Min.
type Range struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Step    float64 `yaml:"step"`
	Default float64 `yaml:"default"`
}

// Contains reports whether v is a selectable value of the range.
func (r Range) Contains(v float64) bool {
	if v < r.Min || v > r.Max {
		return false
	}
	if r.Step <= 0 {
		return true
	}
	steps := (v - r.Min) / r.Step
	return steps == float64(int64(steps))
}

// Config holds all application configuration. Values are layered:
// built-in defaults, then the optional YAML file, then environment variables.
type Config struct {
	DataSource     string `yaml:"data_source"`
	CSVPath        string `yaml:"csv_path"`
	DatabaseDSN    string `yaml:"database_dsn"`
	ListingsTable  string `yaml:"listings_table"`
	DropIncomplete bool   `yaml:"drop_incomplete"`
	PadShortZips   bool   `yaml:"pad_short_zips"`

	BoundaryURL       string `yaml:"boundary_url"`
	BoundaryShapefile string `yaml:"boundary_shapefile"`
	BoundaryNameField string `yaml:"boundary_name_field"`
	RegionName        string `yaml:"region_name"`
	BoundaryTimeout   int    `yaml:"boundary_timeout_seconds"`
	BoundaryRetries   int    `yaml:"boundary_max_retries"`

	HTTPAddr  string  `yaml:"http_addr"`
	CenterLat float64 `yaml:"center_lat"`
	CenterLon float64 `yaml:"center_lon"`
	Zoom      int     `yaml:"zoom"`
	MapWidth  int     `yaml:"map_width"`
	MapHeight int     `yaml:"map_height"`

	MinSize    Range `yaml:"min_size"`
	MinParking Range `yaml:"min_parking"`

	ChromeBin string `yaml:"chrome_bin"`
	LogLevel  string `yaml:"log_level"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		DataSource:     "csv",
		CSVPath:        "Costar_GEO_CLEANED_CA.csv",
		ListingsTable:  "listings",
		DropIncomplete: true,
		PadShortZips:   true,

		BoundaryURL:       defaultBoundaryURL,
		BoundaryNameField: "name",
		RegionName:        "California",
		BoundaryTimeout:   15,
		BoundaryRetries:   1,

		HTTPAddr:  ":8501",
		CenterLat: 36.7783,
		CenterLon: -119.4179,
		Zoom:      7,
		MapWidth:  900,
		MapHeight: 600,

		MinSize:    Range{Min: 0, Max: 1500000, Step: 10000, Default: 50000},
		MinParking: Range{Min: 0, Max: 1000, Step: 50, Default: 50},

		LogLevel: "info",
	}
}

// Load reads the .env file and the optional YAML file and returns a
// populated Config. A malformed YAML file is an error; a missing one is not.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := Defaults()

	path := getEnv("CONFIG_FILE", "config.yaml")
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.DataSource = strings.ToLower(getEnv("DATA_SOURCE", c.DataSource))
	c.CSVPath = getEnv("CSV_PATH", c.CSVPath)
	c.DatabaseDSN = getEnv("DATABASE_DSN", c.DatabaseDSN)
	c.ListingsTable = getEnv("LISTINGS_TABLE", c.ListingsTable)
	c.DropIncomplete = getEnvBool("DROP_INCOMPLETE", c.DropIncomplete)
	c.PadShortZips = getEnvBool("PAD_SHORT_ZIPS", c.PadShortZips)

	c.BoundaryURL = getEnv("BOUNDARY_URL", c.BoundaryURL)
	c.BoundaryShapefile = getEnv("BOUNDARY_SHAPEFILE", c.BoundaryShapefile)
	c.BoundaryNameField = getEnv("BOUNDARY_NAME_FIELD", c.BoundaryNameField)
	c.RegionName = getEnv("REGION_NAME", c.RegionName)
	c.BoundaryTimeout = getEnvInt("BOUNDARY_TIMEOUT_SECONDS", c.BoundaryTimeout)
	c.BoundaryRetries = getEnvInt("BOUNDARY_MAX_RETRIES", c.BoundaryRetries)

	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	c.CenterLat = getEnvFloat("MAP_CENTER_LAT", c.CenterLat)
	c.CenterLon = getEnvFloat("MAP_CENTER_LON", c.CenterLon)
	c.Zoom = getEnvInt("MAP_ZOOM", c.Zoom)
	c.MapWidth = getEnvInt("MAP_WIDTH", c.MapWidth)
	c.MapHeight = getEnvInt("MAP_HEIGHT", c.MapHeight)

	c.ChromeBin = getEnv("CHROME_BIN", c.ChromeBin)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate rejects settings the rest of the program cannot work with.
func (c *Config) Validate() error {
	switch c.DataSource {
	case "csv":
		if c.CSVPath == "" {
			return errors.New("config: CSV_PATH is required for the csv data source")
		}
	case "postgres", "oracle", "sqlite":
		if c.DatabaseDSN == "" {
			return fmt.Errorf("config: DATABASE_DSN is required for the %s data source", c.DataSource)
		}
		if c.ListingsTable == "" {
			return errors.New("config: LISTINGS_TABLE must not be empty")
		}
	default:
		return fmt.Errorf("config: unknown DATA_SOURCE %q", c.DataSource)
	}

	if c.MapWidth <= 0 || c.MapHeight <= 0 {
		return fmt.Errorf("config: map size must be positive, got %dx%d", c.MapWidth, c.MapHeight)
	}
	if c.Zoom < 0 || c.Zoom > 18 {
		return fmt.Errorf("config: zoom %d out of range 0..18", c.Zoom)
	}
	if c.BoundaryTimeout <= 0 {
		return fmt.Errorf("config: BOUNDARY_TIMEOUT_SECONDS must be positive, got %d", c.BoundaryTimeout)
	}
	if c.RegionName == "" {
		return errors.New("config: REGION_NAME must not be empty")
	}
	for name, r := range map[string]Range{"min_size": c.MinSize, "min_parking": c.MinParking} {
		if r.Min < 0 || r.Max < r.Min {
			return fmt.Errorf("config: %s range [%v, %v] is invalid", name, r.Min, r.Max)
		}
		if !r.Contains(r.Default) {
			return fmt.Errorf("config: %s default %v is not a selectable value", name, r.Default)
		}
	}
	return nil
}

// DSN returns the connection string for the SQL data sources.
func (c *Config) DSN() string {
	return c.DatabaseDSN
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
