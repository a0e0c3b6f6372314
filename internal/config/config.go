package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Source drivers.
const (
	DriverCSV     = "csv"
	DriverParquet = "parquet"
	DriverSQLite  = "sqlite"
	DriverRedis   = "redis"
)

// Config holds the bookrec service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Auth      AuthConfig      `yaml:"auth"`
	Source    SourceConfig    `yaml:"source"`
	Database  DatabaseConfig  `yaml:"database"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. No keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CORSConfig holds the browser origin allow-list.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxAgeSec      int      `yaml:"max_age_sec"`
}

// RateLimitConfig holds the per-IP limit. Zero disables limiting.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// SourceConfig selects where the raw tables come from.
type SourceConfig struct {
	Driver      string        `yaml:"driver"` // csv, parquet, sqlite, redis
	ItemsPath   string        `yaml:"items_path"`
	RatingsPath string        `yaml:"ratings_path"`
	Delimiter   string        `yaml:"delimiter"`
	SQLite      SQLiteConfig  `yaml:"sqlite"`
	Columns     ColumnsConfig `yaml:"columns"`
}

// SQLiteConfig holds the sqlite driver settings.
type SQLiteConfig struct {
	DSN          string `yaml:"dsn"`
	ItemsTable   string `yaml:"items_table"`
	RatingsTable string `yaml:"ratings_table"`
}

// ColumnsConfig maps collaborator headers to catalog fields.
type ColumnsConfig struct {
	ItemID        string `yaml:"item_id"`
	Title         string `yaml:"title"`
	Author        string `yaml:"author"`
	ImageURL      string `yaml:"image_url"`
	ImageURLSmall string `yaml:"image_url_small"`
	ImageURLLarge string `yaml:"image_url_large"`
	Price         string `yaml:"price"` // optional; empty means synthesized prices
	UserID        string `yaml:"user_id"`
	RatingItemID  string `yaml:"rating_item_id"`
	Rating        string `yaml:"rating"`
}

// DatabaseConfig holds Redis connection settings, used by the redis source and the seeder.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
}

// PipelineConfig holds the recommendation pipeline settings.
type PipelineConfig struct {
	MinUserRatings    int    `yaml:"min_user_ratings"`
	MinTitleRatings   int    `yaml:"min_title_ratings"`
	DefaultK          int    `yaml:"default_k"`
	MaxK              int    `yaml:"max_k"`
	PopularMinRatings int    `yaml:"popular_min_ratings"`
	PopularLimit      int    `yaml:"popular_limit"`
	PriceMin          int    `yaml:"price_min"`
	PriceMax          int    `yaml:"price_max"`
	PriceSeed         uint64 `yaml:"price_seed"` // 0 = seeded from the clock
	Workers           int    `yaml:"workers"`    // 0 = GOMAXPROCS
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:8800"}
	}
	if c.CORS.MaxAgeSec <= 0 {
		c.CORS.MaxAgeSec = 300
	}
	if c.Source.Driver == "" {
		c.Source.Driver = DriverCSV
	}
	if c.Source.Delimiter == "" {
		c.Source.Delimiter = ","
	}
	c.Source.Columns.applyDefaults()
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "bookrec:"
	}
	c.Pipeline.applyDefaults()
}

func (c *ColumnsConfig) applyDefaults() {
	setDefault(&c.ItemID, "ISBN")
	setDefault(&c.Title, "Book-Title")
	setDefault(&c.Author, "Book-Author")
	setDefault(&c.ImageURL, "Image-URL-M")
	setDefault(&c.ImageURLSmall, "Image-URL-S")
	setDefault(&c.ImageURLLarge, "Image-URL-L")
	setDefault(&c.UserID, "User-ID")
	setDefault(&c.RatingItemID, "ISBN")
	setDefault(&c.Rating, "Book-Rating")
}

func (p *PipelineConfig) applyDefaults() {
	if p.MinUserRatings <= 0 {
		p.MinUserRatings = 100
	}
	if p.MinTitleRatings <= 0 {
		p.MinTitleRatings = 20
	}
	if p.DefaultK <= 0 {
		p.DefaultK = 9
	}
	if p.MaxK <= 0 {
		p.MaxK = 50
	}
	if p.PopularMinRatings <= 0 {
		p.PopularMinRatings = 250
	}
	if p.PopularLimit <= 0 {
		p.PopularLimit = 50
	}
	if p.PriceMin == 0 && p.PriceMax == 0 {
		p.PriceMin, p.PriceMax = 200, 1000
	}
}

func setDefault(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rate_limit.requests_per_minute must not be negative")
	}
	if err := c.validateSource(); err != nil {
		return err
	}
	p := c.Pipeline
	if p.DefaultK > p.MaxK {
		return fmt.Errorf("pipeline.default_k (%d) must not exceed pipeline.max_k (%d)", p.DefaultK, p.MaxK)
	}
	if p.PriceMin < 0 || p.PriceMax < p.PriceMin {
		return fmt.Errorf("pipeline price range [%d, %d] is invalid", p.PriceMin, p.PriceMax)
	}
	if p.Workers < 0 {
		return fmt.Errorf("pipeline.workers must not be negative")
	}
	return nil
}

func (c *Config) validateSource() error {
	s := c.Source
	switch s.Driver {
	case DriverCSV, DriverParquet:
		if s.ItemsPath == "" || s.RatingsPath == "" {
			return fmt.Errorf("source.items_path and source.ratings_path are required for driver %q", s.Driver)
		}
		if utf8.RuneCountInString(s.Delimiter) != 1 {
			return fmt.Errorf("source.delimiter must be a single character, got %q", s.Delimiter)
		}
	case DriverSQLite:
		if s.SQLite.DSN == "" {
			return fmt.Errorf("source.sqlite.dsn is required for driver %q", s.Driver)
		}
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", s.Driver)
		}
	default:
		return fmt.Errorf("source.driver must be one of csv, parquet, sqlite, redis, got %q", s.Driver)
	}
	return nil
}

// DelimiterRune returns the configured field delimiter.
func (s SourceConfig) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(s.Delimiter)
	if r == utf8.RuneError {
		return ','
	}
	return r
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
