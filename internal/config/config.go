// Package config loads sheetstats settings from a YAML file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/ukaji3/sheetstats-go/pkg/sheetstats"
	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/parser"
)

// EnvPrefix prefixes every environment variable, e.g. SHEETSTATS_SERVER_ADDR.
const EnvPrefix = "SHEETSTATS"

// ConfigFileEnv names the variable holding the YAML config path.
const ConfigFileEnv = EnvPrefix + "_CONFIG"

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Layout  LayoutConfig  `yaml:"layout" envconfig:"LAYOUT"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Addr            string        `yaml:"addr" envconfig:"ADDR" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gte=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gte=0"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
	SessionTTL      time.Duration `yaml:"session_ttl" envconfig:"SESSION_TTL" validate:"gt=0"`
	UploadRPS       float64       `yaml:"upload_rps" envconfig:"UPLOAD_RPS" validate:"gt=0"`
	UploadBurst     int           `yaml:"upload_burst" envconfig:"UPLOAD_BURST" validate:"gte=1"`
	MaxBuckets      int           `yaml:"max_buckets" envconfig:"MAX_BUCKETS" validate:"gte=1"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// LayoutConfig describes where events live in uploaded workbooks
type LayoutConfig struct {
	Mode             string   `yaml:"mode" envconfig:"MODE" validate:"oneof=sheets lookup"`
	StartRow         int      `yaml:"start_row" envconfig:"START_ROW" validate:"gte=1"`
	DateColumn       string   `yaml:"date_column" envconfig:"DATE_COLUMN" validate:"required,alpha"`
	TimeColumn       string   `yaml:"time_column" envconfig:"TIME_COLUMN" validate:"required,alpha"`
	FrequencyColumn  string   `yaml:"frequency_column" envconfig:"FREQUENCY_COLUMN" validate:"omitempty,alpha"`
	TitleCell        string   `yaml:"title_cell" envconfig:"TITLE_CELL" validate:"omitempty,alphanum"`
	DataSheet        string   `yaml:"data_sheet" envconfig:"DATA_SHEET"`
	LookupSheet      string   `yaml:"lookup_sheet" envconfig:"LOOKUP_SHEET"`
	LookupStartRow   int      `yaml:"lookup_start_row" envconfig:"LOOKUP_START_ROW" validate:"gte=1"`
	LookupNameColumn string   `yaml:"lookup_name_column" envconfig:"LOOKUP_NAME_COLUMN" validate:"required,alpha"`
	LookupCodeColumn string   `yaml:"lookup_code_column" envconfig:"LOOKUP_CODE_COLUMN" validate:"required,alpha"`
	ServiceSheets    []string `yaml:"service_sheets" envconfig:"SERVICE_SHEETS"`
	Timezone         string   `yaml:"timezone" envconfig:"TIMEZONE"`
}

// Load builds the configuration. Values come from, lowest precedence first:
// built-in defaults, the YAML file at path (or $SHEETSTATS_CONFIG), a .env
// file in the working directory, and the process environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyDefaults fills every unset field with its default
func (c *Config) applyDefaults() {
	setString(&c.Server.Addr, ":8080")
	setDuration(&c.Server.ReadTimeout, 15*time.Second)
	setDuration(&c.Server.WriteTimeout, 30*time.Second)
	setDuration(&c.Server.IdleTimeout, 60*time.Second)
	setDuration(&c.Server.ShutdownTimeout, 10*time.Second)
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 32 << 20
	}
	setDuration(&c.Server.SessionTTL, 2*time.Hour)
	if c.Server.UploadRPS == 0 {
		c.Server.UploadRPS = 2
	}
	setInt(&c.Server.UploadBurst, 5)
	setInt(&c.Server.MaxBuckets, 24*366)

	setString(&c.Logging.Level, "info")
	setString(&c.Logging.Format, "json")
	setString(&c.Logging.Output, "console")
	setString(&c.Logging.FilePath, "logs/sheetstats.log")

	defaults := sheetstats.DefaultOptions()
	setString(&c.Layout.Mode, string(defaults.Layout))
	setInt(&c.Layout.StartRow, defaults.Columns.StartRow)
	setString(&c.Layout.DateColumn, defaults.Columns.Date)
	setString(&c.Layout.TimeColumn, defaults.Columns.Time)
	if c.Layout.Mode == string(sheetstats.LayoutLookup) {
		setString(&c.Layout.FrequencyColumn, sheetstats.DefaultLookupOptions().Columns.Frequency)
	} else {
		setString(&c.Layout.TitleCell, defaults.TitleCell)
	}
	setString(&c.Layout.DataSheet, defaults.DataSheet)
	setString(&c.Layout.LookupSheet, defaults.LookupSheet)
	setInt(&c.Layout.LookupStartRow, defaults.Lookup.StartRow)
	setString(&c.Layout.LookupNameColumn, defaults.Lookup.Name)
	setString(&c.Layout.LookupCodeColumn, defaults.Lookup.Code)
	if c.Layout.ServiceSheets == nil {
		c.Layout.ServiceSheets = defaults.ServiceSheets
	}
	setString(&c.Layout.Timezone, "Local")
}

// Validate checks field constraints and the resulting layout options.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if _, err := c.Layout.Options(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured time zone.
func (l LayoutConfig) Location() (*time.Location, error) {
	switch strings.ToLower(strings.TrimSpace(l.Timezone)) {
	case "", "local":
		return time.Local, nil
	case "utc":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", l.Timezone, err)
	}
	return loc, nil
}

// Options converts the layout settings into analyzer options.
func (l LayoutConfig) Options() (sheetstats.Options, error) {
	layout, err := sheetstats.ParseLayout(l.Mode)
	if err != nil {
		return sheetstats.Options{}, err
	}
	loc, err := l.Location()
	if err != nil {
		return sheetstats.Options{}, err
	}

	opts := sheetstats.Options{
		Layout: layout,
		Columns: parser.Columns{
			StartRow:  l.StartRow,
			Date:      l.DateColumn,
			Time:      l.TimeColumn,
			Frequency: l.FrequencyColumn,
		},
		TitleCell:     l.TitleCell,
		ServiceSheets: l.ServiceSheets,
		DataSheet:     l.DataSheet,
		LookupSheet:   l.LookupSheet,
		Lookup: parser.LookupColumns{
			StartRow: l.LookupStartRow,
			Name:     l.LookupNameColumn,
			Code:     l.LookupCodeColumn,
		},
		Location: loc,
	}
	if err := opts.Validate(); err != nil {
		return sheetstats.Options{}, err
	}
	return opts, nil
}

func setString(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

func setInt(field *int, def int) {
	if *field == 0 {
		*field = def
	}
}

func setDuration(field *time.Duration, def time.Duration) {
	if *field == 0 {
		*field = def
	}
}
