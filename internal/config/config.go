package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no -config flag is given.
const DefaultPath = "/etc/meetcal/config.yaml"

// GridConfig describes the day grid of the calendar view.
type GridConfig struct {
	// DayStart is the "HH:MM" time of the first slot.
	DayStart    string  `yaml:"day_start" json:"day_start"`
	SlotMinutes int     `yaml:"slot_minutes" json:"slot_minutes"`
	SlotCount   int     `yaml:"slot_count" json:"slot_count"`
	SlotHeight  float64 `yaml:"slot_height" json:"slot_height"`
}

// DayStartOffset parses DayStart as an offset from midnight.
func (g GridConfig) DayStartOffset() (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(g.DayStart))
	if err != nil {
		return 0, fmt.Errorf("config: invalid grid.day_start %q: %w", g.DayStart, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// WorkbookConfig points at a workbook imported on startup and, optionally,
// re-imported on a schedule.
type WorkbookConfig struct {
	// Path of the .xlsx/.xlsm file. Empty disables file imports.
	Path string `yaml:"path" json:"path"`

	// Reimport is a cron spec (e.g. "*/15 * * * *"). Empty disables it.
	Reimport string `yaml:"reimport" json:"reimport"`
}

// CaptureConfig controls the headless browser screenshot of the renderer.
type CaptureConfig struct {
	// URL of the page that renders the week view.
	URL            string `yaml:"url" json:"url"`
	Output         string `yaml:"output" json:"output"`
	Width          int    `yaml:"width" json:"width"`
	Height         int    `yaml:"height" json:"height"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone meeting dates are built in (e.g. "Asia/Riyadh").
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// SheetName is the worksheet holding the meeting rows.
	SheetName string `yaml:"sheet_name" json:"sheet_name"`

	Grid     GridConfig     `yaml:"grid" json:"grid"`
	Workbook WorkbookConfig `yaml:"workbook" json:"workbook"`
	Capture  CaptureConfig  `yaml:"capture" json:"capture"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// Normalize fills in missing values with defaults and resets unknown
// enumeration values.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Riyadh"
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = "info"
	}
	if c.SheetName == "" {
		c.SheetName = "Data"
	}

	if _, err := c.Grid.DayStartOffset(); err != nil {
		c.Grid.DayStart = "10:00"
	}
	if c.Grid.SlotMinutes <= 0 {
		c.Grid.SlotMinutes = 15
	}
	if c.Grid.SlotCount <= 0 {
		c.Grid.SlotCount = 41
	}
	if c.Grid.SlotHeight <= 0 {
		c.Grid.SlotHeight = 30
	}

	if c.Capture.URL == "" {
		c.Capture.URL = "http://127.0.0.1:3000/"
	}
	if c.Capture.Output == "" {
		c.Capture.Output = "/var/lib/meetcal/preview.png"
	}
	if c.Capture.Width <= 0 {
		c.Capture.Width = 1920
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = 1080
	}
	if c.Capture.TimeoutSeconds <= 0 {
		c.Capture.TimeoutSeconds = 30
	}

	if c.BasicAuth != nil && c.BasicAuth.Username == "" && c.BasicAuth.Password == "" {
		c.BasicAuth = nil
	}
}

// Location resolves Timezone, falling back to time.Local when it is unknown.
func (c *Config) Location() *time.Location {
	if c.Timezone != "" {
		if loc, err := time.LoadLocation(c.Timezone); err == nil {
			return loc
		}
	}
	return time.Local
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there with 0600
// permissions and returned. Otherwise the file is decoded and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg with the error so the caller can still start.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file in the same directory, then
// rename) with 0600 permissions, creating the directory with 0700.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".meetcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
