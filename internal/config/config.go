package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration. YAML is the canonical
// on-disk form; ADJCAL_* environment variables override individual fields
// after the file is loaded (see ApplyEnv).
type Config struct {
	// DatesFile is the input text file, one YYYY-MM-DD date per line.
	DatesFile string `yaml:"dates_file" env:"ADJCAL_DATES_FILE"`

	// CalendarFile is the ICS output file updated in place.
	CalendarFile string `yaml:"calendar_file" env:"ADJCAL_CALENDAR_FILE"`

	// EventSummary is the fixed title used both to recognize existing
	// adjusted-workday events and to label newly added ones.
	EventSummary string `yaml:"event_summary" env:"ADJCAL_EVENT_SUMMARY"`

	// CommentPrefix marks ignored lines in the dates file.
	CommentPrefix string `yaml:"comment_prefix" env:"ADJCAL_COMMENT_PREFIX"`

	// ProductID is the PRODID written into freshly created calendars.
	ProductID string `yaml:"product_id" env:"ADJCAL_PRODUCT_ID"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"ADJCAL_LOG_LEVEL"`

	// AssumeYes answers every confirmation prompt affirmatively.
	// Not persisted; set via env or the -yes flag.
	AssumeYes bool `yaml:"-" env:"ADJCAL_YES"`

	// Force allows overwriting a calendar file whose existing content
	// could not be parsed, without asking first. Not persisted.
	Force bool `yaml:"-" env:"ADJCAL_FORCE"`
}

// DefaultConfig returns an in-memory default configuration matching the
// values the tool has always shipped with.
func DefaultConfig() *Config {
	return &Config{
		DatesFile:     "adjusted_dates.txt",
		CalendarFile:  "china_adjusted_workdays.ics",
		EventSummary:  "调休上班",
		CommentPrefix: "#",
		ProductID:     "-//adjcal//Adjusted Workdays//CN",
		LogLevel:      "info",
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.DatesFile == "" {
		c.DatesFile = d.DatesFile
	}
	if c.CalendarFile == "" {
		c.CalendarFile = d.CalendarFile
	}
	if c.EventSummary == "" {
		c.EventSummary = d.EventSummary
	}
	if c.CommentPrefix == "" {
		c.CommentPrefix = d.CommentPrefix
	}
	if c.ProductID == "" {
		c.ProductID = d.ProductID
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// ApplyEnv overlays ADJCAL_* environment variables onto cfg. A .env file in
// the working directory is loaded first if present, so scripted runs can keep
// their overrides next to the dates file. Variables that are unset leave the
// corresponding field untouched.
func ApplyEnv(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return err
	}
	cfg.Normalize()
	return nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
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

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".adjcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
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

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}
