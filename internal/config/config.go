// Package config loads watcher configuration from a YAML file and the
// environment. Precedence is flags > environment > file > defaults; the flag
// layer is applied by the command itself.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/a123ao/async-excel-go/pkg/asyncexcel"
)

// Duration wraps time.Duration so YAML values like "500ms" or "2s" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds everything the watcher command needs to run.
type Config struct {
	File     string    `yaml:"file"`
	Sheet    string    `yaml:"sheet"`
	Interval Duration  `yaml:"interval"`
	AutoSave bool      `yaml:"auto_save"`
	Visible  bool      `yaml:"visible"`
	Create   bool      `yaml:"create"`
	Engine   string    `yaml:"engine"`
	Log      LogConfig `yaml:"log"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// Default returns the configuration matching the library defaults.
func Default() Config {
	return Config{
		Interval: Duration(time.Second),
		AutoSave: true,
		Visible:  true,
		Engine:   "xlsx",
		Log:      LogConfig{Level: "info", Format: "console"},
	}
}

// Load builds a Config from defaults, an optional YAML file, and XLWATCH_*
// environment variables. A .env file in the working directory is honored when
// present.
func Load(path string) (Config, error) {
	cfg := Default()

	// Optional; a missing .env is not an error.
	_ = godotenv.Load()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("XLWATCH_FILE"); v != "" {
		cfg.File = v
	}
	if v := os.Getenv("XLWATCH_SHEET"); v != "" {
		cfg.Sheet = v
	}
	if v := os.Getenv("XLWATCH_INTERVAL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("XLWATCH_INTERVAL: %w", err)
		}
		cfg.Interval = Duration(parsed)
	}
	if v := os.Getenv("XLWATCH_AUTO_SAVE"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("XLWATCH_AUTO_SAVE: %w", err)
		}
		cfg.AutoSave = parsed
	}
	if v := os.Getenv("XLWATCH_VISIBLE"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("XLWATCH_VISIBLE: %w", err)
		}
		cfg.Visible = parsed
	}
	if v := os.Getenv("XLWATCH_ENGINE"); v != "" {
		cfg.Engine = v
	}
	if v := os.Getenv("XLWATCH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("XLWATCH_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

// Validate checks the values a session or engine would reject, so bad
// configuration fails before any automation object is started.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %v",
			asyncexcel.ErrInvalidConfig, time.Duration(c.Interval))
	}
	switch c.Engine {
	case "xlsx", "com":
	default:
		return fmt.Errorf("%w: unknown engine %q (must be xlsx or com)",
			asyncexcel.ErrInvalidConfig, c.Engine)
	}
	return nil
}
