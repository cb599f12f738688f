// Package config loads timetag settings from defaults, an optional YAML
// file and TIMETAG_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/sadopc/timetag/internal/store"
)

const (
	KeyDBPath     = "db_path"
	KeyExportDir  = "export_dir"
	KeyWeekStart  = "week_start"
	KeyCSVVariant = "csv_variant"
	KeyLanguage   = "language"
	KeyLogFile    = "log.file"
	KeyLogLevel   = "log.level"
	KeyLogPretty  = "log.pretty"
)

const EnvPrefix = "TIMETAG"

type Config struct {
	DBPath     string    `mapstructure:"db_path" validate:"required"`
	ExportDir  string    `mapstructure:"export_dir" validate:"required"`
	WeekStart  string    `mapstructure:"week_start" validate:"oneof=monday sunday"`
	CSVVariant string    `mapstructure:"csv_variant" validate:"oneof=basic extended"`
	Language   string    `mapstructure:"language" validate:"oneof=en ja es"`
	Log        LogConfig `mapstructure:"log"`

	// Path of the file the values were read from, empty when none was found.
	File string `mapstructure:"-"`
}

type LogConfig struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Pretty bool   `mapstructure:"pretty"`
}

// Weekday returns the configured first day of the week.
func (c Config) Weekday() time.Weekday {
	if c.WeekStart == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// DefaultDir returns $XDG_CONFIG_HOME/timetag (or the platform equivalent).
func DefaultDir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "timetag"), nil
}

func setDefaults(v *viper.Viper) {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		dbPath = "timetag.db"
	}
	exportDir, err := os.UserHomeDir()
	if err != nil {
		exportDir = "."
	}

	v.SetDefault(KeyDBPath, dbPath)
	v.SetDefault(KeyExportDir, exportDir)
	v.SetDefault(KeyWeekStart, "monday")
	v.SetDefault(KeyCSVVariant, "basic")
	v.SetDefault(KeyLanguage, "en")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogPretty, false)
}

// Load reads configuration. An explicit path must exist; otherwise the
// default location is tried and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if dir, err := DefaultDir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg, err := loadAndValidateFromViper(v)
	if err != nil {
		return nil, err
	}
	cfg.File = v.ConfigFileUsed()
	return cfg, nil
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.WeekStart = strings.ToLower(strings.TrimSpace(cfg.WeekStart))
	cfg.CSVVariant = strings.ToLower(strings.TrimSpace(cfg.CSVVariant))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &cfg, nil
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# timetag configuration
# db_path: ~/.config/timetag/timetag.db
# export_dir: ~/
week_start: monday      # monday | sunday
csv_variant: basic      # basic | extended
language: en            # en | ja | es, used until one is chosen in the app

log:
  file: ""
  level: info
  pretty: false
`
}
