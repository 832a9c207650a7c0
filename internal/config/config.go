// Package config loads application configuration and initializes logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Ledger LedgerConfig `yaml:"ledger" mapstructure:"ledger"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig points at the input manifest and output locations.
type DataConfig struct {
	Manifest  string `yaml:"manifest" mapstructure:"manifest"`
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
	ShapesDir string `yaml:"shapes_dir" mapstructure:"shapes_dir"`
}

// LedgerConfig configures the run summary database.
type LedgerConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// FetchConfig configures boundary shapefile downloads.
type FetchConfig struct {
	TractURL       string  `yaml:"tract_url" mapstructure:"tract_url"`
	CountyURL      string  `yaml:"county_url" mapstructure:"county_url"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MOBILITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.manifest", "manifest.yaml")
	v.SetDefault("data.output_dir", "out")
	v.SetDefault("data.shapes_dir", "data/shapes")
	v.SetDefault("ledger.path", "mobility.db")
	v.SetDefault("fetch.tract_url", "https://www2.census.gov/geo/tiger/GENZ2018/shp/cb_2018_17_tract_500k.zip")
	v.SetDefault("fetch.county_url", "https://www2.census.gov/geo/tiger/GENZ2018/shp/cb_2018_us_county_500k.zip")
	v.SetDefault("fetch.timeout_secs", 600)
	v.SetDefault("fetch.requests_per_sec", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
