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
	Neighborhood NeighborhoodConfig `yaml:"neighborhood" mapstructure:"neighborhood"`
	Raster       RasterConfig       `yaml:"raster" mapstructure:"raster"`
	Extract      ExtractConfig      `yaml:"extract" mapstructure:"extract"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// NeighborhoodConfig configures the extraction neighborhood.
type NeighborhoodConfig struct {
	// RadiusMeters is the half-width of the square neighborhood, in raster
	// CRS units. The default matches a 5-cell-wide window at 500 m cells.
	RadiusMeters float64 `yaml:"radius_m" mapstructure:"radius_m"`
}

// RasterConfig configures the landcover layer source.
type RasterConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ExtractConfig configures extraction behavior.
type ExtractConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// StoreConfig configures the optional SQLite results store.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
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
	v.SetEnvPrefix("HABITAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("neighborhood.radius_m", 1250.0)
	v.SetDefault("extract.concurrency", 4)
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

// Validate checks the configuration invariants that must hold before any
// extraction begins. A zero or negative radius would produce degenerate
// neighborhoods and is rejected here, not downstream.
func (c *Config) Validate() error {
	if c.Neighborhood.RadiusMeters <= 0 {
		return eris.Errorf("config: neighborhood.radius_m must be positive, got %f", c.Neighborhood.RadiusMeters)
	}
	if c.Extract.Concurrency <= 0 {
		return eris.Errorf("config: extract.concurrency must be positive, got %d", c.Extract.Concurrency)
	}
	return nil
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
