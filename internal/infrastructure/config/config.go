// Package config loads runner configuration from config.yaml, MIRROIR_ env
// variables and defaults, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mirror   MirrorConfig   `mapstructure:"mirror"`
	Engine   EngineConfig   `mapstructure:"engine"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Report   ReportConfig   `mapstructure:"report"`
}

// MirrorConfig points the driver at the device mirror page.
type MirrorConfig struct {
	URL        string        `mapstructure:"url"`
	Headless   bool          `mapstructure:"headless"`
	SlowMotion time.Duration `mapstructure:"slow_motion"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type EngineConfig struct {
	SettleDelay    time.Duration `mapstructure:"settle_delay"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
	MaxScrolls     int           `mapstructure:"max_scrolls"`
	MeasureMax     time.Duration `mapstructure:"measure_max"`
}

type OCRConfig struct {
	Language string `mapstructure:"language"`
	// PixelScale is capture pixels per window point; 0 means autodetect.
	PixelScale float64 `mapstructure:"pixel_scale"`
}

// AnalyzerConfig configures the optional remote analyzer. The API key comes
// from the environment, never the config file.
type AnalyzerConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LoggerConfig struct {
	Dir        string `mapstructure:"dir"`
	Verbose    bool   `mapstructure:"verbose"`
	MaxSizeMB  int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type ReportConfig struct {
	JUnitPath     string `mapstructure:"junit_path"`
	ScreenshotDir string `mapstructure:"screenshot_dir"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mirror.headless", true)
	v.SetDefault("mirror.timeout", "10s")

	v.SetDefault("engine.settle_delay", "800ms")
	v.SetDefault("engine.poll_interval", "500ms")
	v.SetDefault("engine.default_timeout", "10s")
	v.SetDefault("engine.max_scrolls", 10)
	v.SetDefault("engine.measure_max", "30s")

	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.pixel_scale", 0)

	v.SetDefault("analyzer.enabled", false)
	v.SetDefault("analyzer.timeout", "20s")

	v.SetDefault("logger.dir", "log")
	v.SetDefault("logger.verbose", false)
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 5)

	v.SetDefault("report.junit_path", "")
	v.SetDefault("report.screenshot_dir", "screenshots")
}

// Load reads the config file at path, or ./config.yaml when path is empty.
// A missing file is fine; defaults and environment cover everything but the
// mirror URL.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("MIRROIR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Engine.PollInterval <= 0 {
		return fmt.Errorf("engine.poll_interval must be a positive duration")
	}
	if c.Engine.MaxScrolls <= 0 {
		return fmt.Errorf("engine.max_scrolls must be a positive integer")
	}
	if c.OCR.PixelScale < 0 {
		return fmt.Errorf("ocr.pixel_scale cannot be negative")
	}
	return nil
}
