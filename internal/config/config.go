package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Server   ServerConfig   `mapstructure:"server"`
	Output   OutputConfig   `mapstructure:"output"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

type DataConfig struct {
	Directory string `mapstructure:"directory"`
}

type AnalysisConfig struct {
	HalfWidth         float64 `mapstructure:"half_width"`
	TopN              int     `mapstructure:"top_n"`
	HeatFraction      float64 `mapstructure:"heat_fraction"`
	ParallelThreshold int     `mapstructure:"parallel_threshold"`
	Workers           int     `mapstructure:"workers"` // 0 = GOMAXPROCS
}

type ServerConfig struct {
	Port          int     `mapstructure:"port"`
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
	WSEnabled     bool    `mapstructure:"ws_enabled"`
}

type OutputConfig struct {
	Directory string `mapstructure:"directory"`
}

type LoggingConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Directory string `mapstructure:"directory"`
	Level     string `mapstructure:"level"`
}

// NotifyConfig holds ntfy settings for reload notifications.
type NotifyConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Server   string `mapstructure:"server"`
	Topic    string `mapstructure:"topic"`
	Priority string `mapstructure:"priority"` // min, low, default, high, urgent
	Tags     string `mapstructure:"tags"`     // comma-separated emoji tags
	Token    string `mapstructure:"token"`    // optional, for private topics
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("data.directory", "data")
	v.SetDefault("analysis.half_width", 300.0)
	v.SetDefault("analysis.top_n", 2)
	v.SetDefault("analysis.heat_fraction", 0.1)
	v.SetDefault("analysis.parallel_threshold", 256)
	v.SetDefault("analysis.workers", 0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_per_second", 10.0)
	v.SetDefault("server.burst", 20)
	v.SetDefault("server.ws_enabled", true)
	v.SetDefault("output.directory", "reports")
	v.SetDefault("logging.enabled", true)
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.server", "https://ntfy.sh")
	v.SetDefault("notify.topic", "")
	v.SetDefault("notify.priority", "default")
	v.SetDefault("notify.tags", "chart_with_upwards_trend")
	v.SetDefault("notify.token", "")

	// Environment variable support, e.g. GEXANALYZER_SERVER_PORT
	v.SetEnvPrefix("GEXANALYZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("default")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
