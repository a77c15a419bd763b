package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
	MockData    MockDataConfig  `mapstructure:"mock_data"`
	Analytics   AnalyticsConfig `mapstructure:"analytics"`
}

type ServerConfig struct {
	Port              int    `mapstructure:"port"`
	ReadTimeout       string `mapstructure:"read_timeout"`
	WriteTimeout      string `mapstructure:"write_timeout"`
	ReadHeaderTimeout string `mapstructure:"read_header_timeout"`
	IdleTimeout       string `mapstructure:"idle_timeout"`
	ShutdownTimeout   string `mapstructure:"shutdown_timeout"`
}

type TelemetryConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	Exporter       string  `mapstructure:"exporter"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	ServiceVersion string  `mapstructure:"service_version"`
	SampleRate     float64 `mapstructure:"sample_rate"`
	ExportLogs     bool    `mapstructure:"export_logs"`
}

type MockDataConfig struct {
	HistoryDays      int     `mapstructure:"history_days"`
	Seed             int64   `mapstructure:"seed"`
	SpikeProbability float64 `mapstructure:"spike_probability"`
}

type AnalyticsConfig struct {
	ShortWindow      int     `mapstructure:"short_window"`
	LongWindow       int     `mapstructure:"long_window"`
	VolatilityWindow int     `mapstructure:"volatility_window"`
	HighVolumeK      float64 `mapstructure:"high_volume_k"`
	RecentRows       int     `mapstructure:"recent_rows"`
}

// MaxHistoryDays bounds the length of a generated series.
const MaxHistoryDays = 3650

func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("server.port", "PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind PORT environment variable: %w", err)
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Normalize environment to lowercase for consistent comparison
	config.Environment = strings.ToLower(config.Environment)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks ranges that viper cannot express.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	for name, value := range map[string]string{
		"server.read_timeout":        c.Server.ReadTimeout,
		"server.write_timeout":       c.Server.WriteTimeout,
		"server.read_header_timeout": c.Server.ReadHeaderTimeout,
		"server.idle_timeout":        c.Server.IdleTimeout,
		"server.shutdown_timeout":    c.Server.ShutdownTimeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s duration: %w", name, err)
		}
	}

	switch c.Telemetry.Exporter {
	case "stdout", "otlp", "none":
	default:
		return fmt.Errorf("unsupported telemetry exporter %q (expected stdout, otlp or none)", c.Telemetry.Exporter)
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry sample rate must be between 0 and 1, got %v", c.Telemetry.SampleRate)
	}

	if c.MockData.HistoryDays <= 0 || c.MockData.HistoryDays > MaxHistoryDays {
		return fmt.Errorf("mock_data.history_days must be between 1 and %d, got %d", MaxHistoryDays, c.MockData.HistoryDays)
	}
	if c.MockData.SpikeProbability < 0 || c.MockData.SpikeProbability > 1 {
		return fmt.Errorf("mock_data.spike_probability must be between 0 and 1, got %v", c.MockData.SpikeProbability)
	}

	if c.Analytics.ShortWindow < 1 || c.Analytics.LongWindow < 1 {
		return fmt.Errorf("moving average windows must be positive, got %d and %d", c.Analytics.ShortWindow, c.Analytics.LongWindow)
	}
	if c.Analytics.VolatilityWindow < 2 {
		return fmt.Errorf("analytics.volatility_window must be at least 2, got %d", c.Analytics.VolatilityWindow)
	}
	if c.Analytics.HighVolumeK < 0 {
		return fmt.Errorf("analytics.high_volume_k must be non-negative, got %v", c.Analytics.HighVolumeK)
	}
	if c.Analytics.RecentRows < 1 {
		return fmt.Errorf("analytics.recent_rows must be positive, got %d", c.Analytics.RecentRows)
	}

	return nil
}

// Duration parses a validated duration string, falling back when it is empty or malformed.
func Duration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8050)
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "10s")
	viper.SetDefault("server.read_header_timeout", "5s")
	viper.SetDefault("server.idle_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Telemetry
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.exporter", "stdout")
	viper.SetDefault("telemetry.otlp_endpoint", "http://localhost:4318")
	viper.SetDefault("telemetry.service_name", "polymarket-insight")
	viper.SetDefault("telemetry.service_version", "1.0.0")
	viper.SetDefault("telemetry.sample_rate", 1.0)
	viper.SetDefault("telemetry.export_logs", false)

	// Mock data
	viper.SetDefault("mock_data.history_days", 180)
	viper.SetDefault("mock_data.seed", 0)
	viper.SetDefault("mock_data.spike_probability", 0.1)

	// Analytics
	viper.SetDefault("analytics.short_window", 7)
	viper.SetDefault("analytics.long_window", 30)
	viper.SetDefault("analytics.volatility_window", 14)
	viper.SetDefault("analytics.high_volume_k", 1.0)
	viper.SetDefault("analytics.recent_rows", 7)
}
