package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"medi-forecast/internal/types"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	NWS      NWSConfig
	Location LocationConfig
	Forecast ForecastConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port    int
	GinMode string // debug, release, test
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// NWSConfig holds settings for the api.weather.gov client
type NWSConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration // zero leaves the transport defaults in place
}

// LocationConfig is the coordinate the CLI forecasts for
type LocationConfig struct {
	Latitude  float64
	Longitude float64
}

// ForecastConfig selects which forecast link of the points resource to follow
type ForecastConfig struct {
	Field string // forecastHourly, forecast, all
}

// Load reads configuration from a .env file, a config file and environment variables
func Load() (*Config, error) {
	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.medi-forecast")

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.ginmode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("nws.baseurl", "https://api.weather.gov")
	v.SetDefault("nws.useragent", "medi-forecast/1.0")
	v.SetDefault("nws.timeout", time.Duration(0))
	v.SetDefault("location.latitude", 37.80)
	v.SetDefault("location.longitude", -122.47)
	v.SetDefault("forecast.field", "forecastHourly")

	// Read from environment variables, e.g. MEDI_FORECAST_LOCATION_LATITUDE
	v.SetEnvPrefix("MEDI_FORECAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// GetServerAddr returns the server address in the format ":port"
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Coords returns the configured forecast location
func (c *Config) Coords() types.Coords {
	return types.NewCoords(c.Location.Latitude, c.Location.Longitude)
}

// NewLogger creates a new slog.Logger based on the configuration that writes to w
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	// Parse log level
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Create handler options
	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Choose handler based on format
	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default: // "text" or anything else
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
