package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	OpenWeather OpenWeatherConfig `mapstructure:"openweather"`
	Alerts      AlertsConfig      `mapstructure:"alerts"`
	Retention   RetentionConfig   `mapstructure:"retention"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	Log         LogConfig         `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
	Environment  string `mapstructure:"environment"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

// OpenWeatherConfig holds upstream weather API configuration
type OpenWeatherConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	City           string `mapstructure:"city"`
	CountryCode    string `mapstructure:"country_code"`
	Units          string `mapstructure:"units"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// AlertsConfig holds threshold-rule configuration
type AlertsConfig struct {
	TempHighThreshold  float64  `mapstructure:"temp_high_threshold"`
	TempLowThreshold   float64  `mapstructure:"temp_low_threshold"`
	HumidityThreshold  float64  `mapstructure:"humidity_threshold"`
	ExtremeConditions  []string `mapstructure:"extreme_conditions"`
	CooldownMinutes    int      `mapstructure:"cooldown_minutes"`
	TempCriticalMargin float64  `mapstructure:"temp_critical_margin"`
	HumidityWarnMargin float64  `mapstructure:"humidity_warn_margin"`
}

// Cooldown returns the alert cooldown as a duration
func (c *AlertsConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

// RetentionConfig holds sample retention configuration
type RetentionConfig struct {
	SampleDays     int `mapstructure:"sample_days"`
	HardDeleteDays int `mapstructure:"hard_delete_days"`
	AlertDays      int `mapstructure:"alert_days"`
}

// SchedulerConfig holds periodic task intervals
type SchedulerConfig struct {
	Enabled                 bool `mapstructure:"enabled"`
	FetchIntervalMinutes    int  `mapstructure:"fetch_interval_minutes"`
	AggregateIntervalMinutes int `mapstructure:"aggregate_interval_minutes"`
	AlertIntervalMinutes    int  `mapstructure:"alert_interval_minutes"`
	CleanupIntervalHours    int  `mapstructure:"cleanup_interval_hours"`
}

// KafkaConfig holds Kafka configuration for alert notifications
type KafkaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Brokers        string `mapstructure:"brokers"`
	AlertTopic     string `mapstructure:"alert_topic"`
	SecurityEnable bool   `mapstructure:"security_enable"`
	SecurityUser   string `mapstructure:"security_user"`
	SecurityPass   string `mapstructure:"security_pass"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// LoadConfig loads the application configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	var config Config

	if configPath == "" {
		configPath = "./config"
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.SetEnvPrefix("WEATHERVANE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults and env vars cover it
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	v.AutomaticEnv()

	setDefaults(v)

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 15)  // seconds
	v.SetDefault("server.write_timeout", 15) // seconds
	v.SetDefault("server.idle_timeout", 60)  // seconds
	v.SetDefault("server.environment", "development")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "weathervane")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")

	// OpenWeatherMap defaults
	v.SetDefault("openweather.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("openweather.city", "Pune")
	v.SetDefault("openweather.country_code", "IN")
	v.SetDefault("openweather.units", "metric")
	v.SetDefault("openweather.timeout_seconds", 10)

	// Alert rule defaults
	v.SetDefault("alerts.temp_high_threshold", 35.0)
	v.SetDefault("alerts.temp_low_threshold", 5.0)
	v.SetDefault("alerts.humidity_threshold", 80.0)
	v.SetDefault("alerts.extreme_conditions", []string{"Storm", "Thunderstorm", "Tornado", "Hurricane"})
	v.SetDefault("alerts.cooldown_minutes", 60)
	v.SetDefault("alerts.temp_critical_margin", 5.0)
	v.SetDefault("alerts.humidity_warn_margin", 10.0)

	// Retention defaults
	v.SetDefault("retention.sample_days", 2)
	v.SetDefault("retention.hard_delete_days", 7)
	v.SetDefault("retention.alert_days", 30)

	// Scheduler defaults
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.fetch_interval_minutes", 30)
	v.SetDefault("scheduler.aggregate_interval_minutes", 60)
	v.SetDefault("scheduler.alert_interval_minutes", 15)
	v.SetDefault("scheduler.cleanup_interval_hours", 24)

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "kafka:9092")
	v.SetDefault("kafka.alert_topic", "weathervane.alerts")
	v.SetDefault("kafka.security_enable", false)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "stdout")
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.OpenWeather.APIKey == "" && !config.Server.IsDevelopment() {
		return fmt.Errorf("openweather API key is required in non-development environments")
	}

	if config.OpenWeather.City == "" {
		return fmt.Errorf("a city to monitor is required")
	}

	if config.Retention.SampleDays <= 0 {
		return fmt.Errorf("retention.sample_days must be positive")
	}

	if config.Retention.HardDeleteDays < config.Retention.SampleDays {
		return fmt.Errorf("retention.hard_delete_days must not be shorter than retention.sample_days")
	}

	if config.Alerts.CooldownMinutes <= 0 {
		return fmt.Errorf("alerts.cooldown_minutes must be positive")
	}

	if config.Kafka.Enabled && config.Kafka.Brokers == "" {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}

	return nil
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode, c.TimeZone)
}

// IsProduction returns true if the environment is production
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if the environment is development
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}
