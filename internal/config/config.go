package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	SMTP         SMTPConfig         `mapstructure:"smtp"`
	Automation   AutomationConfig   `mapstructure:"automation"`
	Intelligence IntelligenceConfig `mapstructure:"intelligence"`
	Templates    TemplatesConfig    `mapstructure:"templates"`
	Log          LogConfig          `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	RateBurst    int           `mapstructure:"rate_burst"`
}

type DatabaseConfig struct {
	// Driver selects the repository backend: "postgres" or "memory".
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	// Seed loads the demo fixtures into the memory backend.
	Seed bool `mapstructure:"seed"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

type AutomationConfig struct {
	Interval                  time.Duration `mapstructure:"interval"`
	CycleTimeout              time.Duration `mapstructure:"cycle_timeout"`
	DeliveryTimeout           time.Duration `mapstructure:"delivery_timeout"`
	ReminderSuppressionWindow time.Duration `mapstructure:"reminder_suppression_window"`
	LinkBaseURL               string        `mapstructure:"link_base_url"`
	SendsPerSecond            float64       `mapstructure:"sends_per_second"`
	SendBurst                 int           `mapstructure:"send_burst"`
	BreakerMaxFailures        int           `mapstructure:"breaker_max_failures"`
	BreakerCooldown           time.Duration `mapstructure:"breaker_cooldown"`
	LockTTL                   time.Duration `mapstructure:"lock_ttl"`
}

type IntelligenceConfig struct {
	CancellationThreshold             float64       `mapstructure:"cancellation_threshold"`
	MinAppointments                   int           `mapstructure:"min_appointments"`
	LowAttendanceThreshold            float64       `mapstructure:"low_attendance_threshold"`
	MinAppointmentsForAttendanceAlert int           `mapstructure:"min_appointments_for_attendance_alert"`
	DedupeTasks                       bool          `mapstructure:"dedupe_tasks"`
	DashboardCacheTTL                 time.Duration `mapstructure:"dashboard_cache_ttl"`
}

type TemplatesConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("MASSAFLOW")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 10*time.Second)
	viper.SetDefault("server.write_timeout", 10*time.Second)
	viper.SetDefault("server.rate_limit", 50.0)
	viper.SetDefault("server.rate_burst", 100)

	viper.SetDefault("database.driver", "memory")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("smtp.port", 587)

	viper.SetDefault("automation.interval", 5*time.Minute)
	viper.SetDefault("automation.cycle_timeout", 2*time.Minute)
	viper.SetDefault("automation.delivery_timeout", 10*time.Second)
	// zero disables log-based reminder suppression and re-fires every cycle
	viper.SetDefault("automation.reminder_suppression_window", 2*time.Hour)
	viper.SetDefault("automation.sends_per_second", 10.0)
	viper.SetDefault("automation.send_burst", 20)
	viper.SetDefault("automation.breaker_max_failures", 5)
	viper.SetDefault("automation.breaker_cooldown", 30*time.Second)
	viper.SetDefault("automation.lock_ttl", 5*time.Minute)

	viper.SetDefault("intelligence.cancellation_threshold", 0.3)
	viper.SetDefault("intelligence.min_appointments", 3)
	viper.SetDefault("intelligence.low_attendance_threshold", 0.6)
	viper.SetDefault("intelligence.min_appointments_for_attendance_alert", 5)
	viper.SetDefault("intelligence.dashboard_cache_ttl", 30*time.Second)

	viper.SetDefault("log.level", "info")
}
