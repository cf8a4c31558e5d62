package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Tracker   TrackerConfig
	Dashboard DashboardConfig
	Digest    DigestConfig
	Worker    WorkerConfig
	App       AppConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

type DatabaseConfig struct {
	Driver   string // postgres | memory
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret      string
	SessionTTL     time.Duration
	Required       bool
	LoginPerMinute int
	LoginBurst     int
}

type TrackerConfig struct {
	// Transitions is a comma separated allow-list such as "OPEN>IN_PROGRESS,IN_PROGRESS>RESOLVED".
	// Empty means every transition is permitted.
	Transitions string
}

type DashboardConfig struct {
	StaleAfter     time.Duration
	VelocityWindow time.Duration
	TrendBuckets   int
	TimeZone       string
}

type DigestConfig struct {
	Enabled  bool
	Schedule string
}

// WorkerConfig points the worker's board commands at a running API.
type WorkerConfig struct {
	APIURL   string
	APIToken string
}

type AppConfig struct {
	ServiceName string
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "5000"),
			ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),
			CORSOrigins:  getEnvAsList("CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "mira"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change"),
			SessionTTL:     getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
			Required:       getEnvAsBool("AUTH_REQUIRED", false),
			LoginPerMinute: getEnvAsInt("LOGIN_RATE_PER_MIN", 20),
			LoginBurst:     getEnvAsInt("LOGIN_BURST", 5),
		},
		Tracker: TrackerConfig{
			Transitions: getEnv("ISSUE_TRANSITIONS", ""),
		},
		Dashboard: DashboardConfig{
			StaleAfter:     getEnvAsDuration("STALE_AFTER", 14*24*time.Hour),
			VelocityWindow: getEnvAsDuration("VELOCITY_WINDOW", 7*24*time.Hour),
			TrendBuckets:   getEnvAsInt("TREND_BUCKETS", 10),
			TimeZone:       getEnv("DASHBOARD_TZ", "Local"),
		},
		Digest: DigestConfig{
			Enabled:  getEnvAsBool("DIGEST_ENABLED", false),
			Schedule: getEnv("DIGEST_SCHEDULE", "0 0 0 * * *"),
		},
		Worker: WorkerConfig{
			APIURL:   getEnv("MIRA_API_URL", "http://localhost:5000"),
			APIToken: getEnv("MIRA_API_TOKEN", ""),
		},
		App: AppConfig{
			ServiceName: getEnv("SERVICE_NAME", "mira-backend"),
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
	case "memory":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or memory, got %q", c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Environment() == "production" && c.Auth.JWTSecret == "dev-secret-change" {
		return fmt.Errorf("JWT_SECRET must be changed in production")
	}

	if c.Dashboard.TrendBuckets <= 0 {
		return fmt.Errorf("TREND_BUCKETS must be positive")
	}
	if _, err := c.Dashboard.Location(); err != nil {
		return fmt.Errorf("DASHBOARD_TZ: %w", err)
	}

	return nil
}

func (c *Config) Environment() string {
	return c.App.Environment
}

// Location resolves the time zone used for day buckets in trend series.
func (d DashboardConfig) Location() (*time.Location, error) {
	if d.TimeZone == "" || d.TimeZone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(d.TimeZone)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
