package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port           string
	Env            string
	JWTSecret      string
	FrontendURL    string
	AllowedOrigins []string
	Location       *time.Location

	Database DatabaseConfig
	Log      LogConfig
	SMTP     SMTPConfig
	Reminder ReminderConfig
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	TimeZone   string
	SQLitePath string
	Debug      bool
}

// DSN builds the key=value connection string used by lib/pq.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

type LogConfig struct {
	File  string
	Level string
}

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Enabled reports whether real mail delivery is configured.
func (s SMTPConfig) Enabled() bool { return s.Host != "" }

type ReminderConfig struct {
	Enabled  bool
	Schedule string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on env vars")
	}

	tzName := getEnv("APP_TIMEZONE", "America/Montevideo")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE %q: %w", tzName, err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "3001"),
		Env:            getEnv("APP_ENV", "development"),
		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:5173"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		Location:       loc,
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "password"),
			Name:       getEnv("DB_NAME", "reservas"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			TimeZone:   getEnv("DB_TIMEZONE", "UTC"),
			SQLitePath: getEnv("SQLITE_PATH", "reservas.db"),
			Debug:      getEnvBool("DB_DEBUG", false),
		},
		Log: LogConfig{
			File:  getEnv("LOG_FILE", "./logs/app.log"),
			Level: getEnv("LOG_LEVEL", "info"),
		},
		SMTP: SMTPConfig{
			Host: getEnv("SMTP_HOST", ""),
			Port: getEnvInt("SMTP_PORT", 587),
			User: getEnv("SMTP_USER", ""),
			Pass: getEnv("SMTP_PASS", ""),
			From: getEnv("SMTP_FROM", "no-reply@reservas.local"),
		},
		Reminder: ReminderConfig{
			Enabled:  getEnvBool("REMINDERS_ENABLED", true),
			Schedule: getEnv("REMINDER_CRON", "0 9 * * *"),
		},
	}

	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", cfg.Database.Driver)
	}
	if cfg.Env == "production" && cfg.JWTSecret == "dev_secret_change_me" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}
	return cfg, nil
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists && v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		logrus.Warnf("invalid integer for %s: %s", key, v)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logrus.Warnf("invalid boolean for %s: %s", key, v)
			return defaultValue
		}
		return b
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
