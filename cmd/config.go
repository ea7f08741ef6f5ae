package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/dan47bennett/typescript-reddit/internal/logger"
)

// Storage backends selectable with STORAGE_ORM.
const (
	StorageSQLX = "sqlx"
	StorageGorm = "gorm"
)

// Config holds every setting of the service.
type Config struct {
	AppHost     string
	AppPort     string
	Env         string
	LogLevel    string
	CORSOrigin  string
	FrontendURL string

	PostgresHost         string
	PostgresPort         int
	PostgresUser         string
	PostgresPassword     string
	PostgresDB           string
	PostgresMaxOpenConns int
	PostgresMaxIdleConns int
	StorageORM           string

	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int

	SessionCookieName string
	SessionSecret     string

	SMTPHost     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	KafkaBrokers []string
	KafkaTopic   string
}

// Production reports whether cookies must be marked Secure.
func (c *Config) Production() bool {
	return c.Env == logger.EnvProduction
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags(args []string) (string, error) {
	fs := pflag.NewFlagSet("lireddit", pflag.ContinueOnError)
	path := fs.StringP("config", "c", "config.env", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	return *path, nil
}

// parseConfig loads environment variables from a file, then reads the
// process environment, falling back to defaults.
func parseConfig(path string) (*Config, error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	var err error
	getInt := func(key, defaultValue string) int {
		if err != nil {
			return 0
		}
		var n int
		n, err = strconv.Atoi(getEnv(key, defaultValue))
		return n
	}

	cfg := &Config{
		AppHost:     getEnv("APP_HOST", "localhost"),
		AppPort:     getEnv("APP_PORT", "4000"),
		Env:         getEnv("APP_ENV", logger.EnvDevelopment),
		LogLevel:    getEnv("APP_LOG_LEVEL", "info"),
		CORSOrigin:  getEnv("CORS_ORIGIN", "http://localhost:3000"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		PostgresHost:         getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:         getInt("POSTGRES_PORT", "5432"),
		PostgresUser:         getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:     getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:           getEnv("POSTGRES_DB", "lireddit"),
		PostgresMaxOpenConns: getInt("POSTGRES_MAX_OPEN_CONNS", "16"),
		PostgresMaxIdleConns: getInt("POSTGRES_MAX_IDLE_CONNS", "8"),
		StorageORM:           getEnv("STORAGE_ORM", StorageSQLX),

		RedisHost:         getEnv("REDIS_HOST", "localhost"),
		RedisPort:         getInt("REDIS_PORT", "6379"),
		RedisDB:           getInt("REDIS_DB", "0"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisPoolSize:     getInt("REDIS_POOL_SIZE", "10"),
		RedisMinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", "2"),

		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "qid"),
		SessionSecret:     getEnv("SESSION_SECRET", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "lireddit <noreply@lireddit.dev>"),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "lireddit.events"),
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
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
