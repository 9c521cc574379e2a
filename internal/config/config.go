// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full service configuration.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64

	// MTVDatabaseURL is optional; MTV reports are disabled without it.
	MTVDatabaseURL      string
	MTVStatementTimeout time.Duration

	// RedisAddr is optional; reference lists are cached in-process only without it.
	RedisAddr         string
	RedisPassword     string
	ReferenceCacheTTL time.Duration

	// JWTSecret is optional; /api/v1 is unauthenticated without it.
	JWTSecret string
	JWTIssuer string

	ReportDefaultTimeout time.Duration
	ReportHeavyTimeout   time.Duration

	ShutdownTimeout time.Duration
}

// Development reports whether the service runs in development mode.
func (c Config) Development() bool {
	return c.Env == "development"
}

// Load reads an optional .env file (or the given files), then the environment.
func Load(files ...string) (Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load(files...)

	cfg := Config{
		Port:     getEnv("APP_PORT", "8080"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: os.Getenv("MONGO_DATABASE"),

		MTVDatabaseURL: os.Getenv("MTV_DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTIssuer: os.Getenv("JWT_ISSUER"),
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	cfg.MongoMaxPoolSize, err = getEnvUint("MONGO_MAX_POOL_SIZE", 50)
	collect(err)
	cfg.MTVStatementTimeout, err = getEnvDuration("MTV_STATEMENT_TIMEOUT", 60*time.Second)
	collect(err)
	cfg.ReferenceCacheTTL, err = getEnvDuration("REFERENCE_CACHE_TTL", 10*time.Minute)
	collect(err)
	cfg.ReportDefaultTimeout, err = getEnvDuration("REPORT_DEFAULT_TIMEOUT", 60*time.Second)
	collect(err)
	cfg.ReportHeavyTimeout, err = getEnvDuration("REPORT_HEAVY_TIMEOUT", 600*time.Second)
	collect(err)
	cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)
	collect(err)

	collect(cfg.validate())
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.MongoDatabase == "" {
		errs = append(errs, errors.New("MONGO_DATABASE is required"))
	}
	if c.ReportHeavyTimeout < c.ReportDefaultTimeout {
		errs = append(errs, fmt.Errorf("REPORT_HEAVY_TIMEOUT (%s) must not be shorter than REPORT_DEFAULT_TIMEOUT (%s)",
			c.ReportHeavyTimeout, c.ReportDefaultTimeout))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) (uint64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
