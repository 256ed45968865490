package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	defaultHTTPAddr        = ":5000"
	defaultMigrationsPath  = "migrations/catalog"
	defaultStaticDir       = "client/build"
	defaultShutdownTimeout = 10 * time.Second

	defaultDBHost    = "localhost"
	defaultDBPort    = "5432"
	defaultDBUser    = "postgres"
	defaultDBPass    = "postgres"
	defaultDBName    = "catalog"
	defaultDBSSLMode = "disable"

	defaultDBMaxOpenConns    = 25
	defaultDBMaxIdleConns    = 5
	defaultDBConnMaxLifetime = 5 * time.Minute
	defaultDBPingTimeout     = 5 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second

	defaultDBReadyAttempts = 10
	defaultDBReadyDelay    = 3 * time.Second

	defaultRateLimitRequests = 100
	defaultRateLimitWindow   = 15 * time.Minute
)

type Catalog struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RabbitMQURL    string
	HTTPAddr       string
	MigrationsPath string
	StaticDir      string

	ShutdownTimeout   time.Duration
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBPingTimeout     time.Duration
	ReadHeaderTimeout time.Duration

	DBReadyAttempts int
	DBReadyDelay    time.Duration

	RateLimitRequests int
	RateLimitWindow   time.Duration
}

func LoadCatalog() (Catalog, error) {
	cfg := Catalog{
		DBHost:     getEnv("DB_HOST", defaultDBHost),
		DBPort:     getEnv("DB_PORT", defaultDBPort),
		DBUser:     getEnv("DB_USER", defaultDBUser),
		DBPassword: getEnv("DB_PASSWORD", defaultDBPass),
		DBName:     getEnv("DB_NAME", defaultDBName),
		DBSSLMode:  getEnv("DB_SSLMODE", defaultDBSSLMode),

		RabbitMQURL:    getEnv("RABBITMQ_URL", ""),
		HTTPAddr:       getEnv("HTTP_ADDR", defaultHTTPAddr),
		MigrationsPath: getEnv("MIGRATIONS_PATH", defaultMigrationsPath),
		StaticDir:      getEnv("STATIC_DIR", defaultStaticDir),

		ShutdownTimeout:   defaultShutdownTimeout,
		DBMaxOpenConns:    defaultDBMaxOpenConns,
		DBMaxIdleConns:    defaultDBMaxIdleConns,
		DBConnMaxLifetime: defaultDBConnMaxLifetime,
		DBPingTimeout:     defaultDBPingTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	var err error
	if cfg.DBReadyAttempts, err = getEnvInt("DB_READY_ATTEMPTS", defaultDBReadyAttempts); err != nil {
		return Catalog{}, err
	}
	if cfg.DBReadyDelay, err = getEnvDuration("DB_READY_DELAY", defaultDBReadyDelay); err != nil {
		return Catalog{}, err
	}
	if cfg.RateLimitRequests, err = getEnvInt("RATE_LIMIT_REQUESTS", defaultRateLimitRequests); err != nil {
		return Catalog{}, err
	}
	if cfg.RateLimitWindow, err = getEnvDuration("RATE_LIMIT_WINDOW", defaultRateLimitWindow); err != nil {
		return Catalog{}, err
	}

	if cfg.DBReadyAttempts < 1 {
		return Catalog{}, fmt.Errorf("DB_READY_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

// DatabaseURL composes a postgres connection URL from the discrete
// DB_* settings.
func (c Catalog) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}
