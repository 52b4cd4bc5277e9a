package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Image storage
	StorageDriver    string // file, mem, s3, minio
	StorageBucket    string
	StorageRegion    string
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageUseSSL    bool
	StorageBaseDir   string
	StoragePublicURL string
	MaxImageBytes    int64

	// Token revocation (empty addr = in-memory)
	RedisAddr     string
	RedisPassword string

	// Observability
	SentryDSN        string
	AppEnv           string
	LogRetentionDays int

	// Server
	Port        string
	CORSOrigins string
}

// Load builds the config from an optional YAML file (CONFIG_FILE) overlaid
// by environment variables. File keys are the lower-cased env names.
func Load() (*Config, error) {
	file, err := readFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	get := func(key, fallback string) string {
		return getEnv(key, file.lookup(key, fallback))
	}

	cfg := &Config{
		DBHost:     get("DB_HOST", "localhost"),
		DBPort:     get("DB_PORT", "5432"),
		DBUser:     get("DB_USER", "postgres"),
		DBPassword: get("DB_PASSWORD", ""),
		DBName:     get("DB_NAME", "trackback"),
		DBSSLMode:  get("DB_SSLMODE", "disable"),

		JWTSecret:        get("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(get("JWT_ACCESS_EXPIRY", "24h"), 24*time.Hour),
		JWTRefreshExpiry: parseDuration(get("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		StorageDriver:    strings.ToLower(get("STORAGE_DRIVER", "file")),
		StorageBucket:    get("STORAGE_BUCKET", ""),
		StorageRegion:    get("STORAGE_REGION", ""),
		StorageEndpoint:  get("STORAGE_ENDPOINT", ""),
		StorageAccessKey: get("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey: get("STORAGE_SECRET_KEY", ""),
		StorageUseSSL:    parseBool(get("STORAGE_USE_SSL", "false")),
		StorageBaseDir:   get("STORAGE_BASE_DIR", "uploads"),
		StoragePublicURL: strings.TrimRight(get("STORAGE_PUBLIC_URL", ""), "/"),
		MaxImageBytes:    parseInt64(get("MAX_IMAGE_BYTES", "5242880"), 5<<20),

		RedisAddr:     get("REDIS_ADDR", ""),
		RedisPassword: get("REDIS_PASSWORD", ""),

		SentryDSN:        get("SENTRY_DSN", ""),
		AppEnv:           get("APP_ENV", "development"),
		LogRetentionDays: int(parseInt64(get("LOG_RETENTION_DAYS", "30"), 30)),

		Port:        get("PORT", "8080"),
		CORSOrigins: get("CORS_ORIGINS", "*"),
	}

	// Locally stored images are served by this process under /uploads.
	if cfg.StoragePublicURL == "" && (cfg.StorageDriver == "file" || cfg.StorageDriver == "mem") {
		cfg.StoragePublicURL = "http://localhost:" + cfg.Port + "/uploads"
	}
	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DBPassword == "" {
		return errors.New("DB_PASSWORD is required")
	}
	switch c.StorageDriver {
	case "file":
		if c.StorageBaseDir == "" {
			return errors.New("STORAGE_BASE_DIR is required for the file driver")
		}
	case "mem":
	case "s3":
		if c.StorageBucket == "" {
			return errors.New("STORAGE_BUCKET is required for the s3 driver")
		}
	case "minio":
		if c.StorageEndpoint == "" || c.StorageBucket == "" {
			return errors.New("STORAGE_ENDPOINT and STORAGE_BUCKET are required for the minio driver")
		}
		if c.StorageAccessKey == "" || c.StorageSecretKey == "" {
			return errors.New("STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required for the minio driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER: %s", c.StorageDriver)
	}
	return nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

type fileValues map[string]string

func readFile(path string) (fileValues, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	values := make(fileValues, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[strings.ToLower(k)] = fmt.Sprint(v)
	}
	return values, nil
}

func (f fileValues) lookup(key, fallback string) string {
	if v, ok := f[strings.ToLower(key)]; ok && v != "" {
		return v
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt64(s string, fallback int64) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
