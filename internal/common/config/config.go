package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/clipstream/clipstream-backend/internal/common/constants"
)

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrWeakSecret         = errors.New("token secret must be at least 32 bytes")
	ErrUnknownDriver      = errors.New("unknown driver")
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	MediaDriverS3    = "s3"
	MediaDriverLocal = "local"
)

type Config struct {
	HTTPPort       string
	CORSOrigins    []string
	RequestTimeout time.Duration

	StorageDriver string
	DatabaseURL   string

	AccessTokenSecret  string
	AccessTokenTTL     time.Duration
	RefreshTokenSecret string
	RefreshTokenTTL    time.Duration
	BcryptCost         int
	SecureCookies      bool

	MediaDriver     string
	MediaStagingDir string
	MediaLocalDir   string
	MediaPublicBase string
	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string

	RedisAddr     string
	RedisPassword string
}

// Load reads the process configuration from the environment. Every secret the
// token issuer depends on is required here: a missing or short secret is a
// startup failure, never a per-request error.
func Load() (Config, error) {
	accessSecret, err := mustEnv("ACCESS_TOKEN_SECRET")
	if err != nil {
		return Config{}, err
	}
	if err := validateSecret(accessSecret); err != nil {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_SECRET: %w", err)
	}

	refreshSecret, err := mustEnv("REFRESH_TOKEN_SECRET")
	if err != nil {
		return Config{}, err
	}
	if err := validateSecret(refreshSecret); err != nil {
		return Config{}, fmt.Errorf("REFRESH_TOKEN_SECRET: %w", err)
	}

	if accessSecret == refreshSecret {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	cfg := Config{
		HTTPPort:           getEnv("HTTP_PORT", constants.DefaultHTTPPort),
		CORSOrigins:        splitEnv("CORS_ORIGINS"),
		RequestTimeout:     getDurationEnv("REQUEST_TIMEOUT", constants.RequestTimeout),
		StorageDriver:      getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		AccessTokenSecret:  accessSecret,
		AccessTokenTTL:     getDurationEnv("ACCESS_TOKEN_TTL", constants.DefaultAccessTokenTTL),
		RefreshTokenSecret: refreshSecret,
		RefreshTokenTTL:    getDurationEnv("REFRESH_TOKEN_TTL", constants.DefaultRefreshTokenTTL),
		BcryptCost:         getIntEnv("BCRYPT_COST", constants.DefaultBcryptCost),
		SecureCookies:      getBoolEnv("SECURE_COOKIES", true),
		MediaDriver:        getEnv("MEDIA_DRIVER", MediaDriverLocal),
		MediaStagingDir:    getEnv("MEDIA_STAGING_DIR", constants.DefaultUploadStagingDir),
		MediaLocalDir:      getEnv("MEDIA_LOCAL_DIR", "./data/media"),
		MediaPublicBase:    getEnv("MEDIA_PUBLIC_BASE", "/media"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
	}

	switch cfg.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		cfg.DatabaseURL, err = mustEnv("DATABASE_URL")
		if err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("%w: STORAGE_DRIVER=%s", ErrUnknownDriver, cfg.StorageDriver)
	}

	switch cfg.MediaDriver {
	case MediaDriverLocal:
	case MediaDriverS3:
		cfg.S3Bucket, err = mustEnv("S3_BUCKET")
		if err != nil {
			return Config{}, err
		}
		cfg.S3Region, err = mustEnv("S3_REGION")
		if err != nil {
			return Config{}, err
		}
		cfg.S3AccessKey, err = mustEnv("S3_ACCESS_KEY")
		if err != nil {
			return Config{}, err
		}
		cfg.S3SecretKey, err = mustEnv("S3_SECRET_KEY")
		if err != nil {
			return Config{}, err
		}
		cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	default:
		return Config{}, fmt.Errorf("%w: MEDIA_DRIVER=%s", ErrUnknownDriver, cfg.MediaDriver)
	}

	return cfg, nil
}

func validateSecret(secret string) error {
	if len(secret) < constants.SecretMinLength {
		return fmt.Errorf("%w: got %d bytes", ErrWeakSecret, len(secret))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func splitEnv(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getBoolEnv(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
