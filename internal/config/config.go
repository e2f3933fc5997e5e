package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the dashboard API.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseDriver         string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	NATSURL                string
	NATSSubject            string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	UploadMaxBytes         int64
	UploadRateLimit        int
	UploadRateWindow       time.Duration
	StudentsCacheTTL       time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// ArchiveEnabled reports whether uploaded spreadsheets are archived to Cloudinary.
func (c Config) ArchiveEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("DASH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Capstone Dashboard API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("nats.subject", "dashboard.ingestion.completed")
	v.SetDefault("cloudinary.folder", "dashboard/uploads")
	v.SetDefault("upload.max_mb", 10)
	v.SetDefault("upload.rate_limit", 20)
	v.SetDefault("upload.rate_window", "1m")
	v.SetDefault("students.cache_ttl", "5m")

	ttl, err := parseDuration(v, "students.cache_ttl", "5m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid students cache ttl: %w", err)
	}

	window, err := parseDuration(v, "upload.rate_window", "1m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid upload rate window: %w", err)
	}

	maxMB := v.GetInt64("upload.max_mb")
	if maxMB <= 0 {
		maxMB = 10
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseDriver:         strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		NATSURL:                v.GetString("nats.url"),
		NATSSubject:            v.GetString("nats.subject"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		UploadMaxBytes:         maxMB << 20,
		UploadRateLimit:        v.GetInt("upload.rate_limit"),
		UploadRateWindow:       window,
		StudentsCacheTTL:       ttl,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	if cfg.UploadRateLimit <= 0 {
		cfg.UploadRateLimit = 20
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key, fallback string) (time.Duration, error) {
	value := v.GetString(key)
	if value == "" {
		value = fallback
	}
	return time.ParseDuration(value)
}
