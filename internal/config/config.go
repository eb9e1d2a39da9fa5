package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	devAccessSecret  = "dev-access-secret-change-me"
	devRefreshSecret = "dev-refresh-secret-change-me"
)

type Config struct {
	Port           string
	Environment    string   // ENV: production, development, etc.
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or CORS_ORIGIN

	StoreDriver   string // mongo | postgres | memory
	MongoURI      string
	MongoDatabase string
	PostgresURI   string
	RedisURI      string // empty disables the user cache

	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenSecret string
	RefreshTokenExpiry time.Duration

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	UploadTempDir  string // multipart files are staged here before upload
	MaxUploadBytes int64

	TrustProxy bool // honor X-Forwarded-For when logging client IPs
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	for _, o := range parseOrigins(getEnv("CORS_ORIGIN", "")) {
		if !containsOrigin(allowedOrigins, o) {
			allowedOrigins = append(allowedOrigins, o)
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		Port:           getEnv("PORT", "8000"),
		Environment:    env,
		AllowedOrigins: allowedOrigins,

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:      getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017")),
		MongoDatabase: getEnv("MONGODB_DATABASE", "videotube"),
		PostgresURI:   getEnv("POSTGRES_URI", "postgres://localhost:5432/videotube?sslmode=disable"),
		RedisURI:      getEnv("REDIS_URI", ""),

		AccessTokenSecret:  getEnv("ACCESS_TOKEN_SECRET", devAccessSecret),
		AccessTokenExpiry:  getDuration("ACCESS_TOKEN_EXPIRY", 24*time.Hour),
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", devRefreshSecret),
		RefreshTokenExpiry: getDuration("REFRESH_TOKEN_EXPIRY", 10*24*time.Hour),

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "videotube"),

		UploadTempDir:  getEnv("UPLOAD_TEMP_DIR", "./public/temp"),
		MaxUploadBytes: getInt64("MAX_UPLOAD_BYTES", 10<<20),

		TrustProxy: strings.EqualFold(getEnv("TRUST_PROXY", "false"), "true"),
	}
}

// Validate reports configuration that would make the token service unsafe or the store unusable.
func (c *Config) Validate() error {
	if c.AccessTokenSecret == "" || c.RefreshTokenSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	if c.AccessTokenExpiry <= 0 || c.RefreshTokenExpiry <= 0 {
		return errors.New("token expiries must be positive")
	}
	if c.IsProduction() && (c.AccessTokenSecret == devAccessSecret || c.RefreshTokenSecret == devRefreshSecret) {
		return errors.New("development token secrets are not allowed in production")
	}
	switch c.StoreDriver {
	case StoreMongo, StorePostgres, StoreMemory:
	default:
		return errors.New("unknown STORE_DRIVER: " + c.StoreDriver)
	}
	return nil
}

// HasCloudinary reports whether all media host credentials are present.
func (c *Config) HasCloudinary() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// ParseDuration accepts Go durations plus a day suffix ("10d").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️  WARNING: invalid %s=%q, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getInt64(key string, defaultValue int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		log.Printf("⚠️  WARNING: invalid %s=%q, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return n
}
