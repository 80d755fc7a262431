package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported key-value store backends.
const (
	KVBackendFirestore = "firestore"
	KVBackendBadger    = "badger"
	KVBackendSQLite    = "sqlite"
)

// Supported blob storage backends.
const (
	BlobBackendGCS   = "gcs"
	BlobBackendMinio = "minio"
)

type Config struct {
	Port        string
	RoutePrefix string   // Mount point for every API route, e.g. "/make-server-ac2b2b01"
	APIKeys     []string // Anonymous bearer keys (comma-separated)
	JWTSecret   string   // HS256 secret for user session tokens; empty disables user tokens

	AllowedOrigins []string

	KVBackend             string
	GoogleProjectID       string
	GoogleCredentialsPath string
	GoogleCredentialsJSON string // For serverless deployments: raw JSON string
	FirestoreCollection   string
	BadgerDir             string // Empty runs Badger in memory
	SQLitePath            string

	BlobBackend    string
	PhotoBucket    string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool

	SignedURLTTL   time.Duration
	MaxUploadBytes int

	GeocodingEnabled  bool
	GeocoderBaseURL   string
	GeocoderUserAgent string

	CacheTTL             time.Duration
	CacheCleanupInterval time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel       string
	LogFormat      string
	MetricsEnabled bool
	IsVercel       bool // Detected via VERCEL env var
}

// Load reads configuration from environment variables and .env file.
// It loads the .env file if present, then populates the Config struct.
// Returns an error if required configuration is missing.
func Load() (*Config, error) {
	// Missing .env is fine, the environment wins either way.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		RoutePrefix:           strings.TrimSuffix(getEnv("ROUTE_PREFIX", ""), "/"),
		APIKeys:               getList("API_KEYS", []string{}),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		AllowedOrigins:        getList("ALLOWED_ORIGINS", []string{"*"}),
		KVBackend:             strings.ToLower(getEnv("KV_BACKEND", KVBackendFirestore)),
		GoogleProjectID:       getEnv("GOOGLE_PROJECT_ID", ""),
		GoogleCredentialsPath: getEnv("GOOGLE_CREDENTIALS_PATH", ""),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),
		FirestoreCollection:   getEnv("FIRESTORE_COLLECTION", "kv_store"),
		BadgerDir:             getEnv("BADGER_DIR", ""),
		SQLitePath:            getEnv("SQLITE_PATH", "socialmap.db"),
		BlobBackend:           strings.ToLower(getEnv("BLOB_BACKEND", BlobBackendGCS)),
		PhotoBucket:           getEnv("PHOTO_BUCKET", "socialmap-photos"),
		MinioEndpoint:         getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:        getEnv("MINIO_SECRET_KEY", ""),
		MinioUseSSL:           getBoolEnv("MINIO_USE_SSL", false),
		SignedURLTTL:          getDurationEnv("SIGNED_URL_TTL", 365*24*time.Hour),
		MaxUploadBytes:        getIntEnv("MAX_UPLOAD_BYTES", 10*1024*1024),
		GeocodingEnabled:      getBoolEnv("GEOCODING_ENABLED", true),
		GeocoderBaseURL:       getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent:     getEnv("GEOCODER_USER_AGENT", "SocialMap"),
		CacheTTL:              getDurationEnv("CACHE_TTL", 24*time.Hour),
		CacheCleanupInterval:  getDurationEnv("CACHE_CLEANUP_INTERVAL", 10*time.Minute),
		RateLimitRPS:          getFloatEnv("RATE_LIMIT_RPS", 10),
		RateLimitBurst:        getIntEnv("RATE_LIMIT_BURST", 20),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "json"),
		MetricsEnabled:        getBoolEnv("METRICS_ENABLED", true),
		IsVercel:              getEnv("VERCEL", "") != "",
	}

	if cfg.RoutePrefix != "" && !strings.HasPrefix(cfg.RoutePrefix, "/") {
		cfg.RoutePrefix = "/" + cfg.RoutePrefix
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if len(c.APIKeys) == 0 {
		return fmt.Errorf("API_KEYS is required (comma-separated list of API keys)")
	}

	switch c.KVBackend {
	case KVBackendFirestore:
		if c.GoogleProjectID == "" {
			return fmt.Errorf("GOOGLE_PROJECT_ID is required for the firestore KV backend")
		}
		if c.FirestoreCollection == "" {
			return fmt.Errorf("FIRESTORE_COLLECTION is required")
		}
	case KVBackendBadger:
	case KVBackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite KV backend")
		}
	default:
		return fmt.Errorf("KV_BACKEND must be one of %s, %s, %s", KVBackendFirestore, KVBackendBadger, KVBackendSQLite)
	}

	switch c.BlobBackend {
	case BlobBackendGCS:
		if c.GoogleProjectID == "" {
			return fmt.Errorf("GOOGLE_PROJECT_ID is required for the gcs blob backend")
		}
	case BlobBackendMinio:
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio blob backend")
		}
	default:
		return fmt.Errorf("BLOB_BACKEND must be one of %s, %s", BlobBackendGCS, BlobBackendMinio)
	}

	if c.PhotoBucket == "" {
		return fmt.Errorf("PHOTO_BUCKET is required")
	}
	if c.SignedURLTTL <= 0 {
		return fmt.Errorf("SIGNED_URL_TTL must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.CacheCleanupInterval <= 0 {
		return fmt.Errorf("CACHE_CLEANUP_INTERVAL must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// UsesGoogleCloud reports whether any configured backend needs Google credentials.
func (c *Config) UsesGoogleCloud() bool {
	return c.KVBackend == KVBackendFirestore || c.BlobBackend == BlobBackendGCS
}

// ClientConfig configures the socialmap CLI.
type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// LoadClient reads the CLI configuration from the environment and .env file.
func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load()

	cfg := &ClientConfig{
		BaseURL: strings.TrimSuffix(getEnv("SOCIALMAP_URL", "http://localhost:8080"), "/"),
		Token:   getEnv("SOCIALMAP_TOKEN", ""),
		Timeout: getDurationEnv("SOCIALMAP_TIMEOUT", 30*time.Second),
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("SOCIALMAP_TOKEN is required (anonymous key or session token)")
	}
	return cfg, nil
}

// Retrieves an environment variable or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// Retrieves a duration from environment variable or returns a default value.
// It supports both time.Duration format (e.g., "10m", "12h") and integer minutes.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

// Retrieves a comma-separated list from environment variable or returns a default value.
// Entries are trimmed and empty entries dropped.
func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Retrieves a boolean from environment variable or returns a default value.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
