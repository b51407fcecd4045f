package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers understood by pkg/storage
const (
	StorageDriverS3       = "s3"
	StorageDriverFirebase = "firebase"
)

// Config holds the process-wide settings read from the environment
type Config struct {
	Port string
	Env  string

	MongoURI          string
	MongoDBName       string
	MongoTransactions bool
	PostgresUrl       string

	RedisAddr       string
	RedisPassword   string
	RateLimit       int
	RateLimitWindow time.Duration

	JWTSecret   string
	CORSOrigins []string

	StorageDriver           string
	AWSRegion               string
	AWSAccessKeyID          string
	AWSSecretAccessKey      string
	AWSEndpoint             string
	S3UseSSL                string
	S3BucketName            string
	FirebaseCredentialsPath string
	FirebaseStorageBucket   string

	MetricsPort   string
	MaxUploadSize string
}

// Load reads the configuration, loading a .env file first when one exists
func Load() *Config {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		MongoURI:          getEnv("MONGO_URI", ""),
		MongoDBName:       getEnv("MONGO_DB_NAME", "Snapgram"),
		MongoTransactions: getEnvBool("MONGO_TRANSACTIONS", false),
		PostgresUrl:       getEnv("POSTGRES_URL", ""),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RateLimit:       getEnvInt("RATE_LIMIT", 20),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),

		StorageDriver:           getEnv("STORAGE_DRIVER", StorageDriverS3),
		AWSRegion:               getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpoint:             getEnv("AWS_ENDPOINT", ""),
		S3UseSSL:                getEnv("S3_USE_SSL", "true"),
		S3BucketName:            getEnv("S3_BUCKET_NAME", "snapgram-media"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		FirebaseStorageBucket:   getEnv("FIREBASE_STORAGE_BUCKET", ""),

		MetricsPort:   getEnv("METRICS_PORT", "9090"),
		MaxUploadSize: getEnv("MAX_UPLOAD_SIZE", "10M"),
	}
}

// IsDevelopment reports whether the process runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// MetricsEnabled reports whether the Prometheus exporter should be started. METRICS_PORT=off disables it.
func (c *Config) MetricsEnabled() bool {
	return c.MetricsPort != "" && c.MetricsPort != "off"
}

// SessionTTL is the lifetime of both the session token and its cookie
func (c *Config) SessionTTL() time.Duration {
	if c.IsDevelopment() {
		return 24 * time.Hour
	}
	return 6 * time.Hour
}

// Validate checks the settings that have no usable default
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI environment variable not set")
	}
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET environment variable not set")
		}
		c.JWTSecret = "snapgram-dev-secret"
	}
	switch c.StorageDriver {
	case StorageDriverS3:
		if c.S3BucketName == "" {
			return fmt.Errorf("S3_BUCKET_NAME environment variable not set")
		}
	case StorageDriverFirebase:
		if c.FirebaseCredentialsPath == "" || c.FirebaseStorageBucket == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH and FIREBASE_STORAGE_BUCKET must be set for the firebase storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, defaultValue.String()))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
