package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env       string
	JWTSecret string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPass     string
	DBName     string
	DBNameTest string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	MinioHost      string
	MinioPort      string
	MinioUsername  string
	MinioPassword  string
	MinioUseSSL    bool
	BucketName     string
	BucketNameTest string

	AllowedOrigin string

	RabbitMQURL   string
	RabbitMQHost  string
	RabbitMQPort  string
	RabbitMQUser  string
	RabbitMQPass  string
	RabbitMQVhost string

	MaxUploadBytes int64
	FFprobeBin     string

	RateLimitWindow       time.Duration
	RateLimitRequests     int
	UploadRateLimitWindow time.Duration
	UploadRateLimitMax    int

	ReconcileRate  float64
	ReconcileBurst int
}

var AppConfig Config

// getEnv returns the environment value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// InitConfig loads configuration from the environment.
func InitConfig() {
	rabbitHost := getEnv("RABBITMQ_HOST", "")
	rabbitPort := getEnv("RABBITMQ_PORT", "5672")
	rabbitUser := getEnv("RABBITMQ_USER", "guest")
	rabbitPass := getEnv("RABBITMQ_PASSWORD", "guest")
	rabbitVhost := getEnv("RABBITMQ_VHOST", "/")
	rabbitURL := getEnv("RABBITMQ_URL", "")
	if rabbitURL == "" && rabbitHost != "" {
		rabbitURL = fmt.Sprintf(
			"amqp://%s:%s@%s:%s/%s",
			url.PathEscape(rabbitUser),
			url.PathEscape(rabbitPass),
			rabbitHost,
			rabbitPort,
			url.PathEscape(rabbitVhost),
		)
	}
	AppConfig = Config{
		Env:       getEnv("APP_ENV", "development"),
		JWTSecret: getEnv("JWT_SECRET", ""),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPass:     getEnv("DB_PASS", "root"),
		DBName:     getEnv("DB_NAME", "go_gallery"),
		DBNameTest: getEnv("DB_NAME_TEST", "go_gallery_test"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioHost:      getEnv("MINIO_HOST", "localhost"),
		MinioPort:      getEnv("MINIO_PORT", "9000"),
		MinioUsername:  getEnv("MINIO_USERNAME", "minioadmin"),
		MinioPassword:  getEnv("MINIO_PASSWORD", "minioadmin"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		BucketName:     getEnv("BUCKET_NAME", ""),
		BucketNameTest: getEnv("BUCKET_NAME_TEST", "go-gallery-test"),

		AllowedOrigin: getEnv("ALLOWED_ORIGIN", ""),

		RabbitMQURL:   rabbitURL,
		RabbitMQHost:  rabbitHost,
		RabbitMQPort:  rabbitPort,
		RabbitMQUser:  rabbitUser,
		RabbitMQPass:  rabbitPass,
		RabbitMQVhost: rabbitVhost,

		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 100*1024*1024),
		FFprobeBin:     getEnv("FFPROBE_BIN", "ffprobe"),

		RateLimitWindow:       getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		RateLimitRequests:     getEnvInt("RATE_LIMIT_MAX", 100),
		UploadRateLimitWindow: getEnvDuration("UPLOAD_RATE_LIMIT_WINDOW", 15*time.Minute),
		UploadRateLimitMax:    getEnvInt("UPLOAD_RATE_LIMIT_MAX", 20),

		ReconcileRate:  getEnvFloat("RECONCILE_RATE", 2),
		ReconcileBurst: getEnvInt("RECONCILE_BURST", 4),
	}
}

// IsProduction reports whether the process runs in production mode.
func IsProduction() bool {
	return strings.EqualFold(AppConfig.Env, "production")
}

// Validate checks required settings and returns every violation found.
// The process must refuse to start when any value is missing or malformed.
func Validate() []error {
	var errs []error
	if AppConfig.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("JWT_SECRET is required"))
	} else if len(AppConfig.JWTSecret) < 32 {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least 32 characters long"))
	}
	if AppConfig.BucketName == "" {
		errs = append(errs, fmt.Errorf("BUCKET_NAME is required"))
	}
	if AppConfig.DBHost == "" || AppConfig.DBPort == "" || AppConfig.DBName == "" {
		errs = append(errs, fmt.Errorf("DB_HOST, DB_PORT and DB_NAME are required"))
	}
	if _, err := strconv.Atoi(AppConfig.DBPort); err != nil {
		errs = append(errs, fmt.Errorf("DB_PORT must be numeric, got %q", AppConfig.DBPort))
	}
	if AppConfig.MinioHost == "" || AppConfig.MinioPort == "" {
		errs = append(errs, fmt.Errorf("MINIO_HOST and MINIO_PORT are required"))
	}
	return errs
}
