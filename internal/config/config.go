package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Push providers understood by PUSH_PROVIDER.
const (
	PushProviderNone = "none"
	PushProviderFCM  = "fcm"
	PushProviderSNS  = "sns"
)

// Store backends understood by STORE_BACKEND.
const (
	StoreBackendDynamo = "dynamo"
	StoreBackendMemory = "memory"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort         string
	AppEnv          string
	LogLevel        string
	ShutdownTimeout time.Duration
	StoreBackend    string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	Push  PushConfig
	Redis RedisConfig

	JWTPublicKeyPath  string
	JWTPrivateKeyPath string // optional; only needed to mint tokens locally
	JWTExpiry         time.Duration

	AllowedOrigins []string // CORS allowed origins
	// TrustProxyHeaders makes rate limiting key on X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Notifications     string
	NotificationInbox string
	PushTokens        string
	Students          string
}

// PushConfig selects and configures the push gateway used by the dispatcher.
type PushConfig struct {
	Provider               string
	Timeout                time.Duration
	MaxInFlight            int
	MaxBacklog             int // deliveries waiting for a slot; beyond this push is skipped
	FCMCredentialsFile     string
	FCMProjectID           string
	SNSRegion              string
	SNSPlatformApplication string
}

// RedisConfig enables the live feed publisher when URL is set.
type RedisConfig struct {
	URL            string
	PublishTimeout time.Duration
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:         getEnv("APP_PORT", "3000"),
		AppEnv:          getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		StoreBackend:    strings.ToLower(getEnv("STORE_BACKEND", StoreBackendDynamo)),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL:  getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID:  getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Notifications:     getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			NotificationInbox: getEnv("DYNAMO_TABLE_NOTIFICATION_INBOX", "notification_inbox"),
			PushTokens:        getEnv("DYNAMO_TABLE_PUSH_TOKENS", "push_tokens"),
			Students:          getEnv("DYNAMO_TABLE_STUDENTS", "students"),
		},
		Push: PushConfig{
			Provider:               strings.ToLower(getEnv("PUSH_PROVIDER", PushProviderNone)),
			Timeout:                getEnvDuration("PUSH_TIMEOUT", 10*time.Second),
			MaxInFlight:            getEnvInt("PUSH_MAX_IN_FLIGHT", 32),
			MaxBacklog:             getEnvInt("PUSH_MAX_BACKLOG", 256),
			FCMCredentialsFile:     getEnv("FCM_CREDENTIALS_FILE", ""),
			FCMProjectID:           getEnv("FCM_PROJECT_ID", ""),
			SNSRegion:              getEnv("SNS_REGION", "us-east-1"),
			SNSPlatformApplication: getEnv("SNS_PLATFORM_APPLICATION_ARN", ""),
		},
		Redis: RedisConfig{
			URL:            getEnv("REDIS_URL", ""),
			PublishTimeout: getEnvDuration("REDIS_PUBLISH_TIMEOUT", 2*time.Second),
		},
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", ""),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 24*time.Hour),
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("15s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
