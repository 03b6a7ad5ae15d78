package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string

	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// RedisURL is optional. Without it rate counters, cached responses and
	// OTP codes live in process memory.
	RedisURL string

	JWTSecret string
	JWTExpiry time.Duration

	MinIOEndpoint     string
	MinIOAccessKey    string
	MinIOSecretKey    string
	MinIOExportBucket string
	MinIOUseSSL       bool
	ExportURLExpiry   time.Duration

	CORSOrigins string

	ResendAPIKey string
	FromEmail    string

	AIServiceURL         string
	AIServiceAPIKey      string
	AITimeout            time.Duration
	AIFailureThreshold   uint32
	AIBreakerOpenTimeout time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string

	CacheTTL time.Duration

	NotificationMessagesFile string

	ConfirmationThreshold int
	CriticalDangerFloor   float64
	UrgentDangerFloor     float64
	UrgentDashboardMin    float64
	DuplicateWindow       time.Duration
	RefileCooldown        time.Duration
	AutoResolveAfter      time.Duration
	AutoResolveInterval   time.Duration

	OTPExpiry time.Duration

	AuditBufferSize    int
	AuditExportMaxRows int
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "5000"),
		Environment: getEnv("NODE_ENV", getEnv("ENVIRONMENT", "development")),

		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DBMaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),

		RedisURL: getEnv("REDIS_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: getDurationEnv("JWT_EXPIRY", 7*24*time.Hour),

		MinIOEndpoint:     getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:    getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey:    getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOExportBucket: getEnv("MINIO_EXPORT_BUCKET", "janmitra-audit-exports"),
		MinIOUseSSL:       getBoolEnv("MINIO_USE_SSL", false),
		ExportURLExpiry:   getDurationEnv("EXPORT_URL_EXPIRY", 15*time.Minute),

		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		FromEmail:    getEnv("FROM_EMAIL", "alerts@janmitra.local"),

		AIServiceURL:         getEnv("AI_SERVICE_URL", "http://localhost:8000"),
		AIServiceAPIKey:      getEnv("AI_SERVICE_API_KEY", ""),
		AITimeout:            getDurationEnv("AI_TIMEOUT", 5*time.Second),
		AIFailureThreshold:   uint32(getIntEnv("AI_FAILURE_THRESHOLD", 5)),
		AIBreakerOpenTimeout: getDurationEnv("AI_BREAKER_OPEN_TIMEOUT", 30*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogFile:   getEnv("LOG_FILE", ""),

		CacheTTL: getDurationEnv("CACHE_TTL", 300*time.Second),

		NotificationMessagesFile: getEnv("NOTIFICATION_MESSAGES_FILE", ""),

		ConfirmationThreshold: getIntEnv("CONFIRMATION_THRESHOLD", 3),
		CriticalDangerFloor:   getFloatEnv("CRITICAL_DANGER_FLOOR", 10),
		UrgentDangerFloor:     getFloatEnv("URGENT_DANGER_FLOOR", 8),
		UrgentDashboardMin:    getFloatEnv("URGENT_DASHBOARD_MIN", 7),
		DuplicateWindow:       getDurationEnv("DUPLICATE_WINDOW", 30*time.Minute),
		RefileCooldown:        getDurationEnv("REFILE_COOLDOWN", 7*24*time.Hour),
		AutoResolveAfter:      getDurationEnv("AUTO_RESOLVE_AFTER", 7*24*time.Hour),
		AutoResolveInterval:   getDurationEnv("AUTO_RESOLVE_INTERVAL", 24*time.Hour),

		OTPExpiry: getDurationEnv("OTP_EXPIRY", 5*time.Minute),

		AuditBufferSize:    getIntEnv("AUDIT_BUFFER_SIZE", 1000),
		AuditExportMaxRows: getIntEnv("AUDIT_EXPORT_MAX_ROWS", 10000),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
