package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	S3BucketName    string
	S3PublicBaseURL string // optional; when empty image URLs are s3://bucket/key

	JWTSecret    string
	JWTExpiry    time.Duration
	CookieSecure bool

	OTPTTL           time.Duration // 0 disables expiry
	OTPMaxAttempts   int
	OTPAttemptWindow time.Duration

	BloomBits   int
	BloomHashes int
	BloomWarmup bool

	MailTransport  string // "smtp" | "sns"
	SMTPHost       string
	SMTPPort       int
	SMTPFrom       string
	SMTPUsername   string
	SMTPPassword   string
	SNSRegion      string
	SNSTopicARN    string
	MailWorkers    int
	MailQueueSize  int
	MailMaxRetries int

	RedisAddr     string // empty disables the OTP attempt limiter
	RedisPassword string
	RedisDB       int

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users    string
	Profiles string
	OTPs     string
	Blogs    string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:    getEnv("DYNAMO_TABLE_USERS", "users"),
			Profiles: getEnv("DYNAMO_TABLE_PROFILES", "profiles"),
			OTPs:     getEnv("DYNAMO_TABLE_OTPS", "otps"),
			Blogs:    getEnv("DYNAMO_TABLE_BLOGS", "blogs"),
		},

		S3BucketName:    getEnv("S3_BUCKET_NAME", "blog-app-images"),
		S3PublicBaseURL: strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTExpiry:    time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 72)) * time.Hour,
		CookieSecure: getEnvBool("COOKIE_SECURE", true),

		OTPTTL:           getEnvDuration("OTP_TTL", 5*time.Minute),
		OTPMaxAttempts:   getEnvInt("OTP_MAX_ATTEMPTS", 5),
		OTPAttemptWindow: getEnvDuration("OTP_ATTEMPT_WINDOW", 15*time.Minute),

		BloomBits:   getEnvInt("BLOOM_BITS", 100000),
		BloomHashes: getEnvInt("BLOOM_HASHES", 3),
		BloomWarmup: getEnvBool("BLOOM_WARMUP", true),

		MailTransport:  strings.ToLower(getEnv("MAIL_TRANSPORT", "smtp")),
		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnvInt("SMTP_PORT", 587),
		SMTPFrom:       getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SNSRegion:      getEnv("SNS_REGION", "us-east-1"),
		SNSTopicARN:    getEnv("SNS_TOPIC_ARN", ""),
		MailWorkers:    getEnvInt("MAIL_WORKERS", 2),
		MailQueueSize:  getEnvInt("MAIL_QUEUE_SIZE", 256),
		MailMaxRetries: getEnvInt("MAIL_MAX_RETRIES", 3),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
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

// getEnvDuration accepts Go duration strings ("5m", "90s"); "0" disables.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
