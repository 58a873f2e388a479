package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack / DynamoDB Local URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTIssuer         string
	JWTExpiry         time.Duration

	OTP OTP

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion   string
	SNSTopicARN string

	GoogleClientID string

	Gate      Gate
	Cookie    Cookie
	RateRPS   float64
	RateBurst int
	// RateTrustProxy keys the limiter on X-Forwarded-For / X-Real-Ip. Enable
	// only behind a proxy that overwrites those headers.
	RateTrustProxy bool

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users        string
	Sessions     string
	OneTimeCodes string
}

// OTP configures one-time passcode issuance and verification.
type OTP struct {
	TTL                  time.Duration
	MaxAttempts          int
	InstitutionalDomains []string
	HashCost             int
	Delivery             string // "smtp" | "sns"
}

// Gate configures the page route gate. Paths are matched after path.Clean.
type Gate struct {
	PublicPaths         []string // exact matches, e.g. "/"
	ExemptPrefixes      []string // string prefixes, e.g. "/verify" also covers "/verify-email"
	RestrictedPaths     []string // actions that require a verified email
	VerifyPath          string
	CompleteProfilePath string
	LandingPath         string
}

// Cookie configures the session cookie that carries the token for page requests.
type Cookie struct {
	Name   string
	Domain string
	Secure bool
}

// Load reads all configuration from environment variables.
func Load() *Config {
	appEnv := getEnv("APP_ENV", "development")
	return &Config{
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   appEnv,
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:        getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:     getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			OneTimeCodes: getEnv("DYNAMO_TABLE_ONE_TIME_CODES", "one_time_codes"),
		},

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTIssuer:         getEnv("JWT_ISSUER", "campus-market"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),

		OTP: OTP{
			TTL:                  getEnvDuration("OTP_TTL", 10*time.Minute),
			MaxAttempts:          getEnvInt("OTP_MAX_ATTEMPTS", 5),
			InstitutionalDomains: getEnvList("INSTITUTIONAL_DOMAINS", "ufl.edu,shands.ufl.edu"),
			HashCost:             getEnvInt("OTP_HASH_COST", 10),
			Delivery:             getEnv("OTP_DELIVERY", "smtp"),
		},

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion:   getEnv("SNS_REGION", "us-east-1"),
		SNSTopicARN: getEnv("SNS_TOPIC_ARN", ""),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		Gate: Gate{
			PublicPaths:         getEnvList("GATE_PUBLIC_PATHS", "/"),
			ExemptPrefixes:      getEnvList("GATE_EXEMPT_PREFIXES", "/verify,/auth,/static,/favicon.ico,/health-check"),
			RestrictedPaths:     getEnvList("GATE_RESTRICTED_PATHS", "/sell"),
			VerifyPath:          getEnv("GATE_VERIFY_PATH", "/verify"),
			CompleteProfilePath: getEnv("GATE_COMPLETE_PROFILE_PATH", "/complete-profile"),
			LandingPath:         getEnv("GATE_LANDING_PATH", "/buy"),
		},
		Cookie: Cookie{
			Name:   getEnv("SESSION_COOKIE_NAME", "session"),
			Domain: getEnv("SESSION_COOKIE_DOMAIN", ""),
			Secure: getEnvBool("SESSION_COOKIE_SECURE", appEnv == "production"),
		},
		RateRPS:        getEnvFloat("RATE_LIMIT_RPS", 5),
		RateBurst:      getEnvInt("RATE_LIMIT_BURST", 10),
		RateTrustProxy: getEnvBool("RATE_LIMIT_TRUST_PROXY", false),

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", "*"),
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

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key, fallback string) []string {
	raw := strings.Split(getEnv(key, fallback), ",")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
