package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/peachlease/edu-verify/internal/domain"
)

// Store backends accepted in STORE_BACKEND.
const (
	StoreDynamo = "dynamo"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Delivery channels accepted in EMAIL_DELIVERY.
const (
	DeliverySMTP = "smtp"
	DeliverySNS  = "sns"
	DeliveryLog  = "log"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	Mode           domain.DeploymentMode
	StoreBackend   string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTable    string
	MongoURI       string
	MongoDatabase  string

	EmailDelivery     string
	EmailSuffix       string
	SMTPHost          string
	SMTPPort          string
	SMTPFrom          string
	SMTPUsername      string
	SMTPPassword      string
	SNSRegion         string
	SNSTopicARN       string
	TemplateS3Bucket  string
	TemplateS3Key     string
	RequestTimeout    time.Duration
	DeliveryTimeout   time.Duration
	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	ProofTokenTTL     time.Duration
	AllowedOrigins    []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		Mode:           domain.ParseDeploymentMode(getEnv("ENVIRONMENT", "production")),
		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", StoreDynamo)),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTable:    getEnv("DYNAMO_TABLE_EMAIL_VERIFICATIONS", "email_verifications"),
		MongoURI:       getEnv("MONGO_URI", ""),
		MongoDatabase:  getEnv("MONGO_DATABASE", "peach_lease"),

		EmailDelivery:     strings.ToLower(getEnv("EMAIL_DELIVERY", DeliveryLog)),
		EmailSuffix:       strings.ToLower(getEnv("EMAIL_REQUIRED_SUFFIX", ".edu")),
		SMTPHost:          getEnv("SMTP_HOST", "localhost"),
		SMTPPort:          getEnv("SMTP_PORT", "1025"),
		SMTPFrom:          getEnv("SMTP_FROM", "noreply@peachlease.com"),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SNSRegion:         getEnv("SNS_REGION", "us-east-1"),
		SNSTopicARN:       getEnv("SNS_TOPIC_ARN", ""),
		TemplateS3Bucket:  getEnv("EMAIL_TEMPLATE_S3_BUCKET", ""),
		TemplateS3Key:     getEnv("EMAIL_TEMPLATE_S3_KEY", ""),
		RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		DeliveryTimeout:   getEnvDuration("DELIVERY_TIMEOUT", 10*time.Second),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		ProofTokenTTL:     getEnvDuration("PROOF_TOKEN_TTL", 30*time.Minute),
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// Validate reports settings without which no verification can be stored or
// delivered. The returned error wraps domain.ErrConfiguration.
func (c *Config) Validate() error {
	var missing []string
	switch c.StoreBackend {
	case StoreDynamo:
		if c.AWSRegion == "" {
			missing = append(missing, "AWS_REGION")
		}
		if c.DynamoTable == "" {
			missing = append(missing, "DYNAMO_TABLE_EMAIL_VERIFICATIONS")
		}
		if c.AWSAccessKeyID != "" && c.AWSSecretKey == "" {
			missing = append(missing, "AWS_SECRET_ACCESS_KEY")
		}
	case StoreMongo:
		if c.MongoURI == "" {
			missing = append(missing, "MONGO_URI")
		}
	case StoreMemory:
		if c.Mode == domain.Production {
			return fmt.Errorf("memory store is not allowed in production: %w", domain.ErrConfiguration)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q: %w", c.StoreBackend, domain.ErrConfiguration)
	}

	switch c.EmailDelivery {
	case DeliverySMTP:
		if c.SMTPHost == "" {
			missing = append(missing, "SMTP_HOST")
		}
	case DeliverySNS:
		if c.SNSTopicARN == "" {
			missing = append(missing, "SNS_TOPIC_ARN")
		}
	case DeliveryLog:
	default:
		return fmt.Errorf("unknown EMAIL_DELIVERY %q: %w", c.EmailDelivery, domain.ErrConfiguration)
	}

	if !strings.HasPrefix(c.EmailSuffix, ".") {
		return fmt.Errorf("EMAIL_REQUIRED_SUFFIX must start with a dot: %w", domain.ErrConfiguration)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s: %w", strings.Join(missing, ", "), domain.ErrConfiguration)
	}
	return nil
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

// getEnvDuration accepts Go duration strings ("15s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n := getEnvInt(key, -1); n >= 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
