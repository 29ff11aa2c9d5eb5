package config

import (
	"testing"
	"time"

	"github.com/peachlease/edu-verify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"ENVIRONMENT", "STORE_BACKEND", "EMAIL_DELIVERY", "EMAIL_REQUIRED_SUFFIX", "REQUEST_TIMEOUT", "ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, domain.Production, cfg.Mode)
	assert.Equal(t, StoreDynamo, cfg.StoreBackend)
	assert.Equal(t, DeliveryLog, cfg.EmailDelivery)
	assert.Equal(t, ".edu", cfg.EmailSuffix)
	assert.Equal(t, "email_verifications", cfg.DynamoTable)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("STORE_BACKEND", "MONGO")
	t.Setenv("REQUEST_TIMEOUT", "3")
	t.Setenv("DELIVERY_TIMEOUT", "1500ms")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := Load()

	assert.Equal(t, domain.Development, cfg.Mode)
	assert.Equal(t, StoreMongo, cfg.StoreBackend)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.DeliveryTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("PROOF_TOKEN_TTL", "soon")
	assert.Equal(t, 30*time.Minute, Load().ProofTokenTTL)
}

func validConfig() *Config {
	return &Config{
		Mode:          domain.Production,
		StoreBackend:  StoreDynamo,
		AWSRegion:     "us-east-1",
		DynamoTable:   "email_verifications",
		EmailDelivery: DeliveryLog,
		EmailSuffix:   ".edu",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid dynamo", func(*Config) {}, ""},
		{"missing table", func(c *Config) { c.DynamoTable = "" }, "DYNAMO_TABLE_EMAIL_VERIFICATIONS"},
		{"key without secret", func(c *Config) { c.AWSAccessKeyID = "AKIA" }, "AWS_SECRET_ACCESS_KEY"},
		{"mongo without uri", func(c *Config) { c.StoreBackend = StoreMongo }, "MONGO_URI"},
		{"memory in production", func(c *Config) { c.StoreBackend = StoreMemory }, "not allowed in production"},
		{"memory in development", func(c *Config) { c.StoreBackend = StoreMemory; c.Mode = domain.Development }, ""},
		{"unknown store", func(c *Config) { c.StoreBackend = "postgres" }, "unknown STORE_BACKEND"},
		{"sns without topic", func(c *Config) { c.EmailDelivery = DeliverySNS }, "SNS_TOPIC_ARN"},
		{"smtp without host", func(c *Config) { c.EmailDelivery = DeliverySMTP }, "SMTP_HOST"},
		{"unknown delivery", func(c *Config) { c.EmailDelivery = "pigeon" }, "unknown EMAIL_DELIVERY"},
		{"suffix without dot", func(c *Config) { c.EmailSuffix = "edu" }, "must start with a dot"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)
			err := c.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
