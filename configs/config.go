package config

import (
	"log"
	"os"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Config struct {
	InstagramClientID     string
	InstagramClientSecret string
	InstagramRedirectURI  string
	PostgresURI           string
	RedisURI              string
	FrontendURL           string
	WebhookVerifyToken    string
	R2                    R2
	SecretKey             string
}

// LoadConfig reads configuration from the environment. Credentials have
// no default fallback: a missing required variable aborts startup.
func LoadConfig() *Config {
	return &Config{
		InstagramClientID:     mustEnv("INSTAGRAM_CLIENT_ID"),
		InstagramClientSecret: mustEnv("INSTAGRAM_CLIENT_SECRET"),
		InstagramRedirectURI:  mustEnv("INSTAGRAM_REDIRECT_URI"),
		PostgresURI:           mustEnv("POSTGRES_URI"),
		RedisURI:              getEnv("REDIS_URI", ""),
		FrontendURL:           getEnv("FRONTEND_URL", "http://localhost:5173"),
		WebhookVerifyToken:    mustEnv("WEBHOOK_VERIFY_TOKEN"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
		SecretKey: mustEnv("SECRET_KEY"),
	}
}

// ArchiveEnabled reports whether the R2 media archive is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.R2.AccountID != "" && c.R2.AccessKey != "" && c.R2.SecretKey != "" && c.R2.BucketName != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return value
}
