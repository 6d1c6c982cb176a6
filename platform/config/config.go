// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	IsDevelopment() bool
}

// DatabaseConfig provides lead archive database settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	IsArchiveEnabled() bool
}

// StoreConfig provides conversation store (Redis) settings.
type StoreConfig interface {
	GetRedisURL() string
	GetConversationTTL() time.Duration
}

// ResponderConfig provides settings for the primary and fallback responders.
type ResponderConfig interface {
	GetResponderWebhookURL() string
	GetResponderTimeout() time.Duration
	GetLocalResponderURL() string
}

// MinIOConfig provides settings for MinIO S3-compatible file storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketChatUploads() string
	GetMinIOPublicBaseURL() string
	IsMinIOEnabled() bool
}

// TaskQueueConfig provides settings for the asynq task queue.
type TaskQueueConfig interface {
	GetRedisURL() string
	GetTaskQueueName() string
	GetFileAnalysisWebhookURL() string
}

// EmailConfig provides settings for operator alert emails.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromAddress() string
	GetHandoffAlertAddress() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                    string
	HTTPAddr               string
	CORSAllowAll           bool
	CORSOrigins            []string
	CORSAllowCreds         bool
	RedisURL               string
	ConversationTTL        time.Duration
	DatabaseURL            string
	ResponderWebhookURL    string
	ResponderTimeout       time.Duration
	LocalResponderURL      string
	MinIOEndpoint          string
	MinIOAccessKey         string
	MinIOSecretKey         string
	MinIOUseSSL            bool
	MinIOMaxFileSize       int64
	MinioBucketChatUploads string
	MinIOPublicBaseURL     string
	TaskQueueName          string
	FileAnalysisWebhookURL string
	EmailEnabled           bool
	SMTPHost               string
	SMTPPort               int
	SMTPUsername           string
	SMTPPassword           string
	EmailFromAddress       string
	HandoffAlertAddress    string
}

// Load reads configuration from the environment, applying .env if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4321"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "false"), "true")

	cfg := &Config{
		Env:                    getEnv("APP_ENV", "development"),
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:           corsAllowAll,
		CORSOrigins:            corsOrigins,
		CORSAllowCreds:         strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		RedisURL:               getEnv("REDIS_URL", ""),
		ConversationTTL:        mustDuration(getEnv("CONVERSATION_TTL", "720h")),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		ResponderWebhookURL:    getEnv("RESPONDER_WEBHOOK_URL", ""),
		ResponderTimeout:       mustDuration(getEnv("RESPONDER_TIMEOUT", "10s")),
		LocalResponderURL:      getEnv("LOCAL_RESPONDER_URL", "http://localhost:8080/api/v1/chat/respond"),
		MinIOEndpoint:          getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:         getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:         getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:            strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:       mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "10485760")),
		MinioBucketChatUploads: getEnv("MINIO_BUCKET_CHAT_UPLOADS", "chat-uploads"),
		MinIOPublicBaseURL:     getEnv("MINIO_PUBLIC_BASE_URL", ""),
		TaskQueueName:          getEnv("TASK_QUEUE_NAME", "chat"),
		FileAnalysisWebhookURL: getEnv("FILE_ANALYSIS_WEBHOOK_URL", ""),
		EmailEnabled:           emailEnabled,
		SMTPHost:               getEnv("SMTP_HOST", ""),
		SMTPPort:               mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:           getEnv("SMTP_USERNAME", ""),
		SMTPPassword:           getEnv("SMTP_PASSWORD", ""),
		EmailFromAddress:       getEnv("EMAIL_FROM_ADDRESS", ""),
		HandoffAlertAddress:    getEnv("HANDOFF_ALERT_ADDRESS", ""),
	}

	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.ResponderTimeout <= 0 {
		return nil, fmt.Errorf("RESPONDER_TIMEOUT must be a positive duration")
	}
	if cfg.EmailEnabled && (cfg.SMTPHost == "" || cfg.EmailFromAddress == "" || cfg.HandoffAlertAddress == "") {
		return nil, fmt.Errorf("SMTP_HOST, EMAIL_FROM_ADDRESS and HANDOFF_ALERT_ADDRESS are required when EMAIL_ENABLED is true")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetHTTPAddr() string        { return c.HTTPAddr }
func (c *Config) IsDevelopment() bool        { return strings.EqualFold(c.Env, "development") }
func (c *Config) GetCORSAllowAll() bool      { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string   { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool    { return c.CORSAllowCreds }
func (c *Config) GetDatabaseURL() string     { return c.DatabaseURL }
func (c *Config) IsArchiveEnabled() bool     { return c.DatabaseURL != "" }
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetConversationTTL() time.Duration { return c.ConversationTTL }

func (c *Config) GetResponderWebhookURL() string     { return c.ResponderWebhookURL }
func (c *Config) GetResponderTimeout() time.Duration { return c.ResponderTimeout }
func (c *Config) GetLocalResponderURL() string       { return c.LocalResponderURL }

func (c *Config) GetMinIOEndpoint() string          { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string         { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string         { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool              { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64        { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketChatUploads() string { return c.MinioBucketChatUploads }
func (c *Config) GetMinIOPublicBaseURL() string     { return c.MinIOPublicBaseURL }
func (c *Config) IsMinIOEnabled() bool {
	return c.MinIOEndpoint != "" && c.MinIOAccessKey != "" && c.MinIOSecretKey != ""
}

func (c *Config) GetTaskQueueName() string          { return c.TaskQueueName }
func (c *Config) GetFileAnalysisWebhookURL() string { return c.FileAnalysisWebhookURL }

func (c *Config) GetEmailEnabled() bool         { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string           { return c.SMTPHost }
func (c *Config) GetSMTPPort() int              { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string       { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string       { return c.SMTPPassword }
func (c *Config) GetEmailFromAddress() string   { return c.EmailFromAddress }
func (c *Config) GetHandoffAlertAddress() string { return c.HandoffAlertAddress }

// =============================================================================
// Helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func mustInt64(value string) int64 {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
