// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq broker and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// LineConfig provides settings for the LINE push channel.
type LineConfig interface {
	GetLineAccessToken() string
	GetLineTargetID() string
	GetLineAPIURL() string
}

// SMTPConfig provides settings for the email digest channel.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFrom() string
	GetSMTPRecipients() []string
	IsSMTPEnabled() bool
}

// AMQPConfig provides settings for the AMQP notification channel.
type AMQPConfig interface {
	GetAMQPURL() string
	GetAMQPExchange() string
}

// PresenceConfig provides presence tracker timings.
type PresenceConfig interface {
	GetHeartbeatInterval() time.Duration
	GetPresenceStaleAfter() time.Duration
}

// EscalationConfig provides idle-lead thresholds and check cadence.
type EscalationConfig interface {
	GetIdleNotifyAfter() time.Duration
	GetIdleReassignAfter() time.Duration
	GetIdleCheckInterval() time.Duration
	GetReassignCheckInterval() time.Duration
	GetDailyReportHour() int
}

// LocaleConfig provides the location used for calendar-day decisions.
type LocaleConfig interface {
	GetLocation() *time.Location
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	MigrationsEnabled     bool
	JWTAccessSecret       string
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	LineAccessToken       string
	LineTargetID          string
	LineAPIURL            string
	SMTPHost              string
	SMTPPort              int
	SMTPUsername          string
	SMTPPassword          string
	SMTPFrom              string
	SMTPRecipients        []string
	AMQPURL               string
	AMQPExchange          string
	HeartbeatInterval     time.Duration
	PresenceStaleAfter    time.Duration
	IdleNotifyAfter       time.Duration
	IdleReassignAfter     time.Duration
	IdleCheckInterval     time.Duration
	ReassignCheckInterval time.Duration
	DailyReportHour       int
	Location              *time.Location
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// LineConfig implementation
func (c *Config) GetLineAccessToken() string { return c.LineAccessToken }
func (c *Config) GetLineTargetID() string    { return c.LineTargetID }
func (c *Config) GetLineAPIURL() string      { return c.LineAPIURL }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetSMTPFrom() string         { return c.SMTPFrom }
func (c *Config) GetSMTPRecipients() []string { return c.SMTPRecipients }
func (c *Config) IsSMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != "" && len(c.SMTPRecipients) > 0
}

// AMQPConfig implementation
func (c *Config) GetAMQPURL() string      { return c.AMQPURL }
func (c *Config) GetAMQPExchange() string { return c.AMQPExchange }

// PresenceConfig implementation
func (c *Config) GetHeartbeatInterval() time.Duration  { return c.HeartbeatInterval }
func (c *Config) GetPresenceStaleAfter() time.Duration { return c.PresenceStaleAfter }

// EscalationConfig implementation
func (c *Config) GetIdleNotifyAfter() time.Duration       { return c.IdleNotifyAfter }
func (c *Config) GetIdleReassignAfter() time.Duration     { return c.IdleReassignAfter }
func (c *Config) GetIdleCheckInterval() time.Duration     { return c.IdleCheckInterval }
func (c *Config) GetReassignCheckInterval() time.Duration { return c.ReassignCheckInterval }
func (c *Config) GetDailyReportHour() int                 { return c.DailyReportHour }

// LocaleConfig implementation
func (c *Config) GetLocation() *time.Location { return c.Location }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "Asia/Bangkok"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		MigrationsEnabled:     strings.EqualFold(getEnv("MIGRATIONS_ENABLED", "true"), "true"),
		JWTAccessSecret:       getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		LineAccessToken:       getEnv("LINE_ACCESS_TOKEN", ""),
		LineTargetID:          getEnv("LINE_TARGET_ID", ""),
		LineAPIURL:            getEnv("LINE_API_URL", "https://api.line.me/v2/bot/message/push"),
		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPPort:              mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:              getEnv("SMTP_FROM", ""),
		SMTPRecipients:        splitCSV(getEnv("SMTP_TO", "")),
		AMQPURL:               getEnv("AMQP_URL", ""),
		AMQPExchange:          getEnv("AMQP_EXCHANGE", "leadflow.notifications"),
		HeartbeatInterval:     mustDuration(getEnv("PRESENCE_HEARTBEAT_INTERVAL", "4m")),
		PresenceStaleAfter:    mustDuration(getEnv("PRESENCE_STALE_AFTER", "5m")),
		IdleNotifyAfter:       mustDuration(getEnv("IDLE_NOTIFY_AFTER", "10m")),
		IdleReassignAfter:     mustDuration(getEnv("IDLE_REASSIGN_AFTER", "24h")),
		IdleCheckInterval:     mustDuration(getEnv("IDLE_CHECK_INTERVAL", "10m")),
		ReassignCheckInterval: mustDuration(getEnv("REASSIGN_CHECK_INTERVAL", "1h")),
		DailyReportHour:       mustInt(getEnv("DAILY_REPORT_HOUR", "8")),
		Location:              loc,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.HeartbeatInterval <= 0 || cfg.PresenceStaleAfter <= 0 {
		return nil, fmt.Errorf("PRESENCE_HEARTBEAT_INTERVAL and PRESENCE_STALE_AFTER must be positive durations")
	}
	if cfg.PresenceStaleAfter <= cfg.HeartbeatInterval {
		return nil, fmt.Errorf("PRESENCE_STALE_AFTER must be longer than PRESENCE_HEARTBEAT_INTERVAL")
	}
	if cfg.IdleNotifyAfter <= 0 || cfg.IdleReassignAfter <= 0 {
		return nil, fmt.Errorf("IDLE_NOTIFY_AFTER and IDLE_REASSIGN_AFTER must be positive durations")
	}
	if cfg.DailyReportHour < 0 || cfg.DailyReportHour > 23 {
		return nil, fmt.Errorf("DAILY_REPORT_HOUR must be between 0 and 23")
	}

	return cfg, nil
}

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
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
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
