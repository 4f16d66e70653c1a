package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	ServerPort string

	DatabaseType string
	DatabasePath string
	DatabaseURL  string
	SeedSamples  bool

	// SessionStore selects where device sessions are persisted: sql, redis or memory
	SessionStore  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionIdle   time.Duration

	TokenSecret string
	TokenTTL    time.Duration

	AdminEmail    string
	AdminPassword string

	AWSRegion       string
	S3Bucket        string
	MediaBaseURL    string
	SESFromEmail    string
	SESFromName     string
	AppBaseURL      string
	EmailDebug      bool
	UploadMaxSize   int64
	LoginRateLimit  int
	LoginRateWindow time.Duration

	LogLevel  string
	LogFormat string
}

var defaults = map[string]interface{}{
	"PORT":              "8080",
	"DB_TYPE":           "sqlite",
	"DB_PATH":           "./kidsvids.db",
	"DATABASE_URL":      "",
	"SEED_SAMPLES":      true,
	"SESSION_STORE":     "sql",
	"REDIS_ADDR":        "localhost:6379",
	"REDIS_PASSWORD":    "",
	"REDIS_DB":          0,
	"SESSION_IDLE_TTL":  "30m",
	"TOKEN_SECRET":      "",
	"TOKEN_TTL":         "720h",
	"ADMIN_EMAIL":       "admin@app.com",
	"ADMIN_PASSWORD":    "",
	"AWS_REGION":        "us-east-1",
	"S3_BUCKET":         "",
	"MEDIA_BASE_URL":    "",
	"SES_FROM_EMAIL":    "",
	"SES_FROM_NAME":     "KidsVids",
	"APP_BASE_URL":      "http://localhost:8080",
	"EMAIL_DEBUG":       false,
	"UPLOAD_MAX_SIZE":   200 * 1024 * 1024,
	"LOGIN_RATE_LIMIT":  10,
	"LOGIN_RATE_WINDOW": "1m",
	"LOG_LEVEL":         "info",
	"LOG_FORMAT":        "json",
}

// Load reads configuration from defaults, an optional config file (CONFIG_FILE)
// and environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		ServerPort:      v.GetString("PORT"),
		DatabaseType:    strings.ToLower(v.GetString("DB_TYPE")),
		DatabasePath:    v.GetString("DB_PATH"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		SeedSamples:     v.GetBool("SEED_SAMPLES"),
		SessionStore:    strings.ToLower(v.GetString("SESSION_STORE")),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		SessionIdle:     v.GetDuration("SESSION_IDLE_TTL"),
		TokenSecret:     v.GetString("TOKEN_SECRET"),
		TokenTTL:        v.GetDuration("TOKEN_TTL"),
		AdminEmail:      v.GetString("ADMIN_EMAIL"),
		AdminPassword:   v.GetString("ADMIN_PASSWORD"),
		AWSRegion:       v.GetString("AWS_REGION"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		MediaBaseURL:    v.GetString("MEDIA_BASE_URL"),
		SESFromEmail:    v.GetString("SES_FROM_EMAIL"),
		SESFromName:     v.GetString("SES_FROM_NAME"),
		AppBaseURL:      v.GetString("APP_BASE_URL"),
		EmailDebug:      v.GetBool("EMAIL_DEBUG"),
		UploadMaxSize:   v.GetInt64("UPLOAD_MAX_SIZE"),
		LoginRateLimit:  v.GetInt("LOGIN_RATE_LIMIT"),
		LoginRateWindow: v.GetDuration("LOGIN_RATE_WINDOW"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseType {
	case "sqlite", "sqlite3", "":
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for database type %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	switch c.SessionStore {
	case "sql", "redis", "memory":
	default:
		return fmt.Errorf("unsupported session store: %s", c.SessionStore)
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}
