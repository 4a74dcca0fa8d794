package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

type Config struct {
	HTTPAddress   string
	HTTPSCertFile string
	HTTPSKeyFile  string

	DatabaseURL string

	SessionStore    string
	RedisAddress    string
	RedisPassword   string
	RedisDB         int
	MemoryStoreSize int

	JWTSecret         string
	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	Issuer            string
	Audience          string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration

	BcryptCost     int
	PasswordPepper string

	AllowedOrigins   []string
	AllowCredentials bool

	LogLevel  string
	LogFormat string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
}

var keys = []string{
	"HTTP_ADDRESS", "HTTPS_CERT_FILE", "HTTPS_KEY_FILE",
	"DATABASE_URL",
	"SESSION_STORE", "REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB", "MEMORY_STORE_SIZE",
	"JWT_SECRET", "JWT_PRIVATE_KEY_PATH", "JWT_PUBLIC_KEY_PATH", "JWT_ISSUER", "JWT_AUDIENCE",
	"ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL",
	"BCRYPT_COST", "PASSWORD_PEPPER",
	"ALLOWED_ORIGINS", "ALLOW_CREDENTIALS",
	"LOG_LEVEL", "LOG_FORMAT",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "MAIL_FROM",
}

// Load reads config.json from the working directory (optional) and the
// environment. Environment wins.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")

	v.SetDefault("HTTP_ADDRESS", ":4000")
	v.SetDefault("SESSION_STORE", SessionStoreRedis)
	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("MEMORY_STORE_SIZE", 100_000)
	v.SetDefault("ACCESS_TOKEN_TTL", "24h")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("SMTP_PORT", 587)

	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	origins, err := parseList(v.GetString("ALLOWED_ORIGINS"))
	if err != nil {
		return nil, fmt.Errorf("ALLOWED_ORIGINS: %w", err)
	}

	cfg := &Config{
		HTTPAddress:       v.GetString("HTTP_ADDRESS"),
		HTTPSCertFile:     v.GetString("HTTPS_CERT_FILE"),
		HTTPSKeyFile:      v.GetString("HTTPS_KEY_FILE"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		SessionStore:      strings.ToLower(v.GetString("SESSION_STORE")),
		RedisAddress:      v.GetString("REDIS_ADDRESS"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		MemoryStoreSize:   v.GetInt("MEMORY_STORE_SIZE"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTPrivateKeyPath: v.GetString("JWT_PRIVATE_KEY_PATH"),
		JWTPublicKeyPath:  v.GetString("JWT_PUBLIC_KEY_PATH"),
		Issuer:            v.GetString("JWT_ISSUER"),
		Audience:          v.GetString("JWT_AUDIENCE"),
		AccessTokenTTL:    v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:   v.GetDuration("REFRESH_TOKEN_TTL"),
		BcryptCost:        v.GetInt("BCRYPT_COST"),
		PasswordPepper:    v.GetString("PASSWORD_PEPPER"),
		AllowedOrigins:    origins,
		AllowCredentials:  v.GetBool("ALLOW_CREDENTIALS"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		SMTPHost:          v.GetString("SMTP_HOST"),
		SMTPPort:          v.GetInt("SMTP_PORT"),
		SMTPUsername:      v.GetString("SMTP_USERNAME"),
		SMTPPassword:      v.GetString("SMTP_PASSWORD"),
		MailFrom:          v.GetString("MAIL_FROM"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	rsa := c.JWTPrivateKeyPath != "" || c.JWTPublicKeyPath != ""
	if rsa && (c.JWTPrivateKeyPath == "" || c.JWTPublicKeyPath == "") {
		return fmt.Errorf("JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH must be set together")
	}
	if !rsa && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		return fmt.Errorf("REFRESH_TOKEN_TTL must be longer than ACCESS_TOKEN_TTL")
	}
	switch c.SessionStore {
	case SessionStoreRedis, SessionStoreMemory:
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	if (c.HTTPSCertFile == "") != (c.HTTPSKeyFile == "") {
		return fmt.Errorf("HTTPS_CERT_FILE and HTTPS_KEY_FILE must be set together")
	}
	return nil
}

// parseList accepts either a JSON array or a comma separated list.
func parseList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
