// Package config loads application settings from the environment (and optionally a config file).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvConfigPath names the variable pointing at an optional YAML/.env config file.
const EnvConfigPath = "CONFIG_PATH"

// Config holds every setting the server needs. It is read once at startup and treated as immutable.
type Config struct {
	Server struct {
		Addr         string `yaml:"addr" env:"SERVER_ADDR" env-default:":8080"`
		GinMode      string `yaml:"gin_mode" env:"GIN_MODE" env-default:"release"`
		LogLevel     string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
		StaticDir    string `yaml:"static_dir" env:"STATIC_DIR" env-default:"static"`
		CookieSecure bool   `yaml:"cookie_secure" env:"COOKIE_SECURE" env-default:"false"`
	} `yaml:"server"`

	// SecretKey signs session and flash cookies.
	SecretKey string `yaml:"secret_key" env:"SECRET_KEY" env-required:"true"`

	Database struct {
		Driver        string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
		SQLitePath    string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"site.db"`
		Host          string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
		Port          string `yaml:"port" env:"DB_PORT" env-default:"5432"`
		User          string `yaml:"user" env:"DB_USER"`
		Password      string `yaml:"password" env:"DB_PASSWORD"`
		Name          string `yaml:"name" env:"DB_NAME" env-default:"myblog"`
		SSLMode       string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
		RunMigrations bool   `yaml:"run_migrations" env:"RUN_MIGRATIONS" env-default:"true"`
	} `yaml:"database"`

	Redis struct {
		Host     string `yaml:"host" env:"REDIS_HOST"`
		Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
	} `yaml:"redis"`

	Session struct {
		TTL         time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"24h"`
		RememberTTL time.Duration `yaml:"remember_ttl" env:"REMEMBER_TTL" env-default:"720h"`
	} `yaml:"session"`

	Upload struct {
		MaxBytes         int64 `yaml:"max_bytes" env:"MAX_UPLOAD_BYTES" env-default:"5242880"`
		VisionModeration bool  `yaml:"vision_moderation" env:"VISION_MODERATION" env-default:"false"`
	} `yaml:"upload"`

	Mail struct {
		Server       string `yaml:"server" env:"MAIL_SERVER"`
		Port         int    `yaml:"port" env:"MAIL_PORT" env-default:"587"`
		Username     string `yaml:"username" env:"MAIL_USERNAME"`
		Password     string `yaml:"password" env:"MAIL_PASSWORD"`
		UseTLS       bool   `yaml:"use_tls" env:"MAIL_USE_TLS" env-default:"true"`
		SuppressSend bool   `yaml:"suppress_send" env:"MAIL_SUPPRESS_SEND" env-default:"false"`
		Recipient    string `yaml:"recipient" env:"CONTACT_RECIPIENT" env-default:"admin@localhost"`
	} `yaml:"mail"`

	RateLimit struct {
		LoginPerMinute   int `yaml:"login_per_minute" env:"RATE_LIMIT_LOGIN" env-default:"10"`
		ContactPerMinute int `yaml:"contact_per_minute" env:"RATE_LIMIT_CONTACT" env-default:"5"`
	} `yaml:"rate_limit"`
}

// Load reads the configuration. When CONFIG_PATH is set the file is parsed first and environment
// variables override it; otherwise only the environment is used.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv(EnvConfigPath); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &cfg, nil
}

// RedisEnabled reports whether a Redis host was configured for the session store.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

// MailEnabled reports whether outbound mail can actually be delivered.
func (c *Config) MailEnabled() bool {
	return c.Mail.Server != "" && !c.Mail.SuppressSend
}
