// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configPath = pflag.String("config", ".", "Directory containing config.toml")

	validLogLevels      = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes   = []string{"s3", "local"}
	validDatabaseDrives = []string{"sqlite", "postgres", "mongo"}
	validContactStores  = []string{"database", "file"}
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Host      HostConfig      `mapstructure:"host"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Contacts  ContactsConfig  `mapstructure:"contacts"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Avatar    AvatarConfig    `mapstructure:"avatar"`
	Storage   StorageConfig   `mapstructure:"storage"`
	AWS       AWSConfig       `mapstructure:"aws"`
	Mail      MailConfig      `mapstructure:"mail"`
	Security  SecurityConfig  `mapstructure:"security"`
	Turnstile TurnstileConfig `mapstructure:"turnstile"`
}

type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

type HostConfig struct {
	Port        int       `mapstructure:"port"`
	PublicURL   string    `mapstructure:"public_url"`
	CORSOrigins []string  `mapstructure:"cors_origins"`
	SSL         SSLConfig `mapstructure:"ssl"`
}

type SSLConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	CertificatePath    string `mapstructure:"certificate_path"`
	CertificateKeyPath string `mapstructure:"certificate_key_path"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	// DSN is a file path for sqlite, a connection string for postgres and
	// a mongodb:// URI for mongo
	DSN  string `mapstructure:"dsn"`
	Name string `mapstructure:"name"` // Only used by mongo
}

type ContactsConfig struct {
	Store    string `mapstructure:"store"`
	FilePath string `mapstructure:"file_path"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type AuthConfig struct {
	TokenTTL             time.Duration `mapstructure:"token_ttl"`
	RequireVerification  bool          `mapstructure:"require_verification"`
	TokenCleanupInterval time.Duration `mapstructure:"token_cleanup_interval"`
}

type AvatarConfig struct {
	GravatarDefault bool   `mapstructure:"gravatar_default"`
	MaxSize         int64  `mapstructure:"max_size"` // In megabytes, converted to bytes by Setup
	TmpDir          string `mapstructure:"tmp_dir"`
}

type StorageConfig struct {
	Type     string `mapstructure:"type"`
	LocalDir string `mapstructure:"local_dir"`
}

type AWSConfig struct {
	AccessKey       string `mapstructure:"access_key"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Endpoint        string `mapstructure:"endpoint"`
	PublicURL       string `mapstructure:"public_url"`
}

type MailConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	From        string        `mapstructure:"from"`
	Workers     int           `mapstructure:"workers"`
	QueueSize   int           `mapstructure:"queue_size"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

type SecurityConfig struct {
	RateLimit int `mapstructure:"rate_limit"`
}

type TurnstileConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	SecretToken string `mapstructure:"secret_token"`
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() (*Config, error) {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	// A missing .env is fine, values can come from the real environment
	_ = godotenv.Load()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("host.port", "HOST_PORT", "PORT")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("database.dsn", "DATABASE_DSN", "DB_HOST")

	v.BindEnv("aws.access_key", "AWS_ACCESS_KEY_ID")
	v.BindEnv("aws.secret_access_key", "AWS_SECRET_ACCESS_KEY")

	v.BindEnv("mail.password", "MAIL_PASSWORD")
	v.BindEnv("turnstile.secret_token", "TURNSTILE_SECRET_TOKEN")

	setDefaults()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}

		zap.L().Warn("No config.toml found, using defaults and environment")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config, %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Avatar.MaxSize <<= 20
	return &cfg, nil
}

func setDefaults() {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 3000)
	v.SetDefault("host.public_url", "http://localhost:3000")
	v.SetDefault("host.cors_origins", []string{"*"})
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")
	v.SetDefault("database.name", "contacts")

	v.SetDefault("contacts.store", "database")
	v.SetDefault("contacts.file_path", "contacts.json")

	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.require_verification", true)
	v.SetDefault("auth.token_cleanup_interval", time.Hour)

	v.SetDefault("avatar.gravatar_default", true)
	v.SetDefault("avatar.max_size", 5)
	v.SetDefault("avatar.tmp_dir", "tmp")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_dir", "public/avatars")

	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.from", "no-reply@localhost")
	v.SetDefault("mail.workers", 2)
	v.SetDefault("mail.queue_size", 64)
	v.SetDefault("mail.send_timeout", 30*time.Second)

	v.SetDefault("security.rate_limit", 20)

	v.SetDefault("turnstile.enabled", false)
}

// Validate checks the decoded configuration for values the
// application can't run with
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.Host.Port <= 0 {
		return errors.New("invalid port provided")
	}

	if c.Host.SSL.Enabled {
		if c.Host.SSL.CertificatePath == "" {
			return errors.New("no ssl certificate path provided")
		}

		if c.Host.SSL.CertificateKeyPath == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("no JWT secret set. Set JWT_SECRET or jwt.secret in config.toml, for example:\n\n%s", genSecret())
	}

	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be bigger than 0")
	}

	if !slices.Contains(validDatabaseDrives, c.Database.Driver) {
		return errors.New("invalid database driver provided")
	}

	if c.Database.DSN == "" {
		return errors.New("database.dsn can't be empty")
	}

	if !slices.Contains(validContactStores, c.Contacts.Store) {
		return errors.New("invalid contacts store provided")
	}

	if c.Contacts.Store == "file" && c.Contacts.FilePath == "" {
		return errors.New("contacts.file_path can't be empty")
	}

	if c.Avatar.MaxSize <= 0 {
		return errors.New("avatar.max_size must be bigger than 0")
	}

	switch c.Storage.Type {
	case "s3":
		if c.AWS.AccessKey == "" {
			return errors.New("aws access key can't be empty")
		}
		if c.AWS.SecretAccessKey == "" {
			return errors.New("aws secret access key can't be empty")
		}
		if c.AWS.Bucket == "" {
			return errors.New("bucket can't be empty")
		}
		if c.AWS.PublicURL == "" {
			return errors.New("aws.public_url can't be empty")
		}
	case "local":
		if c.Storage.LocalDir == "" {
			return errors.New("storage.local_dir can't be empty")
		}
	}

	if !slices.Contains(validStorageTypes, c.Storage.Type) {
		return errors.New("invalid storage type provided")
	}

	if c.Mail.Enabled {
		if c.Mail.Host == "" {
			return errors.New("mail.host can't be empty")
		}
		if c.Mail.From == "" {
			return errors.New("mail.from can't be empty")
		}
	}

	if c.Mail.Workers <= 0 || c.Mail.QueueSize <= 0 {
		return errors.New("mail.workers and mail.queue_size must be bigger than 0")
	}

	if c.Turnstile.Enabled && c.Turnstile.SecretToken == "" {
		return errors.New("turnstile secret token is missing")
	}

	if !c.Turnstile.Enabled {
		zap.L().Warn("Cloudflare's turnstile is disabled. Signup won't be guarded against bots")
	}

	return nil
}
