package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT, default=8000"`
	Env       string        `env:"ENV, default=production"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=30m"`
	// AdminEmail receives product and inquiry notifications.
	AdminEmail string `env:"ADMIN_EMAIL, default=admin@pixelforge.com"`

	Auth   AuthConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Minio  MinioConfig
	Images ImageConfig
	Notify NotifyConfig
}

type AuthConfig struct {
	PasswordMinLength int `env:"PASSWORD_MIN_LENGTH, default=8"`
	BcryptCost        int `env:"BCRYPT_COST, default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB, default=pixelforge"`
}

type RedisConfig struct {
	// Addr empty disables notification deduplication.
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type MinioConfig struct {
	// Endpoint empty selects the local disk image store.
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET, default=product-images"`
	UseSSL    bool   `env:"MINIO_USE_SSL, default=false"`
	PublicURL string `env:"MINIO_PUBLIC_URL"`
}

type ImageConfig struct {
	UploadDir         string   `env:"UPLOAD_DIR, default=uploads"`
	MaxBytes          int64    `env:"IMAGE_MAX_BYTES, default=5242880"`
	AllowedExtensions []string `env:"IMAGE_ALLOWED_EXTENSIONS, default=jpg,jpeg,png,gif,webp"`
}

type NotifyConfig struct {
	// Sink is one of amqp, mongo or log. Empty picks amqp when AMQP_URL is
	// set and mongo otherwise.
	Sink     string        `env:"NOTIFY_SINK"`
	AMQPURL  string        `env:"AMQP_URL"`
	Queue    string        `env:"NOTIFY_QUEUE, default=storefront.notifications"`
	Workers  int           `env:"NOTIFY_WORKERS, default=4"`
	DedupTTL time.Duration `env:"NOTIFY_DEDUP_TTL, default=24h"`
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads an optional .env file and then the process environment. Values
// already present in the environment win over the file.
func Load(ctx context.Context, dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from l.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.JWTSecret) < 16 && !c.IsDevelopment() {
		return errors.New("config: JWT_SECRET must be at least 16 characters outside development")
	}
	if c.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}
	if c.Images.MaxBytes <= 0 {
		return errors.New("config: IMAGE_MAX_BYTES must be positive")
	}
	switch c.Notify.Sink {
	case "", "mongo", "log":
	case "amqp":
		if c.Notify.AMQPURL == "" {
			return errors.New("config: NOTIFY_SINK=amqp requires AMQP_URL")
		}
	default:
		return fmt.Errorf("config: unknown NOTIFY_SINK %q", c.Notify.Sink)
	}
	if c.Minio.Endpoint != "" && (c.Minio.AccessKey == "" || c.Minio.SecretKey == "") {
		return errors.New("config: MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required with MINIO_ENDPOINT")
	}
	return nil
}
