package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver    string `env:"DB_DRIVER" env-default:"sqlite"` // postgres, mysql, sqlite
	DBHost      string `env:"DB_HOST" env-default:"localhost"`
	DBPort      string `env:"DB_PORT" env-default:"5432"`
	DBUser      string `env:"DB_USER" env-default:"postgres"`
	DBPassword  string `env:"DB_PASSWORD" env-default:"postgres"`
	DBName      string `env:"DB_NAME" env-default:"arnhub"`
	DatabaseURL string `env:"DATABASE_URL"`

	JWTSecret  string        `env:"JWT_SECRET" env-default:"secret"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" env-default:"72h"`
	ServerPort string        `env:"SERVER_PORT" env-default:"8080"`

	PasswordHasher string `env:"PASSWORD_HASHER" env-default:"bcrypt"` // bcrypt, argon2id
	BcryptCost     int    `env:"BCRYPT_COST" env-default:"10"`

	StorageBackend string `env:"STORAGE_BACKEND" env-default:"local"` // local, s3
	UploadDir      string `env:"UPLOAD_DIR" env-default:"static/lesson_videos"`
	MaxUploadBytes int    `env:"MAX_UPLOAD_BYTES" env-default:"1073741824"`
	S3VideoBucket  string `env:"S3_VIDEO_BUCKET" env-default:"arnhub-videos"`
	AWSRegion      string `env:"AWS_REGION" env-default:"us-east-1"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" env-default:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailSender   string `env:"MAIL_SENDER" env-default:"no-reply@arnhub.local"`

	HeadAdminUsername string `env:"HEAD_ADMIN_USERNAME"`
	HeadAdminEmail    string `env:"HEAD_ADMIN_EMAIL"`
	HeadAdminPassword string `env:"HEAD_ADMIN_PASSWORD"`

	LogFormat string `env:"LOG_FORMAT" env-default:"text"` // text, json
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects values the rest of the application cannot work with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.PasswordHasher {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("unsupported PASSWORD_HASHER %q", c.PasswordHasher)
	}

	switch c.StorageBackend {
	case "local", "s3":
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	return nil
}

// DSN builds the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	switch c.DBDriver {
	case "postgres":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	default:
		return fmt.Sprintf("file:%s.sqlite?_pragma=foreign_keys(1)", c.DBName)
	}
}
