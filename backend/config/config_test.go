package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", "arnhub_test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "bcrypt", cfg.PasswordHasher)
	assert.Equal(t, 1<<30, cfg.MaxUploadBytes)
	assert.Equal(t, "file:arnhub_test.sqlite?_pragma=foreign_keys(1)", cfg.DSN())
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBDriver: "postgres", DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "arnhub"}
	assert.Equal(t, "host=db user=u password=p dbname=arnhub port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())

	cfg.DBDriver = "mysql"
	cfg.DBPort = "3306"
	assert.Equal(t, "u:p@tcp(db:3306)/arnhub?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DSN())

	cfg.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.DSN())
}

func TestValidate(t *testing.T) {
	valid := Config{DBDriver: "postgres", PasswordHasher: "argon2id", StorageBackend: "s3", MaxUploadBytes: 1}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.PasswordHasher = "md5"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.StorageBackend = "ftp"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.MaxUploadBytes = 0
	assert.Error(t, bad.Validate())
}
