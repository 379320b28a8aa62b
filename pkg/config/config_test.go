package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Set test environment variables
	os.Setenv("SERVER_PORT", "8080")
	os.Setenv("DB_HOST", "localhost")
	os.Setenv("DB_PORT", "5432")
	os.Setenv("DB_USER", "testuser")
	os.Setenv("DB_PASSWORD", "testpass")
	os.Setenv("DB_NAME", "testdb")
	os.Setenv("REDIS_HOST", "localhost")
	os.Setenv("REDIS_PORT", "6379")
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("RABBITMQ_HOST", "rabbit")
	os.Setenv("S3_BUCKET_NAME", "listing-images")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	assert.NotNil(t, cfg)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "testuser", cfg.DBUser)
	assert.Equal(t, "testpass", cfg.DBPassword)
	assert.Equal(t, "testdb", cfg.DBName)
	assert.Equal(t, "localhost", cfg.RedisHost)
	assert.Equal(t, "6379", cfg.RedisPort)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "rabbit", cfg.RabbitMQHost)
	assert.Equal(t, "listing-images", cfg.S3BucketName)

	// Cleanup
	for _, key := range []string{
		"SERVER_PORT", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"REDIS_HOST", "REDIS_PORT", "JWT_SECRET", "RABBITMQ_HOST", "S3_BUCKET_NAME",
	} {
		os.Unsetenv(key)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	os.Unsetenv("SERVER_PORT")
	os.Unsetenv("DB_NAME")
	os.Unsetenv("JWT_TTL")
	os.Unsetenv("REALTIME_DEBOUNCE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "estatemarket", cfg.DBName)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.RealtimeDebounce)
	assert.Equal(t, 64, cfg.RealtimeBufferSize)
}

func TestLoadConfig_InvalidNumbersFallBack(t *testing.T) {
	os.Setenv("REDIS_DB", "not-a-number")
	os.Setenv("JWT_TTL", "forever")
	defer os.Unsetenv("REDIS_DB")
	defer os.Unsetenv("JWT_TTL")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
}
