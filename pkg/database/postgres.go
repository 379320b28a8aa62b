package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate-market/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func DSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
	)
}

func NewPostgresDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// AccountStatus returns a lookup of the mirrored account status and role used by
// the suspension middleware.
func AccountStatus(db *gorm.DB) func(ctx context.Context, userID string) (string, string, error) {
	return func(ctx context.Context, userID string) (string, string, error) {
		var row struct {
			Status string
			Role   string
		}
		err := db.WithContext(ctx).Table("users").Select("status", "role").Where("id = ?", userID).Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", nil
		}
		if err != nil {
			return "", "", err
		}
		return row.Status, row.Role, nil
	}
}
