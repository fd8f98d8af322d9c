package database

import (
	"fmt"
	"time"

	"github.com/mroshb/film_catalog/internal/config"
	"github.com/mroshb/film_catalog/internal/models"
	"github.com/mroshb/film_catalog/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := Open(cfg.GetDSN(), cfg.AppEnv == "development")
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	logger.Info("Database connected", "host", cfg.DBHost, "db", cfg.DBName)
	return db, nil
}

// Open opens a gorm handle without pool tuning. Tests use it directly.
func Open(dsn string, verbose bool) (*gorm.DB, error) {
	logLevel := gormlogger.Error
	if verbose {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		// Unique violations come back as gorm.ErrDuplicatedKey.
		TranslateError:         true,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Genre{},
		&models.Film{},
		&models.FilmLike{},
		&models.Friendship{},
		&models.Review{},
		&models.ReviewVote{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// SeedGenres inserts the default genres, leaving existing rows alone.
func SeedGenres(db *gorm.DB) error {
	genres := make([]models.Genre, len(models.DefaultGenres))
	copy(genres, models.DefaultGenres)

	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&genres)
	if result.Error != nil {
		return fmt.Errorf("failed to seed genres: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		logger.Info("Seeded genres", "count", result.RowsAffected)
	}
	return nil
}
