package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/solohsu29/gondola-manager/internal/appcontext"
	"github.com/solohsu29/gondola-manager/internal/entity"
	"github.com/solohsu29/gondola-manager/internal/services"
	"github.com/solohsu29/gondola-manager/internal/storage"
	"github.com/solohsu29/gondola-manager/internal/upload"
)

func InitContext() (*appcontext.Context, error) {
	if err := godotenv.Load(); err != nil {
		zap.L().Warn("No .env file found, using environment variables")
	}

	logger, err := InitLogger()
	if err != nil {
		return nil, err
	}

	db, err := InitDB()
	if err != nil {
		return nil, err
	}

	uploadsDir := os.Getenv("UPLOADS_DIR")
	if uploadsDir == "" {
		uploadsDir = "./public/uploads"
	}

	sweepInterval := 24 * time.Hour
	if v := os.Getenv("EXPIRY_SWEEP_INTERVAL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid EXPIRY_SWEEP_INTERVAL: %w", err)
		}
		sweepInterval = parsed
	}

	ctx := &appcontext.Context{
		DB:     db,
		Logger: logger,

		Uploads:  upload.NewEngine(db, logger),
		Resolver: storage.NewResolver(uploadsDir),
		Mailer:   services.NewMailService(os.Getenv("SENDGRID_API_KEY"), os.Getenv("MAIL_FROM"), os.Getenv("BASE_URL")),

		BaseURL:       os.Getenv("BASE_URL"),
		SweepInterval: sweepInterval,
	}

	return ctx, nil
}

func InitDB() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates and upgrades the schema, including rows written under the
// old flat-location / two-tier-status shape.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.User{},
		&entity.Project{},
		&entity.Gondola{},
		&entity.Document{},
		&entity.Photo{},
		&entity.DeliveryOrder{},
		&entity.CertificateExpiry{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func InitLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
