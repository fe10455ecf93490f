package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tourism_marketplace/config"
	"tourism_marketplace/model"
)

// Models lists every table the service owns, in dependency order.
var Models = []any{
	&model.Department{},
	&model.City{},
	&model.Category{},
	&model.Attraction{},
	&model.Sector{},
	&model.PriceHistory{},
	&model.User{},
	&model.Favorite{},
	&model.Transaction{},
	&model.Ticket{},
}

func ConnectDB(cfg config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	logrus.Info("connection opened to database")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	logrus.Info("database migrated")

	if err := SeedData(db, cfg); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
