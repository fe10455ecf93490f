package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tourism_marketplace/config"
	"tourism_marketplace/constants"
	"tourism_marketplace/model"
)

func SeedData(db *gorm.DB, cfg config.Config) error {
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		admin := model.User{Email: cfg.AdminEmail, Password: string(hash), FullName: "Administrator", Role: constants.ROLE_ADMIN, Active: true}
		if err := db.Where(model.User{Email: admin.Email}).FirstOrCreate(&admin).Error; err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	categories := []model.Category{
		{Name: "Nature"},
		{Name: "Museum"},
		{Name: "Adventure"},
		{Name: "Historic site"},
	}
	for _, category := range categories {
		if err := db.Where(model.Category{Name: category.Name}).FirstOrCreate(&category).Error; err != nil {
			logrus.WithError(err).WithField("category", category.Name).Warn("failed to seed category")
		}
	}
	return nil
}
