package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tourism_marketplace/model"
)

type FavoriteService struct {
	db *gorm.DB
}

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

func (s *FavoriteService) Add(ctx context.Context, userID, attractionID uint) (*model.Favorite, error) {
	db := s.db.WithContext(ctx)
	var attraction model.Attraction
	if err := db.First(&attraction, attractionID).Error; err != nil {
		return nil, dbError(err, "attraction")
	}

	var count int64
	if err := db.Model(&model.Favorite{}).
		Where("user_id = ? AND attraction_id = ?", userID, attractionID).
		Count(&count).Error; err != nil {
		return nil, dbError(err, "favorite")
	}
	if count > 0 {
		return nil, Conflict("attraction is already a favorite")
	}

	favorite := model.Favorite{UserID: userID, AttractionID: attractionID}
	if err := db.Create(&favorite).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("attraction is already a favorite")
		}
		return nil, dbError(err, "favorite")
	}
	favorite.Attraction = &attraction
	return &favorite, nil
}

// Remove hard-deletes so the pair can be added again.
func (s *FavoriteService) Remove(ctx context.Context, userID, attractionID uint) error {
	result := s.db.WithContext(ctx).Unscoped().
		Where("user_id = ? AND attraction_id = ?", userID, attractionID).
		Delete(&model.Favorite{})
	if result.Error != nil {
		return dbError(result.Error, "favorite")
	}
	if result.RowsAffected == 0 {
		return NotFound("favorite not found")
	}
	return nil
}

func (s *FavoriteService) ListByUser(ctx context.Context, userID uint) ([]model.Favorite, error) {
	var favorites []model.Favorite
	err := s.db.WithContext(ctx).
		Preload("Attraction").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&favorites).Error
	if err != nil {
		return nil, dbError(err, "favorites")
	}
	return favorites, nil
}
