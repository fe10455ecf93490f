package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tourism_marketplace/constants"
	"tourism_marketplace/model"
	"tourism_marketplace/utils"
)

// SectorService owns sectors, their price history and the capacity ledger.
type SectorService struct {
	db  *gorm.DB
	Now Clock
}

func NewSectorService(db *gorm.DB) *SectorService {
	return &SectorService{db: db, Now: time.Now}
}

// CheckCapacityAvailable answers how many tickets remain for the sector on
// the given day. The count is a plain read: nothing is reserved.
func (s *SectorService) CheckCapacityAvailable(ctx context.Context, sectorID uint, date utils.CustomDate) (model.Capacity, error) {
	var sector model.Sector
	if err := s.db.WithContext(ctx).First(&sector, sectorID).Error; err != nil {
		return model.Capacity{}, dbError(err, "sector")
	}
	day := utils.DateOf(date.Time, nil)

	if sector.MaxCapacity == nil {
		return model.Capacity{SectorID: sector.ID, Date: day.String(), Unbounded: true}, nil
	}

	active, err := countActiveTickets(s.db.WithContext(ctx), sector.ID, day)
	if err != nil {
		return model.Capacity{}, err
	}
	return capacityOf(sector, active, day), nil
}

func countActiveTickets(tx *gorm.DB, sectorID uint, day utils.CustomDate) (int64, error) {
	var count int64
	err := tx.Model(&model.Ticket{}).
		Where("sector_id = ? AND valid_for = ? AND status = ?", sectorID, day, constants.TICKET_ACTIVE).
		Count(&count).Error
	if err != nil {
		return 0, Internal("count active tickets", err)
	}
	return count, nil
}

func capacityOf(sector model.Sector, active int64, day utils.CustomDate) model.Capacity {
	remaining := *sector.MaxCapacity - int(active)
	if remaining < 0 {
		remaining = 0
	}
	return model.Capacity{SectorID: sector.ID, Date: day.String(), Remaining: remaining}
}

func (s *SectorService) Create(ctx context.Context, input model.CreateSectorInput) (*model.Sector, error) {
	if input.Price.IsNegative() {
		return nil, BadRequest("price must be greater than or equal to 0")
	}
	db := s.db.WithContext(ctx)

	var attraction model.Attraction
	if err := db.First(&attraction, input.AttractionID).Error; err != nil {
		return nil, dbError(err, "attraction")
	}

	sector := model.Sector{
		AttractionID: attraction.ID,
		Name:         input.Name,
		Description:  input.Description,
		Price:        input.Price,
		Active:       true,
		MaxCapacity:  input.MaxCapacity,
	}
	if input.Active != nil {
		sector.Active = *input.Active
	}
	active := sector.Active
	if err := db.Create(&sector).Error; err != nil {
		return nil, dbError(err, "sector")
	}
	// the column default would swallow an explicit false on insert
	if !active {
		if err := db.Model(&sector).Update("active", false).Error; err != nil {
			return nil, dbError(err, "sector")
		}
		sector.Active = false
	}
	return &sector, nil
}

// Update applies the changes and records a PriceHistory row when the price
// moves, both in one database transaction.
func (s *SectorService) Update(ctx context.Context, sectorID uint, input model.UpdateSectorInput, changedBy *uint) (*model.Sector, error) {
	if input.Price != nil && input.Price.IsNegative() {
		return nil, BadRequest("price must be greater than or equal to 0")
	}

	var sector model.Sector
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sector, sectorID).Error; err != nil {
			return dbError(err, "sector")
		}
		previous := sector.Price

		if input.Name != nil {
			sector.Name = *input.Name
		}
		if input.Description != nil {
			sector.Description = input.Description
		}
		if input.Active != nil {
			sector.Active = *input.Active
		}
		if input.MaxCapacity != nil {
			sector.MaxCapacity = input.MaxCapacity
		}
		if input.ClearMaxCapacity {
			sector.MaxCapacity = nil
		}
		if input.Price != nil {
			sector.Price = *input.Price
		}

		if err := tx.Save(&sector).Error; err != nil {
			return dbError(err, "sector")
		}

		if input.Price != nil && !previous.Equal(*input.Price) {
			history := model.PriceHistory{
				SectorID:      sector.ID,
				PreviousPrice: previous,
				NewPrice:      *input.Price,
				ChangedBy:     changedBy,
				ChangedAt:     s.Now(),
			}
			if err := tx.Create(&history).Error; err != nil {
				return dbError(err, "price history")
			}
			logrus.WithFields(logrus.Fields{
				"sector_id": sector.ID,
				"previous":  previous.String(),
				"new":       input.Price.String(),
			}).Info("sector price changed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sector, nil
}

func (s *SectorService) Get(ctx context.Context, sectorID uint) (*model.Sector, error) {
	var sector model.Sector
	if err := s.db.WithContext(ctx).Preload("Attraction").First(&sector, sectorID).Error; err != nil {
		return nil, dbError(err, "sector")
	}
	return &sector, nil
}

func (s *SectorService) ListByAttraction(ctx context.Context, attractionID uint, onlyActive bool) ([]model.Sector, error) {
	db := s.db.WithContext(ctx)
	var attraction model.Attraction
	if err := db.First(&attraction, attractionID).Error; err != nil {
		return nil, dbError(err, "attraction")
	}

	query := db.Where("attraction_id = ?", attractionID)
	if onlyActive {
		query = query.Where("active = ?", true)
	}
	var sectors []model.Sector
	if err := query.Order("price asc, id asc").Find(&sectors).Error; err != nil {
		return nil, dbError(err, "sectors")
	}
	return sectors, nil
}

func (s *SectorService) Delete(ctx context.Context, sectorID uint) error {
	result := s.db.WithContext(ctx).Delete(&model.Sector{}, sectorID)
	if result.Error != nil {
		return dbError(result.Error, "sector")
	}
	if result.RowsAffected == 0 {
		return NotFound("sector not found")
	}
	return nil
}

func (s *SectorService) PriceHistory(ctx context.Context, sectorID uint) ([]model.PriceHistory, error) {
	db := s.db.WithContext(ctx)
	var sector model.Sector
	if err := db.First(&sector, sectorID).Error; err != nil {
		return nil, dbError(err, "sector")
	}
	var history []model.PriceHistory
	if err := db.Where("sector_id = ?", sectorID).Order("changed_at desc, id desc").Find(&history).Error; err != nil {
		return nil, dbError(err, "price history")
	}
	return history, nil
}
