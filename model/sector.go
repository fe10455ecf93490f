package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sector struct {
	DTO
	AttractionID uint            `gorm:"not null;index" json:"attractionId"`
	Attraction   *Attraction     `gorm:"foreignKey:AttractionID" json:"attraction,omitempty"`
	Name         string          `gorm:"not null" json:"name"`
	Description  *string         `json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Active       bool            `gorm:"not null;default:true" json:"active"`
	MaxCapacity  *int            `json:"maxCapacity"` // nil means unbounded
}

type PriceHistory struct {
	DTO
	SectorID      uint            `gorm:"not null;index" json:"sectorId"`
	PreviousPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"previousPrice"`
	NewPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"newPrice"`
	ChangedBy     *uint           `json:"changedBy"`
	ChangedAt     time.Time       `gorm:"not null" json:"changedAt"`
}

type CreateSectorInput struct {
	AttractionID uint            `json:"attractionId" validate:"required,gt=0"`
	Name         string          `json:"name" validate:"required,min=1,max=100"`
	Description  *string         `json:"description" validate:"omitempty,max=500"`
	Price        decimal.Decimal `json:"price"`
	Active       *bool           `json:"active"`
	MaxCapacity  *int            `json:"maxCapacity" validate:"omitempty,gte=0"`
}

type UpdateSectorInput struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	Price       *decimal.Decimal `json:"price"`
	Active      *bool            `json:"active"`
	MaxCapacity *int             `json:"maxCapacity" validate:"omitempty,gte=0"`
	// ClearMaxCapacity makes the sector unbounded again.
	ClearMaxCapacity bool `json:"clearMaxCapacity"`
}

// Capacity is the answer of the capacity ledger for one (sector, date).
type Capacity struct {
	SectorID  uint   `json:"sectorId"`
	Date      string `json:"date"`
	Unbounded bool   `json:"unbounded"`
	Remaining int    `json:"remaining"`
}

// Allows reports whether quantity more tickets fit.
func (c Capacity) Allows(quantity int) bool {
	return c.Unbounded || c.Remaining >= quantity
}
