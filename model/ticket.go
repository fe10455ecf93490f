package model

import (
	"time"

	"github.com/shopspring/decimal"
	"tourism_marketplace/utils"
)

type Ticket struct {
	DTO
	Code          string           `gorm:"size:20;uniqueIndex;not null" json:"code"`
	AttractionID  uint             `gorm:"not null;index" json:"attractionId"`
	SectorID      uint             `gorm:"not null;index:idx_ticket_sector_day" json:"sectorId"`
	TransactionID *uint            `gorm:"index" json:"transactionId"`
	Price         decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"price"`
	ValidFor      utils.CustomDate `gorm:"type:date;not null;index:idx_ticket_sector_day" json:"validFor"`
	Status        string           `gorm:"not null;default:'ACTIVE';index" json:"status"`
	BuyerID       *uint            `gorm:"index" json:"buyerId"`
	PurchasedAt   time.Time        `gorm:"not null" json:"purchasedAt"`
	UsedAt        *time.Time       `json:"usedAt,omitempty"`
	Notes         *string          `gorm:"type:text" json:"notes"`

	Attraction *Attraction `gorm:"foreignKey:AttractionID" json:"attraction,omitempty"`
	Sector     *Sector     `gorm:"foreignKey:SectorID" json:"sector,omitempty"`
	Buyer      *User       `gorm:"foreignKey:BuyerID;constraint:OnDelete:SET NULL" json:"-"`
}

// LineItem is one purchased (sector, quantity) entry.
type LineItem struct {
	AttractionID uint             `json:"attractionId" validate:"required,gt=0"`
	SectorID     uint             `json:"sectorId" validate:"required,gt=0"`
	Quantity     int              `json:"quantity" validate:"required,gt=0,lte=50"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	ValidFor     utils.CustomDate `json:"validFor"`
}

type IssueTicketsInput struct {
	TransactionID string     `json:"transactionId" validate:"required"`
	BuyerID       *uint      `json:"buyerId"`
	Items         []LineItem `json:"items" validate:"required,min=1,dive"`
	Notes         string     `json:"notes" validate:"omitempty,max=500"`
}

type VerifyTicketInput struct {
	Payload string `json:"payload" validate:"required"`
}

// TicketPayload is the JSON document embedded in the QR code.
type TicketPayload struct {
	Code      string `json:"code"`
	ID        uint   `json:"id"`
	Timestamp int64  `json:"timestamp"`
}

type VerificationResult struct {
	Valid   bool    `json:"valid"`
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Ticket  *Ticket `json:"ticket"`
}

type FilterTicketInput struct {
	Pagination
	SectorID     uint   `query:"sectorId"`
	AttractionID uint   `query:"attractionId"`
	Status       string `query:"status" validate:"omitempty,oneof=ACTIVE USED CANCELLED EXPIRED"`
	ValidFor     string `query:"validFor" validate:"omitempty,datetime=2006-01-02"`
}
