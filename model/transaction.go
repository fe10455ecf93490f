package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type TransactionStatus string

const (
	TransactionPending           TransactionStatus = "PENDING"
	TransactionAuthorized        TransactionStatus = "AUTHORIZED"
	TransactionRejected          TransactionStatus = "REJECTED"
	TransactionFraud             TransactionStatus = "FRAUD"
	TransactionTechnicalError    TransactionStatus = "TECHNICAL_ERROR"
	TransactionInsufficientFunds TransactionStatus = "INSUFFICIENT_FUNDS"
	TransactionRejectedByBank    TransactionStatus = "REJECTED_BY_BANK"
	TransactionHonorIssue        TransactionStatus = "HONOR_ISSUE"
	TransactionRetained          TransactionStatus = "RETAINED"
)

// IsTerminal is true once the gateway has settled the payment either way.
func (s TransactionStatus) IsTerminal() bool {
	return s != TransactionPending
}

type Transaction struct {
	DTO
	GatewayTransactionID string            `gorm:"uniqueIndex;not null" json:"gatewayTransactionId"`
	InternalCode         string            `gorm:"uniqueIndex;size:64;not null" json:"internalCode"`
	Amount               decimal.Decimal   `gorm:"type:decimal(14,2);not null" json:"amount"`
	Currency             string            `gorm:"size:3;not null" json:"currency"`
	Status               TransactionStatus `gorm:"not null;default:'PENDING';index" json:"status"`
	CardBrand            *string           `json:"cardBrand"`
	CardLast4            *string           `gorm:"size:4" json:"cardLast4"`
	AuthorizationCode    *string           `json:"authorizationCode"`
	UserID               *uint             `gorm:"index" json:"userId"`
	User                 *User             `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	AdditionalData       datatypes.JSON    `json:"additionalData"`
	LastCheckedAt        *time.Time        `json:"lastCheckedAt"`
	Tickets              []Ticket          `gorm:"foreignKey:TransactionID" json:"tickets,omitempty"`
}

// TransactionData is what the server stores in AdditionalData.
type TransactionData struct {
	Items       []LineItem     `json:"items,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	Description string         `json:"description,omitempty"`
	Gateway     map[string]any `json:"gateway,omitempty"`
}

type CreatePendingInput struct {
	GatewayTransactionID string          `json:"gatewayTransactionId" validate:"required,max=255"`
	InternalCode         string          `json:"internalCode" validate:"omitempty,max=64"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency" validate:"omitempty,len=3"`
	Items                []LineItem      `json:"items" validate:"omitempty,dive"`
	Notes                string          `json:"notes" validate:"omitempty,max=500"`
}

type PurchaseInput struct {
	Items       []LineItem `json:"items" validate:"required,min=1,dive"`
	Description string     `json:"description" validate:"omitempty,max=255"`
	Notes       string     `json:"notes" validate:"omitempty,max=500"`
}

type PurchaseResult struct {
	Transaction *Transaction `json:"transaction"`
	RedirectURL string       `json:"redirectUrl"`
}

type FilterTransaction struct {
	Pagination
	Status string `query:"status"`
	UserID uint   `query:"userId"`
}
