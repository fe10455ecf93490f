package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tourism_marketplace/constants"
	"tourism_marketplace/gateway"
	"tourism_marketplace/helper"
	"tourism_marketplace/model"
	"tourism_marketplace/utils"
)

// PaymentGateway is the subset of gateway.Client the store depends on.
type PaymentGateway interface {
	RequestPayment(ctx context.Context, details gateway.PaymentDetails) (*gateway.PaymentRequestResult, error)
	ConsultTransaction(ctx context.Context, gatewayID string) (*gateway.StatusPayload, error)
}

// TransactionService keeps the local mirror of gateway transactions.
type TransactionService struct {
	db       *gorm.DB
	gateway  PaymentGateway
	sectors  *SectorService
	currency string
	Now      Clock
	Location *time.Location
}

func NewTransactionService(db *gorm.DB, gw PaymentGateway, sectors *SectorService, currency string, loc *time.Location) *TransactionService {
	if loc == nil {
		loc = time.UTC
	}
	return &TransactionService{
		db:       db,
		gateway:  gw,
		sectors:  sectors,
		currency: currency,
		Now:      time.Now,
		Location: loc,
	}
}

// CreatePending inserts a PENDING row for a gateway id that was just handed
// out. The id is stored verbatim.
func (s *TransactionService) CreatePending(ctx context.Context, input model.CreatePendingInput, userID *uint) (*model.Transaction, error) {
	gatewayID := strings.TrimSpace(input.GatewayTransactionID)
	if gatewayID == "" {
		return nil, BadRequest("gateway transaction id is required")
	}
	if input.Amount.IsNegative() {
		return nil, BadRequest("amount must be greater than or equal to 0")
	}

	internalCode := input.InternalCode
	if internalCode == "" {
		internalCode = helper.NewInternalCode()
	}
	currency := input.Currency
	if currency == "" {
		currency = s.currency
	}

	data, err := encodeData(model.TransactionData{Items: input.Items, Notes: input.Notes})
	if err != nil {
		return nil, err
	}

	tx := model.Transaction{
		GatewayTransactionID: gatewayID,
		InternalCode:         internalCode,
		Amount:               input.Amount,
		Currency:             currency,
		Status:               model.TransactionPending,
		UserID:               userID,
		AdditionalData:       data,
	}
	if err := s.db.WithContext(ctx).Create(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("transaction %s already exists", gatewayID)
		}
		return nil, dbError(err, "transaction")
	}

	logrus.WithFields(logrus.Fields{
		"transaction_id": gatewayID,
		"internal_code":  internalCode,
		"amount":         tx.Amount.String(),
	}).Info("pending transaction recorded")
	return &tx, nil
}

// InitiatePayment prices the requested items, checks capacity, asks the
// gateway for a payment and records it as PENDING.
func (s *TransactionService) InitiatePayment(ctx context.Context, principal *model.Principal, input model.PurchaseInput) (*model.PurchaseResult, error) {
	if len(input.Items) == 0 {
		return nil, BadRequest("at least one item is required")
	}

	items, total, err := s.priceItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	details := gateway.PaymentDetails{
		InternalCode: helper.NewInternalCode(),
		Amount:       total,
		Currency:     s.currency,
		Description:  input.Description,
	}
	if details.Description == "" {
		details.Description = fmt.Sprintf("%d ticket item(s)", len(items))
	}

	var userID *uint
	if principal != nil {
		userID = &principal.UserID
		details.BuyerEmail = principal.Email
	}

	res, err := s.gateway.RequestPayment(ctx, details)
	if err != nil {
		return nil, Unavailable(constants.GATEWAY_UNREACHABLE, err)
	}

	tx, err := s.CreatePending(ctx, model.CreatePendingInput{
		GatewayTransactionID: res.GatewayTransactionID,
		InternalCode:         details.InternalCode,
		Amount:               total,
		Currency:             s.currency,
		Items:                items,
		Notes:                input.Notes,
	}, userID)
	if err != nil {
		return nil, err
	}
	if input.Description != "" {
		if err := s.patchData(ctx, tx, func(d *model.TransactionData) { d.Description = input.Description }); err != nil {
			return nil, err
		}
	}

	return &model.PurchaseResult{Transaction: tx, RedirectURL: res.RedirectURL}, nil
}

// priceItems resolves every line item against its sector and returns the
// items with their unit price fixed, plus the total.
func (s *TransactionService) priceItems(ctx context.Context, requested []model.LineItem) ([]model.LineItem, decimal.Decimal, error) {
	today := utils.DateOf(s.Now(), s.Location)
	items := make([]model.LineItem, 0, len(requested))
	wanted := map[sectorDay]int{}
	total := decimal.Zero

	for _, item := range requested {
		if item.Quantity <= 0 {
			return nil, total, BadRequest("quantity must be greater than 0")
		}
		if item.ValidFor.IsZero() {
			return nil, total, BadRequest("validFor is required")
		}
		if item.ValidFor.Before(today) {
			return nil, total, BadRequest("validFor cannot be in the past")
		}

		var sector model.Sector
		if err := s.db.WithContext(ctx).First(&sector, item.SectorID).Error; err != nil {
			return nil, total, dbError(err, "sector")
		}
		if sector.AttractionID != item.AttractionID {
			return nil, total, BadRequest("sector %d does not belong to attraction %d", sector.ID, item.AttractionID)
		}
		if !sector.Active {
			return nil, total, BadRequest("sector %s is not active", sector.Name)
		}

		price := sector.Price
		item.Price = &price
		items = append(items, item)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		wanted[sectorDay{sector.ID, item.ValidFor.String()}] += item.Quantity
	}

	for key, quantity := range wanted {
		day, _ := utils.ParseDate(key.day)
		capacity, err := s.sectors.CheckCapacityAvailable(ctx, key.sectorID, day)
		if err != nil {
			return nil, total, err
		}
		if !capacity.Allows(quantity) {
			return nil, total, BadRequest("only %d tickets left for sector %d on %s", capacity.Remaining, key.sectorID, key.day)
		}
	}
	return items, total, nil
}

// FindByGatewayID matches the stored id exactly.
func (s *TransactionService) FindByGatewayID(ctx context.Context, gatewayID string) (*model.Transaction, error) {
	var tx model.Transaction
	err := s.db.WithContext(ctx).
		Where("gateway_transaction_id = ?", gatewayID).
		First(&tx).Error
	if err != nil {
		return nil, dbError(err, "transaction")
	}
	return &tx, nil
}

// Reconcile asks the gateway for the current state of gatewayID and
// overwrites the local row with it. A row is created when none exists yet.
func (s *TransactionService) Reconcile(ctx context.Context, gatewayID string) (*model.Transaction, error) {
	payload, err := s.gateway.ConsultTransaction(ctx, gatewayID)
	if err != nil {
		return nil, Unavailable(constants.GATEWAY_UNREACHABLE, err)
	}

	var tx model.Transaction
	err = s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		err := db.Where("gateway_transaction_id = ?", gatewayID).First(&tx).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			tx = model.Transaction{
				GatewayTransactionID: gatewayID,
				InternalCode:         helper.NewInternalCode(),
				Currency:             s.currency,
			}
		case err != nil:
			return dbError(err, "transaction")
		}

		previous := tx.Status
		s.applyPayload(&tx, payload)

		if err := db.Save(&tx).Error; err != nil {
			return dbError(err, "transaction")
		}

		logrus.WithFields(logrus.Fields{
			"transaction_id": gatewayID,
			"gateway_status": payload.Code,
			"previous":       previous,
			"status":         tx.Status,
		}).Info("transaction reconciled")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *TransactionService) applyPayload(tx *model.Transaction, payload *gateway.StatusPayload) {
	now := s.Now()
	tx.Status = payload.Status
	tx.LastCheckedAt = &now

	if payload.Amount != nil {
		tx.Amount = *payload.Amount
	}
	if payload.Currency != "" {
		tx.Currency = strings.ToUpper(payload.Currency)
	}
	if payload.AuthorizationCode != "" {
		tx.AuthorizationCode = utils.Ptr(payload.AuthorizationCode)
	}
	if payload.Card != nil {
		tx.CardBrand = utils.StringPtr(payload.Card.Brand)
		if digits := payload.Card.LastDigits; digits != "" {
			if len(digits) > 4 {
				digits = digits[len(digits)-4:]
			}
			tx.CardLast4 = &digits
		}
	}

	data := decodeData(tx.AdditionalData)
	data.Gateway = payload.Raw
	if encoded, err := encodeData(data); err == nil {
		tx.AdditionalData = encoded
	}
}

// ReconcilePending re-consults every PENDING transaction older than minAge
// and returns the ones that left PENDING.
func (s *TransactionService) ReconcilePending(ctx context.Context, minAge time.Duration) ([]model.Transaction, error) {
	var pending []model.Transaction
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at <= ?", model.TransactionPending, s.Now().Add(-minAge)).
		Order("created_at asc").
		Find(&pending).Error
	if err != nil {
		return nil, dbError(err, "transactions")
	}

	var settled []model.Transaction
	for _, p := range pending {
		tx, err := s.Reconcile(ctx, p.GatewayTransactionID)
		if err != nil {
			logrus.WithError(err).WithField("transaction_id", p.GatewayTransactionID).Warn("reconcile sweep failed")
			continue
		}
		if tx.Status.IsTerminal() {
			settled = append(settled, *tx)
		}
	}
	return settled, nil
}

func (s *TransactionService) List(ctx context.Context, filter model.FilterTransaction) (*model.ResponseCustom, error) {
	query := s.db.WithContext(ctx).Model(&model.Transaction{})
	if filter.Status != "" {
		query = query.Where("status = ?", strings.ToUpper(filter.Status))
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, dbError(err, "transactions")
	}

	var rows []model.Transaction
	query = utils.ApplyPagination(query.Order("created_at desc, id desc"), filter.Limit, filter.Page)
	if err := query.Find(&rows).Error; err != nil {
		return nil, dbError(err, "transactions")
	}

	return &model.ResponseCustom{Rows: rows, Limit: filter.Limit, Page: filter.Page, TotalCount: total}, nil
}

func (s *TransactionService) ListByUser(ctx context.Context, userID uint, filter model.FilterTransaction) (*model.ResponseCustom, error) {
	filter.UserID = userID
	return s.List(ctx, filter)
}

func (s *TransactionService) patchData(ctx context.Context, tx *model.Transaction, patch func(*model.TransactionData)) error {
	data := decodeData(tx.AdditionalData)
	patch(&data)
	encoded, err := encodeData(data)
	if err != nil {
		return err
	}
	tx.AdditionalData = encoded
	if err := s.db.WithContext(ctx).Model(tx).Update("additional_data", encoded).Error; err != nil {
		return dbError(err, "transaction")
	}
	return nil
}

func decodeData(raw datatypes.JSON) model.TransactionData {
	var data model.TransactionData
	if len(raw) == 0 {
		return data
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		logrus.WithError(err).Warn("unreadable transaction additional data")
	}
	return data
}

func encodeData(data model.TransactionData) (datatypes.JSON, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, Internal("encode transaction data", err)
	}
	return datatypes.JSON(raw), nil
}
