package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tourism_marketplace/constants"
	"tourism_marketplace/helper"
	"tourism_marketplace/model"
	"tourism_marketplace/utils"
)

// TicketService issues tickets for authorized transactions and runs the
// gate-side lifecycle (use, cancel, verify, expire).
type TicketService struct {
	db           *gorm.DB
	transactions *TransactionService
	signer       *PayloadSigner
	notifier     Notifier
	mailer       TicketMailer
	Now          Clock
	Location     *time.Location
}

func NewTicketService(db *gorm.DB, transactions *TransactionService, signer *PayloadSigner, loc *time.Location) *TicketService {
	if loc == nil {
		loc = time.UTC
	}
	return &TicketService{
		db:           db,
		transactions: transactions,
		signer:       signer,
		Now:          time.Now,
		Location:     loc,
	}
}

func (s *TicketService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *TicketService) SetMailer(m TicketMailer) {
	s.mailer = m
}

func (s *TicketService) today() utils.CustomDate {
	return utils.DateOf(s.Now(), s.Location)
}

// IssueFromTransaction creates the tickets paid by an AUTHORIZED
// transaction. Running it twice for the same transaction returns the tickets
// of the first run.
func (s *TicketService) IssueFromTransaction(ctx context.Context, input model.IssueTicketsInput) ([]model.Ticket, error) {
	if len(input.Items) == 0 {
		return nil, BadRequest("at least one item is required")
	}

	var (
		tickets []model.Ticket
		touched = map[sectorDay]struct{}{}
		reused  bool
		trx     model.Transaction
	)

	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("gateway_transaction_id = ?", input.TransactionID).
			First(&trx).Error
		if err != nil {
			return dbError(err, "transaction")
		}
		if trx.Status != model.TransactionAuthorized {
			return BadRequest(constants.TRANSACTION_NOT_AUTHORIZED)
		}

		if err := db.Where("transaction_id = ?", trx.ID).Order("id asc").Find(&tickets).Error; err != nil {
			return dbError(err, "tickets")
		}
		if len(tickets) > 0 {
			reused = true
			return nil
		}

		buyerID := input.BuyerID
		if buyerID == nil {
			buyerID = trx.UserID
		}
		notes := "Transaction " + trx.GatewayTransactionID
		if input.Notes != "" {
			notes += " - " + input.Notes
		}

		purchasedAt := s.Now()
		codes := map[string]struct{}{}

		for _, item := range input.Items {
			if item.Quantity <= 0 {
				return BadRequest("quantity must be greater than 0")
			}
			if item.ValidFor.IsZero() {
				return BadRequest("validFor is required")
			}
			day := utils.DateOf(item.ValidFor.Time, nil)

			var attraction model.Attraction
			if err := db.First(&attraction, item.AttractionID).Error; err != nil {
				return dbError(err, "attraction")
			}
			var sector model.Sector
			if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sector, item.SectorID).Error; err != nil {
				return dbError(err, "sector")
			}
			if sector.AttractionID != attraction.ID {
				return BadRequest("sector %d does not belong to attraction %d", sector.ID, attraction.ID)
			}
			if !sector.Active {
				return BadRequest("sector %s is not active", sector.Name)
			}

			// rows created earlier in this transaction are already counted
			key := sectorDay{sector.ID, day.String()}
			if sector.MaxCapacity != nil {
				active, err := countActiveTickets(db, sector.ID, day)
				if err != nil {
					return err
				}
				capacity := capacityOf(sector, active, day)
				if !capacity.Allows(item.Quantity) {
					return Conflict("only %d tickets left for sector %s on %s", capacity.Remaining, sector.Name, key.day)
				}
			}
			touched[key] = struct{}{}

			price := sector.Price
			if item.Price != nil {
				if item.Price.IsNegative() {
					return BadRequest("price must be greater than or equal to 0")
				}
				price = *item.Price
			}

			for i := 0; i < item.Quantity; i++ {
				ticket := model.Ticket{
					Code:          uniqueCode(codes),
					AttractionID:  attraction.ID,
					SectorID:      sector.ID,
					TransactionID: &trx.ID,
					Price:         price,
					ValidFor:      day,
					Status:        constants.TICKET_ACTIVE,
					BuyerID:       buyerID,
					PurchasedAt:   purchasedAt,
					Notes:         utils.Ptr(notes),
				}
				if err := db.Create(&ticket).Error; err != nil {
					return dbError(err, "ticket")
				}
				tickets = append(tickets, ticket)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if reused {
		logrus.WithField("transaction_id", input.TransactionID).Info("tickets already issued, returning existing")
		return tickets, nil
	}

	logrus.WithFields(logrus.Fields{
		"transaction_id": input.TransactionID,
		"tickets":        len(tickets),
	}).Info("tickets issued")

	for key := range touched {
		s.notify(ctx, key.sectorID, key.day)
	}
	s.sendConfirmation(trx, tickets)
	return tickets, nil
}

func uniqueCode(seen map[string]struct{}) string {
	for {
		code := helper.NewTicketCode()
		if _, ok := seen[code]; !ok {
			seen[code] = struct{}{}
			return code
		}
	}
}

// IssueForTransaction issues the line items stored with the transaction
// when it was initiated.
func (s *TicketService) IssueForTransaction(ctx context.Context, gatewayID string) ([]model.Ticket, error) {
	trx, err := s.transactions.FindByGatewayID(ctx, gatewayID)
	if err != nil {
		return nil, err
	}
	data := decodeData(trx.AdditionalData)
	if len(data.Items) == 0 {
		return nil, BadRequest("transaction %s has no line items", gatewayID)
	}
	return s.IssueFromTransaction(ctx, model.IssueTicketsInput{
		TransactionID: trx.GatewayTransactionID,
		BuyerID:       trx.UserID,
		Items:         data.Items,
		Notes:         data.Notes,
	})
}

func (s *TicketService) notify(ctx context.Context, sectorID uint, day string) {
	if s.notifier != nil {
		s.notifier.SectorChanged(ctx, sectorID, day)
	}
}

func (s *TicketService) sendConfirmation(trx model.Transaction, tickets []model.Ticket) {
	if s.mailer == nil || len(tickets) == 0 || tickets[0].BuyerID == nil {
		return
	}

	var buyer model.User
	if err := s.db.First(&buyer, *tickets[0].BuyerID).Error; err != nil {
		logrus.WithError(err).Warn("ticket mail skipped, buyer not found")
		return
	}
	var attraction model.Attraction
	s.db.First(&attraction, tickets[0].AttractionID)

	sectorNames := map[uint]string{}
	data := utils.TicketMailData{
		To:             buyer.Email,
		BuyerName:      buyer.FullName,
		AttractionName: attraction.Name,
		TransactionID:  trx.GatewayTransactionID,
	}
	total := decimal.Zero
	for _, t := range tickets {
		name, ok := sectorNames[t.SectorID]
		if !ok {
			var sector model.Sector
			s.db.Select("name").First(&sector, t.SectorID)
			name = sector.Name
			sectorNames[t.SectorID] = name
		}
		payload, err := s.signer.Encrypt(t)
		if err != nil {
			logrus.WithError(err).WithField("ticket_id", t.ID).Warn("ticket payload not generated")
			continue
		}
		total = total.Add(t.Price)
		data.Tickets = append(data.Tickets, utils.TicketMailItem{
			Code:     t.Code,
			Sector:   name,
			ValidFor: t.ValidFor.String(),
			Price:    t.Price.StringFixed(2),
			Payload:  payload,
		})
	}
	data.Total = total.StringFixed(2) + " " + trx.Currency

	go func() {
		if err := s.mailer.SendTickets(data); err != nil {
			logrus.WithError(err).WithField("transaction_id", trx.GatewayTransactionID).Error("send ticket mail")
		}
	}()
}

// Use marks an ACTIVE ticket as USED, only on its valid day.
func (s *TicketService) Use(ctx context.Context, id uint) (*model.Ticket, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status != constants.TICKET_ACTIVE {
		return nil, BadRequest(constants.TICKET_NOT_ACTIVE_USE)
	}
	if !ticket.ValidFor.SameDay(s.today()) {
		return nil, BadRequest("ticket is only valid for %s", ticket.ValidFor.String())
	}

	now := s.Now()
	result := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("id = ? AND status = ?", id, constants.TICKET_ACTIVE).
		Updates(map[string]any{"status": constants.TICKET_USED, "used_at": now})
	if result.Error != nil {
		return nil, dbError(result.Error, "ticket")
	}
	if result.RowsAffected == 0 {
		return nil, BadRequest(constants.TICKET_NOT_ACTIVE_USE)
	}

	ticket.Status = constants.TICKET_USED
	ticket.UsedAt = &now
	logrus.WithField("ticket_id", id).Info("ticket used")
	s.notify(ctx, ticket.SectorID, ticket.ValidFor.String())
	return ticket, nil
}

func (s *TicketService) Cancel(ctx context.Context, id uint) (*model.Ticket, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status != constants.TICKET_ACTIVE {
		return nil, BadRequest(constants.TICKET_NOT_ACTIVE_CANCEL)
	}

	result := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("id = ? AND status = ?", id, constants.TICKET_ACTIVE).
		Update("status", constants.TICKET_CANCELLED)
	if result.Error != nil {
		return nil, dbError(result.Error, "ticket")
	}
	if result.RowsAffected == 0 {
		return nil, BadRequest(constants.TICKET_NOT_ACTIVE_CANCEL)
	}

	ticket.Status = constants.TICKET_CANCELLED
	logrus.WithField("ticket_id", id).Info("ticket cancelled")
	s.notify(ctx, ticket.SectorID, ticket.ValidFor.String())
	return ticket, nil
}

// Delete removes the ticket row for good.
func (s *TicketService) Delete(ctx context.Context, id uint) error {
	var ticket model.Ticket
	if err := s.db.WithContext(ctx).First(&ticket, id).Error; err != nil {
		return dbError(err, "ticket")
	}
	if err := s.db.WithContext(ctx).Unscoped().Delete(&ticket).Error; err != nil {
		return dbError(err, "ticket")
	}
	logrus.WithField("ticket_id", id).Warn("ticket deleted")
	s.notify(ctx, ticket.SectorID, ticket.ValidFor.String())
	return nil
}

func (s *TicketService) Get(ctx context.Context, id uint) (*model.Ticket, error) {
	var ticket model.Ticket
	err := s.db.WithContext(ctx).
		Preload("Attraction").
		Preload("Sector").
		First(&ticket, id).Error
	if err != nil {
		return nil, dbError(err, "ticket")
	}
	return &ticket, nil
}

func (s *TicketService) List(ctx context.Context, filter model.FilterTicketInput) (*model.ResponseCustom, error) {
	return s.list(ctx, filter, nil)
}

func (s *TicketService) ListByBuyer(ctx context.Context, buyerID uint, filter model.FilterTicketInput) (*model.ResponseCustom, error) {
	return s.list(ctx, filter, &buyerID)
}

func (s *TicketService) list(ctx context.Context, filter model.FilterTicketInput, buyerID *uint) (*model.ResponseCustom, error) {
	query := s.db.WithContext(ctx).Model(&model.Ticket{})
	if buyerID != nil {
		query = query.Where("buyer_id = ?", *buyerID)
	}
	if filter.SectorID != 0 {
		query = query.Where("sector_id = ?", filter.SectorID)
	}
	if filter.AttractionID != 0 {
		query = query.Where("attraction_id = ?", filter.AttractionID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", strings.ToUpper(filter.Status))
	}
	if filter.ValidFor != "" {
		day, err := utils.ParseDate(filter.ValidFor)
		if err != nil {
			return nil, BadRequest(err.Error())
		}
		query = query.Where("valid_for = ?", day)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, dbError(err, "tickets")
	}

	var rows []model.Ticket
	query = utils.ApplyPagination(query.Preload("Attraction").Preload("Sector").Order("purchased_at desc, id desc"), filter.Limit, filter.Page)
	if err := query.Find(&rows).Error; err != nil {
		return nil, dbError(err, "tickets")
	}
	return &model.ResponseCustom{Rows: rows, Limit: filter.Limit, Page: filter.Page, TotalCount: total}, nil
}

// EncryptPayload returns the signed QR string of the ticket.
func (s *TicketService) EncryptPayload(ctx context.Context, id uint) (string, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.signer.Encrypt(*ticket)
}

// VerifyEncryptedPayload checks a scanned QR string without changing the
// ticket.
func (s *TicketService) VerifyEncryptedPayload(ctx context.Context, payload string) (*model.VerificationResult, error) {
	decoded, err := s.signer.Decode(strings.TrimSpace(payload))
	if err != nil {
		return nil, err
	}

	ticket, err := s.Get(ctx, decoded.ID)
	if err != nil {
		return nil, err
	}
	if ticket.Code != decoded.Code {
		return nil, BadRequest("ticket code does not match")
	}

	result := &model.VerificationResult{Status: ticket.Status, Ticket: ticket}
	switch {
	case ticket.Status != constants.TICKET_ACTIVE:
		result.Message = fmt.Sprintf("ticket is %s", strings.ToLower(ticket.Status))
	case !ticket.ValidFor.SameDay(s.today()):
		result.Message = fmt.Sprintf("ticket is only valid for %s", ticket.ValidFor.String())
	default:
		result.Valid = true
		result.Message = "ticket is valid"
	}
	return result, nil
}

// ExpireOverdue moves ACTIVE tickets whose day has passed to EXPIRED.
func (s *TicketService) ExpireOverdue(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("status = ? AND valid_for < ?", constants.TICKET_ACTIVE, s.today()).
		Update("status", constants.TICKET_EXPIRED)
	if result.Error != nil {
		return 0, dbError(result.Error, "tickets")
	}
	if result.RowsAffected > 0 {
		logrus.WithField("expired", result.RowsAffected).Info("overdue tickets expired")
	}
	return result.RowsAffected, nil
}
