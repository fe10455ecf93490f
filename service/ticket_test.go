package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourism_marketplace/constants"
	"tourism_marketplace/model"
	"tourism_marketplace/utils"
)

func issueInput(t *testing.T, f catalogFixture, gatewayID string, quantity int, day string) model.IssueTicketsInput {
	return model.IssueTicketsInput{
		TransactionID: gatewayID,
		Items: []model.LineItem{{
			AttractionID: f.attraction.ID,
			SectorID:     f.sector.ID,
			Quantity:     quantity,
			ValidFor:     mustDate(t, day),
		}},
	}
}

func countTickets(t *testing.T, s services) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.tickets.db.Model(&model.Ticket{}).Count(&n).Error)
	return n
}

func TestIssueRequiresAuthorizedTransaction(t *testing.T) {
	statuses := []model.TransactionStatus{
		model.TransactionPending,
		model.TransactionRejected,
		model.TransactionFraud,
		model.TransactionInsufficientFunds,
		model.TransactionRetained,
	}
	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			db := newTestDB(t)
			f := seedCatalog(t, db, utils.Ptr(5))
			s := newServices(db, "2025-03-10")
			seedTransaction(t, db, "GW-X", status)

			_, err := s.tickets.IssueFromTransaction(context.Background(), issueInput(t, f, "GW-X", 2, "2025-03-10"))

			require.Error(t, err)
			assert.Equal(t, KindBadRequest, KindOf(err))
			assert.Equal(t, constants.TRANSACTION_NOT_AUTHORIZED, err.Error())
			assert.Equal(t, int64(0), countTickets(t, s))
		})
	}
}

func TestIssueUnknownTransaction(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, nil)
	s := newServices(db, "2025-03-10")

	_, err := s.tickets.IssueFromTransaction(context.Background(), issueInput(t, f, "missing", 1, "2025-03-10"))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestPurchaseScenarioConsumesCapacity(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, utils.Ptr(5))
	s := newServices(db, "2025-03-10")
	ctx := context.Background()
	trx := seedTransaction(t, db, "GW-OK", model.TransactionAuthorized)

	tickets, err := s.tickets.IssueFromTransaction(ctx, issueInput(t, f, "GW-OK", 2, "2025-03-10"))
	require.NoError(t, err)
	require.Len(t, tickets, 2)

	for _, ticket := range tickets {
		assert.Len(t, ticket.Code, constants.TICKET_CODE_LENGTH)
		assert.Equal(t, strings.ToUpper(ticket.Code), ticket.Code)
		assert.Equal(t, constants.TICKET_ACTIVE, ticket.Status)
		assert.Equal(t, "2025-03-10", ticket.ValidFor.String())
		assert.True(t, ticket.Price.Equal(decimal.NewFromInt(20)))
		require.NotNil(t, ticket.TransactionID)
		assert.Equal(t, trx.ID, *ticket.TransactionID)
		require.NotNil(t, ticket.Notes)
		assert.Contains(t, *ticket.Notes, "GW-OK")
	}
	assert.NotEqual(t, tickets[0].Code, tickets[1].Code)

	capacity, err := s.sectors.CheckCapacityAvailable(ctx, f.sector.ID, mustDate(t, "2025-03-10"))
	require.NoError(t, err)
	assert.Equal(t, 3, capacity.Remaining)
	assert.Contains(t, s.notifier.calls, fmt.Sprintf("%d@2025-03-10", f.sector.ID))
}

func TestIssueTwiceReturnsTheSameTickets(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, utils.Ptr(5))
	s := newServices(db, "2025-03-10")
	ctx := context.Background()
	seedTransaction(t, db, "GW-OK", model.TransactionAuthorized)

	first, err := s.tickets.IssueFromTransaction(ctx, issueInput(t, f, "GW-OK", 2, "2025-03-10"))
	require.NoError(t, err)
	second, err := s.tickets.IssueFromTransaction(ctx, issueInput(t, f, "GW-OK", 2, "2025-03-10"))
	require.NoError(t, err)

	require.Len(t, second, 2)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[1].ID, second[1].ID)
	assert.Equal(t, int64(2), countTickets(t, s))
}

func TestIssueOverCapacityConflicts(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, utils.Ptr(3))
	s := newServices(db, "2025-03-10")
	seedTransaction(t, db, "GW-OK", model.TransactionAuthorized)
	seedTicket(t, db, f, "2025-03-10", constants.TICKET_ACTIVE, "DDDDDDDDD1")

	input := issueInput(t, f, "GW-OK", 2, "2025-03-10")
	input.Items = append(input.Items, input.Items[0])

	_, err := s.tickets.IssueFromTransaction(context.Background(), input)

	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, int64(1), countTickets(t, s), "nothing from the failed issuance is kept")
}

func TestIssueValidatesLineItems(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, nil)
	s := newServices(db, "2025-03-10")
	ctx := context.Background()
	seedTransaction(t, db, "GW-OK", model.TransactionAuthorized)

	other := model.Attraction{Name: "Other", Slug: "other", Active: true, CityID: f.city.ID, CategoryID: f.category.ID}
	require.NoError(t, db.Create(&other).Error)

	wrongAttraction := issueInput(t, f, "GW-OK", 1, "2025-03-10")
	wrongAttraction.Items[0].AttractionID = other.ID
	_, err := s.tickets.IssueFromTransaction(ctx, wrongAttraction)
	assert.Equal(t, KindBadRequest, KindOf(err))

	missingSector := issueInput(t, f, "GW-OK", 1, "2025-03-10")
	missingSector.Items[0].SectorID = 999
	_, err = s.tickets.IssueFromTransaction(ctx, missingSector)
	assert.Equal(t, KindNotFound, KindOf(err))

	require.NoError(t, db.Model(&f.sector).Update("active", false).Error)
	_, err = s.tickets.IssueFromTransaction(ctx, issueInput(t, f, "GW-OK", 1, "2025-03-10"))
	assert.Equal(t, KindBadRequest, KindOf(err))

	assert.Equal(t, int64(0), countTickets(t, s))
}

func TestIssueUsesPriceOverride(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, nil)
	s := newServices(db, "2025-03-10")
	seedTransaction(t, db, "GW-OK", model.TransactionAuthorized)

	input := issueInput(t, f, "GW-OK", 1, "2025-03-10")
	input.Items[0].Price = utils.Ptr(decimal.RequireFromString("12.50"))
	tickets, err := s.tickets.IssueFromTransaction(context.Background(), input)

	require.NoError(t, err)
	assert.True(t, tickets[0].Price.Equal(decimal.RequireFromString("12.5")))
}

func TestIssueForTransactionReadsStoredItemsAndMails(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, utils.Ptr(5))
	s := newServices(db, "2025-03-10")
	ctx := context.Background()
	mails := make(chanMailer, 1)
	s.tickets.SetMailer(mails)

	buyer := model.User{Email: "buyer@example.com", Password: "x", FullName: "Ana", Role: constants.ROLE_CUSTOMER, Active: true}
	require.NoError(t, db.Create(&buyer).Error)

	s.gateway.nextID = "GW-FLOW"
	_, err := s.transactions.InitiatePayment(ctx, &model.Principal{UserID: buyer.ID, Email: buyer.Email}, model.PurchaseInput{
		Items: []model.LineItem{{AttractionID: f.attraction.ID, SectorID: f.sector.ID, Quantity: 2, ValidFor: mustDate(t, "2025-03-11")}},
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&model.Transaction{}).Where("gateway_transaction_id = ?", "GW-FLOW").
		Update("status", model.TransactionAuthorized).Error)

	tickets, err := s.tickets.IssueForTransaction(ctx, "GW-FLOW")
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	require.NotNil(t, tickets[0].BuyerID)
	assert.Equal(t, buyer.ID, *tickets[0].BuyerID)

	select {
	case mail := <-mails:
		assert.Equal(t, "buyer@example.com", mail.To)
		assert.Len(t, mail.Tickets, 2)
		assert.Equal(t, "40.00 PYG", mail.Total)
		assert.Equal(t, "Adult", mail.Tickets[0].Sector)
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation mail was not sent")
	}
}

func TestUseOnlyOnValidDay(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, nil)
	s := newServices(db, "2025-03-10")
	ctx := context.Background()
	today := seedTicket(t, db, f, "2025-03-10", constants.TICKET_ACTIVE, "EEEEEEEEE1")
	tomorrow := seedTicket(t, db, f, "2025-03-11", constants.TICKET_ACTIVE, "EEEEEEEEE2")

	_, err := s.tickets.Use(ctx, tomorrow.ID)
	require.Error(t, err)
	assert.Equal(t, "ticket is only valid for 2025-03-11", err.Error())
	reloaded, err := s.tickets.Get(ctx, tomorrow.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TICKET_ACTIVE, reloaded.Status)

	used, err := s.tickets.Use(ctx, today.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TICKET_USED, used.Status)
	require.NotNil(t, used.UsedAt)

	_, err = s.tickets.Use(ctx, today.ID)
	require.Error(t, err)
	assert.Equal(t, constants.TICKET_NOT_ACTIVE_USE, err.Error())
}

func TestCancelOnlyActive(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, utils.Ptr(2))
	s := newServices(db, "2025-03-10")
	ctx := context.Background()
	ticket := seedTicket(t, db, f, "2025-03-10", constants.TICKET_ACTIVE, "FFFFFFFFF1")

	cancelled, err := s.tickets.Cancel(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TICKET_CANCELLED, cancelled.Status)

	_, err = s.tickets.Cancel(ctx, ticket.ID)
	assert.Equal(t, KindBadRequest, KindOf(err))

	capacity, err := s.sectors.CheckCapacityAvailable(ctx, f.sector.ID, mustDate(t, "2025-03-10"))
	require.NoError(t, err)
	assert.Equal(t, 2, capacity.Remaining)

	require.NoError(t, s.tickets.Delete(ctx, ticket.ID))
	_, err = s.tickets.Get(ctx, ticket.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestVerifyPayloadTomorrowScenario(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, nil)
	s := newServices(db, "2025-03-10")
	ctx := context.Background()
	ticket := seedTicket(t, db, f, "2025-03-11", constants.TICKET_ACTIVE, "GGGGGGGGG1")

	payload, err := s.tickets.EncryptPayload(ctx, ticket.ID)
	require.NoError(t, err)

	result, err := s.tickets.VerifyEncryptedPayload(ctx, payload)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, constants.TICKET_ACTIVE, result.Status)

	s.tickets.Now = fixedClock("2025-03-11")
	result, err = s.tickets.VerifyEncryptedPayload(ctx, payload)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	reloaded, err := s.tickets.Get(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TICKET_ACTIVE, reloaded.Status, "verification does not mutate")
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, nil)
	s := newServices(db, "2025-03-10")
	ctx := context.Background()
	ticket := seedTicket(t, db, f, "2025-03-10", constants.TICKET_ACTIVE, "HHHHHHHHH1")

	payload, err := s.tickets.EncryptPayload(ctx, ticket.ID)
	require.NoError(t, err)
	dot := strings.LastIndex(payload, ".")
	data, signature := payload[:dot], payload[dot+1:]

	flipped := []byte(signature)
	if flipped[0] == 'a' {
		flipped[0] = 'b'
	} else {
		flipped[0] = 'a'
	}
	_, err = s.tickets.VerifyEncryptedPayload(ctx, data+"."+string(flipped))
	require.Error(t, err)
	assert.Equal(t, constants.TICKET_TAMPERED, err.Error())

	last := []byte(data)
	last[len(last)-1] ^= 1
	_, err = s.tickets.VerifyEncryptedPayload(ctx, string(last)+"."+signature)
	require.Error(t, err)
	assert.Equal(t, constants.TICKET_TAMPERED, err.Error(), "data edits break the signature too")

	raw, _ := json.Marshal(map[string]any{"code": "OTHERCODE1", "id": ticket.ID, "timestamp": 1})
	otherData := base64.StdEncoding.EncodeToString(raw)
	_, err = s.tickets.VerifyEncryptedPayload(ctx, otherData+"."+s.tickets.signer.Sign(otherData))
	assert.Equal(t, KindBadRequest, KindOf(err), "code must match the stored ticket")

	raw, _ = json.Marshal(map[string]any{"timestamp": 1})
	partial := base64.StdEncoding.EncodeToString(raw)
	_, err = s.tickets.VerifyEncryptedPayload(ctx, partial+"."+s.tickets.signer.Sign(partial))
	assert.Equal(t, KindBadRequest, KindOf(err))

	raw, _ = json.Marshal(map[string]any{"code": "NOPE", "id": 999})
	unknown := base64.StdEncoding.EncodeToString(raw)
	_, err = s.tickets.VerifyEncryptedPayload(ctx, unknown+"."+s.tickets.signer.Sign(unknown))
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = s.tickets.VerifyEncryptedPayload(ctx, "no-separator")
	assert.Equal(t, KindBadRequest, KindOf(err))
}

func TestExpireOverdue(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, nil)
	s := newServices(db, "2025-03-10")
	ctx := context.Background()
	past := seedTicket(t, db, f, "2025-03-09", constants.TICKET_ACTIVE, "IIIIIIIII1")
	current := seedTicket(t, db, f, "2025-03-10", constants.TICKET_ACTIVE, "IIIIIIIII2")
	used := seedTicket(t, db, f, "2025-03-08", constants.TICKET_USED, "IIIIIIIII3")

	n, err := s.tickets.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	for id, want := range map[uint]string{
		past.ID:    constants.TICKET_EXPIRED,
		current.ID: constants.TICKET_ACTIVE,
		used.ID:    constants.TICKET_USED,
	} {
		ticket, err := s.tickets.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, ticket.Status)
	}
}

func TestListTicketsByBuyer(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, nil)
	s := newServices(db, "2025-03-10")
	ctx := context.Background()
	mine := seedTicket(t, db, f, "2025-03-10", constants.TICKET_ACTIVE, "JJJJJJJJJ1")
	seedTicket(t, db, f, "2025-03-10", constants.TICKET_ACTIVE, "JJJJJJJJJ2")
	require.NoError(t, db.Model(&mine).Update("buyer_id", 42).Error)

	page, err := s.tickets.ListByBuyer(ctx, 42, model.FilterTicketInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalCount)

	all, err := s.tickets.List(ctx, model.FilterTicketInput{ValidFor: "2025-03-10", Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalCount)
}
