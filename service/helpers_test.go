package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tourism_marketplace/database"
	"tourism_marketplace/gateway"
	"tourism_marketplace/model"
	"tourism_marketplace/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// fixedClock returns a clock pinned at noon UTC of the given day.
func fixedClock(day string) Clock {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	at := d.Add(12 * time.Hour)
	return func() time.Time { return at }
}

func mustDate(t *testing.T, s string) utils.CustomDate {
	t.Helper()
	d, err := utils.ParseDate(s)
	require.NoError(t, err)
	return d
}

type catalogFixture struct {
	city       model.City
	category   model.Category
	attraction model.Attraction
	sector     model.Sector
}

func seedCatalog(t *testing.T, db *gorm.DB, maxCapacity *int) catalogFixture {
	t.Helper()
	var f catalogFixture

	department := model.Department{Name: "Central"}
	require.NoError(t, db.Create(&department).Error)
	f.city = model.City{Name: "Asuncion", DepartmentID: department.ID}
	require.NoError(t, db.Create(&f.city).Error)
	f.category = model.Category{Name: "Museum"}
	require.NoError(t, db.Create(&f.category).Error)
	f.attraction = model.Attraction{
		Name:       "Casa de la Independencia",
		Slug:       "casa-de-la-independencia",
		Active:     true,
		CityID:     f.city.ID,
		CategoryID: f.category.ID,
	}
	require.NoError(t, db.Create(&f.attraction).Error)
	f.sector = model.Sector{
		AttractionID: f.attraction.ID,
		Name:         "Adult",
		Price:        decimal.NewFromInt(20),
		Active:       true,
		MaxCapacity:  maxCapacity,
	}
	require.NoError(t, db.Create(&f.sector).Error)
	return f
}

func seedTicket(t *testing.T, db *gorm.DB, f catalogFixture, day, status, code string) model.Ticket {
	t.Helper()
	ticket := model.Ticket{
		Code:         code,
		AttractionID: f.attraction.ID,
		SectorID:     f.sector.ID,
		Price:        f.sector.Price,
		ValidFor:     mustDate(t, day),
		Status:       status,
		PurchasedAt:  time.Now(),
	}
	require.NoError(t, db.Create(&ticket).Error)
	return ticket
}

func seedTransaction(t *testing.T, db *gorm.DB, gatewayID string, status model.TransactionStatus) model.Transaction {
	t.Helper()
	trx := model.Transaction{
		GatewayTransactionID: gatewayID,
		InternalCode:         "INT-" + gatewayID,
		Amount:               decimal.NewFromInt(40),
		Currency:             "PYG",
		Status:               status,
	}
	require.NoError(t, db.Create(&trx).Error)
	return trx
}

type fakeGateway struct {
	mu        sync.Mutex
	requested []gateway.PaymentDetails
	nextID    string
	statuses  map[string]*gateway.StatusPayload
	err       error
}

func (g *fakeGateway) RequestPayment(_ context.Context, details gateway.PaymentDetails) (*gateway.PaymentRequestResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.requested = append(g.requested, details)
	return &gateway.PaymentRequestResult{
		GatewayTransactionID: g.nextID,
		RedirectURL:          "https://pay.example.com/" + g.nextID,
	}, nil
}

func (g *fakeGateway) ConsultTransaction(_ context.Context, id string) (*gateway.StatusPayload, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	if p, ok := g.statuses[id]; ok {
		return p, nil
	}
	return &gateway.StatusPayload{GatewayTransactionID: id, Code: -1, Status: model.TransactionPending}, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) SectorChanged(_ context.Context, sectorID uint, day string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, fmt.Sprintf("%d@%s", sectorID, day))
}

type chanMailer chan utils.TicketMailData

func (m chanMailer) SendTickets(data utils.TicketMailData) error {
	m <- data
	return nil
}

type services struct {
	sectors      *SectorService
	transactions *TransactionService
	tickets      *TicketService
	gateway      *fakeGateway
	notifier     *recordingNotifier
}

func newServices(db *gorm.DB, today string) services {
	gw := &fakeGateway{statuses: map[string]*gateway.StatusPayload{}}
	clock := fixedClock(today)

	sectors := NewSectorService(db)
	sectors.Now = clock
	transactions := NewTransactionService(db, gw, sectors, "PYG", time.UTC)
	transactions.Now = clock
	tickets := NewTicketService(db, transactions, NewPayloadSigner("ticket-secret"), time.UTC)
	tickets.Now = clock
	notifier := &recordingNotifier{}
	tickets.SetNotifier(notifier)

	return services{sectors: sectors, transactions: transactions, tickets: tickets, gateway: gw, notifier: notifier}
}
