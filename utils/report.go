package utils

import (
	"math"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tourism_marketplace/constants"
)

// DailyAttendance is one visit day: tickets sold for it, how many were
// scanned at the gate and how many expired unused.
type DailyAttendance struct {
	Date          CustomDate      `json:"date"`
	TotalTickets  int             `json:"totalTickets"`
	UsedTickets   int             `json:"usedTickets"`
	NoShowTickets int             `json:"noShowTickets"`
	NoShowRate    float64         `json:"noShowRate"` // %
	EstimatedLoss decimal.Decimal `json:"estimatedLoss"`
}

// CalculateAverage is the no-show rate weighted by tickets sold per day.
func CalculateAverage(report []DailyAttendance) float64 {
	var totalTickets, totalNoShow int
	for _, r := range report {
		totalTickets += r.TotalTickets
		totalNoShow += r.NoShowTickets
	}
	if totalTickets == 0 {
		return 0
	}
	return roundFloat(float64(totalNoShow)/float64(totalTickets)*100, 2)
}

func CalculateTotalLoss(report []DailyAttendance) decimal.Decimal {
	total := decimal.Zero
	for _, r := range report {
		total = total.Add(r.EstimatedLoss)
	}
	return total.Round(2)
}

func roundFloat(val float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Round(val*p) / p
}

// GetAttendanceReport groups the tickets valid between from and to
// (inclusive) by day. Cancelled tickets are left out.
func GetAttendanceReport(db *gorm.DB, from, to CustomDate, attractionID *uint) ([]DailyAttendance, error) {
	query := db.Table("tickets").
		Select(`valid_for AS date,
    COUNT(*) AS total_tickets,
    SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS used_tickets,
    SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS no_show_tickets,
    COALESCE(SUM(CASE WHEN status = ? THEN price ELSE 0 END), 0) AS estimated_loss`,
			constants.TICKET_USED, constants.TICKET_EXPIRED, constants.TICKET_EXPIRED).
		Where("deleted_at IS NULL AND status <> ?", constants.TICKET_CANCELLED).
		Where("valid_for >= ? AND valid_for <= ?", from, to)
	if attractionID != nil {
		query = query.Where("attraction_id = ?", *attractionID)
	}

	var results []DailyAttendance
	if err := query.Group("valid_for").Order("valid_for DESC").Scan(&results).Error; err != nil {
		return nil, err
	}

	for i := range results {
		if results[i].TotalTickets > 0 {
			results[i].NoShowRate = roundFloat(float64(results[i].NoShowTickets)/float64(results[i].TotalTickets)*100, 2)
		}
	}
	return results, nil
}

// SectorSales is the revenue of one sector over a period.
type SectorSales struct {
	AttractionID   uint            `json:"attractionId"`
	AttractionName string          `json:"attractionName"`
	SectorID       uint            `json:"sectorId"`
	SectorName     string          `json:"sectorName"`
	Tickets        int64           `json:"tickets"`
	Revenue        decimal.Decimal `json:"revenue"`
}

type SalesSummary struct {
	TotalTickets int64           `json:"totalTickets"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// GetSalesReport sums the tickets purchased between from and to
// (inclusive) per sector, highest revenue first.
func GetSalesReport(db *gorm.DB, from, to CustomDate, attractionID *uint) ([]SectorSales, *SalesSummary, error) {
	query := db.Table("tickets t").
		Select(`a.id AS attraction_id, a.name AS attraction_name,
    s.id AS sector_id, s.name AS sector_name,
    COUNT(t.id) AS tickets,
    COALESCE(SUM(t.price), 0) AS revenue`).
		Joins("JOIN sectors s ON s.id = t.sector_id").
		Joins("JOIN attractions a ON a.id = t.attraction_id").
		Where("t.deleted_at IS NULL AND t.status <> ?", constants.TICKET_CANCELLED).
		Where("t.purchased_at >= ? AND t.purchased_at < ?", from.Time, to.Time.AddDate(0, 0, 1))
	if attractionID != nil {
		query = query.Where("t.attraction_id = ?", *attractionID)
	}

	var rows []SectorSales
	err := query.Group("a.id, a.name, s.id, s.name").Order("revenue DESC, s.id").Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	summary := &SalesSummary{TotalRevenue: decimal.Zero}
	for _, r := range rows {
		summary.TotalTickets += r.Tickets
		summary.TotalRevenue = summary.TotalRevenue.Add(r.Revenue)
	}
	return rows, summary, nil
}
