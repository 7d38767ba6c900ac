package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/yeremiapane/restaurant-site/models"
	"gorm.io/gorm"
)

// BookingReport is the day sheet of orders and reservations.
type BookingReport struct {
	Date              string
	Orders            []models.Order
	Reservations      []models.Reservation
	OrdersTotal       float64
	ReservationsTotal float64
}

type ReportService struct {
	db           *gorm.DB
	currencyCode string
}

func NewReportService(db *gorm.DB, currencyCode string) *ReportService {
	return &ReportService{db: db, currencyCode: strings.ToUpper(currencyCode)}
}

// Collect loads the bookings for one day. Cancelled bookings are listed but
// left out of the totals.
func (s *ReportService) Collect(ctx context.Context, date string) (*BookingReport, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	report := &BookingReport{Date: date}

	if err := s.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1)).
		Order("created_at asc").
		Find(&report.Orders).Error; err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	if err := s.db.WithContext(ctx).
		Preload("Table").
		Where("reservation_date = ?", date).
		Order("reservation_time asc").
		Find(&report.Reservations).Error; err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}

	for _, o := range report.Orders {
		if o.Status != models.OrderStatusCancelled {
			report.OrdersTotal += o.FinalTotal
		}
	}
	for _, r := range report.Reservations {
		if r.Status != models.ReservationStatusCancelled {
			report.ReservationsTotal += r.TotalAmount
		}
	}
	return report, nil
}

func (s *ReportService) money(amount float64) string {
	return fmt.Sprintf("%s %.2f", s.currencyCode, amount)
}

// WritePDF renders the report as an A4 PDF.
func (s *ReportService) WritePDF(w io.Writer, report *BookingReport) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Bookings "+report.Date, false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Bookings for "+report.Date, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	header := func(cols []string, widths []float64) {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for i, col := range cols {
			pdf.CellFormat(widths[i], 7, col, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
	}

	orderWidths := []float64{15, 55, 30, 35, 30, 25}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Orders (%d)", len(report.Orders)), "", 1, "L", false, 0, "")
	header([]string{"#", "Customer", "Type", "Pickup", "Total", "Status"}, orderWidths)
	for _, o := range report.Orders {
		row := []string{fmt.Sprintf("%d", o.ID), o.CustomerName, o.OrderType, o.PickupTime, s.money(o.FinalTotal), o.Status}
		for i, cell := range row {
			pdf.CellFormat(orderWidths[i], 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 8, "Orders total: "+s.money(report.OrdersTotal), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	resWidths := []float64{15, 50, 20, 20, 20, 35, 30}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Reservations (%d)", len(report.Reservations)), "", 1, "L", false, 0, "")
	header([]string{"#", "Customer", "Time", "Guests", "Table", "Total", "Status"}, resWidths)
	for _, r := range report.Reservations {
		table := "-"
		if r.Table != nil {
			table = fmt.Sprintf("%d", r.Table.TableNumber)
		}
		row := []string{
			fmt.Sprintf("%d", r.ID), r.CustomerName, r.ReservationTime,
			fmt.Sprintf("%d", r.PartySize), table, s.money(r.TotalAmount), r.Status,
		}
		for i, cell := range row {
			pdf.CellFormat(resWidths[i], 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 8, "Reservations total: "+s.money(report.ReservationsTotal), "", 1, "R", false, 0, "")
	pdf.Ln(2)
	pdf.CellFormat(0, 8, "Grand total: "+s.money(report.OrdersTotal+report.ReservationsTotal), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
