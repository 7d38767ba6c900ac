package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-site/models"
)

func TestCollectExcludesCancelledFromTotals(t *testing.T) {
	db := newTestDB(t)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	orders := []models.Order{
		{CustomerName: "A", CustomerPhone: "1", OrderType: models.OrderTypePickup, FinalTotal: 100, Status: models.OrderStatusDelivered, PaymentStatus: models.PaymentStatusPaid, CreatedAt: day.Add(10 * time.Hour)},
		{CustomerName: "B", CustomerPhone: "2", OrderType: models.OrderTypePickup, FinalTotal: 40, Status: models.OrderStatusCancelled, PaymentStatus: models.PaymentStatusPending, CreatedAt: day.Add(11 * time.Hour)},
		{CustomerName: "C", CustomerPhone: "3", OrderType: models.OrderTypePickup, FinalTotal: 70, Status: models.OrderStatusPending, PaymentStatus: models.PaymentStatusPending, CreatedAt: day.Add(-2 * time.Hour)},
	}
	require.NoError(t, db.Create(&orders).Error)

	table := models.Table{TableNumber: 4, Capacity: 4, IsAvailable: true}
	require.NoError(t, db.Create(&table).Error)
	reservations := []models.Reservation{
		{TableID: table.ID, CustomerName: "R1", ReservationDate: "2026-03-10", ReservationTime: "20:00", PartySize: 2, TotalAmount: 300, PaymentOption: models.PaymentOptionFull, PaymentStatus: models.PaymentStatusPaid, Status: models.ReservationStatusConfirmed},
		{TableID: table.ID, CustomerName: "R2", ReservationDate: "2026-03-10", ReservationTime: "18:00", PartySize: 2, TotalAmount: 500, PaymentOption: models.PaymentOptionFull, PaymentStatus: models.PaymentStatusPending, Status: models.ReservationStatusCancelled},
	}
	require.NoError(t, db.Create(&reservations).Error)

	svc := NewReportService(db, "inr")
	report, err := svc.Collect(context.Background(), "2026-03-10")
	require.NoError(t, err)

	assert.Len(t, report.Orders, 2)
	assert.Equal(t, 100.0, report.OrdersTotal)
	require.Len(t, report.Reservations, 2)
	assert.Equal(t, "18:00", report.Reservations[0].ReservationTime)
	assert.Equal(t, 300.0, report.ReservationsTotal)
	require.NotNil(t, report.Reservations[0].Table)
	assert.Equal(t, 4, report.Reservations[0].Table.TableNumber)

	var buf bytes.Buffer
	require.NoError(t, svc.WritePDF(&buf, report))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestCollectRejectsBadDate(t *testing.T) {
	_, err := NewReportService(newTestDB(t), "inr").Collect(context.Background(), "yesterday")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestMoneyUsesCurrencyCode(t *testing.T) {
	assert.Equal(t, "INR 12.00", NewReportService(nil, "inr").money(12))
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# Terms\n\nBe **kind**.\n\n<script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Terms</h1>")
	assert.Contains(t, out, "<strong>kind</strong>")
	assert.NotContains(t, out, "<script>")
}
