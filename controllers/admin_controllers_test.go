package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/services"
	"gorm.io/gorm"
)

func setupAdminRouter(db *gorm.DB) *gin.Engine {
	ac := NewAdminController(db, services.NewReportService(db, "inr"))
	nc := NewNotificationController(db)
	r := gin.New()
	r.GET("/admin/dashboard", ac.GetDashboardStats)
	r.GET("/admin/reports/bookings.pdf", ac.GetBookingsReport)
	r.GET("/admin/notifications", nc.GetAllNotifications)
	r.GET("/admin/payment-links", nc.GetPaymentLinks)
	return r
}

func TestDashboardStats(t *testing.T) {
	db := setupTestDB(t)
	r := setupAdminRouter(db)
	today := time.Now().Format(services.DateLayout)

	pending := createOrder(t, db, "")
	cancelled := createOrder(t, db, "")
	require.NoError(t, db.Model(&cancelled).Updates(map[string]interface{}{
		"status": models.OrderStatusCancelled, "is_priority": false,
	}).Error)
	table := models.Table{TableNumber: 1, Capacity: 4, IsAvailable: true}
	require.NoError(t, db.Create(&table).Error)
	require.NoError(t, db.Create(&models.Table{TableNumber: 2, Capacity: 4, IsAvailable: false}).Error)
	require.NoError(t, db.Create(&models.Reservation{TableID: table.ID, CustomerName: "A", ReservationDate: today,
		ReservationTime: "19:00", PartySize: 2, PaymentOption: models.PaymentOptionFull, Status: models.ReservationStatusPending}).Error)
	require.NoError(t, db.Create(&models.Review{UserID: 1, Rating: 4, Comment: "Nice"}).Error)
	require.NoError(t, db.Create(&models.NotificationLog{Kind: models.NotificationCancellation, Recipient: "a@b.c", Status: "failed"}).Error)

	w, env := doJSON(t, r, "GET", "/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats map[string]float64
	decode(t, env, &stats)
	assert.Equal(t, 2.0, stats["today_orders"])
	assert.Equal(t, 1.0, stats["pending_orders"])
	assert.Equal(t, 1.0, stats["priority_orders"])
	assert.Equal(t, pending.FinalTotal, stats["today_revenue"])
	assert.Equal(t, 1.0, stats["today_reservations"])
	assert.Equal(t, 1.0, stats["pending_reservations"])
	assert.Equal(t, 1.0, stats["pending_reviews"])
	assert.Equal(t, 1.0, stats["active_tables"])
	assert.Equal(t, 1.0, stats["failed_emails"])
}

func TestBookingsReportPDF(t *testing.T) {
	db := setupTestDB(t)
	r := setupAdminRouter(db)
	table := models.Table{TableNumber: 7, Capacity: 4, IsAvailable: true}
	require.NoError(t, db.Create(&table).Error)
	require.NoError(t, db.Create(&models.Reservation{TableID: table.ID, CustomerName: "Rohan", ReservationDate: futureDate,
		ReservationTime: "20:00", PartySize: 4, TotalAmount: 900, PaymentOption: models.PaymentOptionFull,
		Status: models.ReservationStatusConfirmed}).Error)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/admin/reports/bookings.pdf?date="+futureDate, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "bookings-"+futureDate+".pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w, _ = doJSON(t, r, "GET", "/admin/reports/bookings.pdf?date=14-10-2026", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationAndPaymentLinkLists(t *testing.T) {
	db := setupTestDB(t)
	r := setupAdminRouter(db)
	logs := []models.NotificationLog{
		{Kind: models.NotificationBookingConfirmation, Recipient: "a@example.com", Reference: "1", Status: "sent"},
		{Kind: models.NotificationCancellation, Recipient: "b@example.com", Reference: "2", Status: "failed"},
		{Kind: models.NotificationBookingConfirmation, Recipient: "c@example.com", Reference: "3", Status: "failed"},
	}
	require.NoError(t, db.Create(&logs).Error)
	require.NoError(t, db.Create(&models.PaymentLink{Reference: "1", SessionID: "cs_a", URL: "https://pay/a", Currency: "inr", AmountMinor: 22500}).Error)
	require.NoError(t, db.Create(&models.PaymentLink{Reference: "R4", SessionID: "cs_b", URL: "https://pay/b", Currency: "inr", AmountMinor: 7700}).Error)

	_, env := doJSON(t, r, "GET", "/admin/notifications", nil)
	var all []models.NotificationLog
	decode(t, env, &all)
	require.Len(t, all, 3)
	assert.Equal(t, "3", all[0].Reference, "newest first")

	_, env = doJSON(t, r, "GET", "/admin/notifications?status=failed&kind="+models.NotificationBookingConfirmation, nil)
	var filtered []models.NotificationLog
	decode(t, env, &filtered)
	require.Len(t, filtered, 1)
	assert.Equal(t, "c@example.com", filtered[0].Recipient)

	_, env = doJSON(t, r, "GET", "/admin/notifications?limit=2", nil)
	decode(t, env, &all)
	assert.Len(t, all, 2)

	_, env = doJSON(t, r, "GET", "/admin/payment-links?reference=R4", nil)
	var links []models.PaymentLink
	decode(t, env, &links)
	require.Len(t, links, 1)
	assert.Equal(t, int64(7700), links[0].AmountMinor)
}
