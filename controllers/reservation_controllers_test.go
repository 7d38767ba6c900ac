package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-site/kds"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/services"
	"gorm.io/gorm"
)

const futureDate = "2099-06-01"

func setupReservationRouter(db *gorm.DB, notifier BookingNotifier) *gin.Engine {
	rc := NewReservationController(db, services.NewPricing(25, 0.35), services.NewAvailabilityService(db, 120),
		services.NewCartStore(), notifier, kds.NewHub())
	r := gin.New()
	r.GET("/reservations/availability", rc.GetAvailability)
	r.GET("/tables/:id/availability", rc.CheckTable)
	r.POST("/reservations", rc.CreateReservation)
	r.GET("/me/reservations", asUser(3), rc.GetMyReservations)
	r.POST("/me/reservations", asUser(3), rc.CreateReservation)
	r.GET("/admin/reservations", rc.GetAllReservations)
	r.PATCH("/admin/reservations/:id/status", rc.UpdateReservationStatus)
	r.PATCH("/admin/reservations/:id/payment-status", rc.UpdatePaymentStatus)
	r.POST("/admin/reservations/:id/payment-link", rc.SendPaymentLink)
	return r
}

func seedTwoTables(t *testing.T, db *gorm.DB) (small, large models.Table) {
	t.Helper()
	small = models.Table{TableNumber: 1, Capacity: 2, Location: "Window", IsAvailable: true}
	large = models.Table{TableNumber: 2, Capacity: 6, Location: "Patio", IsAvailable: true}
	require.NoError(t, db.Create(&small).Error)
	require.NoError(t, db.Create(&large).Error)
	return small, large
}

func reservationBody(tableID uint, clock string, extra gin.H) gin.H {
	body := gin.H{
		"customer_name":    "Arjun",
		"customer_email":   "arjun@example.com",
		"customer_phone":   "5555",
		"reservation_date": futureDate,
		"reservation_time": clock,
		"party_size":       2,
		"table_id":         tableID,
	}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

func TestGetAvailabilityFiltersByCapacity(t *testing.T) {
	db := setupTestDB(t)
	_, large := seedTwoTables(t, db)
	r := setupReservationRouter(db, &fakeNotifier{})

	w, env := doJSON(t, r, "GET", "/reservations/availability?date="+futureDate+"&time=19:00&party_size=4", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tables []models.Table
	decode(t, env, &tables)
	require.Len(t, tables, 1)
	assert.Equal(t, large.ID, tables[0].ID)

	w, _ = doJSON(t, r, "GET", "/reservations/availability?date="+futureDate+"&time=19:00", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = doJSON(t, r, "GET", "/reservations/availability?date="+futureDate+"&time=19:00&party_size=10", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, services.ErrNoTablesAvailable.Error(), env.Message)
}

func TestCreateReservationWithDeposit(t *testing.T) {
	db := setupTestDB(t)
	small, _ := seedTwoTables(t, db)
	dal, _ := seedMenu(t, db)
	r := setupReservationRouter(db, &fakeNotifier{})

	w, env := doJSON(t, r, "POST", "/me/reservations", reservationBody(small.ID, "19:00", gin.H{
		"items": []gin.H{{"menu_item_id": dal.ID, "quantity": 1}},
	}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res models.Reservation
	decode(t, env, &res)
	assert.Equal(t, models.PaymentOptionDeposit, res.PaymentOption)
	assert.Equal(t, 220.0, res.TotalAmount)
	assert.Equal(t, 77.0, res.DepositAmount)
	assert.Equal(t, 143.0, res.RemainingAmount)
	assert.Equal(t, models.PaymentStatusPartial, res.PaymentStatus)
	require.NotNil(t, res.Table)
	assert.Equal(t, 1, res.Table.TableNumber)
	require.NotNil(t, res.UserID)
	assert.Equal(t, uint(3), *res.UserID)

	w, env = doJSON(t, r, "GET", "/me/reservations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []models.Reservation
	decode(t, env, &mine)
	assert.Len(t, mine, 1)
}

func TestCreateReservationConflicts(t *testing.T) {
	db := setupTestDB(t)
	small, _ := seedTwoTables(t, db)
	r := setupReservationRouter(db, &fakeNotifier{})

	w, _ := doJSON(t, r, "POST", "/reservations", reservationBody(small.ID, "19:00", nil))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = doJSON(t, r, "POST", "/reservations", reservationBody(small.ID, "20:30", nil))
	assert.Equal(t, http.StatusConflict, w.Code, "overlaps the 19:00 slot")

	w, _ = doJSON(t, r, "POST", "/reservations", reservationBody(small.ID, "21:00", nil))
	assert.Equal(t, http.StatusCreated, w.Code, "two hours later is free")

	w, _ = doJSON(t, r, "POST", "/reservations", reservationBody(small.ID, "13:00", gin.H{"party_size": 5}))
	assert.Equal(t, http.StatusConflict, w.Code, "table too small")

	w, _ = doJSON(t, r, "GET", fmt.Sprintf("/tables/%d/availability?date=%s&time=19:30", small.ID, futureDate), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateReservationValidation(t *testing.T) {
	db := setupTestDB(t)
	small, _ := seedTwoTables(t, db)
	r := setupReservationRouter(db, &fakeNotifier{})

	w, _ := doJSON(t, r, "POST", "/reservations", gin.H{"customer_name": "Arjun"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, "POST", "/reservations", reservationBody(small.ID, "19:00", gin.H{"reservation_date": "2000-01-01"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, "POST", "/reservations", reservationBody(small.ID, "19:00", gin.H{"payment_option": "later"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReservationStatusEmailsAndPayment(t *testing.T) {
	db := setupTestDB(t)
	small, _ := seedTwoTables(t, db)
	dal, _ := seedMenu(t, db)
	notifier := &fakeNotifier{}
	r := setupReservationRouter(db, notifier)

	w, env := doJSON(t, r, "POST", "/reservations", reservationBody(small.ID, "19:00", gin.H{
		"items": []gin.H{{"menu_item_id": dal.ID, "quantity": 1}},
	}))
	require.Equal(t, http.StatusCreated, w.Code)
	var res models.Reservation
	decode(t, env, &res)
	base := fmt.Sprintf("/admin/reservations/%d", res.ID)

	w, _ = doJSON(t, r, "PATCH", base+"/status", gin.H{"status": models.ReservationStatusConfirmed})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, notifier.confirmations, 1)
	assert.Equal(t, services.BookingTypeReservation, notifier.confirmations[0].BookingType)
	assert.Equal(t, 1, notifier.confirmations[0].TableNumber)

	w, _ = doJSON(t, r, "PATCH", base+"/status", gin.H{"status": models.ReservationStatusPending})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, "POST", base+"/payment-link", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, notifier.paymentLinks, 1)
	assert.Equal(t, 77.0, notifier.paymentLinks[0].TotalAmount)

	w, env = doJSON(t, r, "PATCH", base+"/payment-status", gin.H{"payment_status": models.PaymentStatusPaid})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, env, &res)
	assert.Zero(t, res.RemainingAmount)

	w, _ = doJSON(t, r, "PATCH", base+"/status", gin.H{"status": models.ReservationStatusCancelled, "reason": "Kitchen closed"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, notifier.cancellations, 1)
	assert.Equal(t, 220.0, notifier.cancellations[0].RefundAmount)

	w, env = doJSON(t, r, "GET", "/admin/reservations?date="+futureDate+"&status=cancelled", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Reservation
	decode(t, env, &listed)
	assert.Len(t, listed, 1)
}
