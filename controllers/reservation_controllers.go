package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-site/kds"
	"github.com/yeremiapane/restaurant-site/middlewares"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/services"
	"github.com/yeremiapane/restaurant-site/utils"
)

type ReservationController struct {
	DB           *gorm.DB
	Pricing      services.Pricing
	Availability *services.AvailabilityService
	Carts        *services.CartStore
	Notifier     BookingNotifier
	Hub          *kds.Hub
}

func NewReservationController(db *gorm.DB, pricing services.Pricing, availability *services.AvailabilityService,
	carts *services.CartStore, notifier BookingNotifier, hub *kds.Hub) *ReservationController {
	return &ReservationController{
		DB:           db,
		Pricing:      pricing,
		Availability: availability,
		Carts:        carts,
		Notifier:     notifier,
		Hub:          hub,
	}
}

// GetAvailability -> tables free for ?date=&time=&party_size=
func (rc *ReservationController) GetAvailability(c *gin.Context) {
	date := c.Query("date")
	clock := c.Query("time")
	partySize, err := strconv.Atoi(c.Query("party_size"))
	if date == "" || clock == "" || err != nil || partySize <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("date, time and party_size are required"))
		return
	}

	tables, err := rc.Availability.AvailableTables(c.Request.Context(), date, clock, partySize)
	if err != nil {
		respondServiceError(c, "checking availability", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Available tables", tables)
}

// CheckTable -> availability of a single table
func (rc *ReservationController) CheckTable(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	ok, err := rc.Availability.CheckTableAvailability(c.Request.Context(), id, c.Query("date"), c.Query("time"))
	if err != nil {
		respondServiceError(c, "checking table availability", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table availability", gin.H{"table_id": id, "available": ok})
}

func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req struct {
		services.ReservationForm
		CartID string        `json:"cart_id"`
		Items  []lineRequest `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !req.CanSubmit() {
		utils.RespondError(c, http.StatusBadRequest, services.ErrReservationIncomplete)
		return
	}

	var lines []services.BookingLine
	var err error
	if req.CartID != "" {
		lines, err = rc.Carts.Lines(req.CartID)
	} else {
		lines, err = resolveLines(rc.DB, req.Items)
	}
	if err != nil {
		respondServiceError(c, "resolving pre-order items", err)
		return
	}

	reservation, err := rc.Pricing.BuildReservation(req.ReservationForm, lines)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := rc.Availability.ValidateSelection(c.Request.Context(), reservation.TableID,
		reservation.ReservationDate, reservation.ReservationTime, reservation.PartySize); err != nil {
		respondServiceError(c, "validating table", err)
		return
	}
	if userID, ok := middlewares.CurrentUserID(c); ok {
		reservation.UserID = &userID
	}

	if err := rc.DB.Create(reservation).Error; err != nil {
		respondServiceError(c, "creating reservation", err)
		return
	}
	if req.CartID != "" {
		rc.Carts.Discard(req.CartID)
	}
	rc.DB.Preload("Table").Preload("Items").First(reservation, reservation.ID)

	rc.Hub.Publish(kds.EventReservationCreated, reservation)
	utils.InfoLogger.Printf("Reservation %d created: table %d on %s %s for %d",
		reservation.ID, reservation.TableID, reservation.ReservationDate, reservation.ReservationTime, reservation.PartySize)
	utils.RespondJSON(c, http.StatusCreated, "Reservation created successfully", reservation)
}

func (rc *ReservationController) GetMyReservations(c *gin.Context) {
	userID, _ := middlewares.CurrentUserID(c)
	var reservations []models.Reservation
	if err := rc.DB.Preload("Table").Preload("Items").
		Where("user_id = ?", userID).
		Order("reservation_date desc, reservation_time desc").
		Find(&reservations).Error; err != nil {
		respondServiceError(c, "listing reservations", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

// GetAllReservations -> admin list, optional date and status filters
func (rc *ReservationController) GetAllReservations(c *gin.Context) {
	q := rc.DB.Preload("Table").Preload("Items").Order("reservation_date asc, reservation_time asc")
	if date := c.Query("date"); date != "" {
		q = q.Where("reservation_date = ?", date)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var reservations []models.Reservation
	if err := q.Find(&reservations).Error; err != nil {
		respondServiceError(c, "listing reservations", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

func (rc *ReservationController) loadReservation(c *gin.Context) (*models.Reservation, bool) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return nil, false
	}
	var reservation models.Reservation
	if err := rc.DB.Preload("Table").Preload("Items").First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
			return nil, false
		}
		respondServiceError(c, "loading reservation", err)
		return nil, false
	}
	return &reservation, true
}

func (rc *ReservationController) UpdateReservationStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	reservation, ok := rc.loadReservation(c)
	if !ok {
		return
	}
	if err := services.CheckReservationTransition(reservation.Status, req.Status); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := rc.DB.Model(reservation).Update("status", req.Status).Error; err != nil {
		respondServiceError(c, "updating reservation status", err)
		return
	}
	reservation.Status = req.Status

	if reservation.CustomerEmail != "" {
		ctx := c.Request.Context()
		var err error
		switch req.Status {
		case models.ReservationStatusConfirmed:
			_, err = rc.Notifier.SendBookingConfirmation(ctx, services.ConfirmationFromReservation(*reservation))
		case models.ReservationStatusCancelled:
			_, err = rc.Notifier.SendCancellation(ctx, services.CancellationFromReservation(*reservation, strings.TrimSpace(req.Reason)))
		}
		if err != nil {
			utils.ErrorLogger.Errorf("Error emailing reservation %d status %s: %v", reservation.ID, req.Status, err)
		}
	}

	rc.Hub.Publish(kds.EventReservationStatus, reservation)
	utils.InfoLogger.Printf("Reservation %d status -> %s", reservation.ID, reservation.Status)
	utils.RespondJSON(c, http.StatusOK, "Reservation status updated", reservation)
}

func (rc *ReservationController) UpdatePaymentStatus(c *gin.Context) {
	var req struct {
		PaymentStatus string `json:"payment_status" binding:"required,oneof=pending partial paid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	reservation, ok := rc.loadReservation(c)
	if !ok {
		return
	}
	updates := map[string]interface{}{"payment_status": req.PaymentStatus}
	if req.PaymentStatus == models.PaymentStatusPaid {
		updates["remaining_amount"] = 0
	}
	if err := rc.DB.Model(reservation).Updates(updates).Error; err != nil {
		respondServiceError(c, "updating payment status", err)
		return
	}
	reservation.PaymentStatus = req.PaymentStatus
	if req.PaymentStatus == models.PaymentStatusPaid {
		reservation.RemainingAmount = 0
	}
	rc.Hub.Publish(kds.EventReservationStatus, reservation)
	utils.RespondJSON(c, http.StatusOK, "Payment status updated", reservation)
}

// SendPaymentLink -> emails a checkout link for the amount due now
func (rc *ReservationController) SendPaymentLink(c *gin.Context) {
	reservation, ok := rc.loadReservation(c)
	if !ok {
		return
	}
	if reservation.CustomerEmail == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("reservation has no customer email"))
		return
	}
	payload := services.PaymentLinkFromReservation(*reservation)
	if payload.TotalAmount <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("reservation has nothing to pay"))
		return
	}

	result, err := rc.Notifier.SendPaymentLink(c.Request.Context(), payload)
	if err != nil {
		respondServiceError(c, "sending payment link", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment link sent", result)
}
