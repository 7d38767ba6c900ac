package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-site/kds"
	"github.com/yeremiapane/restaurant-site/middlewares"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/services"
	"github.com/yeremiapane/restaurant-site/utils"
)

type OrderController struct {
	DB       *gorm.DB
	Pricing  services.Pricing
	Carts    *services.CartStore
	Notifier BookingNotifier
	Hub      *kds.Hub
}

func NewOrderController(db *gorm.DB, pricing services.Pricing, carts *services.CartStore, notifier BookingNotifier, hub *kds.Hub) *OrderController {
	return &OrderController{DB: db, Pricing: pricing, Carts: carts, Notifier: notifier, Hub: hub}
}

// GetOrderTypes -> order type selector options and pickup slots
func (oc *OrderController) GetOrderTypes(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Order types", gin.H{
		"order_types":  services.OrderTypes,
		"pickup_times": services.PickupTimeSlots,
		"asap_charge":  oc.Pricing.AsapCharge,
	})
}

// CreateOrder -> places an order from a cart or an explicit item list
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req struct {
		services.OrderForm
		CartID string        `json:"cart_id"`
		Items  []lineRequest `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var lines []services.BookingLine
	var err error
	if req.CartID != "" {
		lines, err = oc.Carts.Lines(req.CartID)
	} else {
		lines, err = resolveLines(oc.DB, req.Items)
	}
	if err != nil {
		respondServiceError(c, "resolving order items", err)
		return
	}

	order, err := oc.Pricing.BuildOrder(req.OrderForm, lines)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if userID, ok := middlewares.CurrentUserID(c); ok {
		order.UserID = &userID
	}

	if err := oc.DB.Create(order).Error; err != nil {
		respondServiceError(c, "creating order", err)
		return
	}
	if req.CartID != "" {
		oc.Carts.Discard(req.CartID)
	}

	oc.Hub.Publish(kds.EventOrderCreated, order)
	utils.InfoLogger.Printf("Order %d created: %s, %d items, total %.2f", order.ID, order.OrderType, len(order.Items), order.FinalTotal)
	utils.RespondJSON(c, http.StatusCreated, "Order placed successfully", order)
}

// GetMyOrders -> the signed-in customer's order history
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	userID, _ := middlewares.CurrentUserID(c)
	var orders []models.Order
	if err := oc.DB.Preload("Items").Where("user_id = ?", userID).Order("created_at desc").Find(&orders).Error; err != nil {
		respondServiceError(c, "listing orders", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetAllOrders -> admin list, optional status filter
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	q := oc.DB.Preload("Items").Order("is_priority desc, created_at desc")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		respondServiceError(c, "listing orders", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) loadOrder(c *gin.Context) (*models.Order, bool) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return nil, false
	}
	var order models.Order
	if err := oc.DB.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
			return nil, false
		}
		respondServiceError(c, "loading order", err)
		return nil, false
	}
	return &order, true
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	order, ok := oc.loadOrder(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrderStatus -> moves the order along its status chain and emails the customer
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	order, ok := oc.loadOrder(c)
	if !ok {
		return
	}
	if err := services.CheckOrderTransition(order.Status, req.Status); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := oc.DB.Model(order).Update("status", req.Status).Error; err != nil {
		respondServiceError(c, "updating order status", err)
		return
	}
	order.Status = req.Status

	if order.CustomerEmail != "" {
		ctx := c.Request.Context()
		var err error
		switch req.Status {
		case models.OrderStatusConfirmed:
			_, err = oc.Notifier.SendBookingConfirmation(ctx, services.ConfirmationFromOrder(*order))
		case models.OrderStatusCancelled:
			_, err = oc.Notifier.SendCancellation(ctx, services.CancellationFromOrder(*order, strings.TrimSpace(req.Reason)))
		}
		if err != nil {
			utils.ErrorLogger.Errorf("Error emailing order %d status %s: %v", order.ID, req.Status, err)
		}
	}

	oc.Hub.Publish(kds.EventOrderStatus, order)
	utils.InfoLogger.Printf("Order %d status -> %s", order.ID, order.Status)
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// UpdatePaymentStatus -> records payment received offline or via checkout
func (oc *OrderController) UpdatePaymentStatus(c *gin.Context) {
	var req struct {
		PaymentStatus string `json:"payment_status" binding:"required,oneof=pending partial paid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	order, ok := oc.loadOrder(c)
	if !ok {
		return
	}
	if err := oc.DB.Model(order).Update("payment_status", req.PaymentStatus).Error; err != nil {
		respondServiceError(c, "updating payment status", err)
		return
	}
	order.PaymentStatus = req.PaymentStatus
	oc.Hub.Publish(kds.EventOrderStatus, order)
	utils.RespondJSON(c, http.StatusOK, "Payment status updated", order)
}

// SendPaymentLink -> creates a checkout session for the order and emails it
func (oc *OrderController) SendPaymentLink(c *gin.Context) {
	order, ok := oc.loadOrder(c)
	if !ok {
		return
	}
	if order.CustomerEmail == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("order has no customer email"))
		return
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		utils.RespondError(c, http.StatusBadRequest, errors.New("order is already paid"))
		return
	}

	result, err := oc.Notifier.SendPaymentLink(c.Request.Context(), services.PaymentLinkFromOrder(*order))
	if err != nil {
		respondServiceError(c, "sending payment link", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment link sent", result)
}
