package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-site/services"
	"github.com/yeremiapane/restaurant-site/utils"
)

// FunctionController exposes the notification functions. They answer
// {success: true, ...} or a 500 with {error: message}. The key gate in
// front of them is the only source of 4xx.
type FunctionController struct {
	Notifier BookingNotifier
}

func NewFunctionController(notifier BookingNotifier) *FunctionController {
	return &FunctionController{Notifier: notifier}
}

func functionError(c *gin.Context, name string, err error) {
	utils.ErrorLogger.Errorf("%s failed: %v", name, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (fc *FunctionController) SendBookingConfirmation(c *gin.Context) {
	var payload services.BookingConfirmationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		functionError(c, "send-booking-confirmation", err)
		return
	}
	id, err := fc.Notifier.SendBookingConfirmation(c.Request.Context(), payload)
	if err != nil {
		functionError(c, "send-booking-confirmation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "emailId": id})
}

func (fc *FunctionController) SendCancellationEmail(c *gin.Context) {
	var payload services.CancellationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		functionError(c, "send-cancellation-email", err)
		return
	}
	id, err := fc.Notifier.SendCancellation(c.Request.Context(), payload)
	if err != nil {
		functionError(c, "send-cancellation-email", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "emailId": id})
}

func (fc *FunctionController) CreatePaymentLink(c *gin.Context) {
	var payload services.PaymentLinkPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		functionError(c, "create-payment-link", err)
		return
	}
	result, err := fc.Notifier.SendPaymentLink(c.Request.Context(), payload)
	if err != nil {
		functionError(c, "create-payment-link", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"sessionId":  result.SessionID,
		"paymentUrl": result.PaymentURL,
		"emailId":    result.EmailID,
	})
}
