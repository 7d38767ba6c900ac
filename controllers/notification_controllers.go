package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/utils"
	"gorm.io/gorm"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetAllNotifications -> outbound email log, newest first; ?kind= ?status= ?limit=
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	q := nc.DB.Order("created_at desc, id desc")
	if kind := c.Query("kind"); kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	var logs []models.NotificationLog
	if err := q.Limit(limit).Find(&logs).Error; err != nil {
		respondServiceError(c, "listing notifications", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All notifications", logs)
}

// GetPaymentLinks -> checkout sessions created so far
func (nc *NotificationController) GetPaymentLinks(c *gin.Context) {
	q := nc.DB.Order("created_at desc, id desc")
	if ref := c.Query("reference"); ref != "" {
		q = q.Where("reference = ?", ref)
	}
	var links []models.PaymentLink
	if err := q.Find(&links).Error; err != nil {
		respondServiceError(c, "listing payment links", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of payment links", links)
}
