package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/services"
	"github.com/yeremiapane/restaurant-site/utils"
	"gorm.io/gorm"
)

type AdminController struct {
	DB      *gorm.DB
	Reports *services.ReportService
}

func NewAdminController(db *gorm.DB, reports *services.ReportService) *AdminController {
	return &AdminController{DB: db, Reports: reports}
}

// GetDashboardStats -> counts for the admin landing page
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	today := time.Now().Format(services.DateLayout)
	start, _ := time.ParseInLocation(services.DateLayout, today, time.Local)

	var stats struct {
		TodayOrders         int64   `json:"today_orders"`
		PendingOrders       int64   `json:"pending_orders"`
		PriorityOrders      int64   `json:"priority_orders"`
		TodayRevenue        float64 `json:"today_revenue"`
		TodayReservations   int64   `json:"today_reservations"`
		PendingReservations int64   `json:"pending_reservations"`
		PendingReviews      int64   `json:"pending_reviews"`
		ActiveTables        int64   `json:"active_tables"`
		FailedEmails        int64   `json:"failed_emails"`
	}

	db := ac.DB.WithContext(c.Request.Context())
	queries := []struct {
		name string
		run  func() error
	}{
		{"today orders", func() error {
			return db.Model(&models.Order{}).Where("created_at >= ?", start).Count(&stats.TodayOrders).Error
		}},
		{"pending orders", func() error {
			return db.Model(&models.Order{}).Where("status = ?", models.OrderStatusPending).Count(&stats.PendingOrders).Error
		}},
		{"priority orders", func() error {
			return db.Model(&models.Order{}).
				Where("is_priority = ? AND status NOT IN ?", true, []string{models.OrderStatusDelivered, models.OrderStatusCancelled}).
				Count(&stats.PriorityOrders).Error
		}},
		{"today revenue", func() error {
			return db.Model(&models.Order{}).
				Where("created_at >= ? AND status <> ?", start, models.OrderStatusCancelled).
				Select("COALESCE(SUM(final_total), 0)").Row().Scan(&stats.TodayRevenue)
		}},
		{"today reservations", func() error {
			return db.Model(&models.Reservation{}).Where("reservation_date = ?", today).Count(&stats.TodayReservations).Error
		}},
		{"pending reservations", func() error {
			return db.Model(&models.Reservation{}).Where("status = ?", models.ReservationStatusPending).Count(&stats.PendingReservations).Error
		}},
		{"pending reviews", func() error {
			return db.Model(&models.Review{}).Where("is_approved = ?", false).Count(&stats.PendingReviews).Error
		}},
		{"active tables", func() error {
			return db.Model(&models.Table{}).Where("is_available = ?", true).Count(&stats.ActiveTables).Error
		}},
		{"failed emails", func() error {
			return db.Model(&models.NotificationLog{}).Where("status = ?", "failed").Count(&stats.FailedEmails).Error
		}},
	}
	for _, q := range queries {
		if err := q.run(); err != nil {
			respondServiceError(c, "computing "+q.name, err)
			return
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}

// GetBookingsReport -> PDF of one day's bookings, ?date=YYYY-MM-DD (default today)
func (ac *AdminController) GetBookingsReport(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().Format(services.DateLayout))
	report, err := ac.Reports.Collect(c.Request.Context(), date)
	if err != nil {
		respondServiceError(c, "collecting report", err)
		return
	}

	var buf bytes.Buffer
	if err := ac.Reports.WritePDF(&buf, report); err != nil {
		respondServiceError(c, "rendering report", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="bookings-%s.pdf"`, date))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
