package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/services"
	"github.com/yeremiapane/restaurant-site/utils"
	"gorm.io/gorm"
)

func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(id), nil
}

var badRequestErrors = []error{
	services.ErrEmptyCart,
	services.ErrNameRequired,
	services.ErrPhoneRequired,
	services.ErrInvalidOrderType,
	services.ErrAddressRequired,
	services.ErrReservationIncomplete,
	services.ErrInvalidPaymentOption,
	services.ErrInvalidDate,
	services.ErrInvalidTime,
	services.ErrDateInPast,
	services.ErrInvalidRating,
	services.ErrCommentRequired,
	services.ErrTooManyPhotos,
	services.ErrForeignPhoto,
	services.ErrFileTooLarge,
	services.ErrNotImage,
	services.ErrUnknownBucket,
	services.ErrInvalidEmail,
	services.ErrWeakPassword,
	services.ErrInvalidTransition,
	services.ErrInvalidPayload,
	services.ErrMenuItemNotFound,
}

// statusFor maps service errors onto HTTP codes.
func statusFor(err error) int {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	switch {
	case errors.Is(err, services.ErrNoTablesAvailable), errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, utils.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNoOrders), errors.Is(err, services.ErrOrderNotOwned), errors.Is(err, services.ErrNotReviewAuthor):
		return http.StatusForbidden
	case errors.Is(err, services.ErrCartNotFound), errors.Is(err, services.ErrReviewNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondServiceError logs unexpected failures and answers with the mapped code.
func respondServiceError(c *gin.Context, action string, err error) {
	code := statusFor(err)
	if code >= 500 {
		utils.ErrorLogger.Errorf("Error %s: %v", action, err)
	}
	utils.RespondError(c, code, err)
}

// BookingNotifier sends the booking lifecycle emails.
type BookingNotifier interface {
	SendBookingConfirmation(ctx context.Context, p services.BookingConfirmationPayload) (string, error)
	SendCancellation(ctx context.Context, p services.CancellationPayload) (string, error)
	SendPaymentLink(ctx context.Context, p services.PaymentLinkPayload) (*services.PaymentLinkResult, error)
}

type lineRequest struct {
	MenuItemID uint `json:"menu_item_id"`
	Quantity   int  `json:"quantity"`
}

// resolveLines prices requested items from the menu table. Unavailable or
// unknown items are rejected.
func resolveLines(db *gorm.DB, reqs []lineRequest) ([]services.BookingLine, error) {
	lines := make([]services.BookingLine, 0, len(reqs))
	for _, r := range reqs {
		if r.Quantity <= 0 {
			continue
		}
		var item models.MenuItem
		if err := db.First(&item, r.MenuItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %d", services.ErrMenuItemNotFound, r.MenuItemID)
			}
			return nil, err
		}
		if !item.IsAvailable {
			return nil, fmt.Errorf("%w: %s is unavailable", services.ErrMenuItemNotFound, item.Name)
		}
		lines = append(lines, services.BookingLine{
			MenuItemID: item.ID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   r.Quantity,
		})
	}
	return lines, nil
}
