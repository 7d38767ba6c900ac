package models

import (
	"time"
)

const (
	NotificationBookingConfirmation = "booking_confirmation"
	NotificationCancellation        = "cancellation"
	NotificationPaymentLink         = "payment_link"
	NotificationPasswordReset       = "password_reset"
)

// NotificationLog records every outbound email attempt.
type NotificationLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Kind       string    `gorm:"type:varchar(50);index;not null" json:"kind"`
	Recipient  string    `gorm:"type:varchar(255);not null" json:"recipient"`
	Subject    string    `gorm:"type:varchar(255)" json:"subject"`
	Reference  string    `gorm:"type:varchar(100);index" json:"reference"`
	Status     string    `gorm:"type:varchar(20);not null" json:"status"`
	ProviderID string    `gorm:"type:varchar(100)" json:"provider_id,omitempty"`
	Error      string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
