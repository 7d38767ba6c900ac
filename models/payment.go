package models

import (
	"time"
)

// PaymentLink is a hosted checkout session created for an order or reservation.
type PaymentLink struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Reference    string    `json:"reference" gorm:"type:varchar(100);index;not null"`
	SessionID    string    `json:"session_id" gorm:"type:varchar(255);uniqueIndex"`
	URL          string    `json:"url" gorm:"type:text"`
	Currency     string    `json:"currency" gorm:"type:varchar(10)"`
	AmountMinor  int64     `json:"amount_minor"`
	CustomerMail string    `json:"customer_email" gorm:"type:varchar(255)"`
	CreatedAt    time.Time `json:"created_at"`
}
