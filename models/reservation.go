package models

import "time"

const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCompleted = "completed"
	ReservationStatusCancelled = "cancelled"
)

const (
	PaymentOptionDeposit = "deposit"
	PaymentOptionFull    = "full"
)

type Reservation struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	UserID          *uint             `gorm:"index" json:"user_id,omitempty"`
	TableID         uint              `gorm:"index;not null" json:"table_id"`
	Table           *Table            `gorm:"foreignKey:TableID" json:"table,omitempty"`
	CustomerName    string            `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail   string            `gorm:"type:varchar(255)" json:"customer_email"`
	CustomerPhone   string            `gorm:"type:varchar(50)" json:"customer_phone"`
	ReservationDate string            `gorm:"type:varchar(10);index;not null" json:"reservation_date"`
	ReservationTime string            `gorm:"type:varchar(5);not null" json:"reservation_time"`
	PartySize       int               `gorm:"not null" json:"party_size"`
	SpecialRequests string            `gorm:"type:text" json:"special_requests,omitempty"`
	TotalAmount     float64           `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`
	PaymentOption   string            `gorm:"type:varchar(10);not null" json:"payment_option"`
	DepositAmount   float64           `gorm:"type:decimal(10,2);not null;default:0" json:"deposit_amount"`
	RemainingAmount float64           `gorm:"type:decimal(10,2);not null;default:0" json:"remaining_amount"`
	PaymentStatus   string            `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	Status          string            `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Items           []ReservationItem `gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ReservationItem is a dish pre-ordered with a reservation.
type ReservationItem struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	ReservationID uint    `gorm:"index;not null" json:"reservation_id"`
	MenuItemID    uint    `gorm:"not null" json:"menu_item_id"`
	Name          string  `gorm:"type:varchar(255);not null" json:"name"`
	Price         float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity      int     `gorm:"not null" json:"quantity"`
}
