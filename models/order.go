package models

import (
	"time"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

const (
	OrderTypePickup   = "pickup"
	OrderTypeTakeout  = "takeout"
	OrderTypeDineIn   = "dine-in"
	OrderTypeDelivery = "delivery"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

type Order struct {
	ID                  uint        `gorm:"primaryKey" json:"id"`
	UserID              *uint       `gorm:"index" json:"user_id,omitempty"`
	CustomerName        string      `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone       string      `gorm:"type:varchar(50);not null" json:"customer_phone"`
	CustomerEmail       string      `gorm:"type:varchar(255)" json:"customer_email"`
	OrderType           string      `gorm:"type:varchar(20);not null" json:"order_type"`
	PickupTime          string      `gorm:"type:varchar(50)" json:"pickup_time"`
	DeliveryAddress     string      `gorm:"type:text" json:"delivery_address,omitempty"`
	SpecialInstructions string      `gorm:"type:text" json:"special_instructions,omitempty"`
	TotalAmount         float64     `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`
	AsapCharge          float64     `gorm:"type:decimal(10,2);not null;default:0" json:"asap_charge"`
	FinalTotal          float64     `gorm:"type:decimal(10,2);not null;default:0" json:"final_total"`
	IsPriority          bool        `gorm:"not null;default:false" json:"is_priority"`
	Status              string      `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentStatus       string      `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	Items               []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"index;not null" json:"order_id"`
	MenuItemID uint      `gorm:"not null" json:"menu_item_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Price      float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
}
