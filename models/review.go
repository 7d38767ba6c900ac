package models

import (
	"time"

	"gorm.io/datatypes"
)

type Review struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	UserID        uint                        `gorm:"index;not null" json:"user_id"`
	OrderID       *uint                       `gorm:"index" json:"order_id,omitempty"`
	MenuItemID    *uint                       `gorm:"index" json:"menu_item_id,omitempty"`
	Rating        int                         `gorm:"not null" json:"rating"`
	Comment       string                      `gorm:"type:text;not null" json:"comment"`
	Photos        datatypes.JSONSlice[string] `json:"photos"`
	IsApproved    bool                        `gorm:"not null;default:false;index" json:"is_approved"`
	AdminResponse string                      `gorm:"type:text" json:"admin_response,omitempty"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`

	AuthorName   string `gorm:"-" json:"author_name,omitempty"`
	MenuItemName string `gorm:"-" json:"menu_item_name,omitempty"`
}
