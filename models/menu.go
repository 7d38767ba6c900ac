package models

import (
	"time"

	"gorm.io/datatypes"
)

type MenuItem struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	Name          string                      `gorm:"type:varchar(255);not null" json:"name"`
	Description   string                      `gorm:"type:text" json:"description"`
	Price         float64                     `gorm:"type:decimal(10,2);not null" json:"price"`
	Category      string                      `gorm:"type:varchar(100);index;not null" json:"category"`
	ImageURL      string                      `gorm:"type:varchar(512)" json:"image_url"`
	IsAvailable   bool                        `gorm:"not null" json:"is_available"`
	DietaryTags   datatypes.JSONSlice[string] `json:"dietary_tags"`
	IsPopular     bool                        `gorm:"not null;default:false" json:"is_popular"`
	IsChefSpecial bool                        `gorm:"not null;default:false" json:"is_chef_special"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}
