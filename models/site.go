package models

import "time"

const (
	SettingGalleryHeroImage    = "gallery_hero_image"
	SettingGalleryHeroTitle    = "gallery_hero_title"
	SettingGalleryHeroSubtitle = "gallery_hero_subtitle"
)

// SiteSetting is an admin-configurable key/value row.
type SiteSetting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"key"`
	Value       string    `gorm:"type:text" json:"value"`
	Description string    `gorm:"type:varchar(255)" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AboutSection struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SectionKey   string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"section_key"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Content      string    `gorm:"type:text" json:"content"`
	ImageURL     string    `gorm:"type:varchar(512)" json:"image_url"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type LegalDocument struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	DocType      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"doc_type"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Content      string    `gorm:"type:text" json:"content"`
	Version      int       `gorm:"not null;default:1" json:"version"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
