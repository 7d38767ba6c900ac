package models

import "time"

// User is the authentication identity.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile extends a user; its ID equals the owning user's ID.
type Profile struct {
	ID         uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	FullName   string    `gorm:"type:varchar(255)" json:"full_name"`
	Phone      string    `gorm:"type:varchar(50)" json:"phone"`
	IsAdmin    bool      `gorm:"not null;default:false" json:"is_admin"`
	IsVerified bool      `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
