package database

import (
	"errors"

	"github.com/yeremiapane/restaurant-site/config"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed fills an empty database with the admin account and default content.
// Existing rows are never overwritten.
func Seed(db *gorm.DB, cfg *config.Config) error {
	if err := seedAdmin(db, cfg.Admin); err != nil {
		return err
	}
	if err := seedTables(db); err != nil {
		return err
	}
	if err := seedSettings(db); err != nil {
		return err
	}
	if err := seedAbout(db); err != nil {
		return err
	}
	return seedLegal(db)
}

func seedAdmin(db *gorm.DB, admin config.AdminConfig) error {
	if admin.Email == "" || admin.Password == "" {
		utils.InfoLogger.Println("ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var user models.User
	err := db.Where("email = ?", admin.Email).First(&user).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		user = models.User{Email: admin.Email, PasswordHash: string(hashed)}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := models.Profile{ID: user.ID, FullName: "Administrator", IsAdmin: true, IsVerified: true}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		utils.InfoLogger.Printf("Admin user %s seeded", admin.Email)
		return nil
	})
}

func seedTables(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Table{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tables := []models.Table{
		{TableNumber: 1, Capacity: 2, Location: "Window", IsAvailable: true},
		{TableNumber: 2, Capacity: 2, Location: "Window", IsAvailable: true},
		{TableNumber: 3, Capacity: 4, Location: "Main Hall", IsAvailable: true},
		{TableNumber: 4, Capacity: 4, Location: "Main Hall", IsAvailable: true},
		{TableNumber: 5, Capacity: 6, Location: "Main Hall", IsAvailable: true},
		{TableNumber: 6, Capacity: 8, Location: "Private Room", IsAvailable: true},
	}
	return db.Create(&tables).Error
}

func seedSettings(db *gorm.DB) error {
	defaults := []models.SiteSetting{
		{Key: "restaurant_name", Value: "The Restaurant", Description: "Display name"},
		{Key: "address", Value: "", Description: "Street address"},
		{Key: "phone", Value: "", Description: "Contact phone"},
		{Key: "email", Value: "", Description: "Contact email"},
		{Key: "opening_hours", Value: "Mon-Sun 11:00-23:00", Description: "Opening hours"},
		{Key: "instagram_url", Value: "", Description: "Instagram profile"},
		{Key: "facebook_url", Value: "", Description: "Facebook page"},
		{Key: models.SettingGalleryHeroImage, Value: "", Description: "Gallery hero image"},
		{Key: models.SettingGalleryHeroTitle, Value: "Our Gallery", Description: "Gallery hero title"},
		{Key: models.SettingGalleryHeroSubtitle, Value: "A look inside our kitchen and dining room", Description: "Gallery hero subtitle"},
	}
	for _, s := range defaults {
		setting := s
		if err := db.Where(models.SiteSetting{Key: setting.Key}).FirstOrCreate(&setting).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedAbout(db *gorm.DB) error {
	defaults := []models.AboutSection{
		{SectionKey: "story", Title: "Our Story", Content: "Tell guests how the restaurant began.", DisplayOrder: 1, IsActive: true},
		{SectionKey: "kitchen", Title: "Our Kitchen", Content: "Describe the food and the people who cook it.", DisplayOrder: 2, IsActive: true},
	}
	for _, s := range defaults {
		section := s
		if err := db.Where(models.AboutSection{SectionKey: section.SectionKey}).FirstOrCreate(&section).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedLegal(db *gorm.DB) error {
	defaults := []models.LegalDocument{
		{DocType: "privacy", Title: "Privacy Policy", Content: "# Privacy Policy\n", Version: 1, DisplayOrder: 1, IsActive: true},
		{DocType: "terms", Title: "Terms of Service", Content: "# Terms of Service\n", Version: 1, DisplayOrder: 2, IsActive: true},
		{DocType: "refund", Title: "Refund Policy", Content: "# Refund Policy\n", Version: 1, DisplayOrder: 3, IsActive: true},
	}
	for _, d := range defaults {
		doc := d
		if err := db.Where(models.LegalDocument{DocType: doc.DocType}).FirstOrCreate(&doc).Error; err != nil {
			return err
		}
	}
	return nil
}
