package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/services"
	"github.com/yeremiapane/restaurant-site/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SiteController struct {
	DB      *gorm.DB
	Storage *services.ObjectStorage
}

func NewSiteController(db *gorm.DB, storage *services.ObjectStorage) *SiteController {
	return &SiteController{DB: db, Storage: storage}
}

func (sc *SiteController) settingsMap() (map[string]string, error) {
	var rows []models.SiteSetting
	if err := sc.DB.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

func (sc *SiteController) upsertSettings(values map[string]string) error {
	rows := make([]models.SiteSetting, 0, len(values))
	for k, v := range values {
		rows = append(rows, models.SiteSetting{Key: k, Value: v})
	}
	if len(rows) == 0 {
		return nil
	}
	return sc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
}

// GetSite -> settings used by the header and footer
func (sc *SiteController) GetSite(c *gin.Context) {
	settings, err := sc.settingsMap()
	if err != nil {
		respondServiceError(c, "loading site settings", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Site settings", settings)
}

type galleryImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
	Source  string `json:"source"`
}

// GetGallery -> hero config plus dish images and approved review photos
func (sc *SiteController) GetGallery(c *gin.Context) {
	settings, err := sc.settingsMap()
	if err != nil {
		respondServiceError(c, "loading gallery settings", err)
		return
	}

	images := []galleryImage{}
	var items []models.MenuItem
	if err := sc.DB.Where("image_url <> ''").Order("is_popular desc, name asc").Find(&items).Error; err != nil {
		respondServiceError(c, "loading menu images", err)
		return
	}
	for _, item := range items {
		images = append(images, galleryImage{URL: item.ImageURL, Caption: item.Name, Source: "menu"})
	}

	var reviews []models.Review
	if err := sc.DB.Where("is_approved = ?", true).Order("created_at desc").Find(&reviews).Error; err != nil {
		respondServiceError(c, "loading review photos", err)
		return
	}
	for _, r := range reviews {
		for _, photo := range r.Photos {
			images = append(images, galleryImage{URL: photo, Caption: r.Comment, Source: "review"})
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Gallery", gin.H{
		"hero":   sc.heroFrom(settings),
		"images": images,
	})
}

func (sc *SiteController) ListSettings(c *gin.Context) {
	var rows []models.SiteSetting
	if err := sc.DB.Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&rows).Error; err != nil {
		respondServiceError(c, "listing settings", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of settings", rows)
}

// UpsertSettings -> body is a flat key/value object
func (sc *SiteController) UpsertSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	for k := range req {
		if strings.TrimSpace(k) == "" {
			utils.RespondError(c, http.StatusBadRequest, errors.New("setting keys must not be empty"))
			return
		}
	}
	if err := sc.upsertSettings(req); err != nil {
		respondServiceError(c, "saving settings", err)
		return
	}
	settings, err := sc.settingsMap()
	if err != nil {
		respondServiceError(c, "loading settings", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Settings saved", settings)
}

func (sc *SiteController) heroFrom(settings map[string]string) gin.H {
	return gin.H{
		"image_url": settings[models.SettingGalleryHeroImage],
		"title":     settings[models.SettingGalleryHeroTitle],
		"subtitle":  settings[models.SettingGalleryHeroSubtitle],
	}
}

func (sc *SiteController) GetGalleryHero(c *gin.Context) {
	settings, err := sc.settingsMap()
	if err != nil {
		respondServiceError(c, "loading gallery hero", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Gallery hero", sc.heroFrom(settings))
}

func (sc *SiteController) UpdateGalleryHero(c *gin.Context) {
	var req struct {
		ImageURL *string `json:"image_url"`
		Title    *string `json:"title"`
		Subtitle *string `json:"subtitle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	values := map[string]string{}
	if req.ImageURL != nil {
		values[models.SettingGalleryHeroImage] = strings.TrimSpace(*req.ImageURL)
	}
	if req.Title != nil {
		values[models.SettingGalleryHeroTitle] = strings.TrimSpace(*req.Title)
	}
	if req.Subtitle != nil {
		values[models.SettingGalleryHeroSubtitle] = strings.TrimSpace(*req.Subtitle)
	}
	if err := sc.upsertSettings(values); err != nil {
		respondServiceError(c, "saving gallery hero", err)
		return
	}
	settings, err := sc.settingsMap()
	if err != nil {
		respondServiceError(c, "loading gallery hero", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Gallery hero saved", sc.heroFrom(settings))
}

// UploadGalleryHeroImage -> stores form file "image" and persists its URL
func (sc *SiteController) UploadGalleryHeroImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("image file is required"))
		return
	}
	url, err := sc.Storage.UploadPublic(c.Request.Context(), services.BucketSiteAssets, "gallery", file)
	if err != nil {
		respondServiceError(c, "uploading gallery image", err)
		return
	}
	if err := sc.upsertSettings(map[string]string{models.SettingGalleryHeroImage: url}); err != nil {
		sc.Storage.Remove(url)
		respondServiceError(c, "saving gallery image", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Image uploaded", gin.H{"url": url})
}
