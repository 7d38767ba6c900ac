package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/services"
	"github.com/yeremiapane/restaurant-site/utils"
	"gorm.io/gorm"
)

type MenuController struct {
	DB      *gorm.DB
	Storage *services.ObjectStorage
}

func NewMenuController(db *gorm.DB, storage *services.ObjectStorage) *MenuController {
	return &MenuController{DB: db, Storage: storage}
}

type menuRequest struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Price         *float64  `json:"price"`
	Category      *string   `json:"category"`
	ImageURL      *string   `json:"image_url"`
	IsAvailable   *bool     `json:"is_available"`
	DietaryTags   *[]string `json:"dietary_tags"`
	IsPopular     *bool     `json:"is_popular"`
	IsChefSpecial *bool     `json:"is_chef_special"`
}

func (r menuRequest) apply(item *models.MenuItem) error {
	if r.Name != nil {
		item.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		item.Description = *r.Description
	}
	if r.Price != nil {
		if *r.Price < 0 {
			return errors.New("price must not be negative")
		}
		item.Price = utils.Round2(*r.Price)
	}
	if r.Category != nil {
		item.Category = strings.TrimSpace(*r.Category)
	}
	if r.ImageURL != nil {
		item.ImageURL = *r.ImageURL
	}
	if r.IsAvailable != nil {
		item.IsAvailable = *r.IsAvailable
	}
	if r.DietaryTags != nil {
		item.DietaryTags = *r.DietaryTags
	}
	if r.IsPopular != nil {
		item.IsPopular = *r.IsPopular
	}
	if r.IsChefSpecial != nil {
		item.IsChefSpecial = *r.IsChefSpecial
	}
	if item.Name == "" || item.Category == "" {
		return errors.New("name and category are required")
	}
	return nil
}

// GetAllMenus -> optional filters: category, available
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	q := mc.DB.Order("category asc, name asc")
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if available := c.Query("available"); available != "" {
		flag, err := strconv.ParseBool(available)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("available must be true or false"))
			return
		}
		q = q.Where("is_available = ?", flag)
	}

	var items []models.MenuItem
	if err := q.Find(&items).Error; err != nil {
		respondServiceError(c, "listing menu", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", items)
}

func (mc *MenuController) GetCategories(c *gin.Context) {
	var categories []string
	if err := mc.DB.Model(&models.MenuItem{}).Distinct("category").Order("category asc").Pluck("category", &categories).Error; err != nil {
		respondServiceError(c, "listing categories", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}

func (mc *MenuController) GetMenuByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		respondServiceError(c, "loading menu item", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu detail", item)
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	item := models.MenuItem{IsAvailable: true, DietaryTags: []string{}}
	if err := req.apply(&item); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Price == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("price is required"))
		return
	}

	if err := mc.DB.Create(&item).Error; err != nil {
		respondServiceError(c, "creating menu item", err)
		return
	}
	utils.InfoLogger.Printf("Menu item created: %s (%s)", item.Name, item.Category)
	utils.RespondJSON(c, http.StatusCreated, "Menu created", item)
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		respondServiceError(c, "loading menu item", err)
		return
	}
	if err := req.apply(&item); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := mc.DB.Save(&item).Error; err != nil {
		respondServiceError(c, "updating menu item", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu updated", item)
}

// ToggleAvailability -> flips is_available
func (mc *MenuController) ToggleAvailability(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		respondServiceError(c, "loading menu item", err)
		return
	}
	item.IsAvailable = !item.IsAvailable
	if err := mc.DB.Model(&item).Update("is_available", item.IsAvailable).Error; err != nil {
		respondServiceError(c, "toggling availability", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu availability updated", item)
}

// UploadImage -> stores form file "image" and persists its public URL on the item
func (mc *MenuController) UploadImage(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		respondServiceError(c, "loading menu item", err)
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("image file is required"))
		return
	}

	url, err := mc.Storage.UploadPublic(c.Request.Context(), services.BucketMenuImages, "menu", file)
	if err != nil {
		respondServiceError(c, "uploading menu image", err)
		return
	}
	previous := item.ImageURL
	if err := mc.DB.Model(&item).Update("image_url", url).Error; err != nil {
		mc.Storage.Remove(url)
		respondServiceError(c, "saving menu image", err)
		return
	}
	if previous != "" {
		mc.Storage.Remove(previous)
	}
	item.ImageURL = url
	utils.RespondJSON(c, http.StatusOK, "Image uploaded", item)
}

func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		respondServiceError(c, "loading menu item", err)
		return
	}
	if err := mc.DB.Delete(&item).Error; err != nil {
		respondServiceError(c, "deleting menu item", err)
		return
	}
	if item.ImageURL != "" {
		mc.Storage.Remove(item.ImageURL)
	}
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", nil)
}
