package controllers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/services"
	"github.com/yeremiapane/restaurant-site/utils"
	"gorm.io/gorm"
)

// ContentController edits the About Us sections and the legal documents.
type ContentController struct {
	DB      *gorm.DB
	Storage *services.ObjectStorage
}

func NewContentController(db *gorm.DB, storage *services.ObjectStorage) *ContentController {
	return &ContentController{DB: db, Storage: storage}
}

type aboutView struct {
	models.AboutSection
	ContentHTML string `json:"content_html"`
}

type legalView struct {
	models.LegalDocument
	ContentHTML string `json:"content_html"`
}

// GetAbout -> active sections in display order, rendered
func (cc *ContentController) GetAbout(c *gin.Context) {
	var sections []models.AboutSection
	if err := cc.DB.Where("is_active = ?", true).Order("display_order asc, id asc").Find(&sections).Error; err != nil {
		respondServiceError(c, "listing about sections", err)
		return
	}
	views := make([]aboutView, 0, len(sections))
	for _, s := range sections {
		html, err := services.RenderMarkdown(s.Content)
		if err != nil {
			respondServiceError(c, "rendering about section", err)
			return
		}
		views = append(views, aboutView{AboutSection: s, ContentHTML: html})
	}
	utils.RespondJSON(c, http.StatusOK, "About us", views)
}

func (cc *ContentController) ListAboutSections(c *gin.Context) {
	var sections []models.AboutSection
	if err := cc.DB.Order("display_order asc, id asc").Find(&sections).Error; err != nil {
		respondServiceError(c, "listing about sections", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of about sections", sections)
}

type aboutRequest struct {
	SectionKey   *string `json:"section_key"`
	Title        *string `json:"title"`
	Content      *string `json:"content"`
	ImageURL     *string `json:"image_url"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

func (r aboutRequest) apply(s *models.AboutSection) error {
	if r.SectionKey != nil {
		s.SectionKey = strings.TrimSpace(*r.SectionKey)
	}
	if r.Title != nil {
		s.Title = strings.TrimSpace(*r.Title)
	}
	if r.Content != nil {
		s.Content = *r.Content
	}
	if r.ImageURL != nil {
		s.ImageURL = *r.ImageURL
	}
	if r.DisplayOrder != nil {
		s.DisplayOrder = *r.DisplayOrder
	}
	if r.IsActive != nil {
		s.IsActive = *r.IsActive
	}
	if s.SectionKey == "" || s.Title == "" {
		return errors.New("section_key and title are required")
	}
	return nil
}

func (cc *ContentController) CreateAboutSection(c *gin.Context) {
	var req aboutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	section := models.AboutSection{IsActive: true}
	if err := req.apply(&section); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.DisplayOrder == nil {
		var maxOrder sql.NullInt64
		if err := cc.DB.Model(&models.AboutSection{}).Select("MAX(display_order)").Row().Scan(&maxOrder); err == nil && maxOrder.Valid {
			section.DisplayOrder = int(maxOrder.Int64) + 1
		}
	}
	if err := cc.DB.Create(&section).Error; err != nil {
		respondServiceError(c, "creating about section", err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Section created", section)
}

func (cc *ContentController) loadAbout(c *gin.Context) (*models.AboutSection, bool) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return nil, false
	}
	var section models.AboutSection
	if err := cc.DB.First(&section, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("section not found"))
			return nil, false
		}
		respondServiceError(c, "loading about section", err)
		return nil, false
	}
	return &section, true
}

func (cc *ContentController) UpdateAboutSection(c *gin.Context) {
	var req aboutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	section, ok := cc.loadAbout(c)
	if !ok {
		return
	}
	if err := req.apply(section); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := cc.DB.Save(section).Error; err != nil {
		respondServiceError(c, "updating about section", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Section updated", section)
}

// ToggleAboutSection -> shows or hides the section on the public page
func (cc *ContentController) ToggleAboutSection(c *gin.Context) {
	section, ok := cc.loadAbout(c)
	if !ok {
		return
	}
	section.IsActive = !section.IsActive
	if err := cc.DB.Model(section).Update("is_active", section.IsActive).Error; err != nil {
		respondServiceError(c, "toggling about section", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Section visibility updated", section)
}

func (cc *ContentController) DeleteAboutSection(c *gin.Context) {
	section, ok := cc.loadAbout(c)
	if !ok {
		return
	}
	if err := cc.DB.Delete(section).Error; err != nil {
		respondServiceError(c, "deleting about section", err)
		return
	}
	if section.ImageURL != "" {
		cc.Storage.Remove(section.ImageURL)
	}
	utils.RespondJSON(c, http.StatusOK, "Section deleted", gin.H{"id": section.ID})
}

func (cc *ContentController) UploadAboutImage(c *gin.Context) {
	section, ok := cc.loadAbout(c)
	if !ok {
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("image file is required"))
		return
	}
	url, err := cc.Storage.UploadPublic(c.Request.Context(), services.BucketSiteAssets, "about", file)
	if err != nil {
		respondServiceError(c, "uploading about image", err)
		return
	}
	previous := section.ImageURL
	if err := cc.DB.Model(section).Update("image_url", url).Error; err != nil {
		cc.Storage.Remove(url)
		respondServiceError(c, "saving about image", err)
		return
	}
	if previous != "" {
		cc.Storage.Remove(previous)
	}
	utils.RespondJSON(c, http.StatusOK, "Image uploaded", section)
}

// GetLegalDocuments -> active documents, without rendering
func (cc *ContentController) GetLegalDocuments(c *gin.Context) {
	var docs []models.LegalDocument
	if err := cc.DB.Where("is_active = ?", true).Order("display_order asc, doc_type asc").Find(&docs).Error; err != nil {
		respondServiceError(c, "listing legal documents", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of legal documents", docs)
}

func (cc *ContentController) GetLegalDocument(c *gin.Context) {
	var doc models.LegalDocument
	if err := cc.DB.Where("doc_type = ? AND is_active = ?", c.Param("doc_type"), true).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("document not found"))
			return
		}
		respondServiceError(c, "loading legal document", err)
		return
	}
	html, err := services.RenderMarkdown(doc.Content)
	if err != nil {
		respondServiceError(c, "rendering legal document", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, doc.Title, legalView{LegalDocument: doc, ContentHTML: html})
}

func (cc *ContentController) ListLegalDocuments(c *gin.Context) {
	var docs []models.LegalDocument
	if err := cc.DB.Order("display_order asc, doc_type asc").Find(&docs).Error; err != nil {
		respondServiceError(c, "listing legal documents", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of legal documents", docs)
}

// UpsertLegalDocument -> creates or replaces the document of :doc_type; the
// version increases whenever the content changes
func (cc *ContentController) UpsertLegalDocument(c *gin.Context) {
	docType := strings.ToLower(strings.TrimSpace(c.Param("doc_type")))
	var req struct {
		Title        string `json:"title" binding:"required"`
		Content      string `json:"content"`
		DisplayOrder *int   `json:"display_order"`
		IsActive     *bool  `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if docType == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("doc_type is required"))
		return
	}

	var doc models.LegalDocument
	err := cc.DB.Where("doc_type = ?", docType).First(&doc).Error
	created := false
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		doc = models.LegalDocument{DocType: docType, Version: 1, IsActive: true}
		created = true
	case err != nil:
		respondServiceError(c, "loading legal document", err)
		return
	case doc.Content != req.Content:
		doc.Version++
	}

	doc.Title = strings.TrimSpace(req.Title)
	doc.Content = req.Content
	if req.DisplayOrder != nil {
		doc.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		doc.IsActive = *req.IsActive
	}
	if err := cc.DB.Save(&doc).Error; err != nil {
		respondServiceError(c, "saving legal document", err)
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	utils.InfoLogger.Printf("Legal document %s saved (version %d)", doc.DocType, doc.Version)
	utils.RespondJSON(c, code, "Document saved", doc)
}

func (cc *ContentController) ToggleLegalDocument(c *gin.Context) {
	var doc models.LegalDocument
	if err := cc.DB.Where("doc_type = ?", c.Param("doc_type")).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("document not found"))
			return
		}
		respondServiceError(c, "loading legal document", err)
		return
	}
	doc.IsActive = !doc.IsActive
	if err := cc.DB.Model(&doc).Update("is_active", doc.IsActive).Error; err != nil {
		respondServiceError(c, "toggling legal document", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Document visibility updated", doc)
}

// Preview -> renders Markdown without saving
func (cc *ContentController) Preview(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	html, err := services.RenderMarkdown(req.Content)
	if err != nil {
		respondServiceError(c, "rendering preview", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Preview", gin.H{"html": html})
}
