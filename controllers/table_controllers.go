package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/utils"
	"gorm.io/gorm"
)

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

// GetAllTables -> public list of active tables; admins see every table with ?all=true
func (tc *TableController) GetAllTables(c *gin.Context) {
	q := tc.DB.Order("table_number asc")
	if c.Query("all") != "true" {
		q = q.Where("is_available = ?", true)
	}
	var tables []models.Table
	if err := q.Find(&tables).Error; err != nil {
		respondServiceError(c, "listing tables", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// CreateTable -> adds a table
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber int    `json:"table_number" binding:"required,gt=0"`
		Capacity    int    `json:"capacity" binding:"required,gt=0"`
		Location    string `json:"location"`
		IsAvailable *bool  `json:"is_available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		TableNumber: req.TableNumber,
		Capacity:    req.Capacity,
		Location:    strings.TrimSpace(req.Location),
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		table.IsAvailable = *req.IsAvailable
	}

	var taken int64
	tc.DB.Model(&models.Table{}).Where("table_number = ?", table.TableNumber).Count(&taken)
	if taken > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("table number already exists"))
		return
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		respondServiceError(c, "creating table", err)
		return
	}

	utils.InfoLogger.Printf("New table created: %d (capacity=%d)", table.TableNumber, table.Capacity)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

func (tc *TableController) loadTable(c *gin.Context) (*models.Table, bool) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return nil, false
	}
	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
			return nil, false
		}
		respondServiceError(c, "loading table", err)
		return nil, false
	}
	return &table, true
}

func (tc *TableController) UpdateTable(c *gin.Context) {
	var req struct {
		Capacity *int    `json:"capacity"`
		Location *string `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	table, ok := tc.loadTable(c)
	if !ok {
		return
	}
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("capacity must be positive"))
			return
		}
		table.Capacity = *req.Capacity
	}
	if req.Location != nil {
		table.Location = strings.TrimSpace(*req.Location)
	}
	if err := tc.DB.Save(table).Error; err != nil {
		respondServiceError(c, "updating table", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// ToggleAvailability -> takes a table in or out of service
func (tc *TableController) ToggleAvailability(c *gin.Context) {
	table, ok := tc.loadTable(c)
	if !ok {
		return
	}
	table.IsAvailable = !table.IsAvailable
	if err := tc.DB.Model(table).Update("is_available", table.IsAvailable).Error; err != nil {
		respondServiceError(c, "toggling table", err)
		return
	}
	utils.InfoLogger.Printf("Table %d availability changed to %t", table.TableNumber, table.IsAvailable)
	utils.RespondJSON(c, http.StatusOK, "Table availability updated", table)
}

// DeleteTable -> refuses while upcoming reservations reference the table
func (tc *TableController) DeleteTable(c *gin.Context) {
	table, ok := tc.loadTable(c)
	if !ok {
		return
	}
	var active int64
	if err := tc.DB.Model(&models.Reservation{}).
		Where("table_id = ? AND status IN ?", table.ID, []string{models.ReservationStatusPending, models.ReservationStatusConfirmed}).
		Count(&active).Error; err != nil {
		respondServiceError(c, "checking reservations", err)
		return
	}
	if active > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("table has active reservations"))
		return
	}

	if err := tc.DB.Delete(table).Error; err != nil {
		respondServiceError(c, "deleting table", err)
		return
	}
	utils.InfoLogger.Printf("Table %d deleted", table.TableNumber)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": table.ID})
}
