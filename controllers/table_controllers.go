package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cueside/club-app/events"
	"github.com/cueside/club-app/models"
	"github.com/cueside/club-app/utils"
)

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

// CreateTable -> add a new table
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Name     string  `json:"name" binding:"required"`
		Category string  `json:"category" binding:"required,oneof='American Pool' 'Mini Snooker' 'Standard'"`
		Rate     float64 `json:"rate" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		Name:     req.Name,
		Category: req.Category,
		Rate:     req.Rate,
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.Broadcast(events.Message{Event: events.EventTableUpdate, Data: table})
	utils.InfoLogger.Printf("New table created: %s (%s @ %.2f/hr)", table.Name, table.Category, table.Rate)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> all tables with their availability
func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	query := tc.DB
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Order("name").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var sessions []models.ActiveSession
	if err := tc.DB.Find(&sessions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	byTable := make(map[uint]string, len(sessions))
	for _, s := range sessions {
		byTable[s.TableID] = s.Status
	}

	type tableView struct {
		models.Table
		SessionStatus string `json:"session_status"` // "available" when no session
	}

	views := make([]tableView, 0, len(tables))
	for _, t := range tables {
		status, ok := byTable[t.ID]
		if !ok {
			status = "available"
		}
		views = append(views, tableView{Table: t, SessionStatus: status})
	}

	utils.RespondJSON(c, http.StatusOK, "List of tables", views)
}

// GetTableByID -> one table
func (tc *TableController) GetTableByID(c *gin.Context) {
	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTable -> rename or reprice a table. Rate changes apply only to
// sessions started afterwards; a running session keeps billing at the rate
// read when it settles.
func (tc *TableController) UpdateTable(c *gin.Context) {
	var req struct {
		Name     string   `json:"name"`
		Category string   `json:"category"`
		Rate     *float64 `json:"rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if req.Name != "" {
		table.Name = req.Name
	}
	if req.Category != "" {
		table.Category = req.Category
	}
	if req.Rate != nil {
		if *req.Rate < 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("rate must be non-negative"))
			return
		}
		table.Rate = *req.Rate
	}

	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.Broadcast(events.Message{Event: events.EventTableUpdate, Data: table})
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// DeleteTable -> remove a table; refused while it has a session
func (tc *TableController) DeleteTable(c *gin.Context) {
	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var count int64
	tc.DB.Model(&models.ActiveSession{}).Where("table_id = ?", table.ID).Count(&count)
	if count > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("table has an active session"))
		return
	}

	if err := tc.DB.Delete(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Table %d deleted", table.ID)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": table.ID})
}
