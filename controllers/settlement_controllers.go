package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cueside/club-app/models"
	"github.com/cueside/club-app/services"
	"github.com/cueside/club-app/utils"
)

type SettlementController struct {
	DB          *gorm.DB
	Sessions    *services.SessionService
	Settlements *services.SettlementService
}

func NewSettlementController(db *gorm.DB, sessions *services.SessionService, settlements *services.SettlementService) *SettlementController {
	return &SettlementController{DB: db, Sessions: sessions, Settlements: settlements}
}

// PreviewBill -> price the stopped session for the settlement dialog
func (sc *SettlementController) PreviewBill(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	method := c.DefaultQuery("payment_method", models.PaymentMethodCash)

	session, err := sc.Sessions.GetSession(tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var table models.Table
	if err := sc.DB.First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondServiceError(c, services.ErrTableNotFound)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	bill := services.CalculateBill(session, table.Rate, method)
	utils.RespondJSON(c, http.StatusOK, "Bill preview", gin.H{
		"bill":          bill,
		"customer_name": session.CustomerName,
		"duration":      utils.FormatDuration(session.ElapsedSeconds),
	})
}

// SettleBill -> validate the payment and commit the settlement atomically
func (sc *SettlementController) SettleBill(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	var req services.SettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	txn, err := sc.Settlements.Settle(tableID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Bill settled", txn)
}
