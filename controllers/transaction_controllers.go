package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cueside/club-app/models"
	"github.com/cueside/club-app/utils"
)

// TransactionController reads the append-only settlement ledger. Records are
// never mutated here; reports aggregate over what settlement wrote.
type TransactionController struct {
	DB *gorm.DB
}

func NewTransactionController(db *gorm.DB) *TransactionController {
	return &TransactionController{DB: db}
}

// GetAllTransactions -> settled bills, newest first, optional filters
func (tc *TransactionController) GetAllTransactions(c *gin.Context) {
	query := tc.DB.Preload("Items").Order("created_at DESC")

	if tableID := c.Query("table_id"); tableID != "" {
		query = query.Where("table_id = ?", tableID)
	}
	if method := c.Query("payment_method"); method != "" {
		query = query.Where("payment_method = ?", method)
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("created_at >= ?", t)
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("created_at < ?", t.AddDate(0, 0, 1))
		}
	}

	var transactions []models.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of transactions", transactions)
}

// GetTransaction -> one settled bill by reference id
func (tc *TransactionController) GetTransaction(c *gin.Context) {
	var txn models.Transaction
	err := tc.DB.Preload("Items").
		Where("reference_id = ?", c.Param("reference_id")).
		First(&txn).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Transaction detail", txn)
}

// GetSummary -> revenue totals for the dashboard, split table vs items
func (tc *TransactionController) GetSummary(c *gin.Context) {
	type summary struct {
		Transactions int64   `json:"transactions"`
		TotalRevenue float64 `json:"total_revenue"`
		TableRevenue float64 `json:"table_revenue"`
		ItemsRevenue float64 `json:"items_revenue"`
	}

	var out summary
	row := tc.DB.Model(&models.Transaction{}).
		Select("COUNT(*) as transactions, COALESCE(SUM(total_amount),0) as total_revenue, COALESCE(SUM(table_cost),0) as table_revenue, COALESCE(SUM(items_cost),0) as items_revenue")
	if err := row.Scan(&out).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Revenue summary", out)
}
