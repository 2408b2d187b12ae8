package models

import "time"

// Payment methods accepted at settlement.
const (
	PaymentMethodCash       = "cash"
	PaymentMethodUPI        = "upi"
	PaymentMethodSplit      = "split"
	PaymentMethodMembership = "membership"
)

// Transaction is the immutable record written once per settled session.
// Never updated after creation; reports read this ledger.
type Transaction struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	ReferenceID     string            `gorm:"type:varchar(64);uniqueIndex;not null" json:"reference_id"`
	TableID         uint              `gorm:"not null;index" json:"table_id"`
	TableName       string            `gorm:"type:varchar(100);not null" json:"table_name"`
	StartTime       time.Time         `gorm:"not null" json:"start_time"`
	EndTime         time.Time         `gorm:"not null" json:"end_time"`
	DurationSeconds int64             `gorm:"not null" json:"duration_seconds"`
	TableCost       float64           `gorm:"type:decimal(10,2);not null" json:"table_cost"`
	ItemsCost       float64           `gorm:"type:decimal(10,2);not null" json:"items_cost"`
	TotalAmount     float64           `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	PaymentMethod   string            `gorm:"type:varchar(20);not null" json:"payment_method"`
	CashAmount      *float64          `gorm:"type:decimal(10,2)" json:"cash_amount,omitempty"` // split pay only
	UpiAmount       *float64          `gorm:"type:decimal(10,2)" json:"upi_amount,omitempty"`  // split pay only
	MemberID        *uint             `json:"member_id,omitempty"`
	CustomerName    string            `gorm:"type:varchar(255);not null" json:"customer_name"`
	Items           []TransactionItem `gorm:"foreignKey:TransactionID" json:"items"`
	CreatedAt       time.Time         `gorm:"not null" json:"created_at"`
}

type TransactionItem struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	TransactionID uint    `gorm:"not null;index" json:"transaction_id"`
	MenuItemID    uint    `gorm:"not null" json:"menu_item_id"`
	Name          string  `gorm:"type:varchar(255);not null" json:"name"`
	Price         float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity      int     `gorm:"not null" json:"quantity"`
}
