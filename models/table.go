package models

import "time"

// Table categories as shown on the staff floor view
const (
	CategoryAmericanPool = "American Pool"
	CategoryMiniSnooker  = "Mini Snooker"
	CategoryStandard     = "Standard"
)

type Table struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Category  string    `gorm:"type:varchar(50);not null" json:"category"`
	Rate      float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"rate"` // per hour
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
