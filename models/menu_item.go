package models

import "time"

// MenuItem is a snack or drink orderable onto a table session.
// Stock is decremented at settlement time and may go negative (see
// services.SettlementService); reconciliation happens on the admin stock page.
type MenuItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Category  string    `gorm:"type:varchar(100);not null" json:"category"`
	Price     float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
