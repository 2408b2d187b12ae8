package models

import "time"

type MembershipPlan struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	TotalHours  float64   `gorm:"type:decimal(10,2);not null" json:"total_hours"`
	Color       string    `gorm:"type:varchar(20)" json:"color,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// Member holds a prepaid hours balance against a plan. RemainingHours only
// ever decreases, and only inside a settlement commit.
type Member struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"type:varchar(255);not null;index" json:"name"`
	PlanID         uint           `gorm:"not null" json:"plan_id"`
	Plan           MembershipPlan `gorm:"foreignKey:PlanID" json:"plan"`
	RemainingHours float64        `gorm:"type:decimal(10,4);not null" json:"remaining_hours"`
	MobileNumber   string         `gorm:"type:varchar(20);index" json:"mobile_number,omitempty"`
	ValidityDate   *time.Time     `json:"validity_date,omitempty"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}
