package models

import "time"

// Session statuses. A table with no ActiveSession row is "available";
// StatusIdle exists only when items were pre-ordered before the timer
// started.
const (
	SessionStatusIdle    = "idle"
	SessionStatusRunning = "running"
	SessionStatusPaused  = "paused"
	SessionStatusStopped = "stopped"
)

const DefaultCustomerName = "Walk-in Customer"

// ActiveSession is the in-progress rental of one table. At most one row per
// table (unique index on TableID). ElapsedSeconds is authoritative: while
// running it equals (now - StartTime)/1s - TotalPauseSeconds, frozen on every
// transition out of running. Version is an optimistic-concurrency token;
// every write bumps it and checks the previous value.
type ActiveSession struct {
	ID                uint          `gorm:"primaryKey" json:"id"`
	TableID           uint          `gorm:"not null;uniqueIndex" json:"table_id"`
	Table             Table         `gorm:"foreignKey:TableID" json:"-"`
	Status            string        `gorm:"type:varchar(20);not null" json:"status"`
	StartTime         time.Time     `json:"start_time"`
	ElapsedSeconds    int64         `gorm:"not null;default:0" json:"elapsed_seconds"`
	TotalPauseSeconds int64         `gorm:"not null;default:0" json:"total_pause_seconds"`
	PauseTime         *time.Time    `json:"pause_time,omitempty"`
	CustomerName      string        `gorm:"type:varchar(255);not null" json:"customer_name"`
	MemberID          *uint         `json:"member_id,omitempty"`
	Member            *Member       `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Version           uint          `gorm:"not null;default:0" json:"version"`
	Items             []SessionItem `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt         time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time     `gorm:"not null" json:"updated_at"`
}

// SessionItem is an order line: a menu item snapshot plus quantity >= 1.
// Lines never persist at quantity zero; RemoveItem deletes them instead.
type SessionItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SessionID  uint      `gorm:"not null;index" json:"session_id"`
	MenuItemID uint      `gorm:"not null" json:"menu_item_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Price      float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}
