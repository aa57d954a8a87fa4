// internal/models/report.go
package models

import "time"

// CounterfeitReport is an immutable flag record. ProductName and
// ManufacturerName are denormalized snapshots taken at write time so the
// report stays meaningful independently of later product state.
type CounterfeitReport struct {
	ID               uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID        uint      `json:"product_id" gorm:"not null;index"`
	Reason           string    `json:"reason" gorm:"type:text;not null"`
	ReporterIdentity string    `json:"reporter" gorm:"size:64;not null;index"`
	ProductName      string    `json:"product_name" gorm:"size:255;not null"`
	ManufacturerName string    `json:"manufacturer_name" gorm:"size:255;not null"`
	CreatedAt        time.Time `json:"timestamp"`
}

// LedgerEvent is the persisted change-notification feed. Consumers poll it
// with an after_id cursor; rows are never updated or deleted.
type LedgerEvent struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	EventKind  string    `json:"event_kind" gorm:"size:50;not null;index"`
	ProductID  uint      `json:"product_id" gorm:"index"`
	Identifier string    `json:"identifier" gorm:"size:64"`
	Actor      string    `json:"actor" gorm:"size:64"`
	Payload    JSONB     `json:"payload,omitempty" gorm:"type:jsonb"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	LedgerEventRegistered  = "product.registered"
	LedgerEventTransferred = "product.transferred"
	LedgerEventFlagged     = "product.flagged"
)
