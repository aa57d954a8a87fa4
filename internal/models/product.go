// internal/models/product.go
package models

import "time"

// Product is one physical product instance on the ledger. Descriptive
// metadata is immutable after registration; only CurrentOwner and
// IsAuthentic are ever updated, and IsAuthentic only ever goes true->false.
type Product struct {
	ProductID            uint      `json:"product_id" gorm:"primaryKey;autoIncrement"`
	Identifier           string    `json:"identifier" gorm:"uniqueIndex;size:64;not null"`
	ProductName          string    `json:"product_name" gorm:"size:255;not null"`
	ManufacturerName     string    `json:"manufacturer_name" gorm:"size:255;not null;index"`
	ProductType          string    `json:"product_type" gorm:"size:100"`
	Description          string    `json:"description" gorm:"type:text"`
	Price                float64   `json:"price,omitempty" gorm:"type:decimal(12,2)"`
	ManufacturerIdentity string    `json:"manufacturer" gorm:"size:64;not null;index"`
	CurrentOwner         string    `json:"current_owner" gorm:"size:64;not null;index"`
	IsAuthentic          bool      `json:"is_authentic" gorm:"not null;default:true"`
	RegisteredAt         time.Time `json:"registered_at" gorm:"not null"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`

	// Relationships
	Events  []CustodyEvent      `json:"events,omitempty" gorm:"foreignKey:ProductID"`
	Reports []CounterfeitReport `json:"reports,omitempty" gorm:"foreignKey:ProductID"`
}

// CustodyEvent is one change of possession. The sequence per product is
// append-only; the first event is always the synthetic MANUFACTURED entry
// from the genesis identity.
type CustodyEvent struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID    uint      `json:"product_id" gorm:"not null;index"`
	FromIdentity string    `json:"from" gorm:"size:64;not null"`
	ToIdentity   string    `json:"to" gorm:"size:64;not null"`
	EventType    EventType `json:"event_type" gorm:"type:varchar(20);not null"`
	Location     string    `json:"location" gorm:"size:255"`
	Timestamp    time.Time `json:"timestamp" gorm:"not null;index"`
}
