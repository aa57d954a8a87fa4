// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel is shared by account-side records (users, bindings, audit rows).
// Ledger records carry their own integer keys, see product.go.
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserRole string

const (
	RoleManufacturer UserRole = "manufacturer"
	RoleDistributor  UserRole = "distributor"
	RoleConsumer     UserRole = "consumer"
	RoleRegulator    UserRole = "regulator"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleManufacturer, RoleDistributor, RoleConsumer, RoleRegulator:
		return true
	}
	return false
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// EventType is the closed set of custody event kinds. MANUFACTURED is
// reserved for the synthetic registration event; transfers may only use
// the remaining three.
type EventType string

const (
	EventManufactured EventType = "MANUFACTURED"
	EventDistributed  EventType = "DISTRIBUTED"
	EventSold         EventType = "SOLD"
	EventTransferred  EventType = "TRANSFERRED"
)

func (e EventType) ValidForTransfer() bool {
	switch e {
	case EventDistributed, EventSold, EventTransferred:
		return true
	}
	return false
}

// VerificationOutcome is the tri-state result of presenting an identifier.
type VerificationOutcome string

const (
	VerificationAuthentic    VerificationOutcome = "authentic"
	VerificationFlagged      VerificationOutcome = "flagged"
	VerificationUnregistered VerificationOutcome = "unregistered"
)

// GenesisIdentity is the null custodian used as the `from` party of the
// synthetic MANUFACTURED event.
const GenesisIdentity = "0x0000000000000000000000000000000000000000"
