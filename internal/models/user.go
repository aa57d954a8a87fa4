// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Email         string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name          string     `json:"name" gorm:"size:255;not null"`
	PasswordHash  string     `json:"-" gorm:"size:255;not null"`
	Role          UserRole   `json:"role" gorm:"type:varchar(20);not null;index"`
	Company       string     `json:"company,omitempty" gorm:"size:255"`
	Status        UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	WalletAddress string     `json:"wallet_address,omitempty" gorm:"size:64;index"`
	LastLoginAt   *time.Time `json:"last_login_at"`

	// Relationships
	Bindings []CustodianBinding `json:"bindings,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// CustodianBinding is the auditable link between an authenticated account
// and an on-ledger custodian identity. A new binding supersedes earlier
// ones but earlier rows are kept for audit.
type CustodianBinding struct {
	BaseModel
	UserID            uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	CustodianIdentity string    `json:"custodian_identity" gorm:"size:64;not null;index"`
	BoundAt           time.Time `json:"bound_at" gorm:"not null"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
