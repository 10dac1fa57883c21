package models

import (
	"time"

	"github.com/google/uuid"
)

// VaultTransaction is the persisted audit record of one submitted
// ledger call.
type VaultTransaction struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	VaultID          string    `gorm:"index;not null"`
	Principal        string    `gorm:"index;not null"`
	Type             string    `gorm:"not null"`
	AmountSats       *uint64
	BeneficiaryIndex *uint64
	Status           string `gorm:"index;not null"`
	TxRef            string `gorm:"uniqueIndex;not null"`
	BlockHeight      *uint64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName overrides the gorm default
func (VaultTransaction) TableName() string {
	return "vault_transactions"
}
